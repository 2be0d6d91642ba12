package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mystichronicle/VisionNav/internal/common"
	"github.com/mystichronicle/VisionNav/internal/entity"
	"github.com/mystichronicle/VisionNav/internal/service/fetch"
)

const bannerWidth = 60

func fetchCmd(rt **Runtime, quiet *bool) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download missing or stale model artifacts",
		Long: "Process the manifest strictly in order: artifacts that are present and\n" +
			"pass verification are skipped, everything else is downloaded over HTTPS\n" +
			"and verified. The exit code is zero only when every artifact is ready.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := *rt
			out := cmd.OutOrStdout()

			if !*quiet {
				printHeader(out, r.TargetDir)
			}

			var opts []fetch.Option
			if force {
				opts = append(opts, fetch.WithForce())
			}
			if !*quiet {
				opts = append(opts, fetch.WithObserver(newConsoleObserver(out).observe))
			}

			summary, err := r.Service.Run(cmd.Context(), r.Manifest, opts...)
			if err != nil {
				return err
			}

			if *quiet {
				fmt.Fprintln(out, summary)
			} else {
				printSummary(out, summary)
			}

			if !summary.AllReady() {
				return common.ErrIncomplete
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete present artifacts and download them again")

	return cmd
}

func verifyCmd(rt **Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check presence and integrity of model artifacts without downloading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := *rt
			out := cmd.OutOrStdout()

			ready := 0
			infos := r.Service.Inspect(r.Manifest)
			for _, info := range infos {
				switch {
				case info.Status.Ready():
					ready++
					fmt.Fprintf(out, "✓ %s\n", info.Asset.Name)
				case info.Status == entity.StatusAbsent:
					fmt.Fprintf(out, "✗ %s: missing\n", info.Asset.Name)
				default:
					fmt.Fprintf(out, "✗ %s: %v\n", info.Asset.Name, info.Err)
				}
			}

			fmt.Fprintf(out, "%d/%d files ready\n", ready, len(infos))

			if ready != len(infos) {
				return common.ErrIncomplete
			}

			return nil
		},
	}
}

func listCmd(rt **Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show manifest entries and their local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := *rt

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSTATUS\tSIZE\tSOURCE")
			for _, info := range r.Service.Inspect(r.Manifest) {
				size := ""
				if info.Size > 0 {
					size = formatSize(info.Size)
				}

				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Asset.Name, info.Status, size, info.Asset.URL)
			}

			return tw.Flush()
		},
	}
}

func cleanCmd(rt **Runtime, quiet *bool) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove downloaded artifacts and stale partial files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := *rt
			out := cmd.OutOrStdout()

			if !yes {
				fmt.Fprintf(out, "Remove all artifacts under %s? [y/N]: ", r.TargetDir)
				if !confirmPrompt(cmd.InOrStdin()) {
					fmt.Fprintln(out, "Aborted.")

					return nil
				}
			}

			removed, err := r.Service.Clean(r.Manifest)
			if err != nil {
				return err
			}

			if !*quiet {
				fmt.Fprintf(out, "Removed %d files\n", removed)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")

	return cmd
}

// confirmPrompt reads from stdin and returns true only for 'y' or 'yes'.
// Empty input or anything else means no.
func confirmPrompt(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if scanner.Scan() {
		response := strings.TrimSpace(strings.ToLower(scanner.Text()))

		return response == "y" || response == "yes"
	}

	return false
}

func printHeader(out io.Writer, dir string) {
	banner(out)
	fmt.Fprintln(out, "VisionNav model artifact fetcher")
	banner(out)
	fmt.Fprintf(out, "Artifacts will be saved to: %s\n\n", dir)
}

func printSummary(out io.Writer, s entity.Summary) {
	fmt.Fprintln(out)
	banner(out)
	fmt.Fprintf(out, "Download Summary: %s\n", s)
	banner(out)

	if s.AllReady() {
		fmt.Fprintln(out, "✓ All model files are ready!")
	} else {
		fmt.Fprintln(out, "✗ Some files failed to download. Please check the errors above.")
	}
}

func banner(out io.Writer) {
	fmt.Fprintln(out, strings.Repeat("=", bannerWidth))
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
