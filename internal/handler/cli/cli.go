package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mystichronicle/VisionNav/internal/entity"
	"github.com/mystichronicle/VisionNav/internal/service/fetch"
)

// FetchService is the domain surface the commands drive.
type FetchService interface {
	Run(ctx context.Context, manifest entity.Manifest, opts ...fetch.Option) (entity.Summary, error)
	Inspect(manifest entity.Manifest) []entity.AssetInfo
	Clean(manifest entity.Manifest) (int, error)
}

// Runtime is everything the commands need after startup wiring.
type Runtime struct {
	Service   FetchService
	Manifest  entity.Manifest
	TargetDir string
}

// Params carries the persistent flag values the wiring depends on.
type Params struct {
	ConfigPath   string
	DataDir      string
	ManifestPath string
	Verbose      bool
}

// Builder assembles the runtime once persistent flags are parsed.
type Builder func(p Params) (*Runtime, error)

// NewRootCommand creates the command tree:
//
//   - fetch [--force]
//   - verify
//   - list
//   - clean [--yes]
//
// Global flags: --config, --data-dir, --manifest, --quiet, --verbose.
func NewRootCommand(build Builder) *cobra.Command {
	var (
		cfgPath      string
		dataDir      string
		manifestPath string
		quiet        bool
		verbose      bool
	)

	// Runtime is created in PersistentPreRunE, after flags are known.
	var rt *Runtime

	cmd := &cobra.Command{
		Use:   "visionnav-assets",
		Short: "Fetch and verify the model artifacts the VisionNav detector needs",
		Long: "Download the YOLOv3 network definition, weights and class names into\n" +
			"the VisionNav data directory, skipping files that are already present\n" +
			"and verifying SHA-256 digests when the manifest provides them.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			var err error
			rt, err = build(Params{
				ConfigPath:   cfgPath,
				DataDir:      dataDir,
				ManifestPath: manifestPath,
				Verbose:      verbose,
			})
			if err != nil {
				return fmt.Errorf("cannot initialize: %w", err)
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory artifacts are stored in")
	cmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "YAML manifest overriding the built-in asset list")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	cmd.AddCommand(fetchCmd(&rt, &quiet))
	cmd.AddCommand(verifyCmd(&rt))
	cmd.AddCommand(listCmd(&rt))
	cmd.AddCommand(cleanCmd(&rt, &quiet))

	return cmd
}
