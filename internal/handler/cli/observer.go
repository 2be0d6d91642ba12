package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mystichronicle/VisionNav/internal/service/fetch"
)

// consoleObserver renders run events as the per-entry console lines and a
// byte progress bar. The bar is created lazily on the first progress
// report, once the total size is known, and torn down when the entry
// reaches a terminal state.
type consoleObserver struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newConsoleObserver(out io.Writer) *consoleObserver {
	return &consoleObserver{out: out}
}

func (o *consoleObserver) observe(ev fetch.Event) {
	switch ev.Kind {
	case fetch.EventSkipped:
		fmt.Fprintf(o.out, "✓ %s already exists, skipping...\n", ev.Asset.Name)
	case fetch.EventStale:
		fmt.Fprintf(o.out, "! %s fails verification, downloading again...\n", ev.Asset.Name)
	case fetch.EventDownloadStarted:
		fmt.Fprintf(o.out, "Downloading %s from %s...\n", ev.Asset.Name, ev.Asset.URL)
	case fetch.EventProgress:
		if o.bar == nil {
			o.bar = newProgressBar(o.out, ev.Asset.Name, ev.Progress.Total)
		}

		_ = o.bar.Set64(ev.Progress.Received)
	case fetch.EventDownloaded:
		o.closeBar(true)
		fmt.Fprintf(o.out, "✓ Successfully downloaded %s\n", ev.Asset.Name)
	case fetch.EventFailed:
		o.closeBar(false)
		fmt.Fprintf(o.out, "✗ Error downloading %s: %v\n", ev.Asset.Name, ev.Err)
	}
}

func (o *consoleObserver) closeBar(finish bool) {
	if o.bar == nil {
		return
	}

	if finish {
		_ = o.bar.Finish()
	} else {
		_ = o.bar.Clear()
	}

	o.bar = nil
}

// A negative total renders a spinner with a byte counter instead of a
// percentage bar.
func newProgressBar(out io.Writer, name string, total int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(name),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
