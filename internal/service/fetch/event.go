package fetch

import "github.com/mystichronicle/VisionNav/internal/entity"

// EventKind identifies what just happened to a manifest entry.
type EventKind int

const (
	EventSkipped EventKind = iota // Present and verified without a download
	EventStale                    // Present but failed verification, downloading again
	EventDownloadStarted
	EventProgress
	EventDownloaded // Transfer finished and verification passed
	EventFailed
)

func (k EventKind) String() string {
	return [...]string{"Skipped", "Stale", "DownloadStarted", "Progress", "Downloaded", "Failed"}[k]
}

// Event is a single observation from a run, delivered synchronously in
// manifest order.
type Event struct {
	Asset    entity.Asset
	Kind     EventKind
	Progress entity.Progress // Set for EventProgress
	Err      error           // Set for EventFailed
}

// Observer receives run events. Callbacks run on the download path and
// must not block.
type Observer func(ev Event)
