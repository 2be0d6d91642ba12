package entity

import "fmt"

// Progress reports bytes received over the wire for a single transfer.
// Total is negative when the server announces no content length.
type Progress struct {
	Received int64
	Total    int64
}

// Percent returns the transfer completion in percent, or -1 when the
// total size is unknown.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return -1
	}

	return float64(p.Received) / float64(p.Total) * 100
}

// ProgressFunc receives cumulative transfer progress updates.
type ProgressFunc func(p Progress)

// FetchResult records the terminal state of one manifest entry.
type FetchResult struct {
	Asset        Asset
	Status       AssetStatus
	BytesFetched int64 // Bytes pulled over the network, zero when skipped
	Fetched      bool  // True when a network transfer was attempted
	Err          error // Set only when Status is StatusFailed
}

// AssetInfo describes the local state of a manifest entry without a run.
type AssetInfo struct {
	Asset  Asset
	Status AssetStatus
	Size   int64 // On-disk size in bytes, zero when absent
	Err    error
}

// Summary aggregates per-entry outcomes of a run.
type Summary struct {
	Results []FetchResult
	Ready   int
	Total   int
}

// AllReady reports whether every manifest entry ended verified-present.
// An empty manifest counts as success.
func (s Summary) AllReady() bool {
	return s.Ready == s.Total
}

func (s Summary) String() string {
	return fmt.Sprintf("%d/%d files ready", s.Ready, s.Total)
}
