package entity

// AssetStatus tracks a manifest entry through a single run.
type AssetStatus string

const (
	StatusAbsent            AssetStatus = "Absent"
	StatusPresentUnverified AssetStatus = "PresentUnverified"
	StatusDownloading       AssetStatus = "Downloading"
	StatusVerified          AssetStatus = "Verified"
	StatusFailed            AssetStatus = "Failed"
)

func (s AssetStatus) String() string {
	return string(s)
}

// Ready reports whether the artifact ended the run verified-present.
func (s AssetStatus) Ready() bool {
	return s == StatusVerified
}

// IsTerminal reports whether the status is an end state for a run.
func (s AssetStatus) IsTerminal() bool {
	return s == StatusVerified || s == StatusFailed
}
