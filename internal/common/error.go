package common

import "fmt"

var (
	ErrFilesystem      = fmt.Errorf("filesystem failure")
	ErrNetwork         = fmt.Errorf("network failure")
	ErrIntegrity       = fmt.Errorf("integrity check failed")
	ErrInvalidManifest = fmt.Errorf("invalid manifest")

	// ErrIncomplete signals that a run finished with at least one
	// artifact missing or failed, so the process must exit nonzero.
	ErrIncomplete = fmt.Errorf("some artifacts are not ready")
)
