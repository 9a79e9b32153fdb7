package snapshot

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrUnknownBackend = errors.New("unknown snapshot backend")
	ErrEmptyWeek      = errors.New("snapshot week is required")
)
