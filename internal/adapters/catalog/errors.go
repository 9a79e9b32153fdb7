package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrDecode        = errors.New("catalog decode failed")
	ErrMissingSlug   = errors.New("tool slug is required")
	ErrDuplicateSlug = errors.New("duplicate tool slug")
)
