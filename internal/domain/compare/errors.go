package compare

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrInvalidCanonical = errors.New("invalid canonical comparison slug")
)
