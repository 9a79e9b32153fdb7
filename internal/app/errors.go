package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownComparison  = errors.New("unknown comparison")
	ErrNoSnapshotStore    = errors.New("no snapshot store configured")
	ErrInvalidMoversLimit = errors.New("invalid movers limit")
)
