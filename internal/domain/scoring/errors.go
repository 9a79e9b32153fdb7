package scoring

import (
	"errors"
	"fmt"
)

// Sentinel kinds for scoring errors.
var (
	ErrInvalidToolData = errors.New("invalid tool data")
	ErrInvalidWeights  = errors.New("invalid metric weights")
	ErrInvalidRange    = errors.New("invalid metric range")
)

// InvalidToolData reports a metric that could not be used as-is and was
// replaced by the neutral default. It matches ErrInvalidToolData via errors.Is.
type InvalidToolData struct {
	Slug     string
	Category string
	Metric   string
	Reason   string
}

func (e InvalidToolData) Error() string {
	return fmt.Sprintf("%s: tool %q (%s) metric %q: %s", ErrInvalidToolData, e.Slug, e.Category, e.Metric, e.Reason)
}

func (e InvalidToolData) Unwrap() error { return ErrInvalidToolData }
