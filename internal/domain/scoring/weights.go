package scoring

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/toolboard/internal/domain/model"
)

const weightSumTolerance = 0.001

// Weights maps a metric name to its share of the composite score.
// Weights must be non-negative and sum to 1.0.
type Weights map[string]float64

// DefaultWeights returns the weighting used when configuration provides none.
func DefaultWeights() Weights {
	return Weights{
		model.MetricValue:      0.30,
		model.MetricQuality:    0.35,
		model.MetricMomentum:   0.20,
		model.MetricExperience: 0.15,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	var total float64
	for _, name := range w.names() {
		total += w[name]
	}
	return total
}

// Validate checks that only known metrics are weighted, none is negative
// and the weights sum to 1.0.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("%w: no weights configured", ErrInvalidWeights)
	}
	for _, name := range w.names() {
		if !slices.Contains(model.MetricNames, name) {
			return fmt.Errorf("%w: unknown metric %q", ErrInvalidWeights, name)
		}
		if v := w[name]; v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: metric %q has weight %f", ErrInvalidWeights, name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %.4f, must sum to 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

// names returns the weighted metric names sorted, so sums are reproducible.
func (w Weights) names() []string {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Range is the raw interval a metric is normalized against.
type Range struct {
	Min float64 `koanf:"min" json:"min"`
	Max float64 `koanf:"max" json:"max"`
}

// Normalize maps v into [0,1], clamping values outside the range.
func (r Range) Normalize(v float64) float64 {
	n := (v - r.Min) / (r.Max - r.Min)
	return math.Max(0, math.Min(1, n))
}

// Midpoint is the neutral raw value substituted for missing metrics.
func (r Range) Midpoint() float64 {
	return r.Min + (r.Max-r.Min)/2
}

// Validate rejects non-finite, empty or inverted ranges.
func (r Range) Validate() error {
	if !isFinite(r.Min) || !isFinite(r.Max) || r.Max <= r.Min {
		return fmt.Errorf("%w: [%f, %f]", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// DefaultRanges treats every metric as a 0-100 percentage.
func DefaultRanges() map[string]Range {
	ranges := make(map[string]Range, len(model.MetricNames))
	for _, name := range model.MetricNames {
		ranges[name] = Range{Min: 0, Max: 100}
	}
	return ranges
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
