// Package model contains domain models passed between layers.
package model

// Metric names used as keys in Score.RawMetrics and in weight configuration.
const (
	MetricValue      = "value"
	MetricQuality    = "quality"
	MetricMomentum   = "momentum"
	MetricExperience = "experience"
)

// MetricNames lists every scored metric in a fixed order.
var MetricNames = []string{MetricValue, MetricQuality, MetricMomentum, MetricExperience}

// UncategorizedCategory groups tools that carry no category.
const UncategorizedCategory = "Uncategorized"

// Tool is a catalog record. Owned by the catalog and treated as immutable.
type Tool struct {
	Slug     string          `json:"slug" yaml:"slug"`
	Name     string          `json:"name" yaml:"name"`
	Category string          `json:"category" yaml:"category"`
	Pricing  Pricing         `json:"pricing" yaml:"pricing"`
	Metrics  Metrics         `json:"metrics" yaml:"metrics"`
	Features map[string]bool `json:"features,omitempty" yaml:"features"`
}

// Pricing describes the commercial terms of a tool.
type Pricing struct {
	Model        string   `json:"model" yaml:"model"` // free, freemium, paid
	StartingUSD  *float64 `json:"starting_usd,omitempty" yaml:"starting_usd"`
	FreeTrial    bool     `json:"free_trial" yaml:"free_trial"`
	PerSeatPrice bool     `json:"per_seat" yaml:"per_seat"`
}

// Metrics are the raw inputs to scoring. A nil pointer means the value is
// missing from the catalog.
type Metrics struct {
	Value      *float64 `json:"value,omitempty" yaml:"value"`
	Quality    *float64 `json:"quality,omitempty" yaml:"quality"`
	Momentum   *float64 `json:"momentum,omitempty" yaml:"momentum"`
	Experience *float64 `json:"experience,omitempty" yaml:"experience"`
}

// Get returns the metric by name.
func (m Metrics) Get(name string) (*float64, bool) {
	switch name {
	case MetricValue:
		return m.Value, true
	case MetricQuality:
		return m.Quality, true
	case MetricMomentum:
		return m.Momentum, true
	case MetricExperience:
		return m.Experience, true
	default:
		return nil, false
	}
}

// CategoryOf returns the tool category, falling back to UncategorizedCategory.
func (t Tool) CategoryOf() string {
	if t.Category == "" {
		return UncategorizedCategory
	}
	return t.Category
}

// Float returns a pointer to v. Handy for building Metrics literals.
func Float(v float64) *float64 { return &v }
