// Package scoring turns catalog tool records into ranked composite scores
// and computes week-over-week movement against a stored snapshot.
package scoring

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/okian/toolboard/internal/domain/model"
)

// Default scoring configuration constants.
const (
	maxScoreValue  = 100
	scorePrecision = 100 // two decimal places
	deltaEpsilon   = 1e-9
)

// Clock supplies the current time. Tests pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights sets the metric weights. Validated by NewEngine.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		if len(w) > 0 {
			e.weights = make(Weights, len(w))
			for k, v := range w {
				e.weights[k] = v
			}
		}
	}
}

// WithRanges overrides the normalization range of individual metrics.
// Metrics not present keep their default range.
func WithRanges(ranges map[string]Range) Option {
	return func(e *Engine) {
		for k, r := range ranges {
			e.ranges[k] = r
		}
	}
}

// WithClock sets the clock used by CurrentWeek.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// Engine computes composite scores. It holds only immutable configuration
// and is safe for concurrent use.
type Engine struct {
	weights Weights
	ranges  map[string]Range
	clock   Clock
}

// NewEngine creates an engine with default weights and ranges, then applies
// opts. It fails when the resulting weights or ranges are invalid.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		weights: DefaultWeights(),
		ranges:  DefaultRanges(),
		clock:   SystemClock{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.weights.Validate(); err != nil {
		return nil, err
	}
	for _, name := range model.MetricNames {
		if err := e.ranges[name].Validate(); err != nil {
			return nil, fmt.Errorf("metric %q: %w", name, err)
		}
	}
	return e, nil
}

// Weights returns a copy of the configured weights.
func (e *Engine) Weights() Weights {
	out := make(Weights, len(e.weights))
	for k, v := range e.weights {
		out[k] = v
	}
	return out
}

// ComputeScores scores every tool within its category. Missing or non-finite
// metrics are replaced with the neutral midpoint of their range and reported
// in the returned issues; they never abort the computation.
//
// Each category is ordered by composite score descending, then name and slug
// ascending, and ranked 1..n.
func (e *Engine) ComputeScores(tools []model.Tool) (model.CategoryScores, []InvalidToolData) {
	out := make(model.CategoryScores)
	var issues []InvalidToolData

	for _, t := range tools {
		category := t.CategoryOf()
		score, toolIssues := e.score(t, category)
		issues = append(issues, toolIssues...)
		out[category] = append(out[category], score)
	}

	for category, scores := range out {
		slices.SortFunc(scores, compareScores)
		for i := range scores {
			scores[i].Rank = i + 1
		}
		out[category] = scores
	}
	return out, issues
}

// score computes a single tool's composite score.
func (e *Engine) score(t model.Tool, category string) (model.Score, []InvalidToolData) {
	var issues []InvalidToolData
	raw := make(map[string]float64, len(model.MetricNames))
	var composite float64

	for _, name := range model.MetricNames {
		r := e.ranges[name]
		v, reason := metricValue(t.Metrics, name)
		if reason != "" {
			issues = append(issues, InvalidToolData{Slug: t.Slug, Category: category, Metric: name, Reason: reason})
			v = r.Midpoint()
		}
		raw[name] = v
		composite += e.weights[name] * r.Normalize(v)
	}

	return model.Score{
		Slug:           t.Slug,
		Name:           t.Name,
		Category:       category,
		RawMetrics:     raw,
		CompositeScore: round(composite * maxScoreValue),
	}, issues
}

// metricValue returns the metric and, when unusable, why.
func metricValue(m model.Metrics, name string) (float64, string) {
	p, _ := m.Get(name)
	switch {
	case p == nil:
		return 0, "missing"
	case math.IsNaN(*p) || math.IsInf(*p, 0):
		return 0, "not a finite number"
	default:
		return *p, ""
	}
}

func compareScores(a, b model.Score) int {
	if c := cmp.Compare(b.CompositeScore, a.CompositeScore); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Slug, b.Slug)
}

// ComputeDeltas pairs every fresh score with its prior score by (slug,
// category). Fresh entries with no prior score are new entrants and carry an
// unknown delta; prior entries without a fresh score are dropped. A nil prior
// marks every entry as new.
func ComputeDeltas(fresh, prior model.CategoryScores) map[string][]model.ScoreWithDelta {
	type key struct{ category, slug string }
	index := make(map[key]model.Score)
	for category, scores := range prior {
		for _, s := range scores {
			index[key{category, s.Slug}] = s
		}
	}

	out := make(map[string][]model.ScoreWithDelta, len(fresh))
	for category, scores := range fresh {
		withDeltas := make([]model.ScoreWithDelta, 0, len(scores))
		for _, s := range scores {
			d := model.Delta{Slug: s.Slug, Category: category, Direction: model.DirectionNew}
			if p, ok := index[key{category, s.Slug}]; ok {
				scoreDelta := round(s.CompositeScore - p.CompositeScore)
				rankDelta := p.Rank - s.Rank
				d.ScoreDelta = &scoreDelta
				d.RankDelta = &rankDelta
				d.Direction = direction(scoreDelta)
			}
			withDeltas = append(withDeltas, model.ScoreWithDelta{Score: s, Delta: d})
		}
		out[category] = withDeltas
	}
	return out
}

func direction(delta float64) model.Direction {
	switch {
	case delta > deltaEpsilon:
		return model.DirectionUp
	case delta < -deltaEpsilon:
		return model.DirectionDown
	default:
		return model.DirectionFlat
	}
}

// TopMovers flattens all categories, drops entries whose delta is unknown and
// returns at most n entries ordered by absolute score delta descending. Ties
// are broken by slug, then category, ascending.
func TopMovers(scored map[string][]model.ScoreWithDelta, n int) []model.ScoreWithDelta {
	if n <= 0 {
		return []model.ScoreWithDelta{}
	}

	var movers []model.ScoreWithDelta
	for _, scores := range scored {
		for _, s := range scores {
			if s.Delta.Known() {
				movers = append(movers, s)
			}
		}
	}

	slices.SortFunc(movers, func(a, b model.ScoreWithDelta) int {
		if c := cmp.Compare(math.Abs(*b.Delta.ScoreDelta), math.Abs(*a.Delta.ScoreDelta)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Slug, b.Slug); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})

	if len(movers) > n {
		movers = movers[:n]
	}
	if movers == nil {
		movers = []model.ScoreWithDelta{}
	}
	return movers
}

// Now reads the engine clock.
func (e *Engine) Now() time.Time { return e.clock.Now() }

// CurrentWeek returns the ISO year-week of the engine clock.
func (e *Engine) CurrentWeek() string {
	return WeekOf(e.clock.Now())
}

// WeekOf formats t as an ISO year-week, e.g. "2026-W42".
func WeekOf(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

func round(v float64) float64 {
	return math.Round(v*scorePrecision) / scorePrecision
}
