package scoring_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/toolboard/internal/domain/model"
	scoring "github.com/okian/toolboard/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// uniformTool builds a tool whose metrics all equal v, so its composite
// score under any valid weighting is v.
func uniformTool(slug, name, category string, v float64) model.Tool {
	return model.Tool{
		Slug:     slug,
		Name:     name,
		Category: category,
		Metrics: model.Metrics{
			Value:      model.Float(v),
			Quality:    model.Float(v),
			Momentum:   model.Float(v),
			Experience: model.Float(v),
		},
	}
}

func mustEngine(opts ...scoring.Option) *scoring.Engine {
	e, err := scoring.NewEngine(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

func TestEngine_ComputeScores(t *testing.T) {
	Convey("Given an engine with default weights", t, func() {
		engine := mustEngine()

		Convey("When scoring a single category", func() {
			tools := []model.Tool{
				uniformTool("jasper", "Jasper", "Writing", 60),
				uniformTool("copyai", "Copy.ai", "Writing", 80),
				uniformTool("rytr", "Rytr", "Writing", 40),
			}
			scores, issues := engine.ComputeScores(tools)

			Convey("Then scores should be sorted descending with 1-based ranks", func() {
				So(issues, ShouldBeEmpty)
				So(scores, ShouldContainKey, "Writing")
				writing := scores["Writing"]
				So(len(writing), ShouldEqual, 3)
				So(writing[0].Slug, ShouldEqual, "copyai")
				So(writing[0].CompositeScore, ShouldEqual, 80.0)
				So(writing[0].Rank, ShouldEqual, 1)
				So(writing[1].Slug, ShouldEqual, "jasper")
				So(writing[1].CompositeScore, ShouldEqual, 60.0)
				So(writing[1].Rank, ShouldEqual, 2)
				So(writing[2].Slug, ShouldEqual, "rytr")
				So(writing[2].Rank, ShouldEqual, 3)
			})

			Convey("And raw metrics should be reported", func() {
				So(scores["Writing"][0].RawMetrics[model.MetricQuality], ShouldEqual, 80.0)
			})
		})

		Convey("When input order changes", func() {
			a, _ := engine.ComputeScores([]model.Tool{
				uniformTool("b", "Beta", "SEO", 50),
				uniformTool("a", "Alpha", "SEO", 70),
				uniformTool("c", "Gamma", "SEO", 50),
			})
			b, _ := engine.ComputeScores([]model.Tool{
				uniformTool("c", "Gamma", "SEO", 50),
				uniformTool("a", "Alpha", "SEO", 70),
				uniformTool("b", "Beta", "SEO", 50),
			})

			Convey("Then the output should be identical", func() {
				So(a, ShouldResemble, b)
			})
		})

		Convey("When two tools tie on score", func() {
			scores, _ := engine.ComputeScores([]model.Tool{
				uniformTool("zeta", "Zeta", "Video", 50),
				uniformTool("alpha", "Alpha", "Video", 50),
			})

			Convey("Then the name breaks the tie and ranks stay unique", func() {
				video := scores["Video"]
				So(video[0].Name, ShouldEqual, "Alpha")
				So(video[0].Rank, ShouldEqual, 1)
				So(video[1].Name, ShouldEqual, "Zeta")
				So(video[1].Rank, ShouldEqual, 2)
			})
		})

		Convey("When tools span several categories", func() {
			scores, _ := engine.ComputeScores([]model.Tool{
				uniformTool("a", "A", "Writing", 10),
				uniformTool("b", "B", "Image", 20),
				uniformTool("c", "C", "", 30),
			})

			Convey("Then each category is ranked independently", func() {
				So(len(scores), ShouldEqual, 3)
				So(scores["Writing"][0].Rank, ShouldEqual, 1)
				So(scores["Image"][0].Rank, ShouldEqual, 1)
				So(scores[model.UncategorizedCategory][0].Slug, ShouldEqual, "c")
			})
		})

		Convey("When a record is missing a metric", func() {
			broken := uniformTool("broken", "Broken", "Writing", 100)
			broken.Metrics.Momentum = nil
			scores, issues := engine.ComputeScores([]model.Tool{
				broken,
				uniformTool("ok", "Ok", "Writing", 90),
			})

			Convey("Then the neutral midpoint is substituted and reported", func() {
				So(len(scores["Writing"]), ShouldEqual, 2)
				So(len(issues), ShouldEqual, 1)
				So(issues[0].Slug, ShouldEqual, "broken")
				So(issues[0].Metric, ShouldEqual, model.MetricMomentum)
				So(errors.Is(issues[0], scoring.ErrInvalidToolData), ShouldBeTrue)

				var got model.Score
				for _, s := range scores["Writing"] {
					if s.Slug == "broken" {
						got = s
					}
				}
				So(got.RawMetrics[model.MetricMomentum], ShouldEqual, 50.0)
				// 100 everywhere except momentum at 50 with weight 0.20.
				So(got.CompositeScore, ShouldEqual, 90.0)
			})
		})

		Convey("When a metric is NaN or infinite", func() {
			nan := uniformTool("nan", "NaN", "Writing", 40)
			nan.Metrics.Value = model.Float(math.NaN())
			inf := uniformTool("inf", "Inf", "Writing", 40)
			inf.Metrics.Quality = model.Float(math.Inf(1))
			scores, issues := engine.ComputeScores([]model.Tool{nan, inf})

			Convey("Then both are replaced and the leaderboard still builds", func() {
				So(len(issues), ShouldEqual, 2)
				for _, s := range scores["Writing"] {
					So(math.IsNaN(s.CompositeScore), ShouldBeFalse)
				}
			})
		})

		Convey("When metrics fall outside their range", func() {
			scores, issues := engine.ComputeScores([]model.Tool{
				uniformTool("high", "High", "X", 500),
				uniformTool("low", "Low", "X", -20),
			})

			Convey("Then normalization clamps them", func() {
				So(issues, ShouldBeEmpty)
				So(scores["X"][0].CompositeScore, ShouldEqual, 100.0)
				So(scores["X"][1].CompositeScore, ShouldEqual, 0.0)
			})
		})

		Convey("When the catalog is empty", func() {
			scores, issues := engine.ComputeScores(nil)

			Convey("Then the result is empty", func() {
				So(scores, ShouldBeEmpty)
				So(issues, ShouldBeEmpty)
			})
		})
	})

	Convey("Given an engine with custom weights and ranges", t, func() {
		engine := mustEngine(
			scoring.WithWeights(scoring.Weights{
				model.MetricValue:   1.0,
				model.MetricQuality: 0,
			}),
			scoring.WithRanges(map[string]scoring.Range{
				model.MetricValue: {Min: 0, Max: 10},
			}),
		)

		Convey("When scoring", func() {
			tool := uniformTool("t", "T", "X", 5)
			scores, _ := engine.ComputeScores([]model.Tool{tool})

			Convey("Then only weighted metrics contribute", func() {
				So(scores["X"][0].CompositeScore, ShouldEqual, 50.0)
			})
		})
	})
}

func TestNewEngine_Validation(t *testing.T) {
	Convey("Given invalid configuration", t, func() {
		Convey("When weights do not sum to one", func() {
			_, err := scoring.NewEngine(scoring.WithWeights(scoring.Weights{model.MetricValue: 0.5}))

			Convey("Then it should fail with ErrInvalidWeights", func() {
				So(errors.Is(err, scoring.ErrInvalidWeights), ShouldBeTrue)
			})
		})

		Convey("When a weight is negative", func() {
			_, err := scoring.NewEngine(scoring.WithWeights(scoring.Weights{
				model.MetricValue:   1.5,
				model.MetricQuality: -0.5,
			}))

			Convey("Then it should fail", func() {
				So(errors.Is(err, scoring.ErrInvalidWeights), ShouldBeTrue)
			})
		})

		Convey("When a weight names an unknown metric", func() {
			_, err := scoring.NewEngine(scoring.WithWeights(scoring.Weights{"hype": 1.0}))

			Convey("Then it should fail", func() {
				So(errors.Is(err, scoring.ErrInvalidWeights), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "hype")
			})
		})

		Convey("When a range is inverted", func() {
			_, err := scoring.NewEngine(scoring.WithRanges(map[string]scoring.Range{
				model.MetricMomentum: {Min: 10, Max: 1},
			}))

			Convey("Then it should fail with ErrInvalidRange", func() {
				So(errors.Is(err, scoring.ErrInvalidRange), ShouldBeTrue)
			})
		})

		Convey("When a range bound is infinite", func() {
			_, errMax := scoring.NewEngine(scoring.WithRanges(map[string]scoring.Range{
				model.MetricMomentum: {Min: 0, Max: math.Inf(1)},
			}))
			_, errMin := scoring.NewEngine(scoring.WithRanges(map[string]scoring.Range{
				model.MetricValue: {Min: math.Inf(-1), Max: 100},
			}))

			Convey("Then both are rejected with ErrInvalidRange", func() {
				So(errors.Is(errMax, scoring.ErrInvalidRange), ShouldBeTrue)
				So(errors.Is(errMin, scoring.ErrInvalidRange), ShouldBeTrue)
			})
		})
	})

	Convey("Given the default weights", t, func() {
		Convey("Then they should validate and sum to one", func() {
			w := scoring.DefaultWeights()
			So(w.Validate(), ShouldBeNil)
			So(w.Sum(), ShouldAlmostEqual, 1.0, 0.0001)
		})
	})
}

func TestComputeDeltas(t *testing.T) {
	Convey("Given a fresh leaderboard and a snapshot", t, func() {
		engine := mustEngine()
		fresh, _ := engine.ComputeScores([]model.Tool{
			uniformTool("a", "A", "Writing", 80),
			uniformTool("b", "B", "Writing", 60),
			uniformTool("c", "C", "Writing", 40),
		})
		prior, _ := engine.ComputeScores([]model.Tool{
			uniformTool("a", "A", "Writing", 70),
			uniformTool("b", "B", "Writing", 65),
			uniformTool("c", "C", "Writing", 40),
		})

		Convey("When computing deltas", func() {
			deltas := scoring.ComputeDeltas(fresh, prior)
			writing := deltas["Writing"]

			Convey("Then each tool has the expected movement", func() {
				So(len(writing), ShouldEqual, 3)
				So(*writing[0].Delta.ScoreDelta, ShouldEqual, 10.0)
				So(writing[0].Delta.Direction, ShouldEqual, model.DirectionUp)
				So(*writing[1].Delta.ScoreDelta, ShouldEqual, -5.0)
				So(writing[1].Delta.Direction, ShouldEqual, model.DirectionDown)
				So(*writing[2].Delta.ScoreDelta, ShouldEqual, 0.0)
				So(writing[2].Delta.Direction, ShouldEqual, model.DirectionFlat)
			})

			Convey("And the top mover is the first tool", func() {
				movers := scoring.TopMovers(deltas, 1)
				So(len(movers), ShouldEqual, 1)
				So(movers[0].Slug, ShouldEqual, "a")
			})
		})

		Convey("When diffing a leaderboard against itself", func() {
			deltas := scoring.ComputeDeltas(fresh, fresh)

			Convey("Then every delta is zero and flat", func() {
				for _, s := range deltas["Writing"] {
					So(s.Delta.Known(), ShouldBeTrue)
					So(*s.Delta.ScoreDelta, ShouldEqual, 0.0)
					So(*s.Delta.RankDelta, ShouldEqual, 0)
					So(s.Delta.Direction, ShouldEqual, model.DirectionFlat)
				}
			})
		})

		Convey("When a tool is new and another was removed", func() {
			current, _ := engine.ComputeScores([]model.Tool{
				uniformTool("a", "A", "Writing", 80),
				uniformTool("d", "D", "Writing", 90),
			})
			deltas := scoring.ComputeDeltas(current, prior)

			Convey("Then the new tool has an unknown delta and the removed tool is dropped", func() {
				writing := deltas["Writing"]
				So(len(writing), ShouldEqual, 2)
				So(writing[0].Slug, ShouldEqual, "d")
				So(writing[0].Delta.Known(), ShouldBeFalse)
				So(writing[0].Delta.RankDelta, ShouldBeNil)
				So(writing[0].Delta.Direction, ShouldEqual, model.DirectionNew)
				So(writing[1].Slug, ShouldEqual, "a")
				So(*writing[1].Delta.RankDelta, ShouldEqual, -1)
			})
		})

		Convey("When the same slug moves to another category", func() {
			moved, _ := engine.ComputeScores([]model.Tool{uniformTool("a", "A", "Image", 80)})
			deltas := scoring.ComputeDeltas(moved, prior)

			Convey("Then it is treated as a new entrant", func() {
				So(deltas["Image"][0].Delta.Known(), ShouldBeFalse)
			})
		})

		Convey("When there is no snapshot", func() {
			deltas := scoring.ComputeDeltas(fresh, nil)

			Convey("Then every entry is new", func() {
				for _, s := range deltas["Writing"] {
					So(s.Delta.Direction, ShouldEqual, model.DirectionNew)
				}
				So(scoring.TopMovers(deltas, 5), ShouldBeEmpty)
			})
		})
	})
}

func TestTopMovers(t *testing.T) {
	Convey("Given deltas across categories", t, func() {
		engine := mustEngine()
		prior, _ := engine.ComputeScores([]model.Tool{
			uniformTool("a", "A", "Writing", 50),
			uniformTool("b", "B", "Writing", 50),
			uniformTool("c", "C", "Image", 50),
			uniformTool("d", "D", "Image", 50),
		})
		fresh, _ := engine.ComputeScores([]model.Tool{
			uniformTool("a", "A", "Writing", 45),
			uniformTool("b", "B", "Writing", 70),
			uniformTool("c", "C", "Image", 30),
			uniformTool("d", "D", "Image", 55),
			uniformTool("e", "E", "Image", 99),
		})
		deltas := scoring.ComputeDeltas(fresh, prior)

		Convey("When asking for more movers than exist", func() {
			movers := scoring.TopMovers(deltas, 10)

			Convey("Then only known deltas are returned, sorted by magnitude", func() {
				So(len(movers), ShouldEqual, 4)
				So(movers[0].Slug, ShouldBeIn, []string{"b", "c"})
				So(movers[1].Slug, ShouldBeIn, []string{"b", "c"})
				// |+20| and |-20| tie, slug ascending wins.
				So(movers[0].Slug, ShouldEqual, "b")
				So(movers[2].Slug, ShouldEqual, "a")
				So(movers[3].Slug, ShouldEqual, "d")
				for i := 1; i < len(movers); i++ {
					So(math.Abs(*movers[i-1].Delta.ScoreDelta), ShouldBeGreaterThanOrEqualTo, math.Abs(*movers[i].Delta.ScoreDelta))
				}
			})
		})

		Convey("When n is smaller than the candidates", func() {
			Convey("Then at most n entries are returned", func() {
				So(len(scoring.TopMovers(deltas, 2)), ShouldEqual, 2)
			})
		})

		Convey("When n is zero or negative", func() {
			Convey("Then nothing is returned", func() {
				So(scoring.TopMovers(deltas, 0), ShouldBeEmpty)
				So(scoring.TopMovers(deltas, -3), ShouldBeEmpty)
			})
		})
	})
}

func TestCurrentWeek(t *testing.T) {
	Convey("Given a pinned clock", t, func() {
		engine := mustEngine(scoring.WithClock(fixedClock{t: time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)}))

		Convey("Then the ISO week is reported", func() {
			So(engine.CurrentWeek(), ShouldEqual, "2026-W42")
		})
	})

	Convey("Given dates around the ISO year boundary", t, func() {
		Convey("Then the ISO year is used, not the calendar year", func() {
			So(scoring.WeekOf(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, "2026-W53")
			So(scoring.WeekOf(time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC)), ShouldEqual, "2026-W01")
		})
	})
}
