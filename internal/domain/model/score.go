package model

import "time"

// Score is a computed, ranked score for one tool in one category.
type Score struct {
	Slug           string             `json:"slug"`
	Name           string             `json:"name"`
	Category       string             `json:"category"`
	RawMetrics     map[string]float64 `json:"raw_metrics"`
	CompositeScore float64            `json:"composite_score"`
	Rank           int                `json:"rank"`
}

// CategoryScores maps a category to its scores ordered by rank.
type CategoryScores map[string][]Score

// Snapshot is a persisted ranking used as the baseline for deltas.
type Snapshot struct {
	Week       string         `json:"week"`
	Categories CategoryScores `json:"categories"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Direction tells which way a tool moved since the snapshot.
type Direction string

// Direction values.
const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
	// DirectionNew marks a tool absent from the snapshot. Its deltas are unknown.
	DirectionNew Direction = "new"
)

// Delta is the movement of a tool relative to a snapshot. ScoreDelta and
// RankDelta are nil when the tool has no prior score.
type Delta struct {
	Slug       string    `json:"slug"`
	Category   string    `json:"category"`
	ScoreDelta *float64  `json:"score_delta"`
	RankDelta  *int      `json:"rank_delta"`
	Direction  Direction `json:"direction"`
}

// Known reports whether the delta was computed against a prior score.
func (d Delta) Known() bool { return d.ScoreDelta != nil }

// ScoreWithDelta pairs a fresh score with its movement.
type ScoreWithDelta struct {
	Score
	Delta Delta `json:"delta"`
}
