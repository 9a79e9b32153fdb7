package smoke

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/okian/toolboard/internal/domain/compare"
	"github.com/okian/toolboard/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

// checkLeaderboard verifies that every category is sorted by composite score
// and ranked 1..n.
func checkLeaderboard(ctx context.Context, c *httpClient, stats *Stats) error {
	var payload struct {
		Scores model.CategoryScores `json:"scores"`
		Week   string               `json:"week"`
	}
	if err := c.getJSON(ctx, "/api/leaderboard", &payload); err != nil {
		return err
	}
	if payload.Week == "" {
		stats.Failures = append(stats.Failures, "leaderboard: empty week")
	}

	categories := make([]string, 0, len(payload.Scores))
	for category := range payload.Scores {
		categories = append(categories, category)
	}
	slices.Sort(categories)

	for _, category := range categories {
		scores := payload.Scores[category]
		stats.Categories++
		stats.ScoresChecked += len(scores)
		for i, s := range scores {
			if s.Rank != i+1 {
				stats.Failures = append(stats.Failures, fmt.Sprintf("leaderboard %s: %s has rank %d at position %d", category, s.Slug, s.Rank, i+1))
			}
			if i > 0 && s.CompositeScore > scores[i-1].CompositeScore {
				stats.Failures = append(stats.Failures, fmt.Sprintf("leaderboard %s: %s outranked by lower score", category, s.Slug))
			}
		}
	}
	return nil
}

// checkComparisons verifies every registered comparison: the canonical slug
// is served, the reversed slug redirects to it and unknown slugs are 404.
func checkComparisons(ctx context.Context, c *httpClient, workers int, stats *Stats) error {
	var listing struct {
		Comparisons []compare.Entry `json:"comparisons"`
	}
	if err := c.getJSON(ctx, "/api/comparisons", &listing); err != nil {
		return err
	}

	var mu sync.Mutex
	fail := func(format string, args ...any) {
		mu.Lock()
		stats.Failures = append(stats.Failures, fmt.Sprintf(format, args...))
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, e := range listing.Comparisons {
		g.Go(func() error {
			status, _, _, err := c.get(gctx, "/compare/"+e.Canonical)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				fail("compare %s: status %d, want 200", e.Canonical, status)
			}

			left, right := e.Tools()
			reversed := right + compare.Separator + left
			status, location, _, err := c.get(gctx, "/compare/"+reversed)
			if err != nil {
				return err
			}
			if status != http.StatusPermanentRedirect || location != "/compare/"+e.Canonical {
				fail("compare %s: status %d location %q, want 308 to %s", reversed, status, location, e.Canonical)
			}

			mu.Lock()
			stats.ComparisonsChecked++
			stats.RedirectsChecked++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	status, _, _, err := c.get(ctx, "/compare/unknown-vs-tool")
	if err != nil {
		return err
	}
	if status != http.StatusNotFound {
		fail("compare unknown-vs-tool: status %d, want 404", status)
	}
	return nil
}
