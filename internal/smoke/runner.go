// Package smoke checks a running toolboard server end to end: leaderboard
// ordering and canonical comparison routing.
package smoke

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/toolboard/pkg/logger"
)

// Run executes every check against config.BaseURL. Transport failures abort
// the run; failed checks are collected in the returned stats.
func Run(ctx context.Context, config *Config, log logger.Logger) (*Stats, error) {
	if log == nil {
		log = logger.Nop()
	}
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(strings.TrimRight(config.BaseURL, "/"), config.Timeout)

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
	)

	// Step 1: Check service health
	status, _, _, err := client.get(ctx, "/healthz")
	if err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	if status != http.StatusOK {
		return stats, fmt.Errorf("service health check failed: status %d", status)
	}

	// Step 2: Leaderboard ordering
	if err := checkLeaderboard(ctx, client, stats); err != nil {
		return stats, fmt.Errorf("leaderboard check failed: %w", err)
	}

	// Step 3: Comparison routing
	if err := checkComparisons(ctx, client, config.Workers, stats); err != nil {
		return stats, fmt.Errorf("comparison check failed: %w", err)
	}

	stats.Duration = time.Since(stats.StartTime)
	for _, f := range stats.Failures {
		log.Warn(ctx, "smoke check failed", logger.String("check", f))
	}
	if config.Verbose || !stats.Failed() {
		log.Info(ctx, "smoke run completed",
			logger.Int("categories", stats.Categories),
			logger.Int("scores", stats.ScoresChecked),
			logger.Int("comparisons", stats.ComparisonsChecked),
			logger.Int("failures", len(stats.Failures)),
			logger.Duration("duration", stats.Duration),
		)
	}
	return stats, nil
}
