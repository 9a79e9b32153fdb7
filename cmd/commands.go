package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"slices"
	"text/tabwriter"
	"time"

	service "github.com/okian/toolboard/internal/app"
	"github.com/okian/toolboard/internal/domain/compare"
	"github.com/okian/toolboard/internal/domain/model"
	"github.com/okian/toolboard/internal/smoke"
	"github.com/okian/toolboard/pkg/logger"
	"github.com/spf13/cobra"
)

func snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Score the catalog and store it as this week's snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			log, err := initLogger(ctx, cfg)
			if err != nil {
				return err
			}

			svc, err := buildService(cfg, log, true)
			if err != nil {
				return err
			}
			snap, err := svc.RecordSnapshot(ctx)
			closeErr := svc.Close()
			if err != nil {
				return err
			}
			if closeErr != nil {
				log.Warn(ctx, "close snapshot store", logger.Error(closeErr))
			}

			tools := 0
			for _, scores := range snap.Categories {
				tools += len(scores)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored snapshot %s (%d tools, %d categories)\n", snap.Week, tools, len(snap.Categories))
			return nil
		},
	}
}

func resolveCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resolve <slug>",
		Short: "Resolve a comparison slug to its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			svc, err := buildService(cfg, logger.Nop(), false)
			if err != nil {
				return err
			}
			return printResolution(cmd.OutOrStdout(), svc.Resolve(args[0]), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func printResolution(w io.Writer, res compare.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	switch res.Type {
	case compare.ResultRedirect:
		_, err := fmt.Fprintf(w, "redirect -> /compare/%s\n", res.Target)
		return err
	case compare.ResultExact:
		_, err := fmt.Fprintf(w, "exact %s\n", res.Target)
		return err
	default:
		_, err := fmt.Fprintln(w, "not_found")
		return err
	}
}

func scoresCmd() *cobra.Command {
	var (
		jsonOutput bool
		category   string
		movers     int
	)

	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show the current leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			svc, err := buildService(cfg, logger.Nop(), true)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			p, err := svc.Leaderboard(ctx, service.LeaderboardQuery{Category: category, Movers: movers})
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			return printLeaderboard(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVar(&category, "category", "", "only show one category")
	cmd.Flags().IntVar(&movers, "movers", 0, "number of top movers (default: from config)")
	return cmd
}

func printLeaderboard(out io.Writer, p service.Payload) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "WEEK %s\n", p.Week)

	categories := make([]string, 0, len(p.Scores))
	for c := range p.Scores {
		categories = append(categories, c)
	}
	slices.Sort(categories)

	for _, c := range categories {
		fmt.Fprintf(w, "\n%s\nRANK\tSCORE\tTOOL\n", c)
		for _, s := range p.Scores[c] {
			fmt.Fprintf(w, "%d\t%.2f\t%s\n", s.Rank, s.CompositeScore, s.Name)
		}
	}

	if p.PriorWeek != "" {
		fmt.Fprintf(w, "\nMOVERS SINCE %s\nDELTA\tRANK\tTOOL\tCATEGORY\n", p.PriorWeek)
		for _, m := range p.Movers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", formatScoreDelta(m.Delta), formatRankDelta(m.Delta), m.Name, m.Category)
		}
	}
	return w.Flush()
}

func formatScoreDelta(d model.Delta) string {
	if d.ScoreDelta == nil {
		return "new"
	}
	return fmt.Sprintf("%+.2f", *d.ScoreDelta)
}

func formatRankDelta(d model.Delta) string {
	if d.RankDelta == nil {
		return "-"
	}
	return fmt.Sprintf("%+d", *d.RankDelta)
}

func smokeCmd() *cobra.Command {
	cfg := smoke.Config{}

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Check a running server's leaderboard ordering and comparison routing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := logger.Init(); err != nil {
				return err
			}
			stats, err := smoke.Run(ctx, &cfg, logger.Named("smoke"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d scores in %d categories and %d comparisons in %s\n",
				stats.ScoresChecked, stats.Categories, stats.ComparisonsChecked, stats.Duration.Round(time.Millisecond))
			if stats.Failed() {
				for _, f := range stats.Failures {
					fmt.Fprintln(cmd.OutOrStdout(), "FAIL", f)
				}
				return fmt.Errorf("%d smoke checks failed", len(stats.Failures))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	cmd.Flags().IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "concurrent comparison checks")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "log a summary even when checks fail")
	return cmd
}
