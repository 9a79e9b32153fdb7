// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/toolboard/internal/adapters/catalog"
	"github.com/okian/toolboard/internal/adapters/snapshot"
	"github.com/okian/toolboard/internal/domain/compare"
	"github.com/okian/toolboard/internal/domain/model"
	"github.com/okian/toolboard/internal/domain/scoring"
	"github.com/okian/toolboard/pkg/logger"
	"github.com/okian/toolboard/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	defaultMoversLimit    = 5
	defaultMaxMoversLimit = 50
	snapshotFlightKey     = "snapshot"
)

// LeaderboardQuery selects what Leaderboard returns. An empty Category
// means all categories; Movers of zero means the configured default.
type LeaderboardQuery struct {
	Category string
	Movers   int
}

// Payload is the leaderboard response body.
type Payload struct {
	Scores model.CategoryScores  `json:"scores"`
	Movers []model.ScoreWithDelta `json:"movers,omitempty"`
	Week   string                 `json:"week"`
	// PriorWeek is the week of the snapshot the movers were computed against.
	PriorWeek string `json:"prior_week,omitempty"`
}

// Comparison is a registered comparison together with the two tools it
// compares. A tool missing from the catalog is left nil.
type Comparison struct {
	compare.Entry
	Left  *model.Tool `json:"left,omitempty"`
	Right *model.Tool `json:"right,omitempty"`
}

// Service wires the catalog, the comparison registry, the scoring engine
// and the snapshot store together.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog  *catalog.Catalog
	registry *compare.Registry
	engine   *scoring.Engine
	store    snapshot.Store

	// Configuration
	moversLimit      int
	maxMoversLimit   int
	snapshotInterval time.Duration

	// State
	loads        singleflight.Group
	started      bool
	stopRecorder context.CancelFunc
	recorderDone chan struct{}
	lastSaved    string

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalog sets the tool catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithRegistry sets the comparison registry.
func WithRegistry(r *compare.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithEngine sets the scoring engine.
func WithEngine(e *scoring.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithSnapshotStore sets the store used for prior rankings. Without one
// the leaderboard never carries movers.
func WithSnapshotStore(st snapshot.Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithMoversLimit sets the default number of movers returned.
func WithMoversLimit(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.moversLimit = n
		}
	}
}

// WithMaxMoversLimit caps the movers a caller may request.
func WithMaxMoversLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxMoversLimit = n
		}
	}
}

// WithSnapshotInterval sets how often the recorder checks for a week
// rollover. Zero disables the recorder.
func WithSnapshotInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.snapshotInterval = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Components that are not supplied fall back
// to the embedded catalog and registry and the default scoring engine.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		moversLimit:    defaultMoversLimit,
		maxMoversLimit: defaultMaxMoversLimit,
		logger:         logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.catalog == nil {
		c, err := catalog.LoadTools("")
		if err != nil {
			return nil, fmt.Errorf("load default catalog: %w", err)
		}
		s.catalog = c
	}
	if s.registry == nil {
		entries, err := catalog.LoadComparisons("")
		if err != nil {
			return nil, fmt.Errorf("load default comparisons: %w", err)
		}
		r, err := compare.NewRegistry(entries)
		if err != nil {
			return nil, fmt.Errorf("build default registry: %w", err)
		}
		s.registry = r
	}
	if s.engine == nil {
		e, err := scoring.NewEngine()
		if err != nil {
			return nil, err
		}
		s.engine = e
	}
	if s.moversLimit > s.maxMoversLimit {
		s.moversLimit = s.maxMoversLimit
	}

	metrics.UpdateRegistry(s.registry.Len(), len(s.registry.Conflicts()))
	return s, nil
}

// Start launches the snapshot recorder when a store and an interval are
// configured. It is a no-op on an already started service.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting toolboard service...",
		logger.Int("tools", s.catalog.Len()),
		logger.Int("comparisons", s.registry.Len()),
	)
	for _, c := range s.registry.Conflicts() {
		s.logger.Warn(ctx, "comparison registry conflict", logger.String("conflict", c.String()))
	}

	if s.store != nil && s.snapshotInterval > 0 {
		recorderCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		done := make(chan struct{})
		s.stopRecorder, s.recorderDone = cancel, done
		go func() {
			defer close(done)
			s.RunSnapshotRecorder(recorderCtx, s.snapshotInterval)
		}()
	}

	s.started = true
	s.logger.Info(ctx, "toolboard service started",
		logger.Int("moversLimit", s.moversLimit),
		logger.Duration("snapshotInterval", s.snapshotInterval),
	)
	return nil
}

// Stop stops the recorder and closes the snapshot store.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}

	s.logger.Info(context.Background(), "stopping toolboard service...")

	if s.stopRecorder != nil {
		s.stopRecorder()
		s.stopRecorder = nil
	}
	done := s.recorderDone
	s.recorderDone = nil
	s.started = false
	s.mu.Unlock()

	// The recorder takes the lock when it saves, so wait outside it.
	if done != nil {
		<-done
	}

	if err := s.Close(); err != nil {
		s.logger.Warn(context.Background(), "close snapshot store", logger.Error(err))
	}

	s.logger.Info(context.Background(), "toolboard service stopped")
}

// Close releases the snapshot store. Stop calls it; one-shot callers that
// never Start use it directly.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Leaderboard scores the catalog and, when a snapshot of an earlier week
// exists, attaches the top movers since that week.
func (s *Service) Leaderboard(ctx context.Context, q LeaderboardQuery) (Payload, error) {
	start := time.Now()
	p, err := s.leaderboard(ctx, q)
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.RecordLeaderboardBuild(outcome, float64(time.Since(start).Microseconds())/1000)
	return p, err
}

func (s *Service) leaderboard(ctx context.Context, q LeaderboardQuery) (Payload, error) {
	if q.Category != "" && !s.catalog.HasCategory(q.Category) {
		return Payload{}, fmt.Errorf("%w: %q", ErrUnknownCategory, q.Category)
	}
	limit, err := s.moversFor(q.Movers)
	if err != nil {
		return Payload{}, err
	}

	fresh := s.score(ctx)
	if q.Category != "" {
		fresh = model.CategoryScores{q.Category: fresh[q.Category]}
	}

	p := Payload{Scores: fresh, Week: s.engine.CurrentWeek()}
	if prior := s.loadPrior(ctx, p.Week); prior != nil {
		p.PriorWeek = prior.Week
		p.Movers = scoring.TopMovers(scoring.ComputeDeltas(fresh, prior.Categories), limit)
	}
	return p, nil
}

func (s *Service) moversFor(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, fmt.Errorf("%w: %d is negative", ErrInvalidMoversLimit, requested)
	case requested > s.maxMoversLimit:
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrInvalidMoversLimit, requested, s.maxMoversLimit)
	case requested == 0:
		return s.moversLimit, nil
	default:
		return requested, nil
	}
}

// score runs the engine over the catalog, reporting substituted metrics.
func (s *Service) score(ctx context.Context) model.CategoryScores {
	fresh, issues := s.engine.ComputeScores(s.catalog.Tools())
	for _, issue := range issues {
		metrics.RecordMetricSubstitution(issue.Metric)
		s.logger.Debug(ctx, "substituted neutral metric",
			logger.String("slug", issue.Slug),
			logger.String("metric", issue.Metric),
			logger.String("reason", issue.Reason),
		)
	}
	metrics.UpdateToolsScored(s.catalog.Len())
	return fresh
}

// loadPrior returns the latest snapshot of a week strictly before week.
// Concurrent callers share one read; any failure degrades to no prior data.
func (s *Service) loadPrior(ctx context.Context, week string) *model.Snapshot {
	if s.store == nil {
		return nil
	}

	v, err, _ := s.loads.Do(snapshotFlightKey+":"+week, func() (any, error) {
		return s.store.LoadBefore(ctx, week)
	})
	if err != nil {
		metrics.RecordSnapshotLoad(metrics.OutcomeError)
		metrics.RecordErrorByComponent("snapshot", "load")
		s.logger.Warn(ctx, "snapshot unavailable, serving without movers", logger.Error(err))
		return nil
	}

	snap, _ := v.(*model.Snapshot)
	if snap == nil {
		metrics.RecordSnapshotLoad(metrics.OutcomeMiss)
		return nil
	}
	metrics.RecordSnapshotLoad(metrics.OutcomeHit)
	return snap
}

// Resolve canonicalizes a comparison slug.
func (s *Service) Resolve(slug string) compare.Result {
	res := s.registry.Resolve(slug)
	metrics.RecordCompareResolution(string(res.Type))
	return res
}

// Comparisons returns the registered comparisons in registration order.
func (s *Service) Comparisons() []compare.Entry {
	return s.registry.Entries()
}

// Comparison returns the entry registered under canonical with both tools.
func (s *Service) Comparison(canonical string) (Comparison, error) {
	entry, ok := s.registry.Lookup(canonical)
	if !ok {
		return Comparison{}, fmt.Errorf("%w: %q", ErrUnknownComparison, canonical)
	}

	out := Comparison{Entry: entry}
	left, right := entry.Tools()
	if t, ok := s.catalog.Get(left); ok {
		out.Left = &t
	}
	if t, ok := s.catalog.Get(right); ok {
		out.Right = &t
	}
	return out, nil
}

// Categories returns the catalog categories, sorted.
func (s *Service) Categories() []string {
	return s.catalog.Categories()
}

// RecordSnapshot scores the catalog and stores it under the current week,
// replacing any snapshot already stored for that week. Earlier weeks are
// kept and remain the movers baseline until the week rolls over.
func (s *Service) RecordSnapshot(ctx context.Context) (model.Snapshot, error) {
	if s.store == nil {
		return model.Snapshot{}, ErrNoSnapshotStore
	}

	now := s.engine.Now().UTC()
	snap := model.Snapshot{
		Week:       scoring.WeekOf(now),
		Categories: s.score(ctx),
		CreatedAt:  now,
	}

	if err := s.store.Save(ctx, snap); err != nil {
		metrics.RecordSnapshotSave(metrics.OutcomeError, 0)
		metrics.RecordErrorByComponent("snapshot", "save")
		return model.Snapshot{}, fmt.Errorf("save snapshot %s: %w", snap.Week, err)
	}
	metrics.RecordSnapshotSave(metrics.OutcomeOK, now.Unix())

	s.mu.Lock()
	s.lastSaved = snap.Week
	s.mu.Unlock()

	s.logger.Info(ctx, "snapshot recorded", logger.String("week", snap.Week))
	return snap, nil
}

// RunSnapshotRecorder records a snapshot whenever none is stored for the
// current week, checking once immediately and then every interval until
// ctx is done.
func (s *Service) RunSnapshotRecorder(ctx context.Context, interval time.Duration) {
	if s.store == nil || interval <= 0 {
		return
	}

	s.recordIfStale(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.recordIfStale(ctx)
		}
	}
}

func (s *Service) recordIfStale(ctx context.Context) {
	week := s.engine.CurrentWeek()

	s.mu.RLock()
	saved := s.lastSaved
	s.mu.RUnlock()
	if saved == week {
		return
	}

	snap, err := s.store.LoadWeek(ctx, week)
	if err != nil {
		s.logger.Warn(ctx, "snapshot recorder cannot read store", logger.Error(err))
	}
	if snap != nil {
		s.mu.Lock()
		s.lastSaved = snap.Week
		s.mu.Unlock()
		return
	}

	if _, err := s.RecordSnapshot(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error(ctx, "snapshot recorder failed", logger.Error(err))
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":           s.started,
		"tools":             s.catalog.Len(),
		"categories":        s.catalog.Categories(),
		"comparisons":       s.registry.Len(),
		"registryConflicts": len(s.registry.Conflicts()),
		"week":              s.engine.CurrentWeek(),
		"lastSnapshotWeek":  s.lastSaved,
		"snapshotsEnabled":  s.store != nil,
		"moversLimit":       s.moversLimit,
		"maxMoversLimit":    s.maxMoversLimit,
	}
}
