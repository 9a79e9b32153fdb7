// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/toolboard/internal/app"
	"github.com/okian/toolboard/internal/domain/compare"
	"github.com/okian/toolboard/pkg/logger"
	"github.com/okian/toolboard/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	LeaderboardDependencies
	Resolver
	ComparisonDependencies
	StatsProvider
}

// Resolver canonicalizes comparison slugs.
type Resolver interface {
	Resolve(slug string) compare.Result
}

// ComparisonDependencies exposes the registered comparisons.
type ComparisonDependencies interface {
	Comparison(canonical string) (service.Comparison, error)
	Comparisons() []compare.Entry
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	compareHandler     *CompareHandler
	resolver           Resolver
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, log),
		compareHandler:     NewCompareHandler(deps),
		resolver:           deps,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/api/comparisons", MetricsMiddleware(s.compareHandler.HandleListComparisons, "comparisons"))
	mux.HandleFunc("/compare/", MetricsMiddleware(
		CanonicalMiddleware(s.compareHandler.HandleGetComparison, s.resolver), "compare"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before writing the header. A value that cannot be
// encoded is answered with the internal error body and a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		metrics.RecordErrorByComponent("http", "encode")
		body = []byte(`{"code":"internal_error","message":"internal server error"}`)
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeInternalError never exposes the underlying error to the client.
func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "internal_error", Message: "internal server error"})
}
