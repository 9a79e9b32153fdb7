package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/toolboard/internal/app"
	"github.com/okian/toolboard/pkg/logger"
)

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, q service.LeaderboardQuery) (service.Payload, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps   LeaderboardDependencies
	logger logger.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies, log logger.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:   deps,
		logger: log,
	}
}

// HandleGetLeaderboard handles GET /api/leaderboard?category=C&movers=N requests
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := service.LeaderboardQuery{Category: strings.TrimSpace(r.URL.Query().Get("category"))}
	if raw := r.URL.Query().Get("movers"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("movers must be a positive integer, got %q", raw)))
			return
		}
		q.Movers = n
	}

	payload, err := h.deps.Leaderboard(r.Context(), q)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, payload)
	case errors.Is(err, service.ErrInvalidMoversLimit):
		writeError(w, http.StatusBadRequest, "limit_exceeded", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrUnknownCategory):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	default:
		h.logger.Error(r.Context(), "leaderboard build failed", logger.Error(Wrap(op, err)))
		writeInternalError(w)
	}
}
