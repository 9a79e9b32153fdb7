package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	service "github.com/okian/toolboard/internal/app"
	"github.com/okian/toolboard/internal/domain/compare"
)

// ComparePathPrefix is the route prefix of comparison pages.
const ComparePathPrefix = "/compare/"

type canonicalKey struct{}

// CanonicalFrom returns the canonical slug CanonicalMiddleware resolved for
// the request.
func CanonicalFrom(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(canonicalKey{}).(string)
	return s, ok
}

// CanonicalMiddleware resolves the comparison slug of every /compare/ request
// before next runs. Redirects answer 308 to the canonical path with the query
// string preserved, unknown slugs answer 404, and exact matches reach next
// with the canonical slug on the context.
func CanonicalMiddleware(next http.HandlerFunc, resolver Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "api.canonicalize"
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}

		slug := strings.TrimPrefix(r.URL.Path, ComparePathPrefix)
		res := resolver.Resolve(slug)
		switch res.Type {
		case compare.ResultExact:
			next(w, r.WithContext(context.WithValue(r.Context(), canonicalKey{}, res.Target)))
		case compare.ResultRedirect:
			target := ComparePathPrefix + url.PathEscape(res.Target)
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		default:
			writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		}
	}
}

// CompareHandler serves the comparison registry.
type CompareHandler struct {
	deps ComparisonDependencies
}

// NewCompareHandler creates a new comparison handler.
func NewCompareHandler(deps ComparisonDependencies) *CompareHandler {
	return &CompareHandler{deps: deps}
}

// HandleGetComparison handles GET /compare/{slug} after canonicalization.
func (h *CompareHandler) HandleGetComparison(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_comparison"
	canonical, ok := CanonicalFrom(r.Context())
	if !ok {
		http.NotFound(w, r)
		return
	}

	c, err := h.deps.Comparison(canonical)
	if errors.Is(err, service.ErrUnknownComparison) {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	}
	if err != nil {
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type comparisonsResponse struct {
	Comparisons []compare.Entry `json:"comparisons"`
	Count       int             `json:"count"`
}

// HandleListComparisons handles GET /api/comparisons requests.
func (h *CompareHandler) HandleListComparisons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	entries := h.deps.Comparisons()
	writeJSON(w, http.StatusOK, comparisonsResponse{Comparisons: entries, Count: len(entries)})
}
