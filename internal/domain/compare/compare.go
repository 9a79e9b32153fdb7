// Package compare resolves "x-vs-y" comparison slugs to their canonical
// registry entry and decides whether a request must be redirected.
package compare

import (
	"fmt"
	"slices"
)

// Entry is one registered comparison.
type Entry struct {
	Canonical string   `json:"canonical" yaml:"canonical"`
	Aliases   []string `json:"aliases,omitempty" yaml:"aliases"`
}

// Tools returns the two tool identifiers of the canonical slug.
func (e Entry) Tools() (string, string) {
	left, right, _ := Split(e.Canonical)
	return left, right
}

// ResultType tags a resolution outcome.
type ResultType string

// Resolution outcomes.
const (
	ResultExact    ResultType = "exact"
	ResultRedirect ResultType = "redirect"
	ResultNotFound ResultType = "not_found"
)

// Result is the outcome of Resolve. Target is empty for ResultNotFound.
type Result struct {
	Type   ResultType `json:"type"`
	Target string     `json:"target,omitempty"`
}

// Conflict records a registration that lost to an earlier entry.
type Conflict struct {
	Kind    string // canonical, pair or alias
	Key     string
	Kept    string
	Ignored string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s %q: kept %q, ignored %q", c.Kind, c.Key, c.Kept, c.Ignored)
}

// Registry is the immutable comparison index. It is built once at startup
// and is safe for concurrent readers.
type Registry struct {
	entries   []Entry
	canonical map[string]int
	pairs     map[string]int
	aliases   map[string]int
	conflicts []Conflict
}

// NewRegistry indexes entries in order. The first entry to claim a
// canonical slug, a tool pair or an alias owns it; later claims are
// recorded as conflicts and ignored. A malformed canonical slug fails the
// whole registry.
func NewRegistry(entries []Entry) (*Registry, error) {
	r := &Registry{
		entries:   make([]Entry, 0, len(entries)),
		canonical: make(map[string]int, len(entries)),
		pairs:     make(map[string]int, len(entries)),
		aliases:   make(map[string]int),
	}

	for i, e := range entries {
		canonical := Normalize(e.Canonical)
		left, right, ok := Split(canonical)
		if !ok || left == right {
			return nil, fmt.Errorf("%w: entry %d %q", ErrInvalidCanonical, i, e.Canonical)
		}

		if owner, taken := r.canonical[canonical]; taken {
			r.conflicts = append(r.conflicts, Conflict{Kind: "canonical", Key: canonical, Kept: r.entries[owner].Canonical, Ignored: canonical})
			continue
		}
		key := pairKey(left, right)
		if owner, taken := r.pairs[key]; taken {
			r.conflicts = append(r.conflicts, Conflict{Kind: "pair", Key: left + Separator + right, Kept: r.entries[owner].Canonical, Ignored: canonical})
			continue
		}

		idx := len(r.entries)
		stored := Entry{Canonical: canonical}
		r.canonical[canonical] = idx
		r.pairs[key] = idx

		for _, raw := range e.Aliases {
			alias := Normalize(raw)
			if alias == "" || alias == canonical {
				continue
			}
			if owner, taken := r.aliases[alias]; taken {
				if owner != idx {
					r.conflicts = append(r.conflicts, Conflict{Kind: "alias", Key: alias, Kept: r.entries[owner].Canonical, Ignored: canonical})
				}
				continue
			}
			r.aliases[alias] = idx
			stored.Aliases = append(stored.Aliases, alias)
		}
		r.entries = append(r.entries, stored)
	}
	return r, nil
}

// Resolve maps slug to its canonical comparison:
//  1. the normalized slug is a canonical slug: exact;
//  2. both halves name a registered pair in either order: redirect;
//  3. the slug is a known alias: redirect;
//  4. otherwise not found.
func (r *Registry) Resolve(slug string) Result {
	s := Normalize(slug)
	if s == "" {
		return Result{Type: ResultNotFound}
	}

	if _, ok := r.canonical[s]; ok {
		return Result{Type: ResultExact, Target: s}
	}
	if left, right, ok := Split(s); ok {
		if idx, ok := r.pairs[pairKey(left, right)]; ok {
			return Result{Type: ResultRedirect, Target: r.entries[idx].Canonical}
		}
	}
	if idx, ok := r.aliases[s]; ok {
		return Result{Type: ResultRedirect, Target: r.entries[idx].Canonical}
	}
	return Result{Type: ResultNotFound}
}

// Lookup returns the entry registered under a canonical slug.
func (r *Registry) Lookup(canonical string) (Entry, bool) {
	idx, ok := r.canonical[canonical]
	if !ok {
		return Entry{}, false
	}
	e := r.entries[idx]
	return Entry{Canonical: e.Canonical, Aliases: slices.Clone(e.Aliases)}, true
}

// Entries returns the registered entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = Entry{Canonical: e.Canonical, Aliases: slices.Clone(e.Aliases)}
	}
	return out
}

// Conflicts returns the registrations ignored because an earlier entry
// claimed the same key.
func (r *Registry) Conflicts() []Conflict {
	out := make([]Conflict, len(r.conflicts))
	copy(out, r.conflicts)
	return out
}

// Len returns the number of registered comparisons.
func (r *Registry) Len() int { return len(r.entries) }
