// Package snapshot persists weekly leaderboard snapshots used as the
// baseline for score deltas.
package snapshot

import (
	"context"
	"fmt"

	"github.com/okian/toolboard/internal/domain/model"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Store reads and writes snapshots keyed by ISO week. The load methods
// return a nil snapshot and a nil error when nothing matches.
type Store interface {
	// Load returns the snapshot of the latest stored week.
	Load(ctx context.Context) (*model.Snapshot, error)
	// LoadWeek returns the snapshot stored for week.
	LoadWeek(ctx context.Context, week string) (*model.Snapshot, error)
	// LoadBefore returns the latest snapshot whose week sorts strictly
	// before week.
	LoadBefore(ctx context.Context, week string) (*model.Snapshot, error)
	Save(ctx context.Context, s model.Snapshot) error
	Close() error
}

// Open returns the store for backend rooted at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
