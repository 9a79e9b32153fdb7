package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/okian/toolboard/internal/domain/model"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    week        TEXT PRIMARY KEY,
    categories  TEXT NOT NULL DEFAULT '{}',
    created_at  DATETIME NOT NULL
);
`

type snapshotRow struct {
	Week       string    `db:"week"`
	Categories string    `db:"categories"`
	CreatedAt  time.Time `db:"created_at"`
}

// SQLiteStore keeps one snapshot per ISO week and loads the most recent.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens the database at path and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns the snapshot with the latest week, or nil when empty.
func (s *SQLiteStore) Load(ctx context.Context) (*model.Snapshot, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, "SELECT week, categories, created_at FROM snapshots ORDER BY week DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return decodeRow(row)
}

// LoadWeek returns the snapshot stored for week, or nil when absent.
func (s *SQLiteStore) LoadWeek(ctx context.Context, week string) (*model.Snapshot, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, "SELECT week, categories, created_at FROM snapshots WHERE week = ?", week)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", week, err)
	}
	return decodeRow(row)
}

// LoadBefore returns the latest snapshot stored for a week earlier than
// week, or nil when there is none.
func (s *SQLiteStore) LoadBefore(ctx context.Context, week string) (*model.Snapshot, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, "SELECT week, categories, created_at FROM snapshots WHERE week < ? ORDER BY week DESC LIMIT 1", week)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot before %s: %w", week, err)
	}
	return decodeRow(row)
}

// Save upserts the snapshot for its week.
func (s *SQLiteStore) Save(ctx context.Context, snap model.Snapshot) error {
	if snap.Week == "" {
		return ErrEmptyWeek
	}
	categories, err := json.Marshal(snap.Categories)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.Week, err)
	}
	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (week, categories, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(week) DO UPDATE SET
			categories = excluded.categories,
			created_at = excluded.created_at
	`, snap.Week, string(categories), createdAt)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.Week, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func decodeRow(row snapshotRow) (*model.Snapshot, error) {
	snap := &model.Snapshot{Week: row.Week, CreatedAt: row.CreatedAt}
	if err := json.Unmarshal([]byte(row.Categories), &snap.Categories); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", row.Week, err)
	}
	return snap, nil
}
