package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/okian/toolboard/internal/domain/model"
)

// DefaultRetainWeeks is how many weeks a FileStore keeps.
const DefaultRetainWeeks = 12

// fileDocument is the on-disk layout of a FileStore:
// {"weeks": {"2026-W41": {"week": ..., "categories": {...}, "created_at": ...}}}.
type fileDocument struct {
	Weeks map[string]model.Snapshot `json:"weeks"`
}

// FileStore keeps the most recent weeks of snapshots in one JSON document.
type FileStore struct {
	mu     sync.Mutex
	path   string
	retain int
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithRetainWeeks sets how many of the latest weeks are kept on save.
func WithRetainWeeks(n int) FileOption {
	return func(s *FileStore) {
		if n > 0 {
			s.retain = n
		}
	}
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{path: path, retain: DefaultRetainWeeks}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the snapshot of the latest stored week. A missing file is
// not an error.
func (s *FileStore) Load(ctx context.Context) (*model.Snapshot, error) {
	return s.find(ctx, func([]string) int { return 0 })
}

// LoadWeek returns the snapshot stored for week.
func (s *FileStore) LoadWeek(ctx context.Context, week string) (*model.Snapshot, error) {
	return s.find(ctx, func(weeks []string) int { return slices.Index(weeks, week) })
}

// LoadBefore returns the latest snapshot stored for a week earlier than week.
func (s *FileStore) LoadBefore(ctx context.Context, week string) (*model.Snapshot, error) {
	return s.find(ctx, func(weeks []string) int {
		return slices.IndexFunc(weeks, func(w string) bool { return w < week })
	})
}

// find reads the document and returns the week picked from the weeks
// sorted newest first. pick returns -1 when nothing matches.
func (s *FileStore) find(ctx context.Context, pick func(weeks []string) int) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	doc, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	weeks := newestFirst(doc.Weeks)
	i := -1
	if len(weeks) > 0 {
		i = pick(weeks)
	}
	if i < 0 {
		return nil, nil
	}
	snap := doc.Weeks[weeks[i]]
	return &snap, nil
}

// Save stores the snapshot under its week, replacing that week if present,
// and drops weeks beyond the retention limit. The file is replaced atomically.
func (s *FileStore) Save(ctx context.Context, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.Week == "" {
		return ErrEmptyWeek
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Weeks[snap.Week] = snap
	for _, week := range newestFirst(doc.Weeks)[min(s.retain, len(doc.Weeks)):] {
		delete(doc.Weeks, week)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.write(data)
}

// Close is a no-op; the file is opened per call.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() (fileDocument, error) {
	doc := fileDocument{Weeks: map[string]model.Snapshot{}}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	if doc.Weeks == nil {
		doc.Weeks = map[string]model.Snapshot{}
	}
	return doc, nil
}

func (s *FileStore) write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", s.path, err)
	}
	return nil
}

// newestFirst returns the week keys sorted latest first. ISO week strings
// sort chronologically.
func newestFirst(weeks map[string]model.Snapshot) []string {
	keys := make([]string, 0, len(weeks))
	for w := range weeks {
		keys = append(keys, w)
	}
	slices.Sort(keys)
	slices.Reverse(keys)
	return keys
}
