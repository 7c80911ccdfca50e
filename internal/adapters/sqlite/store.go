// Package sqlite persists client state (search history, saved filters and
// form drafts) in a local SQLite database.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"peopledir/internal/application"
	"peopledir/internal/domain"
	"peopledir/internal/ports"
)

const schemaVersion = "1"

const keySearchHistory = "search_history"

// Store implements ports.ClientState using SQLite
type Store struct {
	db   *sql.DB
	path string
	log  *zap.Logger
}

var _ ports.ClientState = (*Store)(nil)

// Open creates the database at path if needed and brings the schema up
// to date
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps WAL checkpoints simple for a single-user client
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS search_history (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS saved_filters (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			filters TEXT NOT NULL,
			search TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS drafts (
			key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			saved_at INTEGER NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}'
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_saved_filters_position ON saved_filters(position);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}

	return &Store{db: db, path: path, log: log.Named("state")}, nil
}

// Path returns the database file location
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SearchHistory returns the persisted history, most recent first. A
// corrupt entry reads as empty history.
func (s *Store) SearchHistory() ([]string, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM search_history WHERE key = ?`, keySearchHistory).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &application.StorageError{Op: "read", Key: keySearchHistory, Err: err}
	}

	var history []string
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		s.log.Warn("discarding corrupt search history", zap.Error(err))
		return nil, nil
	}
	return history, nil
}

// SaveSearchHistory replaces the persisted history
func (s *Store) SaveSearchHistory(history []string) error {
	if history == nil {
		history = []string{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return &application.StorageError{Op: "write", Key: keySearchHistory, Err: err}
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO search_history (key, value, updated_at) VALUES (?, ?, ?)
	`, keySearchHistory, string(data), time.Now().UnixMilli())
	if err != nil {
		return &application.StorageError{Op: "write", Key: keySearchHistory, Err: err}
	}
	return nil
}

// SavedFilters returns the saved filters in their stored order. Rows whose
// filters cannot be decoded are skipped.
func (s *Store) SavedFilters() ([]domain.SavedFilter, error) {
	rows, err := s.db.Query(`
		SELECT id, name, filters, search, created_at
		FROM saved_filters ORDER BY position
	`)
	if err != nil {
		return nil, &application.StorageError{Op: "read", Key: "saved_filters", Err: err}
	}
	defer rows.Close()

	var out []domain.SavedFilter
	for rows.Next() {
		var (
			f       domain.SavedFilter
			filters string
			created int64
		)
		if err := rows.Scan(&f.ID, &f.Name, &filters, &f.Search, &created); err != nil {
			return nil, &application.StorageError{Op: "read", Key: "saved_filters", Err: err}
		}
		if err := json.Unmarshal([]byte(filters), &f.Filters); err != nil {
			s.log.Warn("skipping corrupt saved filter", zap.String("id", f.ID), zap.Error(err))
			continue
		}
		f.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, &application.StorageError{Op: "read", Key: "saved_filters", Err: err}
	}
	return out, nil
}

// SaveSavedFilters replaces all saved filters in one transaction
func (s *Store) SaveSavedFilters(filters []domain.SavedFilter) error {
	err := s.withTx(func(tx *stateTx) error {
		if err := tx.clearSavedFilters(); err != nil {
			return err
		}
		for i, f := range filters {
			if err := tx.insertSavedFilter(i, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &application.StorageError{Op: "write", Key: "saved_filters", Err: err}
	}
	return nil
}

// SaveDraft stores or replaces the draft under draft.Key
func (s *Store) SaveDraft(draft domain.Draft) error {
	if draft.Key == "" {
		return &application.StorageError{Op: "write", Key: "draft", Err: errors.New("empty draft key")}
	}
	if len(draft.Data) == 0 || !json.Valid(draft.Data) {
		return &application.StorageError{Op: "write", Key: draft.Key, Err: errors.New("draft data is not valid JSON")}
	}
	meta := draft.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return &application.StorageError{Op: "write", Key: draft.Key, Err: err}
	}
	savedAt := draft.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO drafts (key, data, saved_at, metadata) VALUES (?, ?, ?, ?)
	`, draft.Key, string(draft.Data), savedAt.UnixMilli(), string(metaJSON))
	if err != nil {
		return &application.StorageError{Op: "write", Key: draft.Key, Err: err}
	}
	return nil
}

// LoadDraft returns the draft stored under key, or nil when there is none
// or the stored row is unreadable
func (s *Store) LoadDraft(key string) (*domain.Draft, error) {
	row := s.db.QueryRow(`SELECT key, data, saved_at, metadata FROM drafts WHERE key = ?`, key)
	d, err := s.scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &application.StorageError{Op: "read", Key: key, Err: err}
	}
	return d, nil
}

// DeleteDraft removes the draft under key; a missing draft is not an error
func (s *Store) DeleteDraft(key string) error {
	if _, err := s.db.Exec(`DELETE FROM drafts WHERE key = ?`, key); err != nil {
		return &application.StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// ListDrafts returns every readable draft, newest first
func (s *Store) ListDrafts() ([]domain.Draft, error) {
	rows, err := s.db.Query(`SELECT key, data, saved_at, metadata FROM drafts ORDER BY saved_at DESC, key`)
	if err != nil {
		return nil, &application.StorageError{Op: "read", Key: "drafts", Err: err}
	}
	defer rows.Close()

	var out []domain.Draft
	for rows.Next() {
		d, err := s.scanDraft(rows)
		if err != nil {
			return nil, &application.StorageError{Op: "read", Key: "drafts", Err: err}
		}
		if d != nil {
			out = append(out, *d)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &application.StorageError{Op: "read", Key: "drafts", Err: err}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanDraft reads one drafts row. A row with invalid JSON yields nil, nil.
func (s *Store) scanDraft(sc scanner) (*domain.Draft, error) {
	var (
		d        domain.Draft
		data     string
		savedAt  int64
		metadata string
	)
	if err := sc.Scan(&d.Key, &data, &savedAt, &metadata); err != nil {
		return nil, err
	}
	if !json.Valid([]byte(data)) {
		s.log.Warn("skipping corrupt draft", zap.String("key", d.Key))
		return nil, nil
	}
	if err := json.Unmarshal([]byte(metadata), &d.Metadata); err != nil {
		s.log.Warn("skipping draft with corrupt metadata", zap.String("key", d.Key), zap.Error(err))
		return nil, nil
	}
	if len(d.Metadata) == 0 {
		d.Metadata = nil
	}
	d.Data = json.RawMessage(data)
	d.SavedAt = time.UnixMilli(savedAt).UTC()
	return &d, nil
}

func expandHome(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty database path")
	}
	if path == ":memory:" {
		return path, nil
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	return path, nil
}
