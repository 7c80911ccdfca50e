package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"peopledir/internal/domain"
)

// stateTx groups the writes that must land together
type stateTx struct {
	tx *sql.Tx
}

// withTx runs fn inside a transaction, committing when fn returns nil
func (s *Store) withTx(fn func(tx *stateTx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&stateTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (t *stateTx) clearSavedFilters() error {
	_, err := t.tx.Exec(`DELETE FROM saved_filters`)
	return err
}

func (t *stateTx) insertSavedFilter(position int, f domain.SavedFilter) error {
	filters, err := json.Marshal(f.Filters)
	if err != nil {
		return fmt.Errorf("encode filters for %q: %w", f.ID, err)
	}
	_, err = t.tx.Exec(`
		INSERT OR REPLACE INTO saved_filters (id, position, name, filters, search, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.ID, position, f.Name, string(filters), f.Search, f.CreatedAt.UnixMilli())
	return err
}
