package ports

import "peopledir/internal/domain"

// ClientState persists small pieces of client state between sessions.
// Implementations are best effort: callers log failures and fall back
// to empty defaults.
type ClientState interface {
	SearchHistory() ([]string, error)
	SaveSearchHistory(history []string) error

	SavedFilters() ([]domain.SavedFilter, error)
	SaveSavedFilters(filters []domain.SavedFilter) error

	SaveDraft(draft domain.Draft) error
	// LoadDraft returns nil, nil when no usable draft exists
	LoadDraft(key string) (*domain.Draft, error)
	DeleteDraft(key string) error
	ListDrafts() ([]domain.Draft, error)

	Close() error
}
