package domain

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	// MaxSearchHistory caps the persisted search history
	MaxSearchHistory = 10
	// MaxSavedFilters caps the persisted saved filters
	MaxSavedFilters = 5
)

// SavedFilter is a named snapshot of directory filters
type SavedFilter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Filters   Filters   `json:"filters"`
	Search    string    `json:"search,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Draft is a locally saved, unsubmitted form
type Draft struct {
	Key      string            `json:"key"`
	Data     json.RawMessage   `json:"data"`
	SavedAt  time.Time         `json:"savedAt"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AddToHistory puts term at the front of history, removing any earlier copy,
// and trims the result to MaxSearchHistory. Blank terms leave history as is.
func AddToHistory(history []string, term string) []string {
	term = strings.TrimSpace(term)
	if term == "" {
		return history
	}
	out := make([]string, 0, min(len(history)+1, MaxSearchHistory))
	out = append(out, term)
	for _, h := range history {
		if h == term {
			continue
		}
		if len(out) == MaxSearchHistory {
			break
		}
		out = append(out, h)
	}
	return out
}

// AddSavedFilter puts f at the front of saved and trims to MaxSavedFilters.
// A filter with the same ID replaces the older copy.
func AddSavedFilter(saved []SavedFilter, f SavedFilter) []SavedFilter {
	out := make([]SavedFilter, 0, min(len(saved)+1, MaxSavedFilters))
	out = append(out, f)
	for _, s := range saved {
		if s.ID == f.ID {
			continue
		}
		if len(out) == MaxSavedFilters {
			break
		}
		out = append(out, s)
	}
	return out
}

// RemoveSavedFilter drops the filter with the given id
func RemoveSavedFilter(saved []SavedFilter, id string) []SavedFilter {
	out := make([]SavedFilter, 0, len(saved))
	for _, s := range saved {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

// ExportFile is a downloadable export produced by the backend
type ExportFile struct {
	Name         string
	ContentType  string
	Data         []byte
	TotalRecords int
	Fields       []string
}
