package directory

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"peopledir/internal/application"
	"peopledir/internal/domain"
	"peopledir/internal/request"
)

// loadPersisted reads history and saved filters. Storage failures leave the
// defaults in place.
func (e *Engine) loadPersisted() {
	if e.state == nil {
		return
	}
	history, err := e.state.SearchHistory()
	if err != nil {
		e.log.Warn("search history unavailable", zap.Error(err))
		history = nil
	}
	saved, err := e.state.SavedFilters()
	if err != nil {
		e.log.Warn("saved filters unavailable", zap.Error(err))
		saved = nil
	}
	e.history = history
	e.saved = saved
}

func (e *Engine) addHistory(term string) {
	e.mu.Lock()
	e.history = domain.AddToHistory(e.history, term)
	history := append([]string(nil), e.history...)
	e.mu.Unlock()
	e.persistHistory(history)
}

func (e *Engine) persistHistory(history []string) {
	if e.state == nil {
		return
	}
	if err := e.state.SaveSearchHistory(history); err != nil {
		e.log.Warn("saving search history", zap.Error(err))
	}
}

func (e *Engine) persistSaved(saved []domain.SavedFilter) {
	if e.state == nil {
		return
	}
	if err := e.state.SaveSavedFilters(saved); err != nil {
		e.log.Warn("saving filters", zap.Error(err))
	}
}

// History returns recent search terms, newest first
func (e *Engine) History() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.history...)
}

// ClearHistory forgets every search term
func (e *Engine) ClearHistory() {
	e.mu.Lock()
	e.history = nil
	e.mu.Unlock()
	e.persistHistory(nil)
}

// SavedFilters returns the saved filters, newest first
func (e *Engine) SavedFilters() []domain.SavedFilter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.SavedFilter(nil), e.saved...)
}

// SaveCurrentFilter stores the current filters and search under name
func (e *Engine) SaveCurrentFilter(name string) (domain.SavedFilter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.SavedFilter{}, &application.ValidationError{Field: "name", Message: "name is required"}
	}

	e.mu.Lock()
	f := domain.SavedFilter{
		ID:        e.newID(),
		Name:      name,
		Filters:   e.query.Filters.Clone(),
		Search:    e.query.Search,
		CreatedAt: e.now(),
	}
	e.saved = domain.AddSavedFilter(e.saved, f)
	saved := append([]domain.SavedFilter(nil), e.saved...)
	e.mu.Unlock()

	e.persistSaved(saved)
	return f, nil
}

// DeleteSavedFilter removes a saved filter
func (e *Engine) DeleteSavedFilter(id string) {
	e.mu.Lock()
	e.saved = domain.RemoveSavedFilter(e.saved, id)
	saved := append([]domain.SavedFilter(nil), e.saved...)
	e.mu.Unlock()
	e.persistSaved(saved)
}

// ApplySavedFilter replaces the filters and search with a saved snapshot
func (e *Engine) ApplySavedFilter(ctx context.Context, id string) (ListResult, error) {
	e.mu.Lock()
	var found *domain.SavedFilter
	for i := range e.saved {
		if e.saved[i].ID == id {
			found = &e.saved[i]
			break
		}
	}
	if found == nil {
		e.mu.Unlock()
		return request.Cancelled[domain.DirectoryResult](), fmt.Errorf("saved filter %q: %w", id, application.ErrNotFound)
	}
	filters := found.Filters.Clone()
	search := found.Search
	e.mu.Unlock()

	e.mutate(func(q *domain.Query) {
		q.Filters = filters
		q.Search = search
	})
	return e.load(ctx, false), nil
}

// Selected returns the marked employee ids on the current page
func (e *Engine) Selected() []domain.EmployeeID {
	return e.Snapshot().Selected
}
