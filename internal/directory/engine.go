// Package directory drives the paginated, filterable employee listing:
// filter/sort/page state, cached and deduplicated fetches, debounced search
// with suggestions, export, search history and saved filters.
package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"peopledir/internal/cache"
	"peopledir/internal/debounce"
	"peopledir/internal/domain"
	"peopledir/internal/metrics"
	"peopledir/internal/ports"
	"peopledir/internal/request"
)

const (
	streamListing    = "listing"
	streamSuggestion = "suggestions"
)

// ListResult is the outcome of a listing transition
type ListResult = request.Result[domain.DirectoryResult]

// Snapshot is a consistent copy of the engine state for rendering
type Snapshot struct {
	Query       domain.Query
	Items       []domain.Employee
	Pagination  domain.Pagination
	TotalPages  int
	HasNext     bool
	HasPrevious bool
	Loading     bool
	Loaded      bool
	Err         error
	Suggestions []domain.Suggestion
	Selected    []domain.EmployeeID
}

// Update is delivered after a debounced search completes
type Update struct {
	Term        string
	Listing     ListResult
	Suggestions []domain.Suggestion
}

// Engine owns one directory view's state, cache and request coordinators.
// Create it when the view mounts and Close it when the view goes away.
type Engine struct {
	api   ports.DirectoryAPI
	state ports.ClientState
	log   *zap.Logger
	now   func() time.Time
	newID func() string

	cacheTTL        time.Duration
	debounceWindow  time.Duration
	scheduler       debounce.AfterFunc
	suggestionLimit int
	metrics         *metrics.Collectors

	cache     *cache.Store[domain.DirectoryResult]
	listing   *request.Coordinator[domain.DirectoryResult]
	suggester *request.Coordinator[[]domain.Suggestion]
	debouncer *debounce.Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	query       domain.Query
	items       []domain.Employee
	total       int
	loaded      bool
	lastErr     error
	suggestions []domain.Suggestion
	selected    map[domain.EmployeeID]struct{}
	history     []string
	saved       []domain.SavedFilter
	onUpdate    func(Update)
}

// New creates an engine over api
func New(api ports.DirectoryAPI, opts ...Option) *Engine {
	e := &Engine{
		api:             api,
		log:             zap.NewNop(),
		now:             time.Now,
		newID:           defaultIDGenerator,
		cacheTTL:        cache.DefaultTTL,
		debounceWindow:  debounce.DefaultWindow,
		suggestionLimit: DefaultSuggestionLimit,
		query: domain.Query{
			Page:      1,
			PageSize:  DefaultPageSize,
			SortOrder: domain.SortAsc,
			Filters:   domain.Filters{},
		},
		selected: make(map[domain.EmployeeID]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("directory")
	e.cache = cache.New[domain.DirectoryResult]("directory",
		cache.WithTTL(e.cacheTTL),
		cache.WithClock(e.now),
		cache.WithMetrics(e.metrics))
	e.listing = request.NewCoordinator[domain.DirectoryResult]("directory", e.log, e.metrics)
	e.suggester = request.NewCoordinator[[]domain.Suggestion]("suggestions", e.log, e.metrics)
	e.debouncer = debounce.NewWithScheduler(e.debounceWindow, e.scheduler)
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.loadPersisted()
	return e
}

// Close cancels outstanding requests and pending debounced searches
func (e *Engine) Close() {
	e.debouncer.Stop()
	e.listing.CancelAll()
	e.suggester.CancelAll()
	e.cancel()
}

// OnUpdate registers the callback for debounced search results
func (e *Engine) OnUpdate(fn func(Update)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onUpdate = fn
}

// Snapshot returns the current state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.paginationLocked()
	selected := make([]domain.EmployeeID, 0, len(e.selected))
	for _, it := range e.items {
		if _, ok := e.selected[it.ID]; ok {
			selected = append(selected, it.ID)
		}
	}
	return Snapshot{
		Query:       cloneQuery(e.query),
		Items:       append([]domain.Employee(nil), e.items...),
		Pagination:  p,
		TotalPages:  p.TotalPages(),
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
		Loading:     e.listing.InFlight(streamListing),
		Loaded:      e.loaded,
		Err:         e.lastErr,
		Suggestions: append([]domain.Suggestion(nil), e.suggestions...),
		Selected:    selected,
	}
}

func (e *Engine) paginationLocked() domain.Pagination {
	return domain.Pagination{Page: e.query.Page, PageSize: e.query.PageSize, TotalCount: e.total}
}

// --- transitions ---

// Load fetches the current query, from cache when fresh
func (e *Engine) Load(ctx context.Context) ListResult {
	return e.load(ctx, false)
}

// Refresh refetches the current query, bypassing the cache
func (e *Engine) Refresh(ctx context.Context) ListResult {
	return e.load(ctx, true)
}

// SetFilter sets one filter (empty value clears it) and returns to page 1
func (e *Engine) SetFilter(ctx context.Context, key, value string) ListResult {
	e.mutate(func(q *domain.Query) {
		if strings.TrimSpace(value) == "" {
			delete(q.Filters, key)
			return
		}
		q.Filters[key] = strings.TrimSpace(value)
	})
	return e.load(ctx, false)
}

// SetFilters merges filters into the current set and returns to page 1
func (e *Engine) SetFilters(ctx context.Context, filters domain.Filters) ListResult {
	e.mutate(func(q *domain.Query) {
		for k, v := range filters {
			if strings.TrimSpace(v) == "" {
				delete(q.Filters, k)
				continue
			}
			q.Filters[k] = strings.TrimSpace(v)
		}
	})
	return e.load(ctx, false)
}

// ClearFilters drops every filter and the search term
func (e *Engine) ClearFilters(ctx context.Context) ListResult {
	e.mutate(func(q *domain.Query) {
		q.Filters = domain.Filters{}
		q.Search = ""
	})
	return e.load(ctx, false)
}

// Search commits a search term and records it in the history
func (e *Engine) Search(ctx context.Context, term string) ListResult {
	term = strings.TrimSpace(term)
	e.mutate(func(q *domain.Query) {
		q.Search = term
	})
	if term != "" {
		e.addHistory(term)
	}
	return e.load(ctx, false)
}

// Sort sets the sort field and order
func (e *Engine) Sort(ctx context.Context, field string, order domain.SortOrder) ListResult {
	e.mutate(func(q *domain.Query) {
		q.SortField = field
		q.SortOrder = order
		if q.SortOrder == "" {
			q.SortOrder = domain.SortAsc
		}
	})
	return e.load(ctx, false)
}

// ToggleSort flips the order when field is already the sort field,
// otherwise sorts ascending by field
func (e *Engine) ToggleSort(ctx context.Context, field string) ListResult {
	e.mutate(func(q *domain.Query) {
		if q.SortField == field {
			q.SortOrder = q.SortOrder.Toggle()
			return
		}
		q.SortField = field
		q.SortOrder = domain.SortAsc
	})
	return e.load(ctx, false)
}

// ChangePageSize sets the page size; sizes below 1 become 1
func (e *Engine) ChangePageSize(ctx context.Context, size int) ListResult {
	e.mutate(func(q *domain.Query) {
		q.PageSize = max(size, 1)
	})
	return e.load(ctx, false)
}

// GoToPage moves to page p, clamped into [1, max(1, totalPages)]
func (e *Engine) GoToPage(ctx context.Context, p int) ListResult {
	e.mu.Lock()
	e.query.Page = domain.ClampPage(p, e.paginationLocked().TotalPages())
	e.mu.Unlock()
	return e.load(ctx, false)
}

// NextPage moves forward one page when possible
func (e *Engine) NextPage(ctx context.Context) ListResult {
	return e.GoToPage(ctx, e.currentPage()+1)
}

// PreviousPage moves back one page when possible
func (e *Engine) PreviousPage(ctx context.Context) ListResult {
	return e.GoToPage(ctx, e.currentPage()-1)
}

// FirstPage jumps to page 1
func (e *Engine) FirstPage(ctx context.Context) ListResult {
	return e.GoToPage(ctx, 1)
}

// LastPage jumps to the last known page
func (e *Engine) LastPage(ctx context.Context) ListResult {
	e.mu.Lock()
	last := e.paginationLocked().TotalPages()
	e.mu.Unlock()
	return e.GoToPage(ctx, last)
}

func (e *Engine) currentPage() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query.Page
}

// mutate applies a result-set-changing edit: page goes back to 1 and the
// selection is dropped
func (e *Engine) mutate(edit func(q *domain.Query)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.query.Filters == nil {
		e.query.Filters = domain.Filters{}
	}
	edit(&e.query)
	e.query.Page = 1
	clear(e.selected)
}

// load resolves the current query through the cache and the coordinator
func (e *Engine) load(ctx context.Context, bypassCache bool) ListResult {
	e.mu.Lock()
	q := cloneQuery(e.query)
	e.mu.Unlock()
	sig := q.Signature()

	if !bypassCache {
		if res, ok := e.cache.Get(sig); ok {
			return e.applyResult(ctx, sig, res)
		}
	}

	r := e.listing.Do(ctx, streamListing, sig, func(ctx context.Context) (domain.DirectoryResult, error) {
		return e.api.ListEmployees(ctx, q)
	})

	switch r.Status {
	case request.StatusOK:
		e.cache.Put(sig, r.Value)
		return e.applyResult(ctx, sig, r.Value)
	case request.StatusFailed:
		e.mu.Lock()
		if e.query.Signature() == sig {
			e.lastErr = r.Err
		}
		e.mu.Unlock()
		e.log.Warn("directory fetch failed", zap.String("signature", sig), zap.Error(r.Err))
	default:
		e.log.Debug("directory fetch cancelled", zap.String("signature", sig))
	}
	return r
}

// applyResult installs res when sig still describes the current query.
// When the new total pushes the page out of range, the page is clamped and
// the clamped page is loaded.
func (e *Engine) applyResult(ctx context.Context, sig string, res domain.DirectoryResult) ListResult {
	e.mu.Lock()
	if e.query.Signature() != sig {
		e.mu.Unlock()
		return request.Cancelled[domain.DirectoryResult]()
	}
	e.items = res.Items
	e.total = max(res.TotalCount, 0)
	e.loaded = true
	e.lastErr = nil

	clamped := domain.ClampPage(e.query.Page, e.paginationLocked().TotalPages())
	reload := clamped != e.query.Page
	e.query.Page = clamped
	e.mu.Unlock()

	if reload {
		e.log.Debug("page out of range after load, clamping", zap.Int("page", clamped))
		return e.load(ctx, false)
	}
	return request.OK(res)
}

// ClearCache drops every cached page
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// --- debounced search and suggestions ---

// Type feeds one keystroke's worth of search input. Only the last input of
// a burst survives the debounce window; it is then committed with Search and
// suggestions are fetched for it. The result goes to the OnUpdate callback.
func (e *Engine) Type(raw string) {
	e.debouncer.Trigger(func() {
		e.runTyped(raw)
	})
}

// CancelTyping drops a pending debounced search
func (e *Engine) CancelTyping() {
	e.debouncer.Cancel()
}

func (e *Engine) runTyped(raw string) {
	var (
		listing     ListResult
		suggestions []domain.Suggestion
	)
	var g errgroup.Group
	g.Go(func() error {
		listing = e.Search(e.ctx, raw)
		return nil
	})
	g.Go(func() error {
		suggestions = e.Suggestions(e.ctx, raw)
		return nil
	})
	_ = g.Wait()

	e.mu.Lock()
	notify := e.onUpdate
	e.mu.Unlock()
	if notify != nil {
		notify(Update{Term: raw, Listing: listing, Suggestions: suggestions})
	}
}

// Suggestions fetches completions for term. It bypasses the cache and
// swallows failures: suggestions are optional.
func (e *Engine) Suggestions(ctx context.Context, term string) []domain.Suggestion {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinSuggestionLength {
		e.suggester.Cancel(streamSuggestion)
		e.setSuggestions(nil)
		return nil
	}

	sig := fmt.Sprintf("q=%s&limit=%d", term, e.suggestionLimit)
	r := e.suggester.Do(ctx, streamSuggestion, sig, func(ctx context.Context) ([]domain.Suggestion, error) {
		return e.api.Suggestions(ctx, term, e.suggestionLimit)
	})
	switch r.Status {
	case request.StatusOK:
		e.setSuggestions(r.Value)
		return r.Value
	case request.StatusFailed:
		e.log.Warn("suggestions unavailable", zap.String("term", term), zap.Error(r.Err))
	}
	return nil
}

func (e *Engine) setSuggestions(s []domain.Suggestion) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.suggestions = s
}

// --- export ---

// Export asks the backend for the currently filtered directory as a file.
// Errors are returned to the caller and leave the engine state untouched.
func (e *Engine) Export(ctx context.Context, fields []string) (domain.ExportFile, error) {
	e.mu.Lock()
	q := cloneQuery(e.query)
	e.mu.Unlock()

	file, err := e.api.Export(ctx, q, fields)
	if err != nil {
		e.log.Warn("export failed", zap.Error(err))
		return domain.ExportFile{}, fmt.Errorf("export: %w", err)
	}
	if file.Name == "" {
		file.Name = fmt.Sprintf("employees_%s.csv", e.now().Format("2006-01-02"))
	}
	return file, nil
}

// --- selection ---

// Select marks an employee on the current page
func (e *Engine) Select(id domain.EmployeeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected[id] = struct{}{}
}

// Deselect unmarks an employee
func (e *Engine) Deselect(id domain.EmployeeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.selected, id)
}

// ToggleSelection flips the mark on an employee and reports the new state
func (e *Engine) ToggleSelection(id domain.EmployeeID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.selected[id]; ok {
		delete(e.selected, id)
		return false
	}
	e.selected[id] = struct{}{}
	return true
}

// SelectAllOnPage marks every employee on the current page
func (e *Engine) SelectAllOnPage() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, it := range e.items {
		e.selected[it.ID] = struct{}{}
	}
}

// ClearSelection unmarks everyone
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.selected)
}

func cloneQuery(q domain.Query) domain.Query {
	q.Filters = q.Filters.Clone()
	return q
}

func sortOrder(s string) domain.SortOrder {
	if strings.EqualFold(s, string(domain.SortDesc)) {
		return domain.SortDesc
	}
	return domain.SortAsc
}
