package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"peopledir/internal/application"
	"peopledir/internal/debounce"
	"peopledir/internal/domain"
	"peopledir/internal/request"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeAPI serves an in-memory directory and counts calls
type fakeAPI struct {
	mu          sync.Mutex
	employees   []domain.Employee
	listCalls   []domain.Query
	suggestErr  error
	listErr     error
	suggestions []domain.Suggestion
	gate        chan struct{}
	exported    []domain.Query
}

func newFakeAPI(n int) *fakeAPI {
	api := &fakeAPI{}
	departments := []string{"Engineering", "Sales", "People"}
	for i := 1; i <= n; i++ {
		api.employees = append(api.employees, domain.Employee{
			ID:         domain.EmployeeID(fmt.Sprintf("e%02d", i)),
			FirstName:  fmt.Sprintf("First%02d", i),
			LastName:   fmt.Sprintf("Last%02d", i),
			Email:      fmt.Sprintf("e%02d@example.com", i),
			Department: departments[i%len(departments)],
		})
	}
	return api
}

func (f *fakeAPI) ListEmployees(ctx context.Context, q domain.Query) (domain.DirectoryResult, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, q)
	gate, err := f.gate, f.listErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.DirectoryResult{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.DirectoryResult{}, err
	}

	var matched []domain.Employee
	for _, e := range f.employees {
		if d := q.Filters[domain.FilterDepartment]; d != "" && e.Department != d {
			continue
		}
		if s := q.Search; s != "" && !strings.Contains(strings.ToLower(e.FullName()), strings.ToLower(s)) {
			continue
		}
		matched = append(matched, e)
	}
	start := (q.Page - 1) * q.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := min(start+q.PageSize, len(matched))
	return domain.DirectoryResult{Items: matched[start:end], TotalCount: len(matched)}, nil
}

func (f *fakeAPI) Suggestions(ctx context.Context, term string, limit int) ([]domain.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.suggestErr != nil {
		return nil, f.suggestErr
	}
	return f.suggestions, nil
}

func (f *fakeAPI) Export(ctx context.Context, q domain.Query, fields []string) (domain.ExportFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exported = append(f.exported, q)
	if f.listErr != nil {
		return domain.ExportFile{}, f.listErr
	}
	return domain.ExportFile{
		ContentType:  "text/csv",
		Data:         []byte("id,email\n"),
		TotalRecords: len(f.employees),
		Fields:       fields,
	}, nil
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

// memState is an in-memory ports.ClientState
type memState struct {
	mu         sync.Mutex
	history    []string
	saved      []domain.SavedFilter
	historyErr error
}

func (m *memState) SearchHistory() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.history), m.historyErr
}

func (m *memState) SaveSearchHistory(h []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.historyErr != nil {
		return m.historyErr
	}
	m.history = slices.Clone(h)
	return nil
}

func (m *memState) SavedFilters() ([]domain.SavedFilter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.saved), nil
}

func (m *memState) SaveSavedFilters(s []domain.SavedFilter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = slices.Clone(s)
	return nil
}

func (m *memState) SaveDraft(domain.Draft) error { return nil }

func (m *memState) LoadDraft(string) (*domain.Draft, error) { return nil, nil }

func (m *memState) DeleteDraft(string) error { return nil }

func (m *memState) ListDrafts() ([]domain.Draft, error) { return nil, nil }

func (m *memState) Close() error { return nil }

// manualScheduler fires debounced functions on demand
type manualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) debounce.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{f: f}
	s.pending = append(s.pending, t)
	return t
}

func (s *manualScheduler) fire() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, t := range pending {
		if !t.stopped {
			t.f()
		}
	}
}

func newEngine(t *testing.T, api *fakeAPI, opts ...Option) *Engine {
	t.Helper()
	e := New(api, opts...)
	t.Cleanup(e.Close)
	return e
}

func TestPaginationOverFortyFive(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeAPI(45))

	r := e.Load(ctx)
	require.True(t, r.IsOK())

	s := e.Snapshot()
	assert.Equal(t, 3, s.TotalPages)
	assert.True(t, s.HasNext)
	assert.False(t, s.HasPrevious)
	assert.Len(t, s.Items, 20)

	r = e.GoToPage(ctx, 3)
	require.True(t, r.IsOK())
	s = e.Snapshot()
	assert.Equal(t, 3, s.Query.Page)
	assert.Len(t, s.Items, 5)
	assert.False(t, s.HasNext)
	assert.True(t, s.HasPrevious)

	e.GoToPage(ctx, 7)
	assert.Equal(t, 3, e.Snapshot().Query.Page)

	e.GoToPage(ctx, 0)
	assert.Equal(t, 1, e.Snapshot().Query.Page)
}

func TestPageNavigation(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeAPI(45))
	e.Load(ctx)

	e.NextPage(ctx)
	assert.Equal(t, 2, e.Snapshot().Query.Page)
	e.LastPage(ctx)
	assert.Equal(t, 3, e.Snapshot().Query.Page)
	e.NextPage(ctx)
	assert.Equal(t, 3, e.Snapshot().Query.Page)
	e.PreviousPage(ctx)
	assert.Equal(t, 2, e.Snapshot().Query.Page)
	e.FirstPage(ctx)
	assert.Equal(t, 1, e.Snapshot().Query.Page)
	e.PreviousPage(ctx)
	assert.Equal(t, 1, e.Snapshot().Query.Page)
}

func TestTransitionsResetPage(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		do   func(e *Engine)
	}{
		{"set filter", func(e *Engine) { e.SetFilter(ctx, domain.FilterDepartment, "Sales") }},
		{"set filters", func(e *Engine) { e.SetFilters(ctx, domain.Filters{domain.FilterLocation: "Rome"}) }},
		{"clear filters", func(e *Engine) { e.ClearFilters(ctx) }},
		{"search", func(e *Engine) { e.Search(ctx, "first") }},
		{"sort", func(e *Engine) { e.Sort(ctx, "lastName", domain.SortDesc) }},
		{"toggle sort", func(e *Engine) { e.ToggleSort(ctx, "email") }},
		{"page size", func(e *Engine) { e.ChangePageSize(ctx, 10) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, newFakeAPI(45))
			e.GoToPage(ctx, 1)
			e.GoToPage(ctx, 2)
			require.Equal(t, 2, e.Snapshot().Query.Page)

			tt.do(e)
			assert.Equal(t, 1, e.Snapshot().Query.Page)
		})
	}
}

func TestCachedQueryIssuesNoRequest(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(45)
	e := newEngine(t, api)

	e.Load(ctx)
	e.GoToPage(ctx, 2)
	before := api.calls()

	r := e.GoToPage(ctx, 1)
	require.True(t, r.IsOK())
	assert.Equal(t, before, api.calls())

	e.Refresh(ctx)
	assert.Equal(t, before+1, api.calls())
}

func TestCacheExpires(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(5)
	now := time.Unix(1_700_000_000, 0)
	e := newEngine(t, api, WithClock(func() time.Time { return now }), WithCacheTTL(time.Minute))

	e.Load(ctx)
	e.Load(ctx)
	assert.Equal(t, 1, api.calls())

	now = now.Add(time.Minute)
	e.Load(ctx)
	assert.Equal(t, 2, api.calls())
}

func TestSignatureIgnoresFilterOrder(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(10)
	e := newEngine(t, api)

	e.SetFilter(ctx, domain.FilterDepartment, "Sales")
	e.SetFilter(ctx, domain.FilterLocation, "Rome")
	calls := api.calls()

	e.ClearFilters(ctx)
	e.SetFilters(ctx, domain.Filters{domain.FilterLocation: "Rome"})
	e.SetFilter(ctx, domain.FilterDepartment, "Sales")
	// ClearFilters and the location-only query are new; the final one is cached
	assert.Equal(t, calls+2, api.calls())
}

func TestToggleSort(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeAPI(3))

	e.ToggleSort(ctx, "lastName")
	q := e.Snapshot().Query
	assert.Equal(t, "lastName", q.SortField)
	assert.Equal(t, domain.SortAsc, q.SortOrder)

	e.ToggleSort(ctx, "lastName")
	assert.Equal(t, domain.SortDesc, e.Snapshot().Query.SortOrder)

	e.ToggleSort(ctx, "email")
	q = e.Snapshot().Query
	assert.Equal(t, "email", q.SortField)
	assert.Equal(t, domain.SortAsc, q.SortOrder)
}

func TestFailureKeepsItems(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(45)
	e := newEngine(t, api)
	require.True(t, e.Load(ctx).IsOK())

	api.mu.Lock()
	api.listErr = &application.NetworkError{StatusCode: 503}
	api.mu.Unlock()

	r := e.Refresh(ctx)
	assert.Equal(t, request.StatusFailed, r.Status)

	s := e.Snapshot()
	assert.Len(t, s.Items, 20)
	assert.ErrorIs(t, s.Err, application.ErrNetwork)

	api.mu.Lock()
	api.listErr = nil
	api.mu.Unlock()
	e.Refresh(ctx)
	assert.NoError(t, e.Snapshot().Err)
}

func TestSupersededLoadIsDiscarded(t *testing.T) {
	api := newFakeAPI(45)
	gate := make(chan struct{})
	api.gate = gate
	e := newEngine(t, api)
	ctx := context.Background()

	first := make(chan ListResult, 1)
	go func() { first <- e.SetFilter(ctx, domain.FilterDepartment, "Sales") }()
	require.Eventually(t, func() bool { return api.calls() == 1 }, time.Second, time.Millisecond)

	api.mu.Lock()
	api.gate = nil
	api.mu.Unlock()
	r := e.SetFilter(ctx, domain.FilterDepartment, "People")
	require.True(t, r.IsOK())
	close(gate)

	assert.True(t, (<-first).IsCancelled())
	s := e.Snapshot()
	assert.Equal(t, "People", s.Query.Filters[domain.FilterDepartment])
	for _, it := range s.Items {
		assert.Equal(t, "People", it.Department)
	}
}

func TestShrinkingResultReclampsPage(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(45)
	e := newEngine(t, api)
	e.Load(ctx)
	e.GoToPage(ctx, 3)

	api.mu.Lock()
	api.employees = api.employees[:25]
	api.mu.Unlock()

	r := e.Refresh(ctx)
	require.True(t, r.IsOK())
	s := e.Snapshot()
	assert.Equal(t, 2, s.Query.Page)
	assert.Len(t, s.Items, 5)
}

func TestEmptyResultStaysOnFirstPage(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeAPI(45))

	e.Search(ctx, "nobody")
	s := e.Snapshot()
	assert.Equal(t, 1, s.Query.Page)
	assert.Equal(t, 0, s.TotalPages)
	assert.Empty(t, s.Items)
	assert.False(t, s.HasNext)
}

func TestDebouncedTypingSearchesOnce(t *testing.T) {
	api := newFakeAPI(45)
	api.suggestions = []domain.Suggestion{{Text: "First01 Last01"}}
	sched := &manualScheduler{}
	e := newEngine(t, api, WithDebounce(300*time.Millisecond, sched.AfterFunc))

	updates := make(chan Update, 1)
	e.OnUpdate(func(u Update) { updates <- u })

	for _, in := range []string{"f", "fi", "fir", "first0"} {
		e.Type(in)
	}
	assert.Equal(t, 0, api.calls())

	sched.fire()
	u := <-updates
	assert.Equal(t, "first0", u.Term)
	assert.True(t, u.Listing.IsOK())
	assert.Len(t, u.Suggestions, 1)

	assert.Equal(t, 1, api.calls())
	assert.Equal(t, []string{"first0"}, e.History())
}

func TestCloseDropsPendingTyping(t *testing.T) {
	api := newFakeAPI(5)
	sched := &manualScheduler{}
	e := New(api, WithDebounce(time.Second, sched.AfterFunc))

	e.Type("first")
	e.Close()
	sched.fire()
	assert.Equal(t, 0, api.calls())
}

func TestSuggestions(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(5)
	api.suggestions = []domain.Suggestion{{Text: "Ada"}, {Text: "Adam"}}
	e := newEngine(t, api)

	assert.Nil(t, e.Suggestions(ctx, "a"))
	assert.Len(t, e.Suggestions(ctx, "ad"), 2)
	assert.Len(t, e.Snapshot().Suggestions, 2)

	api.mu.Lock()
	api.suggestErr = errors.New("boom")
	api.mu.Unlock()
	assert.Nil(t, e.Suggestions(ctx, "ada"))
	assert.NoError(t, e.Snapshot().Err)
	assert.Equal(t, 0, api.calls())
}

func TestExportUsesCurrentFilters(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(5)
	day := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	e := newEngine(t, api, WithClock(func() time.Time { return day }))
	e.SetFilter(ctx, domain.FilterDepartment, "Sales")

	file, err := e.Export(ctx, []string{"id", "email"})
	require.NoError(t, err)
	assert.Equal(t, "employees_2024-03-09.csv", file.Name)
	assert.Equal(t, []string{"id", "email"}, file.Fields)
	require.Len(t, api.exported, 1)
	assert.Equal(t, "Sales", api.exported[0].Filters[domain.FilterDepartment])

	api.mu.Lock()
	api.listErr = &application.NetworkError{StatusCode: 500}
	api.mu.Unlock()
	_, err = e.Export(ctx, nil)
	assert.ErrorIs(t, err, application.ErrNetwork)
}

func TestSearchHistoryPersists(t *testing.T) {
	ctx := context.Background()
	state := &memState{history: []string{"old"}}
	e := newEngine(t, newFakeAPI(5), WithState(state))

	e.Search(ctx, "alice")
	e.Search(ctx, "bob")
	e.Search(ctx, "alice")
	e.Search(ctx, "  ")

	assert.Equal(t, []string{"alice", "bob", "old"}, e.History())
	assert.Equal(t, []string{"alice", "bob", "old"}, state.history)

	e.ClearHistory()
	assert.Empty(t, e.History())
	assert.Empty(t, state.history)
}

func TestHistoryStorageFailureIsBestEffort(t *testing.T) {
	ctx := context.Background()
	state := &memState{historyErr: errors.New("disk full")}
	e := newEngine(t, newFakeAPI(5), WithState(state))

	r := e.Search(ctx, "alice")
	assert.True(t, r.IsOK())
	assert.Equal(t, []string{"alice"}, e.History())
	assert.NoError(t, e.Snapshot().Err)
}

func TestSavedFilters(t *testing.T) {
	ctx := context.Background()
	state := &memState{}
	ids := 0
	e := newEngine(t, newFakeAPI(45), WithState(state), WithIDGenerator(func() string {
		ids++
		return fmt.Sprintf("f%d", ids)
	}))

	_, err := e.SaveCurrentFilter(" ")
	assert.ErrorIs(t, err, application.ErrValidation)

	e.SetFilter(ctx, domain.FilterDepartment, "Sales")
	sales, err := e.SaveCurrentFilter("sales")
	require.NoError(t, err)
	assert.Equal(t, "f1", sales.ID)

	for i := 0; i < domain.MaxSavedFilters; i++ {
		_, err := e.SaveCurrentFilter(fmt.Sprintf("n%d", i))
		require.NoError(t, err)
	}
	saved := e.SavedFilters()
	assert.Len(t, saved, domain.MaxSavedFilters)
	assert.Equal(t, "n4", saved[0].Name)
	assert.Len(t, state.saved, domain.MaxSavedFilters)

	e.ClearFilters(ctx)
	_, err = e.ApplySavedFilter(ctx, saved[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Sales", e.Snapshot().Query.Filters[domain.FilterDepartment])

	_, err = e.ApplySavedFilter(ctx, "f1")
	assert.ErrorIs(t, err, application.ErrNotFound)

	e.DeleteSavedFilter(saved[0].ID)
	assert.Len(t, e.SavedFilters(), domain.MaxSavedFilters-1)
}

func TestSelection(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeAPI(45))
	e.Load(ctx)

	e.Select("e01")
	assert.True(t, e.ToggleSelection("e02"))
	assert.False(t, e.ToggleSelection("e02"))
	assert.Equal(t, []domain.EmployeeID{"e01"}, e.Selected())

	e.SelectAllOnPage()
	assert.Len(t, e.Selected(), 20)

	e.Deselect("e01")
	assert.Len(t, e.Selected(), 19)

	e.SetFilter(ctx, domain.FilterDepartment, "Sales")
	assert.Empty(t, e.Selected())

	e.SelectAllOnPage()
	e.ClearSelection()
	assert.Empty(t, e.Selected())
}
