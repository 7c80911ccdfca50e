package hierarchy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"peopledir/internal/application"
	"peopledir/internal/domain"
	"peopledir/internal/request"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// org:
//
//	ceo (Executive)
//	├── cto (Engineering)
//	│   ├── eng1 ── eng11
//	│   └── eng2
//	└── cfo (Finance)
//	    └── fin1
type fakeOrg struct {
	mu        sync.Mutex
	people    map[domain.EmployeeID]domain.Employee
	reports   map[domain.EmployeeID][]domain.EmployeeID
	calls     []string
	err       error
	gate      chan struct{}
	fullDepth bool // ignore the requested depth
}

func newFakeOrg() *fakeOrg {
	emp := func(id, first, dept string, manager string) domain.Employee {
		return domain.Employee{ID: domain.EmployeeID(id), FirstName: first, Department: dept, ManagerID: domain.EmployeeID(manager)}
	}
	org := &fakeOrg{
		people: map[domain.EmployeeID]domain.Employee{
			"ceo":   emp("ceo", "Ada", "Executive", ""),
			"cto":   emp("cto", "Grace", "Engineering", "ceo"),
			"cfo":   emp("cfo", "Frank", "Finance", "ceo"),
			"eng1":  emp("eng1", "Linus", "Engineering", "cto"),
			"eng2":  emp("eng2", "Ken", "Engineering", "cto"),
			"eng11": emp("eng11", "Rob", "Engineering", "eng1"),
			"fin1":  emp("fin1", "Irma", "Finance", "cfo"),
		},
		reports: map[domain.EmployeeID][]domain.EmployeeID{
			"ceo":  {"cto", "cfo"},
			"cto":  {"eng1", "eng2"},
			"cfo":  {"fin1"},
			"eng1": {"eng11"},
		},
	}
	return org
}

func (o *fakeOrg) Hierarchy(ctx context.Context, id domain.EmployeeID, depth int) (*domain.HierarchyNode, error) {
	o.mu.Lock()
	o.calls = append(o.calls, signature(id, depth))
	gate, err := o.gate, o.err
	if o.fullDepth {
		depth = 100
	}
	o.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if _, ok := o.people[id]; !ok {
		return nil, &application.NetworkError{StatusCode: 404, Message: "employee not found"}
	}
	n := o.build(id, depth)
	if m, ok := o.people[o.people[id].ManagerID]; ok {
		n.Manager = &m
	}
	return n, nil
}

func (o *fakeOrg) build(id domain.EmployeeID, depth int) *domain.HierarchyNode {
	n := &domain.HierarchyNode{Employee: o.people[id]}
	if depth <= 1 {
		return n
	}
	n.DirectReports = []*domain.HierarchyNode{}
	for _, r := range o.reports[id] {
		n.DirectReports = append(n.DirectReports, o.build(r, depth-1))
	}
	return n
}

func (o *fakeOrg) SearchEmployees(ctx context.Context, term string, limit int) ([]domain.Employee, error) {
	var out []domain.Employee
	for _, p := range o.people {
		if p.FirstName == term {
			out = append(out, p)
		}
	}
	return out, nil
}

func (o *fakeOrg) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.calls)
}

func newEngine(t *testing.T, org *fakeOrg, opts ...Option) *Engine {
	t.Helper()
	e := New(org, opts...)
	t.Cleanup(e.Close)
	return e
}

func ids(rows []domain.DisplayNode) []domain.EmployeeID {
	out := make([]domain.EmployeeID, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func row(rows []domain.DisplayNode, id domain.EmployeeID) domain.DisplayNode {
	for _, r := range rows {
		if r.ID == id {
			return r
		}
	}
	return domain.DisplayNode{}
}

func TestLoadRootDepthThree(t *testing.T) {
	org := newFakeOrg()
	e := newEngine(t, org)

	r := e.LoadRoot(context.Background(), "ceo", 0)
	require.True(t, r.IsOK())
	assert.Equal(t, []string{"id=ceo&depth=3"}, org.calls)

	rows := e.Flatten()
	assert.Equal(t, []domain.EmployeeID{"ceo", "cto", "eng1", "eng2", "cfo", "fin1"}, ids(rows))

	ceo := row(rows, "ceo")
	assert.True(t, ceo.Expanded)
	assert.True(t, ceo.Loaded)
	assert.Equal(t, 2, ceo.ReportCount)
	assert.Equal(t, 0, ceo.Level)

	eng1 := row(rows, "eng1")
	assert.Equal(t, 2, eng1.Level)
	assert.False(t, eng1.Loaded)
	assert.False(t, eng1.Expanded)
	assert.True(t, eng1.HasChildren)

	st := e.Stats()
	assert.Equal(t, 6, st.Loaded)
	assert.Equal(t, 3, st.Depth)
	assert.Equal(t, 3, st.Expanded)
}

func TestResponseTruncatedAtRequestedDepth(t *testing.T) {
	org := newFakeOrg()
	org.fullDepth = true
	e := newEngine(t, org)

	require.True(t, e.LoadRoot(context.Background(), "ceo", 2).IsOK())
	st := e.Stats()
	assert.Equal(t, 3, st.Loaded)
	assert.Equal(t, 2, st.Depth)

	_, loaded := e.Reports("cto")
	assert.False(t, loaded)
}

func TestToggleFetchesThenExpands(t *testing.T) {
	ctx := context.Background()
	org := newFakeOrg()
	e := newEngine(t, org)
	require.True(t, e.LoadRoot(ctx, "ceo", 3).IsOK())

	require.NoError(t, e.ToggleNode(ctx, "eng1"))
	assert.Equal(t, "id=eng1&depth=2", org.calls[1])

	rows := e.Flatten()
	assert.Equal(t, []domain.EmployeeID{"ceo", "cto", "eng1", "eng11", "eng2", "cfo", "fin1"}, ids(rows))
	assert.True(t, row(rows, "eng1").Expanded)
	assert.Equal(t, 3, row(rows, "eng11").Level)
	assert.False(t, e.IsLoading("eng1"))

	// collapse and re-expand without another request
	require.NoError(t, e.ToggleNode(ctx, "eng1"))
	assert.NotContains(t, ids(e.Flatten()), domain.EmployeeID("eng11"))
	require.NoError(t, e.ToggleNode(ctx, "eng1"))
	assert.Contains(t, ids(e.Flatten()), domain.EmployeeID("eng11"))
	assert.Equal(t, 2, org.callCount())
}

func TestLoadedEmptyDiffersFromUnloaded(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeOrg())
	require.True(t, e.LoadRoot(ctx, "ceo", 3).IsOK())

	before := row(e.Flatten(), "eng2")
	assert.False(t, before.Loaded)
	assert.True(t, before.HasChildren)

	require.NoError(t, e.ToggleNode(ctx, "eng2"))
	after := row(e.Flatten(), "eng2")
	assert.True(t, after.Loaded)
	assert.False(t, after.HasChildren)
	assert.Equal(t, 0, after.ReportCount)

	reports, loaded := e.Reports("eng2")
	assert.True(t, loaded)
	assert.Empty(t, reports)
}

func TestPatchLeavesSiblingsUntouched(t *testing.T) {
	ctx := context.Background()
	org := newFakeOrg()
	e := newEngine(t, org)
	require.True(t, e.LoadRoot(ctx, "ceo", 3).IsOK())

	e.mu.Lock()
	cfo, fin1, eng2 := e.tree["cfo"], e.tree["fin1"], e.tree["eng2"]
	e.mu.Unlock()

	org.mu.Lock()
	p := org.people["eng1"]
	p.Position = "Staff Engineer"
	org.people["eng1"] = p
	org.mu.Unlock()

	require.True(t, e.LoadChildren(ctx, "eng1").IsOK())

	e.mu.Lock()
	defer e.mu.Unlock()
	assert.Same(t, cfo, e.tree["cfo"])
	assert.Same(t, fin1, e.tree["fin1"])
	assert.Same(t, eng2, e.tree["eng2"])
	assert.Equal(t, "Staff Engineer", e.tree["eng1"].emp.Position)
	assert.Equal(t, "Linus", e.tree["eng1"].emp.FirstName)
	assert.Equal(t, []domain.EmployeeID{"eng1", "eng2"}, e.tree["cto"].children)
}

func TestPatchReplacesOldSubtree(t *testing.T) {
	ctx := context.Background()
	org := newFakeOrg()
	e := newEngine(t, org)
	require.True(t, e.LoadRoot(ctx, "ceo", 3).IsOK())

	// fin1 moves from cfo to cto
	org.mu.Lock()
	org.reports["cfo"] = nil
	org.reports["cto"] = append(org.reports["cto"], "fin1")
	org.mu.Unlock()

	require.True(t, e.LoadChildren(ctx, "cfo").IsOK())
	reports, loaded := e.Reports("cfo")
	assert.True(t, loaded)
	assert.Empty(t, reports)
	_, ok := e.Node("fin1")
	assert.False(t, ok)

	require.True(t, e.LoadChildren(ctx, "cto").IsOK())
	assert.Equal(t, []string{"Grace", "Irma"}, []string{e.Path("fin1")[1].FirstName, e.Path("fin1")[2].FirstName})
}

func TestConcurrentNodeLoadsShareOneRequest(t *testing.T) {
	ctx := context.Background()
	org := newFakeOrg()
	e := newEngine(t, org)
	require.True(t, e.LoadRoot(ctx, "ceo", 3).IsOK())

	gate := make(chan struct{})
	org.mu.Lock()
	org.gate = gate
	org.mu.Unlock()

	results := make(chan SubtreeResult, 2)
	for range 2 {
		go func() { results <- e.LoadChildren(ctx, "eng1") }()
	}
	require.Eventually(t, func() bool { return org.callCount() == 2 }, time.Second, time.Millisecond)
	assert.True(t, e.IsLoading("eng1"))
	assert.True(t, row(e.Flatten(), "eng1").Loading)

	close(gate)
	assert.True(t, (<-results).IsOK())
	assert.True(t, (<-results).IsOK())
	assert.Equal(t, 2, org.callCount())
	assert.False(t, e.IsLoading("eng1"))
}

func TestLoadRootCancelsNodeLoads(t *testing.T) {
	ctx := context.Background()
	org := newFakeOrg()
	e := newEngine(t, org)
	require.True(t, e.LoadRoot(ctx, "ceo", 3).IsOK())

	gate := make(chan struct{})
	org.mu.Lock()
	org.gate = gate
	org.mu.Unlock()

	pending := make(chan SubtreeResult, 1)
	go func() { pending <- e.LoadChildren(ctx, "eng1") }()
	require.Eventually(t, func() bool { return org.callCount() == 2 }, time.Second, time.Millisecond)

	org.mu.Lock()
	org.gate = nil
	org.mu.Unlock()
	require.True(t, e.LoadRoot(ctx, "cfo", 2).IsOK())
	close(gate)

	assert.True(t, (<-pending).IsCancelled())
	assert.Equal(t, domain.EmployeeID("cfo"), e.Root())
	assert.Equal(t, []domain.EmployeeID{"cfo", "fin1"}, ids(e.Flatten()))
	_, ok := e.Node("eng1")
	assert.False(t, ok)

	// fin1 sits at the edge of the depth-2 load: expanded but unloaded
	require.NoError(t, e.ToggleNode(ctx, "fin1"))
	fin1 := row(e.Flatten(), "fin1")
	assert.True(t, fin1.Loaded)
	assert.True(t, fin1.Expanded)
}

func TestDepartmentFilterHidesSubtrees(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeOrg())
	require.True(t, e.LoadRoot(ctx, "cto", 3).IsOK())

	e.SetDepartmentFilter("engineering")
	assert.Equal(t, []domain.EmployeeID{"cto", "eng1", "eng11", "eng2"}, ids(e.Flatten()))

	require.True(t, e.LoadRoot(ctx, "ceo", 3).IsOK())
	assert.Empty(t, e.Flatten())

	e.SetDepartmentFilter("Executive")
	assert.Equal(t, []domain.EmployeeID{"ceo"}, ids(e.Flatten()))

	e.SetDepartmentFilter("")
	assert.Len(t, e.Flatten(), 6)
}

func TestExpandAllCollapseAll(t *testing.T) {
	ctx := context.Background()
	org := newFakeOrg()
	e := newEngine(t, org)
	require.True(t, e.LoadRoot(ctx, "ceo", 3).IsOK())

	e.CollapseAll()
	assert.Equal(t, []domain.EmployeeID{"ceo"}, ids(e.Flatten()))

	e.ExpandAll()
	assert.Len(t, e.Flatten(), 6)
	assert.Equal(t, 1, org.callCount())
}

func TestCachedRootIssuesNoRequest(t *testing.T) {
	ctx := context.Background()
	org := newFakeOrg()
	now := time.Unix(1_700_000_000, 0)
	e := newEngine(t, org, WithClock(func() time.Time { return now }))

	e.LoadRoot(ctx, "ceo", 3)
	e.LoadRoot(ctx, "ceo", 3)
	assert.Equal(t, 1, org.callCount())

	e.LoadRoot(ctx, "ceo", 2)
	assert.Equal(t, 2, org.callCount())

	now = now.Add(2 * time.Minute)
	e.LoadRoot(ctx, "ceo", 3)
	assert.Equal(t, 3, org.callCount())
}

func TestPathAndManager(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeOrg())
	require.True(t, e.LoadRoot(ctx, "cto", 3).IsOK())

	var names []string
	for _, p := range e.Path("eng11") {
		names = append(names, p.FirstName)
	}
	assert.Equal(t, []string{"Grace", "Linus", "Rob"}, names)
	assert.Nil(t, e.Path("nobody"))

	m := e.Manager()
	require.NotNil(t, m)
	assert.Equal(t, domain.EmployeeID("ceo"), m.ID)

	require.True(t, e.LoadRoot(ctx, m.ID, 0).IsOK())
	assert.Nil(t, e.Manager())
}

func TestFailuresKeepTree(t *testing.T) {
	ctx := context.Background()
	org := newFakeOrg()
	e := newEngine(t, org)
	require.True(t, e.LoadRoot(ctx, "ceo", 3).IsOK())

	org.mu.Lock()
	org.err = &application.NetworkError{StatusCode: 502}
	org.mu.Unlock()

	err := e.ToggleNode(ctx, "eng1")
	assert.ErrorIs(t, err, application.ErrNetwork)
	assert.ErrorIs(t, e.Err(), application.ErrNetwork)
	assert.Len(t, e.Flatten(), 6)
	assert.False(t, e.IsLoading("eng1"))

	r := e.LoadRoot(ctx, "cfo", 3)
	assert.Equal(t, request.StatusFailed, r.Status)
	assert.Equal(t, domain.EmployeeID("ceo"), e.Root())

	assert.ErrorIs(t, e.ToggleNode(ctx, "ghost"), application.ErrNotFound)
}

func TestUnknownRoot(t *testing.T) {
	e := newEngine(t, newFakeOrg())
	r := e.LoadRoot(context.Background(), "ghost", 3)
	assert.Equal(t, request.StatusFailed, r.Status)
	assert.ErrorIs(t, r.Err, application.ErrNotFound)
	assert.Nil(t, e.Flatten())
}

func TestSearchEmployees(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeOrg())

	found, err := e.SearchEmployees(ctx, "Grace", 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, domain.EmployeeID("cto"), found[0].ID)

	found, err = e.SearchEmployees(ctx, "  ", 5)
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestCancelledCallerIsNotAnError(t *testing.T) {
	org := newFakeOrg()
	e := newEngine(t, org)
	require.True(t, e.LoadRoot(context.Background(), "ceo", 3).IsOK())

	gate := make(chan struct{})
	org.mu.Lock()
	org.gate = gate
	org.mu.Unlock()
	defer close(gate)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, e.ToggleNode(ctx, "eng1"))
	assert.False(t, errors.Is(e.Err(), context.Canceled))
}
