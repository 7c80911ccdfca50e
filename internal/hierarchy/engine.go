// Package hierarchy holds the org chart: a lazily loaded tree of employees,
// its expansion state and the flattened view rendered by the surfaces.
package hierarchy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"peopledir/internal/application"
	"peopledir/internal/cache"
	"peopledir/internal/domain"
	"peopledir/internal/metrics"
	"peopledir/internal/ports"
	"peopledir/internal/request"
)

const (
	streamRoot   = "root"
	streamSearch = "search"
)

// SubtreeResult is the outcome of a root or node load
type SubtreeResult = request.Result[*domain.HierarchyNode]

// Stats summarizes the loaded tree
type Stats struct {
	Loaded   int // nodes in memory
	Depth    int // levels in memory, the root counting as one
	Expanded int
	Visible  int
}

// Engine owns one org chart view. Create it when the view mounts and Close
// it when the view goes away.
type Engine struct {
	api     ports.HierarchyAPI
	log     *zap.Logger
	now     func() time.Time
	metrics *metrics.Collectors

	defaultDepth int
	loadDepth    int
	cacheTTL     time.Duration

	cache    *cache.Store[*domain.HierarchyNode]
	roots    *request.Coordinator[*domain.HierarchyNode]
	nodes    *request.Coordinator[*domain.HierarchyNode]
	searches *request.Coordinator[[]domain.Employee]

	mu         sync.Mutex
	rootID     domain.EmployeeID
	tree       arena
	expanded   map[domain.EmployeeID]struct{}
	loading    map[domain.EmployeeID]struct{}
	department string
	manager    *domain.Employee
	lastErr    error
	generation uint64
}

// New creates an engine over api
func New(api ports.HierarchyAPI, opts ...Option) *Engine {
	e := &Engine{
		api:          api,
		log:          zap.NewNop(),
		now:          time.Now,
		defaultDepth: DefaultDepth,
		loadDepth:    DefaultLoadDepth,
		cacheTTL:     cache.DefaultTTL,
		tree:         arena{},
		expanded:     make(map[domain.EmployeeID]struct{}),
		loading:      make(map[domain.EmployeeID]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("hierarchy")
	e.cache = cache.New[*domain.HierarchyNode]("hierarchy",
		cache.WithTTL(e.cacheTTL),
		cache.WithClock(e.now),
		cache.WithMetrics(e.metrics))
	e.roots = request.NewCoordinator[*domain.HierarchyNode]("hierarchy_root", e.log, e.metrics)
	e.nodes = request.NewCoordinator[*domain.HierarchyNode]("hierarchy_node", e.log, e.metrics)
	e.searches = request.NewCoordinator[[]domain.Employee]("hierarchy_search", e.log, e.metrics)
	return e
}

// Close cancels every outstanding load
func (e *Engine) Close() {
	e.roots.CancelAll()
	e.nodes.CancelAll()
	e.searches.CancelAll()
}

func signature(id domain.EmployeeID, depth int) string {
	return fmt.Sprintf("id=%s&depth=%d", id, depth)
}

func (e *Engine) fetch(ctx context.Context, coord *request.Coordinator[*domain.HierarchyNode], stream string, id domain.EmployeeID, depth int) SubtreeResult {
	sig := signature(id, depth)
	if sub, ok := e.cache.Get(sig); ok {
		// a cached answer still supersedes whatever the stream had in flight
		coord.Cancel(stream)
		return request.OK(sub)
	}
	r := coord.Do(ctx, stream, sig, func(ctx context.Context) (*domain.HierarchyNode, error) {
		sub, err := e.api.Hierarchy(ctx, id, depth)
		if err != nil {
			return nil, err
		}
		if sub == nil {
			return nil, fmt.Errorf("employee %s: %w", id, application.ErrNotFound)
		}
		return sub, nil
	})
	if r.IsOK() {
		e.cache.Put(sig, r.Value)
	}
	return r
}

// LoadRoot replaces the tree with the subtree rooted at id, depth levels
// deep (root included). Outstanding node loads are cancelled. The root and
// its direct reports start expanded.
func (e *Engine) LoadRoot(ctx context.Context, id domain.EmployeeID, depth int) SubtreeResult {
	if depth <= 0 {
		depth = e.defaultDepth
	}
	e.nodes.CancelAll()

	r := e.fetch(ctx, e.roots, streamRoot, id, depth)
	switch r.Status {
	case request.StatusOK:
		e.replace(r.Value, depth)
	case request.StatusFailed:
		e.mu.Lock()
		e.lastErr = r.Err
		e.mu.Unlock()
		e.log.Warn("org chart load failed", zap.String("employee", id.String()), zap.Error(r.Err))
	default:
		e.log.Debug("org chart load cancelled", zap.String("employee", id.String()))
	}
	return r
}

func (e *Engine) replace(sub *domain.HierarchyNode, depth int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.tree = arena{}
	e.tree.insert(sub, "", 0, depth)
	e.rootID = sub.ID
	e.manager = sub.Manager
	e.lastErr = nil
	clear(e.loading)
	clear(e.expanded)
	e.expanded[sub.ID] = struct{}{}
	for _, child := range e.tree[sub.ID].children {
		e.expanded[child] = struct{}{}
	}
}

// LoadChildren fetches the reports below id and patches them into the tree.
// Concurrent loads of the same node share one request.
func (e *Engine) LoadChildren(ctx context.Context, id domain.EmployeeID) SubtreeResult {
	e.mu.Lock()
	if _, ok := e.tree[id]; !ok {
		e.mu.Unlock()
		return request.Failed[*domain.HierarchyNode](fmt.Errorf("employee %s: %w", id, application.ErrNotFound))
	}
	gen := e.generation
	e.loading[id] = struct{}{}
	e.mu.Unlock()

	levels := e.loadDepth + 1
	r := e.fetch(ctx, e.nodes, "node:"+id.String(), id, levels)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		// the tree was replaced while this load ran
		return request.Cancelled[*domain.HierarchyNode]()
	}
	delete(e.loading, id)

	switch r.Status {
	case request.StatusOK:
		if !e.tree.patch(r.Value, levels, e.forgetLocked) {
			e.log.Debug("dropping patch for node no longer in tree", zap.String("employee", id.String()))
			return request.Cancelled[*domain.HierarchyNode]()
		}
	case request.StatusFailed:
		e.lastErr = r.Err
		e.log.Warn("loading reports failed", zap.String("employee", id.String()), zap.Error(r.Err))
	}
	return r
}

// forgetLocked drops per-node state of a node removed from the arena
func (e *Engine) forgetLocked(id domain.EmployeeID) {
	delete(e.expanded, id)
	delete(e.loading, id)
}

// ToggleNode collapses an expanded node, expands a loaded one, or loads the
// reports of an unloaded one and then expands it. A cancelled load is not
// an error.
func (e *Engine) ToggleNode(ctx context.Context, id domain.EmployeeID) error {
	e.mu.Lock()
	n, ok := e.tree[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("employee %s: %w", id, application.ErrNotFound)
	}
	// an expanded but unloaded node (the edge of a shallow root load)
	// shows nothing below it, so toggling it loads
	_, open := e.expanded[id]
	switch {
	case open && n.loaded():
		delete(e.expanded, id)
		e.mu.Unlock()
		return nil
	case n.loaded():
		e.expanded[id] = struct{}{}
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	r := e.LoadChildren(ctx, id)
	switch r.Status {
	case request.StatusFailed:
		return r.Err
	case request.StatusCancelled:
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.tree[id]; ok {
		e.expanded[id] = struct{}{}
	}
	return nil
}

// Flatten lists the visible nodes in pre-order. A node is visible when all
// its ancestors are expanded and it matches the department filter; a node
// that does not match hides its whole subtree.
func (e *Engine) Flatten() []domain.DisplayNode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flattenLocked()
}

func (e *Engine) flattenLocked() []domain.DisplayNode {
	if e.rootID == "" {
		return nil
	}
	var out []domain.DisplayNode
	var visit func(id domain.EmployeeID)
	visit = func(id domain.EmployeeID) {
		n, ok := e.tree[id]
		if !ok || !e.matchesLocked(n) {
			return
		}
		_, expanded := e.expanded[id]
		_, loading := e.loading[id]
		out = append(out, domain.DisplayNode{
			Employee:    n.emp,
			Level:       n.level,
			Expanded:    expanded,
			Loaded:      n.loaded(),
			Loading:     loading,
			HasChildren: !n.loaded() || len(n.children) > 0,
			ReportCount: len(n.children),
		})
		if !expanded {
			return
		}
		for _, child := range n.children {
			visit(child)
		}
	}
	visit(e.rootID)
	return out
}

func (e *Engine) matchesLocked(n *node) bool {
	return e.department == "" || strings.EqualFold(n.emp.Department, e.department)
}

// SetDepartmentFilter limits the visible tree to one department; empty
// clears the filter
func (e *Engine) SetDepartmentFilter(department string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.department = strings.TrimSpace(department)
}

// DepartmentFilter returns the active department filter
func (e *Engine) DepartmentFilter() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.department
}

// ExpandAll expands every loaded node that has reports. Nothing is fetched.
func (e *Engine) ExpandAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, n := range e.tree {
		if len(n.children) > 0 {
			e.expanded[id] = struct{}{}
		}
	}
}

// CollapseAll collapses every node, leaving only the root visible
func (e *Engine) CollapseAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.expanded)
}

// Root returns the current root id, empty before the first load
func (e *Engine) Root() domain.EmployeeID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rootID
}

// Node returns the employee stored for id
func (e *Engine) Node(id domain.EmployeeID) (domain.Employee, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.tree[id]
	if !ok {
		return domain.Employee{}, false
	}
	return n.emp, true
}

// Reports returns the loaded direct reports of id; ok is false when they
// were never loaded
func (e *Engine) Reports(id domain.EmployeeID) (reports []domain.Employee, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, found := e.tree[id]
	if !found || !n.loaded() {
		return nil, false
	}
	reports = make([]domain.Employee, 0, len(n.children))
	for _, child := range n.children {
		reports = append(reports, e.tree[child].emp)
	}
	return reports, true
}

// Path returns the chain of employees from the root down to id
func (e *Engine) Path(id domain.EmployeeID) []domain.Employee {
	e.mu.Lock()
	defer e.mu.Unlock()
	var path []domain.Employee
	for cur := id; cur != ""; {
		n, ok := e.tree[cur]
		if !ok {
			return nil
		}
		path = append(path, n.emp)
		cur = n.parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Manager returns the root's manager when the backend sent one, so the
// chart can be re-rooted one level up
func (e *Engine) Manager() *domain.Employee {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.manager == nil {
		return nil
	}
	m := *e.manager
	return &m
}

// IsLoading reports whether a reports load for id is in flight
func (e *Engine) IsLoading(id domain.EmployeeID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.loading[id]
	return ok
}

// Err returns the last load failure, cleared by the next successful root load
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Stats summarizes the tree in memory
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Loaded:   len(e.tree),
		Depth:    e.tree.depth(),
		Expanded: len(e.expanded),
		Visible:  len(e.flattenLocked()),
	}
}

// SearchEmployees looks up employees to re-root the chart on. A newer
// search cancels an older one; a cancelled search returns nil, nil.
func (e *Engine) SearchEmployees(ctx context.Context, term string, limit int) ([]domain.Employee, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	sig := fmt.Sprintf("q=%s&limit=%d", term, limit)
	r := e.searches.Do(ctx, streamSearch, sig, func(ctx context.Context) ([]domain.Employee, error) {
		return e.api.SearchEmployees(ctx, term, limit)
	})
	switch r.Status {
	case request.StatusOK:
		return r.Value, nil
	case request.StatusFailed:
		return nil, fmt.Errorf("search employees: %w", r.Err)
	}
	return nil, nil
}
