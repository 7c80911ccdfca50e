package views

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"peopledir/internal/domain"
)

// fakeBackend serves an in-memory company:
//
//	1 Ada (Executive)
//	├── 2 Grace (Engineering)
//	│   └── 4 Linus (Engineering)
//	└── 3 Frank (Sales)
type fakeBackend struct {
	mu        sync.Mutex
	employees []domain.Employee
	reports   map[domain.EmployeeID][]domain.EmployeeID
	queries   []domain.Query
	created   []domain.Employee
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		employees: []domain.Employee{
			{ID: "1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Department: "Executive", Position: "CEO", Status: "active"},
			{ID: "2", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Department: "Engineering", Position: "CTO", Status: "active"},
			{ID: "3", FirstName: "Frank", LastName: "Lloyd", Email: "frank@example.com", Department: "Sales", Position: "Head of Sales", Status: "on_leave"},
			{ID: "4", FirstName: "Linus", LastName: "Torvalds", Email: "linus@example.com", Department: "Engineering", Position: "Engineer", Status: "active"},
		},
		reports: map[domain.EmployeeID][]domain.EmployeeID{
			"1": {"2", "3"},
			"2": {"4"},
		},
	}
}

// withStaff adds n filler employees to grow the directory
func (f *fakeBackend) withStaff(n int) *fakeBackend {
	for i := 1; i <= n; i++ {
		f.employees = append(f.employees, domain.Employee{
			ID:         domain.EmployeeID(fmt.Sprintf("s%02d", i)),
			FirstName:  fmt.Sprintf("Staff%02d", i),
			LastName:   "Member",
			Email:      fmt.Sprintf("staff%02d@example.com", i),
			Department: "Operations",
		})
	}
	return f
}

func (f *fakeBackend) lastQuery() domain.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return domain.Query{}
	}
	return f.queries[len(f.queries)-1]
}

func (f *fakeBackend) ListEmployees(ctx context.Context, q domain.Query) (domain.DirectoryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)

	var matched []domain.Employee
	for _, e := range f.employees {
		if d := q.Filters[domain.FilterDepartment]; d != "" && e.Department != d {
			continue
		}
		if s := strings.ToLower(q.Search); s != "" && !strings.Contains(strings.ToLower(e.FullName()), s) {
			continue
		}
		matched = append(matched, e)
	}
	start := min((q.Page-1)*q.PageSize, len(matched))
	end := min(start+q.PageSize, len(matched))
	return domain.DirectoryResult{Items: matched[start:end], TotalCount: len(matched)}, nil
}

func (f *fakeBackend) Suggestions(ctx context.Context, term string, limit int) ([]domain.Suggestion, error) {
	return nil, nil
}

func (f *fakeBackend) Export(ctx context.Context, q domain.Query, fields []string) (domain.ExportFile, error) {
	return domain.ExportFile{Name: "employees.csv", Data: []byte("id\n")}, nil
}

func (f *fakeBackend) find(id domain.EmployeeID) (domain.Employee, bool) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Employee{}, false
}

func (f *fakeBackend) subtree(id domain.EmployeeID, depth int) *domain.HierarchyNode {
	e, _ := f.find(id)
	n := &domain.HierarchyNode{Employee: e}
	if depth <= 1 {
		return n
	}
	n.DirectReports = []*domain.HierarchyNode{}
	for _, child := range f.reports[id] {
		n.DirectReports = append(n.DirectReports, f.subtree(child, depth-1))
	}
	return n
}

func (f *fakeBackend) Hierarchy(ctx context.Context, id domain.EmployeeID, depth int) (*domain.HierarchyNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.find(id); !ok {
		return nil, fmt.Errorf("employee %s not found", id)
	}
	return f.subtree(id, depth), nil
}

func (f *fakeBackend) SearchEmployees(ctx context.Context, term string, limit int) ([]domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Employee
	for _, e := range f.employees {
		if strings.Contains(strings.ToLower(e.FullName()), strings.ToLower(term)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeBackend) CreateEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = domain.EmployeeID(fmt.Sprintf("n%d", len(f.created)+1))
	f.created = append(f.created, e)
	return e, nil
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m tea.Model, s string) {
	for _, r := range s {
		m.Update(keyRunes(string(r)))
	}
}

// runCmd executes cmd and returns its message, failing on a nil command
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

// settle runs cmd and feeds its message back into m
func settle(t *testing.T, m tea.Model, cmd tea.Cmd) {
	t.Helper()
	m.Update(runCmd(t, cmd))
}
