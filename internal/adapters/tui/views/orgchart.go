package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"peopledir/internal/adapters/tui/styles"
	"peopledir/internal/application/commands"
	"peopledir/internal/domain"
	"peopledir/internal/hierarchy"
	"peopledir/internal/request"
)

// OrgChartKeyMap defines key bindings for the org chart view
type OrgChartKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Toggle      key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Manager     key.Binding
	Reroot      key.Binding
	Department  key.Binding
	Find        key.Binding
	Reload      key.Binding
	SwitchView  key.Binding
	Help        key.Binding
	Quit        key.Binding
}

var OrgChartKeys = OrgChartKeyMap{
	Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "navigate")),
	Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Left:        key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "collapse/parent")),
	Right:       key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "expand")),
	Toggle:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle")),
	ExpandAll:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "expand all")),
	CollapseAll: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "collapse all")),
	Manager:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "up to manager")),
	Reroot:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "root here")),
	Department:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "department")),
	Find:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find")),
	Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	SwitchView:  key.NewBinding(key.WithKeys("tab", "esc"), key.WithHelp("tab", "directory")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// findLimit caps the employees fetched for the find prompt
const findLimit = 20

type chartMode int

const (
	chartBrowse chartMode = iota
	chartDepartment
	chartFind
)

type rootLoadedMsg struct {
	id     domain.EmployeeID
	result hierarchy.SubtreeResult
}

type nodeToggledMsg struct {
	id  domain.EmployeeID
	err error
}

type findResultsMsg struct {
	term    string
	results []commands.SearchResult
	err     error
}

// OrgChartModel is the expandable reporting tree
type OrgChartModel struct {
	ViewState
	engine      *hierarchy.Engine
	defaultRoot domain.EmployeeID
	depth       int

	nodes   []domain.DisplayNode
	pager   *Paginator
	loading bool

	mode    chartMode
	input   textinput.Model
	found   []commands.SearchResult
	foundAt int
}

// NewOrgChartModel creates the org chart view. defaultRoot is shown when
// the view opens without a chosen employee.
func NewOrgChartModel(engine *hierarchy.Engine, defaultRoot domain.EmployeeID, depth int) *OrgChartModel {
	input := textinput.New()
	input.CharLimit = 80
	return &OrgChartModel{
		engine:      engine,
		defaultRoot: defaultRoot,
		depth:       depth,
		pager:       NewPaginator(20),
		input:       input,
	}
}

// Init initializes the org chart view
func (m *OrgChartModel) Init() tea.Cmd {
	return nil
}

// Open shows the chart rooted at id. An empty id keeps the loaded tree or
// falls back to the default root.
func (m *OrgChartModel) Open(id domain.EmployeeID) tea.Cmd {
	m.ClearMessage()
	if id == "" {
		if m.engine.Root() != "" {
			m.refresh()
			return nil
		}
		id = m.defaultRoot
	}
	if id == "" {
		m.SetMessage("No root employee: pick one in the directory or set hierarchy.root_id", true)
		return nil
	}
	m.loading = true
	depth := m.depth
	return func() tea.Msg {
		return rootLoadedMsg{id: id, result: m.engine.LoadRoot(context.Background(), id, depth)}
	}
}

// SetSize updates the view dimensions and the visible window
func (m *OrgChartModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	// title, status, path, blank, message, help
	m.pager.SetPageSize(max(height-10, 5))
}

func (m *OrgChartModel) refresh() {
	m.nodes = m.engine.Flatten()
	m.pager.SetTotal(len(m.nodes))
}

func (m *OrgChartModel) current() (domain.DisplayNode, bool) {
	i := m.pager.Cursor()
	if i >= 0 && i < len(m.nodes) {
		return m.nodes[i], true
	}
	return domain.DisplayNode{}, false
}

func (m *OrgChartModel) moveTo(id domain.EmployeeID) {
	for i, n := range m.nodes {
		if n.ID == id {
			m.pager.SetCursor(i)
			return
		}
	}
}

func (m *OrgChartModel) toggle(id domain.EmployeeID) tea.Cmd {
	return func() tea.Msg {
		return nodeToggledMsg{id: id, err: m.engine.ToggleNode(context.Background(), id)}
	}
}

// Update handles messages for the org chart
func (m *OrgChartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case rootLoadedMsg:
		if msg.result.Status == request.StatusCancelled {
			return m, nil
		}
		m.loading = false
		if msg.result.Status == request.StatusFailed {
			m.SetMessage(fmt.Sprintf("Loading %s: %v", msg.id, msg.result.Err), true)
			return m, nil
		}
		m.pager.Reset()
		m.refresh()
		return m, nil

	case nodeToggledMsg:
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
		}
		m.refresh()
		m.moveTo(msg.id)
		return m, nil

	case findResultsMsg:
		if msg.term != strings.TrimSpace(m.input.Value()) {
			return m, nil
		}
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
			return m, nil
		}
		m.found = msg.results
		m.foundAt = 0
		if len(m.found) == 0 {
			m.SetMessage("No employees found", true)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case chartDepartment:
			return m, m.updateDepartment(msg)
		case chartFind:
			return m, m.updateFind(msg)
		}
		m.ClearMessage()
		return m, m.updateBrowse(msg)
	}

	if m.mode != chartBrowse {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *OrgChartModel) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	k := OrgChartKeys
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.SwitchView):
		return func() tea.Msg { return SwitchToDirectoryMsg{} }
	case key.Matches(msg, k.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }

	case key.Matches(msg, k.Up):
		m.pager.CursorUp()
	case key.Matches(msg, k.Down):
		m.pager.CursorDown()

	case key.Matches(msg, k.Left):
		node, ok := m.current()
		if !ok {
			return nil
		}
		if node.Expanded && node.Loaded && node.HasChildren {
			return m.toggle(node.ID)
		}
		if path := m.engine.Path(node.ID); len(path) > 1 {
			m.moveTo(path[len(path)-2].ID)
		}

	case key.Matches(msg, k.Right):
		node, ok := m.current()
		if !ok || !node.HasChildren {
			return nil
		}
		if node.Expanded && node.Loaded {
			return nil
		}
		return m.toggle(node.ID)

	case key.Matches(msg, k.Toggle):
		if node, ok := m.current(); ok && node.HasChildren {
			return m.toggle(node.ID)
		}

	case key.Matches(msg, k.ExpandAll):
		m.engine.ExpandAll()
		m.refresh()
	case key.Matches(msg, k.CollapseAll):
		m.engine.CollapseAll()
		m.refresh()
		m.pager.SetCursor(0)

	case key.Matches(msg, k.Manager):
		mgr := m.engine.Manager()
		if mgr == nil || mgr.ID == "" {
			m.SetMessage("No manager above this root", true)
			return nil
		}
		return m.Open(mgr.ID)
	case key.Matches(msg, k.Reroot):
		if node, ok := m.current(); ok && node.Level > 0 {
			return m.Open(node.ID)
		}
	case key.Matches(msg, k.Reload):
		if root := m.engine.Root(); root != "" {
			return m.Open(root)
		}
		return m.Open("")

	case key.Matches(msg, k.Department):
		m.mode = chartDepartment
		m.input.Placeholder = "department, empty clears"
		m.input.SetValue(m.engine.DepartmentFilter())
		m.input.CursorEnd()
		m.input.Focus()
		return textinput.Blink
	case key.Matches(msg, k.Find):
		m.mode = chartFind
		m.found = nil
		m.input.Placeholder = "name, email or title"
		m.input.SetValue("")
		m.input.Focus()
		return textinput.Blink
	}
	return nil
}

func (m *OrgChartModel) closeInput() {
	m.mode = chartBrowse
	m.input.Blur()
}

func (m *OrgChartModel) updateDepartment(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return nil
	case "enter":
		m.engine.SetDepartmentFilter(m.input.Value())
		m.closeInput()
		m.refresh()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *OrgChartModel) updateFind(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.found = nil
		m.closeInput()
		return nil
	case "up", "ctrl+p":
		if m.foundAt > 0 {
			m.foundAt--
		}
		return nil
	case "down", "ctrl+n":
		if m.foundAt < len(m.found)-1 {
			m.foundAt++
		}
		return nil
	case "enter":
		if len(m.found) > 0 {
			id := m.found[m.foundAt].ID
			m.found = nil
			m.closeInput()
			return m.Open(id)
		}
		return m.find(strings.TrimSpace(m.input.Value()))
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.found = nil
	}
	return cmd
}

func (m *OrgChartModel) find(term string) tea.Cmd {
	if len([]rune(term)) < commands.MinSearchLength {
		m.SetMessage(fmt.Sprintf("Type at least %d characters", commands.MinSearchLength), true)
		return nil
	}
	return func() tea.Msg {
		emps, err := m.engine.SearchEmployees(context.Background(), term, findLimit)
		if err != nil && !errors.Is(err, context.Canceled) {
			return findResultsMsg{term: term, err: err}
		}
		return findResultsMsg{term: term, results: commands.FuzzySort(emps, term)}
	}
}

// View renders the org chart
func (m *OrgChartModel) View() string {
	v := NewViewBuilder().Title("Org Chart")

	stats := m.engine.Stats()
	status := fmt.Sprintf("%d shown · %d loaded · %d levels", stats.Visible, stats.Loaded, stats.Depth)
	if dept := m.engine.DepartmentFilter(); dept != "" {
		status += " · department " + dept
	}
	if m.loading {
		status += " · loading…"
	}
	v.Line(styles.Subtitle.Render(status))
	if mgr := m.engine.Manager(); mgr != nil && mgr.ID != "" {
		v.Muted("reports to " + mgr.FullName())
	}
	if node, ok := m.current(); ok {
		v.Muted(renderPath(m.engine.Path(node.ID)))
	}
	v.BlankLine()

	switch {
	case len(m.nodes) == 0 && m.loading:
		v.Muted("Loading...")
	case len(m.nodes) == 0:
		v.Muted("Nothing to show")
	default:
		start, end := m.pager.VisibleRange()
		for i := start; i < end; i++ {
			v.Line(renderChartNode(m.nodes[i], i == m.pager.Cursor()))
		}
		if m.pager.TotalPages() > 1 {
			v.Muted(fmt.Sprintf("page %d/%d", m.pager.CurrentPage(), m.pager.TotalPages()))
		}
	}
	v.BlankLine()

	if panel := m.renderPanel(); panel != "" {
		v.Line(panel).BlankLine()
	}
	v.Message(m.Message, m.MessageErr)

	k := OrgChartKeys
	return v.Help(k.Up, k.Left, k.Toggle, k.Manager, k.Department, k.Find, k.SwitchView, k.Help, k.Quit).String()
}

func renderPath(path []domain.Employee) string {
	names := make([]string, 0, len(path))
	for _, e := range path {
		names = append(names, e.FullName())
	}
	return strings.Join(names, " › ")
}

func renderChartNode(n domain.DisplayNode, selected bool) string {
	indent := strings.Repeat("  ", n.Level)

	var prefix string
	switch {
	case n.Loading:
		prefix = styles.TreeLoading
	case !n.HasChildren:
		prefix = styles.TreeLeaf
	case n.Expanded && n.Loaded:
		prefix = styles.TreeExpanded
	default:
		prefix = styles.TreeCollapsed
	}

	text := n.FullName()
	if n.Position != "" {
		text += " · " + n.Position
	}
	var extra []string
	if n.Department != "" {
		extra = append(extra, n.Department)
	}
	if n.Loaded && n.ReportCount > 0 {
		extra = append(extra, fmt.Sprintf("%d reports", n.ReportCount))
	}
	suffix := ""
	if len(extra) > 0 {
		suffix = " " + styles.MutedText.Render("("+strings.Join(extra, ", ")+")")
	}

	if selected {
		return indent + styles.TreeBranch.Render(prefix) + styles.NodeSelected.Render(text) + suffix
	}
	style := lipgloss.NewStyle().Foreground(styles.LevelColor(n.Level))
	if n.Level == 0 {
		style = style.Bold(true)
	}
	if n.Status == "terminated" {
		style = styles.NodeDimmed
	}
	return indent + styles.TreeBranch.Render(prefix) + style.Render(text) + suffix
}

func (m *OrgChartModel) renderPanel() string {
	var b strings.Builder
	switch m.mode {
	case chartDepartment:
		b.WriteString(styles.InputLabel.Render("Department filter"))
		b.WriteString("\n")
		b.WriteString(styles.InputFocused.Render(m.input.View()))
	case chartFind:
		b.WriteString(styles.InputLabel.Render("Find employee to root the chart on"))
		b.WriteString("\n")
		b.WriteString(styles.InputFocused.Render(m.input.View()))
		for i, r := range m.found {
			line := r.FullName()
			if r.Position != "" {
				line += " · " + r.Position
			}
			b.WriteString("\n  ")
			if i == m.foundAt {
				b.WriteString(styles.NodeSelected.Render(line))
			} else {
				b.WriteString(line)
			}
		}
	default:
		return ""
	}
	return b.String()
}
