package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"peopledir/internal/adapters/tui/styles"
	"peopledir/internal/application/commands"
	"peopledir/internal/directory"
	"peopledir/internal/domain"
	"peopledir/internal/permissions"
	"peopledir/internal/request"
)

// DirectoryKeyMap defines key bindings for the directory view
type DirectoryKeyMap struct {
	Up           key.Binding
	Down         key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	FirstPage    key.Binding
	LastPage     key.Binding
	Search       key.Binding
	Filter       key.Binding
	ClearFilters key.Binding
	Sort         key.Binding
	SortOrder    key.Binding
	PageSize     key.Binding
	Select       key.Binding
	SelectAll    key.Binding
	Copy         key.Binding
	OrgChart     key.Binding
	New          key.Binding
	Export       key.Binding
	ViewExport   key.Binding
	SaveFilter   key.Binding
	SavedFilters key.Binding
	Refresh      key.Binding
	SwitchView   key.Binding
	Help         key.Binding
	Quit         key.Binding
}

var DirectoryKeys = DirectoryKeyMap{
	Up:           key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:         key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	NextPage:     key.NewBinding(key.WithKeys("l", "right", "pgdown"), key.WithHelp("h/l", "page")),
	PrevPage:     key.NewBinding(key.WithKeys("h", "left", "pgup"), key.WithHelp("h/←", "previous page")),
	FirstPage:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
	LastPage:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),
	Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Filter:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	ClearFilters: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "clear filters")),
	Sort:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	SortOrder:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "reverse")),
	PageSize:     key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "page size")),
	Select:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	SelectAll:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select page")),
	Copy:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy email")),
	OrgChart:     key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "org chart")),
	New:          key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Export:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
	ViewExport:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view export")),
	SaveFilter:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save filter")),
	SavedFilters: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "saved filters")),
	Refresh:      key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh")),
	SwitchView:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "org chart")),
	Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// PageSizes are the sizes the page-size key cycles through
var PageSizes = []int{10, 20, 50, commands.MaxPageSize}

type column struct {
	title string
	field string // sort field
	width int
	value func(domain.Employee) string
}

var directoryColumns = []column{
	{"Name", "lastName", 24, domain.Employee.FullName},
	{"Email", "email", 30, func(e domain.Employee) string { return e.Email }},
	{"Department", "department", 16, func(e domain.Employee) string { return e.Department }},
	{"Position", "position", 22, func(e domain.Employee) string { return e.Position }},
	{"Location", "location", 14, func(e domain.Employee) string { return e.Location }},
	{"Status", "status", 10, func(e domain.Employee) string { return e.Status }},
}

type directoryMode int

const (
	modeBrowse directoryMode = iota
	modeSearch
	modeFilter
	modeSaveFilter
	modeSavedFilters
)

// ExportFunc exports the directory for q and reports where it was stored
type ExportFunc func(ctx context.Context, q domain.Query, fields []string) (commands.ExportResult, error)

type listingMsg struct {
	result directory.ListResult
}

// DirectoryUpdateMsg carries a debounced search result into the program
type DirectoryUpdateMsg struct {
	Update directory.Update
}

type exportDoneMsg struct {
	result commands.ExportResult
	err    error
}

// DirectoryModel is the paginated employee table
type DirectoryModel struct {
	ViewState
	engine    *directory.Engine
	flags     permissions.Flags
	export    ExportFunc
	fields    []string
	clipboard func(string) error

	snap       directory.Snapshot
	cursor     int
	pending    int
	mode       directoryMode
	input      textinput.Model
	choice     int
	exporting  bool
	lastExport string
}

// NewDirectoryModel creates the directory view over engine. export may be
// nil when no sink is configured.
func NewDirectoryModel(engine *directory.Engine, flags permissions.Flags, export ExportFunc, fields []string) *DirectoryModel {
	input := textinput.New()
	input.CharLimit = 120
	return &DirectoryModel{
		engine:    engine,
		flags:     flags,
		export:    export,
		fields:    fields,
		clipboard: clipboard.WriteAll,
		snap:      engine.Snapshot(),
		input:     input,
		choice:    -1,
	}
}

// SetClipboard replaces the system clipboard writer
func (m *DirectoryModel) SetClipboard(fn func(string) error) {
	m.clipboard = fn
}

// Init loads the first page
func (m *DirectoryModel) Init() tea.Cmd {
	return m.run(m.engine.Load)
}

// Reload refetches the current page, bypassing the cache
func (m *DirectoryModel) Reload() tea.Cmd {
	return m.run(m.engine.Refresh)
}

func (m *DirectoryModel) run(fn func(context.Context) directory.ListResult) tea.Cmd {
	m.pending++
	return func() tea.Msg {
		return listingMsg{fn(context.Background())}
	}
}

func (m *DirectoryModel) refresh() {
	m.snap = m.engine.Snapshot()
	if m.cursor >= len(m.snap.Items) {
		m.cursor = len(m.snap.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *DirectoryModel) applyListing(r directory.ListResult) {
	if r.Status == request.StatusFailed {
		m.SetMessage(r.Err.Error(), true)
	}
	m.refresh()
}

func (m *DirectoryModel) selected() (domain.Employee, bool) {
	if m.cursor >= 0 && m.cursor < len(m.snap.Items) {
		return m.snap.Items[m.cursor], true
	}
	return domain.Employee{}, false
}

// Update handles messages for the directory
func (m *DirectoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case listingMsg:
		m.pending = max(m.pending-1, 0)
		m.applyListing(msg.result)
		return m, nil

	case DirectoryUpdateMsg:
		m.applyListing(msg.Update.Listing)
		m.choice = -1
		return m, nil

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.SetMessage(describeFormError(msg.err), true)
			return m, nil
		}
		m.lastExport = msg.result.Location
		m.SetMessage(fmt.Sprintf("Exported %d records to %s", msg.result.TotalRecords, msg.result.Location), false)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m, m.updateSearch(msg)
		case modeFilter, modeSaveFilter:
			return m, m.updatePrompt(msg)
		case modeSavedFilters:
			return m, m.updateSavedFilters(msg)
		}
		m.ClearMessage()
		return m, m.updateBrowse(msg)
	}

	if m.mode != modeBrowse {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *DirectoryModel) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	k := DirectoryKeys
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit

	case key.Matches(msg, k.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, k.Down):
		if m.cursor < len(m.snap.Items)-1 {
			m.cursor++
		}

	case key.Matches(msg, k.NextPage):
		if m.snap.HasNext {
			m.cursor = 0
			return m.run(m.engine.NextPage)
		}
	case key.Matches(msg, k.PrevPage):
		if m.snap.HasPrevious {
			m.cursor = 0
			return m.run(m.engine.PreviousPage)
		}
	case key.Matches(msg, k.FirstPage):
		m.cursor = 0
		return m.run(m.engine.FirstPage)
	case key.Matches(msg, k.LastPage):
		m.cursor = 0
		return m.run(m.engine.LastPage)

	case key.Matches(msg, k.Search):
		return m.openInput(modeSearch, "name, email or title", m.snap.Query.Search)
	case key.Matches(msg, k.Filter):
		return m.openInput(modeFilter, strings.Join(domain.FilterKeys, "|")+"=value", "")
	case key.Matches(msg, k.ClearFilters):
		return m.run(m.engine.ClearFilters)
	case key.Matches(msg, k.SaveFilter):
		return m.openInput(modeSaveFilter, "filter name", "")
	case key.Matches(msg, k.SavedFilters):
		m.mode = modeSavedFilters
		m.choice = 0

	case key.Matches(msg, k.Sort):
		field := nextSortField(m.snap.Query.SortField)
		return m.run(func(ctx context.Context) directory.ListResult {
			return m.engine.Sort(ctx, field, domain.SortAsc)
		})
	case key.Matches(msg, k.SortOrder):
		field := m.snap.Query.SortField
		if field == "" {
			field = directoryColumns[0].field
		}
		return m.run(func(ctx context.Context) directory.ListResult {
			return m.engine.ToggleSort(ctx, field)
		})
	case key.Matches(msg, k.PageSize):
		size := nextPageSize(m.snap.Query.PageSize)
		return m.run(func(ctx context.Context) directory.ListResult {
			return m.engine.ChangePageSize(ctx, size)
		})
	case key.Matches(msg, k.Refresh):
		return m.Reload()

	case key.Matches(msg, k.Select):
		if e, ok := m.selected(); ok {
			m.engine.ToggleSelection(e.ID)
			m.refresh()
		}
	case key.Matches(msg, k.SelectAll):
		if len(m.snap.Selected) == len(m.snap.Items) {
			m.engine.ClearSelection()
		} else {
			m.engine.SelectAllOnPage()
		}
		m.refresh()

	case key.Matches(msg, k.Copy):
		m.copyEmails()

	case key.Matches(msg, k.OrgChart):
		if e, ok := m.selected(); ok {
			return func() tea.Msg { return SwitchToOrgChartMsg{RootID: e.ID} }
		}
	case key.Matches(msg, k.SwitchView):
		return func() tea.Msg { return SwitchToOrgChartMsg{} }

	case key.Matches(msg, k.New):
		if !m.flags.CanEdit {
			m.SetMessage("Your role cannot create employees", true)
			return nil
		}
		return func() tea.Msg { return SwitchToFormMsg{} }

	case key.Matches(msg, k.Export):
		return m.startExport()
	case key.Matches(msg, k.ViewExport):
		if m.lastExport == "" {
			m.SetMessage("Nothing exported yet", true)
			return nil
		}
		path := m.lastExport
		return func() tea.Msg { return OpenFileMsg{Path: path} }

	case key.Matches(msg, k.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }
	}
	return nil
}

func (m *DirectoryModel) openInput(mode directoryMode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.choice = -1
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return textinput.Blink
}

func (m *DirectoryModel) closeInput() {
	m.mode = modeBrowse
	m.choice = -1
	m.input.Blur()
}

// searchChoices are the rows under the search box: history while the box
// is empty, suggestions once there is a term
func (m *DirectoryModel) searchChoices() []string {
	if strings.TrimSpace(m.input.Value()) == "" {
		return m.engine.History()
	}
	out := make([]string, 0, len(m.snap.Suggestions))
	for _, s := range m.snap.Suggestions {
		out = append(out, s.Text)
	}
	return out
}

func (m *DirectoryModel) updateSearch(msg tea.KeyMsg) tea.Cmd {
	choices := m.searchChoices()
	switch msg.String() {
	case "esc":
		m.engine.CancelTyping()
		m.closeInput()
		return nil

	case "enter":
		term := m.input.Value()
		if m.choice >= 0 && m.choice < len(choices) {
			term = choices[m.choice]
		}
		m.engine.CancelTyping()
		m.closeInput()
		m.cursor = 0
		return m.run(func(ctx context.Context) directory.ListResult {
			return m.engine.Search(ctx, term)
		})

	case "up", "ctrl+p":
		if m.choice > -1 {
			m.choice--
		}
		return nil
	case "down", "ctrl+n":
		if m.choice < len(choices)-1 {
			m.choice++
		}
		return nil

	case "tab":
		if m.choice >= 0 && m.choice < len(choices) {
			m.input.SetValue(choices[m.choice])
			m.input.CursorEnd()
			m.choice = -1
			m.engine.Type(m.input.Value())
		}
		return nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.choice = -1
		m.engine.Type(m.input.Value())
	}
	return cmd
}

func (m *DirectoryModel) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.closeInput()
		if mode == modeSaveFilter {
			return m.saveFilter(value)
		}
		return m.applyFilter(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *DirectoryModel) applyFilter(pair string) tea.Cmd {
	if pair == "" {
		return nil
	}
	filters, err := commands.ParseFilters([]string{pair})
	if err != nil {
		m.SetMessage(err.Error(), true)
		return nil
	}
	m.cursor = 0
	if len(filters) == 0 {
		// key= clears that filter
		k, _, _ := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		return m.run(func(ctx context.Context) directory.ListResult {
			return m.engine.SetFilter(ctx, k, "")
		})
	}
	return m.run(func(ctx context.Context) directory.ListResult {
		return m.engine.SetFilters(ctx, filters)
	})
}

func (m *DirectoryModel) saveFilter(name string) tea.Cmd {
	f, err := m.engine.SaveCurrentFilter(name)
	if err != nil {
		m.SetMessage(err.Error(), true)
		return nil
	}
	m.SetMessage(fmt.Sprintf("Saved filter %q", f.Name), false)
	return nil
}

func (m *DirectoryModel) updateSavedFilters(msg tea.KeyMsg) tea.Cmd {
	saved := m.engine.SavedFilters()
	switch msg.String() {
	case "esc", "q":
		m.closeInput()
	case "up", "k":
		if m.choice > 0 {
			m.choice--
		}
	case "down", "j":
		if m.choice < len(saved)-1 {
			m.choice++
		}
	case "d", "delete":
		if m.choice >= 0 && m.choice < len(saved) {
			m.engine.DeleteSavedFilter(saved[m.choice].ID)
			m.choice = min(m.choice, len(saved)-2)
		}
	case "enter":
		if m.choice < 0 || m.choice >= len(saved) {
			return nil
		}
		id := saved[m.choice].ID
		m.closeInput()
		m.cursor = 0
		return m.run(func(ctx context.Context) directory.ListResult {
			r, err := m.engine.ApplySavedFilter(ctx, id)
			if err != nil {
				return request.Failed[domain.DirectoryResult](err)
			}
			return r
		})
	}
	return nil
}

// copyEmails copies the emails of the marked employees, or of the row
// under the cursor when nothing is marked
func (m *DirectoryModel) copyEmails() {
	var emails []string
	if len(m.snap.Selected) > 0 {
		marked := make(map[domain.EmployeeID]bool, len(m.snap.Selected))
		for _, id := range m.snap.Selected {
			marked[id] = true
		}
		for _, e := range m.snap.Items {
			if marked[e.ID] && e.Email != "" {
				emails = append(emails, e.Email)
			}
		}
	} else if e, ok := m.selected(); ok && e.Email != "" {
		emails = append(emails, e.Email)
	}
	if len(emails) == 0 {
		m.SetMessage("No email to copy", true)
		return
	}
	if err := m.clipboard(strings.Join(emails, ", ")); err != nil {
		m.SetMessage("Clipboard unavailable: "+err.Error(), true)
		return
	}
	if len(emails) == 1 {
		m.SetMessage("Copied "+emails[0], false)
		return
	}
	m.SetMessage(fmt.Sprintf("Copied %d emails", len(emails)), false)
}

func (m *DirectoryModel) startExport() tea.Cmd {
	switch {
	case !m.flags.CanExport:
		m.SetMessage("Your role cannot export the directory", true)
		return nil
	case m.export == nil:
		m.SetMessage("No export destination configured", true)
		return nil
	case m.exporting:
		return nil
	}
	m.exporting = true
	m.SetMessage("Exporting...", false)
	export, q, fields := m.export, m.snap.Query, m.fields
	return func() tea.Msg {
		res, err := export(context.Background(), q, fields)
		return exportDoneMsg{result: res, err: err}
	}
}

func nextSortField(current string) string {
	for i, c := range directoryColumns {
		if c.field == current {
			return directoryColumns[(i+1)%len(directoryColumns)].field
		}
	}
	return directoryColumns[0].field
}

func nextPageSize(current int) int {
	for _, s := range PageSizes {
		if s > current {
			return s
		}
	}
	return PageSizes[0]
}

// View renders the directory
func (m *DirectoryModel) View() string {
	v := NewViewBuilder().Title("People Directory")
	v.Line(m.renderStatus())
	if chips := m.renderQuery(); chips != "" {
		v.Line(chips)
	}
	v.BlankLine()

	switch {
	case !m.snap.Loaded && m.snap.Err == nil:
		v.Muted("Loading...")
	case len(m.snap.Items) == 0:
		v.Muted("No employees match")
	default:
		v.Line(m.renderHeader())
		for i, e := range m.snap.Items {
			v.Line(m.renderRow(e, i == m.cursor))
		}
	}
	v.BlankLine()

	if panel := m.renderPanel(); panel != "" {
		v.Line(panel).BlankLine()
	}
	v.Message(m.Message, m.MessageErr)

	k := DirectoryKeys
	return v.Help(k.Search, k.Filter, k.Sort, k.NextPage, k.Copy, k.OrgChart, k.Export, k.Help, k.Quit).String()
}

func (m *DirectoryModel) renderStatus() string {
	s := m.snap
	pages := max(s.TotalPages, 1)
	parts := []string{
		fmt.Sprintf("Page %d of %d", s.Query.Page, pages),
		fmt.Sprintf("%d employees", s.Pagination.TotalCount),
		fmt.Sprintf("%d per page", s.Query.PageSize),
	}
	if len(s.Selected) > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", len(s.Selected)))
	}
	if m.pending > 0 || s.Loading {
		parts = append(parts, "loading…")
	}
	return styles.Subtitle.Render(strings.Join(parts, " · "))
}

func (m *DirectoryModel) renderQuery() string {
	q := m.snap.Query
	var parts []string
	if q.Search != "" {
		parts = append(parts, styles.SearchMatch.Render(" "+q.Search+" "))
	}
	for _, k := range domain.FilterKeys {
		if v := q.Filters[k]; v != "" {
			parts = append(parts, styles.InputLabel.Render(k+":")+v)
		}
	}
	return strings.Join(parts, "  ")
}

func (m *DirectoryModel) renderHeader() string {
	cells := make([]string, 0, len(directoryColumns)+1)
	cells = append(cells, "  ")
	for _, c := range directoryColumns {
		title := c.title
		if c.field == m.snap.Query.SortField {
			arrow := "↑"
			if m.snap.Query.SortOrder == domain.SortDesc {
				arrow = "↓"
			}
			title += " " + styles.SortIndicator.Render(arrow)
		}
		cells = append(cells, lipgloss.NewStyle().Width(c.width).MaxWidth(c.width).Render(title))
	}
	return styles.TableHeader.Render(strings.Join(cells, " "))
}

func (m *DirectoryModel) renderRow(e domain.Employee, current bool) string {
	marker := "  "
	for _, id := range m.snap.Selected {
		if id == e.ID {
			marker = "● "
			break
		}
	}

	cells := make([]string, 0, len(directoryColumns)+1)
	cells = append(cells, marker)
	for _, c := range directoryColumns {
		cells = append(cells, padRight(truncate(c.value(e), c.width), c.width))
	}
	line := strings.Join(cells, " ")
	if current {
		return styles.NodeSelected.Render(line)
	}
	// Color the status cell only; it is last
	last := len(cells) - 1
	cells[last] = lipgloss.NewStyle().Foreground(styles.StatusColor(e.Status)).Render(cells[last])
	return styles.TableCell.Render(strings.Join(cells, " "))
}

func (m *DirectoryModel) renderPanel() string {
	var b strings.Builder
	switch m.mode {
	case modeSearch:
		b.WriteString(styles.InputLabel.Render("Search"))
		b.WriteString("\n")
		b.WriteString(styles.InputFocused.Render(m.input.View()))
		choices := m.searchChoices()
		if len(choices) > 0 {
			label := "Suggestions"
			if strings.TrimSpace(m.input.Value()) == "" {
				label = "Recent searches"
			}
			b.WriteString("\n")
			b.WriteString(styles.MutedText.Render(label))
			for i, c := range choices {
				b.WriteString("\n  ")
				if i == m.choice {
					b.WriteString(styles.NodeSelected.Render(c))
				} else {
					b.WriteString(c)
				}
			}
		}
	case modeFilter:
		b.WriteString(styles.InputLabel.Render("Filter (key=value, empty value clears)"))
		b.WriteString("\n")
		b.WriteString(styles.InputFocused.Render(m.input.View()))
	case modeSaveFilter:
		b.WriteString(styles.InputLabel.Render("Save current filters as"))
		b.WriteString("\n")
		b.WriteString(styles.InputFocused.Render(m.input.View()))
	case modeSavedFilters:
		b.WriteString(styles.InputLabel.Render("Saved filters"))
		saved := m.engine.SavedFilters()
		if len(saved) == 0 {
			b.WriteString("\n")
			b.WriteString(styles.MutedText.Render("  none yet, press w to save the current filters"))
		}
		for i, f := range saved {
			line := fmt.Sprintf("%s  %s", f.Name, describeSavedFilter(f))
			b.WriteString("\n  ")
			if i == m.choice {
				b.WriteString(styles.NodeSelected.Render(line))
			} else {
				b.WriteString(line)
			}
		}
		b.WriteString("\n")
		b.WriteString(styles.HelpDesc.Render("enter apply · d delete · esc close"))
	default:
		return ""
	}
	return b.String()
}

func describeSavedFilter(f domain.SavedFilter) string {
	var parts []string
	for _, k := range domain.FilterKeys {
		if v := f.Filters[k]; v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Search))
	}
	return styles.MutedText.Render(strings.Join(parts, " "))
}
