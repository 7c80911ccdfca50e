// Package tui is the interactive terminal front end.
package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"peopledir/internal/adapters/tui/views"
	"peopledir/internal/directory"
	"peopledir/internal/domain"
	"peopledir/internal/forms"
	"peopledir/internal/hierarchy"
	"peopledir/internal/permissions"
	"peopledir/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewDirectory ViewState = iota
	ViewOrgChart
	ViewForm
	ViewHelp
)

// Deps are the engines and collaborators the views run on
type Deps struct {
	Directory    *directory.Engine
	Hierarchy    *hierarchy.Engine
	NewForm      func() *forms.Form
	Export       views.ExportFunc // nil without an export sink
	ExportFields []string
	Opener       ports.FileOpener // nil disables viewing exports
	Role         string
	Flags        permissions.Flags
	RootID       domain.EmployeeID
	Depth        int
}

// App is the main TUI application model
type App struct {
	deps Deps

	state    ViewState
	previous ViewState
	dir      *views.DirectoryModel
	chart    *views.OrgChartModel
	form     *views.FormModel
	help     *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(deps Deps) *App {
	return &App{
		deps:  deps,
		state: ViewDirectory,
		dir:   views.NewDirectoryModel(deps.Directory, deps.Flags, deps.Export, deps.ExportFields),
		chart: views.NewOrgChartModel(deps.Hierarchy, deps.RootID, deps.Depth),
		form:  views.NewFormModel(deps.NewForm),
		help:  views.NewHelpModel(deps.Role, deps.Flags),
	}
}

// Bind routes debounced search results into the running program
func (a *App) Bind(p *tea.Program) {
	a.deps.Directory.OnUpdate(func(u directory.Update) {
		p.Send(views.DirectoryUpdateMsg{Update: u})
	})
}

// Directory returns the directory view
func (a *App) Directory() *views.DirectoryModel {
	return a.dir
}

// State returns the active view
func (a *App) State() ViewState {
	return a.state
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.dir.Init()
}

func (a *App) switchTo(s ViewState) {
	if s != a.state {
		a.previous = a.state
	}
	a.state = s
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dir.SetSize(msg.Width, msg.Height)
		a.chart.SetSize(msg.Width, msg.Height)
		a.form.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case views.SwitchToDirectoryMsg:
		a.switchTo(ViewDirectory)
		return a, nil

	case views.SwitchToOrgChartMsg:
		a.switchTo(ViewOrgChart)
		return a, a.chart.Open(msg.RootID)

	case views.SwitchToFormMsg:
		a.switchTo(ViewForm)
		return a, a.form.Open()

	case views.SwitchToHelpMsg:
		a.switchTo(ViewHelp)
		return a, nil

	case views.BackMsg:
		a.state = a.previous
		if a.state == ViewHelp {
			a.state = ViewDirectory
		}
		return a, nil

	case views.FormSubmittedMsg:
		a.switchTo(ViewDirectory)
		a.dir.SetMessage("Created "+msg.Employee.FullName(), false)
		a.deps.Directory.ClearCache()
		return a, a.dir.Reload()

	case views.OpenFileMsg:
		return a, a.openFile(msg.Path)

	case fileClosedMsg:
		if msg.err != nil {
			a.dir.SetMessage(msg.err.Error(), true)
		}
		return a, nil

	case views.DirectoryUpdateMsg:
		// Search results land in the directory whichever view is showing
		_, cmd := a.dir.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	switch a.state {
	case ViewDirectory:
		_, cmd = a.dir.Update(msg)
	case ViewOrgChart:
		_, cmd = a.chart.Update(msg)
	case ViewForm:
		_, cmd = a.form.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

type fileClosedMsg struct{ err error }

var errNoOpener = errors.New("no program configured to view exports")

func (a *App) openFile(path string) tea.Cmd {
	if a.deps.Opener == nil {
		return func() tea.Msg {
			return fileClosedMsg{err: errNoOpener}
		}
	}

	cmd, err := a.deps.Opener.Command(path)
	if err != nil {
		return func() tea.Msg {
			return fileClosedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return fileClosedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewOrgChart:
		return a.chart.View()
	case ViewForm:
		return a.form.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.dir.View()
	}
}

// Close releases the engines
func (a *App) Close() {
	a.deps.Directory.Close()
	a.deps.Hierarchy.Close()
}
