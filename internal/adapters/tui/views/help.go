package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"peopledir/internal/adapters/tui/styles"
	"peopledir/internal/permissions"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
	role  string
	flags permissions.Flags
}

// NewHelpModel creates a new help view model
func NewHelpModel(role string, flags permissions.Flags) *HelpModel {
	return &HelpModel{role: role, flags: flags}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, func() tea.Msg {
				return BackMsg{}
			}
		}
	}

	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("peopledir help"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render("Signed in as role " + m.role))
	b.WriteString("\n\n")

	b.WriteString(styles.InputLabel.Render("Directory"))
	b.WriteString("\n")
	b.WriteString(helpLine("j / k", "Move between rows"))
	b.WriteString(helpLine("h / l, g / G", "Previous / next, first / last page"))
	b.WriteString(helpLine("/", "Search with suggestions and history"))
	b.WriteString(helpLine("f / F", "Set a filter (key=value) / clear filters"))
	b.WriteString(helpLine("s / S", "Next sort column / reverse order"))
	b.WriteString(helpLine("z", "Cycle page size"))
	b.WriteString(helpLine("space / a", "Select row / select page"))
	b.WriteString(helpLine("y", "Copy email of selection"))
	b.WriteString(helpLine("w / L", "Save filters / saved filters"))
	b.WriteString(helpLine("enter", "Org chart from employee"))
	if m.flags.CanEdit {
		b.WriteString(helpLine("n", "New employee"))
	}
	if m.flags.CanExport {
		b.WriteString(helpLine("x / v", "Export as CSV / view last export"))
	}
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Org chart"))
	b.WriteString("\n")
	b.WriteString(helpLine("h / l / enter", "Collapse or parent / expand / toggle"))
	b.WriteString(helpLine("E / C", "Expand all loaded / collapse all"))
	b.WriteString(helpLine("u / R", "Root on manager / root on selection"))
	b.WriteString(helpLine("d", "Filter by department"))
	b.WriteString(helpLine("/", "Find an employee to root on"))
	b.WriteString("\n")

	if m.flags.CanEdit {
		b.WriteString(styles.InputLabel.Render("New employee form"))
		b.WriteString("\n")
		b.WriteString(helpLine("tab / shift+tab", "Next / previous field"))
		b.WriteString(helpLine("enter / ctrl+b", "Next step or create / previous step"))
		b.WriteString(helpLine("ctrl+d", "Discard the saved draft"))
		b.WriteString("\n")
	}

	b.WriteString(styles.InputLabel.Render("General"))
	b.WriteString("\n")
	b.WriteString(helpLine("tab", "Switch directory / org chart"))
	b.WriteString(helpLine("?", "Toggle help"))
	b.WriteString(helpLine("q / Ctrl+C", "Quit"))
	b.WriteString("\n")

	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}
