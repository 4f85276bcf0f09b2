package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailfront/internal/keys"
	"github.com/nhle/mailfront/internal/theme"
	"github.com/nhle/mailfront/internal/ui/command"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	screen string
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// SetScreen names the screen the overlay was opened from.
func (m *Model) SetScreen(name string) {
	m.screen = name
}

// View renders the help overlay.
func (m Model) View() string {
	heading := "Keyboard Shortcuts"
	if m.screen != "" {
		heading += " | " + m.screen
	}
	title := theme.TitleStyle.Render(heading)

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	commands := theme.HelpStyle.Render("Commands (:) " + strings.Join(command.Names, ", "))
	footer := theme.HelpStyle.Render(
		"Screens take their own keys while a form or search box has focus.",
	)

	content := lipgloss.JoinVertical(lipgloss.Left, title, helpText, "", commands, footer)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
