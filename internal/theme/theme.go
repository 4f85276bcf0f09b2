package theme

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// Names of the supported themes.
const (
	Default = "default"
	Mono    = "mono"
)

// Styles shared by every view. They are zero until Init runs.
var (
	// HeaderStyle is used for top-level section headers and the application title.
	HeaderStyle lipgloss.Style

	// StatusBarStyle is used for the bottom status bar.
	StatusBarStyle lipgloss.Style

	// ErrorBarStyle replaces StatusBarStyle while an error is shown.
	ErrorBarStyle lipgloss.Style

	// DetailPanelStyle wraps the detail view content area.
	DetailPanelStyle lipgloss.Style

	// ListItemStyle is the base style for items in a list.
	ListItemStyle lipgloss.Style

	// SelectedItemStyle highlights the currently focused list item.
	SelectedItemStyle lipgloss.Style

	// HelpStyle is used for keyboard shortcut hints and help text.
	HelpStyle lipgloss.Style

	// BorderStyle provides a standard rounded border for panels.
	BorderStyle lipgloss.Style

	// TitleStyle renders the heading of each screen.
	TitleStyle lipgloss.Style

	// StatusMsgStyle renders transient feedback under a list.
	StatusMsgStyle lipgloss.Style

	// ErrorStyle renders validation and request failures.
	ErrorStyle lipgloss.Style

	// SuccessStyle renders confirmations.
	SuccessStyle lipgloss.Style

	// MutedStyle is used for empty states, hints and secondary columns.
	MutedStyle lipgloss.Style

	// UnreadStyle marks mailbox rows that have not been opened.
	UnreadStyle lipgloss.Style
)

var current = Default

// Init builds the shared styles for the named theme. Unknown names fall
// back to the default theme. It must run before the first View call.
func Init(name string) {
	if name != Mono {
		name = Default
	}
	current = name

	accent := lipgloss.TerminalColor(ColorBlue)
	bar := lipgloss.TerminalColor(ColorSubtle)
	if name == Mono {
		accent = ColorWhite
		bar = lipgloss.NoColor{}
	}

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWhite).
		Background(accent).
		Padding(0, 1)
	if name == Mono {
		HeaderStyle = HeaderStyle.Background(lipgloss.NoColor{}).Reverse(true)
	}

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(ColorWhite).
		Background(bar).
		Padding(0, 1)

	ErrorBarStyle = StatusBarStyle.Bold(true)
	if name == Default {
		ErrorBarStyle = ErrorBarStyle.Background(ColorRed)
	}

	DetailPanelStyle = lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	ListItemStyle = lipgloss.NewStyle().
		PaddingLeft(2)

	SelectedItemStyle = lipgloss.NewStyle().
		PaddingLeft(1).
		Bold(true).
		Foreground(accent).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(accent)

	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWhite).
		MarginBottom(1)

	StatusMsgStyle = lipgloss.NewStyle().
		Foreground(pick(name, ColorYellow)).
		Italic(true)

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(pick(name, ColorRed))

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(pick(name, ColorGreen))

	MutedStyle = lipgloss.NewStyle().
		Foreground(ColorGray)

	UnreadStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(pick(name, ColorWhite))
}

// Current returns the name of the theme set by the last Init call.
func Current() string {
	return current
}

// TableStyles returns styles for bubbles tables that match the theme.
func TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(ColorWhite).
		Background(ColorBlue).
		Bold(true)
	if current == Mono {
		s.Selected = s.Selected.
			Background(lipgloss.NoColor{}).
			Reverse(true)
	}
	return s
}

func pick(name string, c lipgloss.AdaptiveColor) lipgloss.TerminalColor {
	if name == Mono {
		return ColorWhite
	}
	return c
}
