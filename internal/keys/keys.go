package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down     key.Binding
	Up       key.Binding
	PrevPage key.Binding
	NextPage key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// CRUD
	New    key.Binding
	Edit   key.Binding
	Delete key.Binding

	// Screens
	Campaigns key.Binding
	Templates key.Binding
	Compose   key.Binding
	Mailbox   key.Binding
	Settings  key.Binding

	// Lists and settings
	Search    key.Binding
	CycleSort key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	PageSize  key.Binding
	TestSMTP  key.Binding
	TestIMAP  key.Binding

	// Campaign editor
	Save   key.Binding
	Clear  key.Binding
	Import key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "left", "pgup"),
			key.WithHelp("h/←", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("l", "right", "pgdown"),
			key.WithHelp("l/→", "next page"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Campaigns: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "campaigns"),
		),
		Templates: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "templates"),
		),
		Compose: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "compose"),
		),
		Mailbox: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "mailbox"),
		),
		Settings: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "settings"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle sort"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		PageSize: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "rows per page"),
		),
		TestSMTP: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "test SMTP"),
		),
		TestIMAP: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "test IMAP"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save list"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear emails"),
		),
		Import: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "import file"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Command,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage, k.Select, k.Back, k.Quit},
		{k.Campaigns, k.Templates, k.Compose, k.Mailbox, k.Settings},
		{k.New, k.Edit, k.Delete, k.Refresh, k.PageSize, k.Command, k.Help},
		{k.Save, k.Clear, k.Import},
		{k.Search, k.CycleSort, k.Toggle, k.ToggleAll, k.TestSMTP, k.TestIMAP},
	}
}
