// Package inbox is the mailbox screen: the most recent inbox messages with
// search, date sort, selection and a reading pane.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailfront/internal/backend"
	"github.com/nhle/mailfront/internal/keys"
	"github.com/nhle/mailfront/internal/mailbox"
	"github.com/nhle/mailfront/internal/model"
	"github.com/nhle/mailfront/internal/theme"
	"github.com/nhle/mailfront/internal/ui"
	"github.com/nhle/mailfront/internal/ui/pagedtable"
)

// Fetcher reads the inbox through the mail API.
type Fetcher interface {
	FetchMailbox(ctx context.Context, s model.Settings) ([]backend.MailboxEntry, error)
}

// Account provides the IMAP settings.
type Account interface {
	Current() model.Settings
}

// CloseMsg signals the parent to leave the mailbox screen.
type CloseMsg struct{}

// ErrMissingIMAP is reported instead of fetching when the IMAP settings
// are incomplete.
var ErrMissingIMAP = errors.New("missing IMAP configuration")

var now = time.Now

type mode int

const (
	modeList mode = iota
	modeSearch
	modeRead
)

type mailboxLoadedMsg struct {
	entries []backend.MailboxEntry
	err     error
}

// Model is the Bubble Tea model for the mailbox screen.
type Model struct {
	mode    mode
	fetcher Fetcher
	account Account
	keys    *keys.KeyMap

	list    *mailbox.List
	visible []model.Message
	table   pagedtable.Model
	search  textinput.Model
	reader  viewport.Model
	open    model.Message

	loading bool
	spinner spinner.Model
	width   int
	height  int
}

var columns = []table.Column{
	{Title: "Subject", Width: 30},
	{Title: "From", Width: 22},
	{Title: "Date", Width: 8},
}

// New creates the mailbox screen.
func New(f Fetcher, a Account, k *keys.KeyMap, pageSize, width, height int) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search in emails"
	search.CharLimit = 200

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.StatusMsgStyle

	m := Model{
		mode:    modeList,
		fetcher: f,
		account: a,
		keys:    k,
		list:    mailbox.NewList(nil),
		table:   pagedtable.New(columns, model.PageSizes, pageSize),
		search:  search,
		reader:  viewport.New(width, height),
		spinner: s,
	}
	m.SetSize(width, height)
	return m
}

// Init fetches the inbox.
func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

// Refresh fetches the inbox again. Nothing is requested when the IMAP
// settings are incomplete.
func (m *Model) Refresh() tea.Cmd {
	settings := m.account.Current()
	if !settings.IMAPComplete() {
		return ui.Failure(ErrMissingIMAP)
	}
	m.loading = true
	f := m.fetcher
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		entries, err := f.FetchMailbox(context.Background(), settings)
		return mailboxLoadedMsg{entries: entries, err: err}
	})
}

// InputActive reports whether the screen is consuming typed characters.
func (m Model) InputActive() bool {
	return m.mode == modeSearch
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case mailboxLoadedMsg:
		m.loading = false
		if msg.err != nil {
			if errors.Is(msg.err, backend.ErrIncompleteSettings) {
				return m, ui.Failure(ErrMissingIMAP)
			}
			return m, ui.Failure(msg.err)
		}
		m.list = mailbox.NewList(mailbox.FromEntries(msg.entries, now()))
		m.list.SetQuery(m.search.Value())
		m.refreshRows()
		return m, ui.Status(fmt.Sprintf("%d messages", m.list.Len()))

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.handleSearchKey(msg)
		case modeRead:
			return m.handleReadKey(msg)
		default:
			return m.handleListKey(msg)
		}
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.list.Query() != "" {
			m.search.SetValue("")
			m.list.SetQuery("")
			m.refreshRows()
			return m, nil
		}
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Refresh()

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.CycleSort):
		m.list.ToggleOrder()
		m.refreshRows()
		return m, ui.Status("Sorted " + m.list.Order().String())

	case key.Matches(msg, m.keys.Toggle):
		if cur, ok := m.selected(); ok {
			m.list.Toggle(cur.ID)
			m.refreshRows()
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleAll):
		m.list.ToggleAll()
		m.refreshRows()
		return m, nil

	case key.Matches(msg, m.keys.Select):
		cur, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.list.MarkRead(cur.ID)
		cur.Read = true
		m.open = cur
		m.reader.SetContent(lipgloss.NewStyle().Width(m.reader.Width).Render(cur.Body))
		m.reader.GotoTop()
		m.mode = modeRead
		m.refreshRows()
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		m.table.NextPage()
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		m.table.PrevPage()
		return m, nil

	case key.Matches(msg, m.keys.PageSize):
		n := m.table.CyclePageSize()
		return m, ui.Status(fmt.Sprintf("Showing %d rows per page", n))
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeList
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.mode = modeList
		m.search.Blur()
		m.search.SetValue("")
		m.list.SetQuery("")
		m.refreshRows()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.list.Query() {
		m.list.SetQuery(m.search.Value())
		m.refreshRows()
	}
	return m, cmd
}

func (m Model) handleReadKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.reader, cmd = m.reader.Update(msg)
	return m, cmd
}

// refreshRows rebuilds the table from the filtered, sorted messages.
func (m *Model) refreshRows() {
	m.visible = m.list.Visible()
	t := now()
	rows := make([]table.Row, len(m.visible))
	for i, msg := range m.visible {
		rows[i] = table.Row{
			m.marker(msg) + msg.Subject,
			msg.From,
			mailbox.FormatDate(msg.Date, t),
		}
	}
	m.table.SetRows(rows)
}

// marker prefixes a row with its selection box and an unread dot.
func (m Model) marker(msg model.Message) string {
	box := "[ ] "
	if m.list.IsSelected(msg.ID) {
		box = "[x] "
	}
	if !msg.Read {
		return box + "• "
	}
	return box + "  "
}

func (m Model) selected() (model.Message, bool) {
	idx, ok := m.table.Index()
	if !ok || idx >= len(m.visible) {
		return model.Message{}, false
	}
	return m.visible[idx], true
}

// View renders the mailbox screen.
func (m Model) View() string {
	if m.mode == modeRead {
		return m.viewMessage()
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Mailbox"))
	b.WriteString("  ")
	b.WriteString(theme.MutedStyle.Render(m.summary()))
	b.WriteString("\n\n")

	if m.mode == modeSearch || m.list.Query() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	switch {
	case m.loading:
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading messages...")
	case len(m.visible) == 0 && m.list.Query() != "":
		b.WriteString(theme.MutedStyle.Italic(true).Render("No messages match the search."))
	case len(m.visible) == 0:
		b.WriteString(theme.MutedStyle.Italic(true).Render("No messages. Press 'r' to refresh."))
	default:
		b.WriteString(m.table.View())
	}

	b.WriteString("\n\n")
	b.WriteString(theme.MutedStyle.Render(
		"enter read | / search | tab sort | space select | a select all | r refresh | esc back",
	))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) summary() string {
	parts := []string{fmt.Sprintf("%d messages", m.list.Len()), m.list.Order().String()}
	if n := len(m.list.Selected()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	return strings.Join(parts, " | ")
}

func (m Model) viewMessage() string {
	header := fmt.Sprintf("From:    %s\nDate:    %s\nSubject: %s",
		m.open.From,
		m.open.Date.Local().Format("Mon, 02 Jan 2006 15:04"),
		m.open.Subject,
	)
	return lipgloss.NewStyle().Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			theme.TitleStyle.Render(m.open.Subject),
			theme.MutedStyle.Render(header),
			"",
			theme.BorderStyle.Render(m.reader.View()),
			theme.MutedStyle.Render("j/k scroll | esc back"),
		),
	)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(width - 4)
	m.search.Width = max(width-10, 20)
	m.reader.Width = max(width-8, 20)
	m.reader.Height = max(height-12, 5)
}

// Owns reports whether msg is a result of work this screen started.
func (m Model) Owns(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case mailboxLoadedMsg:
		return true
	case spinner.TickMsg:
		return msg.ID == m.spinner.ID()
	}
	return false
}
