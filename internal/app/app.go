package app

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailfront/internal/compose"
	"github.com/nhle/mailfront/internal/keys"
	"github.com/nhle/mailfront/internal/model"
	"github.com/nhle/mailfront/internal/ui"
	"github.com/nhle/mailfront/internal/ui/campaigns"
	"github.com/nhle/mailfront/internal/ui/command"
	"github.com/nhle/mailfront/internal/ui/composer"
	configview "github.com/nhle/mailfront/internal/ui/config"
	helpview "github.com/nhle/mailfront/internal/ui/help"
	"github.com/nhle/mailfront/internal/ui/inbox"
	"github.com/nhle/mailfront/internal/ui/templates"
)

// Backend is the mail API as used by all screens.
type Backend interface {
	campaigns.Backend
	templates.Backend
	composer.Mailer
	inbox.Fetcher
	configview.Tester
}

// Store is the local database as used by all screens.
type Store interface {
	campaigns.Cache
	composer.Drafts
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewCampaigns ViewState = iota
	ViewTemplates
	ViewCompose
	ViewMailbox
	ViewSettings
	ViewHelp
	ViewCommand
)

var viewTitles = map[ViewState]string{
	ViewCampaigns: "Campaigns",
	ViewTemplates: "Templates",
	ViewCompose:   "Compose",
	ViewMailbox:   "Mailbox",
	ViewSettings:  "Settings",
	ViewHelp:      "Help",
	ViewCommand:   "Command",
}

// Model is the root Bubble Tea model that manages view routing, layout
// and the status line.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	campaignsView campaigns.Model
	templatesView templates.Model
	composeView   composer.Model
	mailboxView   inbox.Model
	settingsView  *configview.Model
	helpView      helpview.Model
	commandView   command.Model

	status  ui.StatusMsg
	account string
	ready   bool
}

// New creates the root model. The settings service must already be loaded.
func New(b Backend, s Store, svc configview.Service, v *compose.Validator, cfg *model.AppConfig) Model {
	k := keys.DefaultKeyMap()
	pageSize := cfg.Display.PageSize

	return Model{
		currentView:   ViewCampaigns,
		keys:          k,
		campaignsView: campaigns.New(b, s, k, pageSize, 80, 24),
		templatesView: templates.New(b, v, k, pageSize, 80, 24),
		composeView:   composer.New(b, s, svc, v, k, 80, 24),
		mailboxView:   inbox.New(b, svc, k, pageSize, 80, 24),
		settingsView:  configview.New(svc, b, v, k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		commandView:   command.New(80, 24),
		account:       svc.Current().User,
	}
}

// Init loads campaigns, templates for the compose screen and any saved
// draft. The mailbox is fetched when first opened.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.campaignsView.Init(),
		m.templatesView.Init(),
		m.composeView.Init(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.campaignsView.SetSize(w, h)
		m.templatesView.SetSize(w, h)
		m.composeView.SetSize(w, h)
		m.mailboxView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case ui.StatusMsg:
		m.status = msg
		if msg.Err != nil {
			slog.Warn("operation failed", "view", viewTitles[m.currentView], "error", msg.Err)
		}
		return m, nil

	case campaigns.CloseMsg, templates.CloseMsg, composer.CloseMsg, inbox.CloseMsg, configview.ConfigDoneMsg:
		cmd := m.switchTo(ViewCampaigns)
		return m, cmd

	case templates.ChangedMsg:
		cmd := m.composeView.SetTemplates(msg.Templates)
		return m, cmd

	case templates.UseTemplateMsg:
		switchCmd := m.switchTo(ViewCompose)
		useCmd := m.composeView.UseTemplate(msg.Template)
		return m, tea.Batch(switchCmd, useCmd)

	case configview.SettingsSavedMsg:
		m.account = msg.Settings.User
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.currentView == ViewCommand && key.Matches(msg, m.keys.Back) {
			m.commandView.Reset()
			m.currentView = m.previousView
			return m, nil
		}
		if !m.inputActive() {
			if handled, cmd := m.handleGlobalKey(msg); handled {
				return m, cmd
			}
		}
		return m.updateActiveView(msg)
	}

	if view, ok := m.owner(msg); ok && view != m.currentView {
		return m.updateView(view, msg)
	}
	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work on every screen unless that
// screen is taking text input.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.currentView == ViewHelp &&
		(key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back)) {
		m.currentView = m.previousView
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return true, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.openHelp()
		return true, nil
	case key.Matches(msg, m.keys.Command):
		m.open(ViewCommand)
		return true, m.commandView.Focus()
	case key.Matches(msg, m.keys.Campaigns):
		return true, m.switchTo(ViewCampaigns)
	case key.Matches(msg, m.keys.Templates):
		return true, m.switchTo(ViewTemplates)
	case key.Matches(msg, m.keys.Compose):
		return true, m.switchTo(ViewCompose)
	case key.Matches(msg, m.keys.Mailbox):
		return true, m.switchTo(ViewMailbox)
	case key.Matches(msg, m.keys.Settings):
		return true, m.switchTo(ViewSettings)
	}
	return false, nil
}

// open shows an overlay view, remembering where to return.
func (m *Model) open(v ViewState) {
	if m.currentView != ViewHelp && m.currentView != ViewCommand {
		m.previousView = m.currentView
	}
	m.currentView = v
}

func (m *Model) openHelp() {
	m.open(ViewHelp)
	m.helpView.SetScreen(viewTitles[m.previousView])
}

// switchTo changes the active screen. Opening the mailbox fetches it.
func (m *Model) switchTo(v ViewState) tea.Cmd {
	if m.currentView == v {
		return nil
	}
	m.previousView = m.currentView
	m.currentView = v
	m.status = ui.StatusMsg{}
	if v == ViewMailbox {
		return m.mailboxView.Refresh()
	}
	return nil
}

// inputActive reports whether the active screen consumes typed keys, in
// which case global shortcuts are disabled.
func (m Model) inputActive() bool {
	switch m.currentView {
	case ViewCampaigns:
		return m.campaignsView.InputActive()
	case ViewTemplates:
		return m.templatesView.InputActive()
	case ViewCompose:
		return m.composeView.InputActive()
	case ViewMailbox:
		return m.mailboxView.InputActive()
	case ViewSettings:
		return m.settingsView.InputActive()
	case ViewCommand:
		return true
	default:
		return false
	}
}

// owner returns the screen that started the work msg reports on.
func (m Model) owner(msg tea.Msg) (ViewState, bool) {
	switch {
	case m.campaignsView.Owns(msg):
		return ViewCampaigns, true
	case m.templatesView.Owns(msg):
		return ViewTemplates, true
	case m.composeView.Owns(msg):
		return ViewCompose, true
	case m.mailboxView.Owns(msg):
		return ViewMailbox, true
	case m.settingsView.Owns(msg):
		return ViewSettings, true
	}
	return 0, false
}

// updateActiveView forwards a message to the currently active sub-view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.updateView(m.currentView, msg)
}

func (m Model) updateView(v ViewState, msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch v {
	case ViewCampaigns:
		m.campaignsView, cmd = m.campaignsView.Update(msg)
	case ViewTemplates:
		m.templatesView, cmd = m.templatesView.Update(msg)
	case ViewCompose:
		m.composeView, cmd = m.composeView.Update(msg)
	case ViewMailbox:
		m.mailboxView, cmd = m.mailboxView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Mail Client | "+viewTitles[m.currentView], m.accountLabel())
	content := m.renderContent()

	var bar string
	switch {
	case m.status.Err != nil:
		bar = m.layout.RenderErrorBar(m.status.Message())
	case m.status.Text != "":
		bar = m.layout.RenderStatusBar(m.status.Text + " | " + m.keyHints())
	default:
		bar = m.layout.RenderStatusBar(m.keyHints())
	}

	return m.layout.RenderWithFrame(header, content, bar)
}

func (m Model) accountLabel() string {
	if m.account == "" {
		return "no account"
	}
	return m.account
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCampaigns:
		return m.campaignsView.View()
	case ViewTemplates:
		return m.templatesView.View()
	case ViewCompose:
		return m.composeView.View()
	case ViewMailbox:
		return m.mailboxView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	}
	if m.inputActive() {
		return "esc cancel"
	}
	return "1-5 screens | : command | ? help | q quit"
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "campaigns":
		return m.switchTo(ViewCampaigns)
	case "templates":
		return m.switchTo(ViewTemplates)
	case "compose":
		return m.switchTo(ViewCompose)
	case "mailbox", "inbox":
		return m.switchTo(ViewMailbox)
	case "settings", "config":
		return m.switchTo(ViewSettings)
	case "refresh":
		switch m.currentView {
		case ViewMailbox:
			return m.mailboxView.Refresh()
		case ViewTemplates:
			return m.templatesView.Init()
		default:
			return m.campaignsView.Refresh()
		}
	case "help":
		m.openHelp()
		return nil
	case "quit", "q":
		return tea.Quit
	default:
		return ui.Status("Unknown command: " + cmd)
	}
}
