package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailfront/internal/backend"
	"github.com/nhle/mailfront/internal/compose"
	"github.com/nhle/mailfront/internal/keys"
	"github.com/nhle/mailfront/internal/model"
	"github.com/nhle/mailfront/internal/settings"
	"github.com/nhle/mailfront/internal/theme"
	"github.com/nhle/mailfront/internal/ui"
)

// ConfigMode represents the current state of the settings view.
type ConfigMode int

const (
	ModeSummary        ConfigMode = iota // Show current settings
	ModeSelectProvider                   // Pick a provider preset
	ModeForm                             // Edit account, SMTP and IMAP
	ModeValidating                       // Testing connection
	ModeValidateResult                   // Show test result
)

// Service is the settings store the screen edits.
type Service interface {
	Current() model.Settings
	Update(ctx context.Context, p settings.Patch) (model.Settings, error)
	ApplyProvider(ctx context.Context, key string) (model.Settings, error)
}

// Tester checks connections through the mail API.
type Tester interface {
	TestSMTP(ctx context.Context, s model.Settings) error
	TestIMAP(ctx context.Context, s model.Settings) error
}

// ConfigDoneMsg signals the settings view should close.
type ConfigDoneMsg struct{}

// SettingsSavedMsg is sent after settings were persisted.
type SettingsSavedMsg struct {
	Settings model.Settings
}

// Protocol names the connection being tested.
type Protocol string

const (
	SMTP Protocol = "SMTP"
	IMAP Protocol = "IMAP"
)

// ValidateResultMsg carries the result of a connection test.
type ValidateResultMsg struct {
	Protocol Protocol
	Err      error
}

type settingsUpdatedMsg struct {
	settings model.Settings
	status   string
	err      error
}

// Model is the Bubble Tea model for the settings screen.
type Model struct {
	mode      ConfigMode
	service   Service
	tester    Tester
	validator *compose.Validator

	form         *huh.Form
	providerForm *huh.Form

	// Form field values (huh binds to these)
	formUser       string
	formPassword   string
	formSMTPServer string
	formSMTPPort   string
	formSMTPTLS    bool
	formIMAPServer string
	formIMAPPort   string
	formIMAPTLS    bool
	formProvider   string

	formErr error

	testing    Protocol
	validError error
	spinner    spinner.Model

	keys          *keys.KeyMap
	width, height int
}

// New creates a new settings view model.
func New(s Service, t Tester, v *compose.Validator, k *keys.KeyMap, width, height int) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		mode:      ModeSummary,
		service:   s,
		tester:    t,
		validator: v,
		keys:      k,
		spinner:   sp,
		width:     width,
		height:    height,
	}
}

// Init has nothing to load; the service is loaded at startup.
func (m *Model) Init() tea.Cmd {
	return nil
}

// InputActive reports whether the screen is consuming typed characters.
func (m *Model) InputActive() bool {
	return m.mode == ModeForm || m.mode == ModeSelectProvider
}

// Update handles messages and dispatches based on current mode.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsUpdatedMsg:
		if msg.err != nil {
			m.mode = ModeSummary
			return m, ui.Failure(msg.err)
		}
		m.mode = ModeSummary
		saved := msg.settings
		return m, tea.Batch(
			ui.Status(msg.status),
			func() tea.Msg { return SettingsSavedMsg{Settings: saved} },
		)

	case ValidateResultMsg:
		if m.mode != ModeValidating || msg.Protocol != m.testing {
			return m, nil
		}
		m.validError = msg.Err
		m.mode = ModeValidateResult
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m.updateActiveForm(msg)
}

// handleKeyMsg processes key messages based on the current mode.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch m.mode {
	case ModeSummary:
		return m.handleSummaryKeys(msg)
	case ModeSelectProvider, ModeForm:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeSummary
			return m, nil
		}
		return m.updateActiveForm(msg)
	case ModeValidateResult:
		return m.handleValidateResultKeys(msg)
	case ModeValidating:
		// Only allow escape during validation
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeSummary
			return m, nil
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleSummaryKeys(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return ConfigDoneMsg{} }

	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Select):
		m.loadFormFields(m.service.Current())
		m.formErr = nil
		m.form = m.buildForm()
		m.mode = ModeForm
		return m, m.form.Init()

	case msg.String() == "p":
		m.formProvider = model.ProviderCustom
		m.providerForm = m.buildProviderForm()
		m.mode = ModeSelectProvider
		return m, m.providerForm.Init()

	case key.Matches(msg, m.keys.TestSMTP):
		return m, m.startTest(SMTP)

	case key.Matches(msg, m.keys.TestIMAP):
		return m, m.startTest(IMAP)
	}
	return m, nil
}

// handleValidateResultKeys processes key events on the test result screen.
func (m *Model) handleValidateResultKeys(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Back):
		m.mode = ModeSummary
		m.validError = nil
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		if m.validError != nil {
			return m, m.startTest(m.testing)
		}
	}
	return m, nil
}

func (m *Model) startTest(p Protocol) tea.Cmd {
	m.mode = ModeValidating
	m.testing = p
	m.validError = nil
	return tea.Batch(m.spinner.Tick, m.testConnection(p, m.service.Current()))
}

// updateActiveForm dispatches messages to the currently active form.
func (m *Model) updateActiveForm(msg tea.Msg) (*Model, tea.Cmd) {
	switch m.mode {
	case ModeForm:
		return m.updateForm(msg)
	case ModeSelectProvider:
		return m.updateProviderForm(msg)
	}
	return m, nil
}

// --- Provider Selection ---

func (m *Model) buildProviderForm() *huh.Form {
	options := make([]huh.Option[string], 0, len(model.Providers))
	for _, p := range model.Providers {
		options = append(options, huh.NewOption(p.Name, p.Key))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Email Provider").
				Description("Fills the SMTP and IMAP servers, ports and TLS").
				Options(options...).
				Value(&m.formProvider),
		),
	).WithWidth(m.formWidth())
}

func (m *Model) updateProviderForm(msg tea.Msg) (*Model, tea.Cmd) {
	if m.providerForm == nil {
		return m, nil
	}

	mdl, cmd := m.providerForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.providerForm = f
	}

	if m.providerForm.State == huh.StateCompleted {
		return m, m.applyProvider(m.formProvider)
	}
	if m.providerForm.State == huh.StateAborted {
		m.mode = ModeSummary
		return m, nil
	}

	return m, cmd
}

// --- Settings Form ---

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email Address").
				Description("Account used to log in to SMTP and IMAP").
				Placeholder("user@example.com").
				Value(&m.formUser),
			huh.NewInput().
				Title("Password").
				Description("Account password or app password").
				EchoMode(huh.EchoModePassword).
				Value(&m.formPassword),
		).Title("Account Settings"),
		huh.NewGroup(
			huh.NewInput().
				Title("SMTP Server").
				Placeholder("smtp.example.com").
				Value(&m.formSMTPServer),
			huh.NewInput().
				Title("SMTP Port").
				Placeholder("587").
				Value(&m.formSMTPPort).
				Validate(validatePort),
			huh.NewConfirm().
				Title("Use TLS").
				Affirmative("Yes").
				Negative("No").
				Value(&m.formSMTPTLS),
		).Title("SMTP Settings"),
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP Server").
				Placeholder("imap.example.com").
				Value(&m.formIMAPServer),
			huh.NewInput().
				Title("IMAP Port").
				Placeholder("993").
				Value(&m.formIMAPPort).
				Validate(validatePort),
			huh.NewConfirm().
				Title("Use TLS").
				Affirmative("Yes").
				Negative("No").
				Value(&m.formIMAPTLS),
		).Title("IMAP Settings"),
	).WithWidth(m.formWidth())
}

func (m *Model) updateForm(msg tea.Msg) (*Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.saveSettings()
	}
	if m.form.State == huh.StateAborted {
		m.mode = ModeSummary
		return m, nil
	}

	return m, cmd
}

func (m *Model) saveSettings() (*Model, tea.Cmd) {
	s := m.formSettings()
	if err := m.validator.Settings(s); err != nil {
		m.formErr = err
		m.form = m.buildForm()
		return m, m.form.Init()
	}
	m.formErr = nil
	return m, m.updateSettings(settings.PatchFrom(s), "Settings saved")
}

func (m *Model) formSettings() model.Settings {
	return model.Settings{
		User:     m.formUser,
		Password: m.formPassword,
		SMTP: model.ServerSettings{
			Server: m.formSMTPServer,
			Port:   m.formSMTPPort,
			TLS:    m.formSMTPTLS,
		},
		IMAP: model.ServerSettings{
			Server: m.formIMAPServer,
			Port:   m.formIMAPPort,
			TLS:    m.formIMAPTLS,
		},
	}
}

func (m *Model) loadFormFields(s model.Settings) {
	m.formUser = s.User
	m.formPassword = s.Password
	m.formSMTPServer = s.SMTP.Server
	m.formSMTPPort = s.SMTP.Port
	m.formSMTPTLS = s.SMTP.TLS
	m.formIMAPServer = s.IMAP.Server
	m.formIMAPPort = s.IMAP.Port
	m.formIMAPTLS = s.IMAP.TLS
}

// --- View ---

// View renders the settings UI based on the current mode.
func (m *Model) View() string {
	switch m.mode {
	case ModeSummary:
		return m.viewSummary()
	case ModeSelectProvider:
		return m.viewForm(m.providerForm)
	case ModeForm:
		return m.viewForm(m.form)
	case ModeValidating:
		return m.viewValidating()
	case ModeValidateResult:
		return m.viewValidateResult()
	default:
		return ""
	}
}

func (m *Model) viewSummary() string {
	s := m.service.Current()

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Settings"))
	b.WriteString("\n\n")

	b.WriteString(section("Account Settings", [][2]string{
		{"Email Address", s.User},
		{"Password", maskPassword(s.Password)},
	}))
	b.WriteString(section("SMTP Settings", [][2]string{
		{"Server", s.SMTP.Server},
		{"Port", s.SMTP.Port},
		{"TLS", onOff(s.SMTP.TLS)},
	}))
	b.WriteString(section("IMAP Settings", [][2]string{
		{"Server", s.IMAP.Server},
		{"Port", s.IMAP.Port},
		{"TLS", onOff(s.IMAP.TLS)},
	}))

	if !s.SMTPComplete() {
		b.WriteString(theme.ErrorStyle.Render("SMTP settings are incomplete; sending is disabled."))
		b.WriteString("\n")
	}
	if !s.IMAPComplete() {
		b.WriteString(theme.ErrorStyle.Render("IMAP settings are incomplete; the mailbox is disabled."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render(
		"e edit | p provider | t test SMTP | i test IMAP | esc back",
	))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func section(title string, rows [][2]string) string {
	var b strings.Builder
	b.WriteString(theme.SelectedItemStyle.Render(title))
	b.WriteString("\n")
	for _, r := range rows {
		value := r[1]
		if value == "" {
			value = theme.MutedStyle.Render("(not set)")
		}
		fmt.Fprintf(&b, "  %-14s %s\n", r[0], value)
	}
	b.WriteString("\n")
	return b.String()
}

func (m *Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}

	var b strings.Builder
	if m.mode == ModeForm && m.formErr != nil {
		b.WriteString(theme.ErrorStyle.Render(formError(m.formErr)))
		b.WriteString("\n\n")
	}
	b.WriteString(f.View())

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m *Model) viewValidating() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	content := fmt.Sprintf(
		"%s Testing %s connection...\n\nPress esc to cancel.",
		m.spinner.View(), m.testing,
	)

	return style.Render(content)
}

func (m *Model) viewValidateResult() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	var content string
	if m.validError != nil {
		content = theme.ErrorStyle.Bold(true).Render(fmt.Sprintf("%s connection failed", m.testing)) + "\n\n" +
			testError(m.validError) + "\n\n" +
			theme.MutedStyle.Render("r retry | enter/esc back")
	} else {
		content = theme.SuccessStyle.Bold(true).Render(fmt.Sprintf("%s connection successful", m.testing)) + "\n\n" +
			theme.MutedStyle.Render("enter/esc back")
	}

	return style.Render(content)
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m *Model) updateSettings(p settings.Patch, status string) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		s, err := svc.Update(context.Background(), p)
		return settingsUpdatedMsg{settings: s, status: status, err: err}
	}
}

func (m *Model) applyProvider(key string) tea.Cmd {
	svc := m.service
	name := key
	if p, ok := model.LookupProvider(key); ok {
		name = p.Name
	}
	return func() tea.Msg {
		s, err := svc.ApplyProvider(context.Background(), key)
		return settingsUpdatedMsg{
			settings: s,
			status:   fmt.Sprintf("Applied %s settings", name),
			err:      err,
		}
	}
}

func (m *Model) testConnection(p Protocol, s model.Settings) tea.Cmd {
	t := m.tester
	return func() tea.Msg {
		var err error
		if p == SMTP {
			err = t.TestSMTP(context.Background(), s)
		} else {
			err = t.TestIMAP(context.Background(), s)
		}
		return ValidateResultMsg{Protocol: p, Err: err}
	}
}

func formError(err error) string {
	var ve compose.ValidationError
	if errors.As(err, &ve) {
		return strings.Join(ve.Messages(), "\n")
	}
	return err.Error()
}

// testError mirrors the wording used for failed API calls elsewhere.
func testError(err error) string {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrIncompleteSettings):
		return "Settings are incomplete: server, port, email address and password are required."
	case errors.As(err, &apiErr):
		return "Bad request: " + apiErr.Message
	default:
		return "Request to API failed: " + err.Error()
	}
}

func maskPassword(p string) string {
	if p == "" {
		return ""
	}
	return strings.Repeat("•", 8)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// --- Validators ---

func validatePort(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}

// Owns reports whether msg is a result of work this screen started.
func (m *Model) Owns(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case settingsUpdatedMsg, ValidateResultMsg:
		return true
	case spinner.TickMsg:
		return msg.ID == m.spinner.ID()
	}
	return false
}
