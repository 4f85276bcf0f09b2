// Package composer is the compose screen: a single message form with an
// optional template, a locally persisted draft and a send action.
package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/nhle/mailfront/internal/backend"
	"github.com/nhle/mailfront/internal/compose"
	"github.com/nhle/mailfront/internal/keys"
	"github.com/nhle/mailfront/internal/model"
	"github.com/nhle/mailfront/internal/theme"
	"github.com/nhle/mailfront/internal/ui"
)

// Mailer delivers a validated message.
type Mailer interface {
	SendMail(ctx context.Context, req backend.SendRequest) error
}

// Drafts persists the form between runs.
type Drafts interface {
	SaveDraft(ctx context.Context, d model.Draft) (model.Draft, error)
	GetDraft(ctx context.Context) (*model.Draft, error)
	DeleteDraft(ctx context.Context, id string) error
}

// Account provides the SMTP settings used for sending.
type Account interface {
	Current() model.Settings
}

// CloseMsg signals the parent to leave the compose screen.
type CloseMsg struct{}

// autosaveDelay is how long typing must pause before the draft is written.
const autosaveDelay = 500 * time.Millisecond

// noTemplate is the template select value for "start from scratch".
const noTemplate int64 = 0

type formBindings struct {
	templateID int64
	sender     string
	fromEmail  string
	recipient  string
	subject    string
	body       string
}

func (fb *formBindings) message() compose.Message {
	return compose.Message{
		Sender:    fb.sender,
		FromEmail: fb.fromEmail,
		Recipient: fb.recipient,
		Subject:   fb.subject,
		Body:      fb.body,
	}
}

func (fb *formBindings) set(m compose.Message) {
	fb.sender = m.Sender
	fb.fromEmail = m.FromEmail
	fb.recipient = m.Recipient
	fb.subject = m.Subject
	fb.body = m.Body
}

// fields keeps the form's widgets so that values changed outside the form
// can be pushed back into them.
type fields struct {
	template  *huh.Select[int64]
	sender    *huh.Input
	fromEmail *huh.Input
	recipient *huh.Input
	subject   *huh.Input
	body      *huh.Text
}

type draftLoadedMsg struct {
	draft *model.Draft
	err   error
}

type draftSavedMsg struct {
	draft model.Draft
	err   error
}

type autosaveMsg struct{ seq int }

type sentMsg struct {
	recipient string
	err       error
}

// Model is the Bubble Tea model for the compose screen.
type Model struct {
	mailer    Mailer
	drafts    Drafts
	account   Account
	validator *compose.Validator
	keys      *keys.KeyMap

	form      *huh.Form
	fields    *fields
	fb        *formBindings
	applied   int64
	templates []model.Template

	draftID   string
	lastSaved compose.Message
	seq       int

	sending bool
	spinner spinner.Model
	err     error
	width   int
	height  int
}

// New creates the compose screen.
func New(mailer Mailer, drafts Drafts, account Account, v *compose.Validator, k *keys.KeyMap, width, height int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.StatusMsgStyle

	m := Model{
		mailer:    mailer,
		drafts:    drafts,
		account:   account,
		validator: v,
		keys:      k,
		fb:        &formBindings{},
		spinner:   s,
		width:     width,
		height:    height,
	}
	m.form = m.buildForm()
	return m
}

// Init restores the last draft.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), m.loadDraft())
}

// InputActive reports whether the screen is consuming typed characters.
// The form always is, except while a message is being sent.
func (m Model) InputActive() bool {
	return !m.sending
}

// SetTemplates replaces the templates offered by the template select.
func (m *Model) SetTemplates(templates []model.Template) tea.Cmd {
	m.templates = templates
	if m.sending {
		return nil
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// UseTemplate fills the form from t, keeping the recipient.
func (m *Model) UseTemplate(t model.Template) tea.Cmd {
	m.fb.set(m.fb.message().ApplyTemplate(t))
	if t.ID != nil {
		m.fb.templateID = *t.ID
		m.applied = *t.ID
		m.templates = withTemplate(m.templates, t)
	}
	m.form = m.buildForm()
	return tea.Batch(m.form.Init(), m.scheduleAutosave(), ui.Status(fmt.Sprintf("Using template %q", t.Name)))
}

// withTemplate returns templates with t added, or replacing the entry
// with the same ID. The select drops a bound value it has no option for.
func withTemplate(templates []model.Template, t model.Template) []model.Template {
	_, i, ok := lo.FindIndexOf(templates, func(x model.Template) bool {
		return x.ID != nil && *x.ID == *t.ID
	})
	out := slices.Clone(templates)
	if ok {
		out[i] = t
		return out
	}
	return append(out, t)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case draftLoadedMsg:
		if msg.err != nil {
			return m, ui.Failure(fmt.Errorf("restoring draft: %w", msg.err))
		}
		if msg.draft == nil {
			return m, nil
		}
		m.draftID = msg.draft.ID
		restored := compose.MessageFromDraft(*msg.draft)
		m.fb.set(restored)
		m.lastSaved = restored
		m.form = m.buildForm()
		return m, m.form.Init()

	case draftSavedMsg:
		if msg.err != nil {
			slog.Warn("saving draft", "error", msg.err)
			return m, nil
		}
		m.draftID = msg.draft.ID
		return m, nil

	case autosaveMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.saveDraftIfChanged()

	case sentMsg:
		m.sending = false
		if msg.err != nil {
			m.err = msg.err
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), ui.Failure(msg.err))
		}
		return m.reset(fmt.Sprintf("Mail sent to %s", msg.recipient))

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.sending {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, tea.Batch(
				m.saveDraftIfChanged(),
				func() tea.Msg { return CloseMsg{} },
			)
		case key.Matches(msg, m.keys.Save):
			m.lastSaved = m.fb.message()
			return m, tea.Batch(m.saveDraft(m.lastSaved), ui.Status("Draft saved"))
		case key.Matches(msg, m.keys.Clear):
			return m.reset("Draft discarded")
		}
	}

	if m.sending {
		return m, nil
	}
	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	cmds := []tea.Cmd{cmd}

	if m.form.State == huh.StateCompleted {
		return m.send()
	}

	if m.fb.templateID != m.applied && m.form.GetFocusedField() != m.fields.template {
		cmds = append(cmds, m.applySelectedTemplate())
	}

	if _, ok := msg.(tea.KeyMsg); ok && m.fb.message() != m.lastSaved {
		cmds = append(cmds, m.scheduleAutosave())
	}
	return m, tea.Batch(cmds...)
}

// applySelectedTemplate copies the chosen template into the form once the
// user has moved past the template select.
func (m *Model) applySelectedTemplate() tea.Cmd {
	m.applied = m.fb.templateID
	if m.fb.templateID == noTemplate {
		return nil
	}
	for _, t := range m.templates {
		if t.ID != nil && *t.ID == m.fb.templateID {
			m.fb.set(m.fb.message().ApplyTemplate(t))
			m.refreshFields()
			return ui.Status(fmt.Sprintf("Using template %q", t.Name))
		}
	}
	return nil
}

// refreshFields pushes the bindings back into the widgets.
func (m *Model) refreshFields() {
	m.fields.sender.Value(&m.fb.sender)
	m.fields.fromEmail.Value(&m.fb.fromEmail)
	m.fields.subject.Value(&m.fb.subject)
	m.fields.body.Value(&m.fb.body)
}

func (m Model) send() (Model, tea.Cmd) {
	req, err := m.validator.SendRequest(m.fb.message(), m.account.Current())
	if err != nil {
		m.err = err
		m.form = m.buildForm()
		cmds := []tea.Cmd{m.form.Init()}
		if errors.Is(err, backend.ErrIncompleteSettings) {
			cmds = append(cmds, ui.Failure(errors.New("SMTP settings are incomplete, configure them in Settings")))
		}
		return m, tea.Batch(cmds...)
	}

	m.err = nil
	m.sending = true
	mailer := m.mailer
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		err := mailer.SendMail(context.Background(), req)
		return sentMsg{recipient: req.Recipient, err: err}
	})
}

// reset empties the form and removes the stored draft.
func (m Model) reset(status string) (Model, tea.Cmd) {
	id := m.draftID
	m.draftID = ""
	m.err = nil
	*m.fb = formBindings{}
	m.applied = noTemplate
	m.lastSaved = compose.Message{}
	m.seq++
	m.form = m.buildForm()

	cmds := []tea.Cmd{m.form.Init(), ui.Status(status)}
	if id != "" {
		drafts := m.drafts
		cmds = append(cmds, func() tea.Msg {
			if err := drafts.DeleteDraft(context.Background(), id); err != nil {
				slog.Warn("deleting draft", "id", id, "error", err)
			}
			return nil
		})
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) scheduleAutosave() tea.Cmd {
	m.seq++
	seq := m.seq
	return tea.Tick(autosaveDelay, func(time.Time) tea.Msg {
		return autosaveMsg{seq: seq}
	})
}

func (m *Model) saveDraftIfChanged() tea.Cmd {
	current := m.fb.message()
	if current == m.lastSaved {
		return nil
	}
	m.lastSaved = current
	return m.saveDraft(current)
}

func (m Model) saveDraft(msg compose.Message) tea.Cmd {
	drafts := m.drafts
	d := msg.Draft(m.draftID)
	return func() tea.Msg {
		saved, err := drafts.SaveDraft(context.Background(), d)
		return draftSavedMsg{draft: saved, err: err}
	}
}

func (m Model) loadDraft() tea.Cmd {
	drafts := m.drafts
	return func() tea.Msg {
		d, err := drafts.GetDraft(context.Background())
		return draftLoadedMsg{draft: d, err: err}
	}
}

func (m *Model) buildForm() *huh.Form {
	options := []huh.Option[int64]{huh.NewOption("None", noTemplate)}
	for _, t := range m.templates {
		if t.ID != nil {
			options = append(options, huh.NewOption(t.Name, *t.ID))
		}
	}

	f := &fields{
		template: huh.NewSelect[int64]().
			Title("Template").
			Options(options...).
			Value(&m.fb.templateID),
		sender: huh.NewInput().
			Title("Sender").
			Placeholder("John Wine").
			Value(&m.fb.sender),
		fromEmail: huh.NewInput().
			Title("From (optional)").
			Placeholder("newsletter@example.com").
			Value(&m.fb.fromEmail),
		recipient: huh.NewInput().
			Title("Recipient").
			Placeholder("johnwine@example.com").
			Value(&m.fb.recipient),
		subject: huh.NewInput().
			Title("Subject").
			Placeholder("New event: BBQ in my garden!").
			Value(&m.fb.subject),
		body: huh.NewText().
			Title("Message").
			Placeholder("Enter message body here...").
			Lines(max(m.height-24, 5)).
			Value(&m.fb.body),
	}
	m.fields = f

	return huh.NewForm(
		huh.NewGroup(f.template, f.sender, f.fromEmail, f.recipient, f.subject, f.body),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

// View renders the compose screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Compose"))
	b.WriteString("\n\n")

	if m.sending {
		b.WriteString(m.spinner.View())
		b.WriteString(" Sending...")
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	if m.err != nil {
		b.WriteString(theme.ErrorStyle.Render(errorText(m.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.form.View())
	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render(
		"tab next field | enter on the last field sends | ctrl+s save draft | ctrl+l discard | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// errorText renders a send failure, one line per invalid field.
func errorText(err error) string {
	var ve compose.ValidationError
	if errors.As(err, &ve) {
		return strings.Join(ve.Messages(), "\n")
	}
	if errors.Is(err, backend.ErrIncompleteSettings) {
		return "SMTP settings are incomplete"
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return "Bad request: " + apiErr.Message
	}
	return "Request to API failed: " + err.Error()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

// Owns reports whether msg is a result of work this screen started.
func (m Model) Owns(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case draftLoadedMsg, draftSavedMsg, autosaveMsg, sentMsg:
		return true
	case spinner.TickMsg:
		return msg.ID == m.spinner.ID()
	}
	return false
}
