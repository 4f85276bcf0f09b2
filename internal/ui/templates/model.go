// Package templates is the template screen: a paginated table of message
// templates, a form to edit them and a read-only preview.
package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailfront/internal/compose"
	"github.com/nhle/mailfront/internal/keys"
	"github.com/nhle/mailfront/internal/model"
	"github.com/nhle/mailfront/internal/theme"
	"github.com/nhle/mailfront/internal/ui"
	"github.com/nhle/mailfront/internal/ui/pagedtable"
)

// Backend is the part of the mail API the template screen talks to.
type Backend interface {
	ListTemplates(ctx context.Context) ([]model.Template, error)
	SaveTemplate(ctx context.Context, t model.Template) (*model.Template, error)
	DeleteTemplate(ctx context.Context, id int64) error
}

// CloseMsg signals the parent to leave the template screen.
type CloseMsg struct{}

// UseTemplateMsg asks the parent to open the compose screen prefilled
// from Template.
type UseTemplateMsg struct {
	Template model.Template
}

// ChangedMsg is sent after the template list was reloaded so that other
// screens can refresh their copies.
type ChangedMsg struct {
	Templates []model.Template
}

type mode int

const (
	modeList mode = iota
	modeForm
	modePreview
	modeConfirmDelete
)

type formBindings struct {
	name      string
	sender    string
	fromEmail string
	subject   string
	body      string
	confirm   bool
}

type templatesLoadedMsg struct {
	templates []model.Template
	err       error
}

type templateSavedMsg struct {
	template *model.Template
	err      error
}

type templateDeletedMsg struct{ err error }

// Model is the Bubble Tea model for the template screen.
type Model struct {
	mode        mode
	backend     Backend
	validator   *compose.Validator
	keys        *keys.KeyMap
	templates   []model.Template
	table       pagedtable.Model
	editing     model.Template
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	formErr     error
	preview     viewport.Model
	width       int
	height      int
}

var columns = []table.Column{
	{Title: "Template", Width: 24},
	{Title: "Subject", Width: 28},
	{Title: "Date", Width: 18},
}

// New creates the template screen.
func New(b Backend, v *compose.Validator, k *keys.KeyMap, pageSize, width, height int) Model {
	m := Model{
		mode:      modeList,
		backend:   b,
		validator: v,
		keys:      k,
		table:     pagedtable.New(columns, model.PageSizes, pageSize),
		fb:        &formBindings{},
		preview:   viewport.New(width, height),
	}
	m.SetSize(width, height)
	return m
}

// Init loads templates from the backend.
func (m Model) Init() tea.Cmd {
	return m.loadTemplates()
}

// InputActive reports whether the screen is consuming typed characters.
func (m Model) InputActive() bool {
	return m.mode == modeForm || m.mode == modeConfirmDelete
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case templatesLoadedMsg:
		if msg.err != nil {
			return m, ui.Failure(fmt.Errorf("fetching templates: %w", msg.err))
		}
		m.setTemplates(msg.templates)
		templates := msg.templates
		return m, func() tea.Msg { return ChangedMsg{Templates: templates} }

	case templateSavedMsg:
		if msg.err != nil {
			m.formErr = msg.err
			return m, tea.Batch(m.reopenForm(), ui.Failure(msg.err))
		}
		m.mode = modeList
		text := "Template saved"
		if !m.editing.IsNew() {
			text = "Template updated"
		}
		return m, tea.Batch(m.loadTemplates(), ui.Status(text))

	case templateDeletedMsg:
		m.mode = modeList
		if msg.err != nil {
			return m, ui.Failure(fmt.Errorf("removing template: %w", msg.err))
		}
		return m, tea.Batch(m.loadTemplates(), ui.Status("Template removed"))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.mode != modeList && m.mode != modePreview && key.Matches(msg, m.keys.Back) {
		m.mode = modeList
		return m, nil
	}
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeForm:
		return m.updateForm(msg)
	case modePreview:
		return m.handlePreviewKey(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadTemplates()

	case key.Matches(msg, m.keys.New):
		return m.startForm(model.Template{})

	case key.Matches(msg, m.keys.Edit):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.startForm(t)

	case key.Matches(msg, m.keys.Select):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editing = t
		m.preview.SetContent(renderPreview(t, m.preview.Width))
		m.preview.GotoTop()
		m.mode = modePreview
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); !ok {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()

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

func (m Model) handlePreviewKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		return m.startForm(m.editing)
	case key.Matches(msg, m.keys.Select):
		t := m.editing
		m.mode = modeList
		return m, func() tea.Msg { return UseTemplateMsg{Template: t} }
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m Model) startForm(t model.Template) (Model, tea.Cmd) {
	m.editing = t
	m.formErr = nil
	m.fb.name = t.Name
	m.fb.sender = t.Sender
	m.fb.fromEmail = t.FromEmail
	m.fb.subject = t.Subject
	m.fb.body = t.Body
	return m, m.reopenForm()
}

// reopenForm rebuilds the form from the current bindings, keeping what the
// user typed.
func (m *Model) reopenForm() tea.Cmd {
	m.form = m.buildForm()
	m.mode = modeForm
	return m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Template name").
				Value(&m.fb.name).
				Validate(required("Template name")),
			huh.NewInput().
				Title("Sender").
				Description("Display name shown to recipients").
				Value(&m.fb.sender).
				Validate(required("Sender")),
			huh.NewInput().
				Title("From (optional)").
				Placeholder("newsletter@example.com").
				Value(&m.fb.fromEmail),
			huh.NewInput().
				Title("Subject").
				Value(&m.fb.subject).
				Validate(required("Subject")),
			huh.NewText().
				Title("Message Body").
				Lines(8).
				Value(&m.fb.body),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	name := ""
	if t, ok := m.selected(); ok {
		name = t.Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete template %q?", name)).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return m.submitForm()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) submitForm() (Model, tea.Cmd) {
	t := m.editing
	t.Name = m.fb.name
	t.Sender = m.fb.sender
	t.FromEmail = m.fb.fromEmail
	t.Subject = m.fb.subject
	t.Body = m.fb.body

	valid, err := m.validator.Template(t)
	if err != nil {
		m.formErr = err
		return m, m.reopenForm()
	}
	m.formErr = nil
	return m, m.saveTemplate(valid)
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		t, ok := m.selected()
		if m.fb.confirm && ok && t.ID != nil {
			return m, m.deleteTemplate(*t.ID)
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the template screen.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm()
	case modePreview:
		return m.viewPreview()
	case modeConfirmDelete:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Templates"))
	b.WriteString("\n\n")

	if len(m.templates) == 0 {
		b.WriteString(theme.MutedStyle.Italic(true).Render(
			"No templates yet. Press 'n' to create one.",
		))
	} else {
		b.WriteString(m.table.View())
	}

	b.WriteString("\n\n")
	b.WriteString(theme.MutedStyle.Render(
		"n new | enter preview | e edit | d delete | h/l page | s rows | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	title := "New Template"
	if !m.editing.IsNew() {
		title = "Edit Template"
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(title))
	b.WriteString("\n\n")
	if m.formErr != nil {
		b.WriteString(theme.ErrorStyle.Render(formError(m.formErr)))
		b.WriteString("\n\n")
	}
	b.WriteString(m.form.View())
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) viewPreview() string {
	hint := theme.MutedStyle.Render("enter use in compose | e edit | j/k scroll | esc back")
	return lipgloss.NewStyle().Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			theme.TitleStyle.Render(m.editing.Name),
			theme.BorderStyle.Render(m.preview.View()),
			hint,
		),
	)
}

// renderPreview lays a template out the way a recipient would see it.
func renderPreview(t model.Template, width int) string {
	from := t.Sender
	if t.FromEmail != "" {
		from = fmt.Sprintf("%s <%s>", t.Sender, t.FromEmail)
	}
	header := fmt.Sprintf("From:    %s\nSubject: %s", from, t.Subject)
	body := lipgloss.NewStyle().Width(max(width-2, 20)).Render(t.Body)
	return header + "\n\n" + body
}

// formError flattens a save failure into one line per problem.
func formError(err error) string {
	var ve compose.ValidationError
	if errors.As(err, &ve) {
		return strings.Join(ve.Messages(), "\n")
	}
	return err.Error()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(width - 4)
	m.preview.Width = max(width-8, 20)
	m.preview.Height = max(height-8, 5)
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func (m *Model) setTemplates(templates []model.Template) {
	m.templates = templates
	rows := make([]table.Row, len(templates))
	for i, t := range templates {
		date := "-"
		if !t.UpdatedAt.IsZero() {
			date = t.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		rows[i] = table.Row{t.Name, t.Subject, date}
	}
	m.table.SetRows(rows)
}

func (m Model) selected() (model.Template, bool) {
	idx, ok := m.table.Index()
	if !ok || idx >= len(m.templates) {
		return model.Template{}, false
	}
	return m.templates[idx], true
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func (m Model) loadTemplates() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		templates, err := b.ListTemplates(context.Background())
		return templatesLoadedMsg{templates: templates, err: err}
	}
}

func (m Model) saveTemplate(t model.Template) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		saved, err := b.SaveTemplate(context.Background(), t)
		return templateSavedMsg{template: saved, err: err}
	}
}

func (m Model) deleteTemplate(id int64) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		err := b.DeleteTemplate(context.Background(), id)
		return templateDeletedMsg{err: err}
	}
}

// Owns reports whether msg is a result of work this screen started.
func (m Model) Owns(msg tea.Msg) bool {
	switch msg.(type) {
	case templatesLoadedMsg, templateSavedMsg, templateDeletedMsg:
		return true
	}
	return false
}
