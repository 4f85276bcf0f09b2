package campaigns

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailfront/internal/keys"
	"github.com/nhle/mailfront/internal/model"
	"github.com/nhle/mailfront/internal/recipients"
	"github.com/nhle/mailfront/internal/theme"
)

// editorSubmitMsg carries a campaign that passed validation.
type editorSubmitMsg struct {
	campaign model.Campaign
}

// editorCancelMsg is sent when the user leaves the editor without saving.
type editorCancelMsg struct{}

// importDoneMsg carries the outcome of a file import started by the
// editor with generation gen.
type importDoneMsg struct {
	gen  int
	name string
	text string
	err  error
}

type editorFocus int

const (
	focusName editorFocus = iota
	focusEmails
)

// editor is the campaign create/edit dialog. The recipient list and its
// statistics always come from state; the widgets only collect input.
type editor struct {
	state    recipients.Editor
	name     textinput.Model
	emails   textarea.Model
	focus    editorFocus
	picker   filepicker.Model
	picking  bool
	importer *recipients.Importer
	gen      int
	keys     *keys.KeyMap
	err      error
	info     string
	width    int
	height   int
}

// newEditor opens a dialog for c. The importer is shared by every editor
// of the screen so that reads never overlap; gen tells this dialog's
// import results apart from those of a closed one.
func newEditor(c model.Campaign, k *keys.KeyMap, im *recipients.Importer, gen, width, height int) editor {
	state := recipients.NewEditor(c)

	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "List name"
	name.CharLimit = 255
	name.SetValue(state.Name())
	name.Focus()

	emails := textarea.New()
	emails.Placeholder = "Enter email addresses (one per line, comma, or semicolon separated)"
	emails.ShowLineNumbers = false
	emails.CharLimit = 0
	emails.MaxHeight = 0
	emails.SetValue(joinAddresses(state.List()))
	emails.Blur()

	e := editor{
		state:    state,
		name:     name,
		emails:   emails,
		importer: im,
		gen:      gen,
		keys:     k,
	}
	e.setSize(width, height)
	return e
}

func (e editor) Update(msg tea.Msg) (editor, tea.Cmd) {
	if done, ok := msg.(importDoneMsg); ok {
		return e.handleImport(done), nil
	}
	if e.picking {
		return e.updatePicker(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, e.keys.Back):
			return e, func() tea.Msg { return editorCancelMsg{} }

		case key.Matches(msg, e.keys.Save):
			c, err := e.state.Save()
			if err != nil {
				e.err = err
				e.info = ""
				return e, nil
			}
			e.err = nil
			return e, func() tea.Msg { return editorSubmitMsg{campaign: c} }

		case key.Matches(msg, e.keys.Clear):
			e.state = e.state.Clear()
			e.emails.Reset()
			e.err = nil
			return e, nil

		case key.Matches(msg, e.keys.Import):
			if e.importer.Busy() {
				e.err = recipients.ErrImportInProgress
				return e, nil
			}
			e.picking = true
			e.picker = newPicker(e.height)
			return e, e.picker.Init()

		case msg.String() == "tab", msg.String() == "shift+tab":
			return e.toggleFocus()
		}
	}

	var cmd tea.Cmd
	if e.focus == focusName {
		e.name, cmd = e.name.Update(msg)
		e.state = e.state.WithName(e.name.Value())
		return e, cmd
	}

	before := e.emails.Value()
	e.emails, cmd = e.emails.Update(msg)
	if after := e.emails.Value(); after != before {
		e.state = e.state.WithText(after)
	}
	return e, cmd
}

func (e editor) toggleFocus() (editor, tea.Cmd) {
	if e.focus == focusName {
		e.focus = focusEmails
		e.name.Blur()
		return e, e.emails.Focus()
	}
	e.focus = focusName
	e.emails.Blur()
	// Show the deduplicated list once the user is done typing.
	e.emails.SetValue(joinAddresses(e.state.List()))
	return e, e.name.Focus()
}

func (e editor) updatePicker(msg tea.Msg) (editor, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, e.keys.Back) {
		e.picking = false
		return e, e.importFile(nil)
	}

	var cmd tea.Cmd
	e.picker, cmd = e.picker.Update(msg)

	if ok, path := e.picker.DidSelectFile(msg); ok {
		e.picking = false
		return e, e.importFile(recipients.LocalFile(path))
	}
	if ok, path := e.picker.DidSelectDisabledFile(msg); ok {
		e.err = &recipients.FileReadError{
			Name: recipients.LocalFile(path).Name(),
			Err:  recipients.ErrUnsupportedFile,
		}
		return e, cmd
	}
	return e, cmd
}

// importFile reads h off the UI goroutine. A nil h records a cancelled
// selection.
func (e editor) importFile(h recipients.FileHandle) tea.Cmd {
	im, gen := e.importer, e.gen
	return func() tea.Msg {
		name := ""
		if h != nil {
			name = h.Name()
		}
		text, err := im.Import(context.Background(), h)
		return importDoneMsg{gen: gen, name: name, text: text, err: err}
	}
}

func (e editor) handleImport(msg importDoneMsg) editor {
	switch {
	case errors.Is(msg.err, recipients.ErrCancelled):
		e.info = "Import cancelled"
		return e
	case msg.err != nil:
		e.err = msg.err
		e.info = ""
		return e
	}

	e.state = e.state.WithText(msg.text)
	e.emails.SetValue(joinAddresses(e.state.List()))
	e.err = nil
	e.info = fmt.Sprintf("Imported %s", msg.name)
	return e
}

func (e editor) View() string {
	if e.picking {
		return e.viewPicker()
	}

	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render(e.state.Title()))
	b.WriteString("\n\n")

	b.WriteString(fieldLabel("List Name", e.focus == focusName))
	b.WriteString("\n")
	b.WriteString(e.name.View())
	b.WriteString("\n\n")

	b.WriteString(fieldLabel("Emails", e.focus == focusEmails))
	b.WriteString("  ")
	b.WriteString(statsLine(e.state.Stats()))
	b.WriteString("\n")
	b.WriteString(theme.BorderStyle.Render(e.emails.View()))
	b.WriteString("\n")

	if e.err != nil {
		b.WriteString(theme.ErrorStyle.Render(errorText(e.err)))
		b.WriteString("\n")
	} else if e.info != "" {
		b.WriteString(theme.StatusMsgStyle.Render(e.info))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render(
		"tab switch field | ctrl+s save | ctrl+l clear | ctrl+o import .txt/.csv | esc cancel",
	))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (e editor) viewPicker() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Import from File"))
	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render(e.picker.CurrentDirectory))
	b.WriteString("\n\n")
	b.WriteString(e.picker.View())
	if e.err != nil {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render(errorText(e.err)))
	}
	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render(
		"enter select | h/← up a directory | esc cancel",
	))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (e *editor) setSize(width, height int) {
	e.width = width
	e.height = height

	w := min(max(width-8, 30), 100)
	e.name.Width = w
	e.emails.SetWidth(w)
	e.emails.SetHeight(max(height-16, 4))
	if e.picking {
		e.picker.SetHeight(pickerHeight(height))
	}
}

func newPicker(height int) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = recipients.AcceptedExtensions
	fp.AutoHeight = false
	fp.SetHeight(pickerHeight(height))
	fp.ShowPermissions = false
	// esc cancels the import instead of leaving the directory.
	fp.KeyMap.Back = key.NewBinding(
		key.WithKeys("h", "backspace", "left"),
		key.WithHelp("h", "back"),
	)
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}
	return fp
}

func pickerHeight(height int) int {
	return max(height-10, 5)
}

func fieldLabel(label string, focused bool) string {
	if focused {
		return theme.SelectedItemStyle.Render(label)
	}
	return theme.ListItemStyle.Render(label)
}

// statsLine renders the live recipient statistics shown above the text
// area. The duplicate count is only shown when something was dropped.
func statsLine(s recipients.Stats) string {
	line := fmt.Sprintf("Unique Emails: %d", s.Unique)
	if s.Duplicates > 0 {
		line += fmt.Sprintf(" (%d duplicates removed)", s.Duplicates)
	}
	return line
}

func joinAddresses(l recipients.List) string {
	return strings.Join(l.Addresses, "\n")
}

// errorText maps editor failures to the messages shown under the form.
func errorText(err error) string {
	var readErr *recipients.FileReadError
	switch {
	case errors.Is(err, recipients.ErrMissingName):
		return "List name is required"
	case errors.Is(err, recipients.ErrEmptyRecipientList):
		return "At least one email is required"
	case errors.As(err, &readErr):
		return "Failed to import file: " + readErr.Err.Error()
	default:
		var invalid *recipients.InvalidAddressError
		if errors.As(err, &invalid) {
			return "Invalid emails: " + strings.Join(invalid.Addresses, ", ")
		}
		return err.Error()
	}
}
