package config

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailfront/internal/backend"
	"github.com/nhle/mailfront/internal/compose"
	"github.com/nhle/mailfront/internal/keys"
	"github.com/nhle/mailfront/internal/model"
	"github.com/nhle/mailfront/internal/settings"
	"github.com/nhle/mailfront/internal/ui"
)

type fakeService struct {
	current   model.Settings
	patches   []settings.Patch
	providers []string
	err       error
}

func (f *fakeService) Current() model.Settings { return f.current }

func (f *fakeService) Update(_ context.Context, p settings.Patch) (model.Settings, error) {
	if f.err != nil {
		return f.current, f.err
	}
	f.patches = append(f.patches, p)
	if p.User != nil {
		f.current.User = *p.User
	}
	if p.SMTPPort != nil {
		f.current.SMTP.Port = *p.SMTPPort
	}
	return f.current, nil
}

func (f *fakeService) ApplyProvider(_ context.Context, key string) (model.Settings, error) {
	f.providers = append(f.providers, key)
	return f.current, nil
}

type fakeTester struct {
	smtpErr error
	imapErr error
	smtp    int
	imap    int
}

func (f *fakeTester) TestSMTP(context.Context, model.Settings) error {
	f.smtp++
	return f.smtpErr
}

func (f *fakeTester) TestIMAP(context.Context, model.Settings) error {
	f.imap++
	return f.imapErr
}

func newModel(t *testing.T, svc *fakeService, tester *fakeTester) *Model {
	t.Helper()
	v, err := compose.NewValidator()
	require.NoError(t, err)
	return New(svc, tester, v, keys.DefaultKeyMap(), 100, 40)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func messages(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		if c != nil {
			out = append(out, c())
		}
	}
	return out
}

func find[T tea.Msg](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if found, ok := msg.(T); ok {
			return found
		}
	}
	var zero T
	t.Fatalf("no %T produced", zero)
	return zero
}

func TestSummaryMasksPassword(t *testing.T) {
	svc := &fakeService{current: model.Settings{
		User: "me@x.com", Password: "hunter2",
		SMTP: model.ServerSettings{Server: "smtp.x.com", Port: "587", TLS: true},
	}}
	m := newModel(t, svc, &fakeTester{})

	view := m.View()

	assert.Contains(t, view, "me@x.com")
	assert.Contains(t, view, "smtp.x.com")
	assert.NotContains(t, view, "hunter2")
	assert.Contains(t, view, "IMAP settings are incomplete")
	assert.NotContains(t, view, "SMTP settings are incomplete")
}

func TestEditAndSave(t *testing.T) {
	svc := &fakeService{current: model.Settings{User: "old@x.com"}}
	m := newModel(t, svc, &fakeTester{})

	m, _ = m.Update(runes("e"))
	require.Equal(t, ModeForm, m.mode)
	assert.True(t, m.InputActive())
	assert.Equal(t, "old@x.com", m.formUser)

	m.formUser = "new@x.com"
	m.formSMTPPort = "465"
	m.form.State = huh.StateCompleted
	m, cmd := m.updateForm(nil)
	require.NotNil(t, cmd)

	m, cmd = m.Update(cmd())
	assert.Equal(t, ModeSummary, m.mode)
	msgs := messages(cmd)
	assert.Equal(t, "Settings saved", find[ui.StatusMsg](t, msgs).Text)
	saved := find[SettingsSavedMsg](t, msgs)
	assert.Equal(t, "new@x.com", saved.Settings.User)

	require.Len(t, svc.patches, 1)
	assert.Equal(t, "465", *svc.patches[0].SMTPPort)
}

func TestInvalidPortReopensForm(t *testing.T) {
	svc := &fakeService{}
	m := newModel(t, svc, &fakeTester{})
	m, _ = m.Update(runes("e"))

	m.formIMAPPort = "99999"
	m.form.State = huh.StateCompleted
	m, _ = m.updateForm(nil)

	assert.Equal(t, ModeForm, m.mode)
	assert.True(t, compose.IsValidationError(m.formErr))
	assert.Equal(t, "99999", m.formIMAPPort)
	assert.Empty(t, svc.patches)
}

func TestSaveFailureReported(t *testing.T) {
	svc := &fakeService{err: errors.New("disk full")}
	m := newModel(t, svc, &fakeTester{})
	m, _ = m.Update(runes("e"))

	m.form.State = huh.StateCompleted
	m, cmd := m.updateForm(nil)
	m, cmd = m.Update(cmd())

	assert.Equal(t, ModeSummary, m.mode)
	assert.ErrorContains(t, cmd().(ui.StatusMsg).Err, "disk full")
}

func TestEscLeavesForm(t *testing.T) {
	m := newModel(t, &fakeService{}, &fakeTester{})
	m, _ = m.Update(runes("e"))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeSummary, m.mode)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_, ok := cmd().(ConfigDoneMsg)
	assert.True(t, ok)
}

func TestApplyProvider(t *testing.T) {
	svc := &fakeService{}
	m := newModel(t, svc, &fakeTester{})

	m, _ = m.Update(runes("p"))
	require.Equal(t, ModeSelectProvider, m.mode)

	m.formProvider = "gmail"
	m.providerForm.State = huh.StateCompleted
	m, cmd := m.updateProviderForm(nil)
	m, cmd = m.Update(cmd())

	assert.Equal(t, []string{"gmail"}, svc.providers)
	assert.Equal(t, "Applied Gmail settings", find[ui.StatusMsg](t, messages(cmd)).Text)
	assert.Equal(t, ModeSummary, m.mode)
}

func TestSMTPTestSuccess(t *testing.T) {
	tester := &fakeTester{}
	m := newModel(t, &fakeService{}, tester)

	m, cmd := m.Update(runes("t"))
	require.Equal(t, ModeValidating, m.mode)
	assert.Contains(t, m.View(), "Testing SMTP connection")

	m, _ = m.Update(find[ValidateResultMsg](t, messages(cmd)))

	assert.Equal(t, 1, tester.smtp)
	assert.Equal(t, ModeValidateResult, m.mode)
	assert.Contains(t, m.View(), "SMTP connection successful")
}

func TestIMAPTestFailureAndRetry(t *testing.T) {
	tester := &fakeTester{imapErr: &backend.APIError{StatusCode: 400, Message: "LOGIN failed"}}
	m := newModel(t, &fakeService{}, tester)

	m, cmd := m.Update(runes("i"))
	m, _ = m.Update(find[ValidateResultMsg](t, messages(cmd)))

	view := m.View()
	assert.Contains(t, view, "IMAP connection failed")
	assert.Contains(t, view, "Bad request: LOGIN failed")

	m, cmd = m.Update(runes("r"))
	assert.Equal(t, ModeValidating, m.mode)
	find[ValidateResultMsg](t, messages(cmd))
	assert.Equal(t, 2, tester.imap)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeSummary, m.mode)
}

func TestCancelledTestIgnoresResult(t *testing.T) {
	m := newModel(t, &fakeService{}, &fakeTester{})

	m, cmd := m.Update(runes("t"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = m.Update(find[ValidateResultMsg](t, messages(cmd)))

	assert.Equal(t, ModeSummary, m.mode)
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, validatePort(""))
	assert.NoError(t, validatePort("587"))
	assert.Error(t, validatePort("58a"))
}
