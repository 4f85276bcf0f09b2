package campaigns

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailfront/internal/keys"
	"github.com/nhle/mailfront/internal/model"
	"github.com/nhle/mailfront/internal/recipients"
	"github.com/nhle/mailfront/internal/ui"
)

type fakeBackend struct {
	campaigns []model.Campaign
	listErr   error
	saved     []model.Campaign
	deleted   []int64
}

func (f *fakeBackend) ListCampaigns(context.Context) ([]model.Campaign, error) {
	return f.campaigns, f.listErr
}

func (f *fakeBackend) SaveCampaign(_ context.Context, c model.Campaign) (*model.Campaign, error) {
	f.saved = append(f.saved, c)
	if c.ID == nil {
		id := int64(len(f.saved))
		c.ID = &id
	}
	return &c, nil
}

func (f *fakeBackend) DeleteCampaign(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCache struct {
	campaigns []model.Campaign
	replaced  int
}

func (f *fakeCache) ReplaceCampaigns(_ context.Context, c []model.Campaign) error {
	f.campaigns = c
	f.replaced++
	return nil
}

func (f *fakeCache) GetCampaigns(context.Context) ([]model.Campaign, error) {
	return f.campaigns, nil
}

func id(n int64) *int64 { return &n }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleCampaigns(n int) []model.Campaign {
	out := make([]model.Campaign, n)
	for i := range out {
		out[i] = model.Campaign{
			ID:     id(int64(i + 1)),
			Name:   "list",
			Emails: []string{"a@x.com"},
		}
	}
	return out
}

func newModel(b *fakeBackend, c *fakeCache) Model {
	return New(b, c, keys.DefaultKeyMap(), 5, 100, 40)
}

func TestLoadCampaignsRefreshesCache(t *testing.T) {
	b := &fakeBackend{campaigns: sampleCampaigns(7)}
	c := &fakeCache{}
	m := newModel(b, c)

	m, _ = m.Update(m.loadCampaigns()())

	assert.Len(t, m.campaigns, 7)
	assert.False(t, m.offline)
	assert.Equal(t, 1, c.replaced)
	assert.Equal(t, "1-5 of 7", m.table.Label())
}

func TestLoadCampaignsFallsBackToCache(t *testing.T) {
	b := &fakeBackend{listErr: errors.New("connection refused")}
	c := &fakeCache{campaigns: sampleCampaigns(2)}
	m := newModel(b, c)

	m, cmd := m.Update(m.loadCampaigns()())

	assert.True(t, m.offline)
	assert.Len(t, m.campaigns, 2)
	require.NotNil(t, cmd)
	status, ok := cmd().(ui.StatusMsg)
	require.True(t, ok)
	assert.ErrorContains(t, status.Err, "connection refused")
}

func TestLoadCampaignsErrorWithoutCache(t *testing.T) {
	b := &fakeBackend{listErr: errors.New("boom")}
	m := newModel(b, &fakeCache{})

	m, cmd := m.Update(m.loadCampaigns()())

	assert.Empty(t, m.campaigns)
	status := cmd().(ui.StatusMsg)
	assert.ErrorContains(t, status.Err, "fetching campaigns")
}

func TestNewCampaignFlow(t *testing.T) {
	now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	b := &fakeBackend{}
	m := newModel(b, &fakeCache{})

	m, _ = m.Update(runes("n"))
	require.Equal(t, modeEditor, m.mode)
	assert.True(t, m.InputActive())

	m, _ = m.Update(runes("Newsletter"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(runes("B@x.com\na@x.com, b@x.com"))

	assert.Equal(t, recipients.Stats{Total: 3, Unique: 2, Duplicates: 1}, m.editor.state.Stats())
	assert.Contains(t, m.View(), "Unique Emails: 2 (1 duplicates removed)")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	submit, ok := cmd().(editorSubmitMsg)
	require.True(t, ok)
	assert.Equal(t, []string{"b@x.com", "a@x.com"}, submit.campaign.Emails)

	m, cmd = m.Update(submit)
	assert.True(t, m.saving)
	saved := findMsg[campaignSavedMsg](t, cmd)
	m, _ = m.Update(saved)

	assert.Equal(t, modeList, m.mode)
	require.Len(t, b.saved, 1)
	assert.Equal(t, "Newsletter", b.saved[0].Name)
	assert.Nil(t, b.saved[0].ID)
}

func TestSaveValidationKeepsEditorOpen(t *testing.T) {
	m := newModel(&fakeBackend{}, &fakeCache{})
	m, _ = m.Update(runes("n"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(runes("not-an-email"))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.Equal(t, modeEditor, m.mode)
	assert.ErrorIs(t, m.editor.err, recipients.ErrMissingName)
	assert.Contains(t, m.View(), "List name is required")
}

func TestEditExistingCampaign(t *testing.T) {
	b := &fakeBackend{campaigns: []model.Campaign{{
		ID: id(9), Name: "VIP", Emails: []string{"a@x.com", "A@x.com"},
	}}}
	m := newModel(b, &fakeCache{})
	m, _ = m.Update(m.loadCampaigns()())

	m, _ = m.Update(runes("e"))
	require.Equal(t, modeEditor, m.mode)
	assert.Contains(t, m.View(), "Edit Target List")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	submit := cmd().(editorSubmitMsg)
	require.NotNil(t, submit.campaign.ID)
	assert.Equal(t, int64(9), *submit.campaign.ID)
	assert.Equal(t, []string{"a@x.com"}, submit.campaign.Emails)
}

func TestClearEmails(t *testing.T) {
	b := &fakeBackend{campaigns: sampleCampaigns(1)}
	m := newModel(b, &fakeCache{})
	m, _ = m.Update(m.loadCampaigns()())
	m, _ = m.Update(runes("e"))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, recipients.Stats{}, m.editor.state.Stats())
	assert.Empty(t, m.editor.emails.Value())
}

func TestImportReplacesList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.csv")
	require.NoError(t, os.WriteFile(path, []byte("x@y.com;X@y.com\nz@y.com"), 0o600))

	m := newModel(&fakeBackend{}, &fakeCache{})
	m, _ = m.Update(runes("n"))

	m, _ = m.Update(m.editor.importFile(recipients.LocalFile(path))())

	assert.Equal(t, []string{"x@y.com", "z@y.com"}, m.editor.state.List().Addresses)
	assert.Equal(t, "x@y.com\nz@y.com", m.editor.emails.Value())
	assert.Equal(t, "Imported list.csv", m.editor.info)
}

func TestImportFailureKeepsList(t *testing.T) {
	m := newModel(&fakeBackend{}, &fakeCache{})
	m, _ = m.Update(runes("n"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(runes("keep@x.com"))

	missing := recipients.LocalFile(filepath.Join(t.TempDir(), "missing.txt"))
	m, _ = m.Update(m.editor.importFile(missing)())

	assert.True(t, recipients.IsFileReadError(m.editor.err))
	assert.Equal(t, []string{"keep@x.com"}, m.editor.state.List().Addresses)
	assert.Contains(t, m.View(), "Failed to import file")
}

func TestImportCancelKeepsList(t *testing.T) {
	m := newModel(&fakeBackend{}, &fakeCache{})
	m, _ = m.Update(runes("n"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(runes("keep@x.com"))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	require.True(t, m.editor.picking)
	require.NotNil(t, cmd)

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.editor.picking)
	m, _ = m.Update(cmd())

	assert.NoError(t, m.editor.err)
	assert.Equal(t, "Import cancelled", m.editor.info)
	assert.Equal(t, []string{"keep@x.com"}, m.editor.state.List().Addresses)
}

// slowFile hands out its content only after release is closed.
type slowFile struct {
	content string
	release chan struct{}
}

func (f *slowFile) Name() string { return "old.txt" }

func (f *slowFile) Open() (io.ReadCloser, error) {
	<-f.release
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func TestNewThenResize(t *testing.T) {
	m := New(&fakeBackend{}, &fakeCache{}, keys.DefaultKeyMap(), 5, 100, 40)

	assert.NotPanics(t, func() { m.SetSize(120, 50) })

	m, _ = m.Update(runes("n"))
	m.SetSize(80, 30)
	assert.Equal(t, 80, m.editor.width)
}

func TestImportFromClosedEditorIsDropped(t *testing.T) {
	m := newModel(&fakeBackend{}, &fakeCache{})
	m, _ = m.Update(runes("n"))

	file := &slowFile{content: "stale@old.com", release: make(chan struct{})}
	done := make(chan tea.Msg, 1)
	read := m.editor.importFile(file)
	go func() { done <- read() }()
	require.Eventually(t, m.importer.Busy, time.Second, 5*time.Millisecond)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = m.Update(cmd())
	require.Equal(t, modeList, m.mode)

	m, _ = m.Update(runes("n"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(runes("fresh@new.com"))

	// The new dialog may not start a read while the old one is running.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.False(t, m.editor.picking)
	assert.ErrorIs(t, m.editor.err, recipients.ErrImportInProgress)

	close(file.release)
	m, _ = m.Update(<-done)

	assert.Equal(t, []string{"fresh@new.com"}, m.editor.state.List().Addresses)
	assert.Equal(t, "fresh@new.com", m.editor.emails.Value())
	assert.False(t, m.importer.Busy())
}

func TestDeleteConfirmed(t *testing.T) {
	b := &fakeBackend{campaigns: sampleCampaigns(3)}
	m := newModel(b, &fakeCache{})
	m, _ = m.Update(m.loadCampaigns()())

	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("d"))
	require.Equal(t, modeConfirmDelete, m.mode)

	m.fb.confirm = true
	m.confirmForm.State = huh.StateCompleted
	_, cmd := m.updateConfirm(nil)
	require.NotNil(t, cmd)
	deleted := cmd().(campaignDeletedMsg)
	assert.NoError(t, deleted.err)
	assert.Equal(t, []int64{2}, b.deleted)
}

func TestPaging(t *testing.T) {
	b := &fakeBackend{campaigns: sampleCampaigns(12)}
	m := newModel(b, &fakeCache{})
	m, _ = m.Update(m.loadCampaigns()())

	m, _ = m.Update(runes("l"))
	assert.Equal(t, "6-10 of 12", m.table.Label())

	c, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, int64(6), *c.ID)

	m, cmd := m.Update(runes("s"))
	assert.Equal(t, 10, m.table.PageSize())
	assert.Equal(t, "Showing 10 rows per page", cmd().(ui.StatusMsg).Text)
}

func TestStatsLine(t *testing.T) {
	assert.Equal(t, "Unique Emails: 0", statsLine(recipients.Stats{}))
	assert.Equal(t, "Unique Emails: 2 (1 duplicates removed)",
		statsLine(recipients.Stats{Total: 3, Unique: 2, Duplicates: 1}))
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{recipients.ErrMissingName, "List name is required"},
		{recipients.ErrEmptyRecipientList, "At least one email is required"},
		{&recipients.InvalidAddressError{Addresses: []string{"a", "b"}}, "Invalid emails: a, b"},
		{&recipients.FileReadError{Name: "x.pdf", Err: recipients.ErrUnsupportedFile}, "Failed to import file: only .txt and .csv files can be imported"},
		{errors.New("other"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorText(tt.err))
	}
}

// findMsg runs cmd, descending into batches, and returns the first
// message of type T.
func findMsg[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	var zero T
	if cmd == nil {
		t.Fatalf("no command")
		return zero
	}
	switch msg := cmd().(type) {
	case T:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if found, ok := c().(T); ok {
				return found
			}
		}
	}
	t.Fatalf("no %T produced", zero)
	return zero
}
