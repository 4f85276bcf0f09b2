package inbox

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailfront/internal/backend"
	"github.com/nhle/mailfront/internal/keys"
	"github.com/nhle/mailfront/internal/model"
	"github.com/nhle/mailfront/internal/ui"
)

type fakeFetcher struct {
	entries []backend.MailboxEntry
	err     error
	calls   int
}

func (f *fakeFetcher) FetchMailbox(context.Context, model.Settings) ([]backend.MailboxEntry, error) {
	f.calls++
	return f.entries, f.err
}

type fakeAccount struct{ settings model.Settings }

func (f fakeAccount) Current() model.Settings { return f.settings }

func imapSettings() model.Settings {
	return model.Settings{
		User:     "me@x.com",
		Password: "secret",
		IMAP:     model.ServerSettings{Server: "imap.x.com", Port: "993", TLS: true},
	}
}

func entries() []backend.MailboxEntry {
	return []backend.MailboxEntry{
		{ID: "1", Subject: "Invoice", Sender: "Billing <billing@shop.com>", Date: "Mon, 02 Mar 2026 09:00:00 +0000", Body: "Amount due"},
		{ID: "2", Subject: "=?UTF-8?Q?Caf=C3=A9?=", Sender: "alice@x.com", Date: "Wed, 04 Mar 2026 09:00:00 +0000", Body: "Coffee?"},
		{ID: "3", Subject: "", Sender: "", Date: "Tue, 03 Mar 2026 09:00:00 +0000", Body: "hello"},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, f *fakeFetcher) Model {
	t.Helper()
	now = func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	m := New(f, fakeAccount{settings: imapSettings()}, keys.DefaultKeyMap(), 5, 120, 40)
	m, _ = m.Update(mailboxLoadedMsg{entries: f.entries})
	return m
}

func subjects(m Model) []string {
	out := make([]string, len(m.visible))
	for i, msg := range m.visible {
		out[i] = msg.Subject
	}
	return out
}

func TestRefreshRequiresIMAPSettings(t *testing.T) {
	f := &fakeFetcher{}
	m := New(f, fakeAccount{}, keys.DefaultKeyMap(), 5, 120, 40)

	cmd := m.Refresh()

	status := cmd().(ui.StatusMsg)
	assert.ErrorIs(t, status.Err, ErrMissingIMAP)
	assert.Zero(t, f.calls)
	assert.False(t, m.loading)
}

func TestRefreshFetches(t *testing.T) {
	f := &fakeFetcher{entries: entries()}
	m := New(f, fakeAccount{settings: imapSettings()}, keys.DefaultKeyMap(), 5, 120, 40)

	cmd := m.Refresh()
	require.True(t, m.loading)
	assert.Contains(t, m.View(), "Loading messages")

	batch := cmd().(tea.BatchMsg)
	var got mailboxLoadedMsg
	for _, c := range batch {
		if msg, ok := c().(mailboxLoadedMsg); ok {
			got = msg
		}
	}
	assert.Equal(t, 1, f.calls)
	assert.Len(t, got.entries, 3)
}

func TestLoadedDecodesAndSortsNewestFirst(t *testing.T) {
	m := loaded(t, &fakeFetcher{entries: entries()})

	assert.False(t, m.loading)
	assert.Equal(t, []string{"Café", "(No subject)", "Invoice"}, subjects(m))
	assert.Equal(t, "Billing", m.visible[2].From)
	assert.Equal(t, "Unknown", m.visible[1].From)
}

func TestLoadErrorReported(t *testing.T) {
	m := New(&fakeFetcher{}, fakeAccount{settings: imapSettings()}, keys.DefaultKeyMap(), 5, 120, 40)

	_, cmd := m.Update(mailboxLoadedMsg{err: errors.New("fetching mailbox: login failed")})
	status := cmd().(ui.StatusMsg)
	assert.ErrorContains(t, status.Err, "login failed")

	_, cmd = m.Update(mailboxLoadedMsg{err: backend.ErrIncompleteSettings})
	assert.ErrorIs(t, cmd().(ui.StatusMsg).Err, ErrMissingIMAP)
}

func TestToggleSortOrder(t *testing.T) {
	m := loaded(t, &fakeFetcher{entries: entries()})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.Equal(t, []string{"Invoice", "(No subject)", "Café"}, subjects(m))
	assert.Equal(t, "Sorted oldest first", cmd().(ui.StatusMsg).Text)
}

func TestSearchFiltersLive(t *testing.T) {
	m := loaded(t, &fakeFetcher{entries: entries()})

	m, _ = m.Update(runes("/"))
	require.True(t, m.InputActive())
	m, _ = m.Update(runes("BILL"))

	assert.Equal(t, []string{"Invoice"}, subjects(m))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.InputActive())
	assert.Equal(t, "BILL", m.list.Query())

	// esc in the list clears an active search before leaving.
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Len(t, m.visible, 3)
}

func TestSearchEscClears(t *testing.T) {
	m := loaded(t, &fakeFetcher{entries: entries()})

	m, _ = m.Update(runes("/"))
	m, _ = m.Update(runes("coffee"))
	require.Len(t, m.visible, 1)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, m.visible, 3)
	assert.Empty(t, m.search.Value())
}

func TestSelection(t *testing.T) {
	m := loaded(t, &fakeFetcher{entries: entries()})

	m, _ = m.Update(runes(" "))
	assert.Equal(t, []string{"2"}, m.list.Selected())
	assert.Contains(t, m.View(), "1 selected")

	m, _ = m.Update(runes("a"))
	assert.True(t, m.list.AllSelected())

	m, _ = m.Update(runes("a"))
	assert.Empty(t, m.list.Selected())
}

func TestOpenMarksRead(t *testing.T) {
	m := loaded(t, &fakeFetcher{entries: entries()})
	require.False(t, m.visible[0].Read)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, modeRead, m.mode)
	assert.True(t, m.visible[0].Read)
	view := m.View()
	assert.Contains(t, view, "Coffee?")
	assert.Contains(t, view, "alice@x.com")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeList, m.mode)
}

func TestBackCloses(t *testing.T) {
	m := loaded(t, &fakeFetcher{entries: entries()})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	_, ok := cmd().(CloseMsg)
	assert.True(t, ok)
}
