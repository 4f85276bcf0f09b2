package help

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/mailfront/internal/keys"
)

func TestViewNamesScreen(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 120, 40)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	assert.NotContains(t, m.View(), "Keyboard Shortcuts |")

	m.SetScreen("Mailbox")
	assert.Contains(t, m.View(), "Keyboard Shortcuts | Mailbox")
}

func TestViewListsCommands(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 160, 40)

	view := m.View()

	assert.Contains(t, view, "Commands (:)")
	assert.Contains(t, view, "refresh")
	assert.Contains(t, view, "settings")
}
