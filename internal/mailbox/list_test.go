package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/mailfront/internal/model"
)

func sampleMessages() []model.Message {
	return []model.Message{
		{ID: "1", Subject: "Invoice", From: "Billing", Date: now.Add(-2 * time.Hour), Body: "due"},
		{ID: "2", Subject: "Lunch?", From: "Ann", Date: now.Add(-1 * time.Hour), Body: "noon"},
		{ID: "3", Subject: "Report", From: "Bob", Date: now.Add(-3 * time.Hour), Body: "see invoice"},
	}
}

func ids(msgs []model.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestListSort(t *testing.T) {
	l := NewList(sampleMessages())
	assert.Equal(t, []string{"2", "1", "3"}, ids(l.Visible()))

	l.ToggleOrder()
	assert.Equal(t, OldestFirst, l.Order())
	assert.Equal(t, []string{"3", "1", "2"}, ids(l.Visible()))
}

func TestListSearch(t *testing.T) {
	l := NewList(sampleMessages())

	l.SetQuery("INVOICE")
	assert.Equal(t, []string{"1", "3"}, ids(l.Visible()))

	l.SetQuery("ann")
	assert.Equal(t, []string{"2"}, ids(l.Visible()))

	l.SetQuery("nothing")
	assert.Empty(t, l.Visible())

	l.SetQuery("  ")
	assert.Len(t, l.Visible(), 3)
	assert.Equal(t, 3, l.Len())
}

func TestListSelection(t *testing.T) {
	l := NewList(sampleMessages())

	l.Toggle("3")
	l.Toggle("1")
	l.Toggle("missing")
	assert.Equal(t, []string{"1", "3"}, l.Selected())
	assert.False(t, l.AllSelected())

	l.Toggle("3")
	assert.Equal(t, []string{"1"}, l.Selected())

	l.ToggleAll()
	assert.True(t, l.AllSelected())
	assert.Len(t, l.Selected(), 3)

	l.ToggleAll()
	assert.Empty(t, l.Selected())
}

func TestListEmptySelection(t *testing.T) {
	l := NewList(nil)
	assert.False(t, l.AllSelected())
	l.ToggleAll()
	assert.Empty(t, l.Selected())
}

func TestListMarkRead(t *testing.T) {
	l := NewList(sampleMessages())
	l.MarkRead("2")
	for _, m := range l.Visible() {
		assert.Equal(t, m.ID == "2", m.Read)
	}
}
