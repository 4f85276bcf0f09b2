package mailbox

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/nhle/mailfront/internal/model"
)

// SortOrder is the date order of the inbox list.
type SortOrder int

const (
	NewestFirst SortOrder = iota
	OldestFirst
)

func (o SortOrder) String() string {
	if o == OldestFirst {
		return "oldest first"
	}
	return "newest first"
}

// List is the inbox state behind the mailbox screen.
type List struct {
	messages []model.Message
	query    string
	order    SortOrder
	selected map[string]bool
}

// NewList returns a list over msgs, newest first, with nothing selected.
func NewList(msgs []model.Message) *List {
	return &List{
		messages: slices.Clone(msgs),
		selected: make(map[string]bool),
	}
}

// Len is the total number of messages, ignoring the search filter.
func (l *List) Len() int { return len(l.messages) }

func (l *List) Query() string { return l.query }

func (l *List) Order() SortOrder { return l.order }

// SetQuery filters the visible messages by a case-insensitive match on
// subject, sender or body.
func (l *List) SetQuery(q string) {
	l.query = strings.TrimSpace(q)
}

// ToggleOrder flips between newest-first and oldest-first.
func (l *List) ToggleOrder() {
	if l.order == NewestFirst {
		l.order = OldestFirst
	} else {
		l.order = NewestFirst
	}
}

// Visible returns the messages that match the query in the current sort
// order.
func (l *List) Visible() []model.Message {
	q := strings.ToLower(l.query)
	visible := lo.Filter(l.messages, func(m model.Message, _ int) bool {
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(m.Subject), q) ||
			strings.Contains(strings.ToLower(m.From), q) ||
			strings.Contains(strings.ToLower(m.Body), q)
	})

	slices.SortStableFunc(visible, func(a, b model.Message) int {
		c := a.Date.Compare(b.Date)
		if l.order == NewestFirst {
			return -c
		}
		return c
	})
	return visible
}

// Toggle flips the selection of the message with the given ID.
func (l *List) Toggle(id string) {
	if l.selected[id] {
		delete(l.selected, id)
		return
	}
	if lo.ContainsBy(l.messages, func(m model.Message) bool { return m.ID == id }) {
		l.selected[id] = true
	}
}

// ToggleAll selects every message, or clears the selection when every
// message is already selected.
func (l *List) ToggleAll() {
	if l.AllSelected() {
		clear(l.selected)
		return
	}
	for _, m := range l.messages {
		l.selected[m.ID] = true
	}
}

// AllSelected reports whether every message is selected. An empty list
// is never fully selected.
func (l *List) AllSelected() bool {
	return len(l.messages) > 0 && len(l.selected) == len(l.messages)
}

func (l *List) IsSelected(id string) bool { return l.selected[id] }

// Selected returns the selected IDs in list order.
func (l *List) Selected() []string {
	return lo.FilterMap(l.messages, func(m model.Message, _ int) (string, bool) {
		return m.ID, l.selected[m.ID]
	})
}

// MarkRead flags the message as opened.
func (l *List) MarkRead(id string) {
	for i := range l.messages {
		if l.messages[i].ID == id {
			l.messages[i].Read = true
			return
		}
	}
}
