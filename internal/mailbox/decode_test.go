package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/mailfront/internal/backend"
)

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func TestFromEntry(t *testing.T) {
	tests := []struct {
		name        string
		entry       backend.MailboxEntry
		wantSubject string
		wantFrom    string
		wantDate    time.Time
	}{
		{
			name: "plain",
			entry: backend.MailboxEntry{
				ID: "1", Subject: "Hello", Sender: "Ann Lee <ann@x.com>",
				Date: "Tue, 10 Jun 2025 09:30:00 +0000",
			},
			wantSubject: "Hello",
			wantFrom:    "Ann Lee",
			wantDate:    time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC),
		},
		{
			name: "encoded words",
			entry: backend.MailboxEntry{
				ID: "2", Subject: "=?UTF-8?B?Q2Fmw6k=?=", Sender: "=?ISO-8859-1?Q?Andr=E9?= <andre@x.com>",
				Date: "Mon, 9 Jun 2025 08:00:00 +0200",
			},
			wantSubject: "Café",
			wantFrom:    "André",
			wantDate:    time.Date(2025, 6, 9, 6, 0, 0, 0, time.UTC),
		},
		{
			name:        "bare address",
			entry:       backend.MailboxEntry{ID: "3", Subject: "x", Sender: "bob@x.com"},
			wantSubject: "x",
			wantFrom:    "bob@x.com",
			wantDate:    now,
		},
		{
			name:        "missing fields",
			entry:       backend.MailboxEntry{ID: "4"},
			wantSubject: NoSubject,
			wantFrom:    UnknownSender,
			wantDate:    now,
		},
		{
			name:        "unparseable sender and date",
			entry:       backend.MailboxEntry{ID: "5", Subject: "  ", Sender: "Mailer Daemon", Date: "yesterday"},
			wantSubject: NoSubject,
			wantFrom:    "Mailer Daemon",
			wantDate:    now,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := FromEntry(tt.entry, now)
			assert.Equal(t, tt.entry.ID, msg.ID)
			assert.Equal(t, tt.wantSubject, msg.Subject)
			assert.Equal(t, tt.wantFrom, msg.From)
			assert.True(t, tt.wantDate.Equal(msg.Date), "date %v", msg.Date)
			assert.False(t, msg.Read)
		})
	}
}

func TestFromEntriesKeepsOrder(t *testing.T) {
	msgs := FromEntries([]backend.MailboxEntry{{ID: "b"}, {ID: "a"}}, now)
	assert.Equal(t, "b", msgs[0].ID)
	assert.Equal(t, "a", msgs[1].ID)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "09:30", FormatDate(time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC), now))
	assert.Equal(t, "Jun 9", FormatDate(time.Date(2025, 6, 9, 23, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Jun 10", FormatDate(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), now))
}
