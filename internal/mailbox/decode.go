// Package mailbox turns raw inbox entries from the mail API into messages
// ready for display, and holds the inbox list state (search, sort and
// selection).
package mailbox

import (
	"log/slog"
	"strings"
	"time"

	// Registers non-UTF-8 charsets for RFC 2047 decoding.
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/mailfront/internal/backend"
	"github.com/nhle/mailfront/internal/model"
)

const (
	NoSubject     = "(No subject)"
	UnknownSender = "Unknown"
)

// FromEntry decodes one mailbox entry. Encoded words in the subject and
// sender are decoded; a missing subject or sender gets a placeholder and
// an unparseable date falls back to now.
func FromEntry(e backend.MailboxEntry, now time.Time) model.Message {
	var h mail.Header
	h.Set("Subject", e.Subject)
	h.Set("From", e.Sender)
	h.Set("Date", e.Date)

	subject, err := h.Subject()
	if err != nil {
		slog.Debug("decoding subject", "id", e.ID, "error", err)
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = NoSubject
	}

	date, err := h.Date()
	if err != nil || date.IsZero() {
		date = now
	}

	return model.Message{
		ID:      e.ID,
		Subject: subject,
		From:    senderName(&h, e.Sender),
		Date:    date,
		Body:    e.Body,
	}
}

// FromEntries decodes a whole mailbox listing, keeping the backend order.
func FromEntries(entries []backend.MailboxEntry, now time.Time) []model.Message {
	msgs := make([]model.Message, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, FromEntry(e, now))
	}
	return msgs
}

func senderName(h *mail.Header, raw string) string {
	addrs, err := h.AddressList("From")
	if err != nil || len(addrs) == 0 {
		// Not an RFC 5322 address; show what the server sent, decoded.
		if text, err := h.Text("From"); err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if s := strings.TrimSpace(raw); s != "" {
			return s
		}
		return UnknownSender
	}

	if name := strings.TrimSpace(addrs[0].Name); name != "" {
		return name
	}
	return addrs[0].Address
}

// FormatDate renders t the way the inbox list shows it: a clock time for
// messages from today, a short month and day otherwise.
func FormatDate(t, now time.Time) string {
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return t.Format("15:04")
	}
	return t.Format("Jan 2")
}
