package compose

import (
	"fmt"
	"strings"

	"github.com/nhle/mailfront/internal/backend"
	"github.com/nhle/mailfront/internal/model"
)

// Message is the compose form.
type Message struct {
	Sender    string `json:"sender"`
	FromEmail string `json:"from_email" validate:"omitempty,mailaddr"`
	Recipient string `json:"recipient" validate:"required,mailaddr"`
	Subject   string `json:"subject" validate:"required"`
	Body      string `json:"body" validate:"required"`
}

// MessageFromDraft restores the compose form from a saved draft.
func MessageFromDraft(d model.Draft) Message {
	return Message{
		Sender:    d.Sender,
		FromEmail: d.From,
		Recipient: d.Recipient,
		Subject:   d.Subject,
		Body:      d.Body,
	}
}

// Draft returns the form as a draft stored under id.
func (m Message) Draft(id string) model.Draft {
	return model.Draft{
		ID:        id,
		Sender:    m.Sender,
		From:      m.FromEmail,
		Recipient: m.Recipient,
		Subject:   m.Subject,
		Body:      m.Body,
	}
}

// ApplyTemplate fills the sender, subject and body from t, keeping the
// recipient.
func (m Message) ApplyTemplate(t model.Template) Message {
	m.Sender = t.Sender
	m.FromEmail = t.FromEmail
	m.Subject = t.Subject
	m.Body = t.Body
	return m
}

func (m Message) trimmed() Message {
	m.Sender = strings.TrimSpace(m.Sender)
	m.FromEmail = strings.TrimSpace(m.FromEmail)
	m.Recipient = strings.TrimSpace(m.Recipient)
	m.Subject = strings.TrimSpace(m.Subject)
	return m
}

// SendRequest validates the form and the SMTP settings and builds the
// request for POST /send/.
func (v *Validator) SendRequest(m Message, s model.Settings) (backend.SendRequest, error) {
	m = m.trimmed()
	if err := v.Validate(m); err != nil {
		return backend.SendRequest{}, err
	}

	auth, err := backend.NewSMTPAuth(s)
	if err != nil {
		return backend.SendRequest{}, fmt.Errorf("preparing SMTP account: %w", err)
	}

	return backend.SendRequest{
		SMTPAuth:  auth,
		Recipient: m.Recipient,
		Sender:    m.Sender,
		FromEmail: m.FromEmail,
		Subject:   m.Subject,
		Body:      m.Body,
	}, nil
}
