package model

import "time"

// Message is a single mailbox entry as shown in the inbox list.
type Message struct {
	// ID is the backend's IMAP sequence identifier.
	ID string `json:"id"`

	Subject string `json:"subject"`

	// From is the decoded sender, display name preferred.
	From string `json:"from"`

	Date time.Time `json:"date"`

	Body string `json:"body"`

	Read bool `json:"read"`
}
