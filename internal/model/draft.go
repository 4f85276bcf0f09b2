package model

import "time"

// Draft is the locally persisted state of the compose form.
type Draft struct {
	ID        string    `json:"id" db:"id"`
	Sender    string    `json:"sender" db:"sender"`
	From      string    `json:"from" db:"from_email"`
	Recipient string    `json:"recipient" db:"recipient"`
	Subject   string    `json:"subject" db:"subject"`
	Body      string    `json:"body" db:"body"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
