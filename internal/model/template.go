package model

import "time"

// Template is a reusable message layout stored by the backend.
type Template struct {
	ID        *int64    `json:"id,omitempty"`
	Name      string    `json:"template_name"`
	Sender    string    `json:"sender"`
	Subject   string    `json:"subject"`
	FromEmail string    `json:"from_email"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"date_ts"`
}

// IsNew reports whether the template has never been saved to the backend.
func (t Template) IsNew() bool {
	return t.ID == nil
}
