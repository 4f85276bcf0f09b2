package model

import "time"

// Campaign is a named recipient list used for bulk send. The backend owns
// the record; the UI only holds a copy while editing.
type Campaign struct {
	// ID is nil for a campaign that has not been persisted yet.
	ID *int64 `json:"id" db:"id"`

	Name string `json:"name" db:"name"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Emails holds normalized, deduplicated addresses in display order.
	Emails []string `json:"emails" db:"-"`
}

// IsNew reports whether the campaign has never been saved to the backend.
func (c Campaign) IsNew() bool {
	return c.ID == nil
}

// NewCampaign returns an empty, unsaved campaign stamped with now.
func NewCampaign(now time.Time) Campaign {
	return Campaign{
		CreatedAt: now,
		Emails:    []string{},
	}
}
