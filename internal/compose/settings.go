package compose

import (
	"strings"

	"github.com/nhle/mailfront/internal/model"
)

type settingsInput struct {
	SMTPPort string `json:"smtp_port" validate:"omitempty,portnum"`
	IMAPPort string `json:"imap_port" validate:"omitempty,portnum"`
}

// Settings checks the fields of the settings form that have a fixed
// format. Empty fields are allowed so the form can be saved partially.
func (v *Validator) Settings(s model.Settings) error {
	return v.Validate(settingsInput{
		SMTPPort: strings.TrimSpace(s.SMTP.Port),
		IMAPPort: strings.TrimSpace(s.IMAP.Port),
	})
}
