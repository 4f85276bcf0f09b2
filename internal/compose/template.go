package compose

import (
	"strings"

	"github.com/nhle/mailfront/internal/model"
)

type templateInput struct {
	Name      string `json:"template_name" validate:"required"`
	Sender    string `json:"sender" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	FromEmail string `json:"from_email" validate:"omitempty,mailaddr"`
}

// Template validates a template before it is saved and returns it with
// surrounding whitespace removed from its single-line fields.
func (v *Validator) Template(t model.Template) (model.Template, error) {
	t.Name = strings.TrimSpace(t.Name)
	t.Sender = strings.TrimSpace(t.Sender)
	t.Subject = strings.TrimSpace(t.Subject)
	t.FromEmail = strings.TrimSpace(t.FromEmail)

	err := v.Validate(templateInput{
		Name:      t.Name,
		Sender:    t.Sender,
		Subject:   t.Subject,
		FromEmail: t.FromEmail,
	})
	if err != nil {
		return model.Template{}, err
	}
	return t, nil
}
