package backend

import (
	"context"
	"fmt"

	"github.com/nhle/mailfront/internal/model"
)

type templatePayload struct {
	ID        *int64    `json:"id"`
	Name      string    `json:"template_name"`
	Sender    string    `json:"sender"`
	Subject   string    `json:"subject"`
	FromEmail *string   `json:"from_email"`
	Body      string    `json:"body"`
	UpdatedAt timestamp `json:"date_ts"`
}

func (p templatePayload) toModel() model.Template {
	t := model.Template{
		ID:        p.ID,
		Name:      p.Name,
		Sender:    p.Sender,
		Subject:   p.Subject,
		Body:      p.Body,
		UpdatedAt: timeOf(p.UpdatedAt),
	}
	if p.FromEmail != nil {
		t.FromEmail = *p.FromEmail
	}
	return t
}

type templateRequest struct {
	Name      string `json:"template_name"`
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	FromEmail string `json:"from_email"`
	Body      string `json:"body"`
}

func newTemplateRequest(t model.Template) templateRequest {
	return templateRequest{
		Name:      t.Name,
		Sender:    t.Sender,
		Subject:   t.Subject,
		FromEmail: t.FromEmail,
		Body:      t.Body,
	}
}

func templatePath(id int64) string {
	return fmt.Sprintf("/templates/%d/", id)
}

// ListTemplates returns every stored template.
func (c *Client) ListTemplates(ctx context.Context) ([]model.Template, error) {
	var resp struct {
		Templates []templatePayload `json:"templates"`
	}
	if err := c.get(ctx, "/templates/", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	templates := make([]model.Template, 0, len(resp.Templates))
	for _, p := range resp.Templates {
		templates = append(templates, p.toModel())
	}
	return templates, nil
}

// GetTemplate returns a single template by ID.
func (c *Client) GetTemplate(ctx context.Context, id int64) (*model.Template, error) {
	var resp struct {
		Template templatePayload `json:"template"`
	}
	if err := c.get(ctx, templatePath(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("getting template %d: %w", id, err)
	}

	t := resp.Template.toModel()
	return &t, nil
}

// CreateTemplate stores a new template.
func (c *Client) CreateTemplate(ctx context.Context, t model.Template) (*model.Template, error) {
	var resp struct {
		Template templatePayload `json:"template"`
	}
	if err := c.post(ctx, "/templates/", newTemplateRequest(t), &resp); err != nil {
		return nil, fmt.Errorf("creating template %q: %w", t.Name, err)
	}

	created := resp.Template.toModel()
	return &created, nil
}

// UpdateTemplate overwrites an existing template.
func (c *Client) UpdateTemplate(ctx context.Context, t model.Template) (*model.Template, error) {
	if t.ID == nil {
		return nil, fmt.Errorf("updating template %q: missing id", t.Name)
	}

	var resp struct {
		Template templatePayload `json:"template"`
	}
	if err := c.put(ctx, templatePath(*t.ID), newTemplateRequest(t), &resp); err != nil {
		return nil, fmt.Errorf("updating template %d: %w", *t.ID, err)
	}

	updated := resp.Template.toModel()
	if updated.ID == nil {
		updated.ID = t.ID
	}
	return &updated, nil
}

// SaveTemplate creates the template when it has no ID and updates it
// otherwise.
func (c *Client) SaveTemplate(ctx context.Context, t model.Template) (*model.Template, error) {
	if t.IsNew() {
		return c.CreateTemplate(ctx, t)
	}
	return c.UpdateTemplate(ctx, t)
}

// DeleteTemplate removes a template.
func (c *Client) DeleteTemplate(ctx context.Context, id int64) error {
	if err := c.delete(ctx, templatePath(id)); err != nil {
		return fmt.Errorf("deleting template %d: %w", id, err)
	}
	return nil
}
