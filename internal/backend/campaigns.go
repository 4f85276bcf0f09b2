package backend

import (
	"context"
	"fmt"

	"github.com/nhle/mailfront/internal/model"
)

type campaignPayload struct {
	ID        *int64       `json:"id"`
	Name      string       `json:"name"`
	CreatedAt timestamp    `json:"created_at"`
	Emails    []emailEntry `json:"emails"`
	Targets   []emailEntry `json:"targets"`
}

func (p campaignPayload) toModel() model.Campaign {
	entries := p.Emails
	if len(entries) == 0 {
		entries = p.Targets
	}
	return model.Campaign{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: timeOf(p.CreatedAt),
		Emails:    entriesToStrings(entries),
	}
}

type campaignRequest struct {
	Name   string   `json:"name"`
	Emails []string `json:"emails"`
}

func campaignPath(id int64) string {
	return fmt.Sprintf("/campaigns/%d/", id)
}

// ListCampaigns returns every campaign with its recipients.
func (c *Client) ListCampaigns(ctx context.Context) ([]model.Campaign, error) {
	var resp struct {
		Campaigns []campaignPayload `json:"campaigns"`
	}
	if err := c.get(ctx, "/campaigns/", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}

	campaigns := make([]model.Campaign, 0, len(resp.Campaigns))
	for _, p := range resp.Campaigns {
		campaigns = append(campaigns, p.toModel())
	}
	return campaigns, nil
}

// GetCampaign returns a single campaign by ID.
func (c *Client) GetCampaign(ctx context.Context, id int64) (*model.Campaign, error) {
	var resp struct {
		Campaign campaignPayload `json:"campaign"`
	}
	if err := c.get(ctx, campaignPath(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("getting campaign %d: %w", id, err)
	}

	campaign := resp.Campaign.toModel()
	return &campaign, nil
}

// CreateCampaign persists a new campaign and returns it with the
// identifier and timestamp assigned by the backend.
func (c *Client) CreateCampaign(ctx context.Context, campaign model.Campaign) (*model.Campaign, error) {
	var resp campaignPayload
	req := campaignRequest{Name: campaign.Name, Emails: campaign.Emails}
	if err := c.post(ctx, "/campaigns/", req, &resp); err != nil {
		return nil, fmt.Errorf("creating campaign %q: %w", campaign.Name, err)
	}

	created := resp.toModel()
	// The backend answers with a set; keep the order the user saw.
	created.Emails = campaign.Emails
	return &created, nil
}

// UpdateCampaign replaces the name and recipients of an existing campaign.
func (c *Client) UpdateCampaign(ctx context.Context, campaign model.Campaign) (*model.Campaign, error) {
	if campaign.ID == nil {
		return nil, fmt.Errorf("updating campaign %q: missing id", campaign.Name)
	}

	var resp struct {
		Target campaignPayload `json:"target"`
	}
	req := campaignRequest{Name: campaign.Name, Emails: campaign.Emails}
	if err := c.put(ctx, campaignPath(*campaign.ID), req, &resp); err != nil {
		return nil, fmt.Errorf("updating campaign %d: %w", *campaign.ID, err)
	}

	updated := resp.Target.toModel()
	if updated.ID == nil {
		updated.ID = campaign.ID
	}
	if updated.CreatedAt.IsZero() {
		updated.CreatedAt = campaign.CreatedAt
	}
	updated.Emails = campaign.Emails
	return &updated, nil
}

// SaveCampaign creates the campaign when it has no ID and updates it
// otherwise.
func (c *Client) SaveCampaign(ctx context.Context, campaign model.Campaign) (*model.Campaign, error) {
	if campaign.IsNew() {
		return c.CreateCampaign(ctx, campaign)
	}
	return c.UpdateCampaign(ctx, campaign)
}

// DeleteCampaign removes a campaign and its recipients.
func (c *Client) DeleteCampaign(ctx context.Context, id int64) error {
	if err := c.delete(ctx, campaignPath(id)); err != nil {
		return fmt.Errorf("deleting campaign %d: %w", id, err)
	}
	return nil
}
