package store

import (
	"context"

	"github.com/nhle/mailfront/internal/model"
)

// Store defines the local persistence the client keeps between runs:
// account settings, the compose draft, and a cache of the campaign list
// for when the backend is unreachable.
type Store interface {
	// === Settings ===

	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	GetSettings(ctx context.Context) (map[string]string, error)

	// === Compose draft ===

	SaveDraft(ctx context.Context, d model.Draft) (model.Draft, error)
	GetDraft(ctx context.Context) (*model.Draft, error)
	DeleteDraft(ctx context.Context, id string) error

	// === Campaign cache ===

	ReplaceCampaigns(ctx context.Context, campaigns []model.Campaign) error
	GetCampaigns(ctx context.Context) ([]model.Campaign, error)

	Close() error
}
