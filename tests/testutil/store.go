// Package testutil builds in-memory mailfront stores for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/nhle/mailfront/internal/model"
	"github.com/nhle/mailfront/internal/store"
)

// Seed writes fixture rows into a fresh store.
type Seed func(ctx context.Context, s *store.SQLiteStore) error

// WithSettings stores account settings by key (see model.SettingUser and
// friends). The password lives in the keyring and cannot be seeded here.
func WithSettings(kv map[string]string) Seed {
	return func(ctx context.Context, s *store.SQLiteStore) error {
		for k, v := range kv {
			if err := s.SetSetting(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithAccount stores a complete SMTP and IMAP account for user.
func WithAccount(user string) Seed {
	return WithSettings(map[string]string{
		model.SettingUser:       user,
		model.SettingSMTPServer: "smtp.example.com",
		model.SettingSMTPPort:   "465",
		model.SettingSMTPTLS:    "true",
		model.SettingIMAPServer: "imap.example.com",
		model.SettingIMAPPort:   "993",
		model.SettingIMAPTLS:    "true",
	})
}

// WithCachedCampaigns fills the offline campaign cache.
func WithCachedCampaigns(campaigns ...model.Campaign) Seed {
	return func(ctx context.Context, s *store.SQLiteStore) error {
		return s.ReplaceCampaigns(ctx, campaigns)
	}
}

// WithDraft stores d as the autosaved compose draft.
func WithDraft(d model.Draft) Seed {
	return func(ctx context.Context, s *store.SQLiteStore) error {
		_, err := s.SaveDraft(ctx, d)
		return err
	}
}

// NewTestStore creates an in-memory SQLiteStore with all migrations applied
// and the seeds written in order. It closes the store when the test completes.
func NewTestStore(t *testing.T, seeds ...Seed) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	for _, seed := range seeds {
		if err := seed(context.Background(), s); err != nil {
			t.Fatalf("seeding test store: %v", err)
		}
	}

	return s
}
