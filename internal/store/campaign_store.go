package store

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/mailfront/internal/model"
)

// ReplaceCampaigns swaps the cached campaign list for campaigns in one
// transaction. Campaigns without an ID are skipped since the cache only
// mirrors what the backend has persisted.
func (s *SQLiteStore) ReplaceCampaigns(ctx context.Context, campaigns []model.Campaign) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"campaign_emails", "campaigns"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	campaignStmt, err := tx.PreparexContext(ctx,
		"INSERT INTO campaigns (id, name, position, created_at, fetched_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing campaign insert: %w", err)
	}
	defer campaignStmt.Close()

	emailStmt, err := tx.PreparexContext(ctx,
		"INSERT INTO campaign_emails (campaign_id, position, email) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing email insert: %w", err)
	}
	defer emailStmt.Close()

	now := time.Now().UTC()
	for i, c := range campaigns {
		if c.ID == nil {
			continue
		}
		if _, err := campaignStmt.ExecContext(ctx, *c.ID, c.Name, i, c.CreatedAt.UTC(), now); err != nil {
			return fmt.Errorf("caching campaign %d: %w", *c.ID, err)
		}
		for j, email := range c.Emails {
			if _, err := emailStmt.ExecContext(ctx, *c.ID, j, email); err != nil {
				return fmt.Errorf("caching email for campaign %d: %w", *c.ID, err)
			}
		}
	}

	return tx.Commit()
}

// GetCampaigns returns the cached campaigns in the order they were last
// listed by the backend.
func (s *SQLiteStore) GetCampaigns(ctx context.Context) ([]model.Campaign, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, name, created_at FROM campaigns ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []model.Campaign
	index := make(map[int64]int)
	for rows.Next() {
		var (
			id        int64
			name      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &name, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning campaign row: %w", err)
		}
		index[id] = len(campaigns)
		campaigns = append(campaigns, model.Campaign{
			ID:        &id,
			Name:      name,
			CreatedAt: createdAt,
			Emails:    []string{},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaigns: %w", err)
	}

	emailRows, err := s.db.QueryxContext(ctx,
		"SELECT campaign_id, email FROM campaign_emails ORDER BY campaign_id, position")
	if err != nil {
		return nil, fmt.Errorf("querying campaign emails: %w", err)
	}
	defer emailRows.Close()

	for emailRows.Next() {
		var (
			campaignID int64
			email      string
		)
		if err := emailRows.Scan(&campaignID, &email); err != nil {
			return nil, fmt.Errorf("scanning campaign email row: %w", err)
		}
		if i, ok := index[campaignID]; ok {
			campaigns[i].Emails = append(campaigns[i].Emails, email)
		}
	}

	return campaigns, emailRows.Err()
}
