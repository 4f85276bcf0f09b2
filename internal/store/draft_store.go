package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/mailfront/internal/model"
)

// SaveDraft inserts or replaces the compose draft. A draft without an ID
// is given a new one.
func (s *SQLiteStore) SaveDraft(ctx context.Context, d model.Draft) (model.Draft, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.UpdatedAt = time.Now().UTC()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT OR REPLACE INTO drafts (
			id, sender, from_email, recipient, subject, body, updated_at
		) VALUES (
			:id, :sender, :from_email, :recipient, :subject, :body, :updated_at
		)`, d)
	if err != nil {
		return model.Draft{}, fmt.Errorf("saving draft %s: %w", d.ID, err)
	}
	return d, nil
}

// GetDraft returns the most recently saved draft, or nil when there is none.
func (s *SQLiteStore) GetDraft(ctx context.Context) (*model.Draft, error) {
	var d model.Draft
	err := s.db.GetContext(ctx, &d,
		"SELECT * FROM drafts ORDER BY updated_at DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting draft: %w", err)
	}
	return &d, nil
}

// DeleteDraft removes a draft once it has been sent or discarded.
// Deleting a missing draft is not an error.
func (s *SQLiteStore) DeleteDraft(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting draft %s: %w", id, err)
	}
	return nil
}
