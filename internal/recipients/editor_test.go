package recipients

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailfront/internal/model"
)

func TestEditorNewCampaign(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	e := NewEditor(model.NewCampaign(now))

	assert.True(t, e.IsNew())
	assert.Equal(t, "New Target List", e.Title())
	assert.Equal(t, Stats{}, e.Stats())

	_, err := e.Save()
	assert.ErrorIs(t, err, ErrMissingName)

	e = e.WithName("Newsletter")
	_, err = e.Save()
	assert.ErrorIs(t, err, ErrEmptyRecipientList)

	e = e.WithText("B@x.com; a@x.com\nb@x.com")
	assert.Equal(t, Stats{Total: 3, Unique: 2, Duplicates: 1}, e.Stats())

	c, err := e.Save()
	require.NoError(t, err)
	assert.Nil(t, c.ID)
	assert.Equal(t, now, c.CreatedAt)
	assert.Equal(t, "Newsletter", c.Name)
	assert.Equal(t, []string{"b@x.com", "a@x.com"}, c.Emails)
}

func TestEditorExistingCampaign(t *testing.T) {
	id := int64(42)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	e := NewEditor(model.Campaign{
		ID:        &id,
		Name:      "Customers",
		CreatedAt: created,
		Emails:    []string{"one@x.com", "ONE@x.com", "two@x.com"},
	})

	assert.False(t, e.IsNew())
	assert.Equal(t, "Edit Target List", e.Title())
	assert.Equal(t, "Customers", e.Name())
	assert.Equal(t, []string{"one@x.com", "two@x.com"}, e.List().Addresses)

	c, err := e.Save()
	require.NoError(t, err)
	require.NotNil(t, c.ID)
	assert.Equal(t, id, *c.ID)
	assert.Equal(t, created, c.CreatedAt)
}

func TestEditorIsAValue(t *testing.T) {
	base := NewEditor(model.Campaign{Name: "A", Emails: []string{"a@x.com"}})
	changed := base.WithText("b@x.com").WithName("B")
	cleared := changed.Clear()

	assert.Equal(t, "A", base.Name())
	assert.Equal(t, []string{"a@x.com"}, base.List().Addresses)
	assert.Equal(t, []string{"b@x.com"}, changed.List().Addresses)
	assert.Empty(t, cleared.List().Addresses)
	assert.Equal(t, "B", cleared.Name())
}
