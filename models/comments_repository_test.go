package models_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trucksigns/truck-signs-api/models"
)

func TestCommentsListVisibleAndInvalidate(t *testing.T) {
	db := newTestDB(t)
	repo := models.NewCommentsRepository(db, newIDCache(), models.DefaultCacheTTLs())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Comment{UserEmail: "a@example.com", Text: "first", Visible: true}))
	require.NoError(t, repo.Create(ctx, &models.Comment{UserEmail: "b@example.com", Text: "hidden", Visible: false}))

	comments, err := repo.ListVisible(ctx)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first", comments[0].Text)

	require.NoError(t, repo.Create(ctx, &models.Comment{UserEmail: "c@example.com", Text: "second", Visible: true}))
	comments, err = repo.ListVisible(ctx)
	require.NoError(t, err)
	assert.Len(t, comments, 2, "creating a comment drops the cached list")

	// Hiding a cached comment takes effect immediately.
	require.NoError(t, db.Model(&models.Comment{}).Where("text = ?", "first").Update("visible", false).Error)
	comments, err = repo.ListVisible(ctx)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "second", comments[0].Text)
}
