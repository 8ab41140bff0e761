package services

import (
	"testing"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlairOwnership(t *testing.T) {
	f := newFixture(t)
	alice := uuid.New()
	bob := uuid.New()

	bobsPost := f.createPost(t, bob, "bob was here")
	f.grant(t, alice, "border-chalk")

	result, err := f.flair.ApplyFlair(f.ctx, alice, bobsPost.Post.ID, "border-chalk")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, CodeNotOwner, result.Code)

	alicesPost := f.createPost(t, alice, "alice was here")
	result, err = f.flair.ApplyFlair(f.ctx, alice, alicesPost.Post.ID, "border-neon")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, CodeNotOwner, result.Code)

	_, err = f.flair.ApplyFlair(f.ctx, alice, alicesPost.Post.ID, "no-such-flair")
	assert.ErrorIs(t, err, ErrFlairNotFound)

	_, err = f.flair.ApplyFlair(f.ctx, alice, uuid.New(), "border-chalk")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestApplyFlairOnce(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	post := f.createPost(t, userID, "decorate me")
	f.grant(t, userID, "background-grid")

	first, err := f.flair.ApplyFlair(f.ctx, userID, post.Post.ID, "background-grid")
	require.NoError(t, err)
	require.True(t, first.Success)
	assert.False(t, first.AlreadyApplied)

	second, err := f.flair.ApplyFlair(f.ctx, userID, post.Post.ID, "background-grid")
	require.NoError(t, err)
	require.True(t, second.Success)
	assert.True(t, second.AlreadyApplied)

	flairs, err := f.flair.GetPostFlairs(f.ctx, post.Post.ID)
	require.NoError(t, err)
	require.Len(t, flairs[models.FlairTypeBackground], 1)
	assert.Equal(t, "background-grid", flairs[models.FlairTypeBackground][0].ID)

	inventory, err := f.flair.GetInventory(f.ctx, userID)
	require.NoError(t, err)
	require.Len(t, inventory.Items, 1)
	assert.Equal(t, []uuid.UUID{post.Post.ID}, inventory.Items[0].AppliedTo)
	assert.Len(t, inventory.Grouped[models.FlairTypeBackground], 1)
}

func TestRemoveFlair(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	post := f.createPost(t, userID, "plain again")
	f.grant(t, userID, "badge-star")

	_, err := f.flair.ApplyFlair(f.ctx, userID, post.Post.ID, "badge-star")
	require.NoError(t, err)

	removed, err := f.flair.RemoveFlair(f.ctx, userID, post.Post.ID, "badge-star")
	require.NoError(t, err)
	assert.True(t, removed.Success)

	// nothing left to remove
	removed, err = f.flair.RemoveFlair(f.ctx, userID, post.Post.ID, "badge-star")
	require.NoError(t, err)
	assert.True(t, removed.Success)

	flairs, err := f.flair.GetPostFlairs(f.ctx, post.Post.ID)
	require.NoError(t, err)
	assert.Empty(t, flairs)

	stranger, err := f.flair.RemoveFlair(f.ctx, uuid.New(), post.Post.ID, "badge-star")
	require.NoError(t, err)
	assert.Equal(t, CodeNotOwner, stranger.Code)
}
