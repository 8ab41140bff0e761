package services

import (
	"strings"
	"sync"
	"testing"

	"whiteboard/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostOncePerDay(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	can, err := f.post.CanPostToday(f.ctx, userID)
	require.NoError(t, err)
	assert.True(t, can)

	f.createPost(t, userID, "first")

	can, err = f.post.CanPostToday(f.ctx, userID)
	require.NoError(t, err)
	assert.False(t, can)

	second, err := f.post.CreatePost(f.ctx, userID, CreatePostInput{BoardID: "general", Content: "second"})
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Equal(t, CodeAlreadyPostedToday, second.Code)

	f.clock.Advance(oneDay)
	can, err = f.post.CanPostToday(f.ctx, userID)
	require.NoError(t, err)
	assert.True(t, can)
}

func TestCreatePostConcurrent(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	const attempts = 6
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.post.CreatePost(f.ctx, userID, CreatePostInput{BoardID: "general", Content: "race"})
			if !assert.NoError(t, err) {
				return
			}
			if result.Success {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	posts, err := f.post.ListPosts(f.ctx, userID, "general", 1, 50)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	_, err := f.post.CreatePost(f.ctx, userID, CreatePostInput{BoardID: "general", Content: "   "})
	assert.ErrorIs(t, err, ErrContentRequired)

	_, err = f.post.CreatePost(f.ctx, userID, CreatePostInput{BoardID: "general", Content: "<script>alert(1)</script>"})
	assert.ErrorIs(t, err, ErrContentRequired)

	_, err = f.post.CreatePost(f.ctx, userID, CreatePostInput{BoardID: "general", Content: strings.Repeat("a", DEFAULT_POST_MAX_LENGTH+1)})
	assert.ErrorIs(t, err, ErrContentTooLong)

	_, err = f.post.CreatePost(f.ctx, userID, CreatePostInput{BoardID: "nowhere", Content: "hi"})
	assert.ErrorIs(t, err, ErrBoardNotFound)

	can, err := f.post.CanPostToday(f.ctx, userID)
	require.NoError(t, err)
	assert.True(t, can)
}

func TestCreatePostWithFlair(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	f.grant(t, userID, "effect-sparkle")

	result, err := f.post.CreatePost(f.ctx, userID, CreatePostInput{BoardID: "showcase", Content: "shiny", FlairID: "effect-sparkle"})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.Flair)
	assert.True(t, result.Flair.Success)
	assert.Len(t, result.Post.Flairs[models.FlairTypeEffect], 1)
}

func TestCreatePostKeepsPostWhenFlairFails(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	result, err := f.post.CreatePost(f.ctx, userID, CreatePostInput{BoardID: "general", Content: "still here", FlairID: "effect-prismatic"})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.Flair)
	assert.False(t, result.Flair.Success)
	assert.Equal(t, CodeNotOwner, result.Flair.Code)

	view, err := f.post.GetPost(f.ctx, userID, result.Post.ID)
	require.NoError(t, err)
	assert.Equal(t, "still here", view.Content)
	assert.Empty(t, view.Flairs)

	unknown, err := f.post.CreatePost(f.ctx, uuid.New(), CreatePostInput{BoardID: "general", Content: "also here", FlairID: "nope"})
	require.NoError(t, err)
	require.True(t, unknown.Success)
	assert.Equal(t, CodeFlairNotApplied, unknown.Flair.Code)
}

func TestUpdatePostOwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	post := f.createPost(t, owner, "draft")

	denied, err := f.post.UpdatePost(f.ctx, uuid.New(), post.Post.ID, "hijacked")
	require.NoError(t, err)
	assert.False(t, denied.Success)
	assert.Equal(t, CodeForbidden, denied.Code)

	updated, err := f.post.UpdatePost(f.ctx, owner, post.Post.ID, "final")
	require.NoError(t, err)
	require.True(t, updated.Success)
	assert.Equal(t, "final", updated.Post.Content)

	_, err = f.post.UpdatePost(f.ctx, owner, uuid.New(), "lost")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCommentBumpsPost(t *testing.T) {
	f := newFixture(t)
	author := uuid.New()
	commenter := uuid.New()

	older := f.createPost(t, author, "older")
	f.clock.Advance(oneDay)
	f.createPost(t, uuid.New(), "newer")

	f.clock.Advance(1)
	result, err := f.post.CreateComment(f.ctx, commenter, older.Post.ID, "bump")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Post.PushCount)
	assert.Equal(t, 1, result.Post.CommentCount)
	require.NotNil(t, result.Post.LastBumpedBy)
	assert.Equal(t, commenter, *result.Post.LastBumpedBy)

	feed, err := f.post.ListPosts(f.ctx, commenter, "general", 1, 10)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, older.Post.ID, feed[0].ID)
	assert.Equal(t, 1, feed[0].CommentCount)

	bumped, err := f.post.BumpPostOnComment(f.ctx, older.Post.ID, author)
	require.NoError(t, err)
	assert.Equal(t, 2, bumped.PushCount)

	comments, err := f.post.ListComments(f.ctx, older.Post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	_, err = f.post.CreateComment(f.ctx, commenter, uuid.New(), "void")
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = f.post.BumpPostOnComment(f.ctx, uuid.New(), author)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestListPostsUnknownBoard(t *testing.T) {
	f := newFixture(t)
	_, err := f.post.ListPosts(f.ctx, uuid.New(), "nowhere", 1, 10)
	assert.ErrorIs(t, err, ErrBoardNotFound)

	boards, err := f.post.ListBoards(f.ctx)
	require.NoError(t, err)
	assert.Len(t, boards, 3)
}

func TestToggleThumb(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	post := f.createPost(t, uuid.New(), "thumbs please")
	target := models.ThumbTarget{PostID: &post.Post.ID}

	added, err := f.thumb.ToggleThumb(f.ctx, userID, target)
	require.NoError(t, err)
	assert.Equal(t, ThumbAdded, added.Action)
	assert.Equal(t, 1, added.ThumbCount)

	view, err := f.post.GetPost(f.ctx, userID, post.Post.ID)
	require.NoError(t, err)
	assert.True(t, view.UserHasThumbed)

	removed, err := f.thumb.ToggleThumb(f.ctx, userID, target)
	require.NoError(t, err)
	assert.Equal(t, ThumbRemoved, removed.Action)
	assert.Equal(t, 0, removed.ThumbCount)
}

func TestToggleThumbOnComment(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	post := f.createPost(t, uuid.New(), "discuss")
	comment, err := f.post.CreateComment(f.ctx, uuid.New(), post.Post.ID, "first!")
	require.NoError(t, err)

	result, err := f.thumb.ToggleThumb(f.ctx, userID, models.ThumbTarget{CommentID: &comment.Comment.ID})
	require.NoError(t, err)
	assert.Equal(t, ThumbAdded, result.Action)
	assert.Equal(t, 1, result.ThumbCount)

	missing := uuid.New()
	_, err = f.thumb.ToggleThumb(f.ctx, userID, models.ThumbTarget{CommentID: &missing})
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestToggleThumbNeedsExactlyOneTarget(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	_, err := f.thumb.ToggleThumb(f.ctx, uuid.New(), models.ThumbTarget{})
	assert.ErrorIs(t, err, ErrInvalidThumbTarget)

	_, err = f.thumb.ToggleThumb(f.ctx, uuid.New(), models.ThumbTarget{PostID: &id, CommentID: &id})
	assert.ErrorIs(t, err, ErrInvalidThumbTarget)
}
