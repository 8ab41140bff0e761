package handler

import (
	"whiteboard/internal/models"
	"whiteboard/internal/services"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupBoard struct {
	container *do.Injector
}

func (gr *groupBoard) ListBoards(c echo.Context) error {
	servicePost, err := do.Invoke[*services.ServicePost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	boards, err := servicePost.ListBoards(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, boards, nil)
}

func (gr *groupBoard) ListPosts(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	servicePost, err := do.Invoke[*services.ServicePost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)
	posts, err := servicePost.ListPosts(ctx, user.ID, c.Param("board"), page, limit)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, posts, nil)
}

type groupPost struct {
	container *do.Injector
}

type createPostRequest struct {
	BoardID string `json:"board_id" validate:"required"`
	Content string `json:"content" validate:"required"`
	FlairID string `json:"flair_id"`
}

type contentRequest struct {
	Content string `json:"content" validate:"required"`
}

type thumbRequest struct {
	PostID    *uuid.UUID `json:"post_id"`
	CommentID *uuid.UUID `json:"comment_id"`
}

func (gr *groupPost) CreatePost(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload createPostRequest
	if err := bindValid(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	servicePost, err := do.Invoke[*services.ServicePost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := servicePost.CreatePost(ctx, user.ID, services.CreatePostInput{
		BoardID: payload.BoardID,
		Content: payload.Content,
		FlairID: payload.FlairID,
	})
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return respond(c, result.Outcome, result)
}

func (gr *groupPost) GetPost(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	postID, err := paramUUID(c, "post")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	servicePost, err := do.Invoke[*services.ServicePost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	post, err := servicePost.GetPost(ctx, user.ID, postID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, post, nil)
}

func (gr *groupPost) UpdatePost(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	postID, err := paramUUID(c, "post")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload contentRequest
	if err := bindValid(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	servicePost, err := do.Invoke[*services.ServicePost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := servicePost.UpdatePost(ctx, user.ID, postID, payload.Content)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return respond(c, result.Outcome, result)
}

func (gr *groupPost) ListComments(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveValidUser(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	postID, err := paramUUID(c, "post")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	servicePost, err := do.Invoke[*services.ServicePost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	comments, err := servicePost.ListComments(ctx, postID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, comments, nil)
}

func (gr *groupPost) CreateComment(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	postID, err := paramUUID(c, "post")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload contentRequest
	if err := bindValid(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	servicePost, err := do.Invoke[*services.ServicePost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := servicePost.CreateComment(ctx, user.ID, postID, payload.Content)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return respond(c, result.Outcome, result)
}

func (gr *groupPost) Bump(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	postID, err := paramUUID(c, "post")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	servicePost, err := do.Invoke[*services.ServicePost](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	bumped, err := servicePost.BumpPostOnComment(ctx, postID, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, bumped, nil)
}

func (gr *groupPost) GetPostFlairs(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveValidUser(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	postID, err := paramUUID(c, "post")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceFlair, err := do.Invoke[*services.ServiceFlair](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	flairs, err := serviceFlair.GetPostFlairs(ctx, postID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, flairs, nil)
}

func (gr *groupPost) ToggleThumb(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload thumbRequest
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceThumb, err := do.Invoke[*services.ServiceThumb](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceThumb.ToggleThumb(ctx, user.ID, models.ThumbTarget{
		PostID:    payload.PostID,
		CommentID: payload.CommentID,
	})
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, result, nil)
}
