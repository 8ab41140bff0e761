package handler

import (
	"whiteboard/internal/services"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
	"go.uber.org/zap"
)

type groupEngagement struct {
	container *do.Injector
}

type pullRequest struct {
	CollectionID string `json:"collection_id" validate:"required"`
	IsPremium    bool   `json:"is_premium"`
}

type flairRequest struct {
	PostID  uuid.UUID `json:"post_id" validate:"required"`
	FlairID string    `json:"flair_id" validate:"required"`
}

func (gr *groupEngagement) GetActivities(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceActivity, err := do.Invoke[*services.ServiceActivity](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	activities, err := serviceActivity.GetActivities(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, activities, nil)
}

func (gr *groupEngagement) CheckIn(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceActivity, err := do.Invoke[*services.ServiceActivity](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceActivity.CheckIn(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	if result.Success {
		gr.recordStreak(c, user.ID, result.Streak)
	}

	return respond(c, result.Outcome, result)
}

// recordStreak pushes the new streak to the leaderboard. The check-in has
// already committed, so a failure here is only logged.
func (gr *groupEngagement) recordStreak(c echo.Context, userID uuid.UUID, streak int) {
	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err == nil {
		err = serviceLeaderboard.RecordStreak(c.Request().Context(), userID, streak)
	}
	if err == nil {
		return
	}
	if logger, lerr := do.Invoke[*zap.Logger](gr.container); lerr == nil {
		logger.Warn("record streak", zap.Stringer("user", userID), zap.Error(err))
	}
}

func (gr *groupEngagement) GetCurrencyHistory(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceLedger, err := do.Invoke[*services.ServiceLedger](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	limit := queryInt(c, "limit", services.CURRENCY_HISTORY_DEFAULT_LIMIT)
	history, err := serviceLedger.GetCurrencyHistory(ctx, user.ID, limit)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, history, nil)
}

func (gr *groupEngagement) GetAchievements(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceAchievement, err := do.Invoke[*services.ServiceAchievement](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	achievements, err := serviceAchievement.GetAchievements(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, achievements, nil)
}

func (gr *groupEngagement) ClaimAchievement(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceAchievement, err := do.Invoke[*services.ServiceAchievement](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceAchievement.Claim(ctx, user.ID, c.Param("achievement"))
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return respond(c, result.Outcome, result)
}

func (gr *groupEngagement) GetGachaState(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceGacha, err := do.Invoke[*services.ServiceGachaPull](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	state, err := serviceGacha.GetGachaState(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, state, nil)
}

func (gr *groupEngagement) Pull(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload pullRequest
	if err := bindValid(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceGacha, err := do.Invoke[*services.ServiceGachaPull](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceGacha.Pull(ctx, user.ID, payload.CollectionID, payload.IsPremium)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return respond(c, result.Outcome, result)
}

func (gr *groupEngagement) GetInventory(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceFlair, err := do.Invoke[*services.ServiceFlair](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	inventory, err := serviceFlair.GetInventory(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return httpx.RestAbort(c, inventory, nil)
}

func (gr *groupEngagement) ApplyFlair(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload flairRequest
	if err := bindValid(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceFlair, err := do.Invoke[*services.ServiceFlair](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceFlair.ApplyFlair(ctx, user.ID, payload.PostID, payload.FlairID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return respond(c, result.Outcome, result)
}

func (gr *groupEngagement) RemoveFlair(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload flairRequest
	if err := bindValid(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceFlair, err := do.Invoke[*services.ServiceFlair](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceFlair.RemoveFlair(ctx, user.ID, payload.PostID, payload.FlairID)
	if err != nil {
		return httpx.RestAbort(c, nil, serviceError(err))
	}

	return respond(c, result.Outcome, result)
}
