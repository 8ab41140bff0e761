package handler

import (
	"errors"
	"net/http"
	"strconv"

	"whiteboard/internal/datastore"
	"whiteboard/internal/services"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
)

// serviceError maps engine errors onto the toolkit error kinds.
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrContentRequired),
		errors.Is(err, services.ErrContentTooLong),
		errors.Is(err, services.ErrInvalidThumbTarget),
		errors.Is(err, services.ErrInvalidCollection),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidActivity):
		return errorx.Wrap(err, errorx.Validation)
	case errors.Is(err, services.ErrBoardNotFound),
		errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrCollectionNotFound),
		errors.Is(err, services.ErrAchievementNotFound),
		errors.Is(err, services.ErrFlairNotFound),
		errors.Is(err, datastore.ErrNotFound):
		return errorx.Wrap(err, errorx.NotExist)
	case errors.Is(err, services.ErrUserLocked):
		return errorx.Wrap(err, errorx.RateLimiting)
	}
	return errorx.Wrap(err, errorx.Service)
}

func rejectionStatus(code string) int {
	switch code {
	case services.CodeForbidden, services.CodeNotOwner:
		return http.StatusForbidden
	case services.CodeAlreadyPostedToday:
		return http.StatusTooManyRequests
	}
	return http.StatusBadRequest
}

// respond writes data through the toolkit envelope when the mutation went
// through, and as a plain JSON body with a 4xx status when it was refused.
func respond(c echo.Context, outcome services.Outcome, data interface{}) error {
	if outcome.Rejected() {
		return c.JSON(rejectionStatus(outcome.Code), data)
	}
	return httpx.RestAbort(c, data, nil)
}

func paramUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errorx.Wrap(errors.New(name+" must be a uuid"), errorx.Invalid)
	}
	return id, nil
}

func queryInt(c echo.Context, name string, defaultValue int) int {
	value, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return defaultValue
	}
	return value
}

// bindValid binds the request body and runs the struct validator on it.
func bindValid(c echo.Context, payload interface{}) error {
	if err := c.Bind(payload); err != nil {
		return errorx.Wrap(err, errorx.Invalid)
	}
	if err := c.Validate(payload); err != nil {
		return errorx.Wrap(err, errorx.Validation)
	}
	return nil
}
