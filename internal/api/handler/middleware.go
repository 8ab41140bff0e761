package handler

import (
	"context"
	"errors"
	"strings"

	"whiteboard/internal/interfaces"
	"whiteboard/internal/models"
	"whiteboard/internal/pkg/limiter"
	"whiteboard/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
	"go.uber.org/zap"
)

type ctxKey string

var ctxKeyAuthUser ctxKey = "AUTH_USER"

func Authn(verifier interface {
	Validate(token string) (*models.UserFromAuth, error)
},
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}

			parts := strings.Split(header, "Bearer")
			if len(parts) != 2 {
				return next(c)
			}

			token := strings.TrimSpace(parts[1])
			if len(token) == 0 {
				return next(c)
			}

			user, err := verifier.Validate(token)
			if err != nil {
				// although it's a client error, we don't want to detailed information
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("invalid access token"), errorx.Authn), -1)
				return nil
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxKeyAuthUser, user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func authUser(ctx context.Context) (*models.UserFromAuth, bool) {
	user, ok := ctx.Value(ctxKeyAuthUser).(*models.UserFromAuth)
	return user, ok
}

// ResolveValidUser returns the caller and makes sure a profile exists for them.
func ResolveValidUser(ctx context.Context, container *do.Injector) (*models.UserFromAuth, error) {
	user, ok := authUser(ctx)
	if !ok {
		return nil, errorx.Wrap(errors.New("missing session"), errorx.Authn)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if _, err := serviceUser.FindOrCreateProfile(ctx, user); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return user, nil
}

// RateLimit caps authenticated writes per user per minute. Anonymous requests
// pass through and are refused by the handler.
func RateLimit(l interfaces.Limiter, serviceConfig *services.ServiceConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			user, ok := authUser(ctx)
			if !ok {
				return next(c)
			}

			perMinute := serviceConfig.GetInt(ctx, services.CONFIG_WRITE_RATE_LIMIT_PER_MINUTE, services.DEFAULT_WRITE_RATE_LIMIT_PER_MINUTE)
			if perMinute <= 0 {
				return next(c)
			}

			err := l.Allow(ctx, services.LimitKeyUserWrite(user.ID), redis_rate.PerMinute(perMinute))
			if errors.Is(err, limiter.ErrRateLimited) {
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(err, errorx.RateLimiting), -1)
				return nil
			}
			if err != nil {
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(err, errorx.Service), -1)
				return nil
			}
			return next(c)
		}
	}
}

func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}
