package handler

import (
	"net/http"

	"whiteboard/internal/interfaces"
	"whiteboard/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
	"go.uber.org/zap"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
	Metrics   bool
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func New(cfg *Config) (http.Handler, error) {
	logger, err := do.Invoke[*zap.Logger](cfg.Container)
	if err != nil {
		return nil, err
	}
	authentication, err := do.Invoke[*services.Authentication](cfg.Container)
	if err != nil {
		return nil, err
	}
	limiter, err := do.Invoke[interfaces.Limiter](cfg.Container)
	if err != nil {
		return nil, err
	}
	serviceConfig, err := do.Invoke[*services.ServiceConfig](cfg.Container)
	if err != nil {
		return nil, err
	}

	r := echo.New()
	r.HideBanner = true
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Validator = &requestValidator{validator.New()}
	r.Use(RequestLogger(logger.Named("http")))
	r.Use(middleware.Recover())
	if cfg.Metrics {
		r.Use(echoprometheus.NewMiddleware("whiteboard"))
		r.GET("/metrics", echoprometheus.NewHandler())
	}

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "whiteboard")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated request.
		writes := RateLimit(limiter, serviceConfig)

		b := groupBoard{cfg.Container}
		routesAPIv1.GET("/boards", b.ListBoards)
		routesAPIv1.GET("/boards/:board/posts", b.ListPosts)

		p := groupPost{cfg.Container}
		routesAPIv1.POST("/posts", p.CreatePost, writes)
		routesAPIv1.GET("/posts/:post", p.GetPost)
		routesAPIv1.PATCH("/posts/:post", p.UpdatePost, writes)
		routesAPIv1.GET("/posts/:post/comments", p.ListComments)
		routesAPIv1.POST("/posts/:post/comments", p.CreateComment, writes)
		routesAPIv1.POST("/posts/:post/bump", p.Bump, writes)
		routesAPIv1.GET("/posts/:post/flairs", p.GetPostFlairs)
		routesAPIv1.POST("/thumbs", p.ToggleThumb, writes)

		routesAPIv1User := routesAPIv1.Group("/user")
		{
			u := groupUser{cfg.Container}
			routesAPIv1User.GET("/me", u.Me)
			routesAPIv1User.GET("/can-post", u.CanPost)
		}

		routesAPIv1Engagement := routesAPIv1.Group("/engagement")
		{
			e := groupEngagement{cfg.Container}
			routesAPIv1Engagement.GET("/activities", e.GetActivities)
			routesAPIv1Engagement.POST("/check-in", e.CheckIn, writes)
			routesAPIv1Engagement.GET("/currency/history", e.GetCurrencyHistory)
			routesAPIv1Engagement.GET("/achievements", e.GetAchievements)
			routesAPIv1Engagement.POST("/achievements/:achievement/claim", e.ClaimAchievement, writes)
			routesAPIv1Engagement.GET("/gacha", e.GetGachaState)
			routesAPIv1Engagement.POST("/gacha/pull", e.Pull, writes)
			routesAPIv1Engagement.GET("/inventory", e.GetInventory)
			routesAPIv1Engagement.POST("/flairs", e.ApplyFlair, writes)
			routesAPIv1Engagement.DELETE("/flairs", e.RemoveFlair, writes)
		}

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard/streak", l.GetStreakLeaderboard)
	}

	return r, nil
}
