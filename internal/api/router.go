package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/swachhta/civic-issues/docs"
	"github.com/swachhta/civic-issues/internal/api/handler"
	"github.com/swachhta/civic-issues/internal/api/middleware"
	"github.com/swachhta/civic-issues/internal/core/domain"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Issues      ports.IssueService
	Votes       ports.VoteService
	Scores      ports.ScoreService
	Limiter     ports.RateLimiter
	Profile     ports.ProfileService
	Leaderboard ports.LeaderboardService
	Analytics   ports.AnalyticsService
	Rescore     handler.RescoreDispatcher
	Readiness   *handler.HealthDependenciesHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddleware("civic"))

	// --- Handlers ---
	issueHandler := handler.NewIssueHandler(svc.Issues)
	voteHandler := handler.NewVoteHandler(svc.Votes)
	userHandler := handler.NewUserHandler(svc.Profile, svc.Scores, svc.Limiter, svc.Leaderboard)
	analyticsHandler := handler.NewAnalyticsHandler(svc.Analytics)
	adminHandler := handler.NewAdminHandler(svc.Scores, svc.Rescore)

	auth := middleware.Auth(jwtSecret)
	optionalAuth := middleware.OptionalAuth(jwtSecret)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	if svc.Readiness != nil {
		e.GET("/health/ready", svc.Readiness.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	// --- Issues ---
	v1.GET("/issues", issueHandler.List, optionalAuth)
	v1.GET("/issues/:id", issueHandler.Get, optionalAuth)
	v1.POST("/issues", issueHandler.Create, auth)
	v1.PATCH("/issues/:id", issueHandler.Update, auth)
	v1.DELETE("/issues/:id", issueHandler.Delete, auth)
	v1.GET("/map/issues", issueHandler.Map)

	// --- Votes ---
	v1.POST("/issues/:id/vote", voteHandler.Cast, auth)
	v1.DELETE("/issues/:id/vote", voteHandler.Retract, auth)

	// --- Caller ---
	me := v1.Group("/me", auth)
	me.GET("/issues", issueHandler.Mine)
	me.GET("/stats", userHandler.Stats)
	me.GET("/score", userHandler.Score)
	me.GET("/quota", userHandler.Quota)

	// --- Community ---
	v1.GET("/leaderboard", userHandler.Leaderboard, auth)
	v1.GET("/analytics", analyticsHandler.Summary, auth)

	// --- Admin ---
	admin := v1.Group("/admin", auth, middleware.RBAC(domain.RoleAdmin))
	admin.POST("/users/:id/rescore", adminHandler.Rescore)
	admin.POST("/rescore", adminHandler.RescoreAll)

	return e
}

// requestLogger emits one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
