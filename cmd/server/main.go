// Command server runs the civic issues HTTP API.
//
// @title                       Civic Issues API
// @version                     1.0
// @description                 Civic issue reporting with points, badges, leaderboard and analytics.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swachhta/civic-issues/internal/api"
	"github.com/swachhta/civic-issues/internal/api/handler"
	"github.com/swachhta/civic-issues/internal/core/service"
	"github.com/swachhta/civic-issues/internal/infrastructure/config"
	mongodb "github.com/swachhta/civic-issues/internal/infrastructure/db/mongo"
	redisdb "github.com/swachhta/civic-issues/internal/infrastructure/db/redis"
	"github.com/swachhta/civic-issues/internal/infrastructure/queue"
	"github.com/swachhta/civic-issues/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "civic-api",
	})

	if err := cfg.ValidateServer(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	users := mongodb.NewUserRepository(db)
	issues := mongodb.NewIssueRepository(db)
	ledger := mongodb.NewActivityLedger(db)
	analyticsRepo := mongodb.NewAnalyticsRepository(db)
	counters := redisdb.NewCounterStore(rdb)

	// --- Services ---
	scores := service.NewScoreService(users, ledger, log)
	limiter := service.NewRateLimiter(counters, cfg.RateLimit.Max, cfg.RateLimit.Window, log)

	dispatcher := queue.NewDispatcher(cfg.Rescore.Workers, scores, users, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Services{
		Issues:      service.NewIssueService(issues, ledger, limiter, scores, log),
		Votes:       service.NewVoteService(issues, ledger, scores, log),
		Scores:      scores,
		Limiter:     limiter,
		Profile:     service.NewProfileService(users, issues, ledger, scores),
		Leaderboard: service.NewLeaderboardService(users, scores, cfg.Leaderboard.Size, log),
		Analytics:   service.NewAnalyticsService(analyticsRepo),
		Rescore:     dispatcher,
		Readiness:   handler.NewHealthDependenciesHandler(db, rdb),
	}, cfg.JWTSecret, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	stats := dispatcher.Wait()
	log.Info().Int64("rescored", stats.Processed).Int64("rescore_failed", stats.Failed).Msg("server stopped")
}
