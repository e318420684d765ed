// Command rescore backfills score fields on legacy user documents and
// reconciles every user's points and badges with the activity ledger.
//
//	rescore                      # backfill, then rescore everyone
//	rescore --user <id>          # rescore a single user
//	rescore --workers 8 --timeout 30m --skip-backfill
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/swachhta/civic-issues/internal/core/ports"
	"github.com/swachhta/civic-issues/internal/core/service"
	"github.com/swachhta/civic-issues/internal/infrastructure/config"
	mongodb "github.com/swachhta/civic-issues/internal/infrastructure/db/mongo"
	"github.com/swachhta/civic-issues/internal/infrastructure/queue"
	"github.com/swachhta/civic-issues/pkg/logger"
)

type options struct {
	userID       string
	workers      int
	timeout      time.Duration
	skipBackfill bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var opts options
	flags := pflag.NewFlagSet("rescore", pflag.ExitOnError)
	flags.StringVar(&opts.userID, "user", "", "rescore only this user id")
	flags.IntVar(&opts.workers, "workers", cfg.Rescore.Workers, "number of rescore workers")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Minute, "abort the run after this long")
	flags.BoolVar(&opts.skipBackfill, "skip-backfill", false, "do not initialise missing points and badges")
	_ = flags.Parse(os.Args[1:])

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "civic-rescore",
	})

	if err := run(ctx, cfg, opts, log); err != nil {
		log.Error().Err(err).Msg("rescore failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	users := mongodb.NewUserRepository(db)
	scores := service.NewScoreService(users, mongodb.NewActivityLedger(db), log)

	if !opts.skipBackfill {
		touched, err := users.BackfillScoreFields(ctx)
		if err != nil {
			return fmt.Errorf("backfill: %w", err)
		}
		log.Info().Int64("documents", touched).Msg("score fields backfilled")
	}

	if opts.userID != "" {
		snap, err := scores.Reconcile(ctx, opts.userID)
		if err != nil {
			return fmt.Errorf("rescore %s: %w", opts.userID, err)
		}
		log.Info().
			Str("user_id", opts.userID).
			Int("points", snap.Points).
			Strs("badges", snap.Badges).
			Msg("user rescored")
		return nil
	}

	return rescoreAll(ctx, users, scores, opts.workers, log)
}

func rescoreAll(ctx context.Context, users ports.UserStore, scores ports.ScoreService, workers int, log zerolog.Logger) error {
	dispatcher := queue.NewDispatcher(workers, scores, users, log)
	dispatcher.Start(ctx)

	submitted := 0
	iterErr := users.ForEachUserID(ctx, func(userID string) error {
		if err := dispatcher.Submit(ctx, userID); err != nil {
			return err
		}
		submitted++
		return nil
	})

	stats := dispatcher.Wait()
	log.Info().
		Int("submitted", submitted).
		Int64("rescored", stats.Processed).
		Int64("failed", stats.Failed).
		Msg("rescore finished")

	if iterErr != nil {
		return fmt.Errorf("iterate users: %w", iterErr)
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d users failed to rescore", stats.Failed, submitted)
	}
	if int64(submitted) != stats.Processed {
		return fmt.Errorf("rescore interrupted after %d of %d users", stats.Processed, submitted)
	}
	return nil
}
