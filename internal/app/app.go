// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together the config, database, Telegram bot, and the
// background stats refresher, and exposes methods to run them.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chatrep/telegram-reputation-bot/internal/bot"
	"github.com/chatrep/telegram-reputation-bot/internal/platform/config"
	"github.com/chatrep/telegram-reputation-bot/internal/platform/observability"
	"github.com/chatrep/telegram-reputation-bot/internal/platform/worker"
	db "github.com/chatrep/telegram-reputation-bot/internal/storage"
)

// App holds the application dependencies.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.database, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunBot runs the Telegram bot together with the stats gauge refresher.
// BOT_PAUSED=true starts the bot in the paused state; admins can /resume.
func (a *App) RunBot(ctx context.Context) error {
	a.logger.Info().Msg("Starting bot")

	if a.cfg.BotPaused {
		if err := a.database.SetPaused(ctx, true); err != nil {
			return fmt.Errorf("apply initial pause flag: %w", err)
		}

		a.logger.Warn().Msg("bot starts paused")
	}

	b, err := bot.New(a.cfg, a.database, a.logger)
	if err != nil {
		return fmt.Errorf("bot initialization failed: %w", err)
	}

	go a.runStatsRefresher(ctx)

	if err := b.Run(ctx); err != nil {
		return fmt.Errorf("bot run: %w", err)
	}

	return nil
}

// runStatsRefresher keeps the dataset gauges current.
func (a *App) runStatsRefresher(ctx context.Context) {
	err := worker.Loop(ctx, worker.Config{
		Name:         "stats-refresher",
		PollInterval: a.cfg.StatsRefreshInterval,
		Process:      a.refreshStatsGauges,
		Logger:       a.logger,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Warn().Err(err).Msg("stats refresher stopped")
	}
}

func (a *App) refreshStatsGauges(ctx context.Context) error {
	stats, err := a.database.FetchStatistics(ctx)
	if err != nil {
		return fmt.Errorf("refresh stats gauges: %w", err)
	}

	observability.EntriesGauge.Set(float64(stats.TotalEntries))
	observability.ActiveGroupsGauge.Set(float64(stats.ActiveGroups))

	return nil
}
