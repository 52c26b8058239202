package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fazhub/faz-api/internal/config"
	"github.com/fazhub/faz-api/internal/domain/export"
	"github.com/fazhub/faz-api/internal/pkg/database"
)

const batchLimit = 20

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Dur("poll_interval", cfg.ExportPollInterval).
		Int("max_attempts", cfg.ExportMaxAttempts).
		Msg("Starting export-worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	repo := export.NewRepository(db)
	client := export.NewHTTPClient(cfg.FIFAExportURL, cfg.FIFAExportToken)
	notifier := export.NewNotifier(repo, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional: Redis pub/sub wake-up (polling still runs)
	wake := make(chan struct{}, 1)
	if rdb != nil {
		go subscribeWakeups(ctx, rdb, wake)
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	ticker := time.NewTicker(cfg.ExportPollInterval)
	defer ticker.Stop()
	lastIdleLog := time.Time{}
	idleLogEvery := 1 * time.Minute

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("export-worker stopped")
			return
		case <-wake:
			// immediate poll
		case <-ticker.C:
		}

		ids, err := repo.ListRetryable(ctx, cfg.ExportMaxAttempts, batchLimit)
		if err != nil {
			log.Error().Err(err).Msg("DB error while listing retryable exports")
			continue
		}
		if len(ids) == 0 {
			now := time.Now()
			if lastIdleLog.IsZero() || now.Sub(lastIdleLog) >= idleLogEvery {
				log.Info().Msg("Idle: no retryable exports found")
				lastIdleLog = now
			}
			continue
		}

		for _, id := range ids {
			if ctx.Err() != nil {
				break
			}

			start := time.Now()
			err := notifier.Notify(ctx, id)
			switch {
			case err == nil:
				log.Info().
					Str("transfer_id", id.String()).
					Dur("took", time.Since(start)).
					Msg("Export delivered")
			case errors.Is(err, export.ErrExportFailed):
				// Attempt already recorded, the next round retries it.
				log.Warn().
					Err(err).
					Str("transfer_id", id.String()).
					Msg("Export attempt failed")
			default:
				log.Error().
					Err(err).
					Str("transfer_id", id.String()).
					Msg("Export skipped")
			}
		}
	}
}

func subscribeWakeups(ctx context.Context, rdb *redis.Client, wake chan<- struct{}) {
	sub := rdb.Subscribe(ctx, export.WakeChannel)
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Channel():
			// non-blocking wake-up
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
