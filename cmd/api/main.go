package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fazhub/faz-api/internal/config"
	"github.com/fazhub/faz-api/internal/domain/club"
	"github.com/fazhub/faz-api/internal/domain/export"
	"github.com/fazhub/faz-api/internal/domain/player"
	"github.com/fazhub/faz-api/internal/domain/registration"
	"github.com/fazhub/faz-api/internal/domain/sequence"
	"github.com/fazhub/faz-api/internal/domain/transfer"
	"github.com/fazhub/faz-api/internal/middleware"
	"github.com/fazhub/faz-api/internal/pkg/database"
	"github.com/fazhub/faz-api/internal/pkg/jwt"
	"github.com/fazhub/faz-api/internal/pkg/metrics"
	pkgresponse "github.com/fazhub/faz-api/internal/pkg/response"
	"github.com/fazhub/faz-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting FAZ API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret)

	// Document storage is optional in local setups; presign endpoints
	// return 500 until R2 is configured.
	var docStorage storage.DocumentStorage
	if cfg.R2AccountID != "" {
		r2, err := storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create R2 storage")
		}
		docStorage = r2
	} else {
		log.Warn().Msg("R2 not configured, document presigning disabled")
	}

	// ---------- Repositories ----------
	clubRepo := club.NewRepository(db)
	playerRepo := player.NewRepository(db)
	sequenceRepo := sequence.NewRepository(db)
	transferRepo := transfer.NewRepository(db)
	registrationRepo := registration.NewRepository(db)
	exportRepo := export.NewRepository(db)

	// ---------- Services ----------
	transferService := transfer.NewService(transferRepo, clubRepo, playerRepo)

	exportClient := export.NewHTTPClient(cfg.FIFAExportURL, cfg.FIFAExportToken)
	notifier := export.NewNotifier(exportRepo, exportClient)
	if redis != nil {
		notifier.SetWaker(export.NewRedisWaker(redis))
	}
	transferService.SetExportNotifier(notifier)

	registrationService := registration.NewService(registrationRepo, playerRepo, sequenceRepo, registration.IDConfig{
		PlayerPrefix: cfg.PlayerIDPrefix,
		PlayerWidth:  cfg.PlayerIDWidth,
		ReportPrefix: cfg.ReportIDPrefix,
		ReportWidth:  cfg.ReportIDWidth,
	})

	// ---------- Handlers ----------
	transferHandler := transfer.NewHandler(transferService, docStorage)
	registrationHandler := registration.NewHandler(registrationService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(metrics.HTTP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/transfers", transferHandler.Routes(authMiddleware))
		r.Mount("/registrations", registrationHandler.Routes(authMiddleware))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Mount("/transfers", transferHandler.AdminRoutes(authMiddleware))
		r.Mount("/registrations", registrationHandler.AdminRoutes(authMiddleware))
		r.Mount("/reports", registrationHandler.ReportRoutes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
