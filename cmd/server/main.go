package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pocktica/readlater/internal/api"
	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/database"
	"github.com/pocktica/readlater/internal/extractor"
	"github.com/pocktica/readlater/internal/ingest"
	"github.com/pocktica/readlater/internal/repository"
	"github.com/pocktica/readlater/internal/service"
	"github.com/pocktica/readlater/pkg/logger"
)

func main() {
	// A missing .env is fine; the environment may already be set
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log := logger.New(config.LogConfig{})
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	if envErr != nil && !os.IsNotExist(envErr) {
		log.Warn().Err(envErr).Msg("Failed to read .env file")
	}
	log.Info().Msg("Starting read-later server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize external clients
	ext, err := extractor.New(cfg.Extraction, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create content extractor")
	}
	ing, err := ingest.New(cfg.Feed, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create feed ingestor")
	}

	// Initialize services
	services := service.NewServices(repos, ext, ing, cfg, log)

	// Start background save workers
	services.Workers.Start(context.Background())

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("db_driver", db.Driver()).
			Str("extractor", ext.Mode()).
			Str("ingestor", ing.Mode()).
			Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight saves reach a terminal status before the store closes
	services.Workers.Stop()

	log.Info().Msg("Server exited gracefully")
}
