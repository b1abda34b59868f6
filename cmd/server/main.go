package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hindinewshub/news-api/internal/api"
	"github.com/hindinewshub/news-api/internal/auth"
	"github.com/hindinewshub/news-api/internal/cache"
	"github.com/hindinewshub/news-api/internal/config"
	"github.com/hindinewshub/news-api/internal/database"
	"github.com/hindinewshub/news-api/internal/repository"
	"github.com/hindinewshub/news-api/internal/service"
	"github.com/hindinewshub/news-api/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting Hindi news API server...")

	// Initialize database
	db, err := database.Open(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Server.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Ranking cache
	rankings, err := cache.New(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to ranking cache")
	}
	defer rankings.Close()

	// Initialize repositories and services
	repos := repository.New(db)
	services := service.NewServices(repos, rankings, cfg, log)

	// Start background ranking processor
	go services.Ranking.StartProcessor(context.Background())
	log.Info().Msg("Ranking processor started")

	// Initialize router
	resolver := auth.NewResolver(repos, cfg.Auth, log)
	router := api.NewRouter(services, resolver, db, cfg, log)

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
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
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

	// Stop ranking processor
	services.Ranking.StopProcessor()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
