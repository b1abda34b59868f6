// Command function serves a single API request over CGI. Schema migrations are left to
// `newsctl migrate up`; the ranking processor never runs here, so writes refresh rankings inline.
package main

import (
	"flag"
	"net/http/cgi"
	"os"

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

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.NewWithWriter(os.Stderr, "info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// stdout carries the CGI response
	log := logger.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	rankings, err := cache.New(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to ranking cache")
	}
	defer rankings.Close()

	repos := repository.New(db)
	services := service.NewServices(repos, rankings, cfg, log)
	resolver := auth.NewResolver(repos, cfg.Auth, log)

	handler := api.NewFunctionHandler(services, resolver, db, cfg.Server.FunctionPrefix, log)
	if err := cgi.Serve(handler); err != nil {
		log.Error().Err(err).Msg("CGI request failed")
		os.Exit(1)
	}
}
