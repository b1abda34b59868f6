package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hindinewshub/news-api/internal/auth"
	"github.com/hindinewshub/news-api/internal/authz"
	"github.com/hindinewshub/news-api/internal/cache"
	"github.com/hindinewshub/news-api/internal/config"
	"github.com/hindinewshub/news-api/internal/database"
	"github.com/hindinewshub/news-api/internal/feedimport"
	"github.com/hindinewshub/news-api/internal/models"
	"github.com/hindinewshub/news-api/internal/repository"
	"github.com/hindinewshub/news-api/internal/service"
	"github.com/hindinewshub/news-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	cfg        *config.Config
	log        zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "newsctl",
	Short:        "Operate the Hindi news API",
	Long:         "newsctl runs migrations, manages users and sessions, refreshes rankings, and imports or exports articles.",
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		// stdout is reserved for command output such as exports
		log = logger.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	userCmd.AddCommand(userUpsertCmd, userRoleCmd)
	sessionCmd.AddCommand(sessionCreateCmd)
	rankingsCmd.AddCommand(rankingsRefreshCmd)
	importCmd.AddCommand(importFeedCmd, importNDJSONCmd)
	exportCmd.AddCommand(exportArticlesCmd, exportCommentsCmd)

	rootCmd.AddCommand(migrateCmd, userCmd, sessionCmd, rankingsCmd, importCmd, exportCmd)
}

// app holds the wiring shared by the commands
type app struct {
	db       *database.DB
	repos    *repository.Repositories
	services *service.Services
	rankings cache.RankingCache
}

func openApp() (*app, error) {
	db, err := database.Open(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	rankings, err := cache.New(cfg.Redis.URL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening ranking cache: %w", err)
	}
	repos := repository.New(db)
	return &app{
		db:       db,
		repos:    repos,
		services: service.NewServices(repos, rankings, cfg, log),
		rankings: rankings,
	}, nil
}

func (a *app) Close() {
	a.rankings.Close()
	a.db.Close()
}

// asAuthor returns a context acting as the given user, who must be allowed to create articles
func (a *app) asAuthor(ctx context.Context, userID string) (context.Context, error) {
	if userID == "" {
		return nil, fmt.Errorf("--author is required")
	}
	user, err := a.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading author: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("unknown author %q", userID)
	}
	if !authz.Can(user.Role, authz.CreateArticle) {
		return nil, fmt.Errorf("author %q has role %q; editor or admin required", userID, user.Role)
	}
	return auth.WithIdentity(ctx, &auth.Identity{UserID: user.ID, User: user}), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- migrate command ---

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
}

func openDB() (*database.DB, error) {
	db, err := database.Open(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return db.RunMigrations(cfg.Server.MigrationsPath)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return db.MigrateDown(cfg.Server.MigrationsPath)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		v, dirty, err := db.MigrationVersion(cfg.Server.MigrationsPath)
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return nil
	},
}

// --- user command ---

var (
	userEmail     string
	userFirstName string
	userLastName  string
	userUsername  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userUpsertCmd = &cobra.Command{
	Use:   "upsert <id>",
	Short: "Create or update a user profile. Roles are never changed here.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		in := &models.UpsertUser{ID: args[0]}
		if cmd.Flags().Changed("email") {
			in.Email = &userEmail
		}
		if cmd.Flags().Changed("first-name") {
			in.FirstName = &userFirstName
		}
		if cmd.Flags().Changed("last-name") {
			in.LastName = &userLastName
		}
		if cmd.Flags().Changed("username") {
			in.Username = &userUsername
		}

		user, err := a.services.User.Upsert(cmd.Context(), in)
		if err != nil {
			return err
		}
		return printJSON(user)
	},
}

var userRoleCmd = &cobra.Command{
	Use:   "role <id> <reader|editor|admin>",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.services.User.SetRole(cmd.Context(), args[0], models.Role(args[1])); err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	userUpsertCmd.Flags().StringVar(&userEmail, "email", "", "Email address")
	userUpsertCmd.Flags().StringVar(&userFirstName, "first-name", "", "First name")
	userUpsertCmd.Flags().StringVar(&userLastName, "last-name", "", "Last name")
	userUpsertCmd.Flags().StringVar(&userUsername, "username", "", "Username")
}

// --- session command ---

var sessionTTL time.Duration

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage login sessions",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create <userId>",
	Short: "Create a session and print its id for use as the session cookie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.services.User.CreateSession(cmd.Context(), args[0], sessionTTL)
		if err != nil {
			return err
		}
		fmt.Printf("%s=%s (expires %s)\n", cfg.Auth.SessionCookie, session.SID, session.Expire.Format(time.RFC3339))
		return nil
	},
}

func init() {
	sessionCreateCmd.Flags().DurationVar(&sessionTTL, "ttl", 7*24*time.Hour, "Session lifetime")
}

// --- rankings command ---

var rankingsCmd = &cobra.Command{
	Use:   "rankings",
	Short: "Manage materialized rankings",
}

var rankingsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild every ranking now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		start := time.Now()
		if err := a.services.Ranking.Refresh(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Rankings refreshed in %s\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}

// --- import command ---

var (
	importAuthor   string
	importCategory string
	importRegion   string
	importLimit    int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import articles",
}

var importFeedCmd = &cobra.Command{
	Use:   "feed <url>",
	Short: "Import RSS/Atom items as draft articles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()
		ctx, err = a.asAuthor(ctx, importAuthor)
		if err != nil {
			return err
		}

		importer := feedimport.New(a.services.Article, log)
		result, err := importer.Import(ctx, args[0], feedimport.Options{
			Category: importCategory,
			Region:   importRegion,
			Limit:    importLimit,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Feed: %s\n", result.Feed)
		fmt.Printf("  Items read: %d\n", result.Items)
		fmt.Printf("  Created: %d\n", len(result.Created))
		fmt.Printf("  Skipped: %d\n", result.Skipped)
		for _, f := range result.Failures {
			fmt.Printf("  Failed: %s\n", f)
		}
		return nil
	},
}

var importNDJSONCmd = &cobra.Command{
	Use:   "ndjson <file>",
	Short: "Import articles from an NDJSON file, one article per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		ctx, cancel := signalContext()
		defer cancel()
		ctx, err = a.asAuthor(ctx, importAuthor)
		if err != nil {
			return err
		}

		result, err := a.services.Import.ImportArticles(ctx, f)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	for _, c := range []*cobra.Command{importFeedCmd, importNDJSONCmd} {
		c.Flags().StringVar(&importAuthor, "author", "", "Id of the editor or admin who authors the articles")
	}
	importFeedCmd.Flags().StringVar(&importCategory, "category", "", "Category for every imported item (Hindi value or URL slug)")
	importFeedCmd.Flags().StringVar(&importRegion, "region", "", "Region for every imported item")
	importFeedCmd.Flags().IntVar(&importLimit, "limit", 0, "Maximum number of feed items to read (0 = all)")
}

// --- export command ---

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Stream articles or comments to stdout",
}

var exportArticlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Export every article",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, "articles")
	},
}

var exportCommentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Export every comment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, "comments")
	},
}

func runExport(cmd *cobra.Command, resource string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	if err := a.services.Export.StreamResource(ctx, os.Stdout, resource, exportFormat); err != nil {
		return err
	}
	log.Info().
		Str("resource", resource).
		Str("format", exportFormat).
		Dur("duration", time.Since(start)).
		Msg("Export finished")
	return nil
}

func init() {
	exportCmd.PersistentFlags().StringVar(&exportFormat, "format", "ndjson", "Output format: ndjson or json")
}
