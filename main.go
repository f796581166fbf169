package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"blog/client"
	"blog/config"
	"blog/db"
	"blog/domain"
	"blog/handler"
	"blog/store"
	"blog/web"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "blog.toml", "path to the config file; defaults are used when it does not exist")

	configCmd.AddCommand(configInitCmd, configListCmd)
	rootCmd.AddCommand(serveCmd, webCmd, migrateCmd, seedCmd, configCmd)
}

// setup loads the config and builds the process logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := config.NewLogger(os.Stderr, cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.PostStore, error) {
	s, err := store.NewStoreFromConfig(ctx, cfg.Database, domain.RealClock{}, domain.UUIDGenerator{})
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Database.Type, err)
	}
	return s, nil
}

// serveUntilSignal runs start and shuts e down on SIGINT or SIGTERM.
func serveUntilSignal(ctx context.Context, e *echo.Echo, logger *slog.Logger, start func() error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutting down", "error", err)
		}
	}()

	return start()
}

var rootCmd = &cobra.Command{
	Use:          "blog",
	Short:        "Minimal blog: REST API and web UI",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		s, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		e := handler.NewServer(cfg, &handler.Handler{Store: s, Logger: logger})
		return serveUntilSignal(cmd.Context(), e, logger, func() error {
			return handler.Start(e, cfg, logger)
		})
	},
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the web UI against the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		h := &web.Handler{API: client.New(cfg.Web.APIURL), Logger: logger}
		e := web.NewServer(h)
		return serveUntilSignal(cmd.Context(), e, logger, func() error {
			return web.Start(e, cfg, logger)
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		if cfg.Database.Type == "memory" {
			fmt.Println("Memory store has no schema to migrate")
			return nil
		}

		fmt.Println("Running database schema migrations...")
		s, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		if sq, ok := s.(*store.SQLiteStore); ok {
			version, dirty, err := db.Version(sq.DB(), db.SQLite)
			if err != nil {
				return err
			}
			fmt.Printf("Database schema at version %d (dirty: %t)\n", version, dirty)
			return nil
		}
		fmt.Println("Database schema in latest version")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the welcome posts into an empty store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		s, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := store.SeedIfEmpty(cmd.Context(), s)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("Store already has posts, nothing seeded")
			return nil
		}
		fmt.Printf("Created %d posts\n", n)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath, config.Default()); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		fmt.Printf("Configuration initialized at %s\n", configPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s (with environment overrides):\n\n", configPath)
		fmt.Printf("Env:           %s\n", cfg.Env)
		fmt.Printf("API listen:    %s\n", cfg.Server.Listen)
		fmt.Printf("CORS origins:  %s\n", strings.Join(cfg.CORSOrigins(), ", "))
		fmt.Printf("Database:      %s\n", cfg.Database.Type)
		fmt.Printf("Web listen:    %s\n", cfg.Web.Listen)
		fmt.Printf("Web API URL:   %s\n", cfg.Web.APIURL)
		fmt.Printf("Log:           %s/%s\n", cfg.Log.Level, cfg.Log.Format)
		return nil
	},
}
