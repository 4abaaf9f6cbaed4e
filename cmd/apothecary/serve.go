package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/lborres/apothecary"
	fiberadapter "github.com/lborres/apothecary/adapters/fiber"
	pgxadapter "github.com/lborres/apothecary/adapters/pgx"
	"github.com/lborres/apothecary/internal/config"
	"github.com/lborres/apothecary/internal/logging"
	"github.com/lborres/apothecary/internal/observability"
	"github.com/lborres/apothecary/pkg/store/memory"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. Settings come from the config file, a .env
file, environment variables and flags, later sources winning.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().Int("port", 3000, "HTTP listen port")
	cmd.Flags().String("store", config.StorePostgres, "store backend (postgres or memory)")
	cmd.Flags().String("metrics-addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logging.SetDefault("apothecary", version, cfg.Log.Format)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		metrics   *observability.Metrics
		obsServer *observability.Server
		obsErrCh  <-chan error
	)
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, store.Ping, logger)
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return err
		}
		metrics = obsServer.Metrics()
	}

	app, err := newServer(cfg, store, metrics, logger)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()
	logger.Info("api server started", "addr", addr, "store", cfg.Store)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-listenErr:
		runErr = oops.Code("SERVER_LISTEN_FAILED").With("addr", addr).Wrap(err)
	case err := <-obsErrCh:
		runErr = oops.Code("OBSERVABILITY_FAILED").Wrap(err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}

// openStore returns the configured store and a function releasing it.
// The postgres schema is migrated first when auto_migrate is set.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (apothecary.Storage, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory store, data is lost on exit")
		return memory.New(), func() {}, nil
	}

	if cfg.AutoMigrate {
		if err := migrateUp(cfg.DatabaseURL, logger); err != nil {
			return nil, nil, err
		}
	}

	pool, err := pgxadapter.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store := pgxadapter.New(pool)
	return store, store.Close, nil
}

// newServer assembles the fiber app with every API route mounted.
// metrics may be nil.
func newServer(cfg *config.Config, store apothecary.Storage, metrics *observability.Metrics, logger *slog.Logger) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:      "apothecary",
		ErrorHandler: fiberadapter.ErrorHandler(logger),
	})
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	var opts []fiberadapter.Option
	if metrics != nil {
		opts = append(opts, fiberadapter.WithObserver(metrics))
	}

	_, err := apothecary.New(apothecary.Config{
		Secret:  cfg.JWTSecret,
		Storage: store,
		HTTP:    fiberadapter.New(app, opts...),
		SessionConfig: &apothecary.SessionConfig{
			CookieName:   cfg.Cookie.Name,
			CookieSecure: cfg.Cookie.Secure,
		},
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})
	if err != nil {
		return nil, oops.Code("APP_INIT_FAILED").Wrap(err)
	}
	return app, nil
}
