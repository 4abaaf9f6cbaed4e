package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	pgxadapter "github.com/lborres/apothecary/adapters/pgx"
	"github.com/lborres/apothecary/internal/config"
)

type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Close() error
}

// newMigrator is swapped in tests.
var newMigrator = func(databaseURL string) (migrator, error) {
	return pgxadapter.NewMigrator(databaseURL)
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down|version",
		Short:     "Run database migrations",
		Long:      `Apply or roll back the PostgreSQL schema, or print its current version.`,
		ValidArgs: []string{"up", "down", "version"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE:      runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(nil, configFile)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required")
	}

	m, err := newMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			slog.Warn("error closing migrator", "error", closeErr)
		}
	}()

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil {
			return oops.Code("MIGRATION_FAILED").With("direction", "up").Wrap(err)
		}
		cmd.Println("Migrations applied")
	case "down":
		if err := m.Down(); err != nil {
			return oops.Code("MIGRATION_FAILED").With("direction", "down").Wrap(err)
		}
		cmd.Println("Migrations rolled back")
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return oops.Code("MIGRATION_FAILED").With("direction", "version").Wrap(err)
		}
		if dirty {
			cmd.Printf("Schema version %d (dirty)\n", v)
		} else {
			cmd.Printf("Schema version %d\n", v)
		}
	}
	return nil
}

// migrateUp applies pending migrations before the server starts.
func migrateUp(databaseURL string, logger *slog.Logger) error {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			logger.Warn("error closing migrator", "error", closeErr)
		}
	}()

	if err := m.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("direction", "up").Wrap(err)
	}
	v, _, err := m.Version()
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("direction", "version").Wrap(err)
	}
	logger.Info("database schema up to date", "version", v)
	return nil
}
