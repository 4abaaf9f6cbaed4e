package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the apothecary CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apothecary",
		Short: "Apothecary - potion catalog API",
		Long: `Apothecary serves a potion catalog with analytics and cookie based
user sessions over PostgreSQL or an in-memory store.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
