// Package cmd holds the clinic-admin command line: the HTTP server and its maintenance tasks.
package cmd

import (
	"fmt"
	"os"

	"github.com/ariebrainware/clinic-admin/config"
	"github.com/ariebrainware/clinic-admin/model"
	"github.com/ariebrainware/clinic-admin/util"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "clinic-admin",
		Short:         "Clinic admin dashboard service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.LoadConfig()
			util.InitLogger(cfg.LogLevel, cfg.GinMode)
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(reconcileCmd())

	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		logger := util.Logger()
		logger.Error().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// localModels are the tables this service owns.
func localModels() []interface{} {
	return []interface{}{
		&model.Role{},
		&model.User{},
		&model.Session{},
		&model.SecurityLog{},
		&model.Feedback{},
	}
}

func migrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(localModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := model.SeedRoles(db); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the local tables and seed roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.ConnectMySQL()
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			if err := migrateSchema(db); err != nil {
				return err
			}
			logger := util.Logger()
			logger.Info().Msg("migrations applied")
			return nil
		},
	}
}
