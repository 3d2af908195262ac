// Package commands is the parcel-shipping CLI: the site API, the mailer and maintenance tasks.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"parcel-shipping-service/config"
	"parcel-shipping-service/core"
	"parcel-shipping-service/database"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "parcel-shipping",
	Short: "Parcel shipping service",
	Long: `Parcel shipping service runs the shipment tracking and operator API (serve),
the email notification service (mailer), and maintenance tasks against the
shipments database (migrate, export).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional config file layered under the environment")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openDatabase returns the connection and a func that closes it.
func openDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	if cfg.Database.DSN == "" {
		return nil, nil, fmt.Errorf("missing required settings: DATABASE_DSN")
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}

func newLogger(cfg *config.Config, service string) (*zap.Logger, error) {
	logger, err := core.NewLogger(cfg, service)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
