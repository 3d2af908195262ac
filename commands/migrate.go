package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"parcel-shipping-service/shipments/repositories"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the shipments and tracking_events tables",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, "migrate")
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	db, closeDB, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := repositories.NewRepository(db).Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	logger.Info("Schema is up to date")
	return nil
}
