package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"parcel-shipping-service/notifications"
	"parcel-shipping-service/shipments/exports"
	"parcel-shipping-service/shipments/models"
	"parcel-shipping-service/shipments/repositories"
	"parcel-shipping-service/shipments/services"
)

var (
	exportOut    string
	exportStatus string
	exportSearch string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write shipments to an .xlsx spreadsheet",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "shipments.xlsx", "output file")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "only shipments with this status")
	exportCmd.Flags().StringVar(&exportSearch, "search", "", "match tracking number, sender or receiver")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	status := models.ShipmentStatus(exportStatus)
	if status != "" && !status.Valid() {
		return fmt.Errorf("unknown status %q", exportStatus)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, "export")
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

	service := services.NewShipmentService(repositories.NewRepository(db), nil, notifications.NewNoop(logger), logger)
	shipments, err := service.Export(cmd.Context(), repositories.ListFilter{Status: status, Search: exportSearch})
	if err != nil {
		return err
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}
	defer f.Close()

	if err := exports.WriteShipments(f, shipments); err != nil {
		return err
	}

	logger.Info("Shipments exported", zap.Int("count", len(shipments)), zap.String("file", exportOut))
	return nil
}
