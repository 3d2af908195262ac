package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"parcel-shipping-service/api"
	"parcel-shipping-service/core"
	"parcel-shipping-service/notifications"
	"parcel-shipping-service/shipments/repositories"
	"parcel-shipping-service/shipments/services"
	"parcel-shipping-service/shipments/tracking"
	overdue "parcel-shipping-service/workers/shipments"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tracking and operator API",
	Long: `Start the site API which provides:
- public shipment tracking and price quotes
- the operator console endpoints (create, edit, delete, receipts, exports)
- a periodic sweep flagging shipments past their expected delivery date`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply schema migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateSite(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, "site")
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := repositories.NewRepository(db)
	if autoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}

	generator, err := tracking.NewDateGenerator(cfg.Site.TrackingPrefix, repo.TrackingNumberExists)
	if err != nil {
		return err
	}

	var notifier notifications.Notifier = notifications.NewNoop(logger)
	if cfg.Site.MailerURL != "" {
		notifier = notifications.NewClient(cfg.Site.MailerURL, cfg.Site.MailerTimeout, logger)
	} else {
		logger.Warn("MAILER_URL not set, shipment emails are disabled")
	}

	service := services.NewShipmentService(repo, generator, notifier, logger)
	sweeper := overdue.NewOverdueWorker(logger, repo, cfg.Site.OverdueSchedule)
	server := api.NewServer(cfg.Site, service, repo, sweeper, logger)
	orchestrator := core.NewOrchestrator(logger, []core.Worker{sweeper})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runOrchestrator(gctx, orchestrator)
	})
	g.Go(func() error {
		return server.Run(gctx, cfg.Site.Addr)
	})

	err = g.Wait()
	logger.Info("Site stopped", zap.Error(err))
	return err
}

func runOrchestrator(ctx context.Context, o *core.Orchestrator) error {
	c, err := o.Start(ctx)
	if err != nil {
		return err
	}
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
