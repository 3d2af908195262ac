package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"parcel-shipping-service/core"
	"parcel-shipping-service/mailer"
)

var mailerCmd = &cobra.Command{
	Use:   "mailer",
	Short: "Start the email notification service",
	RunE:  runMailer,
}

func init() {
	rootCmd.AddCommand(mailerCmd)
}

func runMailer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateMailer(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, "mailer")
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	transport, err := mailer.NewSMTPTransport(cfg.Mailer.SMTP, logger)
	if err != nil {
		return err
	}

	probe := mailer.NewProbe(transport, cfg.Mailer.ProbeSchedule, logger)
	server := mailer.NewServer(cfg.Mailer, transport, probe, logger)
	orchestrator := core.NewOrchestrator(logger, []core.Worker{probe})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orchestrator.RunNow()
		return runOrchestrator(gctx, orchestrator)
	})
	g.Go(func() error {
		return server.Run(gctx, cfg.Mailer.Addr)
	})

	err = g.Wait()
	logger.Info("Mailer stopped", zap.Error(err))
	return err
}
