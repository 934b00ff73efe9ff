package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/finproj/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagAddr      string
	flagMaxMonths int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve projections over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().IntVar(&flagMaxMonths, "max-months", 0, "Largest horizon a request may ask for")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = flagAddr
	}
	if cmd.Flags().Changed("max-months") {
		cfg.Server.MaxMonths = flagMaxMonths
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := service.New(service.Config{
		Addr:        cfg.Server.Addr,
		MaxMonths:   cfg.Server.MaxMonths,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
	}, log)

	log.Info("starting projection service",
		zap.String("addr", cfg.Server.Addr),
		zap.Int("max_months", cfg.Server.MaxMonths),
	)
	if err := svc.Run(ctx); err != nil {
		return err
	}
	log.Info("projection service stopped")
	return nil
}
