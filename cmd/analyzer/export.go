package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/config"
	"github.com/Kuber-code/Arrakis-Assessment/internal/pipeline"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage/postgres"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Upsert the migration record, slippage samples and vault series into Postgres",
		RunE:  runExport,
	}
	baseFlags(cmd.Flags())
	cmd.Flags().String("vault", config.DefaultVault, "vault address the series belongs to")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN (or DATABASE_URL)")
	cmd.Flags().Int("batch-size", 1000, "rows per DB batch")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadExport(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("%w: pg dsn is required", pipeline.ErrMissingConfig)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN, cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	logger.Info("export start", zap.String("root", cfg.Root), zap.Int("batch_size", cfg.BatchSize))
	return pipeline.Export(ctx, storage.NewLayout(cfg.Root), cfg.Vault, store, logger)
}
