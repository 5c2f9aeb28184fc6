package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
	"github.com/Kuber-code/Arrakis-Assessment/internal/slippage"
	"github.com/Kuber-code/Arrakis-Assessment/internal/storage"
	"github.com/Kuber-code/Arrakis-Assessment/internal/vault"
)

// Exporter stores pipeline artifacts in a database.
type Exporter interface {
	Migrate(ctx context.Context) error
	UpsertMigration(ctx context.Context, record model.MigrationRecord) error
	UpsertSlippage(ctx context.Context, venue string, observations []model.SlippageObservation) error
	UpsertVaultSamples(ctx context.Context, vault string, samples []model.VaultSample) error
}

// Export copies the migration record, both slippage samples and the vault series into store.
// The record is required; a missing slippage or vault artifact is skipped.
func Export(ctx context.Context, layout storage.Layout, vaultAddress string, store Exporter, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var record model.MigrationRecord
	if err := storage.ReadJSON(layout.Raw(storage.MigrationRecord), &record); err != nil {
		return err
	}
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	if err := store.UpsertMigration(ctx, record); err != nil {
		return err
	}

	venues := []struct {
		venue string
		name  string
	}{
		{model.VenueUniV2Pre, storage.SlippagePre},
		{model.VenueUniV4Post, storage.SlippagePost},
	}
	for _, v := range venues {
		table, err := storage.ReadCSV(layout.Processed(v.name))
		if errors.Is(err, ErrMissingArtifact) {
			logger.Warn("export skipped", zap.String("artifact", v.name))
			continue
		}
		if err != nil {
			return err
		}
		observations, err := slippage.ReadObservations(table)
		if err != nil {
			return err
		}
		if err := store.UpsertSlippage(ctx, v.venue, observations); err != nil {
			return err
		}
		logger.Info("slippage exported", zap.String("venue", v.venue), zap.Int("rows", len(observations)))
	}

	table, err := storage.ReadCSV(layout.Processed(storage.VaultTimeseries))
	if errors.Is(err, ErrMissingArtifact) {
		logger.Warn("export skipped", zap.String("artifact", storage.VaultTimeseries))
		return nil
	}
	if err != nil {
		return err
	}
	samples, err := vault.ReadSamples(table)
	if err != nil {
		return err
	}
	if err := store.UpsertVaultSamples(ctx, vaultAddress, samples); err != nil {
		return err
	}
	logger.Info("vault series exported", zap.Int("rows", len(samples)))
	return nil
}
