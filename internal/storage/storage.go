package storage

import (
	"errors"
	"path/filepath"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

// ErrMissingArtifact is returned when a stage input has not been produced yet.
var ErrMissingArtifact = errors.New("missing artifact")

// EventSink receives decoded events.
type EventSink interface {
	PutEvents(events []model.TypedEvent) error
}

// Layout resolves artifact paths under one root directory.
type Layout struct {
	Root string
}

func NewLayout(root string) Layout {
	if root == "" {
		root = "."
	}
	return Layout{Root: root}
}

func (l Layout) Raw(name string) string       { return filepath.Join(l.Root, "data", "raw", name) }
func (l Layout) Processed(name string) string { return filepath.Join(l.Root, "data", "processed", name) }
func (l Layout) Figure(name string) string    { return filepath.Join(l.Root, "figures", name) }
func (l Layout) Report(name string) string    { return filepath.Join(l.Root, "reports", name) }

// Artifact names shared by producing and consuming stages.
const (
	AddressVerification = "address_verification.json"
	PairMetadata        = "univ2_pair_metadata.json"
	MigrationRecord     = "migration_block_final.json"
	MigrationEvents     = "migration_window_events.jsonl"
	LiquiditySnapshot   = "univ4_liquidity_distribution_snapshot.json"
	InterfaceProbe      = "vault_interface_probe.json"

	SyncTimeseries       = "univ2_sync_timeseries.csv"
	ReserveBins          = "univ2_reserve1_binned_30m.csv"
	RegimeChange         = "migration_regime_change.json"
	ConfirmBurns         = "migration_confirm_burns.csv"
	ConfirmSwaps         = "migration_confirm_swaps.csv"
	ConfirmSummary       = "migration_confirm_summary.json"
	EthUSDSeries         = "eth_usd_univ3_slot0.csv"
	SlippagePre          = "univ2_slippage_pre_usd.csv"
	SlippagePost         = "univ4_slippage_post_usd.csv"
	ExecutionSummary     = "execution_quality_summary.csv"
	ExecutionComparison  = "execution_quality_comparison.csv"
	ActiveRanges         = "univ4_active_ranges.csv"
	RangeCoverage        = "univ4_range_coverage.csv"
	VaultTimeseries      = "vault_timeseries.csv"
	VaultSummary         = "vault_performance_summary.csv"
	ExecutionReport      = "execution_quality.md"
	VaultReport          = "vault_performance.md"
	FigureActiveRanges   = "univ4_active_ranges.png"
	FigureCoverage       = "univ4_liquidity_distribution_coverage.png"
	FigureVaultAmounts   = "vault_token_amounts_over_time.png"
	FigureVaultValue     = "vault_value_composition_over_time.png"
	FigureVaultIndices   = "vault_performance_index.png"
	FigureSlippagePrefix = "execution_quality_slippage_"
)
