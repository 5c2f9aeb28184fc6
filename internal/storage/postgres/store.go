package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kuber-code/Arrakis-Assessment/internal/model"
)

const defaultBatchSize = 1000

const schema = `
CREATE TABLE IF NOT EXISTS migration_records (
	source_pair          TEXT NOT NULL,
	destination_pool_id  TEXT NOT NULL,
	run_id               TEXT NOT NULL,
	migration_block      BIGINT NOT NULL,
	migration_time_utc   TEXT NOT NULL,
	selected_by          TEXT NOT NULL,
	reserve_drop_fraction DOUBLE PRECISION NOT NULL,
	record               JSONB NOT NULL,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (source_pair, destination_pool_id)
);

CREATE TABLE IF NOT EXISTS slippage_observations (
	venue_period     TEXT NOT NULL,
	block_number     BIGINT NOT NULL,
	direction        TEXT NOT NULL,
	usd_notional_in  DOUBLE PRECISION NOT NULL,
	ts               BIGINT NOT NULL,
	datetime_utc     TEXT NOT NULL,
	amount_in        DOUBLE PRECISION NOT NULL,
	amount_in_unit   TEXT NOT NULL,
	amount_out       DOUBLE PRECISION NOT NULL,
	amount_out_unit  TEXT NOT NULL,
	spot_price       DOUBLE PRECISION NOT NULL,
	avg_exec_price   DOUBLE PRECISION NOT NULL,
	slippage_pct     DOUBLE PRECISION NOT NULL,
	fee_rate         DOUBLE PRECISION NOT NULL,
	fee_uint24       INTEGER,
	tick_spacing     INTEGER,
	hooks            TEXT,
	gas_estimate     BIGINT,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (venue_period, block_number, direction, usd_notional_in)
);

CREATE TABLE IF NOT EXISTS vault_samples (
	vault                  TEXT NOT NULL,
	block_number           BIGINT NOT NULL,
	ts                     BIGINT NOT NULL,
	datetime_utc           TEXT NOT NULL,
	underlying0_raw        NUMERIC NOT NULL,
	underlying1_raw        NUMERIC NOT NULL,
	mapping_mode           TEXT NOT NULL,
	mapping_ambiguous      BOOLEAN NOT NULL,
	mapping_flip           BOOLEAN NOT NULL,
	base_symbol            TEXT NOT NULL,
	amt_eth                DOUBLE PRECISION NOT NULL,
	amt_base               DOUBLE PRECISION NOT NULL,
	eth_usd                DOUBLE PRECISION NOT NULL,
	value_total_usd        DOUBLE PRECISION NOT NULL,
	hold_value_usd         DOUBLE PRECISION NOT NULL,
	full_range_value_usd   DOUBLE PRECISION NOT NULL,
	vault_index            DOUBLE PRECISION NOT NULL,
	hold_index             DOUBLE PRECISION NOT NULL,
	full_range_index       DOUBLE PRECISION NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (vault, block_number)
);
`

// Store persists pipeline artifacts in Postgres.
type Store struct {
	pool      *pgxpool.Pool
	batchSize int
}

func NewStore(ctx context.Context, dsn string, batchSize int) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, batchSize: batchSize}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// UpsertMigration inserts or replaces the record for its source pair and destination pool.
func (s *Store) UpsertMigration(ctx context.Context, record model.MigrationRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal migration record: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO migration_records (
			source_pair, destination_pool_id, run_id, migration_block, migration_time_utc,
			selected_by, reserve_drop_fraction, record
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
		ON CONFLICT (source_pair, destination_pool_id)
		DO UPDATE SET
			run_id = EXCLUDED.run_id,
			migration_block = EXCLUDED.migration_block,
			migration_time_utc = EXCLUDED.migration_time_utc,
			selected_by = EXCLUDED.selected_by,
			reserve_drop_fraction = EXCLUDED.reserve_drop_fraction,
			record = EXCLUDED.record,
			updated_at = now()
	`,
		record.Source,
		record.Destination,
		record.RunID,
		int64(record.Selected.MigrationBlock),
		record.Selected.MigrationTimeUTC,
		record.Selected.SelectedBy,
		record.Selected.DropFraction,
		string(payload),
	)
	return err
}

// UpsertSlippage inserts or updates observations of one venue period. Pool columns stay NULL
// for UniV2 rows.
func (s *Store) UpsertSlippage(ctx context.Context, venue string, observations []model.SlippageObservation) error {
	return s.sendBatches(ctx, len(observations), func(batch *pgx.Batch, i int) {
		o := observations[i]
		var fee, spacing *int32
		var hooks *string
		var gas *int64
		if venue == model.VenueUniV4Post {
			f, t, h, g := int32(o.FeeUint24), o.TickSpacing, o.Hooks, int64(o.GasEstimate)
			fee, spacing, hooks, gas = &f, &t, &h, &g
		}
		batch.Queue(`
			INSERT INTO slippage_observations (
				venue_period, block_number, direction, usd_notional_in, ts, datetime_utc,
				amount_in, amount_in_unit, amount_out, amount_out_unit, spot_price, avg_exec_price,
				slippage_pct, fee_rate, fee_uint24, tick_spacing, hooks, gas_estimate
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
			ON CONFLICT (venue_period, block_number, direction, usd_notional_in)
			DO UPDATE SET
				ts = EXCLUDED.ts,
				datetime_utc = EXCLUDED.datetime_utc,
				amount_in = EXCLUDED.amount_in,
				amount_in_unit = EXCLUDED.amount_in_unit,
				amount_out = EXCLUDED.amount_out,
				amount_out_unit = EXCLUDED.amount_out_unit,
				spot_price = EXCLUDED.spot_price,
				avg_exec_price = EXCLUDED.avg_exec_price,
				slippage_pct = EXCLUDED.slippage_pct,
				fee_rate = EXCLUDED.fee_rate,
				fee_uint24 = EXCLUDED.fee_uint24,
				tick_spacing = EXCLUDED.tick_spacing,
				hooks = EXCLUDED.hooks,
				gas_estimate = EXCLUDED.gas_estimate,
				updated_at = now()
		`,
			venue,
			int64(o.BlockNumber),
			o.Direction,
			o.USDNotionalIn,
			int64(o.Timestamp),
			o.DatetimeUTC,
			o.AmountIn,
			o.AmountInUnit,
			o.AmountOut,
			o.AmountOutUnit,
			o.SpotPrice,
			o.AvgExecPrice,
			o.SlippagePct,
			o.FeeRate,
			fee,
			spacing,
			hooks,
			gas,
		)
	})
}

// UpsertVaultSamples inserts or updates the vault series. Raw underlying amounts are stored as
// NUMERIC text to keep full precision.
func (s *Store) UpsertVaultSamples(ctx context.Context, vault string, samples []model.VaultSample) error {
	return s.sendBatches(ctx, len(samples), func(batch *pgx.Batch, i int) {
		v := samples[i]
		batch.Queue(`
			INSERT INTO vault_samples (
				vault, block_number, ts, datetime_utc, underlying0_raw, underlying1_raw,
				mapping_mode, mapping_ambiguous, mapping_flip, base_symbol, amt_eth, amt_base,
				eth_usd, value_total_usd, hold_value_usd, full_range_value_usd,
				vault_index, hold_index, full_range_index
			) VALUES ($1,$2,$3,$4,$5::numeric,$6::numeric,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			ON CONFLICT (vault, block_number)
			DO UPDATE SET
				ts = EXCLUDED.ts,
				datetime_utc = EXCLUDED.datetime_utc,
				underlying0_raw = EXCLUDED.underlying0_raw,
				underlying1_raw = EXCLUDED.underlying1_raw,
				mapping_mode = EXCLUDED.mapping_mode,
				mapping_ambiguous = EXCLUDED.mapping_ambiguous,
				mapping_flip = EXCLUDED.mapping_flip,
				base_symbol = EXCLUDED.base_symbol,
				amt_eth = EXCLUDED.amt_eth,
				amt_base = EXCLUDED.amt_base,
				eth_usd = EXCLUDED.eth_usd,
				value_total_usd = EXCLUDED.value_total_usd,
				hold_value_usd = EXCLUDED.hold_value_usd,
				full_range_value_usd = EXCLUDED.full_range_value_usd,
				vault_index = EXCLUDED.vault_index,
				hold_index = EXCLUDED.hold_index,
				full_range_index = EXCLUDED.full_range_index,
				updated_at = now()
		`,
			vault,
			int64(v.BlockNumber),
			int64(v.Timestamp),
			v.DatetimeUTC,
			v.Underlying0Raw,
			v.Underlying1Raw,
			v.MappingMode,
			v.MappingAmbiguous,
			v.MappingFlip,
			v.BaseSymbol,
			v.AmtETH,
			v.AmtBase,
			v.EthUSD,
			v.ValueTotalUSD,
			v.HoldValueUSD,
			v.FullRangeValueUSD,
			v.VaultIndex,
			v.HoldIndex,
			v.FullRangeIndex,
		)
	})
}

// CountRows returns the number of rows in one of the store's tables.
func (s *Store) CountRows(ctx context.Context, table string) (int64, error) {
	switch table {
	case "migration_records", "slippage_observations", "vault_samples":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// sendBatches queues n statements in batches of batchSize and executes each batch.
func (s *Store) sendBatches(ctx context.Context, n int, queue func(batch *pgx.Batch, i int)) error {
	for start := 0; start < n; start += s.batchSize {
		end := min(start+s.batchSize, n)
		batch := &pgx.Batch{}
		for i := start; i < end; i++ {
			queue(batch, i)
		}

		br := s.pool.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("batch row %d: %w", i, err)
			}
		}
		if err := br.Close(); err != nil {
			return err
		}
	}
	return nil
}
