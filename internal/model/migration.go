package model

// SyncPoint is one UniV2 reserve snapshot taken from a Sync event.
type SyncPoint struct {
	BlockNumber uint64  `json:"block_number"`
	TxHash      string  `json:"tx_hash"`
	LogIndex    uint64  `json:"log_index"`
	Timestamp   uint64  `json:"timestamp"`
	Reserve0Raw string  `json:"reserve0_raw"`
	Reserve1Raw string  `json:"reserve1_raw"`
	Reserve0    float64 `json:"reserve0"`
	Reserve1    float64 `json:"reserve1"`
}

// ReserveBin aggregates the quote reserve over one fixed time bin.
type ReserveBin struct {
	BinStart    uint64  `json:"bin_start"`
	Median      float64 `json:"reserve1_median"`
	Min         float64 `json:"reserve1_min"`
	Max         float64 `json:"reserve1_max"`
	BlockMedian uint64  `json:"block_median"`
	BlockMin    uint64  `json:"block_min"`
	BlockMax    uint64  `json:"block_max"`
	Count       int     `json:"n_obs"`
}

// SyncDrop is a quote-reserve decrease between consecutive Sync events.
type SyncDrop struct {
	BlockNumber  uint64  `json:"block_number"`
	TxHash       string  `json:"tx_hash"`
	LogIndex     uint64  `json:"log_index"`
	DatetimeUTC  string  `json:"datetime_utc"`
	Delta        float64 `json:"delta_reserve1"`
	DropFraction float64 `json:"drop_fraction"`
}

// RegimeChange is the best persistent level shift found in the binned reserve series.
type RegimeChange struct {
	BinTimeUTC    string  `json:"bin_time_utc"`
	BlockEstimate uint64  `json:"migration_block_estimate"`
	BeforeLevel   float64 `json:"before_level"`
	AfterLevel    float64 `json:"after_level"`
	Delta         float64 `json:"delta"`
	Persistence   float64 `json:"persistence_score"`
	Confidence    string  `json:"confidence"`
}

// MigrationRule documents the selection rule used for a record.
type MigrationRule struct {
	Description   string  `json:"description"`
	DropThreshold float64 `json:"drop_threshold"`
	ConfirmWindow uint64  `json:"confirm_window_blocks"`
}

// ScanRange is the block range a locator run covered.
type ScanRange struct {
	FromBlock uint64 `json:"from_block"`
	ToBlock   uint64 `json:"to_block"`
	BatchSize uint64 `json:"batch_size"`
}

// MigrationSelection is the chosen migration block with its confirming evidence.
type MigrationSelection struct {
	MigrationBlock   uint64   `json:"migration_block_final"`
	MigrationTimeUTC string   `json:"migration_time_utc"`
	SelectedBy       string   `json:"selected_by"`
	DropFraction     float64  `json:"reserve_drop_fraction"`
	Confirming       EventRef `json:"confirming_event"`
	Destination      EventRef `json:"destination_event"`
}

// MigrationSupport holds the diagnostics recorded next to the selection.
type MigrationSupport struct {
	LargestSyncDrop *SyncDrop     `json:"largest_sync_drop,omitempty"`
	LargestBurn     *EventRef     `json:"largest_burn_in_window,omitempty"`
	RegimeChange    *RegimeChange `json:"regime_change,omitempty"`
}

// MigrationRecord is the final, immutable output of the locator.
type MigrationRecord struct {
	RunID       string             `json:"run_id"`
	GeneratedAt string             `json:"run_ts_utc"`
	Rule        MigrationRule      `json:"rule"`
	Scan        ScanRange          `json:"scan"`
	Source      string             `json:"source_pair"`
	Destination string             `json:"destination_pool_id"`
	Selected    MigrationSelection `json:"selected"`
	Supporting  MigrationSupport   `json:"supporting"`
}

// ConfirmSummary counts source events around the selected block.
type ConfirmSummary struct {
	MigrationBlock uint64         `json:"migration_block"`
	FromBlock      uint64         `json:"from_block"`
	ToBlock        uint64         `json:"to_block"`
	Counts         map[string]int `json:"counts"`
}

// EthUSDPoint is an ETH/USD price read from a UniV3 pool slot0.
type EthUSDPoint struct {
	BlockNumber  uint64  `json:"block_number"`
	Timestamp    uint64  `json:"timestamp"`
	DatetimeUTC  string  `json:"datetime_utc"`
	SqrtPriceX96 string  `json:"sqrt_price_x96"`
	EthUSD       float64 `json:"eth_usd"`
}
