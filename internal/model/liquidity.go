package model

// TickRange is one active liquidity position of the vault module.
type TickRange struct {
	TickLower int32 `json:"tickLower"`
	TickUpper int32 `json:"tickUpper"`
}

func (r TickRange) Width() int32 {
	return r.TickUpper - r.TickLower
}

func (r TickRange) Mid() float64 {
	return (float64(r.TickLower) + float64(r.TickUpper)) / 2
}

// Covers reports whether tick lies in [TickLower, TickUpper).
func (r TickRange) Covers(tick int32) bool {
	return r.TickLower <= tick && tick < r.TickUpper
}

// CoverageBin is the number of ranges overlapping one tick bin.
type CoverageBin struct {
	Tick  int32
	Count int
}

// LiquiditySnapshot is the raw state read for the coverage stage.
type LiquiditySnapshot struct {
	RunID                string      `json:"run_id"`
	BlockNumber          uint64      `json:"block_number"`
	Vault                string      `json:"vault"`
	Module               string      `json:"module"`
	PoolKey              PoolKey     `json:"poolKey"`
	Token0               TokenMeta   `json:"token0"`
	Token1               TokenMeta   `json:"token1"`
	Ranges               []TickRange `json:"ranges"`
	BinWidth             int32       `json:"bin_width"`
	SpotToken1PerToken0  float64     `json:"spot_token1_per_token0,omitempty"`
	EstimatedTick        *int32      `json:"estimated_tick,omitempty"`
	EstimatedTickSnapped *int32      `json:"estimated_tick_snapped,omitempty"`
}
