package model

// SyncEventData is the decoded UniV2 Sync payload.
type SyncEventData struct {
	Reserve0 string `json:"reserve0"`
	Reserve1 string `json:"reserve1"`
}

// MintEventData is the decoded UniV2 Mint payload.
type MintEventData struct {
	Sender  string `json:"sender"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}

// BurnEventData is the decoded UniV2 Burn payload.
type BurnEventData struct {
	Sender  string `json:"sender"`
	To      string `json:"to"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}

// SwapEventData is the decoded UniV2 Swap payload.
type SwapEventData struct {
	Sender     string `json:"sender"`
	To         string `json:"to"`
	Amount0In  string `json:"amount0_in"`
	Amount1In  string `json:"amount1_in"`
	Amount0Out string `json:"amount0_out"`
	Amount1Out string `json:"amount1_out"`
}

// InitializeEventData is the decoded UniV4 PoolManager Initialize payload.
type InitializeEventData struct {
	PoolID       string `json:"pool_id"`
	Currency0    string `json:"currency0"`
	Currency1    string `json:"currency1"`
	Fee          uint32 `json:"fee"`
	TickSpacing  int32  `json:"tick_spacing"`
	Hooks        string `json:"hooks"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
}

// ModifyLiquidityEventData is the decoded UniV4 PoolManager ModifyLiquidity payload.
type ModifyLiquidityEventData struct {
	PoolID         string `json:"pool_id"`
	Sender         string `json:"sender"`
	TickLower      int32  `json:"tick_lower"`
	TickUpper      int32  `json:"tick_upper"`
	LiquidityDelta string `json:"liquidity_delta"`
	Salt           string `json:"salt"`
}
