package model

const (
	MappingBase0ETH1   = "u0_base_u1_eth"
	MappingETH0Base1   = "u0_eth_u1_base"
	MappingAssumeBase0 = "assume_u0_base_u1_eth"
)

// VaultSample is one reconstructed vault state. Baseline fields are NaN when undefined.
type VaultSample struct {
	BlockNumber       uint64
	Timestamp         uint64
	DatetimeUTC       string
	Underlying0Raw    string
	Underlying1Raw    string
	MappingMode       string
	MappingAmbiguous  bool
	MappingFlip       bool
	BaseSymbol        string
	AmtETH            float64
	AmtBase           float64
	EthUSD            float64
	SpotBasePerETH    float64
	SpotETHPerBase    float64
	BaseUSD           float64
	ValueETHUSD       float64
	ValueBaseUSD      float64
	ValueTotalUSD     float64
	HoldValueUSD      float64
	FullRangeAmtETH   float64
	FullRangeAmtBase  float64
	FullRangeValueUSD float64
	VaultIndex        float64
	HoldIndex         float64
	FullRangeIndex    float64
}

// VaultSummary compares the first and last samples of a series.
type VaultSummary struct {
	T0DatetimeUTC    string
	T1DatetimeUTC    string
	ValueUSDT0       float64
	ValueUSDT1       float64
	VaultIndexT1     float64
	HoldIndexT1      float64
	FullRangeIndexT1 float64
	AmtETHT0         float64
	AmtETHT1         float64
	AmtBaseT0        float64
	AmtBaseT1        float64
	BaseSymbol       string
	MappingMode      string
	MappingFlips     int
	Samples          int
}
