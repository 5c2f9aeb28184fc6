package model

// AddressCheck is the on-chain state of one configured address.
type AddressCheck struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	HasCode  bool   `json:"has_code"`
	CodeSize int    `json:"code_size"`
}

// AddressVerification is the report of the verify stage.
type AddressVerification struct {
	RunID       string         `json:"run_id"`
	GeneratedAt string         `json:"run_ts_utc"`
	RPC         string         `json:"rpc"`
	ChainID     uint64         `json:"chain_id"`
	BlockNumber uint64         `json:"block_number"`
	Checks      []AddressCheck `json:"checks"`
}

// ProbeResult is the outcome of calling one zero-argument selector.
type ProbeResult struct {
	Signature string `json:"signature"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Value     string `json:"value,omitempty"`
	Error     string `json:"error,omitempty"`
}

// InterfaceProbe is the report of the probe stage.
type InterfaceProbe struct {
	BlockNumber uint64        `json:"block_number"`
	Target      string        `json:"target"`
	Results     []ProbeResult `json:"results"`
}
