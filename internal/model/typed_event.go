package model

// TypedEvent is a decoded contract event with its chain position.
type TypedEvent struct {
	BlockNumber uint64      `json:"block_number"`
	TxHash      string      `json:"tx_hash"`
	LogIndex    uint64      `json:"log_index"`
	Address     string      `json:"address"`
	EventName   string      `json:"event_name"`
	Timestamp   uint64      `json:"timestamp,omitempty"`
	Decoded     interface{} `json:"decoded"`
}

// Ref returns the position of the event without its payload.
func (e TypedEvent) Ref() EventRef {
	return EventRef{
		Event:       e.EventName,
		BlockNumber: e.BlockNumber,
		TxHash:      e.TxHash,
		LogIndex:    e.LogIndex,
		Address:     e.Address,
	}
}

// EventRef points at one log entry on chain.
type EventRef struct {
	Event       string `json:"event"`
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	Address     string `json:"address"`
	Amount      string `json:"amount,omitempty"`
}

// Before orders refs by block then log index.
func (r EventRef) Before(other EventRef) bool {
	if r.BlockNumber != other.BlockNumber {
		return r.BlockNumber < other.BlockNumber
	}
	return r.LogIndex < other.LogIndex
}
