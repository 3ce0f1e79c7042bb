package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// SettlementInstruction is the net token movement the host runtime must execute
// for a completed pool operation.
type SettlementInstruction struct {
	Pulls  []Transfer `json:"pulls"`  // taken from the caller into the pool account
	Pushes []Transfer `json:"pushes"` // paid from the pool account to the caller
}

type Transfer struct {
	Denom  string      `json:"denom"`
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount sdkmath.Int `json:"amount"`
}

// AllocationReceipt records the outcome of one yield-allocation pass over a market.
type AllocationReceipt struct {
	CycleID   string    `json:"cycle_id"`
	MarketID  MarketID  `json:"market_id"`
	Timestamp time.Time `json:"timestamp"`

	ElapsedSeconds int64       `json:"elapsed_seconds"`
	InterestDue    sdkmath.Int `json:"interest_due"`
	TotalFees      sdkmath.Int `json:"total_fees"`
	Surplus        sdkmath.Int `json:"surplus"`
	Shortfall      sdkmath.Int `json:"shortfall"`
	Wipeout        bool        `json:"wipeout"` // shortfall exceeded leveraged principal

	PrincipalLeveragedAfter sdkmath.Int `json:"principal_leveraged_after"`
}

// MarketSnapshot is a point-in-time copy of a market persisted after each
// allocation cycle for the dashboard and offline analysis.
type MarketSnapshot struct {
	CycleID   string    `json:"cycle_id"`
	MarketID  MarketID  `json:"market_id"`
	Timestamp time.Time `json:"timestamp"`
	Market    Market    `json:"market"`
}
