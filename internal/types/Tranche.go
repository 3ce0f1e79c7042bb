package types

import "fmt"

// Tranche identifies which liquidity-provider class a position belongs to.
type Tranche int32

const (
	// TrancheFixed holders are owed a prorated, time-based yield on principal.
	TrancheFixed Tranche = 0
	// TrancheLeveraged holders absorb fee surplus beyond the fixed obligation
	// and fund any shortfall from their own principal.
	TrancheLeveraged Tranche = 1
)

func (t Tranche) String() string {
	switch t {
	case TrancheFixed:
		return "fixed"
	case TrancheLeveraged:
		return "leveraged"
	default:
		return fmt.Sprintf("tranche(%d)", int32(t))
	}
}

// UnitID returns the tranche-unit ledger identifier for this tranche of a market.
func (t Tranche) UnitID(marketID MarketID) string {
	return fmt.Sprintf("%d/%s", marketID, t.String())
}

// SwapDirection selects which asset is the exact input of a swap.
type SwapDirection int32

const (
	SwapXForY SwapDirection = 0
	SwapYForX SwapDirection = 1
)

func (d SwapDirection) String() string {
	switch d {
	case SwapXForY:
		return "x_for_y"
	case SwapYForX:
		return "y_for_x"
	default:
		return fmt.Sprintf("direction(%d)", int32(d))
	}
}
