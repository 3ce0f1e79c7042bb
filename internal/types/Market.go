/*

This is the per-market record tracked by the pool engine: reserves, weights,
tranche principals, fee accumulators and yield-distribution timing.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

type MarketID uint64

type Market struct {
	ID     MarketID `json:"id"`
	DenomX string   `json:"denom_x"` // e.g., ATOM
	DenomY string   `json:"denom_y"` // e.g., USDC

	WeightX sdkmath.LegacyDec `json:"weight_x"` // normalized, WeightX + WeightY == 1
	WeightY sdkmath.LegacyDec `json:"weight_y"`

	ReserveX sdkmath.Int `json:"reserve_x"` // swappable reserve of DenomX
	ReserveY sdkmath.Int `json:"reserve_y"` // swappable reserve of DenomY

	PrincipalFixed     sdkmath.Int `json:"principal_fixed"`     // claim ledger, not a physical balance
	PrincipalLeveraged sdkmath.Int `json:"principal_leveraged"` // absorbs fee surplus/shortfall

	AccruedFeeX sdkmath.Int `json:"accrued_fee_x"` // reset to zero on every yield allocation
	AccruedFeeY sdkmath.Int `json:"accrued_fee_y"`

	TargetRate       sdkmath.LegacyDec `json:"target_rate"` // annualized yield promised to the fixed tranche
	LastDistribution time.Time         `json:"last_distribution"`

	TotalLiquidityUnits sdkmath.Int `json:"total_liquidity_units"`

	CreatedAt time.Time `json:"created_at"`
}

// PoolAccount returns the settlement account that holds this market's reserves.
func (m *Market) PoolAccount() string {
	return "pool/" + sdkmath.NewInt(int64(m.ID)).String()
}
