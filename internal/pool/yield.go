package pool

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/tranchefi/duopool/internal/types"
)

// AllocateYield reconciles the fixed tranche's prorated obligation against
// the fees accrued since the last call.
//
// The distribution timestamp advances unconditionally, even on the no-op
// branches; skipping it would change the elapsed-time base of the next call.
// Surplus fees beyond the obligation credit the leveraged principal; a
// shortfall debits it, saturating at zero. The saturation is silent: the
// fixed tranche's guarantee is only as strong as the leveraged tranche's
// remaining principal, and no insolvency signal is raised. Fixed principal is
// never altered here.
func (e *Engine) AllocateYield(id types.MarketID, now time.Time) (types.AllocationReceipt, error) {
	entry, err := e.entry(id)
	if err != nil {
		return types.AllocationReceipt{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	m := &entry.m

	elapsed := int64(now.Sub(m.LastDistribution) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	m.LastDistribution = now

	zero := sdkmath.ZeroInt()
	receipt := types.AllocationReceipt{
		MarketID:       id,
		Timestamp:      now,
		ElapsedSeconds: elapsed,
		InterestDue:    zero,
		TotalFees:      zero,
		Surplus:        zero,
		Shortfall:      zero,
	}

	if m.PrincipalFixed.IsZero() {
		receipt.PrincipalLeveragedAfter = m.PrincipalLeveraged
		return receipt, nil
	}

	interestDue := sdkmath.LegacyNewDecFromInt(m.PrincipalFixed).
		Mul(m.TargetRate).
		MulInt64(elapsed).
		QuoInt64(secondsPerYear).
		TruncateInt()

	totalFees := m.AccruedFeeX.Add(m.AccruedFeeY)
	m.AccruedFeeX = zero
	m.AccruedFeeY = zero

	receipt.InterestDue = interestDue
	receipt.TotalFees = totalFees

	if totalFees.GTE(interestDue) {
		surplus := totalFees.Sub(interestDue)
		m.PrincipalLeveraged = m.PrincipalLeveraged.Add(surplus)
		receipt.Surplus = surplus
	} else {
		shortage := interestDue.Sub(totalFees)
		receipt.Shortfall = shortage
		if m.PrincipalLeveraged.GTE(shortage) {
			m.PrincipalLeveraged = m.PrincipalLeveraged.Sub(shortage)
		} else {
			m.PrincipalLeveraged = zero
			receipt.Wipeout = true
		}
	}
	receipt.PrincipalLeveragedAfter = m.PrincipalLeveraged

	e.logger.Info().
		Uint64("marketId", uint64(id)).
		Int64("elapsedSeconds", elapsed).
		Str("interestDue", interestDue.String()).
		Str("totalFees", totalFees.String()).
		Str("surplus", receipt.Surplus.String()).
		Str("shortfall", receipt.Shortfall.String()).
		Bool("wipeout", receipt.Wipeout).
		Msg("Yield allocated")

	return receipt, nil
}
