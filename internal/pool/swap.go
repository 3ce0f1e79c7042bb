package pool

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/tranchefi/duopool/internal/curve"
	"github.com/tranchefi/duopool/internal/types"
)

// Swap executes an exact-input swap. amountSpecified follows the signed
// convention: a negative value means "exact input of this magnitude"; zero or
// positive (exact output) requests are rejected.
//
// The fee portion is carved off the input before pricing: the input-side
// reserve grows by the trade portion only, and the fee accrues in the
// input-side accumulator until the next yield allocation consumes it. The fee
// is pulled from the caller but never enters the swappable reserve.
//
// Returns the signed delta pair (amountIn, amountOut): amountIn echoes the
// negative specified amount, amountOut is the positive amount delivered.
func (e *Engine) Swap(caller string, id types.MarketID, direction types.SwapDirection, amountSpecified sdkmath.Int) (sdkmath.Int, sdkmath.Int, error) {
	zero := sdkmath.ZeroInt()

	if amountSpecified.IsNil() || !amountSpecified.IsNegative() {
		return zero, zero, fmt.Errorf("%w: amountSpecified %s", ErrUnsupportedSwapMode, amountSpecified)
	}
	magnitude := amountSpecified.Neg()

	entry, err := e.entry(id)
	if err != nil {
		return zero, zero, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	m := &entry.m

	feePortion := magnitude.Mul(e.feeNumerator).Quo(e.feeDenominator)
	tradePortion := magnitude.Sub(feePortion)
	if !tradePortion.IsPositive() {
		return zero, zero, fmt.Errorf("%w: input %s leaves no trade portion after fee", ErrInvalidAmount, magnitude)
	}

	var (
		denomIn, denomOut     string
		reserveIn, reserveOut sdkmath.Int
		weightIn, weightOut   sdkmath.LegacyDec
	)
	switch direction {
	case types.SwapXForY:
		denomIn, denomOut = m.DenomX, m.DenomY
		reserveIn, reserveOut = m.ReserveX, m.ReserveY
		weightIn, weightOut = m.WeightX, m.WeightY
	case types.SwapYForX:
		denomIn, denomOut = m.DenomY, m.DenomX
		reserveIn, reserveOut = m.ReserveY, m.ReserveX
		weightIn, weightOut = m.WeightY, m.WeightX
	default:
		return zero, zero, fmt.Errorf("%w: direction %d", ErrUnsupportedSwapMode, direction)
	}

	outAmt, err := curve.SwapOutput(tradePortion, reserveIn, reserveOut, weightIn, weightOut)
	if err != nil {
		return zero, zero, err
	}
	if !outAmt.IsPositive() {
		return zero, zero, fmt.Errorf("%w: input %s yields zero output", ErrInvalidAmount, magnitude)
	}

	custody := m.PoolAccount()
	if err := e.settlement.Pull(denomIn, caller, custody, magnitude); err != nil {
		return zero, zero, fmt.Errorf("settlement pull %s failed: %w", denomIn, err)
	}
	if err := e.settlement.Push(denomOut, custody, caller, outAmt); err != nil {
		_ = e.settlement.Push(denomIn, custody, caller, magnitude)
		return zero, zero, fmt.Errorf("settlement push %s failed: %w", denomOut, err)
	}

	switch direction {
	case types.SwapXForY:
		m.ReserveX = m.ReserveX.Add(tradePortion)
		m.ReserveY = m.ReserveY.Sub(outAmt)
		m.AccruedFeeX = m.AccruedFeeX.Add(feePortion)
	case types.SwapYForX:
		m.ReserveY = m.ReserveY.Add(tradePortion)
		m.ReserveX = m.ReserveX.Sub(outAmt)
		m.AccruedFeeY = m.AccruedFeeY.Add(feePortion)
	}

	e.logger.Info().
		Uint64("marketId", uint64(id)).
		Str("caller", caller).
		Str("direction", direction.String()).
		Str("amountIn", magnitude.String()).
		Str("feePortion", feePortion.String()).
		Str("amountOut", outAmt.String()).
		Msg("Swap executed")

	return amountSpecified, outAmt, nil
}
