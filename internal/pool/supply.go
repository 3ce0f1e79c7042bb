package pool

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/tranchefi/duopool/internal/curve"
	"github.com/tranchefi/duopool/internal/types"
)

// Supply adds liquidity to a market and credits the chosen tranche.
//
// On the first supply into a fresh market the caller maxima are taken as the
// deposit amounts and deltaUnits is derived from the invariant of those
// amounts. Otherwise amounts are the proportional split for deltaUnits, and
// exceeding either maximum fails the whole operation.
//
// Returns the amounts actually pulled from the caller.
func (e *Engine) Supply(caller string, id types.MarketID, deltaUnits, maxAmountX, maxAmountY sdkmath.Int, tranche types.Tranche) (sdkmath.Int, sdkmath.Int, error) {
	zero := sdkmath.ZeroInt()

	if maxAmountX.IsNegative() || maxAmountY.IsNegative() {
		return zero, zero, fmt.Errorf("%w: maxima %s/%s", ErrInvalidAmount, maxAmountX, maxAmountY)
	}

	entry, err := e.entry(id)
	if err != nil {
		return zero, zero, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	m := &entry.m

	var amountX, amountY, units sdkmath.Int
	if m.ReserveX.IsZero() && m.ReserveY.IsZero() {
		// Fresh market: amounts are the caller maxima, units come from the
		// invariant of those amounts.
		amountX, amountY = maxAmountX, maxAmountY
		if !amountX.IsPositive() || !amountY.IsPositive() {
			return zero, zero, fmt.Errorf("%w: initial amounts must be positive, got %s/%s", ErrInvalidAmount, amountX, amountY)
		}
		inv, err := curve.Invariant(amountX, amountY, m.WeightX, m.WeightY)
		if err != nil {
			return zero, zero, err
		}
		units = inv.TruncateInt()
		if !units.IsPositive() {
			return zero, zero, fmt.Errorf("%w: initial deposit too small for one liquidity unit", ErrInvalidAmount)
		}
	} else {
		if !deltaUnits.IsPositive() {
			return zero, zero, fmt.Errorf("%w: deltaUnits %s", ErrInvalidAmount, deltaUnits)
		}
		units = deltaUnits
		amountX, amountY, err = curve.AmountsForLiquidityUnits(units, m.ReserveX, m.ReserveY, m.WeightX, m.WeightY)
		if err != nil {
			return zero, zero, err
		}
		if amountX.GT(maxAmountX) || amountY.GT(maxAmountY) {
			return zero, zero, fmt.Errorf("%w: need %s/%s, maxima %s/%s",
				ErrExceedsSlippageBound, amountX, amountY, maxAmountX, maxAmountY)
		}
		if !amountX.IsPositive() && !amountY.IsPositive() {
			return zero, zero, fmt.Errorf("%w: deltaUnits %s converts to zero amounts", ErrInvalidAmount, deltaUnits)
		}
	}

	custody := m.PoolAccount()
	if amountX.IsPositive() {
		if err := e.settlement.Pull(m.DenomX, caller, custody, amountX); err != nil {
			return zero, zero, fmt.Errorf("settlement pull %s failed: %w", m.DenomX, err)
		}
	}
	if amountY.IsPositive() {
		if err := e.settlement.Pull(m.DenomY, caller, custody, amountY); err != nil {
			if amountX.IsPositive() {
				_ = e.settlement.Push(m.DenomX, custody, caller, amountX)
			}
			return zero, zero, fmt.Errorf("settlement pull %s failed: %w", m.DenomY, err)
		}
	}

	if err := e.tranches.Mint(caller, tranche.UnitID(id), units); err != nil {
		if amountX.IsPositive() {
			_ = e.settlement.Push(m.DenomX, custody, caller, amountX)
		}
		if amountY.IsPositive() {
			_ = e.settlement.Push(m.DenomY, custody, caller, amountY)
		}
		return zero, zero, fmt.Errorf("tranche mint failed: %w", err)
	}

	m.ReserveX = m.ReserveX.Add(amountX)
	m.ReserveY = m.ReserveY.Add(amountY)
	m.TotalLiquidityUnits = m.TotalLiquidityUnits.Add(units)
	switch tranche {
	case types.TrancheFixed:
		m.PrincipalFixed = m.PrincipalFixed.Add(units)
	default:
		m.PrincipalLeveraged = m.PrincipalLeveraged.Add(units)
	}

	e.logger.Info().
		Uint64("marketId", uint64(id)).
		Str("caller", caller).
		Str("tranche", tranche.String()).
		Str("units", units.String()).
		Str("amountX", amountX.String()).
		Str("amountY", amountY.String()).
		Msg("Liquidity supplied")

	return amountX, amountY, nil
}
