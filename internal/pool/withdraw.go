package pool

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/tranchefi/duopool/internal/curve"
	"github.com/tranchefi/duopool/internal/types"
)

// Withdraw burns deltaUnits tranche units and pays the caller the
// proportional reserve amounts. The caller must hold the units, the chosen
// tranche's principal must cover the decrement, and the computed amounts must
// stay within the caller maxima. Any failure aborts with no state change.
//
// A tranche's unit supply and its principal can legitimately diverge: yield
// allocation debits leveraged principal without burning anyone's units, so a
// leveraged holder can own more units than the tranche has principal left.
// That case fails here with ErrPrincipalUnderflow rather than saturating,
// keeping the claim ledger exact.
func (e *Engine) Withdraw(caller string, id types.MarketID, deltaUnits, maxAmountX, maxAmountY sdkmath.Int, tranche types.Tranche) (sdkmath.Int, sdkmath.Int, error) {
	zero := sdkmath.ZeroInt()

	if !deltaUnits.IsPositive() {
		return zero, zero, fmt.Errorf("%w: deltaUnits %s", ErrInvalidAmount, deltaUnits)
	}

	entry, err := e.entry(id)
	if err != nil {
		return zero, zero, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	m := &entry.m

	unitID := tranche.UnitID(id)
	held := e.tranches.BalanceOf(caller, unitID)
	if held.LT(deltaUnits) {
		return zero, zero, fmt.Errorf("%w: hold %s, need %s", ErrInsufficientTrancheBalance, held, deltaUnits)
	}

	principal := m.PrincipalLeveraged
	if tranche == types.TrancheFixed {
		principal = m.PrincipalFixed
	}
	if principal.LT(deltaUnits) {
		return zero, zero, fmt.Errorf("%w: %s principal %s, withdrawing %s",
			ErrPrincipalUnderflow, tranche, principal, deltaUnits)
	}

	amountX, amountY, err := curve.AmountsForLiquidityUnits(deltaUnits, m.ReserveX, m.ReserveY, m.WeightX, m.WeightY)
	if err != nil {
		return zero, zero, err
	}
	if amountX.GT(maxAmountX) || amountY.GT(maxAmountY) {
		return zero, zero, fmt.Errorf("%w: paying %s/%s, maxima %s/%s",
			ErrExceedsSlippageBound, amountX, amountY, maxAmountX, maxAmountY)
	}

	if err := e.tranches.Burn(caller, unitID, deltaUnits); err != nil {
		return zero, zero, fmt.Errorf("%w: %v", ErrInsufficientTrancheBalance, err)
	}

	custody := m.PoolAccount()
	if amountX.IsPositive() {
		if err := e.settlement.Push(m.DenomX, custody, caller, amountX); err != nil {
			_ = e.tranches.Mint(caller, unitID, deltaUnits)
			return zero, zero, fmt.Errorf("settlement push %s failed: %w", m.DenomX, err)
		}
	}
	if amountY.IsPositive() {
		if err := e.settlement.Push(m.DenomY, custody, caller, amountY); err != nil {
			if amountX.IsPositive() {
				_ = e.settlement.Pull(m.DenomX, caller, custody, amountX)
			}
			_ = e.tranches.Mint(caller, unitID, deltaUnits)
			return zero, zero, fmt.Errorf("settlement push %s failed: %w", m.DenomY, err)
		}
	}

	m.ReserveX = m.ReserveX.Sub(amountX)
	m.ReserveY = m.ReserveY.Sub(amountY)
	m.TotalLiquidityUnits = m.TotalLiquidityUnits.Sub(deltaUnits)
	if tranche == types.TrancheFixed {
		m.PrincipalFixed = m.PrincipalFixed.Sub(deltaUnits)
	} else {
		m.PrincipalLeveraged = m.PrincipalLeveraged.Sub(deltaUnits)
	}

	e.logger.Info().
		Uint64("marketId", uint64(id)).
		Str("caller", caller).
		Str("tranche", tranche.String()).
		Str("units", deltaUnits.String()).
		Str("amountX", amountX.String()).
		Str("amountY", amountY.String()).
		Msg("Liquidity withdrawn")

	return amountX, amountY, nil
}
