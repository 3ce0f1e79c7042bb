/*

Weighted-curve math for the two-asset pool: the generalized constant-product
invariant V = Rx^wx * Ry^wy (wx + wy = 1), liquidity-unit <-> amount
conversion, and swap output. All functions are pure and deterministic.

Amounts are integers; all rounding is toward the pool (floor on amounts paid
out, divisor rounded up on proportional splits) so rounding bias can never
compound in the caller's favor across many operations.

*/

package curve

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

var (
	ErrZeroReserves     = errors.New("reserves must be positive")
	ErrNonPositiveInput = errors.New("input amount must be positive")
	ErrZeroInvariant    = errors.New("invariant is zero")
	ErrDrainsReserve    = errors.New("output would drain the reserve")
	ErrInvalidWeights   = errors.New("weights must be positive and sum to one")
)

// ValidateWeights checks that both weights are positive and sum to exactly one.
func ValidateWeights(weightX, weightY sdkmath.LegacyDec) error {
	if !weightX.IsPositive() || !weightY.IsPositive() {
		return fmt.Errorf("%w: got %s/%s", ErrInvalidWeights, weightX, weightY)
	}
	if !weightX.Add(weightY).Equal(sdkmath.LegacyOneDec()) {
		return fmt.Errorf("%w: got %s/%s", ErrInvalidWeights, weightX, weightY)
	}
	return nil
}

// Invariant computes V = reserveX^weightX * reserveY^weightY. Doubling both
// reserves doubles V, which is the scale convention liquidity units rely on.
// Returns zero when either reserve is zero.
func Invariant(reserveX, reserveY sdkmath.Int, weightX, weightY sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if err := ValidateWeights(weightX, weightY); err != nil {
		return sdkmath.LegacyZeroDec(), err
	}
	if reserveX.IsNegative() || reserveY.IsNegative() {
		return sdkmath.LegacyZeroDec(), ErrZeroReserves
	}
	if reserveX.IsZero() || reserveY.IsZero() {
		return sdkmath.LegacyZeroDec(), nil
	}

	// Equal weights reduce to sqrt(Rx*Ry), which Newton iteration handles
	// exactly for perfect squares.
	if weightX.Equal(weightY) {
		product := sdkmath.LegacyNewDecFromInt(reserveX.Mul(reserveY))
		root, err := product.ApproxSqrt()
		if err != nil {
			return sdkmath.LegacyZeroDec(), fmt.Errorf("invariant sqrt failed: %w", err)
		}
		return root, nil
	}

	// General case: rewrite Rx^wx * Ry^wy as Rmax * (Rmin/Rmax)^wmin so the
	// power base stays in (0, 1], where the series expansion converges.
	decX := sdkmath.LegacyNewDecFromInt(reserveX)
	decY := sdkmath.LegacyNewDecFromInt(reserveY)
	if decX.LTE(decY) {
		return decY.Mul(decPow(decX.Quo(decY), weightX)), nil
	}
	return decX.Mul(decPow(decY.Quo(decX), weightY)), nil
}

// AmountsForLiquidityUnits converts a quantity of liquidity units into the
// proportional reserve amounts: amount_i = reserve_i * units / V. Integer
// division rounds down; the divisor is the invariant rounded up, so the
// caller is never favored.
func AmountsForLiquidityUnits(units, reserveX, reserveY sdkmath.Int, weightX, weightY sdkmath.LegacyDec) (sdkmath.Int, sdkmath.Int, error) {
	if !units.IsPositive() {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), ErrNonPositiveInput
	}

	inv, err := Invariant(reserveX, reserveY, weightX, weightY)
	if err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}
	if inv.IsZero() {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), ErrZeroInvariant
	}

	divisor := inv.Ceil().TruncateInt()
	amountX := reserveX.Mul(units).Quo(divisor)
	amountY := reserveY.Mul(units).Quo(divisor)
	return amountX, amountY, nil
}

// SwapOutput returns the output amount for an exact input (already net of
// fee) that preserves the weighted invariant:
//
//	out = reserveOut * (1 - (reserveIn / (reserveIn + in))^(weightIn/weightOut))
//
// The equal-weight case is computed exactly in integer arithmetic with a
// full-precision multiply before the divide. The output is always strictly
// below reserveOut; a side can never be fully drained.
func SwapOutput(tradeInput, reserveIn, reserveOut sdkmath.Int, weightIn, weightOut sdkmath.LegacyDec) (sdkmath.Int, error) {
	if !tradeInput.IsPositive() {
		return sdkmath.ZeroInt(), ErrNonPositiveInput
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroReserves
	}
	if !weightIn.IsPositive() || !weightOut.IsPositive() {
		return sdkmath.ZeroInt(), ErrInvalidWeights
	}

	var out sdkmath.Int
	if weightIn.Equal(weightOut) {
		// out = Rout * in / (Rin + in), identical to Rout - Rin*Rout/(Rin+in).
		out = reserveOut.Mul(tradeInput).Quo(reserveIn.Add(tradeInput))
	} else {
		ratio := sdkmath.LegacyNewDecFromInt(reserveIn).Quo(sdkmath.LegacyNewDecFromInt(reserveIn.Add(tradeInput)))
		exponent := weightIn.Quo(weightOut)
		multiplier := sdkmath.LegacyOneDec().Sub(decPow(ratio, exponent))
		out = sdkmath.LegacyNewDecFromInt(reserveOut).Mul(multiplier).TruncateInt()
	}

	if out.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: computed %s", ErrNonPositiveInput, out)
	}
	if out.GTE(reserveOut) {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: out %s, reserve %s", ErrDrainsReserve, out, reserveOut)
	}
	return out, nil
}
