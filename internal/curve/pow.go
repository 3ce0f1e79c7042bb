package curve

import (
	sdkmath "cosmossdk.io/math"
)

// powPrecision bounds the truncation error of the fractional-power series.
var powPrecision = sdkmath.LegacyNewDecWithPrec(1, 8)

// decPow computes base^exp for base > 0 and exp >= 0. The integer part of the
// exponent is handled exactly; the fractional part uses a binomial series
// around 1, which converges for base in (0, 2). Callers must normalize the
// base into that range before calling.
func decPow(base, exp sdkmath.LegacyDec) sdkmath.LegacyDec {
	if exp.IsZero() {
		return sdkmath.LegacyOneDec()
	}

	integerExp := exp.TruncateDec()
	fractionalExp := exp.Sub(integerExp)

	integerPow := sdkmath.LegacyOneDec()
	if !integerExp.IsZero() {
		integerPow = base.Power(uint64(integerExp.TruncateInt64()))
	}
	if fractionalExp.IsZero() {
		return integerPow
	}

	return integerPow.Mul(powApprox(base, fractionalExp))
}

// powApprox computes base^exp for exp in (0, 1) using the generalized binomial
// expansion (1+x)^a = 1 + ax + a(a-1)x^2/2! + ..., with x = base - 1. Terms
// are accumulated until they fall below powPrecision.
func powApprox(base, exp sdkmath.LegacyDec) sdkmath.LegacyDec {
	if exp.IsZero() {
		return sdkmath.LegacyOneDec()
	}

	one := sdkmath.LegacyOneDec()
	x, xNeg := absDifferenceWithSign(base, one)
	term := sdkmath.LegacyOneDec()
	sum := sdkmath.LegacyOneDec()
	negative := false

	for i := int64(1); term.GTE(powPrecision); i++ {
		bigK := sdkmath.LegacyNewDec(i)
		c, cNeg := absDifferenceWithSign(exp, bigK.Sub(one))
		term = term.Mul(c.Mul(x)).Quo(bigK)
		if term.IsZero() {
			break
		}
		if xNeg {
			negative = !negative
		}
		if cNeg {
			negative = !negative
		}
		if negative {
			sum = sum.Sub(term)
		} else {
			sum = sum.Add(term)
		}
	}

	return sum
}

// absDifferenceWithSign returns |a - b| and whether a - b is negative.
func absDifferenceWithSign(a, b sdkmath.LegacyDec) (sdkmath.LegacyDec, bool) {
	if a.GTE(b) {
		return a.Sub(b), false
	}
	return b.Sub(a), true
}
