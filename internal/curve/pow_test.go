package curve

import (
	"fmt"
	"math"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func mustDec(t *testing.T, s string) sdkmath.LegacyDec {
	t.Helper()
	d, err := sdkmath.LegacyNewDecFromStr(s)
	require.NoError(t, err)
	return d
}

func TestDecPowMatchesFloatReference(t *testing.T) {
	bases := []string{"0.25", "0.5", "0.9", "0.990099", "1.0", "1.5"}
	exps := []string{"0.2", "0.25", "0.5", "1.0", "1.5", "2.5", "4.0"}

	for _, b := range bases {
		for _, e := range exps {
			name := fmt.Sprintf("%s^%s", b, e)
			t.Run(name, func(t *testing.T) {
				base := mustDec(t, b)
				exp := mustDec(t, e)

				got := decPow(base, exp)
				gotFloat, err := got.Float64()
				require.NoError(t, err)

				baseFloat, _ := base.Float64()
				expFloat, _ := exp.Float64()
				want := math.Pow(baseFloat, expFloat)

				require.InDelta(t, want, gotFloat, 1e-6, "decPow(%s, %s)", b, e)
			})
		}
	}
}

func TestDecPowZeroExponent(t *testing.T) {
	got := decPow(mustDec(t, "0.37"), sdkmath.LegacyZeroDec())
	require.True(t, got.Equal(sdkmath.LegacyOneDec()))
}

func TestDecPowIntegerExponentExact(t *testing.T) {
	got := decPow(mustDec(t, "1.5"), mustDec(t, "2.0"))
	require.True(t, got.Equal(mustDec(t, "2.25")), "got %s", got)
}

func TestPowApproxMonotonicInBase(t *testing.T) {
	exp := mustDec(t, "0.5")
	prev := powApprox(mustDec(t, "0.1"), exp)
	for _, b := range []string{"0.2", "0.4", "0.6", "0.8", "0.95"} {
		cur := powApprox(mustDec(t, b), exp)
		require.True(t, cur.GT(prev), "powApprox not increasing at base %s", b)
		prev = cur
	}
}
