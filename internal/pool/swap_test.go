package pool

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/tranchefi/duopool/internal/ledger"
	"github.com/tranchefi/duopool/internal/types"
)

// seedMarket creates market 1 with 2,000,000/2,000,000 reserves supplied by
// the fixed tranche.
func seedMarket(t *testing.T, f *testFixture) {
	t.Helper()
	f.createMarket(t, 1)
	f.fund("alice", 2_000_000, 2_000_000)
	_, _, err := f.engine.Supply("alice", 1, sdkmath.ZeroInt(),
		sdkmath.NewInt(2_000_000), sdkmath.NewInt(2_000_000), types.TrancheFixed)
	require.NoError(t, err)
}

func TestSwapExactInput(t *testing.T) {
	f := newFixture(t)
	seedMarket(t, f)
	f.fund("trader", 10_000, 0)

	amountIn, amountOut, err := f.engine.Swap("trader", 1, types.SwapXForY, sdkmath.NewInt(-10_000))
	require.NoError(t, err)
	require.True(t, amountIn.Equal(sdkmath.NewInt(-10_000)))

	// 30 bps of 10,000 is 30; pricing the 9,970 trade portion against
	// 2,000,000/2,000,000 gives floor(2,000,000*9,970/2,009,970) = 9,920.
	require.True(t, amountOut.Equal(sdkmath.NewInt(9920)))

	m, err := f.engine.GetMarket(1)
	require.NoError(t, err)
	require.True(t, m.ReserveX.Equal(sdkmath.NewInt(2_009_970)))
	require.True(t, m.ReserveY.Equal(sdkmath.NewInt(1_990_080)))
	require.True(t, m.AccruedFeeX.Equal(sdkmath.NewInt(30)))
	require.True(t, m.AccruedFeeY.IsZero())

	// The trader paid the full input including the fee.
	require.True(t, f.settlement.BalanceOf("atom", "trader").IsZero())
	require.True(t, f.settlement.BalanceOf("usdc", "trader").Equal(sdkmath.NewInt(9920)))

	// Custody holds reserves plus the fee accumulator.
	require.True(t, f.settlement.BalanceOf("atom", m.PoolAccount()).Equal(sdkmath.NewInt(2_010_000)))
}

func TestSwapOppositeDirection(t *testing.T) {
	f := newFixture(t)
	seedMarket(t, f)
	f.fund("trader", 0, 10_000)

	_, amountOut, err := f.engine.Swap("trader", 1, types.SwapYForX, sdkmath.NewInt(-10_000))
	require.NoError(t, err)
	require.True(t, amountOut.Equal(sdkmath.NewInt(9920)))

	m, err := f.engine.GetMarket(1)
	require.NoError(t, err)
	require.True(t, m.ReserveY.Equal(sdkmath.NewInt(2_009_970)))
	require.True(t, m.ReserveX.Equal(sdkmath.NewInt(1_990_080)))
	require.True(t, m.AccruedFeeY.Equal(sdkmath.NewInt(30)))
	require.True(t, m.AccruedFeeX.IsZero())
}

func TestSwapRejectsExactOutputAndZero(t *testing.T) {
	f := newFixture(t)
	seedMarket(t, f)
	f.fund("trader", 10_000, 0)

	_, _, err := f.engine.Swap("trader", 1, types.SwapXForY, sdkmath.NewInt(10_000))
	require.ErrorIs(t, err, ErrUnsupportedSwapMode)

	_, _, err = f.engine.Swap("trader", 1, types.SwapXForY, sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrUnsupportedSwapMode)

	// Rejected requests leave the market untouched.
	m, err := f.engine.GetMarket(1)
	require.NoError(t, err)
	require.True(t, m.ReserveX.Equal(sdkmath.NewInt(2_000_000)))
	require.True(t, m.AccruedFeeX.IsZero())
}

func TestSwapInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	seedMarket(t, f)
	f.fund("trader", 5_000, 0)

	_, _, err := f.engine.Swap("trader", 1, types.SwapXForY, sdkmath.NewInt(-10_000))
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	m, err := f.engine.GetMarket(1)
	require.NoError(t, err)
	require.True(t, m.ReserveX.Equal(sdkmath.NewInt(2_000_000)))
	require.True(t, m.ReserveY.Equal(sdkmath.NewInt(2_000_000)))
	require.True(t, f.settlement.BalanceOf("atom", "trader").Equal(sdkmath.NewInt(5_000)))
}

func TestSwapProductNeverDecreases(t *testing.T) {
	f := newFixture(t)
	seedMarket(t, f)
	f.fund("trader", 500_000, 500_000)

	before, err := f.engine.GetMarket(1)
	require.NoError(t, err)
	kBefore := before.ReserveX.Mul(before.ReserveY)

	for _, in := range []int64{-1_000, -50_000, -200_000} {
		dir := types.SwapXForY
		if in == -50_000 {
			dir = types.SwapYForX
		}
		_, _, err := f.engine.Swap("trader", 1, dir, sdkmath.NewInt(in))
		require.NoError(t, err)

		m, err := f.engine.GetMarket(1)
		require.NoError(t, err)
		k := m.ReserveX.Mul(m.ReserveY)
		require.True(t, k.GTE(kBefore), "product shrank: %s -> %s", kBefore, k)
		kBefore = k
	}
}
