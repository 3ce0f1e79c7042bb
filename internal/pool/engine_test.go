package pool

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/tranchefi/duopool/internal/ledger"
	"github.com/tranchefi/duopool/internal/logger"
	"github.com/tranchefi/duopool/internal/types"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type testFixture struct {
	engine     *Engine
	settlement *ledger.MemorySettlement
	tranches   *ledger.MemoryTranche
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	logger.Initialize("error")

	settlement := ledger.NewMemorySettlement()
	tranches := ledger.NewMemoryTranche()
	engine, err := NewEngine(Config{
		Settlement: settlement,
		Tranches:   tranches,
		Strategy:   []string{"strategist"},
		FeeBps:     30,
	})
	require.NoError(t, err)

	return &testFixture{engine: engine, settlement: settlement, tranches: tranches}
}

func (f *testFixture) createMarket(t *testing.T, id types.MarketID) types.Market {
	t.Helper()
	half := sdkmath.LegacyNewDecWithPrec(5, 1)
	rate := sdkmath.LegacyNewDecWithPrec(20, 2) // 20%/year
	m, err := f.engine.CreateMarket(id, "atom", "usdc", half, half, rate, t0)
	require.NoError(t, err)
	return m
}

func (f *testFixture) fund(account string, amountX, amountY int64) {
	f.settlement.Credit("atom", account, sdkmath.NewInt(amountX))
	f.settlement.Credit("usdc", account, sdkmath.NewInt(amountY))
}

func TestCreateMarketValidation(t *testing.T) {
	f := newFixture(t)
	f.createMarket(t, 1)

	half := sdkmath.LegacyNewDecWithPrec(5, 1)
	rate := sdkmath.LegacyNewDecWithPrec(20, 2)

	_, err := f.engine.CreateMarket(1, "atom", "usdc", half, half, rate, t0)
	require.ErrorIs(t, err, ErrMarketExists)

	_, err = f.engine.CreateMarket(2, "atom", "atom", half, half, rate, t0)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.engine.CreateMarket(3, "atom", "usdc", half, half, rate.Neg(), t0)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFirstSupplyDerivesUnitsFromInvariant(t *testing.T) {
	f := newFixture(t)
	f.createMarket(t, 1)
	f.fund("alice", 2000, 2000)

	amtX, amtY, err := f.engine.Supply("alice", 1, sdkmath.ZeroInt(),
		sdkmath.NewInt(2000), sdkmath.NewInt(2000), types.TrancheFixed)
	require.NoError(t, err)
	require.True(t, amtX.Equal(sdkmath.NewInt(2000)))
	require.True(t, amtY.Equal(sdkmath.NewInt(2000)))

	m, err := f.engine.GetMarket(1)
	require.NoError(t, err)
	// 50/50 invariant of 2000/2000 is exactly 2000.
	require.True(t, m.TotalLiquidityUnits.Equal(sdkmath.NewInt(2000)))
	require.True(t, m.PrincipalFixed.Equal(sdkmath.NewInt(2000)))
	require.True(t, m.PrincipalLeveraged.IsZero())
	require.True(t, m.ReserveX.Equal(sdkmath.NewInt(2000)))
	require.True(t, m.ReserveY.Equal(sdkmath.NewInt(2000)))

	// Units minted to the caller, tokens moved into pool custody.
	require.True(t, f.tranches.BalanceOf("alice", types.TrancheFixed.UnitID(1)).Equal(sdkmath.NewInt(2000)))
	require.True(t, f.settlement.BalanceOf("atom", "alice").IsZero())
	require.True(t, f.settlement.BalanceOf("atom", m.PoolAccount()).Equal(sdkmath.NewInt(2000)))
}

func TestSupplyProportionalAmounts(t *testing.T) {
	f := newFixture(t)
	f.createMarket(t, 1)
	f.fund("alice", 2000, 2000)
	f.fund("bob", 1000, 1000)

	_, _, err := f.engine.Supply("alice", 1, sdkmath.ZeroInt(),
		sdkmath.NewInt(2000), sdkmath.NewInt(2000), types.TrancheFixed)
	require.NoError(t, err)

	amtX, amtY, err := f.engine.Supply("bob", 1, sdkmath.NewInt(1000),
		sdkmath.NewInt(1000), sdkmath.NewInt(1000), types.TrancheLeveraged)
	require.NoError(t, err)
	require.True(t, amtX.Equal(sdkmath.NewInt(1000)))
	require.True(t, amtY.Equal(sdkmath.NewInt(1000)))

	m, err := f.engine.GetMarket(1)
	require.NoError(t, err)
	require.True(t, m.TotalLiquidityUnits.Equal(sdkmath.NewInt(3000)))
	require.True(t, m.PrincipalLeveraged.Equal(sdkmath.NewInt(1000)))
}

func TestSupplySlippageBound(t *testing.T) {
	f := newFixture(t)
	f.createMarket(t, 1)
	f.fund("alice", 2000, 2000)
	f.fund("bob", 1000, 1000)

	_, _, err := f.engine.Supply("alice", 1, sdkmath.ZeroInt(),
		sdkmath.NewInt(2000), sdkmath.NewInt(2000), types.TrancheFixed)
	require.NoError(t, err)

	_, _, err = f.engine.Supply("bob", 1, sdkmath.NewInt(1000),
		sdkmath.NewInt(999), sdkmath.NewInt(1000), types.TrancheLeveraged)
	require.ErrorIs(t, err, ErrExceedsSlippageBound)

	// Nothing moved on failure.
	require.True(t, f.settlement.BalanceOf("atom", "bob").Equal(sdkmath.NewInt(1000)))
	m, err := f.engine.GetMarket(1)
	require.NoError(t, err)
	require.True(t, m.TotalLiquidityUnits.Equal(sdkmath.NewInt(2000)))
}

func TestWithdrawRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.createMarket(t, 1)
	f.fund("alice", 2000, 2000)

	_, _, err := f.engine.Supply("alice", 1, sdkmath.ZeroInt(),
		sdkmath.NewInt(2000), sdkmath.NewInt(2000), types.TrancheFixed)
	require.NoError(t, err)

	amtX, amtY, err := f.engine.Withdraw("alice", 1, sdkmath.NewInt(2000),
		sdkmath.NewInt(2000), sdkmath.NewInt(2000), types.TrancheFixed)
	require.NoError(t, err)
	require.True(t, amtX.Equal(sdkmath.NewInt(2000)))
	require.True(t, amtY.Equal(sdkmath.NewInt(2000)))

	m, err := f.engine.GetMarket(1)
	require.NoError(t, err)
	require.True(t, m.ReserveX.IsZero())
	require.True(t, m.ReserveY.IsZero())
	require.True(t, m.TotalLiquidityUnits.IsZero())
	require.True(t, m.PrincipalFixed.IsZero())

	// Full round trip: caller holds the original balances again.
	require.True(t, f.settlement.BalanceOf("atom", "alice").Equal(sdkmath.NewInt(2000)))
	require.True(t, f.settlement.BalanceOf("usdc", "alice").Equal(sdkmath.NewInt(2000)))
	require.True(t, f.tranches.BalanceOf("alice", types.TrancheFixed.UnitID(1)).IsZero())
}

func TestWithdrawInsufficientTrancheBalance(t *testing.T) {
	f := newFixture(t)
	f.createMarket(t, 1)
	f.fund("alice", 2000, 2000)

	_, _, err := f.engine.Supply("alice", 1, sdkmath.ZeroInt(),
		sdkmath.NewInt(2000), sdkmath.NewInt(2000), types.TrancheFixed)
	require.NoError(t, err)

	// Bob holds no units at all.
	_, _, err = f.engine.Withdraw("bob", 1, sdkmath.NewInt(100),
		sdkmath.NewInt(100), sdkmath.NewInt(100), types.TrancheFixed)
	require.ErrorIs(t, err, ErrInsufficientTrancheBalance)

	// Alice holds fixed units, not leveraged ones.
	_, _, err = f.engine.Withdraw("alice", 1, sdkmath.NewInt(100),
		sdkmath.NewInt(100), sdkmath.NewInt(100), types.TrancheLeveraged)
	require.ErrorIs(t, err, ErrInsufficientTrancheBalance)
}

func TestWithdrawPrincipalUnderflowAfterShortfall(t *testing.T) {
	f := newFixture(t)
	f.createMarket(t, 1)
	f.fund("alice", 1_000_000, 1_000_000)
	f.fund("bob", 200_000, 200_000)

	_, _, err := f.engine.Supply("alice", 1, sdkmath.ZeroInt(),
		sdkmath.NewInt(1_000_000), sdkmath.NewInt(1_000_000), types.TrancheFixed)
	require.NoError(t, err)
	_, _, err = f.engine.Supply("bob", 1, sdkmath.NewInt(200_000),
		sdkmath.NewInt(200_000), sdkmath.NewInt(200_000), types.TrancheLeveraged)
	require.NoError(t, err)

	// A year with no fees debits the full obligation from leveraged principal:
	// 1,000,000 * 20% = 200,000, wiping it while bob still holds 200,000 units.
	_, err = f.engine.AllocateYield(1, t0.Add(365*24*time.Hour))
	require.NoError(t, err)

	m, err := f.engine.GetMarket(1)
	require.NoError(t, err)
	require.True(t, m.PrincipalLeveraged.IsZero())

	_, _, err = f.engine.Withdraw("bob", 1, sdkmath.NewInt(200_000),
		sdkmath.NewInt(200_000), sdkmath.NewInt(200_000), types.TrancheLeveraged)
	require.ErrorIs(t, err, ErrPrincipalUnderflow)

	// Failed withdraw must not burn units or move funds.
	require.True(t, f.tranches.BalanceOf("bob", types.TrancheLeveraged.UnitID(1)).Equal(sdkmath.NewInt(200_000)))
}

func TestSetTargetRateRequiresStrategy(t *testing.T) {
	f := newFixture(t)
	f.createMarket(t, 1)

	rate := sdkmath.LegacyNewDecWithPrec(15, 2)
	err := f.engine.SetTargetRate("mallory", 1, rate)
	require.ErrorIs(t, err, ErrUnauthorizedCaller)

	require.NoError(t, f.engine.SetTargetRate("strategist", 1, rate))
	m, err := f.engine.GetMarket(1)
	require.NoError(t, err)
	require.True(t, m.TargetRate.Equal(rate))
}

func TestMarketNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.GetMarket(42)
	require.ErrorIs(t, err, ErrMarketNotFound)

	_, err = f.engine.AllocateYield(42, t0)
	require.ErrorIs(t, err, ErrMarketNotFound)
}
