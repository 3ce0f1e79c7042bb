package ledger

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestSettlementPullAndPush(t *testing.T) {
	s := NewMemorySettlement()
	s.Credit("usdc", "alice", sdkmath.NewInt(1000))

	require.NoError(t, s.Pull("usdc", "alice", "pool/1", sdkmath.NewInt(400)))
	require.True(t, s.BalanceOf("usdc", "alice").Equal(sdkmath.NewInt(600)))
	require.True(t, s.BalanceOf("usdc", "pool/1").Equal(sdkmath.NewInt(400)))

	require.NoError(t, s.Push("usdc", "pool/1", "bob", sdkmath.NewInt(150)))
	require.True(t, s.BalanceOf("usdc", "pool/1").Equal(sdkmath.NewInt(250)))
	require.True(t, s.BalanceOf("usdc", "bob").Equal(sdkmath.NewInt(150)))
}

func TestSettlementInsufficientFunds(t *testing.T) {
	s := NewMemorySettlement()
	s.Credit("atom", "alice", sdkmath.NewInt(10))

	err := s.Pull("atom", "alice", "pool/1", sdkmath.NewInt(11))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	// A failed pull must leave balances untouched.
	require.True(t, s.BalanceOf("atom", "alice").Equal(sdkmath.NewInt(10)))

	err = s.Push("atom", "pool/1", "alice", sdkmath.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestSettlementRejectsNonPositiveAmounts(t *testing.T) {
	s := NewMemorySettlement()
	require.ErrorIs(t, s.Pull("atom", "a", "b", sdkmath.ZeroInt()), ErrInvalidAmount)
	require.ErrorIs(t, s.Push("atom", "a", "b", sdkmath.NewInt(-5)), ErrInvalidAmount)
}

func TestTrancheMintBurnBalance(t *testing.T) {
	l := NewMemoryTranche()

	require.NoError(t, l.Mint("alice", "1/fixed", sdkmath.NewInt(500)))
	require.NoError(t, l.Mint("alice", "1/fixed", sdkmath.NewInt(250)))
	require.True(t, l.BalanceOf("alice", "1/fixed").Equal(sdkmath.NewInt(750)))

	// Tranche ids are disjoint balances.
	require.True(t, l.BalanceOf("alice", "1/leveraged").IsZero())

	require.NoError(t, l.Burn("alice", "1/fixed", sdkmath.NewInt(700)))
	require.True(t, l.BalanceOf("alice", "1/fixed").Equal(sdkmath.NewInt(50)))
}

func TestTrancheBurnExceedsBalance(t *testing.T) {
	l := NewMemoryTranche()
	require.NoError(t, l.Mint("alice", "1/fixed", sdkmath.NewInt(100)))

	err := l.Burn("alice", "1/fixed", sdkmath.NewInt(101))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.True(t, l.BalanceOf("alice", "1/fixed").Equal(sdkmath.NewInt(100)))

	err = l.Burn("bob", "1/fixed", sdkmath.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientFunds)
}
