package ledger

import (
	sdkmath "cosmossdk.io/math"
)

// SettlementLedger is the host capability that moves real token balances.
// Every call is atomic: it fully succeeds or leaves balances untouched.
// The pool core issues these calls; it never tracks physical balances itself.
type SettlementLedger interface {
	// Pull withdraws amount of denom from an external account into custody.
	Pull(denom, from, custody string, amount sdkmath.Int) error

	// Push pays amount of denom out of custody to an external account.
	Push(denom, custody, to string, amount sdkmath.Int) error

	// BalanceOf reports the balance held by an account for a denom.
	BalanceOf(denom, account string) sdkmath.Int
}

// TrancheLedger is the fungible-balance capability representing tranche
// shares as transferable units, keyed by owner and tranche identifier.
type TrancheLedger interface {
	Mint(owner, trancheID string, amount sdkmath.Int) error
	Burn(owner, trancheID string, amount sdkmath.Int) error
	BalanceOf(owner, trancheID string) sdkmath.Int
}
