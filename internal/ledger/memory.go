package ledger

import (
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// MemorySettlement is an in-process settlement ledger keyed by denom and
// account. It backs the host runtime in a single process and doubles as the
// test double for the pool engine.
type MemorySettlement struct {
	mu       sync.Mutex
	balances map[string]map[string]sdkmath.Int // denom -> account -> balance
}

func NewMemorySettlement() *MemorySettlement {
	return &MemorySettlement{
		balances: make(map[string]map[string]sdkmath.Int),
	}
}

// Credit funds an account out of thin air. Used to seed caller balances.
func (s *MemorySettlement) Credit(denom, account string, amount sdkmath.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(denom, account, amount)
}

func (s *MemorySettlement) Pull(denom, from, custody string, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: pull %s %s", ErrInvalidAmount, amount, denom)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.get(denom, from).LT(amount) {
		return fmt.Errorf("%w: %s has %s %s, need %s", ErrInsufficientFunds, from, s.get(denom, from), denom, amount)
	}
	s.add(denom, from, amount.Neg())
	s.add(denom, custody, amount)
	return nil
}

func (s *MemorySettlement) Push(denom, custody, to string, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: push %s %s", ErrInvalidAmount, amount, denom)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.get(denom, custody).LT(amount) {
		return fmt.Errorf("%w: custody %s has %s %s, need %s", ErrInsufficientFunds, custody, s.get(denom, custody), denom, amount)
	}
	s.add(denom, custody, amount.Neg())
	s.add(denom, to, amount)
	return nil
}

func (s *MemorySettlement) BalanceOf(denom, account string) sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(denom, account)
}

func (s *MemorySettlement) get(denom, account string) sdkmath.Int {
	if accounts, ok := s.balances[denom]; ok {
		if bal, ok := accounts[account]; ok {
			return bal
		}
	}
	return sdkmath.ZeroInt()
}

func (s *MemorySettlement) add(denom, account string, delta sdkmath.Int) {
	accounts, ok := s.balances[denom]
	if !ok {
		accounts = make(map[string]sdkmath.Int)
		s.balances[denom] = accounts
	}
	current, ok := accounts[account]
	if !ok {
		current = sdkmath.ZeroInt()
	}
	accounts[account] = current.Add(delta)
}

// MemoryTranche is an in-process tranche-unit ledger keyed by owner and
// tranche identifier.
type MemoryTranche struct {
	mu       sync.Mutex
	balances map[string]map[string]sdkmath.Int // trancheID -> owner -> units
}

func NewMemoryTranche() *MemoryTranche {
	return &MemoryTranche{
		balances: make(map[string]map[string]sdkmath.Int),
	}
}

func (t *MemoryTranche) Mint(owner, trancheID string, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: mint %s of %s", ErrInvalidAmount, amount, trancheID)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	owners, ok := t.balances[trancheID]
	if !ok {
		owners = make(map[string]sdkmath.Int)
		t.balances[trancheID] = owners
	}
	current, ok := owners[owner]
	if !ok {
		current = sdkmath.ZeroInt()
	}
	owners[owner] = current.Add(amount)
	return nil
}

func (t *MemoryTranche) Burn(owner, trancheID string, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: burn %s of %s", ErrInvalidAmount, amount, trancheID)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	owners, ok := t.balances[trancheID]
	if !ok || owners[owner].IsNil() || owners[owner].LT(amount) {
		held := sdkmath.ZeroInt()
		if ok && !owners[owner].IsNil() {
			held = owners[owner]
		}
		return fmt.Errorf("%w: %s holds %s of %s, need %s", ErrInsufficientFunds, owner, held, trancheID, amount)
	}
	owners[owner] = owners[owner].Sub(amount)
	return nil
}

func (t *MemoryTranche) BalanceOf(owner, trancheID string) sdkmath.Int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if owners, ok := t.balances[trancheID]; ok {
		if bal, ok := owners[owner]; ok {
			return bal
		}
	}
	return sdkmath.ZeroInt()
}
