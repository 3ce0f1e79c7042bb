/*

The pool engine owns every Market record and serializes all state transitions
for a market behind a per-market lock. Supply, withdraw, swap and yield
allocation live in their own files; this file holds construction, the market
registry, and the privileged parameter surface.

*/

package pool

import (
	"fmt"
	"sort"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/tranchefi/duopool/internal/curve"
	"github.com/tranchefi/duopool/internal/ledger"
	"github.com/tranchefi/duopool/internal/logger"
	"github.com/tranchefi/duopool/internal/types"
)

const (
	// secondsPerYear is the proration base for the fixed tranche obligation.
	secondsPerYear = 365 * 24 * 60 * 60

	feeDenominatorBps = 10_000
)

// marketEntry pairs a market with the lock that serializes its operations.
// Cross-market operations are fully independent.
type marketEntry struct {
	mu sync.Mutex
	m  types.Market
}

// Engine is the two-asset dual-tranche pool core with dependency injection.
type Engine struct {
	mu      sync.RWMutex
	markets map[types.MarketID]*marketEntry

	settlement ledger.SettlementLedger
	tranches   ledger.TrancheLedger

	// strategy holds the caller identifiers allowed to adjust market
	// parameters. Injected at construction, checked per privileged call.
	strategy map[string]struct{}

	feeNumerator   sdkmath.Int
	feeDenominator sdkmath.Int

	logger zerolog.Logger
}

// Config holds the dependencies for creating a new Engine instance.
type Config struct {
	Settlement ledger.SettlementLedger
	Tranches   ledger.TrancheLedger

	// Strategy lists callers permitted to invoke privileged operations.
	Strategy []string

	// FeeBps is the swap fee in basis points (30 = 0.30%).
	FeeBps int64
}

// NewEngine creates a new pool engine with dependency injection.
func NewEngine(cfg Config) (*Engine, error) {
	if err := validateEngineConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	strategy := make(map[string]struct{}, len(cfg.Strategy))
	for _, caller := range cfg.Strategy {
		strategy[caller] = struct{}{}
	}

	e := &Engine{
		markets:        make(map[types.MarketID]*marketEntry),
		settlement:     cfg.Settlement,
		tranches:       cfg.Tranches,
		strategy:       strategy,
		feeNumerator:   sdkmath.NewInt(cfg.FeeBps),
		feeDenominator: sdkmath.NewInt(feeDenominatorBps),
		logger:         logger.GetForComponent("pool_engine"),
	}

	e.logger.Info().
		Int64("feeBps", cfg.FeeBps).
		Int("strategyCallers", len(cfg.Strategy)).
		Msg("Pool engine created")

	return e, nil
}

func validateEngineConfig(cfg Config) error {
	if cfg.Settlement == nil {
		return fmt.Errorf("settlement ledger cannot be nil")
	}
	if cfg.Tranches == nil {
		return fmt.Errorf("tranche ledger cannot be nil")
	}
	if cfg.FeeBps < 0 || cfg.FeeBps >= feeDenominatorBps {
		return fmt.Errorf("fee must be in [0, %d) bps, got %d", feeDenominatorBps, cfg.FeeBps)
	}
	return nil
}

// CreateMarket registers a new market. Weights and the target rate are set
// once here and are immutable afterwards (the rate only via SetTargetRate).
func (e *Engine) CreateMarket(id types.MarketID, denomX, denomY string, weightX, weightY, targetRate sdkmath.LegacyDec, now time.Time) (types.Market, error) {
	if err := curve.ValidateWeights(weightX, weightY); err != nil {
		return types.Market{}, err
	}
	if targetRate.IsNegative() {
		return types.Market{}, fmt.Errorf("%w: target rate %s is negative", ErrInvalidAmount, targetRate)
	}
	if denomX == "" || denomY == "" || denomX == denomY {
		return types.Market{}, fmt.Errorf("%w: denoms %q/%q", ErrInvalidAmount, denomX, denomY)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.markets[id]; exists {
		return types.Market{}, fmt.Errorf("%w: id %d", ErrMarketExists, id)
	}

	m := types.Market{
		ID:                  id,
		DenomX:              denomX,
		DenomY:              denomY,
		WeightX:             weightX,
		WeightY:             weightY,
		ReserveX:            sdkmath.ZeroInt(),
		ReserveY:            sdkmath.ZeroInt(),
		PrincipalFixed:      sdkmath.ZeroInt(),
		PrincipalLeveraged:  sdkmath.ZeroInt(),
		AccruedFeeX:         sdkmath.ZeroInt(),
		AccruedFeeY:         sdkmath.ZeroInt(),
		TargetRate:          targetRate,
		LastDistribution:    now,
		TotalLiquidityUnits: sdkmath.ZeroInt(),
		CreatedAt:           now,
	}
	e.markets[id] = &marketEntry{m: m}

	e.logger.Info().
		Uint64("marketId", uint64(id)).
		Str("pair", denomX+"/"+denomY).
		Str("weightX", weightX.String()).
		Str("targetRate", targetRate.String()).
		Msg("Market created")

	return m, nil
}

// GetMarket returns a copy of the market record.
func (e *Engine) GetMarket(id types.MarketID) (types.Market, error) {
	entry, err := e.entry(id)
	if err != nil {
		return types.Market{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.m, nil
}

// ListMarkets returns copies of all markets ordered by id.
func (e *Engine) ListMarkets() []types.Market {
	e.mu.RLock()
	entries := make([]*marketEntry, 0, len(e.markets))
	for _, entry := range e.markets {
		entries = append(entries, entry)
	}
	e.mu.RUnlock()

	markets := make([]types.Market, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		markets = append(markets, entry.m)
		entry.mu.Unlock()
	}
	sort.Slice(markets, func(i, j int) bool { return markets[i].ID < markets[j].ID })
	return markets
}

// MarketIDs returns the ids of all registered markets in ascending order.
func (e *Engine) MarketIDs() []types.MarketID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]types.MarketID, 0, len(e.markets))
	for id := range e.markets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SetTargetRate adjusts a market's promised fixed-tranche rate. Privileged.
func (e *Engine) SetTargetRate(caller string, id types.MarketID, rate sdkmath.LegacyDec) error {
	if !e.isStrategy(caller) {
		return fmt.Errorf("%w: %s", ErrUnauthorizedCaller, caller)
	}
	if rate.IsNegative() {
		return fmt.Errorf("%w: target rate %s is negative", ErrInvalidAmount, rate)
	}

	entry, err := e.entry(id)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	old := entry.m.TargetRate
	entry.m.TargetRate = rate

	e.logger.Info().
		Uint64("marketId", uint64(id)).
		Str("oldRate", old.String()).
		Str("newRate", rate.String()).
		Str("caller", caller).
		Msg("Target rate updated")

	return nil
}

func (e *Engine) isStrategy(caller string) bool {
	_, ok := e.strategy[caller]
	return ok
}

func (e *Engine) entry(id types.MarketID) (*marketEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.markets[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrMarketNotFound, id)
	}
	return entry, nil
}
