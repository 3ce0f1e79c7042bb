/*

The host runtime drives the pool core at its lifecycle points: market
initialization, the liquidity-change guard, swap requests, and the periodic
yield tick. It also persists a snapshot and an allocation receipt per market
per cycle when a store is configured.

*/

package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tranchefi/duopool/internal/logger"
	"github.com/tranchefi/duopool/internal/pool"
	"github.com/tranchefi/duopool/internal/types"
)

// ErrExternalLiquidityChange rejects any liquidity-shape change that is not
// routed through the pool's own supply/withdraw entry points.
var ErrExternalLiquidityChange = errors.New("liquidity changes must go through supply or withdraw")

// LiquidityOp names the operation a liquidity change is routed through.
type LiquidityOp string

const (
	OpSupply   LiquidityOp = "supply"
	OpWithdraw LiquidityOp = "withdraw"
)

// SnapshotStore persists per-cycle market snapshots and allocation receipts.
type SnapshotStore interface {
	SaveMarketSnapshot(types.MarketSnapshot) (int64, error)
	SaveAllocationReceipt(types.AllocationReceipt) (int64, error)
}

// Runtime wires the pool engine to its periodic tick and persistence.
type Runtime struct {
	engine *pool.Engine
	store  SnapshotStore // optional; nil disables persistence

	interval time.Duration

	defaultWeightX sdkmath.LegacyDec
	defaultWeightY sdkmath.LegacyDec
	defaultRate    sdkmath.LegacyDec

	cycleCount int
	logger     zerolog.Logger
}

// Config holds the configuration for creating a new Runtime instance.
type Config struct {
	Engine   *pool.Engine
	Store    SnapshotStore
	Interval time.Duration
	Params   types.PoolParameters
}

// NewRuntime creates a new host runtime with dependency injection.
func NewRuntime(cfg Config) (*Runtime, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("runtime configuration validation failed: engine cannot be nil")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("runtime configuration validation failed: interval must be positive")
	}

	weightX, err := sdkmath.LegacyNewDecFromStr(fmt.Sprintf("%.8f", cfg.Params.WeightX))
	if err != nil {
		return nil, fmt.Errorf("invalid default weight_x: %w", err)
	}
	weightY, err := sdkmath.LegacyNewDecFromStr(fmt.Sprintf("%.8f", cfg.Params.WeightY))
	if err != nil {
		return nil, fmt.Errorf("invalid default weight_y: %w", err)
	}
	rate, err := sdkmath.LegacyNewDecFromStr(fmt.Sprintf("%.8f", cfg.Params.TargetRate))
	if err != nil {
		return nil, fmt.Errorf("invalid default target rate: %w", err)
	}

	return &Runtime{
		engine:         cfg.Engine,
		store:          cfg.Store,
		interval:       cfg.Interval,
		defaultWeightX: weightX,
		defaultWeightY: weightY,
		defaultRate:    rate,
		logger:         logger.GetForComponent("host_runtime"),
	}, nil
}

// OnMarketInitialize creates a market with the configured default weights and
// preset target rate. Called once per market.
func (r *Runtime) OnMarketInitialize(id types.MarketID, denomX, denomY string) (types.Market, error) {
	return r.engine.CreateMarket(id, denomX, denomY, r.defaultWeightX, r.defaultWeightY, r.defaultRate, time.Now())
}

// OnBeforeLiquidityChange rejects position resizing that bypasses the pool's
// own entry points.
func (r *Runtime) OnBeforeLiquidityChange(id types.MarketID, op LiquidityOp) error {
	switch op {
	case OpSupply, OpWithdraw:
		return nil
	default:
		return fmt.Errorf("%w: market %d, op %q", ErrExternalLiquidityChange, id, op)
	}
}

// OnSwapRequest executes a swap and returns the settlement instruction
// describing the net token movement performed on the caller's behalf.
func (r *Runtime) OnSwapRequest(caller string, id types.MarketID, direction types.SwapDirection, amountSpecified sdkmath.Int) (types.SettlementInstruction, error) {
	m, err := r.engine.GetMarket(id)
	if err != nil {
		return types.SettlementInstruction{}, err
	}

	amountIn, amountOut, err := r.engine.Swap(caller, id, direction, amountSpecified)
	if err != nil {
		return types.SettlementInstruction{}, err
	}

	denomIn, denomOut := m.DenomX, m.DenomY
	if direction == types.SwapYForX {
		denomIn, denomOut = m.DenomY, m.DenomX
	}
	custody := m.PoolAccount()

	return types.SettlementInstruction{
		Pulls: []types.Transfer{
			{Denom: denomIn, From: caller, To: custody, Amount: amountIn.Neg()},
		},
		Pushes: []types.Transfer{
			{Denom: denomOut, From: custody, To: caller, Amount: amountOut},
		},
	}, nil
}

// OnPeriodicTick runs one yield-allocation pass over every market.
func (r *Runtime) OnPeriodicTick(now time.Time) []types.AllocationReceipt {
	cycleID := uuid.New().String()
	cycleLogger := r.logger.With().Str("cycle_id", cycleID).Logger()

	ids := r.engine.MarketIDs()
	receipts := make([]types.AllocationReceipt, 0, len(ids))

	for _, id := range ids {
		receipt, err := r.engine.AllocateYield(id, now)
		if err != nil {
			cycleLogger.Error().Err(err).Uint64("marketId", uint64(id)).Msg("Yield allocation failed")
			continue
		}
		receipt.CycleID = cycleID
		receipts = append(receipts, receipt)

		if r.store == nil {
			continue
		}
		if _, err := r.store.SaveAllocationReceipt(receipt); err != nil {
			cycleLogger.Error().Err(err).Uint64("marketId", uint64(id)).Msg("Failed to persist allocation receipt")
		}
		m, err := r.engine.GetMarket(id)
		if err != nil {
			continue
		}
		snapshot := types.MarketSnapshot{
			CycleID:   cycleID,
			MarketID:  id,
			Timestamp: now,
			Market:    m,
		}
		if _, err := r.store.SaveMarketSnapshot(snapshot); err != nil {
			cycleLogger.Error().Err(err).Uint64("marketId", uint64(id)).Msg("Failed to persist market snapshot")
		}
	}

	return receipts
}

// RunLoop starts the periodic yield-allocation loop.
func (r *Runtime) RunLoop(ctx context.Context) {
	r.logger.Info().
		Dur("interval", r.interval).
		Msg("Starting yield allocation loop")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Yield allocation loop stopped due to context cancellation")
			return
		case tick := <-ticker.C:
			r.cycleCount++
			r.logger.Info().Int("cycle", r.cycleCount).Msg("Initiating yield allocation cycle")
			r.OnPeriodicTick(tick)
			r.logger.Info().Int("cycle", r.cycleCount).Msg("Yield allocation cycle completed")
		}
	}
}
