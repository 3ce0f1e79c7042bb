// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tranchefi/duopool/internal/types"
)

// SavePoolParameters saves a new version of pool parameters.
func SavePoolParameters(params types.PoolParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE pool_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
		INSERT INTO pool_parameters (
			version, config_name, is_active, activated_at, created_at,
			fee_bps, target_rate, weight_x, weight_y, allocation_interval_seconds
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING params_id;
	`

	now := time.Now()
	var paramsID int64
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, now, now,
		params.FeeBps, params.TargetRate, params.WeightX, params.WeightY,
		params.AllocationIntervalSeconds,
	).Scan(&paramsID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pool parameters: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit pool parameters: %w", err)
	}

	log.Info().
		Int64("params_id", paramsID).
		Str("config_name", configName).
		Int("version", version).
		Bool("active", makeActive).
		Msg("Pool parameters saved")

	return paramsID, nil
}

// LoadActivePoolParameters loads the currently active parameter set for a config name.
func LoadActivePoolParameters(configName string) (*types.PoolParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT fee_bps, target_rate, weight_x, weight_y, allocation_interval_seconds
		FROM pool_parameters
		WHERE config_name = $1 AND is_active = TRUE
		ORDER BY activated_at DESC
		LIMIT 1;
	`

	var params types.PoolParameters
	err := DB.QueryRow(query, configName).Scan(
		&params.FeeBps, &params.TargetRate, &params.WeightX, &params.WeightY,
		&params.AllocationIntervalSeconds,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no active pool parameters found for config %q", configName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active pool parameters: %w", err)
	}

	return &params, nil
}

// Store adapts the package-level persistence functions to the host runtime's
// snapshot-store interface.
type Store struct{}

func (Store) SaveMarketSnapshot(snapshot types.MarketSnapshot) (int64, error) {
	return SaveMarketSnapshot(snapshot)
}

func (Store) SaveAllocationReceipt(receipt types.AllocationReceipt) (int64, error) {
	return SaveAllocationReceipt(receipt)
}
