// ./internal/state/snapshot_store.go
package state

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tranchefi/duopool/internal/types"
)

// SaveMarketSnapshot saves a point-in-time market copy to the database.
func SaveMarketSnapshot(snapshot types.MarketSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	marketJSON, err := json.Marshal(snapshot.Market)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal market: %w", err)
	}

	query := `
		INSERT INTO market_snapshots (cycle_id, market_id, snapshot_timestamp, market)
		VALUES ($1, $2, $3, $4)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err = DB.QueryRow(
		query,
		snapshot.CycleID, uint64(snapshot.MarketID), snapshot.Timestamp, marketJSON,
	).Scan(&snapshotID)
	if err != nil {
		return 0, fmt.Errorf("failed to save market snapshot: %w", err)
	}

	log.Debug().
		Int64("snapshot_id", snapshotID).
		Uint64("market_id", uint64(snapshot.MarketID)).
		Str("cycle_id", snapshot.CycleID).
		Msg("Market snapshot saved to database")

	return snapshotID, nil
}

// GetRecentSnapshots returns the most recent snapshots for a market, newest first.
func GetRecentSnapshots(marketID types.MarketID, limit int) ([]types.MarketSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT cycle_id, market_id, snapshot_timestamp, market
		FROM market_snapshots
		WHERE market_id = $1
		ORDER BY snapshot_timestamp DESC
		LIMIT $2;
	`

	rows, err := DB.Query(query, uint64(marketID), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query market snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []types.MarketSnapshot
	for rows.Next() {
		var (
			snap       types.MarketSnapshot
			rawID      uint64
			marketJSON []byte
		)
		if err := rows.Scan(&snap.CycleID, &rawID, &snap.Timestamp, &marketJSON); err != nil {
			return nil, fmt.Errorf("failed to scan market snapshot: %w", err)
		}
		snap.MarketID = types.MarketID(rawID)
		if err := json.Unmarshal(marketJSON, &snap.Market); err != nil {
			return nil, fmt.Errorf("failed to unmarshal market: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate market snapshots: %w", err)
	}

	return snapshots, nil
}
