// ./internal/state/receipt_store.go
package state

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/tranchefi/duopool/internal/types"
)

// SaveAllocationReceipt saves a yield-allocation receipt to the database.
func SaveAllocationReceipt(receipt types.AllocationReceipt) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO allocation_receipts (
			cycle_id, market_id, receipt_timestamp, elapsed_seconds,
			interest_due, total_fees, surplus, shortfall, wipeout,
			principal_leveraged_after
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING receipt_id;
	`

	var receiptID int64
	err := DB.QueryRow(
		query,
		receipt.CycleID, uint64(receipt.MarketID), receipt.Timestamp, receipt.ElapsedSeconds,
		receipt.InterestDue.String(), receipt.TotalFees.String(),
		receipt.Surplus.String(), receipt.Shortfall.String(), receipt.Wipeout,
		receipt.PrincipalLeveragedAfter.String(),
	).Scan(&receiptID)
	if err != nil {
		return 0, fmt.Errorf("failed to save allocation receipt: %w", err)
	}

	log.Info().
		Int64("receipt_id", receiptID).
		Uint64("market_id", uint64(receipt.MarketID)).
		Str("interest_due", receipt.InterestDue.String()).
		Str("total_fees", receipt.TotalFees.String()).
		Msg("Allocation receipt saved to database")

	return receiptID, nil
}

// GetRecentReceipts returns the most recent allocation receipts, newest first.
func GetRecentReceipts(limit int) ([]types.AllocationReceipt, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT cycle_id, market_id, receipt_timestamp, elapsed_seconds,
			interest_due, total_fees, surplus, shortfall, wipeout,
			principal_leveraged_after
		FROM allocation_receipts
		ORDER BY receipt_timestamp DESC
		LIMIT $1;
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation receipts: %w", err)
	}
	defer rows.Close()

	var receipts []types.AllocationReceipt
	for rows.Next() {
		var receipt types.AllocationReceipt
		var rawID uint64
		var interestDue, totalFees, surplus, shortfall, principalAfter string
		if err := rows.Scan(
			&receipt.CycleID, &rawID, &receipt.Timestamp, &receipt.ElapsedSeconds,
			&interestDue, &totalFees, &surplus, &shortfall, &receipt.Wipeout,
			&principalAfter,
		); err != nil {
			return nil, fmt.Errorf("failed to scan allocation receipt: %w", err)
		}
		receipt.MarketID = types.MarketID(rawID)

		if receipt.InterestDue, err = parseInt(interestDue); err != nil {
			return nil, err
		}
		if receipt.TotalFees, err = parseInt(totalFees); err != nil {
			return nil, err
		}
		if receipt.Surplus, err = parseInt(surplus); err != nil {
			return nil, err
		}
		if receipt.Shortfall, err = parseInt(shortfall); err != nil {
			return nil, err
		}
		if receipt.PrincipalLeveragedAfter, err = parseInt(principalAfter); err != nil {
			return nil, err
		}

		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocation receipts: %w", err)
	}

	return receipts, nil
}

func parseInt(value string) (sdkmath.Int, error) {
	parsed, ok := sdkmath.NewIntFromString(value)
	if !ok {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to parse integer column value %q", value)
	}
	return parsed, nil
}
