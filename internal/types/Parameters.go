package types

// PoolParameters is the versioned operating configuration for new markets.
// Persisted to the database so parameter changes are auditable across restarts.
type PoolParameters struct {
	// FeeBps is the swap fee in basis points (30 = 0.30%).
	FeeBps int64 `json:"fee_bps"`

	// TargetRate is the default annualized yield promised to the fixed tranche,
	// as a fraction (0.20 = 20%/year).
	TargetRate float64 `json:"target_rate"`

	// WeightX and WeightY are the default asset weights for new markets.
	WeightX float64 `json:"weight_x"`
	WeightY float64 `json:"weight_y"`

	// AllocationIntervalSeconds is the cadence of the periodic yield allocator.
	AllocationIntervalSeconds int64 `json:"allocation_interval_seconds"`
}
