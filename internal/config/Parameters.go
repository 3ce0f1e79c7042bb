package config

import (
	"github.com/tranchefi/duopool/internal/types"
)

// DefaultPoolParameters is the fallback parameter set used when no active
// version exists in the database yet. New markets default to a 50/50 weighting
// and a 20%/year fixed-tranche rate.
var DefaultPoolParameters = types.PoolParameters{
	FeeBps:                    30, // 0.30%
	TargetRate:                0.20,
	WeightX:                   0.5,
	WeightY:                   0.5,
	AllocationIntervalSeconds: 3600,
}
