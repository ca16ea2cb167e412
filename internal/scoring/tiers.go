package scoring

import (
	"fmt"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// TierThresholds partitions the score range [0,100] into the four risk
// tiers with three strictly increasing cut points. A score equal to a
// cut point falls into the higher tier.
type TierThresholds struct {
	cuts [3]float64
}

// DefaultTierCuts are the shipped tier boundaries.
var DefaultTierCuts = []float64{25, 50, 75}

// NewTierThresholds validates and builds tier thresholds. Exactly three
// cut points are required, strictly increasing, strictly inside (0,100).
func NewTierThresholds(cuts []float64) (*TierThresholds, error) {
	if len(cuts) != 3 {
		return nil, domain.NewEngineError(domain.ErrInvalidConfig,
			fmt.Sprintf("tier thresholds need exactly 3 cut points, got %d", len(cuts)), "")
	}
	prev := 0.0
	for i, c := range cuts {
		if c <= prev || c >= 100 {
			return nil, domain.NewEngineError(domain.ErrInvalidConfig,
				fmt.Sprintf("tier cut %d (%.2f) must be strictly increasing within (0,100)", i, c), "")
		}
		prev = c
	}
	return &TierThresholds{cuts: [3]float64{cuts[0], cuts[1], cuts[2]}}, nil
}

// TierFor maps a score in [0,100] to its risk tier. Every score maps to
// exactly one tier.
func (t *TierThresholds) TierFor(score float64) domain.RiskTier {
	switch {
	case score < t.cuts[0]:
		return domain.TierLow
	case score < t.cuts[1]:
		return domain.TierMedium
	case score < t.cuts[2]:
		return domain.TierHigh
	default:
		return domain.TierVeryHigh
	}
}

// Cuts returns a copy of the cut points.
func (t *TierThresholds) Cuts() []float64 {
	return []float64{t.cuts[0], t.cuts[1], t.cuts[2]}
}
