package scoring

import (
	"math"
	"sort"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// DefaultTopFactors is the number of contributing factors published per
// score when the configuration does not override it.
const DefaultTopFactors = 5

// TopFactors attributes a score to its strongest features. A feature's
// contribution is its model importance times the deviation of its value
// from the disease baseline, normalized by the baseline magnitude so
// features on different unit scales compare fairly. Factors derived from
// imputed inputs are flagged so callers can discount them.
func TopFactors(importances map[string]float64, vector, baseline *domain.FeatureVector, k int) []domain.ContributingFactor {
	if k <= 0 || len(importances) == 0 {
		return nil
	}

	factors := make([]domain.ContributingFactor, 0, len(importances))
	for feature, importance := range importances {
		if importance == 0 {
			continue
		}
		deviation := vector.Get(feature) - baseline.Get(feature)
		scale := math.Abs(baseline.Get(feature))
		if scale < 1 {
			scale = 1
		}
		factors = append(factors, domain.ContributingFactor{
			Feature:      feature,
			Contribution: round2(importance * deviation / scale),
			Imputed:      vector.Provenance[feature] != domain.ProvenanceObserved,
		})
	}

	// Strongest absolute contribution first; name breaks ties so the
	// ordering is deterministic across runs.
	sort.Slice(factors, func(i, j int) bool {
		ai, aj := math.Abs(factors[i].Contribution), math.Abs(factors[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return factors[i].Feature < factors[j].Feature
	})

	if len(factors) > k {
		factors = factors[:k]
	}
	return factors
}
