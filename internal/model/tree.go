package model

import (
	"context"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// Stump is a single-split decision rule: when the feature exceeds the
// threshold the stump votes Above, otherwise Below. Both votes are
// probabilities in [0,1].
type Stump struct {
	Feature   string  `json:"feature"`
	Threshold float64 `json:"threshold"`
	Below     float64 `json:"below"`
	Above     float64 `json:"above"`
	Weight    float64 `json:"weight"`
}

// TreeEnsembleAdapter serves an ensemble of decision stumps. The raw
// probability is the weighted mean of the stump votes, clamped to [0,1].
type TreeEnsembleAdapter struct {
	disease string
	schema  *domain.FeatureSchema
	stumps  []Stump
}

// NewTreeEnsemble wraps a stump ensemble as a model adapter.
func NewTreeEnsemble(disease string, schema *domain.FeatureSchema, stumps []Stump) *TreeEnsembleAdapter {
	return &TreeEnsembleAdapter{
		disease: disease,
		schema:  schema,
		stumps:  stumps,
	}
}

func (a *TreeEnsembleAdapter) Disease() string { return a.disease }

func (a *TreeEnsembleAdapter) RequiredSchema() *domain.FeatureSchema { return a.schema }

// FeatureImportances returns per-feature split weights, normalized.
func (a *TreeEnsembleAdapter) FeatureImportances() map[string]float64 {
	raw := make(map[string]float64, len(a.stumps))
	total := 0.0
	for _, s := range a.stumps {
		raw[s.Feature] += s.Weight
		total += s.Weight
	}
	if total == 0 {
		return raw
	}
	for feature := range raw {
		raw[feature] /= total
	}
	return raw
}

// Predict computes the weighted mean vote of the ensemble.
func (a *TreeEnsembleAdapter) Predict(ctx context.Context, vector *domain.FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := checkVector(a.schema, vector); err != nil {
		return 0, err
	}
	if len(a.stumps) == 0 {
		return 0, domain.NewEngineError(domain.ErrModelUnavailable,
			"tree ensemble for "+a.disease+" has no stumps", "")
	}

	var sum, weight float64
	for _, s := range a.stumps {
		vote := s.Below
		if vector.Values[s.Feature] > s.Threshold {
			vote = s.Above
		}
		sum += vote * s.Weight
		weight += s.Weight
	}
	if weight == 0 {
		return 0, domain.NewEngineError(domain.ErrModelUnavailable,
			"tree ensemble for "+a.disease+" has zero total weight", "")
	}
	return clamp01(sum / weight), nil
}
