// Package model wraps pre-trained disease models behind a uniform
// inference capability. Adapters are stateless and safe for concurrent
// use; training, hyperparameter search and artifact formats beyond the
// inference contract live elsewhere.
package model

import (
	"context"
	"fmt"
	"math"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// checkVector guards every Predict call: the vector must exactly match
// the adapter's declared schema before it reaches model code.
func checkVector(schema *domain.FeatureSchema, vector *domain.FeatureVector) error {
	if vector == nil {
		return domain.NewEngineError(domain.ErrSchemaMismatch, "nil feature vector", "")
	}
	if len(vector.Names) != len(schema.Names) {
		return domain.NewEngineError(domain.ErrSchemaMismatch,
			fmt.Sprintf("vector has %d features, model requires %d", len(vector.Names), len(schema.Names)), "")
	}
	for i, name := range schema.Names {
		if vector.Names[i] != name {
			return domain.NewEngineError(domain.ErrSchemaMismatch,
				fmt.Sprintf("feature %d is %q, model requires %q", i, vector.Names[i], name), "")
		}
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// unavailableAdapter stands in for a model whose artifact failed to
// load. Predict always fails with MODEL_UNAVAILABLE so the engine skips
// the disease instead of aborting the assessment.
type unavailableAdapter struct {
	disease string
	schema  *domain.FeatureSchema
	cause   error
}

// NewUnavailable creates an adapter representing a failed model load.
func NewUnavailable(disease string, schema *domain.FeatureSchema, cause error) domain.ModelAdapter {
	return &unavailableAdapter{disease: disease, schema: schema, cause: cause}
}

func (a *unavailableAdapter) Disease() string { return a.disease }

func (a *unavailableAdapter) RequiredSchema() *domain.FeatureSchema { return a.schema }

func (a *unavailableAdapter) FeatureImportances() map[string]float64 { return nil }

func (a *unavailableAdapter) Predict(ctx context.Context, vector *domain.FeatureVector) (float64, error) {
	return 0, domain.NewEngineError(domain.ErrModelUnavailable,
		fmt.Sprintf("model for %s is unavailable", a.disease),
		fmt.Sprintf("%v", a.cause))
}
