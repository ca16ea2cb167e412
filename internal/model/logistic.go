package model

import (
	"context"
	"math"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// LogisticWeight is one term of a logistic model: the feature is
// standardized against (Center, Scale) before the coefficient applies.
type LogisticWeight struct {
	Feature string  `json:"feature"`
	Coef    float64 `json:"coef"`
	Center  float64 `json:"center"`
	Scale   float64 `json:"scale"`
}

// LogisticAdapter serves a standardized logistic-regression artifact.
type LogisticAdapter struct {
	disease   string
	schema    *domain.FeatureSchema
	intercept float64
	weights   []LogisticWeight
}

// NewLogistic wraps logistic-regression parameters as a model adapter.
func NewLogistic(disease string, schema *domain.FeatureSchema, intercept float64, weights []LogisticWeight) *LogisticAdapter {
	return &LogisticAdapter{
		disease:   disease,
		schema:    schema,
		intercept: intercept,
		weights:   weights,
	}
}

func (a *LogisticAdapter) Disease() string { return a.disease }

func (a *LogisticAdapter) RequiredSchema() *domain.FeatureSchema { return a.schema }

// FeatureImportances returns normalized absolute coefficients.
func (a *LogisticAdapter) FeatureImportances() map[string]float64 {
	total := 0.0
	for _, w := range a.weights {
		total += math.Abs(w.Coef)
	}
	out := make(map[string]float64, len(a.weights))
	if total == 0 {
		return out
	}
	for _, w := range a.weights {
		out[w.Feature] = math.Abs(w.Coef) / total
	}
	return out
}

// Predict computes sigmoid(intercept + sum(coef * standardized value)).
// The result is a raw probability in [0,1].
func (a *LogisticAdapter) Predict(ctx context.Context, vector *domain.FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := checkVector(a.schema, vector); err != nil {
		return 0, err
	}

	z := a.intercept
	for _, w := range a.weights {
		v := vector.Values[w.Feature]
		scale := w.Scale
		if scale == 0 {
			scale = 1
		}
		z += w.Coef * (v - w.Center) / scale
	}
	return sigmoid(z), nil
}
