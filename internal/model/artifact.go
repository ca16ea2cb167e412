package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// Model families understood by the artifact loader.
const (
	FamilyLogistic     = "logistic"
	FamilyTreeEnsemble = "tree_ensemble"
)

// Artifact is the on-disk model description. Exactly one of the
// family-specific sections is populated.
type Artifact struct {
	Disease       string           `json:"disease"`
	Family        string           `json:"family"`
	SchemaVersion string           `json:"schema_version"`
	Intercept     float64          `json:"intercept,omitempty"`
	Weights       []LogisticWeight `json:"weights,omitempty"`
	Stumps        []Stump          `json:"stumps,omitempty"`
}

// FromArtifact builds an adapter from a parsed artifact. The artifact's
// schema version must match the served schema.
func FromArtifact(art *Artifact, schema *domain.FeatureSchema) (domain.ModelAdapter, error) {
	if art.Disease != schema.Disease {
		return nil, fmt.Errorf("artifact is for %s, schema is for %s", art.Disease, schema.Disease)
	}
	if art.SchemaVersion != schema.Version {
		return nil, fmt.Errorf("artifact schema version %s does not match served version %s",
			art.SchemaVersion, schema.Version)
	}

	switch art.Family {
	case FamilyLogistic:
		if len(art.Weights) == 0 {
			return nil, fmt.Errorf("logistic artifact for %s has no weights", art.Disease)
		}
		return NewLogistic(art.Disease, schema, art.Intercept, art.Weights), nil
	case FamilyTreeEnsemble:
		if len(art.Stumps) == 0 {
			return nil, fmt.Errorf("tree ensemble artifact for %s has no stumps", art.Disease)
		}
		return NewTreeEnsemble(art.Disease, schema, art.Stumps), nil
	default:
		return nil, fmt.Errorf("unknown model family: %s", art.Family)
	}
}

// LoadArtifact reads and parses a model artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact %s: %w", path, err)
	}
	return &art, nil
}

// LoadAdapter loads a model artifact and wraps it as an adapter. A load
// or parse failure never fails startup: the disease gets an adapter
// whose Predict reports MODEL_UNAVAILABLE, and the engine skips it.
func LoadAdapter(logger *logrus.Logger, path, disease string, schema *domain.FeatureSchema) domain.ModelAdapter {
	art, err := LoadArtifact(path)
	if err == nil {
		adapter, buildErr := FromArtifact(art, schema)
		if buildErr == nil {
			return adapter
		}
		err = buildErr
	}

	logger.WithFields(logrus.Fields{
		"disease": disease,
		"path":    path,
		"error":   err.Error(),
	}).Warn("Model artifact unavailable, disease will be skipped")
	return NewUnavailable(disease, schema, err)
}
