package features

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// Engineer transforms raw per-domain record histories into fixed-shape
// feature vectors, one per disease. All operations are pure: the same
// history always yields the same vector.
type Engineer struct {
	logger  *logrus.Logger
	schemas *SchemaSet
}

// NewEngineer creates a feature engineer for a schema version.
func NewEngineer(logger *logrus.Logger, schemas *SchemaSet) *Engineer {
	return &Engineer{
		logger:  logger,
		schemas: schemas,
	}
}

// Schemas returns the engineer's schema set.
func (e *Engineer) Schemas() *SchemaSet {
	return e.schemas
}

// BuildVector engineers the feature vector for one disease from the
// subject's record histories. Histories may be empty per domain; every
// schema feature still receives a value (imputation never errors).
// The returned vector is guaranteed to pass ValidateVector.
func (e *Engineer) BuildVector(disease string, histories map[domain.RecordDomain][]domain.HealthRecord) (*domain.FeatureVector, error) {
	schema, err := e.schemas.Schema(disease)
	if err != nil {
		return nil, err
	}

	vector := &domain.FeatureVector{
		Disease:       disease,
		SchemaVersion: schema.Version,
		Names:         schema.Names,
		Values:        make(map[string]float64, len(schema.Names)),
		Provenance:    make(map[string]domain.Provenance, len(schema.Names)),
	}

	for _, d := range e.schemas.Domains(disease) {
		records := append([]domain.HealthRecord(nil), histories[d]...)
		domain.SortByTime(records)

		set := extractDomain(d, records)
		for name, v := range set.values {
			vector.Values[name] = v
			vector.Provenance[name] = set.prov[name]
		}
	}

	if err := ValidateVector(schema, vector); err != nil {
		// Extractor and schema disagree: programming error, never data quality.
		return nil, fmt.Errorf("engineered vector failed schema guard: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"disease":        disease,
		"schema_version": schema.Version,
		"features":       len(vector.Names),
		"imputed":        countProvenance(vector, domain.ProvenanceImputed),
	}).Debug("Feature vector engineered")

	return vector, nil
}

// countProvenance counts features carrying the given provenance flag.
func countProvenance(v *domain.FeatureVector, p domain.Provenance) int {
	n := 0
	for _, got := range v.Provenance {
		if got == p {
			n++
		}
	}
	return n
}
