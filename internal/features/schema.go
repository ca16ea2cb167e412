package features

import (
	"fmt"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// Per-domain engineered feature names, in schema order. A disease's
// schema is the concatenation of the lists for the domains it consumes.

var labFeatureNames = []string{
	"glucose_latest",
	"hba1c_latest",
	"cholesterol_latest",
	"hdl_latest",
	"ldl_latest",
	"triglycerides_latest",
	"bp_systolic_latest",
	"bp_diastolic_latest",
	"heart_rate_latest",
	"alt_latest",
	"ast_latest",
	"creatinine_latest",
	"bun_latest",
	"glucose_trend",
	"hba1c_trend",
	"bp_systolic_trend",
	"cholesterol_trend",
	"glucose_variability",
	"bp_variability",
	"cholesterol_hdl_ratio",
	"pulse_pressure",
	"metabolic_risk_index",
	"prediabetes_flag",
	"prehypertension_flag",
}

var lifestyleFeatureNames = []string{
	"avg_sleep_hours",
	"sleep_consistency",
	"avg_exercise_minutes",
	"exercise_frequency",
	"avg_steps",
	"avg_water_intake",
	"dehydration_risk",
	"avg_alcohol_units",
	"smoking",
	"diet_quality_score",
	"meal_regularity",
	"sedentary_lifestyle",
}

var mentalFeatureNames = []string{
	"avg_stress_level",
	"avg_anxiety_level",
	"high_stress_frequency",
	"avg_mood_score",
	"low_mood_frequency",
	"social_interaction_score",
	"work_life_balance_score",
	"chronic_stress_flag",
	"depression_risk_flag",
}

var familyFeatureNames = []string{
	"family_diabetes",
	"family_hypertension",
	"family_heart_disease",
	"family_liver_disease",
	"family_mental_health",
	"has_family_diabetes",
	"has_family_hypertension",
	"has_family_heart_disease",
	"has_family_liver_disease",
	"has_family_mental_health",
	"genetic_risk_score",
}

// diseaseDomains maps each disease to the record domains it consumes,
// in schema order.
var diseaseDomains = map[string][]domain.RecordDomain{
	domain.DiseaseDiabetes:     {domain.DomainLab, domain.DomainLifestyle, domain.DomainFamilyHistory},
	domain.DiseaseHypertension: {domain.DomainLab, domain.DomainLifestyle, domain.DomainMentalHealth, domain.DomainFamilyHistory},
	domain.DiseaseLiver:        {domain.DomainLab, domain.DomainLifestyle, domain.DomainFamilyHistory},
	domain.DiseaseCardiac:      {domain.DomainLab, domain.DomainLifestyle, domain.DomainFamilyHistory},
	domain.DiseaseMentalHealth: {domain.DomainMentalHealth, domain.DomainLifestyle},
}

// domainFeatureNames returns the engineered feature names for one domain.
func domainFeatureNames(d domain.RecordDomain) []string {
	switch d {
	case domain.DomainLab:
		return labFeatureNames
	case domain.DomainLifestyle:
		return lifestyleFeatureNames
	case domain.DomainMentalHealth:
		return mentalFeatureNames
	case domain.DomainFamilyHistory:
		return familyFeatureNames
	}
	return nil
}

// SchemaSet holds the versioned feature schemas for every supported disease.
type SchemaSet struct {
	version string
	schemas map[string]*domain.FeatureSchema
}

// NewSchemaSet builds the schema set for a schema version.
func NewSchemaSet(version string) *SchemaSet {
	set := &SchemaSet{
		version: version,
		schemas: make(map[string]*domain.FeatureSchema, len(diseaseDomains)),
	}
	for disease, domains := range diseaseDomains {
		var names []string
		for _, d := range domains {
			names = append(names, domainFeatureNames(d)...)
		}
		set.schemas[disease] = &domain.FeatureSchema{
			Disease: disease,
			Version: version,
			Names:   names,
		}
	}
	return set
}

// Version returns the schema version tag.
func (s *SchemaSet) Version() string {
	return s.version
}

// Schema returns the feature schema for a disease.
func (s *SchemaSet) Schema(disease string) (*domain.FeatureSchema, error) {
	schema, ok := s.schemas[disease]
	if !ok {
		return nil, fmt.Errorf("no feature schema for disease: %s", disease)
	}
	return schema, nil
}

// Domains returns the record domains a disease's schema consumes.
func (s *SchemaSet) Domains(disease string) []domain.RecordDomain {
	return diseaseDomains[disease]
}

// ValidateVector checks that a feature vector exactly matches the
// disease's declared schema in name set and order. A mismatch is a
// programming error, not a data-quality issue, and is always fatal.
func ValidateVector(schema *domain.FeatureSchema, vector *domain.FeatureVector) error {
	if vector.Disease != schema.Disease {
		return domain.NewEngineError(domain.ErrSchemaMismatch,
			fmt.Sprintf("vector built for %s, schema is for %s", vector.Disease, schema.Disease), "")
	}
	if vector.SchemaVersion != schema.Version {
		return domain.NewEngineError(domain.ErrSchemaMismatch,
			fmt.Sprintf("vector schema version %s does not match %s", vector.SchemaVersion, schema.Version), "")
	}
	if len(vector.Names) != len(schema.Names) {
		return domain.NewEngineError(domain.ErrSchemaMismatch,
			fmt.Sprintf("vector has %d features, schema declares %d", len(vector.Names), len(schema.Names)), "")
	}
	for i, name := range schema.Names {
		if vector.Names[i] != name {
			return domain.NewEngineError(domain.ErrSchemaMismatch,
				fmt.Sprintf("feature %d is %q, schema declares %q", i, vector.Names[i], name), "")
		}
		if _, ok := vector.Values[name]; !ok {
			return domain.NewEngineError(domain.ErrSchemaMismatch,
				fmt.Sprintf("feature %q has no value", name), "")
		}
	}
	return nil
}
