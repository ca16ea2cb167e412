package domain

import (
	"time"
)

// CompletenessReport scores how much of the expected longitudinal data
// exists per domain. Every fraction is in [0,1]. The report never gates
// scoring; it annotates the assessment so callers can warn users.
type CompletenessReport struct {
	ByDomain   map[RecordDomain]float64 `json:"by_domain"`
	Overall    float64                  `json:"overall"`
	Confidence ConfidenceLevel          `json:"confidence"`
}

// FeatureSchema declares the exact feature set, in order, that a disease
// model consumes. Schemas are versioned so historical assessments remain
// reproducible if the feature set changes later.
type FeatureSchema struct {
	Disease string   `json:"disease"`
	Version string   `json:"version"`
	Names   []string `json:"names"`
}

// FeatureVector is the fixed-shape numeric input to one disease's model.
// Every name in the schema is present; absent inputs are imputed and
// flagged via Provenance rather than left missing.
type FeatureVector struct {
	Disease       string                `json:"disease"`
	SchemaVersion string                `json:"feature_schema_version"`
	Names         []string              `json:"names"`
	Values        map[string]float64    `json:"values"`
	Provenance    map[string]Provenance `json:"provenance"`
}

// Get returns the named feature value. Missing names return 0; the schema
// guard ensures this never happens for a vector that reached an adapter.
func (v *FeatureVector) Get(name string) float64 {
	return v.Values[name]
}

// Ordered returns the values in schema order.
func (v *FeatureVector) Ordered() []float64 {
	out := make([]float64, len(v.Names))
	for i, name := range v.Names {
		out[i] = v.Values[name]
	}
	return out
}

// ContributingFactor is one feature's signed contribution to a risk score.
type ContributingFactor struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
	Imputed      bool    `json:"imputed,omitempty"`
}

// RiskScore is the calibrated, public-facing risk for one disease.
// Probability is a percentage in [0,100] with two-decimal precision.
type RiskScore struct {
	Disease             string               `json:"disease"`
	Probability         float64              `json:"probability"`
	Tier                RiskTier             `json:"tier"`
	ContributingFactors []ContributingFactor `json:"contributing_factors"`
}

// Recommendation is one ranked preventive action. Lower priority values
// are more urgent. Texts are deduplicated across diseases.
type Recommendation struct {
	Text     string `json:"text"`
	Disease  string `json:"disease"`
	Priority int    `json:"priority"`
}

// SkippedDisease records a disease whose model could not be scored,
// together with the error code that caused the skip.
type SkippedDisease struct {
	Disease string `json:"disease"`
	Code    string `json:"code"`
	Reason  string `json:"reason"`
}

// AssessmentResult is one complete scoring invocation for a subject.
// Immutable after creation; superseded, never mutated, by later
// assessments. RiskScores follow disease registration order.
type AssessmentResult struct {
	ID              string             `json:"id"`
	SubjectID       string             `json:"subject_id"`
	GeneratedAt     time.Time          `json:"generated_at"`
	SchemaVersion   string             `json:"feature_schema_version"`
	Completeness    CompletenessReport `json:"completeness"`
	RiskScores      []RiskScore        `json:"risk_scores"`
	Recommendations []Recommendation   `json:"recommendations"`
	Skipped         []SkippedDisease   `json:"skipped,omitempty"`
	OverallRisk     float64            `json:"overall_risk"`
	NextAssessment  string             `json:"next_assessment"`
}

// Score returns the risk score for a disease, if it was scored.
func (r *AssessmentResult) Score(disease string) (RiskScore, bool) {
	for _, s := range r.RiskScores {
		if s.Disease == disease {
			return s, true
		}
	}
	return RiskScore{}, false
}
