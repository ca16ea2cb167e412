package features

import (
	"github.com/medwhisper/risk-engine/internal/domain"
)

// requiredFields lists the raw record fields expected per domain when
// scoring completeness.
var requiredFields = map[domain.RecordDomain][]string{
	domain.DomainLab: {
		"glucose", "hba1c", "cholesterol", "hdl", "ldl", "triglycerides",
		"bp_systolic", "bp_diastolic", "heart_rate", "alt", "ast", "creatinine", "bun",
	},
	domain.DomainLifestyle: {
		"sleep_hours", "sleep_quality", "exercise_minutes", "steps",
		"water_intake_ml", "alcohol_units", "smoking", "diet_quality", "meals_eaten",
	},
	domain.DomainMentalHealth: {
		"stress_level", "anxiety_level", "mood", "social_interaction", "work_life_balance",
	},
	domain.DomainFamilyHistory: {
		"family_diabetes", "family_hypertension", "family_heart_disease",
		"family_liver_disease", "family_mental_health",
	},
}

// Assessor scores how much of the expected longitudinal data exists for
// a subject. It never blocks scoring, only annotates it.
type Assessor struct {
	weights          map[domain.RecordDomain]float64
	minHistoryLength int
}

// NewAssessor creates a completeness assessor. Weights must sum to 1
// (validated by the config layer); nil weights default to uniform.
func NewAssessor(weights map[string]float64, minHistoryLength int) *Assessor {
	a := &Assessor{
		weights:          make(map[domain.RecordDomain]float64, len(domain.AllDomains)),
		minHistoryLength: minHistoryLength,
	}
	if a.minHistoryLength < 1 {
		a.minHistoryLength = 1
	}

	if len(weights) == 0 {
		uniform := 1.0 / float64(len(domain.AllDomains))
		for _, d := range domain.AllDomains {
			a.weights[d] = uniform
		}
		return a
	}
	for name, w := range weights {
		a.weights[domain.RecordDomain(name)] = w
	}
	return a
}

// Assess computes the completeness report for a subject's full record
// history. A domain with zero records yields completeness 0, never an
// error; every fraction is in [0,1].
func (a *Assessor) Assess(histories map[domain.RecordDomain][]domain.HealthRecord) domain.CompletenessReport {
	report := domain.CompletenessReport{
		ByDomain: make(map[domain.RecordDomain]float64, len(domain.AllDomains)),
	}

	for _, d := range domain.AllDomains {
		report.ByDomain[d] = a.domainCompleteness(d, histories[d])
	}

	var overall float64
	for d, frac := range report.ByDomain {
		overall += frac * a.weights[d]
	}
	report.Overall = clamp01(overall)
	report.Confidence = confidenceFor(report.Overall)

	return report
}

// domainCompleteness is the fraction of expected field observations seen
// across the domain's history: observed non-null required fields over
// (required fields x minimum history length), capped at 1.
func (a *Assessor) domainCompleteness(d domain.RecordDomain, records []domain.HealthRecord) float64 {
	required := requiredFields[d]
	if len(required) == 0 || len(records) == 0 {
		return 0
	}

	observed := 0
	for _, r := range records {
		for _, field := range required {
			if _, ok := r.Value(field); ok {
				observed++
			}
		}
	}

	expected := len(required) * a.minHistoryLength
	return clamp01(float64(observed) / float64(expected))
}

// confidenceFor maps overall completeness to an assessment confidence level.
func confidenceFor(overall float64) domain.ConfidenceLevel {
	switch {
	case overall >= 0.8:
		return domain.ConfidenceHigh
	case overall >= 0.5:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
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
