package domain

// Core Enums and Types

// RecordDomain identifies one category of longitudinal health data.
type RecordDomain string

const (
	DomainLab           RecordDomain = "lab"
	DomainLifestyle     RecordDomain = "lifestyle"
	DomainMentalHealth  RecordDomain = "mental_health"
	DomainFamilyHistory RecordDomain = "family_history"
)

// AllDomains lists every record domain in canonical order.
var AllDomains = []RecordDomain{
	DomainLab,
	DomainLifestyle,
	DomainMentalHealth,
	DomainFamilyHistory,
}

// String returns the string representation of the record domain.
func (d RecordDomain) String() string {
	return string(d)
}

// Valid reports whether the domain is one of the known record domains.
func (d RecordDomain) Valid() bool {
	switch d {
	case DomainLab, DomainLifestyle, DomainMentalHealth, DomainFamilyHistory:
		return true
	}
	return false
}

// RiskTier represents the discrete risk bucket derived from a calibrated probability.
type RiskTier string

const (
	TierLow      RiskTier = "low"
	TierMedium   RiskTier = "medium"
	TierHigh     RiskTier = "high"
	TierVeryHigh RiskTier = "very_high"
)

// String returns the string representation of the risk tier.
func (t RiskTier) String() string {
	return string(t)
}

// Provenance records how a feature value was obtained.
type Provenance string

const (
	ProvenanceObserved          Provenance = "observed"
	ProvenanceImputed           Provenance = "imputed"
	ProvenanceTrendInsufficient Provenance = "trend_insufficient"
)

// String returns the string representation of the provenance flag.
func (p Provenance) String() string {
	return string(p)
}

// ConfidenceLevel represents the confidence in an assessment, derived
// from data completeness.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// String returns the string representation of the confidence level.
func (c ConfidenceLevel) String() string {
	return string(c)
}

// Supported diseases. Registration order is part of the public contract:
// RiskScores in an AssessmentResult follow the registry's order.
const (
	DiseaseDiabetes     = "diabetes"
	DiseaseHypertension = "hypertension"
	DiseaseLiver        = "liver_disease"
	DiseaseCardiac      = "cardiac_risk"
	DiseaseMentalHealth = "mental_health"
)

// AllDiseases lists the supported diseases in canonical order.
var AllDiseases = []string{
	DiseaseDiabetes,
	DiseaseHypertension,
	DiseaseLiver,
	DiseaseCardiac,
	DiseaseMentalHealth,
}

// ValidDisease reports whether name is a supported disease.
func ValidDisease(name string) bool {
	for _, d := range AllDiseases {
		if d == name {
			return true
		}
	}
	return false
}
