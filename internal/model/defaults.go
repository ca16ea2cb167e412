package model

import (
	"fmt"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// SchemaProvider resolves the served feature schema per disease.
type SchemaProvider interface {
	Schema(disease string) (*domain.FeatureSchema, error)
}

// Built-in model parameters, distilled from clinical screening cut
// points (ADA glucose/HbA1c criteria, ACC/AHA blood pressure stages,
// standard lipid panel and transaminase reference ranges). They serve
// as the shipped artifacts until site-trained models replace them.

func diabetesStumps() []Stump {
	return []Stump{
		{Feature: "glucose_latest", Threshold: 100, Below: 0.10, Above: 0.45, Weight: 2.0},
		{Feature: "glucose_latest", Threshold: 125, Below: 0.20, Above: 0.85, Weight: 2.5},
		{Feature: "hba1c_latest", Threshold: 5.6, Below: 0.10, Above: 0.45, Weight: 2.0},
		{Feature: "hba1c_latest", Threshold: 6.4, Below: 0.20, Above: 0.90, Weight: 2.5},
		{Feature: "glucose_trend", Threshold: 1, Below: 0.15, Above: 0.60, Weight: 1.5},
		{Feature: "glucose_variability", Threshold: 15, Below: 0.15, Above: 0.45, Weight: 1.0},
		{Feature: "metabolic_risk_index", Threshold: 1, Below: 0.15, Above: 0.65, Weight: 1.5},
		{Feature: "family_diabetes", Threshold: 0, Below: 0.15, Above: 0.50, Weight: 1.5},
		{Feature: "sedentary_lifestyle", Threshold: 0, Below: 0.15, Above: 0.40, Weight: 1.0},
		{Feature: "prediabetes_flag", Threshold: 0, Below: 0.15, Above: 0.55, Weight: 1.0},
	}
}

func hypertensionWeights() (float64, []LogisticWeight) {
	return -2.2, []LogisticWeight{
		{Feature: "bp_systolic_latest", Coef: 1.4, Center: 118, Scale: 12},
		{Feature: "bp_diastolic_latest", Coef: 0.9, Center: 78, Scale: 8},
		{Feature: "bp_systolic_trend", Coef: 0.6, Center: 0, Scale: 2},
		{Feature: "bp_variability", Coef: 0.4, Center: 5, Scale: 5},
		{Feature: "prehypertension_flag", Coef: 0.5, Center: 0, Scale: 1},
		{Feature: "avg_stress_level", Coef: 0.4, Center: 5, Scale: 2},
		{Feature: "smoking", Coef: 0.5, Center: 0, Scale: 1},
		{Feature: "avg_alcohol_units", Coef: 0.3, Center: 0.5, Scale: 1},
		{Feature: "avg_sleep_hours", Coef: -0.3, Center: 7, Scale: 1.5},
		{Feature: "avg_exercise_minutes", Coef: -0.3, Center: 25, Scale: 20},
		{Feature: "family_hypertension", Coef: 0.6, Center: 0, Scale: 1},
	}
}

func liverStumps() []Stump {
	return []Stump{
		{Feature: "alt_latest", Threshold: 40, Below: 0.10, Above: 0.70, Weight: 2.5},
		{Feature: "ast_latest", Threshold: 40, Below: 0.10, Above: 0.65, Weight: 2.5},
		{Feature: "alt_latest", Threshold: 80, Below: 0.20, Above: 0.95, Weight: 2.0},
		{Feature: "avg_alcohol_units", Threshold: 2, Below: 0.15, Above: 0.60, Weight: 2.0},
		{Feature: "triglycerides_latest", Threshold: 200, Below: 0.15, Above: 0.45, Weight: 1.0},
		{Feature: "metabolic_risk_index", Threshold: 1.1, Below: 0.15, Above: 0.45, Weight: 1.0},
		{Feature: "family_liver_disease", Threshold: 0, Below: 0.15, Above: 0.50, Weight: 1.5},
	}
}

func cardiacStumps() []Stump {
	return []Stump{
		{Feature: "cholesterol_hdl_ratio", Threshold: 4.5, Below: 0.15, Above: 0.65, Weight: 2.0},
		{Feature: "ldl_latest", Threshold: 130, Below: 0.15, Above: 0.55, Weight: 2.0},
		{Feature: "ldl_latest", Threshold: 160, Below: 0.20, Above: 0.80, Weight: 1.5},
		{Feature: "bp_systolic_latest", Threshold: 140, Below: 0.15, Above: 0.65, Weight: 2.0},
		{Feature: "pulse_pressure", Threshold: 50, Below: 0.15, Above: 0.45, Weight: 1.0},
		{Feature: "heart_rate_latest", Threshold: 90, Below: 0.15, Above: 0.40, Weight: 1.0},
		{Feature: "smoking", Threshold: 0, Below: 0.15, Above: 0.60, Weight: 2.0},
		{Feature: "sedentary_lifestyle", Threshold: 0, Below: 0.15, Above: 0.45, Weight: 1.5},
		{Feature: "family_heart_disease", Threshold: 0, Below: 0.15, Above: 0.55, Weight: 2.0},
	}
}

func mentalHealthWeights() (float64, []LogisticWeight) {
	return -1.8, []LogisticWeight{
		{Feature: "avg_stress_level", Coef: 0.8, Center: 5, Scale: 2},
		{Feature: "avg_anxiety_level", Coef: 0.6, Center: 3, Scale: 2},
		{Feature: "high_stress_frequency", Coef: 0.5, Center: 0.2, Scale: 0.3},
		{Feature: "avg_mood_score", Coef: -0.8, Center: 3, Scale: 1},
		{Feature: "low_mood_frequency", Coef: 0.7, Center: 0.1, Scale: 0.3},
		{Feature: "social_interaction_score", Coef: -0.4, Center: 2, Scale: 1},
		{Feature: "work_life_balance_score", Coef: -0.4, Center: 2.5, Scale: 1},
		{Feature: "avg_sleep_hours", Coef: -0.4, Center: 7, Scale: 1.5},
		{Feature: "chronic_stress_flag", Coef: 0.5, Center: 0, Scale: 1},
		{Feature: "depression_risk_flag", Coef: 0.6, Center: 0, Scale: 1},
	}
}

// DefaultRegistry builds the registry of built-in adapters for the five
// supported diseases, in the engine's canonical order.
func DefaultRegistry(schemas SchemaProvider) (*Registry, error) {
	schemaFor := func(disease string) (*domain.FeatureSchema, error) {
		schema, err := schemas.Schema(disease)
		if err != nil {
			return nil, fmt.Errorf("cannot build default model for %s: %w", disease, err)
		}
		return schema, nil
	}

	diabetesSchema, err := schemaFor(domain.DiseaseDiabetes)
	if err != nil {
		return nil, err
	}
	hypertensionSchema, err := schemaFor(domain.DiseaseHypertension)
	if err != nil {
		return nil, err
	}
	liverSchema, err := schemaFor(domain.DiseaseLiver)
	if err != nil {
		return nil, err
	}
	cardiacSchema, err := schemaFor(domain.DiseaseCardiac)
	if err != nil {
		return nil, err
	}
	mentalSchema, err := schemaFor(domain.DiseaseMentalHealth)
	if err != nil {
		return nil, err
	}

	hyIntercept, hyWeights := hypertensionWeights()
	mhIntercept, mhWeights := mentalHealthWeights()

	return NewRegistry(
		NewTreeEnsemble(domain.DiseaseDiabetes, diabetesSchema, diabetesStumps()),
		NewLogistic(domain.DiseaseHypertension, hypertensionSchema, hyIntercept, hyWeights),
		NewTreeEnsemble(domain.DiseaseLiver, liverSchema, liverStumps()),
		NewTreeEnsemble(domain.DiseaseCardiac, cardiacSchema, cardiacStumps()),
		NewLogistic(domain.DiseaseMentalHealth, mentalSchema, mhIntercept, mhWeights),
	)
}
