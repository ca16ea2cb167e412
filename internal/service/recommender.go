// Package service implements the risk assessment engine: orchestration
// of completeness, feature engineering, model inference, scoring,
// recommendations and persistence.
package service

import (
	"sort"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// recommendationTable maps disease and tier to ranked preventive
// actions. Priority 1 is most urgent. The same text may appear under
// several diseases; the generator deduplicates by text.
var recommendationTable = map[string]map[domain.RiskTier][]domain.Recommendation{
	domain.DiseaseDiabetes: {
		domain.TierLow: {
			{Text: "Maintain a balanced diet and regular physical activity", Priority: 5},
		},
		domain.TierMedium: {
			{Text: "Reduce refined sugar and carbohydrate intake", Priority: 3},
			{Text: "Schedule an HbA1c recheck within three months", Priority: 4},
		},
		domain.TierHigh: {
			{Text: "Consult an endocrinologist about glucose management", Priority: 2},
			{Text: "Reduce refined sugar and carbohydrate intake", Priority: 2},
			{Text: "Monitor fasting glucose weekly", Priority: 3},
		},
		domain.TierVeryHigh: {
			{Text: "Seek medical evaluation for diabetes urgently", Priority: 1},
			{Text: "Monitor fasting glucose daily until reviewed", Priority: 2},
		},
	},
	domain.DiseaseHypertension: {
		domain.TierLow: {
			{Text: "Keep sodium intake moderate and stay active", Priority: 5},
		},
		domain.TierMedium: {
			{Text: "Reduce dietary sodium below 2300 mg per day", Priority: 3},
			{Text: "Check blood pressure twice weekly", Priority: 4},
		},
		domain.TierHigh: {
			{Text: "Consult a physician about blood pressure management", Priority: 2},
			{Text: "Check blood pressure daily", Priority: 3},
			{Text: "Limit alcohol and stop smoking", Priority: 3},
		},
		domain.TierVeryHigh: {
			{Text: "Seek medical evaluation for hypertension urgently", Priority: 1},
			{Text: "Check blood pressure daily", Priority: 2},
		},
	},
	domain.DiseaseLiver: {
		domain.TierLow: {
			{Text: "Keep alcohol consumption within low-risk limits", Priority: 5},
		},
		domain.TierMedium: {
			{Text: "Reduce alcohol consumption", Priority: 3},
			{Text: "Repeat liver function tests within three months", Priority: 4},
		},
		domain.TierHigh: {
			{Text: "Consult a hepatologist about elevated liver enzymes", Priority: 2},
			{Text: "Stop alcohol consumption", Priority: 2},
		},
		domain.TierVeryHigh: {
			{Text: "Seek medical evaluation for liver disease urgently", Priority: 1},
			{Text: "Stop alcohol consumption", Priority: 1},
		},
	},
	domain.DiseaseCardiac: {
		domain.TierLow: {
			{Text: "Maintain a balanced diet and regular physical activity", Priority: 5},
		},
		domain.TierMedium: {
			{Text: "Increase aerobic exercise to 150 minutes per week", Priority: 3},
			{Text: "Review cholesterol with your physician", Priority: 4},
		},
		domain.TierHigh: {
			{Text: "Consult a cardiologist about cardiovascular risk", Priority: 2},
			{Text: "Limit alcohol and stop smoking", Priority: 2},
		},
		domain.TierVeryHigh: {
			{Text: "Seek cardiac evaluation urgently", Priority: 1},
			{Text: "Limit alcohol and stop smoking", Priority: 1},
		},
	},
	domain.DiseaseMentalHealth: {
		domain.TierLow: {
			{Text: "Keep regular sleep and social routines", Priority: 5},
		},
		domain.TierMedium: {
			{Text: "Practice daily stress reduction techniques", Priority: 3},
			{Text: "Protect 7 to 8 hours of sleep", Priority: 4},
		},
		domain.TierHigh: {
			{Text: "Consult a mental health professional", Priority: 2},
			{Text: "Practice daily stress reduction techniques", Priority: 2},
		},
		domain.TierVeryHigh: {
			{Text: "Seek mental health support urgently", Priority: 1},
		},
	},
}

// personalizedRule fires a recommendation when a single engineered
// feature crosses its threshold. Rules only consult observed values:
// an imputed feature reflects a population default, not the subject,
// so it never triggers personalized advice.
type personalizedRule struct {
	feature string
	fires   func(value float64) bool
	text    string
}

// personalizedRules maps disease to the feature-conditioned advice
// layered on top of the tier table. Thresholds follow the engineered
// feature scales: stress and interaction on 0-10, alcohol in units per
// day, sleep in hours, exercise in minutes per day.
var personalizedRules = map[string][]personalizedRule{
	domain.DiseaseDiabetes: {
		{"sedentary_lifestyle", func(v float64) bool { return v == 1 },
			"Increase physical activity to at least 150 minutes per week"},
		{"diet_quality_score", func(v float64) bool { return v < 2.5 },
			"Consult a nutritionist for a diabetes-prevention diet plan"},
	},
	domain.DiseaseHypertension: {
		{"avg_stress_level", func(v float64) bool { return v >= 7 },
			"Practice stress-reduction techniques like meditation or yoga"},
		{"avg_alcohol_units", func(v float64) bool { return v > 2 },
			"Reduce alcohol consumption to recommended limits"},
	},
	domain.DiseaseLiver: {
		{"avg_alcohol_units", func(v float64) bool { return v > 2 },
			"Reduce alcohol consumption to recommended limits"},
	},
	domain.DiseaseCardiac: {
		{"smoking", func(v float64) bool { return v > 0 },
			"Stop smoking and seek cessation support"},
		{"avg_exercise_minutes", func(v float64) bool { return v < 20 },
			"Increase physical activity to at least 150 minutes per week"},
	},
	domain.DiseaseMentalHealth: {
		{"avg_sleep_hours", func(v float64) bool { return v < 6 },
			"Improve sleep hygiene and aim for 7 to 9 hours of sleep"},
		{"social_interaction_score", func(v float64) bool { return v <= 1 },
			"Increase social connections and community engagement"},
	},
}

// personalizedPriority ranks feature-conditioned advice below urgent
// tier actions but above routine maintenance.
const personalizedPriority = 3

// Recommender turns per-disease scores and feature vectors into a
// deduplicated, ranked action list.
type Recommender struct{}

// NewRecommender creates the rule-based recommendation generator.
func NewRecommender() *Recommender {
	return &Recommender{}
}

// Generate produces recommendations for the scored diseases, in score
// order: the tier table entries first, then feature-conditioned advice
// from each disease's vector. Personalized rules fire only on observed
// feature values; imputed and trend-insufficient features stay silent.
// Identical texts recommended by several diseases collapse into one
// entry keeping the most urgent (lowest) priority, attributed to the
// disease that supplied that priority. Zero scored diseases yield an
// empty, non-nil list. The output is sorted by priority, then by first
// appearance, so equal inputs always produce identical output.
func (r *Recommender) Generate(scores []domain.RiskScore, vectors map[string]*domain.FeatureVector) []domain.Recommendation {
	out := make([]domain.Recommendation, 0)
	index := make(map[string]int)

	add := func(disease, text string, priority int) {
		if i, seen := index[text]; seen {
			if priority < out[i].Priority {
				out[i].Priority = priority
				out[i].Disease = disease
			}
			return
		}
		index[text] = len(out)
		out = append(out, domain.Recommendation{
			Text:     text,
			Disease:  disease,
			Priority: priority,
		})
	}

	for _, score := range scores {
		if tiers, ok := recommendationTable[score.Disease]; ok {
			for _, rec := range tiers[score.Tier] {
				add(score.Disease, rec.Text, rec.Priority)
			}
		}

		vector := vectors[score.Disease]
		if vector == nil {
			continue
		}
		for _, rule := range personalizedRules[score.Disease] {
			if vector.Provenance[rule.feature] != domain.ProvenanceObserved {
				continue
			}
			if rule.fires(vector.Get(rule.feature)) {
				add(score.Disease, rule.text, personalizedPriority)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// NextAssessmentIn returns the follow-up interval implied by the worst
// scored tier: one month at high or very high risk, three at medium,
// six otherwise.
func NextAssessmentIn(scores []domain.RiskScore) string {
	worst := domain.TierLow
	rank := map[domain.RiskTier]int{
		domain.TierLow:      0,
		domain.TierMedium:   1,
		domain.TierHigh:     2,
		domain.TierVeryHigh: 3,
	}
	for _, s := range scores {
		if rank[s.Tier] > rank[worst] {
			worst = s.Tier
		}
	}
	switch worst {
	case domain.TierVeryHigh, domain.TierHigh:
		return "1 month"
	case domain.TierMedium:
		return "3 months"
	default:
		return "6 months"
	}
}
