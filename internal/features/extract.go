package features

import (
	"github.com/medwhisper/risk-engine/internal/domain"
)

// featureSet accumulates engineered features for one domain together
// with their provenance. Imputation is an explicit, inspectable step:
// every feature carries observed/imputed/trend_insufficient.
type featureSet struct {
	values map[string]float64
	prov   map[string]domain.Provenance
}

func newFeatureSet() *featureSet {
	return &featureSet{
		values: make(map[string]float64),
		prov:   make(map[string]domain.Provenance),
	}
}

func (f *featureSet) set(name string, v float64, p domain.Provenance) {
	f.values[name] = v
	f.prov[name] = p
}

// series collects a field's values across time-ordered records,
// skipping records where the field was not observed.
func series(records []domain.HealthRecord, field string) []float64 {
	var out []float64
	for _, r := range records {
		if v, ok := r.Value(field); ok {
			out = append(out, v)
		}
	}
	return out
}

// latest returns the most recent observed value of a field, falling back
// to the documented default when the field was never observed.
func latest(records []domain.HealthRecord, field string) (float64, domain.Provenance) {
	for i := len(records) - 1; i >= 0; i-- {
		if v, ok := records[i].Value(field); ok {
			return v, domain.ProvenanceObserved
		}
	}
	return fieldDefault(field), domain.ProvenanceImputed
}

// averaged returns the mean of a field's observed series, falling back
// to the documented default when no point was observed.
func averaged(records []domain.HealthRecord, field string) (float64, domain.Provenance) {
	s := series(records, field)
	if len(s) == 0 {
		return fieldDefault(field), domain.ProvenanceImputed
	}
	return mean(s), domain.ProvenanceObserved
}

// combine merges provenance of contributing fields: a derived feature is
// observed only when every contributor was observed.
func combine(ps ...domain.Provenance) domain.Provenance {
	for _, p := range ps {
		if p != domain.ProvenanceObserved {
			return domain.ProvenanceImputed
		}
	}
	return domain.ProvenanceObserved
}

func boolFeature(cond bool) float64 {
	if cond {
		return 1
	}
	return 0
}

// extractLab engineers the laboratory feature set: latest panel values,
// least-squares trends, variability, and composite indices.
func extractLab(records []domain.HealthRecord) *featureSet {
	f := newFeatureSet()

	points := map[string]string{
		"glucose_latest":       "glucose",
		"hba1c_latest":         "hba1c",
		"cholesterol_latest":   "cholesterol",
		"hdl_latest":           "hdl",
		"ldl_latest":           "ldl",
		"triglycerides_latest": "triglycerides",
		"bp_systolic_latest":   "bp_systolic",
		"bp_diastolic_latest":  "bp_diastolic",
		"heart_rate_latest":    "heart_rate",
		"alt_latest":           "alt",
		"ast_latest":           "ast",
		"creatinine_latest":    "creatinine",
		"bun_latest":           "bun",
	}
	prov := make(map[string]domain.Provenance, len(points))
	for feature, field := range points {
		v, p := latest(records, field)
		f.set(feature, v, p)
		prov[field] = p
	}

	trends := map[string]string{
		"glucose_trend":     "glucose",
		"hba1c_trend":       "hba1c",
		"bp_systolic_trend": "bp_systolic",
		"cholesterol_trend": "cholesterol",
	}
	for feature, field := range trends {
		s := series(records, field)
		if len(s) < 2 {
			f.set(feature, 0, domain.ProvenanceTrendInsufficient)
			continue
		}
		f.set(feature, slope(s), domain.ProvenanceObserved)
	}

	variability := map[string]string{
		"glucose_variability": "glucose",
		"bp_variability":      "bp_systolic",
	}
	for feature, field := range variability {
		s := series(records, field)
		if len(s) < 2 {
			f.set(feature, 0, domain.ProvenanceTrendInsufficient)
			continue
		}
		f.set(feature, sampleStdDev(s), domain.ProvenanceObserved)
	}

	// Composite indices
	chol := f.values["cholesterol_latest"]
	hdl := f.values["hdl_latest"]
	ratio := 0.0
	if hdl > 0 {
		ratio = chol / hdl
	}
	f.set("cholesterol_hdl_ratio", ratio, combine(prov["cholesterol"], prov["hdl"]))

	sys := f.values["bp_systolic_latest"]
	dia := f.values["bp_diastolic_latest"]
	f.set("pulse_pressure", sys-dia, combine(prov["bp_systolic"], prov["bp_diastolic"]))

	glucose := f.values["glucose_latest"]
	hba1c := f.values["hba1c_latest"]
	trig := f.values["triglycerides_latest"]
	// Normalized against diagnostic cut points (126 mg/dL, 6.5%, 150 mg/dL)
	mri := (glucose/126 + hba1c/6.5 + trig/150) / 3
	f.set("metabolic_risk_index", mri, combine(prov["glucose"], prov["hba1c"], prov["triglycerides"]))

	f.set("prediabetes_flag", boolFeature(glucose >= 100 && glucose <= 125), prov["glucose"])
	f.set("prehypertension_flag", boolFeature(sys >= 120 && sys <= 139), prov["bp_systolic"])

	return f
}

// extractLifestyle engineers aggregated lifestyle features from daily logs.
func extractLifestyle(records []domain.HealthRecord) *featureSet {
	f := newFeatureSet()

	sleepSeries := series(records, "sleep_hours")
	avgSleep, sleepProv := averaged(records, "sleep_hours")
	f.set("avg_sleep_hours", avgSleep, sleepProv)

	// Coefficient-of-variation based consistency; neutral 0.5 when the
	// series is too short to measure.
	if len(sleepSeries) >= 2 && mean(sleepSeries) > 0 {
		f.set("sleep_consistency", 1-sampleStdDev(sleepSeries)/mean(sleepSeries), domain.ProvenanceObserved)
	} else {
		f.set("sleep_consistency", 0.5, domain.ProvenanceTrendInsufficient)
	}

	avgExercise, exProv := averaged(records, "exercise_minutes")
	f.set("avg_exercise_minutes", avgExercise, exProv)

	exSeries := series(records, "exercise_minutes")
	if len(exSeries) > 0 {
		active := 0
		for _, v := range exSeries {
			if v > 0 {
				active++
			}
		}
		f.set("exercise_frequency", float64(active)/float64(len(exSeries)), domain.ProvenanceObserved)
	} else {
		f.set("exercise_frequency", 0.5, domain.ProvenanceImputed)
	}

	avgSteps, stepsProv := averaged(records, "steps")
	f.set("avg_steps", avgSteps, stepsProv)

	avgWater, waterProv := averaged(records, "water_intake_ml")
	f.set("avg_water_intake", avgWater, waterProv)
	f.set("dehydration_risk", boolFeature(avgWater < 1500), waterProv)

	avgAlcohol, alcProv := averaged(records, "alcohol_units")
	f.set("avg_alcohol_units", avgAlcohol, alcProv)

	smokeSeries := series(records, "smoking")
	if len(smokeSeries) > 0 {
		smoker := 0.0
		for _, v := range smokeSeries {
			if v > 0 {
				smoker = 1
				break
			}
		}
		f.set("smoking", smoker, domain.ProvenanceObserved)
	} else {
		f.set("smoking", fieldDefault("smoking"), domain.ProvenanceImputed)
	}

	avgDiet, dietProv := averaged(records, "diet_quality")
	f.set("diet_quality_score", avgDiet, dietProv)

	meals, mealsProv := averaged(records, "meals_eaten")
	f.set("meal_regularity", meals/3, mealsProv)

	f.set("sedentary_lifestyle", boolFeature(avgSteps < 5000 && avgExercise < 20), combine(stepsProv, exProv))

	return f
}

// extractMentalHealth engineers mental-health survey features.
func extractMentalHealth(records []domain.HealthRecord) *featureSet {
	f := newFeatureSet()

	avgStress, stressProv := averaged(records, "stress_level")
	f.set("avg_stress_level", avgStress, stressProv)

	avgAnxiety, anxProv := averaged(records, "anxiety_level")
	f.set("avg_anxiety_level", avgAnxiety, anxProv)

	stressSeries := series(records, "stress_level")
	if len(stressSeries) > 0 {
		high := 0
		for _, v := range stressSeries {
			if v >= 7 {
				high++
			}
		}
		f.set("high_stress_frequency", float64(high)/float64(len(stressSeries)), domain.ProvenanceObserved)
	} else {
		f.set("high_stress_frequency", 0, domain.ProvenanceImputed)
	}

	avgMood, moodProv := averaged(records, "mood")
	f.set("avg_mood_score", avgMood, moodProv)

	moodSeries := series(records, "mood")
	lowMoodFreq := 0.0
	if len(moodSeries) > 0 {
		low := 0
		for _, v := range moodSeries {
			if v <= domain.MoodLow {
				low++
			}
		}
		lowMoodFreq = float64(low) / float64(len(moodSeries))
		f.set("low_mood_frequency", lowMoodFreq, domain.ProvenanceObserved)
	} else {
		f.set("low_mood_frequency", 0, domain.ProvenanceImputed)
	}

	avgSocial, socProv := averaged(records, "social_interaction")
	f.set("social_interaction_score", avgSocial, socProv)

	avgBalance, balProv := averaged(records, "work_life_balance")
	f.set("work_life_balance_score", avgBalance, balProv)

	f.set("chronic_stress_flag", boolFeature(avgStress >= 7), stressProv)
	f.set("depression_risk_flag", boolFeature(lowMoodFreq > 0.5), moodProv)

	return f
}

// extractFamilyHistory engineers family-history features from the most
// recent profile snapshot.
func extractFamilyHistory(records []domain.HealthRecord) *featureSet {
	f := newFeatureSet()

	counts := map[string]float64{}
	provs := map[string]domain.Provenance{}
	for _, field := range []string{
		"family_diabetes",
		"family_hypertension",
		"family_heart_disease",
		"family_liver_disease",
		"family_mental_health",
	} {
		v, p := latest(records, field)
		counts[field] = v
		provs[field] = p
		f.set(field, v, p)
		f.set("has_"+field, boolFeature(v > 0), p)
	}

	// Weighted count of affected relatives across conditions.
	score := counts["family_diabetes"]*2 +
		counts["family_hypertension"]*1.5 +
		counts["family_heart_disease"]*2 +
		counts["family_liver_disease"]*1.5 +
		counts["family_mental_health"]*1
	f.set("genetic_risk_score", score, combine(
		provs["family_diabetes"], provs["family_hypertension"], provs["family_heart_disease"],
		provs["family_liver_disease"], provs["family_mental_health"]))

	return f
}

// extractDomain dispatches to the per-domain extractor.
func extractDomain(d domain.RecordDomain, records []domain.HealthRecord) *featureSet {
	switch d {
	case domain.DomainLab:
		return extractLab(records)
	case domain.DomainLifestyle:
		return extractLifestyle(records)
	case domain.DomainMentalHealth:
		return extractMentalHealth(records)
	case domain.DomainFamilyHistory:
		return extractFamilyHistory(records)
	}
	return newFeatureSet()
}
