package features

// Imputation defaults, documented per field. Point features fall back to
// an adult population median when the field was never observed; derived
// trend and variability features default to 0 (no evidence of change).
// The table is part of the versioned feature schema: changing a default
// changes baseline scores, so bump SchemaVersion alongside.
var fieldDefaults = map[string]float64{
	// Lab panel medians
	"glucose":       90,
	"hba1c":         5.2,
	"cholesterol":   180,
	"hdl":           50,
	"ldl":           100,
	"triglycerides": 120,
	"bp_systolic":   115,
	"bp_diastolic":  75,
	"heart_rate":    70,
	"alt":           22,
	"ast":           24,
	"creatinine":    0.9,
	"bun":           14,

	// Lifestyle daily-log medians
	"sleep_hours":      7,
	"sleep_quality":    3,
	"exercise_minutes": 20,
	"steps":            5000,
	"water_intake_ml":  2000,
	"alcohol_units":    0,
	"smoking":          0,
	"diet_quality":     2.5,
	"meals_eaten":      2.4,

	// Mental-health survey midpoints
	"stress_level":       5,
	"anxiety_level":      3,
	"mood":               3,
	"social_interaction": 2,
	"work_life_balance":  2.5,

	// Family history: no known affected relatives
	"family_diabetes":      0,
	"family_hypertension":  0,
	"family_heart_disease": 0,
	"family_liver_disease": 0,
	"family_mental_health": 0,
}

// fieldDefault returns the documented default for a raw record field.
// Unknown fields default to 0.
func fieldDefault(field string) float64 {
	return fieldDefaults[field]
}
