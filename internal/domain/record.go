package domain

import (
	"sort"
	"time"
)

// HealthRecord is one observation in a subject's longitudinal history.
// Values holds the domain-specific named measurements; categorical fields
// are stored numerically encoded (see the per-domain builders below).
// Records are immutable once created.
type HealthRecord struct {
	SubjectID  string             `json:"subject_id"`
	Domain     RecordDomain       `json:"domain"`
	RecordedAt time.Time          `json:"recorded_at"`
	Values     map[string]float64 `json:"values"`
}

// Value returns the named measurement and whether it was observed.
func (r *HealthRecord) Value(field string) (float64, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// SortByTime orders records by RecordedAt ascending. Insertion order is
// irrelevant across the engine; histories are always re-sorted by time.
func SortByTime(records []HealthRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RecordedAt.Before(records[j].RecordedAt)
	})
}

// LabValues holds a laboratory panel. A zero value means the field was
// not measured; no lab analyte is legitimately zero.
type LabValues struct {
	Glucose       float64 `json:"glucose"`
	HbA1c         float64 `json:"hba1c"`
	Cholesterol   float64 `json:"cholesterol"`
	HDL           float64 `json:"hdl"`
	LDL           float64 `json:"ldl"`
	Triglycerides float64 `json:"triglycerides"`
	BPSystolic    float64 `json:"bp_systolic"`
	BPDiastolic   float64 `json:"bp_diastolic"`
	HeartRate     float64 `json:"heart_rate"`
	ALT           float64 `json:"alt"`
	AST           float64 `json:"ast"`
	Creatinine    float64 `json:"creatinine"`
	BUN           float64 `json:"bun"`
}

// NewLabRecord creates a lab record from a panel. Unmeasured fields are
// left out of the record entirely so they do not read as observed zeros;
// the feature layer imputes them like any other missing field.
func NewLabRecord(subjectID string, recordedAt time.Time, v LabValues) HealthRecord {
	panel := map[string]float64{
		"glucose":       v.Glucose,
		"hba1c":         v.HbA1c,
		"cholesterol":   v.Cholesterol,
		"hdl":           v.HDL,
		"ldl":           v.LDL,
		"triglycerides": v.Triglycerides,
		"bp_systolic":   v.BPSystolic,
		"bp_diastolic":  v.BPDiastolic,
		"heart_rate":    v.HeartRate,
		"alt":           v.ALT,
		"ast":           v.AST,
		"creatinine":    v.Creatinine,
		"bun":           v.BUN,
	}
	values := make(map[string]float64, len(panel))
	for field, value := range panel {
		if value != 0 {
			values[field] = value
		}
	}
	return HealthRecord{
		SubjectID:  subjectID,
		Domain:     DomainLab,
		RecordedAt: recordedAt,
		Values:     values,
	}
}

// NewRecord creates a record for any domain from an explicit value map.
// Absent fields are simply omitted from the map; the feature layer imputes them.
func NewRecord(subjectID string, domain RecordDomain, recordedAt time.Time, values map[string]float64) HealthRecord {
	copied := make(map[string]float64, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return HealthRecord{
		SubjectID:  subjectID,
		Domain:     domain,
		RecordedAt: recordedAt,
		Values:     copied,
	}
}

// Lifestyle categorical encodings. Sleep and diet quality use ordinal scales
// matching the survey forms they originate from.
const (
	QualityPoor      = 1
	QualityFair      = 2
	QualityGood      = 3
	QualityExcellent = 4
)

// Mood scale used by mental-health survey records.
const (
	MoodDepressed = 1
	MoodLow       = 2
	MoodNeutral   = 3
	MoodGood      = 4
	MoodExcellent = 5
)

// LifestyleValues holds one day's lifestyle log. Smoking is 0 or 1.
type LifestyleValues struct {
	SleepHours      float64 `json:"sleep_hours"`
	SleepQuality    float64 `json:"sleep_quality"`
	ExerciseMinutes float64 `json:"exercise_minutes"`
	Steps           float64 `json:"steps"`
	WaterIntakeML   float64 `json:"water_intake_ml"`
	AlcoholUnits    float64 `json:"alcohol_units"`
	Smoking         float64 `json:"smoking"`
	DietQuality     float64 `json:"diet_quality"`
	MealsEaten      float64 `json:"meals_eaten"`
}

// NewLifestyleRecord creates a lifestyle record from a daily log.
func NewLifestyleRecord(subjectID string, recordedAt time.Time, v LifestyleValues) HealthRecord {
	return HealthRecord{
		SubjectID:  subjectID,
		Domain:     DomainLifestyle,
		RecordedAt: recordedAt,
		Values: map[string]float64{
			"sleep_hours":      v.SleepHours,
			"sleep_quality":    v.SleepQuality,
			"exercise_minutes": v.ExerciseMinutes,
			"steps":            v.Steps,
			"water_intake_ml":  v.WaterIntakeML,
			"alcohol_units":    v.AlcoholUnits,
			"smoking":          v.Smoking,
			"diet_quality":     v.DietQuality,
			"meals_eaten":      v.MealsEaten,
		},
	}
}

// MentalHealthValues holds one survey response.
type MentalHealthValues struct {
	StressLevel       float64 `json:"stress_level"`
	AnxietyLevel      float64 `json:"anxiety_level"`
	Mood              float64 `json:"mood"`
	SocialInteraction float64 `json:"social_interaction"`
	WorkLifeBalance   float64 `json:"work_life_balance"`
}

// NewMentalHealthRecord creates a mental-health survey record.
func NewMentalHealthRecord(subjectID string, recordedAt time.Time, v MentalHealthValues) HealthRecord {
	return HealthRecord{
		SubjectID:  subjectID,
		Domain:     DomainMentalHealth,
		RecordedAt: recordedAt,
		Values: map[string]float64{
			"stress_level":       v.StressLevel,
			"anxiety_level":      v.AnxietyLevel,
			"mood":               v.Mood,
			"social_interaction": v.SocialInteraction,
			"work_life_balance":  v.WorkLifeBalance,
		},
	}
}

// FamilyHistoryValues holds per-disease counts of affected relatives.
type FamilyHistoryValues struct {
	Diabetes     float64 `json:"family_diabetes"`
	Hypertension float64 `json:"family_hypertension"`
	HeartDisease float64 `json:"family_heart_disease"`
	LiverDisease float64 `json:"family_liver_disease"`
	MentalHealth float64 `json:"family_mental_health"`
}

// NewFamilyHistoryRecord creates a family-history record.
func NewFamilyHistoryRecord(subjectID string, recordedAt time.Time, v FamilyHistoryValues) HealthRecord {
	return HealthRecord{
		SubjectID:  subjectID,
		Domain:     DomainFamilyHistory,
		RecordedAt: recordedAt,
		Values: map[string]float64{
			"family_diabetes":      v.Diabetes,
			"family_hypertension":  v.Hypertension,
			"family_heart_disease": v.HeartDisease,
			"family_liver_disease": v.LiverDisease,
			"family_mental_health": v.MentalHealth,
		},
	}
}
