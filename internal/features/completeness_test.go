package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medwhisper/risk-engine/internal/domain"
)

func TestAssessEmptyHistories(t *testing.T) {
	a := NewAssessor(nil, 1)

	report := a.Assess(nil)
	assert.Equal(t, 0.0, report.Overall)
	assert.Equal(t, domain.ConfidenceLow, report.Confidence)
	require.Len(t, report.ByDomain, 4)
	for d, frac := range report.ByDomain {
		assert.Equal(t, 0.0, frac, "domain %s", d)
	}
}

func TestDomainCompletenessFractions(t *testing.T) {
	a := NewAssessor(nil, 1)
	now := time.Now().UTC()

	// Full lab panel: all 13 required fields observed.
	full := map[domain.RecordDomain][]domain.HealthRecord{
		domain.DomainLab: {domain.NewLabRecord("s", now, domain.LabValues{
			Glucose: 92, HbA1c: 5.3, Cholesterol: 180, HDL: 52, LDL: 100,
			Triglycerides: 110, BPSystolic: 118, BPDiastolic: 76, HeartRate: 68,
			ALT: 20, AST: 22, Creatinine: 0.9, BUN: 14,
		})},
	}
	report := a.Assess(full)
	assert.Equal(t, 1.0, report.ByDomain[domain.DomainLab])

	// Sparse panel: 2 of 13 fields.
	sparse := map[domain.RecordDomain][]domain.HealthRecord{
		domain.DomainLab: {domain.NewRecord("s", domain.DomainLab, now,
			map[string]float64{"glucose": 92, "hba1c": 5.3})},
	}
	report = a.Assess(sparse)
	assert.InDelta(t, 2.0/13.0, report.ByDomain[domain.DomainLab], 1e-9)
}

func TestCompletenessCappedAtOne(t *testing.T) {
	a := NewAssessor(nil, 2)
	now := time.Now().UTC()

	// Five full records against an expectation of two.
	var records []domain.HealthRecord
	for i := 0; i < 5; i++ {
		records = append(records, domain.NewMentalHealthRecord("s", now.AddDate(0, 0, i),
			domain.MentalHealthValues{StressLevel: 4, AnxietyLevel: 2, Mood: 4, SocialInteraction: 3, WorkLifeBalance: 3}))
	}
	report := a.Assess(map[domain.RecordDomain][]domain.HealthRecord{
		domain.DomainMentalHealth: records,
	})
	assert.Equal(t, 1.0, report.ByDomain[domain.DomainMentalHealth])
}

func TestOverallUsesConfiguredWeights(t *testing.T) {
	a := NewAssessor(map[string]float64{
		"lab":            0.7,
		"lifestyle":      0.1,
		"mental_health":  0.1,
		"family_history": 0.1,
	}, 1)
	now := time.Now().UTC()

	report := a.Assess(map[domain.RecordDomain][]domain.HealthRecord{
		domain.DomainLab: {domain.NewLabRecord("s", now, domain.LabValues{
			Glucose: 92, HbA1c: 5.3, Cholesterol: 180, HDL: 52, LDL: 100,
			Triglycerides: 110, BPSystolic: 118, BPDiastolic: 76, HeartRate: 68,
			ALT: 20, AST: 22, Creatinine: 0.9, BUN: 14,
		})},
	})
	assert.InDelta(t, 0.7, report.Overall, 1e-9)
	assert.Equal(t, domain.ConfidenceMedium, report.Confidence)
}

func TestConfidenceBoundaries(t *testing.T) {
	assert.Equal(t, domain.ConfidenceHigh, confidenceFor(0.8))
	assert.Equal(t, domain.ConfidenceHigh, confidenceFor(1.0))
	assert.Equal(t, domain.ConfidenceMedium, confidenceFor(0.5))
	assert.Equal(t, domain.ConfidenceMedium, confidenceFor(0.79))
	assert.Equal(t, domain.ConfidenceLow, confidenceFor(0.49))
	assert.Equal(t, domain.ConfidenceLow, confidenceFor(0))
}
