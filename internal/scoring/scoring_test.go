package scoring

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medwhisper/risk-engine/internal/domain"
)

func TestIdentityCalibration(t *testing.T) {
	c := IdentityCalibration{}
	assert.Equal(t, 0.0, c.Apply(0))
	assert.Equal(t, 50.0, c.Apply(0.5))
	assert.Equal(t, 100.0, c.Apply(1))
	assert.Equal(t, 100.0, c.Apply(1.7), "out-of-range raw input is clamped")
	assert.NoError(t, ValidateCalibration(c))
}

func TestSigmoidCalibrationIsMonotonic(t *testing.T) {
	c := SigmoidCalibration{Slope: 8, Midpoint: 0.5}
	require.NoError(t, ValidateCalibration(c))
	assert.Less(t, c.Apply(0.2), c.Apply(0.8))
}

func TestPiecewiseCalibration(t *testing.T) {
	c := NewPiecewiseCalibration([]CalibrationPoint{
		{Raw: 0, Score: 0},
		{Raw: 0.5, Score: 30},
		{Raw: 1, Score: 100},
	})
	require.NoError(t, ValidateCalibration(c))

	assert.InDelta(t, 15.0, c.Apply(0.25), 1e-9)
	assert.InDelta(t, 30.0, c.Apply(0.5), 1e-9)
	assert.InDelta(t, 65.0, c.Apply(0.75), 1e-9)
}

func TestValidateCalibrationRejectsDecreasingCurve(t *testing.T) {
	c := NewPiecewiseCalibration([]CalibrationPoint{
		{Raw: 0, Score: 0},
		{Raw: 0.5, Score: 80},
		{Raw: 1, Score: 40},
	})
	err := ValidateCalibration(c)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrInvalidCalibration))
}

func TestValidateCalibrationRejectsOutOfRangeCurve(t *testing.T) {
	c := NewPiecewiseCalibration([]CalibrationPoint{
		{Raw: 0, Score: 0},
		{Raw: 1, Score: 140},
	})
	err := ValidateCalibration(c)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrInvalidCalibration))
}

func TestTierThresholdsValidation(t *testing.T) {
	tests := []struct {
		name string
		cuts []float64
		ok   bool
	}{
		{"default cuts", []float64{25, 50, 75}, true},
		{"too few", []float64{25, 50}, false},
		{"not increasing", []float64{50, 50, 75}, false},
		{"zero boundary", []float64{0, 50, 75}, false},
		{"hundred boundary", []float64{25, 50, 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTierThresholds(tt.cuts)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, domain.IsCode(err, domain.ErrInvalidConfig))
			}
		})
	}
}

func TestTiersPartitionScoreRange(t *testing.T) {
	thresholds, err := NewTierThresholds(DefaultTierCuts)
	require.NoError(t, err)

	// Every score in [0,100] maps to exactly one tier, and the mapping
	// never goes backwards as the score rises.
	order := map[domain.RiskTier]int{
		domain.TierLow:      0,
		domain.TierMedium:   1,
		domain.TierHigh:     2,
		domain.TierVeryHigh: 3,
	}
	prev := -1
	for score := 0.0; score <= 100.0; score += 0.25 {
		tier := thresholds.TierFor(score)
		rank, known := order[tier]
		require.True(t, known, "score %.2f mapped to unknown tier %s", score, tier)
		assert.GreaterOrEqual(t, rank, prev, "tier regressed at score %.2f", score)
		prev = rank
	}

	// A score equal to a cut point belongs to the higher tier.
	assert.Equal(t, domain.TierMedium, thresholds.TierFor(25))
	assert.Equal(t, domain.TierHigh, thresholds.TierFor(50))
	assert.Equal(t, domain.TierVeryHigh, thresholds.TierFor(75))
	assert.Equal(t, domain.TierLow, thresholds.TierFor(24.99))
}

func twoFeatureVector(values map[string]float64, prov map[string]domain.Provenance) *domain.FeatureVector {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	return &domain.FeatureVector{
		Disease:       domain.DiseaseDiabetes,
		SchemaVersion: "v1",
		Names:         names,
		Values:        values,
		Provenance:    prov,
	}
}

func TestTopFactorsOrderingAndFlags(t *testing.T) {
	importances := map[string]float64{
		"glucose_latest": 0.5,
		"hba1c_latest":   0.3,
		"smoking":        0.2,
	}
	vector := twoFeatureVector(
		map[string]float64{"glucose_latest": 150, "hba1c_latest": 5.2, "smoking": 1},
		map[string]domain.Provenance{
			"glucose_latest": domain.ProvenanceObserved,
			"hba1c_latest":   domain.ProvenanceImputed,
			"smoking":        domain.ProvenanceObserved,
		},
	)
	baseline := twoFeatureVector(
		map[string]float64{"glucose_latest": 90, "hba1c_latest": 5.2, "smoking": 0},
		nil,
	)

	factors := TopFactors(importances, vector, baseline, 5)
	require.Len(t, factors, 3)

	// glucose deviates by 60 over baseline 90, smoking by 1 over floor 1.
	assert.Equal(t, "glucose_latest", factors[0].Feature)
	assert.InDelta(t, 0.33, factors[0].Contribution, 0.01)
	assert.False(t, factors[0].Imputed)

	assert.Equal(t, "smoking", factors[1].Feature)
	assert.InDelta(t, 0.2, factors[1].Contribution, 1e-9)

	// hba1c sits exactly at baseline: zero contribution, flagged imputed.
	assert.Equal(t, "hba1c_latest", factors[2].Feature)
	assert.Equal(t, 0.0, factors[2].Contribution)
	assert.True(t, factors[2].Imputed)
}

func TestTopFactorsHonorsK(t *testing.T) {
	importances := map[string]float64{"a": 0.4, "b": 0.3, "c": 0.2, "d": 0.1}
	vector := twoFeatureVector(
		map[string]float64{"a": 2, "b": 2, "c": 2, "d": 2}, nil)
	baseline := twoFeatureVector(
		map[string]float64{"a": 0, "b": 0, "c": 0, "d": 0}, nil)

	assert.Len(t, TopFactors(importances, vector, baseline, 2), 2)
	assert.Nil(t, TopFactors(importances, vector, baseline, 0))
}

func TestScorerRoundsAndTiers(t *testing.T) {
	thresholds, err := NewTierThresholds(DefaultTierCuts)
	require.NoError(t, err)
	scorer := NewScorer(logrus.New(), thresholds, nil, 5, nil)

	vector := twoFeatureVector(map[string]float64{"glucose_latest": 150}, nil)
	baseline := twoFeatureVector(map[string]float64{"glucose_latest": 90}, nil)

	score, err := scorer.Score(domain.DiseaseDiabetes, 0.61234, vector, baseline,
		map[string]float64{"glucose_latest": 1})
	require.NoError(t, err)

	assert.Equal(t, 61.23, score.Probability)
	assert.Equal(t, domain.TierHigh, score.Tier)
	require.Len(t, score.ContributingFactors, 1)
	assert.Equal(t, "glucose_latest", score.ContributingFactors[0].Feature)
}

func TestScorerUsesPerDiseaseThresholds(t *testing.T) {
	defaults, err := NewTierThresholds(DefaultTierCuts)
	require.NoError(t, err)
	strict, err := NewTierThresholds([]float64{10, 20, 30})
	require.NoError(t, err)

	scorer := NewScorer(logrus.New(), defaults, map[string]*TierThresholds{
		domain.DiseaseCardiac: strict,
	}, 5, nil)

	vector := twoFeatureVector(map[string]float64{"cholesterol_latest": 220}, nil)

	// The same calibrated score lands in different tiers: cardiac risk
	// uses its tighter cuts, diabetes falls back to the defaults.
	cardiac, err := scorer.Score(domain.DiseaseCardiac, 0.35, vector, vector, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TierVeryHigh, cardiac.Tier)

	diabetes, err := scorer.Score(domain.DiseaseDiabetes, 0.35, vector, vector, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TierMedium, diabetes.Tier)

	assert.Same(t, strict, scorer.ThresholdsFor(domain.DiseaseCardiac))
	assert.Same(t, defaults, scorer.ThresholdsFor(domain.DiseaseHypertension))
}

func TestScorerSkipsInvalidCalibration(t *testing.T) {
	thresholds, err := NewTierThresholds(DefaultTierCuts)
	require.NoError(t, err)

	bad := NewPiecewiseCalibration([]CalibrationPoint{
		{Raw: 0, Score: 90},
		{Raw: 1, Score: 10},
	})
	scorer := NewScorer(logrus.New(), thresholds, nil, 5, map[string]Calibration{
		domain.DiseaseLiver: bad,
	})

	vector := twoFeatureVector(map[string]float64{"alt_latest": 30}, nil)
	_, err = scorer.Score(domain.DiseaseLiver, 0.5, vector, vector, map[string]float64{"alt_latest": 1})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrInvalidCalibration))

	// Other diseases keep scoring with the identity curve.
	score, err := scorer.Score(domain.DiseaseDiabetes, 0.2, vector, vector, nil)
	require.NoError(t, err)
	assert.Equal(t, 20.0, score.Probability)
	assert.Equal(t, domain.TierLow, score.Tier)
}
