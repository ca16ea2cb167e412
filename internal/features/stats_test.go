package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.Equal(t, 5.0, mean([]float64{5}))
	assert.Equal(t, 2.0, mean([]float64{1, 2, 3}))
}

func TestSlope(t *testing.T) {
	assert.Equal(t, 0.0, slope(nil))
	assert.Equal(t, 0.0, slope([]float64{7}), "one point has no trend")
	assert.InDelta(t, 0.0, slope([]float64{95, 95, 95, 95}), 1e-9)
	assert.InDelta(t, 2.0, slope([]float64{10, 12, 14, 16}), 1e-9)
	assert.InDelta(t, -1.5, slope([]float64{9, 7.5, 6, 4.5}), 1e-9)
}

func TestSampleStdDev(t *testing.T) {
	assert.Equal(t, 0.0, sampleStdDev([]float64{4}))
	assert.InDelta(t, 0.0, sampleStdDev([]float64{3, 3, 3}), 1e-9)
	assert.InDelta(t, 1.0, sampleStdDev([]float64{1, 2, 3}), 1e-9)
}

func TestFieldDefaultsCoverRequiredFields(t *testing.T) {
	for _, fields := range requiredFields {
		for _, field := range fields {
			_, ok := fieldDefaults[field]
			assert.True(t, ok, "field %s has no imputation default", field)
		}
	}
}
