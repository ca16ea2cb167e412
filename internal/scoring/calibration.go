// Package scoring turns raw model probabilities into calibrated,
// tiered, explainable risk scores.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// Calibration maps a raw model probability in [0,1] to a percentage
// score in [0,100]. Implementations must be monotonically non-decreasing;
// ValidateCalibration enforces this before a curve is served.
type Calibration interface {
	Apply(raw float64) float64
	Name() string
}

// IdentityCalibration scales the raw probability linearly to [0,100].
type IdentityCalibration struct{}

func (IdentityCalibration) Apply(raw float64) float64 {
	return clamp(raw, 0, 1) * 100
}

func (IdentityCalibration) Name() string { return "identity" }

// SigmoidCalibration applies a Platt-style squashing around Midpoint.
// Steeper slopes sharpen the separation between low and high risk.
type SigmoidCalibration struct {
	Slope    float64 `json:"slope"`
	Midpoint float64 `json:"midpoint"`
}

func (c SigmoidCalibration) Apply(raw float64) float64 {
	raw = clamp(raw, 0, 1)
	return 100 / (1 + math.Exp(-c.Slope*(raw-c.Midpoint)))
}

func (c SigmoidCalibration) Name() string { return "sigmoid" }

// CalibrationPoint is one knot of a piecewise-linear curve.
type CalibrationPoint struct {
	Raw   float64 `json:"raw"`
	Score float64 `json:"score"`
}

// PiecewiseCalibration interpolates linearly between knots. Knots are
// sorted by raw value at construction.
type PiecewiseCalibration struct {
	points []CalibrationPoint
}

// NewPiecewiseCalibration builds a piecewise-linear curve from knots.
func NewPiecewiseCalibration(points []CalibrationPoint) *PiecewiseCalibration {
	sorted := append([]CalibrationPoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Raw < sorted[j].Raw })
	return &PiecewiseCalibration{points: sorted}
}

func (c *PiecewiseCalibration) Apply(raw float64) float64 {
	raw = clamp(raw, 0, 1)
	if len(c.points) == 0 {
		return raw * 100
	}
	if raw <= c.points[0].Raw {
		return c.points[0].Score
	}
	for i := 1; i < len(c.points); i++ {
		lo, hi := c.points[i-1], c.points[i]
		if raw <= hi.Raw {
			if hi.Raw == lo.Raw {
				return hi.Score
			}
			frac := (raw - lo.Raw) / (hi.Raw - lo.Raw)
			return lo.Score + frac*(hi.Score-lo.Score)
		}
	}
	return c.points[len(c.points)-1].Score
}

func (c *PiecewiseCalibration) Name() string { return "piecewise_linear" }

// calibrationSamples is the density of the monotonicity sweep.
const calibrationSamples = 1000

// ValidateCalibration sweeps the curve over [0,1] and rejects any
// decrease or out-of-range output with INVALID_CALIBRATION.
func ValidateCalibration(c Calibration) error {
	prev := math.Inf(-1)
	for i := 0; i <= calibrationSamples; i++ {
		raw := float64(i) / calibrationSamples
		score := c.Apply(raw)
		if score < 0 || score > 100 {
			return domain.NewEngineError(domain.ErrInvalidCalibration,
				fmt.Sprintf("calibration %s maps %.4f outside [0,100]", c.Name(), raw),
				fmt.Sprintf("score=%.4f", score))
		}
		if score < prev {
			return domain.NewEngineError(domain.ErrInvalidCalibration,
				fmt.Sprintf("calibration %s decreases at raw=%.4f", c.Name(), raw),
				fmt.Sprintf("%.4f -> %.4f", prev, score))
		}
		prev = score
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round2 rounds to two decimal places, the precision of published scores.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
