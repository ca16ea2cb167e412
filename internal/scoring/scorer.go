package scoring

import (
	"github.com/sirupsen/logrus"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// Scorer converts raw model probabilities into published risk scores:
// calibrated to [0,100], rounded to two decimals, tiered, and explained
// by top contributing factors. Tier thresholds are configurable per
// disease; diseases without an override use the default partition.
type Scorer struct {
	logger            *logrus.Logger
	defaultThresholds *TierThresholds
	thresholds        map[string]*TierThresholds
	topK              int

	calibrations map[string]Calibration
	// invalid holds calibrations rejected at construction; scoring those
	// diseases fails with INVALID_CALIBRATION so the engine skips them.
	invalid map[string]error
}

// NewScorer builds a scorer. Calibrations are validated once here; a
// disease with a rejected curve is remembered and skipped at score time
// rather than failing construction. Diseases without an explicit
// calibration use the identity curve; diseases without an entry in
// thresholds use defaultThresholds.
func NewScorer(
	logger *logrus.Logger,
	defaultThresholds *TierThresholds,
	thresholds map[string]*TierThresholds,
	topK int,
	calibrations map[string]Calibration,
) *Scorer {
	if topK < 0 {
		topK = 0
	}
	s := &Scorer{
		logger:            logger,
		defaultThresholds: defaultThresholds,
		thresholds:        make(map[string]*TierThresholds, len(thresholds)),
		topK:              topK,
		calibrations:      make(map[string]Calibration, len(calibrations)),
		invalid:           make(map[string]error),
	}
	for disease, t := range thresholds {
		if t != nil {
			s.thresholds[disease] = t
		}
	}
	for disease, c := range calibrations {
		if err := ValidateCalibration(c); err != nil {
			logger.WithFields(logrus.Fields{
				"disease":     disease,
				"calibration": c.Name(),
				"error":       err.Error(),
			}).Warn("Calibration rejected, disease will be skipped")
			s.invalid[disease] = err
			continue
		}
		s.calibrations[disease] = c
	}
	return s
}

// ThresholdsFor returns the tier thresholds in effect for a disease.
func (s *Scorer) ThresholdsFor(disease string) *TierThresholds {
	if t, ok := s.thresholds[disease]; ok {
		return t
	}
	return s.defaultThresholds
}

// Score builds the published risk score for one disease from the raw
// model probability. The baseline vector anchors factor attribution.
func (s *Scorer) Score(disease string, raw float64, vector, baseline *domain.FeatureVector, importances map[string]float64) (domain.RiskScore, error) {
	if err, rejected := s.invalid[disease]; rejected {
		return domain.RiskScore{}, err
	}

	calibration, ok := s.calibrations[disease]
	if !ok {
		calibration = IdentityCalibration{}
	}

	score := round2(calibration.Apply(raw))
	return domain.RiskScore{
		Disease:             disease,
		Probability:         score,
		Tier:                s.ThresholdsFor(disease).TierFor(score),
		ContributingFactors: TopFactors(importances, vector, baseline, s.topK),
	}, nil
}
