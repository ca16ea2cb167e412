package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/medwhisper/risk-engine/internal/domain"
	"github.com/medwhisper/risk-engine/internal/features"
	"github.com/medwhisper/risk-engine/internal/model"
	"github.com/medwhisper/risk-engine/internal/scoring"
)

const defaultMemoSize = 1024

// Engine orchestrates one risk assessment: fetch histories, assess
// completeness, engineer features, run every registered disease model,
// score, recommend, and persist the immutable result.
type Engine struct {
	logger      *logrus.Logger
	store       domain.Store
	assessor    *features.Assessor
	engineer    *features.Engineer
	registry    *model.Registry
	scorer      *scoring.Scorer
	recommender *Recommender

	// baselines hold the deterministic empty-history vector per disease,
	// the anchor for factor attribution.
	baselines map[string]*domain.FeatureVector

	memo    *lru.Cache[string, *domain.AssessmentResult]
	breaker *gobreaker.CircuitBreaker
}

// NewEngine wires the assessment engine. Baseline vectors are engineered
// once here from empty histories; a schema that cannot produce them is a
// startup error.
func NewEngine(
	logger *logrus.Logger,
	store domain.Store,
	assessor *features.Assessor,
	engineer *features.Engineer,
	registry *model.Registry,
	scorer *scoring.Scorer,
	recommender *Recommender,
	memoSize int,
) (*Engine, error) {
	if memoSize <= 0 {
		memoSize = defaultMemoSize
	}
	memo, err := lru.New[string, *domain.AssessmentResult](memoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create assessment memo: %w", err)
	}

	baselines := make(map[string]*domain.FeatureVector, registry.Len())
	empty := map[domain.RecordDomain][]domain.HealthRecord{}
	for _, disease := range registry.Diseases() {
		baseline, err := engineer.BuildVector(disease, empty)
		if err != nil {
			return nil, fmt.Errorf("failed to build baseline vector for %s: %w", disease, err)
		}
		baselines[disease] = baseline
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "history-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &Engine{
		logger:      logger,
		store:       store,
		assessor:    assessor,
		engineer:    engineer,
		registry:    registry,
		scorer:      scorer,
		recommender: recommender,
		baselines:   baselines,
		memo:        memo,
		breaker:     breaker,
	}, nil
}

// diseaseOutcome carries one disease's result out of the scoring
// fan-out. The vector rides along so the recommender can condition on
// the subject's actual features.
type diseaseOutcome struct {
	score   *domain.RiskScore
	vector  *domain.FeatureVector
	skipped *domain.SkippedDisease
	err     error
}

// Assess runs a complete risk assessment for a subject and persists the
// result. Store failures abort the assessment with STORE_ERROR; a
// cancelled context aborts without publishing a partial result.
func (e *Engine) Assess(ctx context.Context, subjectID string) (*domain.AssessmentResult, error) {
	start := time.Now()

	histories, err := e.fetchHistories(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	completeness := e.assessor.Assess(histories)

	diseases := e.registry.Diseases()
	outcomes := make([]diseaseOutcome, len(diseases))

	var wg sync.WaitGroup
	for i, disease := range diseases {
		wg.Add(1)
		go func(i int, disease string) {
			defer wg.Done()
			outcomes[i] = e.scoreDisease(ctx, disease, histories)
		}(i, disease)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &domain.AssessmentResult{
		ID:            uuid.New().String(),
		SubjectID:     subjectID,
		GeneratedAt:   time.Now().UTC(),
		SchemaVersion: e.engineer.Schemas().Version(),
		Completeness:  completeness,
		RiskScores:    make([]domain.RiskScore, 0, len(diseases)),
	}

	// Gather in registration order regardless of goroutine completion order.
	vectors := make(map[string]*domain.FeatureVector, len(diseases))
	for i, outcome := range outcomes {
		switch {
		case outcome.err != nil:
			return nil, fmt.Errorf("failed to assess %s: %w", diseases[i], outcome.err)
		case outcome.skipped != nil:
			result.Skipped = append(result.Skipped, *outcome.skipped)
		case outcome.score != nil:
			result.RiskScores = append(result.RiskScores, *outcome.score)
			vectors[diseases[i]] = outcome.vector
		}
	}

	result.OverallRisk = overallRisk(result.RiskScores)
	result.NextAssessment = NextAssessmentIn(result.RiskScores)
	result.Recommendations = e.recommender.Generate(result.RiskScores, vectors)

	if err := e.store.AppendAssessment(ctx, result); err != nil {
		return nil, domain.NewEngineError(domain.ErrStore,
			"failed to persist assessment", err.Error())
	}
	e.memo.Add(subjectID, result)

	e.logger.WithFields(logrus.Fields{
		"subject_id":   subjectID,
		"assessment":   result.ID,
		"scored":       len(result.RiskScores),
		"skipped":      len(result.Skipped),
		"completeness": result.Completeness.Overall,
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Assessment completed")

	return result, nil
}

// fetchHistories loads every record domain through the store breaker.
// Any fetch failure maps to STORE_ERROR and aborts the assessment.
func (e *Engine) fetchHistories(ctx context.Context, subjectID string) (map[domain.RecordDomain][]domain.HealthRecord, error) {
	histories := make(map[domain.RecordDomain][]domain.HealthRecord, len(domain.AllDomains))
	for _, d := range domain.AllDomains {
		records, err := e.breaker.Execute(func() (interface{}, error) {
			return e.store.FetchHistory(ctx, subjectID, d)
		})
		if err != nil {
			return nil, domain.NewEngineError(domain.ErrStore,
				fmt.Sprintf("failed to fetch %s history for %s", d, subjectID), err.Error())
		}
		histories[d] = records.([]domain.HealthRecord)
	}
	return histories, nil
}

// scoreDisease runs one disease end to end: vector, prediction, score.
// MODEL_UNAVAILABLE and INVALID_CALIBRATION downgrade to a skip; schema
// mismatches and unknown failures stay fatal.
func (e *Engine) scoreDisease(ctx context.Context, disease string, histories map[domain.RecordDomain][]domain.HealthRecord) diseaseOutcome {
	adapter, ok := e.registry.Get(disease)
	if !ok {
		return diseaseOutcome{err: fmt.Errorf("no model registered for disease: %s", disease)}
	}

	vector, err := e.engineer.BuildVector(disease, histories)
	if err != nil {
		return diseaseOutcome{err: err}
	}

	raw, err := adapter.Predict(ctx, vector)
	if err != nil {
		if domain.IsCode(err, domain.ErrModelUnavailable) {
			e.logger.WithFields(logrus.Fields{
				"disease": disease,
				"error":   err.Error(),
			}).Warn("Disease skipped, model unavailable")
			return diseaseOutcome{skipped: &domain.SkippedDisease{
				Disease: disease,
				Code:    domain.ErrModelUnavailable,
				Reason:  err.Error(),
			}}
		}
		return diseaseOutcome{err: err}
	}

	score, err := e.scorer.Score(disease, raw, vector, e.baselines[disease], adapter.FeatureImportances())
	if err != nil {
		if domain.IsCode(err, domain.ErrInvalidCalibration) {
			e.logger.WithFields(logrus.Fields{
				"disease": disease,
				"error":   err.Error(),
			}).Warn("Disease skipped, calibration invalid")
			return diseaseOutcome{skipped: &domain.SkippedDisease{
				Disease: disease,
				Code:    domain.ErrInvalidCalibration,
				Reason:  err.Error(),
			}}
		}
		return diseaseOutcome{err: err}
	}

	return diseaseOutcome{score: &score, vector: vector}
}

// overallRisk is the mean published score across scored diseases,
// rounded to two decimals. Zero scored diseases yield 0.
func overallRisk(scores []domain.RiskScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s.Probability
	}
	avg := sum / float64(len(scores))
	return math.Round(avg*100) / 100
}

// AddRecord validates and persists one health record.
func (e *Engine) AddRecord(ctx context.Context, record domain.HealthRecord) error {
	if record.SubjectID == "" {
		return fmt.Errorf("record has no subject id")
	}
	if !record.Domain.Valid() {
		return fmt.Errorf("unknown record domain: %s", record.Domain)
	}
	if err := e.store.AppendRecord(ctx, record); err != nil {
		return domain.NewEngineError(domain.ErrStore, "failed to persist record", err.Error())
	}
	return nil
}

// LatestAssessment returns the subject's most recent assessment, served
// from the memo when present.
func (e *Engine) LatestAssessment(ctx context.Context, subjectID string) (*domain.AssessmentResult, error) {
	if result, ok := e.memo.Get(subjectID); ok {
		return result, nil
	}
	result, err := e.store.LatestAssessment(ctx, subjectID)
	if err != nil {
		return nil, domain.NewEngineError(domain.ErrStore, "failed to load latest assessment", err.Error())
	}
	if result != nil {
		e.memo.Add(subjectID, result)
	}
	return result, nil
}

// ListAssessments returns the subject's full assessment history, oldest first.
func (e *Engine) ListAssessments(ctx context.Context, subjectID string) ([]domain.AssessmentResult, error) {
	results, err := e.store.ListAssessments(ctx, subjectID)
	if err != nil {
		return nil, domain.NewEngineError(domain.ErrStore, "failed to list assessments", err.Error())
	}
	return results, nil
}
