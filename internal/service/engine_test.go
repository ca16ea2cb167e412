package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medwhisper/risk-engine/internal/domain"
	"github.com/medwhisper/risk-engine/internal/features"
	"github.com/medwhisper/risk-engine/internal/model"
	"github.com/medwhisper/risk-engine/internal/scoring"
)

// memStore is an in-memory store with error injection for engine tests.
type memStore struct {
	mu          sync.Mutex
	records     map[string]map[domain.RecordDomain][]domain.HealthRecord
	assessments map[string][]domain.AssessmentResult

	fetchErr  error
	appendErr error

	fetchCalls  int
	latestCalls int
}

func newMemStore() *memStore {
	return &memStore{
		records:     make(map[string]map[domain.RecordDomain][]domain.HealthRecord),
		assessments: make(map[string][]domain.AssessmentResult),
	}
}

func (s *memStore) FetchHistory(ctx context.Context, subjectID string, d domain.RecordDomain) ([]domain.HealthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchCalls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return append([]domain.HealthRecord(nil), s.records[subjectID][d]...), nil
}

func (s *memStore) AppendRecord(ctx context.Context, record domain.HealthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	if s.records[record.SubjectID] == nil {
		s.records[record.SubjectID] = make(map[domain.RecordDomain][]domain.HealthRecord)
	}
	s.records[record.SubjectID][record.Domain] = append(s.records[record.SubjectID][record.Domain], record)
	return nil
}

func (s *memStore) AppendAssessment(ctx context.Context, result *domain.AssessmentResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.assessments[result.SubjectID] = append(s.assessments[result.SubjectID], *result)
	return nil
}

func (s *memStore) ListAssessments(ctx context.Context, subjectID string) ([]domain.AssessmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AssessmentResult(nil), s.assessments[subjectID]...), nil
}

func (s *memStore) LatestAssessment(ctx context.Context, subjectID string) (*domain.AssessmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestCalls++
	list := s.assessments[subjectID]
	if len(list) == 0 {
		return nil, nil
	}
	latest := list[len(list)-1]
	return &latest, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestEngine(t *testing.T, store domain.Store, registry *model.Registry) *Engine {
	t.Helper()
	logger := testLogger()
	schemas := features.NewSchemaSet("v1")
	if registry == nil {
		var err error
		registry, err = model.DefaultRegistry(schemas)
		require.NoError(t, err)
	}
	thresholds, err := scoring.NewTierThresholds(scoring.DefaultTierCuts)
	require.NoError(t, err)

	engine, err := NewEngine(
		logger,
		store,
		features.NewAssessor(nil, 1),
		features.NewEngineer(logger, schemas),
		registry,
		scoring.NewScorer(logger, thresholds, nil, 5, nil),
		NewRecommender(),
		16,
	)
	require.NoError(t, err)
	return engine
}

func TestAssessEmptyHistoryIsDeterministic(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(t, store, nil)
	ctx := context.Background()

	first, err := engine.Assess(ctx, "subject-1")
	require.NoError(t, err)
	second, err := engine.Assess(ctx, "subject-1")
	require.NoError(t, err)

	// Identity and timestamps differ; everything derived from data must not.
	assert.Equal(t, first.RiskScores, second.RiskScores)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, first.Completeness, second.Completeness)
	assert.Equal(t, first.OverallRisk, second.OverallRisk)

	assert.Equal(t, 0.0, first.Completeness.Overall)
	assert.Equal(t, domain.ConfidenceLow, first.Completeness.Confidence)
	assert.Len(t, first.RiskScores, 5)
	assert.Empty(t, first.Skipped)

	// With no observations every factor rests on imputed inputs.
	for _, score := range first.RiskScores {
		for _, factor := range score.ContributingFactors {
			assert.True(t, factor.Imputed, "factor %s of %s should be imputed", factor.Feature, score.Disease)
		}
	}
}

func TestAssessOrdersScoresByRegistration(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(t, store, nil)

	result, err := engine.Assess(context.Background(), "subject-1")
	require.NoError(t, err)

	diseases := make([]string, 0, len(result.RiskScores))
	for _, s := range result.RiskScores {
		diseases = append(diseases, s.Disease)
	}
	assert.Equal(t, []string{
		domain.DiseaseDiabetes,
		domain.DiseaseHypertension,
		domain.DiseaseLiver,
		domain.DiseaseCardiac,
		domain.DiseaseMentalHealth,
	}, diseases)
}

func TestAssessSkipsUnavailableModel(t *testing.T) {
	schemas := features.NewSchemaSet("v1")
	full, err := model.DefaultRegistry(schemas)
	require.NoError(t, err)

	adapters := make([]domain.ModelAdapter, 0, full.Len())
	for _, disease := range full.Diseases() {
		adapter, _ := full.Get(disease)
		if disease == domain.DiseaseLiver {
			adapter = model.NewUnavailable(disease, adapter.RequiredSchema(), errors.New("artifact missing"))
		}
		adapters = append(adapters, adapter)
	}
	registry, err := model.NewRegistry(adapters...)
	require.NoError(t, err)

	store := newMemStore()
	engine := newTestEngine(t, store, registry)

	result, err := engine.Assess(context.Background(), "subject-1")
	require.NoError(t, err)

	assert.Len(t, result.RiskScores, 4)
	_, scored := result.Score(domain.DiseaseLiver)
	assert.False(t, scored)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, domain.DiseaseLiver, result.Skipped[0].Disease)
	assert.Equal(t, domain.ErrModelUnavailable, result.Skipped[0].Code)

	for _, rec := range result.Recommendations {
		assert.NotEqual(t, domain.DiseaseLiver, rec.Disease)
	}
}

func TestAssessPersonalizesRecommendationsFromRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	// A smoker who logs almost no exercise.
	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendRecord(ctx, domain.NewRecord("s", domain.DomainLifestyle,
			base.AddDate(0, 0, i), map[string]float64{
				"smoking":          1,
				"exercise_minutes": 5,
			})))
	}

	result, err := newTestEngine(t, store, nil).Assess(ctx, "s")
	require.NoError(t, err)

	texts := make(map[string]bool, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		texts[rec.Text] = true
	}
	assert.True(t, texts["Stop smoking and seek cessation support"],
		"observed smoking should surface cessation advice")
	assert.True(t, texts["Increase physical activity to at least 150 minutes per week"],
		"observed low exercise should surface activity advice")

	// A subject with no lifestyle history gets neither: those features
	// are imputed, not observed.
	emptyResult, err := newTestEngine(t, newMemStore(), nil).Assess(ctx, "s2")
	require.NoError(t, err)
	for _, rec := range emptyResult.Recommendations {
		assert.NotEqual(t, "Stop smoking and seek cessation support", rec.Text)
	}
}

func TestAssessRisingGlucoseScoresHigherThanFlat(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	flatStore := newMemStore()
	risingStore := newMemStore()
	flat := []float64{95, 95, 95, 95, 95}
	rising := []float64{95, 104, 113, 121, 130}
	for i := 0; i < 5; i++ {
		when := base.AddDate(0, 0, i*7)
		require.NoError(t, flatStore.AppendRecord(ctx, domain.NewRecord("s", domain.DomainLab, when,
			map[string]float64{"glucose": flat[i]})))
		require.NoError(t, risingStore.AppendRecord(ctx, domain.NewRecord("s", domain.DomainLab, when,
			map[string]float64{"glucose": rising[i]})))
	}

	flatResult, err := newTestEngine(t, flatStore, nil).Assess(ctx, "s")
	require.NoError(t, err)
	risingResult, err := newTestEngine(t, risingStore, nil).Assess(ctx, "s")
	require.NoError(t, err)

	flatScore, ok := flatResult.Score(domain.DiseaseDiabetes)
	require.True(t, ok)
	risingScore, ok := risingResult.Score(domain.DiseaseDiabetes)
	require.True(t, ok)

	assert.Greater(t, risingScore.Probability, flatScore.Probability,
		"a rising glucose trend must increase diabetes risk")
}

func TestAssessAbortsOnStoreFetchError(t *testing.T) {
	store := newMemStore()
	store.fetchErr = errors.New("connection refused")
	engine := newTestEngine(t, store, nil)

	_, err := engine.Assess(context.Background(), "subject-1")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrStore))
	assert.Empty(t, store.assessments["subject-1"])
}

func TestAssessAbortsOnPersistError(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(t, store, nil)
	store.appendErr = errors.New("disk full")

	_, err := engine.Assess(context.Background(), "subject-1")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrStore))

	// A failed persist must not poison the memo.
	latest, err := engine.LatestAssessment(context.Background(), "subject-1")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestAssessDoesNotPublishOnCancelledContext(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(t, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Assess(ctx, "subject-1")
	require.Error(t, err)
	assert.Empty(t, store.assessments["subject-1"])
}

func TestAssessmentsAreAppendOnly(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(t, store, nil)
	ctx := context.Background()

	first, err := engine.Assess(ctx, "subject-1")
	require.NoError(t, err)
	second, err := engine.Assess(ctx, "subject-1")
	require.NoError(t, err)

	list, err := engine.ListAssessments(ctx, "subject-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestLatestAssessmentServedFromMemo(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(t, store, nil)
	ctx := context.Background()

	result, err := engine.Assess(ctx, "subject-1")
	require.NoError(t, err)

	latest, err := engine.LatestAssessment(ctx, "subject-1")
	require.NoError(t, err)
	assert.Equal(t, result.ID, latest.ID)
	assert.Zero(t, store.latestCalls, "memo hit must not reach the store")
}

func TestAddRecordValidation(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(t, store, nil)
	ctx := context.Background()

	err := engine.AddRecord(ctx, domain.HealthRecord{Domain: domain.DomainLab})
	assert.Error(t, err)

	err = engine.AddRecord(ctx, domain.NewRecord("s", "genomics", time.Now(), nil))
	assert.Error(t, err)

	err = engine.AddRecord(ctx, domain.NewLabRecord("s", time.Now(), domain.LabValues{Glucose: 92}))
	assert.NoError(t, err)
}

func TestOverallRisk(t *testing.T) {
	assert.Equal(t, 0.0, overallRisk(nil))
	scores := []domain.RiskScore{
		{Probability: 20},
		{Probability: 41},
	}
	assert.Equal(t, 30.5, overallRisk(scores))
}
