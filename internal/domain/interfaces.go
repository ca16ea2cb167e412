package domain

import (
	"context"
)

// HistoryStore grants the engine read access to a subject's record
// history. FetchHistory may return an empty slice, never nil.
type HistoryStore interface {
	FetchHistory(ctx context.Context, subjectID string, domain RecordDomain) ([]HealthRecord, error)
	AppendRecord(ctx context.Context, record HealthRecord) error
}

// AssessmentStore is the append-only sink for assessment results. Prior
// assessments are never mutated or deleted; history is preserved as a
// sequence, newest last.
type AssessmentStore interface {
	AppendAssessment(ctx context.Context, result *AssessmentResult) error
	ListAssessments(ctx context.Context, subjectID string) ([]AssessmentResult, error)
	LatestAssessment(ctx context.Context, subjectID string) (*AssessmentResult, error)
}

// Store combines both store capabilities; concrete backends implement it.
type Store interface {
	HistoryStore
	AssessmentStore
}

// ModelAdapter wraps one pre-trained disease model behind a uniform
// capability. Adapters are stateless at inference time and safe to call
// concurrently. Predict returns a raw score in [0,1] or an EngineError
// with code MODEL_UNAVAILABLE.
type ModelAdapter interface {
	Disease() string
	Predict(ctx context.Context, vector *FeatureVector) (float64, error)
	RequiredSchema() *FeatureSchema
	FeatureImportances() map[string]float64
}
