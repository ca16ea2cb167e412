package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// PostgresStore implements domain.Store on a pgx connection pool. The
// schema mirrors the SQLite backend: JSONB payloads with relational
// columns for filtering and ordering.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connection pool and ensures the schema exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}
	store := &PostgresStore{pool: pool}
	if err := store.createSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) createSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS health_records (
		id BIGSERIAL PRIMARY KEY,
		subject_id TEXT NOT NULL,
		domain TEXT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_subject_domain
		ON health_records(subject_id, domain, recorded_at);

	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_subject
		ON assessments(subject_id, generated_at);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// AppendRecord stores one health record.
func (s *PostgresStore) AppendRecord(ctx context.Context, record domain.HealthRecord) error {
	payload, err := json.Marshal(record.Values)
	if err != nil {
		return fmt.Errorf("failed to encode record values: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO health_records (subject_id, domain, recorded_at, payload)
		VALUES ($1, $2, $3, $4)
	`, record.SubjectID, record.Domain.String(), record.RecordedAt.UTC(), payload)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// FetchHistory returns a subject's records for one domain, oldest first.
func (s *PostgresStore) FetchHistory(ctx context.Context, subjectID string, d domain.RecordDomain) ([]domain.HealthRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT recorded_at, payload
		FROM health_records
		WHERE subject_id = $1 AND domain = $2
		ORDER BY recorded_at ASC
	`, subjectID, d.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.HealthRecord, 0)
	for rows.Next() {
		var recordedAt time.Time
		var payload []byte
		if err := rows.Scan(&recordedAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		values := make(map[string]float64)
		if err := json.Unmarshal(payload, &values); err != nil {
			return nil, fmt.Errorf("failed to decode record values: %w", err)
		}
		records = append(records, domain.HealthRecord{
			SubjectID:  subjectID,
			Domain:     d,
			RecordedAt: recordedAt,
			Values:     values,
		})
	}
	return records, rows.Err()
}

// AppendAssessment stores one assessment result, append-only.
func (s *PostgresStore) AppendAssessment(ctx context.Context, result *domain.AssessmentResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO assessments (id, subject_id, generated_at, payload)
		VALUES ($1, $2, $3, $4)
	`, result.ID, result.SubjectID, result.GeneratedAt.UTC(), payload)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// ListAssessments returns a subject's assessments, oldest first.
func (s *PostgresStore) ListAssessments(ctx context.Context, subjectID string) ([]domain.AssessmentResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payload
		FROM assessments
		WHERE subject_id = $1
		ORDER BY generated_at ASC
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	results := make([]domain.AssessmentResult, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		var result domain.AssessmentResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("failed to decode assessment: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// LatestAssessment returns the subject's most recent assessment, or nil
// when none exists.
func (s *PostgresStore) LatestAssessment(ctx context.Context, subjectID string) (*domain.AssessmentResult, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload
		FROM assessments
		WHERE subject_id = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`, subjectID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest assessment: %w", err)
	}

	var result domain.AssessmentResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode assessment: %w", err)
	}
	return &result, nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
