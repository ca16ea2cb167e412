// Package repository provides the persistent store backends for health
// records and assessment results.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// SQLiteStore implements domain.Store using SQLite. Records and
// assessment payloads are stored as JSON; the relational columns carry
// only what queries filter and order by.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a SQLite store, creating the database file and
// schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	store := &SQLiteStore{db: db, dbPath: dbPath}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return store, nil
}

// NewSQLiteStoreWithDB wraps an existing connection without touching the
// schema. Used by tests and by callers that manage migrations themselves.
func NewSQLiteStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS health_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject_id TEXT NOT NULL,
		domain TEXT NOT NULL,
		recorded_at DATETIME NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_subject_domain
		ON health_records(subject_id, domain, recorded_at);

	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		generated_at DATETIME NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_subject
		ON assessments(subject_id, generated_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// AppendRecord stores one health record.
func (s *SQLiteStore) AppendRecord(ctx context.Context, record domain.HealthRecord) error {
	payload, err := json.Marshal(record.Values)
	if err != nil {
		return fmt.Errorf("failed to encode record values: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO health_records (subject_id, domain, recorded_at, payload)
		VALUES (?, ?, ?, ?)
	`, record.SubjectID, record.Domain.String(), record.RecordedAt.UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// FetchHistory returns a subject's records for one domain, oldest first.
// No history yields an empty slice, never nil.
func (s *SQLiteStore) FetchHistory(ctx context.Context, subjectID string, d domain.RecordDomain) ([]domain.HealthRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recorded_at, payload
		FROM health_records
		WHERE subject_id = ? AND domain = ?
		ORDER BY recorded_at ASC
	`, subjectID, d.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.HealthRecord, 0)
	for rows.Next() {
		var recordedAt time.Time
		var payload string
		if err := rows.Scan(&recordedAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		values := make(map[string]float64)
		if err := json.Unmarshal([]byte(payload), &values); err != nil {
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

// AppendAssessment stores one assessment result. Results are append-only;
// a duplicate ID is an error, never an overwrite.
func (s *SQLiteStore) AppendAssessment(ctx context.Context, result *domain.AssessmentResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, subject_id, generated_at, payload)
		VALUES (?, ?, ?, ?)
	`, result.ID, result.SubjectID, result.GeneratedAt.UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// ListAssessments returns a subject's assessments, oldest first.
func (s *SQLiteStore) ListAssessments(ctx context.Context, subjectID string) ([]domain.AssessmentResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload
		FROM assessments
		WHERE subject_id = ?
		ORDER BY generated_at ASC
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	results := make([]domain.AssessmentResult, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		var result domain.AssessmentResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, fmt.Errorf("failed to decode assessment: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// LatestAssessment returns the subject's most recent assessment, or nil
// when none exists.
func (s *SQLiteStore) LatestAssessment(ctx context.Context, subjectID string) (*domain.AssessmentResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload
		FROM assessments
		WHERE subject_id = ?
		ORDER BY generated_at DESC
		LIMIT 1
	`, subjectID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest assessment: %w", err)
	}

	var result domain.AssessmentResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to decode assessment: %w", err)
	}
	return &result, nil
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
