package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/medwhisper/risk-engine/internal/domain"
)

const defaultCacheTTL = 15 * time.Minute

// CachedStore decorates a Store with a Redis cache for the hot
// latest-assessment lookup. Cache failures degrade to the inner store;
// they are logged, never surfaced.
type CachedStore struct {
	inner  domain.Store
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachedStore wraps a store with a Redis latest-assessment cache.
func NewCachedStore(inner domain.Store, client *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func latestKey(subjectID string) string {
	return fmt.Sprintf("risk:latest:%s", subjectID)
}

// FetchHistory delegates to the inner store.
func (c *CachedStore) FetchHistory(ctx context.Context, subjectID string, d domain.RecordDomain) ([]domain.HealthRecord, error) {
	return c.inner.FetchHistory(ctx, subjectID, d)
}

// AppendRecord delegates to the inner store. Records do not affect the
// latest assessment, so the cache stays intact.
func (c *CachedStore) AppendRecord(ctx context.Context, record domain.HealthRecord) error {
	return c.inner.AppendRecord(ctx, record)
}

// AppendAssessment persists through the inner store and refreshes the
// latest-assessment cache entry on success.
func (c *CachedStore) AppendAssessment(ctx context.Context, result *domain.AssessmentResult) error {
	if err := c.inner.AppendAssessment(ctx, result); err != nil {
		return err
	}

	payload, err := json.Marshal(result)
	if err == nil {
		err = c.client.Set(ctx, latestKey(result.SubjectID), payload, c.ttl).Err()
	}
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"subject_id": result.SubjectID,
			"error":      err.Error(),
		}).Warn("Failed to refresh assessment cache")
		// Stale entries are worse than misses.
		if delErr := c.client.Del(ctx, latestKey(result.SubjectID)).Err(); delErr != nil {
			c.logger.WithField("error", delErr.Error()).Warn("Failed to invalidate assessment cache")
		}
	}
	return nil
}

// ListAssessments delegates to the inner store.
func (c *CachedStore) ListAssessments(ctx context.Context, subjectID string) ([]domain.AssessmentResult, error) {
	return c.inner.ListAssessments(ctx, subjectID)
}

// LatestAssessment serves from the cache when possible, falling back to
// the inner store and re-populating on a miss.
func (c *CachedStore) LatestAssessment(ctx context.Context, subjectID string) (*domain.AssessmentResult, error) {
	payload, err := c.client.Get(ctx, latestKey(subjectID)).Bytes()
	if err == nil {
		var result domain.AssessmentResult
		if decodeErr := json.Unmarshal(payload, &result); decodeErr == nil {
			return &result, nil
		}
		// Corrupt entry; drop it and fall through to the store.
		c.client.Del(ctx, latestKey(subjectID))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WithFields(logrus.Fields{
			"subject_id": subjectID,
			"error":      err.Error(),
		}).Warn("Assessment cache unavailable")
	}

	result, err := c.inner.LatestAssessment(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if result != nil {
		if payload, encodeErr := json.Marshal(result); encodeErr == nil {
			c.client.Set(ctx, latestKey(subjectID), payload, c.ttl)
		}
	}
	return result, nil
}
