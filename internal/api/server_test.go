package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medwhisper/risk-engine/internal/domain"
	"github.com/medwhisper/risk-engine/internal/features"
	"github.com/medwhisper/risk-engine/internal/model"
	"github.com/medwhisper/risk-engine/internal/repository"
	"github.com/medwhisper/risk-engine/internal/scoring"
	"github.com/medwhisper/risk-engine/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, cfg domain.ServerConfig) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "risk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	schemas := features.NewSchemaSet("v1")
	registry, err := model.DefaultRegistry(schemas)
	require.NoError(t, err)
	thresholds, err := scoring.NewTierThresholds(scoring.DefaultTierCuts)
	require.NoError(t, err)

	engine, err := service.NewEngine(
		logger,
		store,
		features.NewAssessor(nil, 1),
		features.NewEngineer(logger, schemas),
		registry,
		scoring.NewScorer(logger, thresholds, nil, 5, nil),
		service.NewRecommender(),
		16,
	)
	require.NoError(t, err)

	csvPath := filepath.Join(t.TempDir(), "specialists.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"name,specialty,city,rating,experience_years,fee\n"+
			"Dr. Rao,Endocrinologist,Pune,4.8,12,900\n"), 0o644))

	return NewServer(logger, cfg, engine, service.NewSuggester(logger, csvPath))
}

func doJSON(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, domain.ServerConfig{})

	w := doJSON(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestAddRecordValidationErrors(t *testing.T) {
	server := newTestServer(t, domain.ServerConfig{})

	w := doJSON(t, server, http.MethodPost, "/api/v1/records", map[string]interface{}{
		"domain": "lab",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, server, http.MethodPost, "/api/v1/records", map[string]interface{}{
		"subject_id":  "s1",
		"domain":      "genomics",
		"recorded_at": time.Now().UTC().Format(time.RFC3339),
		"values":      map[string]float64{"x": 1},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown record domain")
}

func TestRecordAndAssessFlow(t *testing.T) {
	server := newTestServer(t, domain.ServerConfig{})

	w := doJSON(t, server, http.MethodPost, "/api/v1/records", map[string]interface{}{
		"subject_id":  "s1",
		"domain":      "lab",
		"recorded_at": time.Now().UTC().Format(time.RFC3339),
		"values": map[string]float64{
			"glucose": 132, "hba1c": 6.6, "bp_systolic": 150, "bp_diastolic": 95,
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, server, http.MethodPost, "/api/v1/subjects/s1/assessments", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var result domain.AssessmentResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "s1", result.SubjectID)
	assert.Len(t, result.RiskScores, 5)
	assert.NotEmpty(t, result.ID)
	assert.NotEmpty(t, result.Recommendations)

	w = doJSON(t, server, http.MethodGet, "/api/v1/subjects/s1/assessments/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var latest domain.AssessmentResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &latest))
	assert.Equal(t, result.ID, latest.ID)

	w = doJSON(t, server, http.MethodGet, "/api/v1/subjects/s1/assessments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestLatestAssessmentNotFound(t *testing.T) {
	server := newTestServer(t, domain.ServerConfig{})

	w := doJSON(t, server, http.MethodGet, "/api/v1/subjects/nobody/assessments/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSuggestSpecialistsEndpoint(t *testing.T) {
	server := newTestServer(t, domain.ServerConfig{})

	w := doJSON(t, server, http.MethodGet, "/api/v1/specialists?disease=diabetes&city=Pune", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dr. Rao")

	w = doJSON(t, server, http.MethodGet, "/api/v1/specialists?disease=gout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, server, http.MethodGet, "/api/v1/specialists?disease=diabetes&max_fee=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitRejectsBursts(t *testing.T) {
	server := newTestServer(t, domain.ServerConfig{RateLimit: 1, RateBurst: 1})

	first := doJSON(t, server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, first.Code)

	limited := false
	for i := 0; i < 5; i++ {
		if doJSON(t, server, http.MethodGet, "/health", nil).Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "burst beyond the limit must be rejected")
}

func TestErrorBodyCarriesCorrelationID(t *testing.T) {
	server := newTestServer(t, domain.ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects/nobody/assessments/latest", nil)
	req.Header.Set("X-Correlation-ID", "test-correlation")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "test-correlation")
}

func TestServerAddr(t *testing.T) {
	server := newTestServer(t, domain.ServerConfig{Host: "127.0.0.1", Port: 8085})
	assert.Equal(t, fmt.Sprintf("%s:%d", "127.0.0.1", 8085), server.httpServer.Addr)
}
