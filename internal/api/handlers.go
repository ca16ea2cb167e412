package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// recordRequest is the JSON body for posting one health record.
type recordRequest struct {
	SubjectID  string             `json:"subject_id" binding:"required"`
	Domain     string             `json:"domain" binding:"required"`
	RecordedAt time.Time          `json:"recorded_at" binding:"required"`
	Values     map[string]float64 `json:"values" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAddRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, "invalid record payload: "+err.Error()))
		return
	}

	recordDomain := domain.RecordDomain(req.Domain)
	if !recordDomain.Valid() {
		c.JSON(http.StatusBadRequest, errorBody(c, "unknown record domain: "+req.Domain))
		return
	}

	record := domain.NewRecord(req.SubjectID, recordDomain, req.RecordedAt, req.Values)
	if err := s.engine.AddRecord(c.Request.Context(), record); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"subject_id": req.SubjectID,
		"domain":     req.Domain,
	})
}

func (s *Server) handleAssess(c *gin.Context) {
	subjectID := c.Param("id")

	result, err := s.engine.Assess(c.Request.Context(), subjectID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleLatestAssessment(c *gin.Context) {
	subjectID := c.Param("id")

	result, err := s.engine.LatestAssessment(c.Request.Context(), subjectID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, errorBody(c, "no assessment found for subject"))
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListAssessments(c *gin.Context) {
	subjectID := c.Param("id")

	results, err := s.engine.ListAssessments(c.Request.Context(), subjectID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subject_id":  subjectID,
		"count":       len(results),
		"assessments": results,
	})
}

func (s *Server) handleSuggestSpecialists(c *gin.Context) {
	disease := c.Query("disease")
	city := c.Query("city")

	maxFee := 0.0
	if raw := c.Query("max_fee"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody(c, "invalid max_fee"))
			return
		}
		maxFee = parsed
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody(c, "invalid limit"))
			return
		}
		limit = parsed
	}

	specialists, err := s.suggester.Suggest(disease, city, maxFee, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"disease":     disease,
		"city":        city,
		"specialists": specialists,
	})
}

// respondError maps engine errors to HTTP statuses. Store failures are
// upstream problems; everything else unexpected stays a 500.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"

	var ee *domain.EngineError
	if errors.As(err, &ee) {
		code = ee.Code
		if ee.Code == domain.ErrStore {
			status = http.StatusBadGateway
		}
	}

	s.logger.WithFields(logrus.Fields{
		"correlation_id": c.GetString("correlation_id"),
		"code":           code,
		"error":          err.Error(),
	}).Error("Request failed")

	body := errorBody(c, err.Error())
	body["code"] = code
	c.JSON(status, body)
}

func errorBody(c *gin.Context, message string) gin.H {
	return gin.H{
		"error":          message,
		"correlation_id": c.GetString("correlation_id"),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}
}
