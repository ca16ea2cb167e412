// Package api exposes the risk engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medwhisper/risk-engine/internal/domain"
	"github.com/medwhisper/risk-engine/internal/middleware"
	"github.com/medwhisper/risk-engine/internal/service"
)

// Server wraps the gin engine and its HTTP listener.
type Server struct {
	logger     *logrus.Logger
	config     domain.ServerConfig
	engine     *service.Engine
	suggester  *service.Suggester
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer builds the HTTP server with routes and middleware wired.
func NewServer(logger *logrus.Logger, cfg domain.ServerConfig, engine *service.Engine, suggester *service.Suggester) *Server {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CorrelationID(),
		middleware.SecurityHeaders(),
		middleware.AuditLogger(),
		middleware.RateLimit(cfg.RateLimit, cfg.RateBurst),
	)

	s := &Server{
		logger:    logger,
		config:    cfg,
		engine:    engine,
		suggester: suggester,
		router:    router,
	}
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/records", s.handleAddRecord)
		v1.POST("/subjects/:id/assessments", s.handleAssess)
		v1.GET("/subjects/:id/assessments", s.handleListAssessments)
		v1.GET("/subjects/:id/assessments/latest", s.handleLatestAssessment)
		v1.GET("/specialists", s.handleSuggestSpecialists)
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving. Blocks until the listener stops.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("HTTP server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
