package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/medwhisper/risk-engine/internal/api"
	"github.com/medwhisper/risk-engine/internal/config"
	"github.com/medwhisper/risk-engine/internal/database"
	"github.com/medwhisper/risk-engine/internal/domain"
	"github.com/medwhisper/risk-engine/internal/features"
	"github.com/medwhisper/risk-engine/internal/model"
	"github.com/medwhisper/risk-engine/internal/repository"
	"github.com/medwhisper/risk-engine/internal/scoring"
	"github.com/medwhisper/risk-engine/internal/service"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to initialize store")
	}
	defer closeStore()

	schemas := features.NewSchemaSet(cfg.Engine.FeatureSchemaVersion)
	registry, err := model.DefaultRegistry(schemas)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to build model registry")
	}

	defaultThresholds, diseaseThresholds, err := tierThresholds(cfg.Engine)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Invalid tier thresholds")
	}

	engine, err := service.NewEngine(
		logger,
		store,
		features.NewAssessor(cfg.Engine.DomainWeights, cfg.Engine.MinHistoryLength),
		features.NewEngineer(logger, schemas),
		registry,
		scoring.NewScorer(logger, defaultThresholds, diseaseThresholds, cfg.Engine.TopKFactors, nil),
		service.NewRecommender(),
		cfg.Engine.MemoSize,
	)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to build assessment engine")
	}

	suggester := service.NewSuggester(logger, cfg.Engine.SpecialistsCSV)
	server := api.NewServer(logger, cfg.Server, engine, suggester)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithField("error", err.Error()).Error("Shutdown failed")
		}
		cancel()
	}()

	if err := server.Start(); err != nil {
		logger.WithField("error", err.Error()).Fatal("Server failed")
	}
	logger.Info("Risk engine stopped")
}

// buildStore assembles the configured store backend, optionally wrapped
// with the Redis assessment cache.
func buildStore(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (domain.Store, func(), error) {
	var store domain.Store
	var closer func()

	switch cfg.Database.Backend {
	case "postgres":
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		pgStore, err := repository.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		store, closer = pgStore, pgStore.Close
	default:
		sqliteStore, err := repository.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, closer = sqliteStore, func() { sqliteStore.Close() }
	}

	if cfg.Cache.Enabled {
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			closer()
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		store = repository.NewCachedStore(store, client, cfg.Cache.DefaultTTL, logger)
		inner := closer
		closer = func() {
			client.Close()
			inner()
		}
		logger.Info("Assessment cache enabled")
	}

	return store, closer, nil
}

// tierThresholds builds the default tier partition plus per-disease
// overrides from configuration. Diseases absent from the config map
// fall back to the default cuts.
func tierThresholds(cfg domain.EngineConfig) (*scoring.TierThresholds, map[string]*scoring.TierThresholds, error) {
	defaults, err := scoring.NewTierThresholds(scoring.DefaultTierCuts)
	if err != nil {
		return nil, nil, err
	}

	perDisease := make(map[string]*scoring.TierThresholds, len(cfg.RiskTierThresholds))
	for disease, cuts := range cfg.RiskTierThresholds {
		thresholds, err := scoring.NewTierThresholds(cuts)
		if err != nil {
			return nil, nil, fmt.Errorf("tier thresholds for %s: %w", disease, err)
		}
		perDisease[disease] = thresholds
	}
	return defaults, perDisease, nil
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
