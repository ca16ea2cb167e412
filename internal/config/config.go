package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// Manager loads and validates the application configuration using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment and defaults.
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/risk-engine/")

	viper.SetEnvPrefix("RISK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars suffice.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.rate_limit", 20.0)
	viper.SetDefault("server.rate_burst", 40)

	// Store defaults: zero-infra SQLite unless Postgres is configured
	viper.SetDefault("database.backend", "sqlite")
	viper.SetDefault("database.sqlite_path", "./data/risk-engine.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "risk_engine")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_conns", 25)
	viper.SetDefault("database.min_conns", 2)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.conn_max_idle_time", "1m")

	// Cache defaults
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.default_ttl", "1h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	// Engine defaults
	viper.SetDefault("engine.domain_weights", map[string]float64{
		"lab":            0.25,
		"lifestyle":      0.25,
		"mental_health":  0.25,
		"family_history": 0.25,
	})
	viper.SetDefault("engine.risk_tier_thresholds", map[string][]float64{
		"diabetes":      {25, 50, 75},
		"hypertension":  {25, 50, 75},
		"liver_disease": {25, 50, 75},
		"cardiac_risk":  {25, 50, 75},
		"mental_health": {25, 50, 75},
	})
	viper.SetDefault("engine.top_k_factors", 5)
	viper.SetDefault("engine.min_history_length", 1)
	viper.SetDefault("engine.feature_schema_version", "v1")
	viper.SetDefault("engine.memo_size", 1024)
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetEngineConfig returns the engine configuration.
func (m *Manager) GetEngineConfig() *domain.EngineConfig {
	return &m.config.Engine
}

// GetServerConfig returns server configuration.
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetDatabaseConfig returns store backend configuration.
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// Reload reloads the configuration.
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration.
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Database.Backend {
	case "sqlite":
		if config.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	default:
		return fmt.Errorf("unknown database backend: %s", config.Database.Backend)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if err := ValidateEngineConfig(&config.Engine); err != nil {
		return err
	}

	return nil
}

// ValidateEngineConfig checks the engine options against the contract:
// domain weights sum to 1 over known domains, per-disease tier
// thresholds are three strictly increasing values inside (0,100), top_k
// and history length are positive.
func ValidateEngineConfig(cfg *domain.EngineConfig) error {
	if len(cfg.DomainWeights) > 0 {
		var sum float64
		for name, w := range cfg.DomainWeights {
			if !domain.RecordDomain(name).Valid() {
				return fmt.Errorf("unknown domain in domain_weights: %s", name)
			}
			if w < 0 {
				return fmt.Errorf("negative weight for domain %s", name)
			}
			sum += w
		}
		if math.Abs(sum-1.0) > 1e-9 {
			return fmt.Errorf("domain_weights must sum to 1, got %v", sum)
		}
	}

	for disease, cuts := range cfg.RiskTierThresholds {
		if !domain.ValidDisease(disease) {
			return fmt.Errorf("unknown disease in risk_tier_thresholds: %s", disease)
		}
		if len(cuts) != 3 {
			return fmt.Errorf("risk_tier_thresholds for %s must have exactly 3 values", disease)
		}
		prev := 0.0
		for _, c := range cuts {
			if c <= prev || c >= 100 {
				return fmt.Errorf("risk_tier_thresholds for %s must be strictly increasing within (0,100)", disease)
			}
			prev = c
		}
	}

	if cfg.TopKFactors < 0 {
		return fmt.Errorf("top_k_factors must be non-negative")
	}
	if cfg.MinHistoryLength < 1 {
		return fmt.Errorf("min_history_length must be at least 1")
	}

	return nil
}
