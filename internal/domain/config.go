package domain

import (
	"time"
)

// Config represents the main application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

// DatabaseConfig represents store backend configuration. Backend selects
// between the SQLite and Postgres implementations.
type DatabaseConfig struct {
	Backend         string        `mapstructure:"backend"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// CacheConfig represents the Redis assessment cache configuration.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	RedisURL   string        `mapstructure:"redis_url"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig holds the recognized risk-engine options.
type EngineConfig struct {
	// DomainWeights maps record domain to its weight in the overall
	// completeness score. Weights must sum to 1; defaults to uniform.
	DomainWeights map[string]float64 `mapstructure:"domain_weights"`
	// RiskTierThresholds maps disease to three strictly increasing cut
	// points partitioning [0,100] into the four tiers. Diseases without
	// an entry use the default cuts.
	RiskTierThresholds map[string][]float64 `mapstructure:"risk_tier_thresholds"`
	// TopKFactors is the number of contributing factors reported per score.
	TopKFactors int `mapstructure:"top_k_factors"`
	// MinHistoryLength is the record count a domain is expected to have
	// when computing completeness.
	MinHistoryLength int `mapstructure:"min_history_length"`
	// FeatureSchemaVersion tags generated feature vectors and results.
	FeatureSchemaVersion string `mapstructure:"feature_schema_version"`
	// SpecialistsCSV points at the specialist directory file, if any.
	SpecialistsCSV string `mapstructure:"specialists_csv"`
	// MemoSize bounds the per-subject latest-assessment memo cache.
	MemoSize int `mapstructure:"memo_size"`
}
