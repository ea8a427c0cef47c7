package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	NATS          NATSConfig          `yaml:"nats"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig selects the database.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER"` // postgres|sqlite
	DSN    string `yaml:"dsn" env:"DATABASE_URL"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Addr           string   `yaml:"addr" env:"HTTP_ADDR"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      float64  `yaml:"rate_limit" env:"HTTP_RATE_LIMIT"` // requests per second per IP
	RateBurst      int      `yaml:"rate_burst" env:"HTTP_RATE_BURST"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret" env:"JWT_SECRET"`
	Issuer     string        `yaml:"issuer" env:"JWT_ISSUER"`
	DefaultTTL time.Duration `yaml:"default_ttl" env:"JWT_DEFAULT_TTL"`
}

// ScoringConfig holds the points per metric and the fault policy.
type ScoringConfig struct {
	BestSinglePoints int    `yaml:"best_single_points" env:"SCORING_BEST_SINGLE_POINTS"`
	MeanOf5Points    int    `yaml:"mean_of5_points" env:"SCORING_MEAN_OF5_POINTS"`
	MeanOf12Points   int    `yaml:"mean_of12_points" env:"SCORING_MEAN_OF12_POINTS"`
	FaultPolicy      string `yaml:"fault_policy" env:"FAULT_POLICY"` // lenient|strict
}

// SchedulerConfig holds the daily job settings.
type SchedulerConfig struct {
	Enabled         bool   `yaml:"enabled" env:"SCHEDULER_ENABLED"`
	RunAt           string `yaml:"run_at" env:"SCHEDULER_RUN_AT"` // HH:MM UTC
	RoomConcurrency int    `yaml:"room_concurrency" env:"ROOM_CONCURRENCY"`
	MaxWorkers      int    `yaml:"max_workers" env:"SCHEDULER_MAX_WORKERS"`
}

// NATSConfig holds NATS configuration. An empty URL uses the in-process bus.
type NATSConfig struct {
	URL         string `yaml:"url" env:"NATS_URL"`
	ReportTopic string `yaml:"report_topic" env:"REPORT_TOPIC"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment    string `yaml:"environment" env:"ENV"`
	LogLevel       string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat      string `yaml:"log_format" env:"LOG_FORMAT"` // json|text
	MetricsAddress string `yaml:"metrics_address" env:"METRICS_ADDRESS"`
}

// DefaultSQLiteDSN is used when the sqlite driver is selected without a DSN.
const DefaultSQLiteDSN = "file:cube-rooms.db?_pragma=busy_timeout(5000)"

// Default returns the settings used for keys missing from the file and environment.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Driver: "sqlite"},
		HTTP:    HTTPConfig{Addr: ":8080", RateLimit: 5, RateBurst: 10},
		JWT:     JWTConfig{Issuer: "cube-rooms", DefaultTTL: time.Hour},
		Scoring: ScoringConfig{
			BestSinglePoints: 4,
			MeanOf5Points:    3,
			MeanOf12Points:   3,
			FaultPolicy:      "lenient",
		},
		Scheduler: SchedulerConfig{Enabled: true, RunAt: "00:01", RoomConcurrency: 4, MaxWorkers: 2},
		NATS:      NATSConfig{ReportTopic: "leaderboard.daily.processed"},
		Observability: ObservabilityConfig{
			Environment: "production",
			LogLevel:    "info",
			LogFormat:   "json",
		},
	}
}

// LoadConfig loads the configuration from a YAML file, then applies environment
// overrides. A missing file is not an error; a .env file is loaded when present.
func LoadConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if strings.EqualFold(cfg.Storage.Driver, "sqlite") && cfg.Storage.DSN == "" {
		cfg.Storage.DSN = DefaultSQLiteDSN
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Storage.Driver) {
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported storage.driver %q", c.Storage.Driver))
	}

	if c.Scoring.BestSinglePoints < 0 || c.Scoring.MeanOf5Points < 0 || c.Scoring.MeanOf12Points < 0 {
		errs = append(errs, errors.New("scoring points must not be negative"))
	}
	switch strings.ToLower(c.Scoring.FaultPolicy) {
	case "lenient", "strict":
	default:
		errs = append(errs, fmt.Errorf("unsupported scoring.fault_policy %q", c.Scoring.FaultPolicy))
	}

	if _, err := time.Parse("15:04", c.Scheduler.RunAt); err != nil {
		errs = append(errs, fmt.Errorf("invalid scheduler.run_at %q, expected HH:MM", c.Scheduler.RunAt))
	}
	if c.Scheduler.RoomConcurrency < 1 {
		errs = append(errs, errors.New("scheduler.room_concurrency must be at least 1"))
	}

	return errors.Join(errs...)
}

// UsesPostgres reports whether the store is postgres. The job queue needs it.
func (c *Config) UsesPostgres() bool {
	return strings.EqualFold(c.Storage.Driver, "postgres")
}
