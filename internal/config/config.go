package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/bher20/eratecharge/internal/logging"
)

// Config holds the service configuration. Values come from an optional YAML
// file and are then overridden by environment variables.
type Config struct {
	Port string `yaml:"port"`

	// Strict rejects invalid plans and negative quantities instead of
	// computing a charge from them.
	Strict bool `yaml:"strict"`

	DB      DBConfig       `yaml:"db"`
	Ledger  LedgerConfig   `yaml:"ledger"`
	Logging logging.Config `yaml:"logging"`
	Auth    AuthConfig     `yaml:"auth"`
}

type DBConfig struct {
	// Driver is one of none, memory, sqlite or postgres.
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type LedgerConfig struct {
	// Retention is how long charge records are kept, e.g. "90d". Empty or
	// "never" disables pruning.
	Retention string `yaml:"retention"`
	// PruneSchedule is a standard cron expression or descriptor such as
	// "@daily".
	PruneSchedule string `yaml:"prune_schedule"`
}

type AuthConfig struct {
	Tokens []TokenConfig `yaml:"tokens"`
}

// TokenConfig describes an API token by its SHA-256 hex digest.
type TokenConfig struct {
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
	SHA256 string `yaml:"sha256"`
}

const (
	DriverNone     = "none"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:   "8000",
		Strict: true,
		DB: DBConfig{
			Driver: DriverMemory,
		},
		Ledger: LedgerConfig{
			Retention:     "never",
			PruneSchedule: "@daily",
		},
		Logging: logging.DefaultConfig(),
	}
}

// FromEnv builds a Config from defaults and environment variables.
func FromEnv() Config {
	cfg := Default()
	applyEnv(&cfg)
	return cfg
}

// Load reads the YAML file at path, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("ERATECHARGE_DB_DRIVER"); v != "" {
		cfg.DB.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("ERATECHARGE_DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v, ok := envBool("ERATECHARGE_AUTO_MIGRATE"); ok {
		cfg.DB.AutoMigrate = v
	}
	if v, ok := envBool("ERATECHARGE_STRICT"); ok {
		cfg.Strict = v
	}
	if v := os.Getenv("ERATECHARGE_LEDGER_RETENTION"); v != "" {
		cfg.Ledger.Retention = v
	}
	if v := os.Getenv("ERATECHARGE_PRUNE_SCHEDULE"); v != "" {
		cfg.Ledger.PruneSchedule = v
	}
	if v := os.Getenv("ERATECHARGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ERATECHARGE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if cfg.DB.DSN == "" && cfg.DB.Driver == DriverSQLite {
		cfg.DB.DSN = "eratecharge.db"
	}
}

func envBool(key string) (bool, bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	}
	return false, false
}

// Validate checks the fields that would otherwise fail late at startup.
func (c Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case DriverNone, DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DB.DSN == "" {
			errs = append(errs, errors.New("db.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported db driver %q", c.DB.Driver))
	}
	if _, err := ParseRetention(c.Ledger.Retention); err != nil {
		errs = append(errs, err)
	}
	if c.Ledger.PruneSchedule != "" {
		if _, err := cron.ParseStandard(c.Ledger.PruneSchedule); err != nil {
			errs = append(errs, fmt.Errorf("invalid prune schedule %q: %w", c.Ledger.PruneSchedule, err))
		}
	}
	for i, t := range c.Auth.Tokens {
		if _, err := hex.DecodeString(t.SHA256); err != nil || len(t.SHA256) != 64 {
			errs = append(errs, fmt.Errorf("auth.tokens[%d] (%s): sha256 must be a 64 character hex digest", i, t.Name))
		}
	}
	return errors.Join(errs...)
}

// RetentionDuration returns the parsed retention window; 0 means forever.
func (c Config) RetentionDuration() time.Duration {
	d, _ := ParseRetention(c.Ledger.Retention)
	return d
}
