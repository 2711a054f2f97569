package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host        string
	Port        int
	MetricsPort int    `toml:"metrics_port"`
	Environment string `toml:"-"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// persistence: "postgres" or "sqlite"
	Backend    string `toml:"backend"`
	DBHost     string `toml:"db_host"`
	DBPort     string `toml:"db_port"`
	DBName     string `toml:"db_name"`
	SQLitePath string `toml:"sqlite_path"`

	// redis, used for auth sessions and login rate limiting
	RedisHost string `toml:"redis_host"`
	RedisPort int    `toml:"redis_port"`

	// training plan start date, e.g. "2026-01-02";
	// used by the plan initialize endpoint when the request carries no date
	PlanStartDate string `toml:"plan_start_date"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var configs Toml
	if _, err := toml.DecodeFile(path, &configs); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := configs.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env [%s] not found in %s", env, path)
	}

	cfg.Environment = env

	if cfg.Backend == "" {
		cfg.Backend = "sqlite"
	}

	return cfg, nil
}
