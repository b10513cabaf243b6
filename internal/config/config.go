package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultSecret = "default-secret"

var ErrDatabaseURLRequired = errors.New("database url is required")

type Config struct {
	Debug                 bool          `yaml:"debug"`
	Host                  string        `yaml:"host"`
	Port                  string        `yaml:"port"`
	BaseURL               string        `yaml:"base_url"`
	Secret                string        `yaml:"secret"`
	DatabaseURL           string        `yaml:"database_url"`
	MigrationSource       string        `yaml:"migration_source"`
	OtelCollectorUrl      string        `yaml:"otel_collector_url"`
	AllowOrigins          []string      `yaml:"allow_origins"`
	AccessTokenExpiration time.Duration `yaml:"access_token_expiration"`
}

func defaultConfig() Config {
	return Config{
		Debug:                 false,
		Host:                  "localhost",
		Port:                  "8080",
		BaseURL:               "http://localhost:8080",
		Secret:                DefaultSecret,
		DatabaseURL:           "",
		MigrationSource:       "file://migrations",
		OtelCollectorUrl:      "",
		AllowOrigins:          []string{"*"},
		AccessTokenExpiration: 15 * time.Minute,
	}
}

// Load assembles configuration from, in increasing precedence:
// built-in defaults, an optional YAML file (CONFIG_PATH, default config.yaml),
// a .env file, and process environment variables.
func Load() (Config, error) {
	cfg := defaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if content, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, err
		}
	}

	// .env is optional; missing file is not an error
	_ = godotenv.Load()

	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Debug = v == "true" || v == "1"
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SECRET"); v != "" {
		cfg.Secret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("MIGRATION_SOURCE"); v != "" {
		cfg.MigrationSource = v
	}
	if v := os.Getenv("OTEL_COLLECTOR_URL"); v != "" {
		cfg.OtelCollectorUrl = v
	}
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("ACCESS_TOKEN_EXPIRATION"); v != "" {
		duration, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, err
		}
		cfg.AccessTokenExpiration = duration
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURLRequired
	}
	return nil
}
