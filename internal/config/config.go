package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config defines service configuration.
type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	DatabaseURL string `yaml:"database_url"`
	JWTSecret   string `yaml:"jwt_secret"`
}

// Load resolves configuration from defaults, an optional yaml file named by
// EVCHARGE_CONFIG, then env overrides.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr: ":8080",
	}

	if path := os.Getenv("EVCHARGE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}
	if secret := os.Getenv("AUTH_JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("config: DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("config: AUTH_JWT_SECRET is required")
	}
	return cfg, nil
}
