/*
Package config loads server configuration.

PURPOSE:
  Layered configuration for the factoring service:
    defaults -> YAML file -> environment overrides
  Loading is fail-soft: a missing or unparsable file leaves defaults in
  place, so the server always starts with something sensible.

FILE FORMAT (YAML):
  server:
    port: 8080
    db: ./data/flowfi.db
    corsOrigins:
      - http://localhost:3000

ENVIRONMENT OVERRIDES:
  FLOWFI_PORT          Listen port
  FLOWFI_DB            SQLite database path
  FLOWFI_CORS_ORIGINS  Comma-separated allowed origins
*/
package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        int
	DBPath      string
	CORSOrigins []string
}

type fileConfig struct {
	Server fileServerConfig `yaml:"server"`
}

type fileServerConfig struct {
	Port        int      `yaml:"port"`
	DB          string   `yaml:"db"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

func Default() Config {
	return Config{
		Port:   8080,
		DBPath: "flowfi.db",
		CORSOrigins: []string{
			"http://localhost:3000",
			"http://localhost:8080",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment overrides. When configPath is empty, well-known locations
// are tried.
func Load(configPath string) Config {
	cfg := Default()

	candidates := []string{configPath}
	if configPath == "" {
		candidates = []string{"configs/flowfi.yaml", "flowfi.yaml"}
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}

		merge(&cfg, parsed.Server)
		break
	}

	applyEnvOverrides(&cfg)
	return cfg
}

func merge(cfg *Config, file fileServerConfig) {
	if file.Port > 0 {
		cfg.Port = file.Port
	}
	if file.DB != "" {
		cfg.DBPath = file.DB
	}
	if len(file.CORSOrigins) > 0 {
		cfg.CORSOrigins = file.CORSOrigins
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FLOWFI_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Port = port
		}
	}
	if v := os.Getenv("FLOWFI_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("FLOWFI_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}
}
