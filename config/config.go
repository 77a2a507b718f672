/*
Package config loads the application settings.

SOURCES (later wins):
  1. Defaults in the struct tags below
  2. A .env file in the working directory, if present
  3. Environment variables prefixed with GARDEPARENTS_
  4. Command-line flags (-addr, -db, -backend, -data), see cmd/server

VARIABLES:
  GARDEPARENTS_ADDR             listen address (default 127.0.0.1:8080)
  GARDEPARENTS_BACKEND          sqlite | local | auto (default auto)
  GARDEPARENTS_DB_PATH          SQLite file; selects sqlite in auto mode
  GARDEPARENTS_DATA_DIR         directory for the local fallback lists
  GARDEPARENTS_STATIC_DIR       built frontend to serve (default ./web/dist)
  GARDEPARENTS_LOG_LEVEL        debug | info | warn | error
  GARDEPARENTS_ALLOWED_ORIGINS  CORS origins for the dev frontend
  GARDEPARENTS_RATE_LIMIT       write requests per client per minute
*/
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const Prefix = "GARDEPARENTS"

type Config struct {
	Addr           string   `split_words:"true" default:"127.0.0.1:8080"`
	Backend        string   `split_words:"true" default:"auto"`
	DBPath         string   `envconfig:"DB_PATH"`
	DataDir        string   `split_words:"true"`
	StaticDir      string   `split_words:"true" default:"./web/dist"`
	LogLevel       string   `split_words:"true" default:"info"`
	AllowedOrigins []string `split_words:"true" default:"http://localhost:5173,http://localhost:8080"`
	RateLimit      int      `split_words:"true" default:"60"`
}

// Storage is the subset of Config the backend factory needs.
type Storage struct {
	Backend string
	DBPath  string
	DataDir string
}

func (c *Config) Storage() Storage {
	return Storage{Backend: c.Backend, DBPath: c.DBPath, DataDir: c.DataDir}
}

// Load reads the optional .env file then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(Prefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env vars: %w", err)
	}
	return cfg, nil
}
