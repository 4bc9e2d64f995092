// Package config reads bizstate settings from the environment.
//
// An optional .env file is loaded first; variables already set in the process win.
// Every variable carries the BIZSTATE_ prefix:
//
//	BIZSTATE_STORAGE_DRIVER: memory|fs|sqlite|postgres|redis|s3|gcs|mongo (default sqlite)
//	BIZSTATE_SQLITE_PATH: sqlite file (default ./bizstate.db)
//	BIZSTATE_FS_ROOT: directory for the fs driver (default ./bizstate-data)
//	BIZSTATE_POSTGRES_DSN: postgres DSN
//	BIZSTATE_REDIS_ADDR / _PASSWORD / _DB / _NAMESPACE
//	BIZSTATE_S3_BUCKET / _REGION / _PREFIX / _ENDPOINT / _PATH_STYLE
//	BIZSTATE_GCS_BUCKET / _PREFIX / _ENDPOINT
//	BIZSTATE_MONGO_URI / _DATABASE / _COLLECTION
//	BIZSTATE_KEY_PREFIX: namespace prepended to every key
//	BIZSTATE_LOG_LEVEL (default info), BIZSTATE_LOG_FORMAT text|json (default text)
//	BIZSTATE_SEED_FILE: YAML seed used instead of the built-in default
package config

import (
	"bizstate/internal/durable"
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "BIZSTATE_"

// Config is the full runtime configuration.
type Config struct {
	Storage   durable.Config
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	SeedFile  string `env:"SEED_FILE"`
}

// Load reads dotenv files (default ".env"; a missing file is ignored) and then parses
// the environment.
func Load(dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv parses the process environment only.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
