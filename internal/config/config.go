// Package config loads server configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Store backend names accepted in STORE.
const (
	StoreSQLite   = "sqlite"
	StoreJSONFile = "jsonfile"
)

// Config holds everything the server needs to start.
type Config struct {
	// Addr is the listen address.
	Addr string `env:"ADDR" envDefault:":8080"`

	// Store selects the persistence backend: sqlite or jsonfile.
	Store string `env:"STORE" envDefault:"sqlite"`

	// DBPath is the sqlite database file (STORE=sqlite).
	DBPath string `env:"DB_PATH" envDefault:"./data/tanda.db"`

	// StatePath is the JSON state file (STORE=jsonfile).
	StatePath string `env:"STATE_PATH" envDefault:"./data/groups.json"`

	// TipURL is the remote tip endpoint; empty disables remote fetching.
	TipURL string `env:"TIP_URL" envDefault:"https://api.adviceslip.com/advice"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Store != StoreSQLite && cfg.Store != StoreJSONFile {
		return Config{}, fmt.Errorf("unknown STORE %q (want %s or %s)", cfg.Store, StoreSQLite, StoreJSONFile)
	}
	return cfg, nil
}
