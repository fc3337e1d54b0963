package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full server configuration, loaded from the environment.
type Config struct {
	Addr            string        `env:"STEAMSHELF_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `env:"STEAMSHELF_SHUTDOWN_TIMEOUT" env-default:"10s"`

	// Steam Web API
	SteamAPIKey  string        `env:"STEAM_API_KEY"`
	SteamTimeout time.Duration `env:"STEAMSHELF_STEAM_TIMEOUT" env-default:"12s"`

	// IGDB / Twitch credentials for metadata enrichment
	IGDBClientID     string        `env:"IGDB_CLIENT_ID"`
	IGDBClientSecret string        `env:"IGDB_CLIENT_SECRET"`
	IGDBTimeout      time.Duration `env:"STEAMSHELF_IGDB_TIMEOUT" env-default:"15s"`

	// Storage paths; both default under ~/.steamshelf
	DBPath       string `env:"STEAMSHELF_DB_PATH"`
	ProfilesPath string `env:"STEAMSHELF_PROFILES_PATH"`
	SchemaPath   string `env:"STEAMSHELF_SCHEMA_PATH" env-default:"docs/schema.sql"`
}

// LoadConfig reads configuration from the environment with defaults.
// Path defaults that depend on the home directory are filled afterwards.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dataDir(), "cache.db")
	}
	if cfg.ProfilesPath == "" {
		cfg.ProfilesPath = filepath.Join(dataDir(), "profiles.db")
	}
	return cfg, nil
}

// RequireSteam fails when the Steam API key is missing. The enrichment
// credentials stay optional: without them /api/get-game-details degrades
// to cache-only lookups.
func (c Config) RequireSteam() error {
	if c.SteamAPIKey == "" {
		return fmt.Errorf("STEAM_API_KEY not configured")
	}
	return nil
}

// EnrichmentEnabled reports whether IGDB credentials are present.
func (c Config) EnrichmentEnabled() bool {
	return c.IGDBClientID != "" && c.IGDBClientSecret != ""
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".steamshelf")
}
