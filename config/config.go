package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultQueryTimeout bounds every single storage round-trip.
	DefaultQueryTimeout = 10 * time.Second

	// CacheExpiration bounds how long a cached read may outlive the row it
	// was taken from. Imports also flush the cache explicitly.
	CacheExpiration = 5 * time.Minute

	// DefaultChunkSize is the fallback for [search] chunk_size. It keeps
	// "id IN (...)" queries under the bound-parameter ceiling of the
	// backend and is deliberately tunable per deployment.
	DefaultChunkSize = 1000

	DefaultSuggestLimit = 5
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log       LogConfig       `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	DB        DBConfig        `toml:"db"`
	Auth      AuthConfig      `toml:"auth"`
	Search    SearchConfig    `toml:"search"`
	Spaces    SpacesConfig    `toml:"spaces"`
	Legacy    LegacyConfig    `toml:"legacy"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	AddSource bool       `toml:"add_source"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

type AuthConfig struct {
	// SessionSecret signs the admin session cookie.
	SessionSecret string `toml:"session_secret"`
	// ClientSecret signs the JWTs handed to game clients.
	ClientSecret string `toml:"client_secret"`
	// ClientKeys are the pre-shared keys a game client exchanges for a JWT.
	ClientKeys []string `toml:"client_keys"`
	// GoogleClientID is the OAuth client the admin ID tokens must target.
	GoogleClientID string `toml:"google_client_id"`
	// AdminEmails lists the Google accounts allowed into /admin.
	AdminEmails []string `toml:"admin_emails"`
	TokenTTL    int      `toml:"token_ttl_minutes"`
}

type SearchConfig struct {
	// ChunkSize caps how many ids a single "id IN (...)" query may bind.
	ChunkSize    int `toml:"chunk_size"`
	SuggestLimit int `toml:"suggest_limit"`
}

type SpacesConfig struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	CardRoot string `toml:"cardroot"`
}

// LegacyConfig points at the MongoDB instance the previous generation of the
// catalog lived in. Only the legacy import job reads it.
type LegacyConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type RateLimitConfig struct {
	Limit         int `toml:"limit"`
	WindowSeconds int `toml:"window_seconds"`
}

func (c *Config) applyDefaults() {
	if c.Search.ChunkSize <= 0 {
		c.Search.ChunkSize = DefaultChunkSize
	}
	if c.Search.SuggestLimit <= 0 {
		c.Search.SuggestLimit = DefaultSuggestLimit
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 60
	}
	if c.RateLimit.Limit <= 0 {
		c.RateLimit.Limit = 60
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = 60
	}
}
