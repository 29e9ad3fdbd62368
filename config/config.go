// Package config loads application settings from a .env file and environment
// variables. Environment variables always take precedence over .env file values.
package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// Cloud storage - all optional. Absence of a bucket name is not an
	// error, only a signal to persist to the local mirror exclusively.
	BucketName      string
	ProjectID       string
	CredentialsPath string

	// Local document mirror root.
	DataDir string

	// Admin gate: bcrypt hash of the shared admin secret, and the JWT
	// signing secret for tokens issued after signin.
	AdminKeyHash string
	JWTSecret    string

	// Racecard feed consumed by the scrape endpoint.
	FeedURL    string
	FeedSource string

	// Server
	Debug      bool
	Port       string
	TLSDomains []string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("PORT", ":9000")
	v.SetDefault("FEED_SOURCE", "smspariaz")
	v.SetDefault("TLS_DOMAINS", "punters.mmrace.app")
	v.SetDefault("DEBUG", false)

	cfg := &Config{
		BucketName:      v.GetString("GCS_BUCKET_NAME"),
		ProjectID:       v.GetString("GOOGLE_CLOUD_PROJECT"),
		CredentialsPath: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		DataDir:         v.GetString("DATA_DIR"),
		AdminKeyHash:    v.GetString("ADMIN_KEY_HASH"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		FeedURL:         v.GetString("RACECARD_FEED_URL"),
		FeedSource:      v.GetString("FEED_SOURCE"),
		Debug:           v.GetBool("DEBUG"),
		Port:            v.GetString("PORT"),
		TLSDomains:      splitTrimmed(v.GetString("TLS_DOMAINS")),
	}

	cfg.validate()
	return cfg
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

func (c *Config) validate() {
	if c.JWTSecret == "" {
		log.Fatal("config: JWT_SECRET must be set")
	}
	if c.AdminKeyHash == "" {
		log.Fatal("config: ADMIN_KEY_HASH must be set (generate one with cmd/adminkey)")
	}
}

func newViper() *viper.Viper {
	// Silently load .env - OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
