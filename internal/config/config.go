package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the API server
type Config struct {
	// HTTP listener
	Server ServerConfig

	// Database Configuration
	Database DatabaseConfig

	// Authentication
	Auth AuthConfig

	// Uploaded banner images
	Storage StorageConfig

	// Review moderation
	Moderation ModerationConfig

	// Initial data
	Seed SeedConfig

	// Logging Configuration
	Logging LoggingConfig
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	JWTSecret string
}

// StorageConfig holds the upload directory
type StorageConfig struct {
	UploadDir string
}

// ModerationConfig holds the sweep schedule
type ModerationConfig struct {
	Schedule string // Cron expression, empty disables the periodic sweep
}

// SeedConfig describes the data loaded on startup
type SeedConfig struct {
	File          string
	AdminEmail    string
	AdminPassword string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return FromLookup(os.LookupEnv)
}

// FromLookup builds the configuration from a variable lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}

	jwtSecret := get("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	adminEmail := get("ADMIN_EMAIL", "")
	adminPassword := get("ADMIN_PASSWORD", "")
	if (adminEmail == "") != (adminPassword == "") {
		return nil, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	var origins []string
	for _, o := range strings.Split(get("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return nil, fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}

	return &Config{
		Server: ServerConfig{
			Port:        get("PORT", "5000"),
			CORSOrigins: origins,
		},
		Database: DatabaseConfig{
			URL: get("DATABASE_URL", "myshop.sqlite"),
		},
		Auth: AuthConfig{
			JWTSecret: jwtSecret,
		},
		Storage: StorageConfig{
			UploadDir: get("UPLOAD_DIR", "uploads"),
		},
		Moderation: ModerationConfig{
			Schedule: get("MODERATION_SCHEDULE", "@every 10m"),
		},
		Seed: SeedConfig{
			File:          get("SEED_FILE", ""),
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
		},
		Logging: LoggingConfig{
			Level:  get("LOG_LEVEL", "info"),
			Format: get("LOG_FORMAT", "json"),
		},
	}, nil
}
