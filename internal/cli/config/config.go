package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/myshop-dev/myshop/internal/cli/auth"
	"github.com/myshop-dev/myshop/internal/cli/userconfig"
)

// Mode selects which API deployment the client talks to.
type Mode string

const (
	ModeLocal      Mode = "local"
	ModeProduction Mode = "production"
)

// Modes lists the selectable modes.
var Modes = []Mode{ModeLocal, ModeProduction}

// Credential backends.
const (
	CredentialsKeyring = "keyring"
	CredentialsFile    = "file"
)

// Config holds the client configuration.
//
// Values come from the environment (and .env / .env.local in the working
// directory). MYSHOP_MODE falls back to the mode saved with
// `myshop select-api`, then to local.
type Config struct {
	Mode Mode `env:"MYSHOP_MODE"`

	// LocalAPI and ProdAPI are deployment roots; the client adds /api.
	LocalAPI string `env:"MYSHOP_LOCAL_API" envDefault:"http://localhost:5000"`
	ProdAPI  string `env:"MYSHOP_PROD_API"`

	// Credentials selects where the session is kept: keyring or file.
	Credentials string `env:"MYSHOP_CREDENTIALS" envDefault:"keyring"`
	SessionFile string `env:"MYSHOP_SESSION_FILE"`

	HTTPTimeout time.Duration `env:"MYSHOP_HTTP_TIMEOUT" envDefault:"30s"`
	LogLevel    string        `env:"MYSHOP_LOG_LEVEL" envDefault:"warn"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return finish(&cfg, userconfig.GetMode)
}

// LoadFrom reads the configuration from the given variables only.
func LoadFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return finish(&cfg, func() (string, error) { return "", nil })
}

func finish(cfg *Config, savedMode func() (string, error)) (*Config, error) {
	if cfg.Mode == "" {
		saved, err := savedMode()
		if err != nil {
			return nil, err
		}
		cfg.Mode = Mode(saved)
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeLocal
	}

	cfg.Mode = Mode(strings.ToLower(string(cfg.Mode)))
	cfg.Credentials = strings.ToLower(cfg.Credentials)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the mode and credential backend.
func (c *Config) Validate() error {
	var errs []error

	switch c.Mode {
	case ModeLocal:
		if c.LocalAPI == "" {
			errs = append(errs, errors.New("MYSHOP_LOCAL_API is required in local mode"))
		}
	case ModeProduction:
		if c.ProdAPI == "" {
			errs = append(errs, errors.New("MYSHOP_PROD_API is required in production mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid MYSHOP_MODE %q, must be local or production", c.Mode))
	}

	switch c.Credentials {
	case CredentialsKeyring, CredentialsFile:
	default:
		errs = append(errs, fmt.Errorf("invalid MYSHOP_CREDENTIALS %q, must be keyring or file", c.Credentials))
	}

	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("MYSHOP_HTTP_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// BaseURL returns the deployment root for the configured mode.
func (c *Config) BaseURL() string {
	if c.Mode == ModeProduction {
		return strings.TrimRight(c.ProdAPI, "/")
	}
	return strings.TrimRight(c.LocalAPI, "/")
}

// Backend returns the credential backend for the configured API. Sessions
// are scoped to the API root so local and production logins do not mix.
func (c *Config) Backend() (auth.Backend, error) {
	if c.Credentials == CredentialsFile {
		return auth.NewFileBackend(c.SessionFile)
	}
	return auth.NewKeyringBackend(c.BaseURL()), nil
}
