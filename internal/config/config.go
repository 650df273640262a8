package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DevUserPoolID is the Cognito user pool of the local development stack.
const DevUserPoolID = "us-east-1_a6gt5CsAi"

// Source kinds for the role sync.
const (
	SourceContainer = "container"
	SourcePostgres  = "postgres"
	SourceSQLite    = "sqlite"
)

// Config holds all configuration of the operational commands.
type Config struct {
	Sync  SyncConfig
	Smoke SmokeConfig
	Log   LogConfig
}

// SyncConfig contains role sync settings.
type SyncConfig struct {
	UserPoolID      string `env:"COGNITO_USER_POOL_ID"`
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"COGNITO_ENDPOINT"` // optional override, e.g. cognito-local
	CredentialsFile string `env:"ROLESYNC_CREDENTIALS_FILE" envDefault:".env"`
	Source          string `env:"ROLESYNC_SOURCE" envDefault:"container"`
	Container       string `env:"ROLESYNC_CONTAINER" envDefault:"doordash-postgres"`
	DBName          string `env:"ROLESYNC_DB_NAME" envDefault:"doordash_db"`
	DBUser          string `env:"ROLESYNC_DB_USER" envDefault:"postgres"`
	PostgresDSN     string `env:"ROLESYNC_POSTGRES_DSN"`
	SQLitePath      string `env:"DB_PATH" envDefault:"app.db"`
}

// SmokeConfig contains settings of the favorites smoke test.
type SmokeConfig struct {
	BaseURL      string `env:"SMOKE_BASE_URL" envDefault:"http://localhost:8080/api"`
	Email        string `env:"SMOKE_EMAIL" envDefault:"carttest@example.com"`
	Password     string `env:"SMOKE_PASSWORD" envDefault:"Password123!"`
	RestaurantID int64  `env:"SMOKE_RESTAURANT_ID" envDefault:"2"`
	Note         string `env:"SMOKE_NOTE" envDefault:"smoke test favorite"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	File  string `env:"LOG_FILE"` // empty disables the rotating file
}

// Load reads configuration from environment variables and validates the role
// sync section.
// COGNITO_USER_POOL_ID must be set.
func Load() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateSync(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but falls back to the development user pool.
// WARNING: Only use against the development stack.
func LoadWithDefaults() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if cfg.Sync.UserPoolID == "" {
		cfg.Sync.UserPoolID = DevUserPoolID
	}
	if err := cfg.validateSync(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSmoke reads configuration for the favorites smoke test. Only the smoke
// section is validated, so role sync settings cannot block it.
func LoadSmoke() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateSmoke(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Sync.Source = strings.ToLower(strings.TrimSpace(cfg.Sync.Source))
	return cfg, nil
}

func (c *Config) validateSmoke() error {
	if strings.TrimSpace(c.Smoke.BaseURL) == "" {
		return fmt.Errorf("SMOKE_BASE_URL must not be empty")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.UserPoolID == "" {
		return fmt.Errorf("COGNITO_USER_POOL_ID environment variable is not set")
	}
	if c.Sync.Region == "" {
		return fmt.Errorf("AWS_REGION must not be empty")
	}
	switch c.Sync.Source {
	case SourceContainer, SourceSQLite:
	case SourcePostgres:
		if c.Sync.PostgresDSN == "" {
			return fmt.Errorf("ROLESYNC_POSTGRES_DSN is required when ROLESYNC_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unknown ROLESYNC_SOURCE %q", c.Sync.Source)
	}
	return nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Pool: %s, Region: %s, Source: %s, Credentials: %s, Smoke: %s as %s, Password: *** (masked) ***}",
		c.Sync.UserPoolID, c.Sync.Region, c.Sync.Source, c.Sync.CredentialsFile, c.Smoke.BaseURL, c.Smoke.Email)
}
