package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// LogLevel is the logging level: debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`

	ClickUp   ClickUpConfig   `koanf:"clickup" yaml:"clickup"`
	Server    ServerConfig    `koanf:"server" yaml:"server"`
	Bulk      BulkConfig      `koanf:"bulk" yaml:"bulk"`
	Hierarchy HierarchyConfig `koanf:"hierarchy" yaml:"hierarchy"`
	Metrics   MetricsConfig   `koanf:"metrics" yaml:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing" yaml:"tracing"`
}

// ClickUpConfig holds API credentials and client tuning.
type ClickUpConfig struct {
	// APIKey is a personal token (pk_...).
	APIKey string `koanf:"api_key" yaml:"api_key"`
	// AccessToken is an OAuth token; it wins over APIKey when both are set.
	AccessToken string        `koanf:"access_token" yaml:"access_token"`
	TeamID      string        `koanf:"team_id" yaml:"team_id"`
	BaseURL     string        `koanf:"base_url" yaml:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration `koanf:"timeout" yaml:"timeout" validate:"gte=0"`
	// RateLimit is requests per minute; 0 disables client-side limiting.
	RateLimit int `koanf:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
}

// ServerConfig contains MCP server configuration.
type ServerConfig struct {
	// Name is the server name exposed via MCP.
	Name string `koanf:"name" yaml:"name" validate:"required"`

	// Version is the server version.
	Version string `koanf:"version" yaml:"version" validate:"required"`

	// Transport is stdio or http.
	Transport string `koanf:"transport" yaml:"transport" validate:"oneof=stdio http"`

	// Address is the listen address for the http transport.
	Address string `koanf:"address" yaml:"address" validate:"required_if=Transport http"`
}

// BulkConfig bounds bulk task operations.
type BulkConfig struct {
	Concurrency    int `koanf:"concurrency" yaml:"concurrency" validate:"gte=1"`
	MaxConcurrency int `koanf:"max_concurrency" yaml:"max_concurrency" validate:"gtefield=Concurrency"`
}

// HierarchyConfig tunes hierarchy fetches.
type HierarchyConfig struct {
	// Concurrency is how many spaces are fetched at once.
	Concurrency int `koanf:"concurrency" yaml:"concurrency" validate:"gte=1"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Address string `koanf:"address" yaml:"address" validate:"required_if=Enabled true"`
}

// TracingConfig controls OpenTelemetry spans.
type TracingConfig struct {
	Enabled bool `koanf:"enabled" yaml:"enabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		ClickUp: ClickUpConfig{
			BaseURL:   "https://api.clickup.com/api/v2",
			Timeout:   30 * time.Second,
			RateLimit: 100,
		},
		Server: ServerConfig{
			Name:      "clickup-mcp",
			Version:   "1.0.0",
			Transport: "stdio",
			Address:   ":8080",
		},
		Bulk: BulkConfig{
			Concurrency:    5,
			MaxConcurrency: 10,
		},
		Hierarchy: HierarchyConfig{
			Concurrency: 4,
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
	}
}

// FlagMappings maps CLI flag names to config keys.
var FlagMappings = map[string]string{
	"log-level": "log_level",
	"team-id":   "clickup.team_id",
	"transport": "server.transport",
	"address":   "server.address",
}

// legacyEnv maps the conventional unprefixed variables to config keys.
var legacyEnv = map[string]string{
	"CLICKUP_API_KEY":      "clickup.api_key",
	"CLICKUP_TEAM_ID":      "clickup.team_id",
	"CLICKUP_ACCESS_TOKEN": "clickup.access_token",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fe.Namespace()+": failed "+fe.Tag())
			}
			return errors.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// RequireCredentials reports whether the ClickUp client can be built.
func (c *Config) RequireCredentials() error {
	if c.ClickUp.APIKey == "" && c.ClickUp.AccessToken == "" {
		return errors.New("clickup.api_key or clickup.access_token is required (set CLICKUP_API_KEY)")
	}
	if c.ClickUp.TeamID == "" {
		return errors.New("clickup.team_id is required (set CLICKUP_TEAM_ID)")
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file at path,
// environment variables and explicitly set flags. flags may be nil.
// A missing file is an error only when path is not empty.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	l := NewLoader(EnvPrefix)
	if err := l.LoadWithDefaults(DefaultConfig(), path); err != nil {
		return nil, err
	}
	if err := l.LoadLegacyEnv(legacyEnv); err != nil {
		return nil, err
	}
	if flags != nil {
		if err := l.LoadFlags(flags, FlagMappings); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := l.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultLocations lists the config files searched when none is given:
// ./clickup-mcp.yaml, $XDG_CONFIG_HOME/clickup-mcp/config.yaml and
// ~/.clickup-mcp.yaml.
func DefaultLocations() []string {
	locations := []string{"clickup-mcp.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		locations = append(locations, filepath.Join(dir, "clickup-mcp", "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".clickup-mcp.yaml"))
	}
	return locations
}

// LoadFromDefaultLocations loads the first config file found in
// DefaultLocations, or defaults plus environment when none exists.
func LoadFromDefaultLocations(flags *pflag.FlagSet) (*Config, error) {
	for _, loc := range DefaultLocations() {
		if _, err := os.Stat(loc); err == nil {
			return Load(loc, flags)
		}
	}
	return Load("", flags)
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.ClickUp.APIKey = mask(c.ClickUp.APIKey)
	out.ClickUp.AccessToken = mask(c.ClickUp.AccessToken)
	return &out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 6 {
		return "****"
	}
	return secret[:3] + "****" + secret[len(secret)-2:]
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	// the file may carry an API key
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, "write config file")
	}

	return nil
}

// ParseLevel converts a config log level to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
