package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quickseq/internal/deeplink"
	"github.com/starford/quickseq/internal/inbox"
	"github.com/starford/quickseq/internal/settings"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app" toml:"app"`
	NoteStore NoteStoreConfig   `yaml:"note_store" toml:"note_store"`
	Settings  SettingsConfig    `yaml:"settings" toml:"settings"`
	Search    SearchConfig      `yaml:"search" toml:"search"`
	Ingest    IngestConfig      `yaml:"ingest" toml:"ingest"`
	Auth      AuthConfig        `yaml:"auth" toml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.NoteStore.Validate(); err != nil {
		return err
	}
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := c.Ingest.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NoteStoreConfig holds the fallback note-store endpoint. Values saved in the
// settings store take precedence.
type NoteStoreConfig struct {
	Host   string `yaml:"host" toml:"host"`
	Port   int    `yaml:"port" toml:"port"`
	Token  string `yaml:"token" toml:"token"`
	Scheme string `yaml:"scheme" toml:"scheme"`
}

// Validate validates the note-store configuration.
func (c *NoteStoreConfig) Validate() error {
	if c.Scheme == "" {
		c.Scheme = deeplink.DefaultScheme
	}
	return c.Connection().Validate()
}

// Connection converts the config into settings defaults.
func (c *NoteStoreConfig) Connection() settings.Connection {
	return settings.Connection{Host: c.Host, Port: c.Port, Token: c.Token}
}

// SettingsConfig holds the settings database location.
type SettingsConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the settings configuration.
func (c *SettingsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SearchConfig bounds search results. Zero means no limit.
type SearchConfig struct {
	Limit int `yaml:"limit" toml:"limit"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Limit, validation.Min(0)),
	)
}

// IngestConfig configures the optional inbox directory.
type IngestConfig struct {
	InboxDir string   `yaml:"inbox_dir" toml:"inbox_dir"`
	Settle   Duration `yaml:"settle" toml:"settle"`
}

// Validate validates the ingest configuration.
func (c *IngestConfig) Validate() error {
	if c.Settle == 0 {
		c.Settle = Duration(inbox.DefaultSettle)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Settle, validation.Min(Duration(10*time.Millisecond))),
	)
}

// Duration is a time.Duration read from strings such as "500ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// AuthConfig holds authentication configuration for the host API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		NoteStore: NoteStoreConfig{
			Host:   settings.DefaultHost,
			Port:   settings.DefaultPort,
			Token:  settings.DefaultToken,
			Scheme: deeplink.DefaultScheme,
		},
		Settings: SettingsConfig{
			Path: "./quickseq.db",
		},
		Ingest: IngestConfig{
			Settle: Duration(inbox.DefaultSettle),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
