package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the rhxd server configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (RHXD_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// ListenAddr is the address the Hotline listener binds to.
	ListenAddr string `mapstructure:"listen_addr" validate:"required" yaml:"listen_addr"`

	// ListenPort is the TCP port the Hotline listener binds to.
	ListenPort int `mapstructure:"listen_port" validate:"required,min=1,max=65535" yaml:"listen_port"`

	// ServerName is announced in the login reply and tracker registration.
	ServerName string `mapstructure:"server_name" validate:"required" yaml:"server_name"`

	// ServerVersion is an informational version string. It is not sent to
	// clients: the login reply carries the fixed numeric protocol version
	// set in cmd/rhxd/commands/start.go, and this value is not read there.
	ServerVersion string `mapstructure:"server_version" yaml:"server_version"`

	// MaxConnections bounds concurrently accepted connections. 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" validate:"gte=0" yaml:"max_connections"`

	// AllowGuest permits login with an empty login name.
	AllowGuest bool `mapstructure:"allow_guest" yaml:"allow_guest"`

	// RequireLogin is accepted for spec compatibility but has no effect of
	// its own: the session state machine already rejects every transaction
	// kind except Login while in StateLoggedIn (session.State.CheckInboundKind),
	// so no connection can reach Agreeing/Active without Login succeeding
	// regardless of this value. See DESIGN.md's "Open-question resolutions"
	// for the full reasoning; AllowGuest is the knob that actually changes
	// Login's behavior.
	RequireLogin bool `mapstructure:"require_login" yaml:"require_login"`

	// IdleTimeout closes a session that sends nothing for this long. Despite
	// the "_secs" suffix on its config key (kept for spec compatibility),
	// the config file value must be a duration string ("5m", "300s"), not a
	// bare number — a bare number decodes as nanoseconds, matching how
	// yaml.Marshal writes this field back out, not seconds. See DESIGN.md's
	// "Open-question resolutions".
	IdleTimeout time.Duration `mapstructure:"idle_timeout_secs" yaml:"idle_timeout_secs"`

	// DefaultUserAccess is the AccessPrivileges bitfield granted to a
	// successfully authenticated named account absent an explicit grant.
	DefaultUserAccess uint64 `mapstructure:"default_user_access" yaml:"default_user_access"`

	// DefaultGuestAccess is the AccessPrivileges bitfield granted to guest logins.
	DefaultGuestAccess uint64 `mapstructure:"default_guest_access" yaml:"default_guest_access"`

	// ShutdownTimeout bounds how long graceful shutdown waits for sessions
	// to drain. Same duration-string requirement as IdleTimeout.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics contains Prometheus metrics server configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Accounts configures the persistent account store.
	Accounts AccountsConfig `mapstructure:"accounts" yaml:"accounts"`

	// Tracker configures optional registration with a Hotline tracker.
	Tracker TrackerConfig `mapstructure:"tracker" yaml:"tracker"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use an insecure (non-TLS) connection.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and the HTTP server are enabled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the /metrics endpoint.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// AccountsConfig configures the persistent account store.
type AccountsConfig struct {
	// Driver selects the account store backend: memory or sqlite.
	Driver string `mapstructure:"driver" validate:"required,oneof=memory sqlite" yaml:"driver"`

	// SQLitePath is the database file path, used when Driver is sqlite.
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path,omitempty"`
}

// TrackerConfig configures optional registration with a Hotline tracker.
type TrackerConfig struct {
	// Address is the tracker's host:port. Registration is disabled when empty.
	Address string `mapstructure:"address" yaml:"address,omitempty"`

	// Interval is how often the registration datagram is resent.
	Interval time.Duration `mapstructure:"interval" yaml:"interval,omitempty"`

	// Description is the one-line server description sent to the tracker.
	Description string `mapstructure:"description" yaml:"description,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages when no config
// file can be found.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  rhxdctl config init\n\n"+
				"Or specify a custom config file:\n"+
				"  rhxd --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  rhxdctl config init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration using struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	return nil
}

// SaveConfig saves the configuration to the specified file path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: config files may carry a sqlite path or tracker credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variable and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// RHXD_LOGGING_LEVEL=DEBUG, RHXD_LISTEN_PORT=5500, etc.
	v.SetEnvPrefix("RHXD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns the combined decode hook for time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook converts strings like "30s", "5m", "1h" to
// time.Duration. A bare number is taken as-is (nanoseconds), matching what
// yaml.Marshal writes for a time.Duration field and what SaveConfig's
// output round-trips through Load unchanged. A hand-edited config file
// must use a duration string, not a bare integer — see the field doc
// comments on Config.IdleTimeout/ShutdownTimeout.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "rhxd")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "rhxd")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for rhxdctl).
func GetConfigDir() string {
	return getConfigDir()
}
