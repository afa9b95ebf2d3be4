package config

import "time"

// ApplyDefaults sets default values for any unspecified configuration fields.
func ApplyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "0.0.0.0"
	}
	if cfg.ListenPort == 0 {
		cfg.ListenPort = 5500
	}
	if cfg.ServerName == "" {
		cfg.ServerName = "rhxd Test Server"
	}
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 10 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	// DefaultUserAccess/DefaultGuestAccess: zero means "no privileges",
	// a legitimate (if useless) configuration, so no default is forced.

	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyAccountsDefaults(&cfg.Accounts)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyAccountsDefaults sets account store defaults.
func applyAccountsDefaults(cfg *AccountsConfig) {
	if cfg.Driver == "" {
		cfg.Driver = "memory"
	}
	if cfg.Driver == "sqlite" && cfg.SQLitePath == "" {
		cfg.SQLitePath = "/var/lib/rhxd/accounts.db"
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		// 0x07: Delete+UploadFile+DownloadFile — a harmless default that lets
		// a guest browse and exchange files without admin capability.
		DefaultGuestAccess: 0x07,
		// Named accounts get broader defaults; still well short of admin bits.
		DefaultUserAccess: 0x0F,
	}

	ApplyDefaults(cfg)
	return cfg
}
