package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"statdash/adapters/tabular"
	"statdash/internal/errors"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Ops      OpsConfig
	Database DatabaseConfig
	Log      LogConfig
	Data     DataConfig
	Sessions SessionConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// OpsConfig holds the health, metrics and pprof listener
type OpsConfig struct {
	Port    string
	Enabled bool
}

// DatabaseConfig holds database connection settings. An empty URL keeps the
// run history in memory.
type DatabaseConfig struct {
	URL string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// DataConfig holds upload and parsing limits
type DataConfig struct {
	MaxUploadBytes  int64
	MaxRows         int
	DefaultEncoding string
}

// SessionConfig holds session and history settings
type SessionConfig struct {
	IdleTimeout           time.Duration
	MaxConcurrentAnalyses int
	HistoryLimit          int
}

// Load reads configuration from environment variables, an optional YAML file and
// defaults. Environment wins over the file; the file wins over defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", cfgFile)
		}
	} else {
		v.SetConfigName("statdash")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		// optional read
		_ = v.ReadInConfig()
	}

	config := &Config{
		Server:   *loadServerConfig(v),
		Ops:      *loadOpsConfig(v),
		Database: DatabaseConfig{URL: v.GetString("database_url")},
		Log:      *loadLogConfig(v),
		Data:     *loadDataConfig(v),
		Sessions: *loadSessionConfig(v),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("ops_port", "6060")
	v.SetDefault("ops_enabled", true)
	v.SetDefault("database_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("max_upload_bytes", int64(32<<20))
	v.SetDefault("max_rows", 0)
	v.SetDefault("default_encoding", "utf-8")
	v.SetDefault("session_idle_timeout", "30m")
	v.SetDefault("max_concurrent_analyses", 4)
	v.SetDefault("history_limit", 200)
}

func loadServerConfig(v *viper.Viper) *ServerConfig {
	return &ServerConfig{
		Port:    v.GetString("port"),
		GinMode: v.GetString("gin_mode"),
	}
}

func loadOpsConfig(v *viper.Viper) *OpsConfig {
	return &OpsConfig{
		Port:    v.GetString("ops_port"),
		Enabled: v.GetBool("ops_enabled"),
	}
}

func loadLogConfig(v *viper.Viper) *LogConfig {
	return &LogConfig{
		Level:  strings.ToLower(v.GetString("log_level")),
		Format: strings.ToLower(v.GetString("log_format")),
	}
}

func loadDataConfig(v *viper.Viper) *DataConfig {
	return &DataConfig{
		MaxUploadBytes:  v.GetInt64("max_upload_bytes"),
		MaxRows:         v.GetInt("max_rows"),
		DefaultEncoding: v.GetString("default_encoding"),
	}
}

func loadSessionConfig(v *viper.Viper) *SessionConfig {
	return &SessionConfig{
		IdleTimeout:           v.GetDuration("session_idle_timeout"),
		MaxConcurrentAnalyses: v.GetInt("max_concurrent_analyses"),
		HistoryLimit:          v.GetInt("history_limit"),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Ops.Enabled && config.Ops.Port == config.Server.Port {
		return errors.ConfigInvalid("OPS_PORT must differ from PORT")
	}
	if config.Data.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Data.MaxRows < 0 {
		return errors.ConfigInvalid("MAX_ROWS must not be negative")
	}
	if _, err := tabular.NormalizeEncoding(config.Data.DefaultEncoding); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("DEFAULT_ENCODING %q is not supported", config.Data.DefaultEncoding))
	}
	if config.Sessions.MaxConcurrentAnalyses < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_ANALYSES must be at least 1")
	}
	if config.Sessions.IdleTimeout <= 0 {
		return errors.ConfigInvalid("SESSION_IDLE_TIMEOUT must be positive")
	}
	if config.Sessions.HistoryLimit < 1 {
		return errors.ConfigInvalid("HISTORY_LIMIT must be at least 1")
	}
	switch config.Log.Format {
	case "console", "json":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("LOG_FORMAT %q must be console or json", config.Log.Format))
	}
	return nil
}

// Settings returns the configuration as the flat key set Load understands
func (c *Config) Settings() map[string]interface{} {
	return map[string]interface{}{
		"port":                    c.Server.Port,
		"gin_mode":                c.Server.GinMode,
		"ops_port":                c.Ops.Port,
		"ops_enabled":             c.Ops.Enabled,
		"database_url":            c.Database.URL,
		"log_level":               c.Log.Level,
		"log_format":              c.Log.Format,
		"max_upload_bytes":        c.Data.MaxUploadBytes,
		"max_rows":                c.Data.MaxRows,
		"default_encoding":        c.Data.DefaultEncoding,
		"session_idle_timeout":    c.Sessions.IdleTimeout.String(),
		"max_concurrent_analyses": c.Sessions.MaxConcurrentAnalyses,
		"history_limit":           c.Sessions.HistoryLimit,
	}
}

// Save writes the configuration as YAML, creating the parent directory if needed
func Save(c *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create config directory")
		}
	}
	b, err := yaml.Marshal(c.Settings())
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write config %s", path)
	}
	return nil
}
