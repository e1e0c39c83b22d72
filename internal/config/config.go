// Package config provides configuration management for vedit using Viper
// for flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports a .vedit.yml file, environment variable
// overrides with the VEDIT_ prefix, and validation. It manages server
// settings, the edit pipeline, the code-edit endpoint, file storage, the
// project watcher and logging.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/conneroisu/vedit/internal/aiedit"
	"github.com/conneroisu/vedit/internal/changeset"
	"github.com/conneroisu/vedit/internal/llm"
	"github.com/conneroisu/vedit/internal/logging"
	"github.com/conneroisu/vedit/internal/storage"
	"github.com/spf13/viper"
)

// Config is the complete vedit configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Editor  EditorConfig  `mapstructure:"editor" yaml:"editor"`
	AI      AIConfig      `mapstructure:"ai" yaml:"ai"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	Host           string   `mapstructure:"host" yaml:"host"`
	Open           bool     `mapstructure:"open" yaml:"open"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	// RateLimit caps edit requests per client per minute; 0 disables it
	RateLimit      int      `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// EditorConfig tunes the edit pipeline.
type EditorConfig struct {
	// Deterministic routes single-element edits to the patch generator
	// instead of the AI fallback
	Deterministic  bool    `mapstructure:"deterministic" yaml:"deterministic"`
	AIWindowRadius int     `mapstructure:"ai_window_radius" yaml:"ai_window_radius"`
	MaxLineRatio   float64 `mapstructure:"max_line_ratio" yaml:"max_line_ratio"`
	HistoryLimit   int     `mapstructure:"history_limit" yaml:"history_limit"`
}

// AIConfig selects the code-edit endpoint.
type AIConfig struct {
	// Provider is "openai" or "http"
	Provider string        `mapstructure:"provider" yaml:"provider"`
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	Model    string        `mapstructure:"model" yaml:"model"`
	APIKey   string        `mapstructure:"api_key" yaml:"api_key"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type StorageConfig struct {
	// Driver is "sqlite", "disk" or "memory"
	Driver string `mapstructure:"driver" yaml:"driver"`
	Path   string `mapstructure:"path" yaml:"path"`
	Root   string `mapstructure:"root" yaml:"root"`
}

type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	// Dir additionally writes a daily log file there when set
	Dir    string `mapstructure:"dir" yaml:"dir"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 7331)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.open", false)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.rate_limit", 60)

	v.SetDefault("editor.deterministic", true)
	v.SetDefault("editor.ai_window_radius", aiedit.DefaultWindowRadius)
	v.SetDefault("editor.max_line_ratio", aiedit.DefaultMaxLineRatio)
	v.SetDefault("editor.history_limit", changeset.DefaultHistoryLimit)

	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", 60*time.Second)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", storage.DefaultSQLitePath)
	v.SetDefault("storage.root", ".")

	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.debounce", 300*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.dir", "")
}

// Load reads the configuration held by the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom applies defaults to v, unmarshals it and validates the result.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// VEDIT_SERVER_ALLOWED_ORIGINS arrives as one comma separated string
	config.Server.AllowedOrigins = splitList(strings.Join(config.Server.AllowedOrigins, ","))

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Addr is the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// StorageOptions converts the storage section for storage.Open.
func (c *Config) StorageOptions() storage.Config {
	return storage.Config{
		Driver: c.Storage.Driver,
		Path:   c.Storage.Path,
		Root:   c.Storage.Root,
	}
}

// LLMOptions converts the ai section for llm.New.
func (c *Config) LLMOptions() llm.Config {
	return llm.Config{
		Provider: c.AI.Provider,
		BaseURL:  c.AI.BaseURL,
		Model:    c.AI.Model,
		APIKey:   c.AI.APIKey,
		Endpoint: c.AI.Endpoint,
		Timeout:  c.AI.Timeout,
	}
}

// OpenLogger builds the process logger described by the log section.
func (c *Config) OpenLogger() (logging.Logger, func() error, error) {
	return logging.Open(c.LoggerOptions(), c.Log.Dir)
}

// LoggerOptions converts the log section for logging.NewLogger.
func (c *Config) LoggerOptions() *logging.LoggerConfig {
	opts := logging.DefaultConfig()
	opts.Level = logging.ParseLevel(c.Log.Level)
	if c.Log.Format != "" {
		opts.Format = strings.ToLower(c.Log.Format)
	}
	return opts
}
