package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/vedit/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

func (vr *ValidationResult) addError(field string, value interface{}, message string, suggestions ...string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, message string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	write := func(title string, issues []ValidationError) {
		if len(issues) == 0 {
			return
		}
		builder.WriteString(title + ":\n")
		for _, issue := range issues {
			builder.WriteString(fmt.Sprintf("  - %s: %s\n", issue.Field, issue.Message))
			for _, suggestion := range issue.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}
	write("Validation errors", vr.Errors)
	write("Validation warnings", vr.Warnings)

	return builder.String()
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{Valid: true}

	validateServer(&config.Server, result)
	validateEditor(&config.Editor, result)
	validateAI(&config.AI, result)
	validateStorage(&config.Storage, result)
	validateWatch(&config.Watch, result)
	validateLog(&config.Log, result)

	return result
}

// validateConfig returns the first validation error, ignoring warnings.
func validateConfig(config *Config) error {
	result := ValidateConfigWithDetails(config)
	if !result.HasErrors() {
		return nil
	}
	first := result.Errors[0]
	return &first
}

func validateServer(config *ServerConfig, result *ValidationResult) {
	// Port 0 asks the OS for a free port
	if config.Port < 0 || config.Port > 65535 {
		result.addError("server.port", config.Port, fmt.Sprintf("port %d is not in valid range 0-65535", config.Port))
	}

	if strings.ContainsAny(config.Host, ";&|$`()<>\"'\\ ") {
		result.addError("server.host", config.Host, "host contains dangerous characters")
	}
	if config.Host == "0.0.0.0" {
		result.addWarning("server.host", config.Host, "server is reachable from other machines",
			"use localhost unless the editor runs on another host")
	}

	if config.RateLimit < 0 {
		result.addError("server.rate_limit", config.RateLimit, "rate limit cannot be negative",
			"use 0 to disable rate limiting")
	}

	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			result.addWarning("server.allowed_origins", origin, "any origin may open a websocket")
			continue
		}
		if strings.Contains(origin, "://") {
			if err := validation.ValidateURL(origin); err != nil {
				result.addError("server.allowed_origins", origin, err.Error())
			}
		}
	}
}

func validateEditor(config *EditorConfig, result *ValidationResult) {
	if config.AIWindowRadius < 1 {
		result.addError("editor.ai_window_radius", config.AIWindowRadius, "window radius must be at least 1")
	}
	if config.MaxLineRatio <= 0 || config.MaxLineRatio > 10 {
		result.addError("editor.max_line_ratio", config.MaxLineRatio, "line ratio must be in (0, 10]")
	}
	if config.HistoryLimit < 1 {
		result.addError("editor.history_limit", config.HistoryLimit, "history limit must be at least 1")
	}
}

func validateAI(config *AIConfig, result *ValidationResult) {
	switch strings.ToLower(config.Provider) {
	case "", "openai":
		if config.BaseURL != "" {
			if err := validation.ValidateURL(config.BaseURL); err != nil {
				result.addError("ai.base_url", config.BaseURL, err.Error())
			}
		}
		if config.APIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
			result.addWarning("ai.api_key", "", "no API key configured, AI edits will fail",
				"set VEDIT_AI_API_KEY or OPENAI_API_KEY")
		}
	case "http":
		if config.Endpoint == "" {
			result.addError("ai.endpoint", "", "the http provider needs an endpoint URL")
		} else if err := validation.ValidateURL(config.Endpoint); err != nil {
			result.addError("ai.endpoint", config.Endpoint, err.Error())
		}
	default:
		result.addError("ai.provider", config.Provider, "unknown provider", "use openai or http")
	}

	if config.Timeout < 0 {
		result.addError("ai.timeout", config.Timeout, "timeout cannot be negative")
	}
}

func validateStorage(config *StorageConfig, result *ValidationResult) {
	switch strings.ToLower(config.Driver) {
	case "", "sqlite":
		if config.Path != ":memory:" {
			validateLocalPath("storage.path", config.Path, result)
		}
	case "disk":
		validateLocalPath("storage.root", config.Root, result)
	case "memory":
	default:
		result.addError("storage.driver", config.Driver, "unknown storage driver", "use sqlite, disk or memory")
	}
}

func validateWatch(config *WatchConfig, result *ValidationResult) {
	if config.Debounce < 0 {
		result.addError("watch.debounce", config.Debounce, "debounce cannot be negative")
	}
}

func validateLog(config *LogConfig, result *ValidationResult) {
	switch strings.ToLower(config.Level) {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		result.addError("log.level", config.Level, "unknown log level", "use debug, info, warn or error")
	}
	switch strings.ToLower(config.Format) {
	case "", "text", "json":
	default:
		result.addError("log.format", config.Format, "unknown log format", "use text or json")
	}
}

// validateLocalPath rejects dangerous characters and traversal in a
// configured filesystem path.
func validateLocalPath(field, path string, result *ValidationResult) {
	if path == "" {
		result.addError(field, path, "path cannot be empty")
		return
	}
	cleanPath := filepath.Clean(path)
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			result.addError(field, path, "path contains traversal")
			return
		}
	}
	if strings.ContainsAny(cleanPath, ";&|$`<>\"'\x00") {
		result.addError(field, path, "path contains dangerous characters")
	}
}
