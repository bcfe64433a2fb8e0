package config

import (
	"fmt"
	"path/filepath"
	"strings"

	tourerrors "github.com/conneroisu/typetour/internal/errors"
)

var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateContentConfig(&config.Content); err != nil {
		return fmt.Errorf("content config: %w", err)
	}
	if err := validateEditorConfig(&config.Editor); err != nil {
		return fmt.Errorf("editor config: %w", err)
	}
	if err := validateSessionConfig(&config.Session); err != nil {
		return fmt.Errorf("session config: %w", err)
	}
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// 0 is allowed so tests can ask for a system-assigned port.
	if config.Port < 0 || config.Port > 65535 {
		return invalid(fmt.Sprintf("port %d is not in valid range 0-65535", config.Port))
	}

	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return invalid("host contains dangerous character: " + char)
		}
	}

	return nil
}

func validateContentConfig(config *ContentConfig) error {
	if config.Path == "" {
		return nil
	}

	cleanPath := filepath.Clean(config.Path)
	if strings.Contains(cleanPath, "..") {
		return tourerrors.NewConfigError(tourerrors.ErrCodePathTraversal,
			"content path contains traversal: "+config.Path)
	}

	return nil
}

func validateEditorConfig(config *EditorConfig) error {
	if config.Height <= 0 {
		return invalid(fmt.Sprintf("height must be positive, got %d", config.Height))
	}
	if config.FontSize <= 0 {
		return invalid(fmt.Sprintf("font_size must be positive, got %d", config.FontSize))
	}
	if strings.TrimSpace(config.Language) == "" {
		return invalid("language must not be empty")
	}
	for _, field := range []string{config.Width, config.Theme, config.Language} {
		if strings.ContainsAny(field, "<>\"'`") {
			return invalid(fmt.Sprintf("value %q contains markup characters", field))
		}
	}
	return nil
}

func validateSessionConfig(config *SessionConfig) error {
	if config.MaxSessions <= 0 {
		return invalid(fmt.Sprintf("max_sessions must be positive, got %d", config.MaxSessions))
	}
	if config.TTL <= 0 {
		return invalid("ttl must be positive")
	}
	if config.CleanupInterval <= 0 {
		return invalid("cleanup_interval must be positive")
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	switch config.Format {
	case "text", "json":
	default:
		return invalid(fmt.Sprintf("format must be text or json, got %q", config.Format))
	}
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid(fmt.Sprintf("unknown level %q", config.Level))
	}
	return nil
}

func invalid(message string) error {
	return tourerrors.NewConfigError(tourerrors.ErrCodeConfigInvalid, message)
}
