// Package config provides configuration management for typetour using Viper
// for loading from files, environment variables, and command-line flags.
//
// Values come from a YAML file (.typetour.yml by default), TYPETOUR_
// environment variables, and flags bound by the cmd package. The
// configuration covers the HTTP server, the content catalog source, the
// editor widget options, session housekeeping, and logging.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	tourerrors "github.com/conneroisu/typetour/internal/errors"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Content ContentConfig `mapstructure:"content" yaml:"content"`
	Editor  EditorConfig  `mapstructure:"editor" yaml:"editor"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	Host           string   `mapstructure:"host" yaml:"host"`
	Open           bool     `mapstructure:"open" yaml:"open"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// ContentConfig selects the page catalog. An empty Path serves the embedded
// tour.
type ContentConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// EditorConfig is the static configuration handed to the browser editor
// widget. It does not change from page to page.
type EditorConfig struct {
	Height   int    `mapstructure:"height" yaml:"height"`
	Width    string `mapstructure:"width" yaml:"width"`
	Language string `mapstructure:"language" yaml:"language"`
	Theme    string `mapstructure:"theme" yaml:"theme"`
	FontSize int    `mapstructure:"font_size" yaml:"font_size"`
}

type SessionConfig struct {
	MaxSessions     int           `mapstructure:"max_sessions" yaml:"max_sessions"`
	TTL             time.Duration `mapstructure:"ttl" yaml:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// Default editor look: a 600px tall editor at
// full width, TypeScript, light theme, 21px font.
const (
	DefaultHost            = "localhost"
	DefaultPort            = 8080
	DefaultEditorHeight    = 600
	DefaultEditorWidth     = "100%"
	DefaultEditorLanguage  = "typescript"
	DefaultEditorTheme     = "vs-light"
	DefaultEditorFontSize  = 21
	DefaultMaxSessions     = 1000
	DefaultSessionTTL      = 2 * time.Hour
	DefaultCleanupInterval = 5 * time.Minute
)

// SetDefaults registers default values on v so that IsSet-free lookups and
// environment overrides both work.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.open", false)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("content.path", "")
	v.SetDefault("editor.height", DefaultEditorHeight)
	v.SetDefault("editor.width", DefaultEditorWidth)
	v.SetDefault("editor.language", DefaultEditorLanguage)
	v.SetDefault("editor.theme", DefaultEditorTheme)
	v.SetDefault("editor.font_size", DefaultEditorFontSize)
	v.SetDefault("session.max_sessions", DefaultMaxSessions)
	v.SetDefault("session.ttl", DefaultSessionTTL)
	v.SetDefault("session.cleanup_interval", DefaultCleanupInterval)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}

// Load reads the configuration from the global Viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, tourerrors.Wrap(err, tourerrors.ErrorTypeConfig, tourerrors.ErrCodeConfigInvalid,
			"cannot decode configuration")
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Address returns the host:port the server binds to.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
