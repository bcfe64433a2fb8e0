package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tourerrors "github.com/conneroisu/typetour/internal/errors"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: DefaultHost, Port: DefaultPort},
		Editor: EditorConfig{
			Height:   DefaultEditorHeight,
			Width:    DefaultEditorWidth,
			Language: DefaultEditorLanguage,
			Theme:    DefaultEditorTheme,
			FontSize: DefaultEditorFontSize,
		},
		Session: SessionConfig{
			MaxSessions:     DefaultMaxSessions,
			TTL:             DefaultSessionTTL,
			CleanupInterval: DefaultCleanupInterval,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Server.Open)
	assert.Equal(t, "", cfg.Content.Path)
	assert.Equal(t, EditorConfig{
		Height:   600,
		Width:    "100%",
		Language: "typescript",
		Theme:    "vs-light",
		FontSize: 21,
	}, cfg.Editor)
	assert.Equal(t, 1000, cfg.Session.MaxSessions)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "localhost:8080", cfg.Address())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(v *viper.Viper)
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "custom server and editor",
			setup: func(v *viper.Viper) {
				v.Set("server.port", 3000)
				v.Set("server.host", "0.0.0.0")
				v.Set("editor.theme", "vs-dark")
				v.Set("editor.font_size", 14)
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0:3000", cfg.Address())
				assert.Equal(t, "vs-dark", cfg.Editor.Theme)
				assert.Equal(t, 14, cfg.Editor.FontSize)
				assert.Equal(t, 600, cfg.Editor.Height)
			},
		},
		{
			name: "duration from string",
			setup: func(v *viper.Viper) {
				v.Set("session.ttl", "30m")
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
			},
		},
		{
			name: "allowed origins from a comma separated string",
			setup: func(v *viper.Viper) {
				v.Set("server.allowed_origins", "example.com:443,docs.local:80")
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"example.com:443", "docs.local:80"}, cfg.Server.AllowedOrigins)
			},
		},
		{
			name: "unparseable port",
			setup: func(v *viper.Viper) {
				v.Set("server.port", "invalid_port")
			},
			expectError: true,
		},
		{
			name: "port out of range",
			setup: func(v *viper.Viper) {
				v.Set("server.port", 70000)
			},
			expectError: true,
		},
		{
			name: "unknown log format",
			setup: func(v *viper.Viper) {
				v.Set("log.format", "xml")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			tt.setup(v)

			cfg, err := LoadFrom(v)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadUndecodableValueIsConfigError(t *testing.T) {
	v := viper.New()
	v.Set("server.port", "eighty")

	_, err := LoadFrom(v)
	require.Error(t, err)
	assert.True(t, tourerrors.IsType(err, tourerrors.ErrorTypeConfig))
	assert.Equal(t, tourerrors.ErrCodeConfigInvalid, tourerrors.GetCode(err))
}

func TestLoadUsesGlobalViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("server.port", 9090)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
		code   string
	}{
		{"valid", func(cfg *Config) {}, ""},
		{"system assigned port", func(cfg *Config) { cfg.Server.Port = 0 }, ""},
		{"negative port", func(cfg *Config) { cfg.Server.Port = -1 }, tourerrors.ErrCodeConfigInvalid},
		{"host injection", func(cfg *Config) { cfg.Server.Host = "localhost; rm -rf /" }, tourerrors.ErrCodeConfigInvalid},
		{"content traversal", func(cfg *Config) { cfg.Content.Path = "../../etc/passwd" }, tourerrors.ErrCodePathTraversal},
		{"content relative", func(cfg *Config) { cfg.Content.Path = "content/tour.yml" }, ""},
		{"zero height", func(cfg *Config) { cfg.Editor.Height = 0 }, tourerrors.ErrCodeConfigInvalid},
		{"zero font size", func(cfg *Config) { cfg.Editor.FontSize = 0 }, tourerrors.ErrCodeConfigInvalid},
		{"blank language", func(cfg *Config) { cfg.Editor.Language = "  " }, tourerrors.ErrCodeConfigInvalid},
		{"markup in theme", func(cfg *Config) { cfg.Editor.Theme = `vs"><script>` }, tourerrors.ErrCodeConfigInvalid},
		{"no sessions", func(cfg *Config) { cfg.Session.MaxSessions = 0 }, tourerrors.ErrCodeConfigInvalid},
		{"zero ttl", func(cfg *Config) { cfg.Session.TTL = 0 }, tourerrors.ErrCodeConfigInvalid},
		{"bad level", func(cfg *Config) { cfg.Log.Level = "loud" }, tourerrors.ErrCodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, tourerrors.GetCode(err))
			assert.True(t, tourerrors.IsType(err, tourerrors.ErrorTypeConfig))
		})
	}
}
