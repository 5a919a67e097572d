package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
			Timeout:  30 * time.Second,
		},
		Analysis: AnalysisConfig{Mode: "demo"},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
			TLS:  TLSConfig{Mode: "disabled"},
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxFileSize:      1024 * 1024,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{
			name:   "valid demo config",
			mutate: func(c *Config) {},
		},
		{
			name:     "invalid analysis mode",
			mutate:   func(c *Config) { c.Analysis.Mode = "batch" },
			errorMsg: "invalid analysis mode",
		},
		{
			name:     "live mode without API key",
			mutate:   func(c *Config) { c.Analysis.Mode = "live" },
			errorMsg: "API key is required in live mode",
		},
		{
			name: "live mode with API key",
			mutate: func(c *Config) {
				c.Analysis.Mode = "live"
				c.AI.APIKey = "test-key"
			},
		},
		{
			name:     "demo mode works without API key",
			mutate:   func(c *Config) { c.AI.APIKey = "" },
			errorMsg: "",
		},
		{
			name:     "zero AI timeout",
			mutate:   func(c *Config) { c.AI.Timeout = 0 },
			errorMsg: "timeout must be positive",
		},
		{
			name:     "missing server port",
			mutate:   func(c *Config) { c.Server.Port = "" },
			errorMsg: "server port is required",
		},
		{
			name:     "unsupported default format",
			mutate:   func(c *Config) { c.App.DefaultFormat = "xml" },
			errorMsg: "invalid default format",
		},
		{
			name:     "invalid TLS mode",
			mutate:   func(c *Config) { c.Server.TLS.Mode = "broken" },
			errorMsg: "TLS configuration error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyAPIKeyFallbacks(t *testing.T) {
	t.Run("gemini key from legacy env var", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "legacy-key")

		cfg := validTestConfig()
		cfg.applyAPIKeyFallbacks()

		assert.Equal(t, "legacy-key", cfg.AI.APIKey)
	})

	t.Run("configured key wins over legacy env var", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "legacy-key")

		cfg := validTestConfig()
		cfg.AI.APIKey = "configured-key"
		cfg.applyAPIKeyFallbacks()

		assert.Equal(t, "configured-key", cfg.AI.APIKey)
	})

	t.Run("server keys from env var", func(t *testing.T) {
		t.Setenv("ATSCORE_SERVER_APIKEYS", "key1, key2 ,key3")

		cfg := validTestConfig()
		cfg.applyAPIKeyFallbacks()

		assert.Equal(t, []string{"key1", "key2", "key3"}, cfg.Server.APIKeys)
	})

	t.Run("configured server keys win over env var", func(t *testing.T) {
		t.Setenv("ATSCORE_SERVER_APIKEYS", "env-key")

		cfg := validTestConfig()
		cfg.Server.APIKeys = []string{"file-key"}
		cfg.applyAPIKeyFallbacks()

		assert.Equal(t, []string{"file-key"}, cfg.Server.APIKeys)
	})
}

func TestApplyTLSDefaults(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.TLS.Mode = "mutual"
	cfg.Server.TLS.ClientAuthPolicy = ""
	cfg.Server.TLS.MinVersion = ""

	cfg.applyTLSDefaults()

	assert.Equal(t, "require", cfg.Server.TLS.ClientAuthPolicy)
	assert.Equal(t, "1.2", cfg.Server.TLS.MinVersion)
}

func TestApplyObservabilityDefaults(t *testing.T) {
	cfg := validTestConfig()
	cfg.Observability.ServiceName = "atscore"

	cfg.applyObservabilityDefaults()

	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
	assert.Contains(t, cfg.Observability.ServiceInstance, "atscore")
}

func TestLoadPromptFiles(t *testing.T) {
	t.Run("file content overrides inline prompt", func(t *testing.T) {
		tmpDir := t.TempDir()
		promptFile := filepath.Join(tmpDir, "system.txt")
		err := os.WriteFile(promptFile, []byte("  You are an ATS analyst.  \n"), 0600)
		require.NoError(t, err)

		cfg := validTestConfig()
		cfg.AI.SystemPrompt = "inline prompt"
		cfg.AI.SystemPromptFile = promptFile

		require.NoError(t, cfg.loadPromptFiles())
		assert.Equal(t, "You are an ATS analyst.", cfg.AI.SystemPrompt)
	})

	t.Run("missing prompt file fails", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.AI.UserPromptFile = "/nonexistent/prompt.txt"

		err := cfg.loadPromptFiles()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read user prompt file")
	})

	t.Run("no files leaves inline prompts alone", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.AI.SystemPrompt = "inline"

		require.NoError(t, cfg.loadPromptFiles())
		assert.Equal(t, "inline", cfg.AI.SystemPrompt)
	})
}
