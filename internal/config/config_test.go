package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Storage.DataPath = "/var/lib/bookreview"
	return cfg
}

// loadIsolated runs Load with no .env file and no config file unless args name one.
func loadIsolated(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Chdir(t.TempDir())
	return Load(append([]string{"-env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad backend", func(c *Config) { c.Storage.Backend = "mongo" }, "invalid storage backend"},
		{"empty data path", func(c *Config) { c.Storage.DataPath = "" }, "data path cannot be empty"},
		{"non numeric port", func(c *Config) { c.Server.Port = "http" }, "invalid server port"},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }, "invalid server port"},
		{"bad token format", func(c *Config) { c.Auth.TokenFormat = "saml" }, "invalid token format"},
		{"zero token duration", func(c *Config) { c.Auth.TokenDuration = 0 }, "token duration must be positive"},
		{"negative rate limit", func(c *Config) { c.Auth.RateLimitBurst = -1 }, "cannot be negative"},
		{"empty model", func(c *Config) { c.LLM.Model = "" }, "llm model cannot be empty"},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }, "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLLMConfig_Enabled(t *testing.T) {
	assert.False(t, LLMConfig{}.Enabled())
	assert.True(t, LLMConfig{APIKey: "sk-test"}.Enabled())
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/my-data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "my-data"), got)

	got, err = expandPath("/absolute/path/to/data")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/path/to/data", got)

	got, err = expandPath("relative/path")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Contains(t, got, "relative/path")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadIsolated(t)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, BackendBadger, cfg.Storage.Backend)
	assert.True(t, filepath.IsAbs(cfg.Storage.DataPath))
	assert.Equal(t, "8001", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Server.Envelope)
	assert.Equal(t, TokenFormatJWT, cfg.Auth.TokenFormat)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.True(t, cfg.Search.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("ENV", "staging")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("DATA_PATH", dataDir)
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_DURATION", "24h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("EMERGENT_LLM_KEY", "sk-alias")
	t.Setenv("LLM_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("SEARCH_ENABLED", "false")
	t.Setenv("RESPONSE_ENVELOPE", "true")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := loadIsolated(t)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, dataDir, cfg.Storage.DataPath)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sk-alias", cfg.LLM.APIKey)
	assert.InDelta(t, 2.5, cfg.LLM.RequestsPerSecond, 0.0001)
	assert.False(t, cfg.Search.Enabled)
	assert.True(t, cfg.Server.Envelope)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := loadIsolated(t, "-port", "7070", "-log-level", "debug", "-token-format", "paseto")
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, TokenFormatPaseto, cfg.Auth.TokenFormat)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  environment: production
server:
  port: "8100"
llm:
  model: gpt-4o-mini
  timeout: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := loadIsolated(t, "-config", path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, "8100", cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
}

func TestLoad_InvalidValueFailsValidation(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")

	_, err := loadIsolated(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage backend")
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "llm.api_key", envTransformFunc("LLM_API_KEY"))
	assert.Equal(t, "llm.api_key", envTransformFunc("EMERGENT_LLM_KEY"))
	assert.Equal(t, "server.port", envTransformFunc("SERVER_PORT"))
	assert.Empty(t, envTransformFunc("HOME"))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	content := `# Test env file
BR_TEST_ENV=staging
export BR_TEST_LEVEL=debug
# Comment line
BR_TEST_QUOTED="some value"
BR_TEST_SINGLE='another value'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	for _, key := range []string{"BR_TEST_ENV", "BR_TEST_LEVEL", "BR_TEST_QUOTED", "BR_TEST_SINGLE"} {
		t.Setenv(key, "")
		os.Unsetenv(key) //nolint:errcheck // t.Setenv restores it
	}

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "staging", os.Getenv("BR_TEST_ENV"))
	assert.Equal(t, "debug", os.Getenv("BR_TEST_LEVEL"))
	assert.Equal(t, "some value", os.Getenv("BR_TEST_QUOTED"))
	assert.Equal(t, "another value", os.Getenv("BR_TEST_SINGLE"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	content := `VALID_KEY=valid_value
INVALID LINE WITHOUT EQUALS
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("BR_TEST_VAR", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`BR_TEST_VAR=new-value`), 0o644))

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "original-value", os.Getenv("BR_TEST_VAR"))
}
