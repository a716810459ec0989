package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config files searched, in order, when none is given explicitly.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the lowest-priority layer.
func defaultConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Storage: StorageConfig{
			Backend:  BackendBadger,
			DataPath: "data",
		},
		Server: ServerConfig{
			Port:         "8001",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second, // recommendation calls wait on the LLM
			IdleTimeout:  60 * time.Second,
			CORSOrigins:  []string{"*"},
		},
		Auth: AuthConfig{
			TokenFormat:        TokenFormatJWT,
			TokenDuration:      7 * 24 * time.Hour,
			RateLimitPerMinute: 20,
			RateLimitBurst:     5,
		},
		LLM: LLMConfig{
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:             "gemini-2.0-flash",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Search:  SearchConfig{Enabled: true},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// envMappings maps environment variable names (lowercased) to config keys.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"env":                        "app.environment",
	"log_level":                  "logger.level",
	"log_format":                 "logger.format",
	"storage_backend":            "storage.backend",
	"data_path":                  "storage.data_path",
	"port":                       "server.port",
	"server_port":                "server.port",
	"server_read_timeout":        "server.read_timeout",
	"server_write_timeout":       "server.write_timeout",
	"server_idle_timeout":        "server.idle_timeout",
	"cors_origins":               "server.cors_origins",
	"response_envelope":          "server.envelope",
	"token_format":               "auth.token_format",
	"jwt_secret":                 "auth.secret",
	"token_duration":             "auth.token_duration",
	"auth_rate_limit_per_minute": "auth.rate_limit_per_minute",
	"auth_rate_limit_burst":      "auth.rate_limit_burst",
	"llm_base_url":               "llm.base_url",
	"llm_api_key":                "llm.api_key",
	"emergent_llm_key":           "llm.api_key",
	"llm_model":                  "llm.model",
	"llm_timeout":                "llm.timeout",
	"llm_requests_per_second":    "llm.requests_per_second",
	"llm_burst":                  "llm.burst",
	"search_enabled":             "search.enabled",
	"metrics_enabled":            "metrics.enabled",
	"metrics_path":               "metrics.path",
}

// sliceConfigPaths are parsed from comma-separated strings when they come from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// LoadConfig loads configuration using the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds the configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. YAML config file.
// 5. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("bookreview", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML config file")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	// Flags that override individual keys.
	overrides := map[string]*string{
		"app.environment":   fs.String("env", "", "Environment (development, staging, production)"),
		"logger.level":      fs.String("log-level", "", "Log level (debug, info, warn, error)"),
		"logger.format":     fs.String("log-format", "", "Log format (json, pretty)"),
		"storage.backend":   fs.String("storage-backend", "", "Storage backend (badger, sqlite)"),
		"storage.data_path": fs.String("data-path", "", "Directory for database, search index and keys"),
		"server.port":       fs.String("port", "", "Server port (default: 8001)"),
		"auth.token_format": fs.String("token-format", "", "Bearer token format (jwt, paseto)"),
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// .env only fills variables that are not already set.
	_ = loadEnvFile(*envFile)

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(*configPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, value := range overrides {
		if *value == "" {
			continue
		}
		if err := k.Set(key, *value); err != nil {
			return nil, fmt.Errorf("failed to apply flag for %s: %w", key, err)
		}
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	dataPath, err := expandPath(cfg.Storage.DataPath)
	if err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	cfg.Storage.DataPath = dataPath

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the explicit path, CONFIG_PATH, or the first default path that exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps an environment variable name to its config key, or "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// processSliceFields splits comma-separated string values of slice keys.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}

		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
