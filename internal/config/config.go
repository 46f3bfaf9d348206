package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	DatabaseURL string `yaml:"database_url"`
	TablePrefix string `yaml:"table_prefix"`
	UploadRoot  string `yaml:"upload_root"`
	CORSOrigins string `yaml:"cors_origins"`
	// Auth configuration
	AuthMode          string `yaml:"auth_mode"` // "local" (HS256 sessions) or "jwks" (external IdP)
	JWTSecret         string `yaml:"jwt_secret"`
	JWKSURL           string `yaml:"jwks_url"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	// Assistant (chatbot)
	ChatProvider    string `yaml:"chat_provider"` // "anthropic", "lorem", or empty to disable free chat
	ChatModel       string `yaml:"chat_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	// Logging
	LogDir string `yaml:"log_dir"` // when set, logs also go to timestamped files here
	// Debug flags
	Debug bool `yaml:"debug"`
}

func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       env,
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		TablePrefix:       getTablePrefix(env),
		UploadRoot:        getEnv("UPLOAD_ROOT", "uploads"),
		CORSOrigins:       getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost"),
		AuthMode:          getEnv("AUTH_MODE", "local"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWKSURL:           getEnv("JWKS_URL", ""),
		SessionTTLMinutes: 30,
		ChatProvider:      getEnv("CHAT_PROVIDER", ""),
		ChatModel:         getEnv("CHAT_MODEL", "claude-3-5-haiku-latest"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		LogDir:            getEnv("LOG_DIR", ""),
		Debug:             getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}

	// Optional YAML overlay for deployments that prefer config files
	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyFile overlays settings from a YAML file onto the env-derived config
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
