package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration. Secrets are not stored in
// the YAML file; it only names the environment variables carrying them.
type Config struct {
	Database struct {
		URL        string `yaml:"url"`
		Migrations string `yaml:"migrations"`
	} `yaml:"database"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Auth struct {
		JWTSecretEnv string `yaml:"jwt_secret_env"`
	} `yaml:"auth"`
	LLM struct {
		Provider           string  `yaml:"provider"`
		Model              string  `yaml:"model"`
		BaseURL            string  `yaml:"base_url"`
		APIKeyEnv          string  `yaml:"api_key_env"`
		Temperature        float32 `yaml:"temperature"`
		MinIntervalSeconds float64 `yaml:"min_interval_seconds"`
		BatchSize          int     `yaml:"batch_size"`
	} `yaml:"llm"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return config, nil
}

// MigrationsURL returns the migration source URL, defaulting to the
// migrations directory next to the binary.
func (c *Config) MigrationsURL() string {
	if c.Database.Migrations == "" {
		return "file://migrations"
	}
	return c.Database.Migrations
}

// JWTSecret resolves the JWT signing secret from the environment.
func (c *Config) JWTSecret() []byte {
	env := c.Auth.JWTSecretEnv
	if env == "" {
		env = "JWT_SECRET"
	}
	return []byte(os.Getenv(env))
}

// LLMAPIKey resolves the provider API key from the environment.
func (c *Config) LLMAPIKey() string {
	env := c.LLM.APIKeyEnv
	if env == "" {
		env = "OPENAI_API_KEY"
	}
	return os.Getenv(env)
}

// MinInterval returns the configured spacing between provider calls.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.LLM.MinIntervalSeconds * float64(time.Second))
}
