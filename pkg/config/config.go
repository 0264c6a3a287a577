// Package config reads application configuration from the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Data          DataConfig
	Accounts      AccountsConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
}

type DataConfig struct {
	// Path of the JSON dataset document.
	Path string
	// AutosaveSchedule is a cron expression for the periodic re-save job.
	AutosaveSchedule string
}

type AccountsConfig struct {
	// JuicePercentMax and JuiceAnchorMin define the "juice" filter: a
	// favorable latest position on a sufficiently large queue.
	JuicePercentMax float64
	JuiceAnchorMin  int
	// GroupsPath points at a JSON file mapping emails to a group name.
	GroupsPath string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 50),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 100),
			AllowedOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Data: DataConfig{
			Path:             getEnv("DATA_PATH", "data/dataset.json"),
			AutosaveSchedule: getEnv("AUTOSAVE_SCHEDULE", "@every 5m"),
		},
		Accounts: AccountsConfig{
			JuicePercentMax: getEnvAsFloat("JUICE_PERCENT_MAX", 5),
			JuiceAnchorMin:  getEnvAsInt("JUICE_ANCHOR_MIN", 10000),
			GroupsPath:      getEnv("GROUPS_PATH", ""),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if cfg.Data.Path == "" {
		return nil, errors.New("DATA_PATH must not be empty")
	}
	if cfg.Accounts.JuicePercentMax <= 0 {
		return nil, errors.New("JUICE_PERCENT_MAX must be positive")
	}

	return cfg, nil
}

// LoadGroups reads the email-to-group assignments. Group membership is
// external configuration: at most one group per email. A blank path or a
// missing file yields no assignments.
func LoadGroups(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read groups file: %w", err)
	}

	groups := make(map[string]string)
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse groups file %s: %w", path, err)
	}
	return groups, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
