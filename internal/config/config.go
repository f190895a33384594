package config

import (
	"os"
	"strings"
)

type Config struct {
	// Server.
	DatabasePath string
	Port         string
	LogLevel     string
	APIToken     string

	// Agent.
	StoreBackend   string
	PlantsFile     string
	APIBaseURL     string
	ShoutrrrURLs   []string
	ResyncSchedule string
	DigestSchedule string
}

const (
	StoreBackendFile = "file"
	StoreBackendAPI  = "api"
)

func Load() Config {
	return Config{
		DatabasePath: envOrDefault("DATABASE_PATH", "./data/quench.db"),
		Port:         envOrDefault("PORT", "4000"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		APIToken:     os.Getenv("API_TOKEN"),

		StoreBackend:   envOrDefault("QUENCH_STORE", StoreBackendFile),
		PlantsFile:     envOrDefault("QUENCH_PLANTS_FILE", "./data/plants.json"),
		APIBaseURL:     envOrDefault("QUENCH_API_URL", "http://localhost:4000/api"),
		ShoutrrrURLs:   splitList(os.Getenv("SHOUTRRR_URLS")),
		ResyncSchedule: envOrDefault("RESYNC_SCHEDULE", "@hourly"),
		DigestSchedule: envOrDefault("DIGEST_SCHEDULE", "0 9 * * *"),
	}
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var urls []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}
