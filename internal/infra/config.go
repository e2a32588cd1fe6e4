package infra

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	LogFile            string
	PublicBaseURL      string
	CaptureBaseURL     string
	ReconstructBaseURL string
	Model              string
	AllowedOrigins     []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	CaptureTimeout     time.Duration
	ReconstructTimeout time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Both collaborator base URLs default to the capture
// service's conventional local port.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		LogFile:            os.Getenv("LOG_FILE"),
		CaptureBaseURL:     getEnv("CAPTURE_BASE_URL", "http://localhost:8000"),
		ReconstructBaseURL: getEnv("RECONSTRUCT_BASE_URL", "http://localhost:8000"),
		Model:              getEnv("CLONE_MODEL", "gpt-4o"),
		AllowedOrigins:     []string{getEnv("ALLOWED_ORIGIN", "http://localhost:8080")},
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		CaptureTimeout:     time.Second * time.Duration(getEnvInt("CAPTURE_TIMEOUT_SECONDS", 90)),
		ReconstructTimeout: time.Second * time.Duration(getEnvInt("RECONSTRUCT_TIMEOUT_SECONDS", 180)),
	}
	cfg.PublicBaseURL = getEnv("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port)

	for _, raw := range []string{cfg.CaptureBaseURL, cfg.ReconstructBaseURL, cfg.PublicBaseURL} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
		}
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
