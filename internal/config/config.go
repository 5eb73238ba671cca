// Package config loads service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration.
type Config struct {
	// Server
	Port        string `validate:"required,numeric"`
	Environment string `validate:"oneof=development staging production"`
	// BaseURL is the public origin used in generated documents. Empty means
	// derive it from each request.
	BaseURL string `validate:"omitempty,url"`
	// TrustProxy honors X-Forwarded-Proto and X-Forwarded-Host when BaseURL
	// is empty. Only enable it behind a proxy that overwrites both headers.
	TrustProxy bool

	// Stories API
	APIBaseURL       string        `validate:"required,url"`
	MediaBaseURL     string        `validate:"required,url"`
	AppToken         string        // never logged
	SSMAppTokenParam string        `validate:"required"`
	UpstreamTimeout  time.Duration `validate:"gt=0"`
	UpstreamRetries  int           `validate:"gte=0,lte=10"`

	// Caching
	CacheTTL time.Duration `validate:"gte=0"`
	RedisURL string        `validate:"omitempty,url"`

	// Player
	PlayerTick time.Duration `validate:"gte=10ms"`

	// Publishing
	PublishBucket string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     strings.TrimRight(getEnv("STORY_BASE_URL", ""), "/"),
		TrustProxy:  getEnvBool("STORY_TRUST_PROXY", false),

		APIBaseURL:       getEnv("STORY_API_BASE", "https://staging-apis-v2.oono.ai/api/public"),
		MediaBaseURL:     getEnv("STORY_MEDIA_BASE", "https://media.oono.ai/uploads"),
		AppToken:         getEnv("APP_TOKEN", os.Getenv("VITE_APP_TOKEN")),
		SSMAppTokenParam: getEnv("SSM_APP_TOKEN_PARAM", "/story-viewer/prod/app-token"),
		UpstreamTimeout:  getEnvDuration("STORY_UPSTREAM_TIMEOUT", "20s"),
		UpstreamRetries:  getEnvInt("STORY_UPSTREAM_RETRIES", 2),

		CacheTTL: getEnvDuration("STORY_CACHE_TTL", "5m"),
		RedisURL: getEnv("REDIS_URL", ""),

		PlayerTick: getEnvDuration("STORY_PLAYER_TICK", "100ms"),

		PublishBucket: getEnv("STORY_PUBLISH_BUCKET", ""),
	}
}

var validate = validator.New()

// Validate checks the configuration and reports every invalid field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "numeric":
		return fmt.Sprintf("%s must be numeric", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
}

// IsProduction returns true if running in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
