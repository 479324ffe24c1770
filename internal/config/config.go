package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Mongo        MongoConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Ticketing    TicketingConfig
	Extraction   ExtractionConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	MetricsAddr           string
	RequestTimeoutSeconds int
}

// MongoConfig holds document database connection values.
type MongoConfig struct {
	URI               string
	Database          string
	ConnectTimeoutSec int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines API authentication parameters. Auth is disabled when
// JWTSecret is empty; APIKeyHash takes precedence over APIKey when set.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	APIKey                string
	APIKeyHash            string
}

// TicketingConfig selects the external ticketing system endpoint.
type TicketingConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// ExtractionConfig configures LLM providers and the extraction worker pool.
type ExtractionConfig struct {
	DefaultProvider string
	GeminiAPIKey    string
	GeminiBaseURL   string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	TimeoutSeconds  int
	MaxRetries      int
	Refine          bool
	Workers         int
	QueueSize       int
	JobTTLMinutes   int
}

// NotificationConfig holds notification endpoints.
type NotificationConfig struct {
	WebhookURL     string
	TimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "compliance-tracker"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			MetricsAddr:           getEnv("METRICS_ADDR", ":9091"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Mongo: MongoConfig{
			URI:               getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:          getEnv("MONGO_DATABASE", "compliance"),
			ConnectTimeoutSec: getEnvAsInt("MONGO_CONNECT_TIMEOUT_SECONDS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             os.Getenv("AUTH_JWT_SECRET"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			APIKey:                os.Getenv("AUTH_API_KEY"),
			APIKeyHash:            os.Getenv("AUTH_API_KEY_HASH"),
		},
		Ticketing: TicketingConfig{
			BaseURL:        os.Getenv("TICKETING_BASE_URL"),
			APIKey:         os.Getenv("TICKETING_API_KEY"),
			TimeoutSeconds: getEnvAsInt("TICKETING_TIMEOUT_SECONDS", 15),
		},
		Extraction: ExtractionConfig{
			DefaultProvider: getEnv("EXTRACT_DEFAULT_PROVIDER", "gemini"),
			GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
			GeminiBaseURL:   getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			TimeoutSeconds:  getEnvAsInt("EXTRACT_TIMEOUT_SECONDS", 60),
			MaxRetries:      getEnvAsInt("EXTRACT_MAX_RETRIES", 2),
			Refine:          getEnvAsBool("EXTRACT_REFINE", true),
			Workers:         getEnvAsInt("EXTRACT_WORKERS", 2),
			QueueSize:       getEnvAsInt("EXTRACT_QUEUE_SIZE", 32),
			JobTTLMinutes:   getEnvAsInt("EXTRACT_JOB_TTL_MINUTES", 60),
		},
		Notification: NotificationConfig{
			WebhookURL:     os.Getenv("NOTIFY_WEBHOOK_URL"),
			TimeoutSeconds: getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 5),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-request ticketing timeout.
func (t TicketingConfig) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// Timeout returns the per-extraction timeout.
func (e ExtractionConfig) Timeout() time.Duration {
	if e.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// JobTTL returns how long finished extraction jobs are retained.
func (e ExtractionConfig) JobTTL() time.Duration {
	if e.JobTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(e.JobTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
