package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string `validate:"required"`
	Port string `validate:"required,numeric"`

	// Database
	DBDriver   string `validate:"oneof=postgres sqlite"`
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret        string `validate:"required"`
	JWTExpirationDur time.Duration

	// PipelineAPIKey guards the ingestion trigger endpoints. Empty disables them.
	PipelineAPIKey string

	// CORSOrigins are the browser origins allowed to call the API. Empty disables CORS.
	CORSOrigins []string

	// Bots. An empty token disables that bot.
	Bots BotTokens

	// News sources. An empty key disables that source.
	NewsAPIKey   string
	NewsAPIURL   string `validate:"required,url"`
	GNewsAPIKey  string
	GNewsAPIURL  string `validate:"required,url"`
	RSSFeedsPath string

	TranslateURL string `validate:"required,url"`

	// Timeouts for outbound calls
	HTTPTimeout     time.Duration `validate:"min=1s,max=5m"`
	TelegramTimeout time.Duration `validate:"min=1s,max=5m"`

	// Scheduler
	IngestInterval time.Duration `validate:"min=1m"`
	DigestCron     string        `validate:"required"`
}

// BotTokens holds the Telegram token of every bot front-end.
type BotTokens struct {
	Registration string
	Support      string
	News         string
	Staff        string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "jbcnews"),
		DBPassword: getEnv("DB_PASSWORD", "jbcnews"),
		DBName:     getEnv("DB_NAME", "jbcnews"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "jbcnews.db"),

		// JWT
		JWTSecret:      getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		PipelineAPIKey: getEnv("PIPELINE_API_KEY", ""),
		CORSOrigins:    getList("CORS_ALLOWED_ORIGINS"),

		Bots: BotTokens{
			Registration: getEnv("REGISTRATION_BOT_TOKEN", ""),
			Support:      getEnv("SUPPORT_BOT_TOKEN", ""),
			News:         getEnv("NEWS_BOT_TOKEN", ""),
			Staff:        getEnv("STAFF_BOT_TOKEN", ""),
		},

		NewsAPIKey:   getEnv("NEWS_API_KEY", ""),
		NewsAPIURL:   getEnv("NEWS_API_URL", "https://newsapi.org"),
		GNewsAPIKey:  getEnv("GNEWS_API_KEY", ""),
		GNewsAPIURL:  getEnv("GNEWS_API_URL", "https://gnews.io"),
		RSSFeedsPath: getEnv("RSS_FEEDS_PATH", ""),
		TranslateURL: getEnv("TRANSLATE_URL", "https://translate.googleapis.com"),

		DigestCron: getEnv("DIGEST_CRON", "0 8 * * *"),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 24*time.Hour)
	config.HTTPTimeout = getDuration("HTTP_TIMEOUT", 10*time.Second)
	config.TelegramTimeout = getDuration("TELEGRAM_TIMEOUT", 10*time.Second)
	config.IngestInterval = getDuration("INGEST_INTERVAL", 30*time.Minute)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getList splits a comma separated variable, dropping blank entries
func getList(key string) []string {
	var values []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// getDuration parses a duration variable, falling back to the default on bad input
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
