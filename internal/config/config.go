// Package config loads the application configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every value the application reads from the environment.
type Config struct {
	ServerPort string

	// SecretKey signs the password-reset tokens.
	SecretKey string

	DBUser                 string
	DBPassword             string
	DBHost                 string
	DBPort                 string
	DBName                 string
	InstanceConnectionName string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	// PostsPerPage is the page size of the /history feed.
	PostsPerPage int
	// PostsPerPageUser is the page size of the profile feed.
	PostsPerPageUser int

	// ResetTokenTTL bounds the lifetime of password-reset links.
	ResetTokenTTL time.Duration
	// SessionTTL is the lifetime of a regular login session (and of guest sessions).
	SessionTTL time.Duration
	// RememberSessionTTL is the lifetime of a "remember me" session.
	RememberSessionTTL time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// BaseURL is the external URL of this service, used to build reset links.
	BaseURL string
}

// Load reads the configuration, preferring a .env file when present.
// Missing optional values fall back to defaults.
func Load() *Config {
	// .envが無い環境（本番）では環境変数のみを使用する
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		SecretKey:  os.Getenv("SECRET_KEY"),

		DBUser:                 os.Getenv("DB_USER"),
		DBPassword:             os.Getenv("DB_PASSWORD"),
		DBHost:                 getEnv("DB_HOST", "127.0.0.1"),
		DBPort:                 getEnv("DB_PORT", "3306"),
		DBName:                 getEnv("DB_NAME", "microblog"),
		InstanceConnectionName: os.Getenv("INSTANCE_CONNECTION_NAME"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		PostsPerPage:     getEnvInt("POSTS_PER_PAGE", 10),
		PostsPerPageUser: getEnvInt("POSTS_PER_PAGE_USER", 5),

		ResetTokenTTL:      getEnvDuration("RESET_TOKEN_TTL", 10*time.Minute),
		SessionTTL:         getEnvDuration("SESSION_TTL", 24*time.Hour),
		RememberSessionTTL: getEnvDuration("REMEMBER_SESSION_TTL", 30*24*time.Hour),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@microblog.local"),

		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Printf("[WARN] invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[WARN] invalid %s=%q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
