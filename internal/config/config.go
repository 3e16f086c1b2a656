package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	AppEnv          string
	JWTSecret       string
	StoreBackend    string
	RedisURL        string
	DBUrl           string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3PublicBaseURL string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		AppEnv:          normalizeEnv(getEnv("APP_ENV", "production")),
		JWTSecret:       jwtSecret,
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", "redis")),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DBUrl:           getEnv("DB_URL", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3Region:        getEnv("S3_REGION", "auto"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
	}

	switch cfg.StoreBackend {
	case "redis", "postgres", "memory":
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.StoreBackend == "postgres" && cfg.DBUrl == "" {
		return nil, fmt.Errorf("DB_URL is required for the postgres backend")
	}

	return cfg, nil
}

func (c *Config) StorageConfigured() bool {
	return c != nil && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
