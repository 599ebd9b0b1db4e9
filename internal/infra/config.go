package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv                string
	Port                  string
	MongoURI              string
	MongoDatabase         string
	AWSRegion             string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string
	S3Bucket              string
	StorageBackend        string
	StoragePath           string
	StorageBaseURL        string
	OpenAIAPIKey          string
	OpenAIModel           string
	OpenAIBaseURL         string
	OpenAIOrg             string
	WatermarkTemplate     string
	PublicDir             string
	AllowedOrigins        []string
	HTTPReadTimeout       time.Duration
	HTTPReadHeaderTimeout time.Duration
	HTTPWriteTimeout      time.Duration
	HTTPIdleTimeout       time.Duration
	SweeperGraceHours     int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "4000"),
		MongoURI:              os.Getenv("MONGO_URI"),
		MongoDatabase:         getEnv("MONGO_DB", "catalog"),
		AWSRegion:             os.Getenv("AWS_REGION"),
		AWSAccessKeyID:        os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Bucket:              os.Getenv("AWS_S3_BUCKET_NAME"),
		StorageBackend:        getEnv("STORAGE_BACKEND", "s3"),
		StoragePath:           getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:        getEnv("STORAGE_BASE_URL", "http://localhost:4000/static"),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:             os.Getenv("OPENAI_ORG"),
		WatermarkTemplate:     os.Getenv("WATERMARK_TEMPLATE"),
		PublicDir:             getEnv("PUBLIC_DIR", "./public"),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPReadHeaderTimeout: time.Second * time.Duration(getEnvInt("HTTP_READ_HEADER_TIMEOUT_SECONDS", 5)),
		HTTPWriteTimeout:      time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		SweeperGraceHours:     getEnvInt("SWEEPER_GRACE_HOURS", 24),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitCSV(origins)
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}

	// OPENAI_API_KEY is deliberately not checked here: only the API binary
	// talks to OpenAI, and the describer constructor rejects an empty key.
	if cfg.StorageBackend == "s3" {
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("AWS_S3_BUCKET_NAME is required for the s3 storage backend")
		}
		if cfg.AWSRegion == "" {
			return nil, fmt.Errorf("AWS_REGION is required for the s3 storage backend")
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

func splitCSV(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
