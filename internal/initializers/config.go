package initializers

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	LogLevel     string
	PgDSN        string
	Port         string
	MetricsPort  string
	JWTSecret    string
	TokenTTL     time.Duration
	AdminUserIDs string
	ImageDir     string
	ImageBaseURL string
	CORSOrigins  []string
}

func startGetEnv() {
	if os.Getenv("ENVIRONMENT") == "PROD" {
		return
	}

	err := godotenv.Load("local.env")

	if err != nil {
		log.Fatalf("Error loading .env file")
	}
}

// LoadConfig reads the process environment. LOG_LEVEL and JWT_SECRET have no
// defaults.
func LoadConfig() Config {
	cfg := Config{
		Environment:  os.Getenv("ENVIRONMENT"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		PgDSN:        os.Getenv("PG_DSN"),
		Port:         getEnvOrDefault("PORT", "8080"),
		MetricsPort:  getEnvOrDefault("METRICS_PORT", "9090"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     time.Hour,
		AdminUserIDs: os.Getenv("ADMIN_USER_IDS"),
		ImageDir:     getEnvOrDefault("IMAGE_DIR", "./data/images"),
		ImageBaseURL: getEnvOrDefault("IMAGE_BASE_URL", "/images"),
		CORSOrigins:  splitList(os.Getenv("CORS_ORIGINS")),
	}

	if cfg.LogLevel == "" {
		log.Fatalf("LOG_LEVEL environment variable not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatalf("JWT_SECRET environment variable not set")
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			log.Fatalf("Invalid TOKEN_TTL: %v", err)
		}
		cfg.TokenTTL = d
	}

	return cfg
}

func (c Config) IsProd() bool {
	return c.Environment == "PROD"
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
