// Package config reads runtime settings from the environment (optionally
// seeded from a .env file).
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string

	JWTSecret string
	JWTTTL    time.Duration

	AdminEmail    string
	AdminUsername string
	AdminPassword string

	UploadDir        string
	UploadBaseURL    string
	MaxUploadBytes   int64
	MaxProductImages int

	RedisURL       string
	ReportCacheTTL time.Duration

	CurrencySymbol string
	CurrencyCode   string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	return &Config{
		Port: getEnv("PORT", "3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getEnv("DB_NAME", "stock_tracker"),
		DBPort:      getEnv("DB_PORT", "5432"),

		JWTSecret: getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTTTL:    time.Duration(getInt("JWT_TTL_HOURS", 24*7)) * time.Hour,

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		UploadDir:        getEnv("UPLOAD_DIR", "uploads/products"),
		UploadBaseURL:    getEnv("UPLOAD_BASE_URL", "/uploads/products"),
		MaxUploadBytes:   int64(getInt("MAX_UPLOAD_MB", 5)) << 20,
		MaxProductImages: getInt("MAX_PRODUCT_IMAGES", 10),

		RedisURL:       os.Getenv("REDIS_URL"),
		ReportCacheTTL: time.Duration(getInt("REPORT_CACHE_TTL_SECONDS", 60)) * time.Second,

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₺"),
		CurrencyCode:   getEnv("CURRENCY_CODE", "TRY"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
