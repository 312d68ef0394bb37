package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Engine   EngineConfig
	Gemini   GeminiConfig
}

// EngineConfig tunes the categorization engine.
type EngineConfig struct {
	// AcceptanceThreshold is the minimum matcher confidence for a rule match
	// to be accepted without consulting the fallback classifier.
	AcceptanceThreshold float64
	// FallbackTimeout bounds a single external classifier call.
	FallbackTimeout time.Duration
	// FallbackRatePerSecond limits outbound classifier calls.
	FallbackRatePerSecond int
	// BatchWorkers caps the parallel fan-out during batch categorization.
	BatchWorkers int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Load reads configuration from the environment, with .env files applied
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "bookkeeper-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Engine: EngineConfig{
			AcceptanceThreshold:   getEnvAsFloat("ENGINE_ACCEPTANCE_THRESHOLD", 0.8),
			FallbackTimeout:       time.Duration(getEnvAsInt("ENGINE_FALLBACK_TIMEOUT_MS", 10000)) * time.Millisecond,
			FallbackRatePerSecond: getEnvAsInt("ENGINE_FALLBACK_RATE_PER_SECOND", 5),
			BatchWorkers:          getEnvAsInt("ENGINE_BATCH_WORKERS", 4),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
	}

	if cfg.Engine.AcceptanceThreshold <= 0 || cfg.Engine.AcceptanceThreshold > 1 {
		return nil, errors.New("ENGINE_ACCEPTANCE_THRESHOLD must be in (0, 1]")
	}

	if cfg.Engine.BatchWorkers < 1 {
		return nil, errors.New("ENGINE_BATCH_WORKERS must be at least 1")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
