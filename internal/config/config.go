package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backend names accepted in STORE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config stores all the configuration of the application.
// Values are loaded from environment variables with optional
// loading from a .env file via godotenv.
type Config struct {
	// Storage backend selection: "postgres" or "redis"
	StoreBackend string

	// Database settings
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	// Redis settings
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisDB       int

	// Server settings
	ServerPort  string
	FrontendURL string

	// Retention settings
	RetentionDays      int
	SweepIntervalHours int

	// Model API settings
	LLMHost        string
	LLMModel       string
	LLMTemperature float64

	// Vector search service settings
	SearchURL  string
	SearchTopK int
}

// LoadConfig reads configuration from environment variables and .env file.
// It returns the loaded configuration or an error if required values are missing.
func LoadConfig() (*Config, error) {
	// Try to load .env file, but proceed even if it doesn't exist
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			log.Println("No .env file found, using environment variables only")
		} else {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Environment loaded from .env file")
	}

	config := &Config{
		StoreBackend: getEnv("STORE_BACKEND", BackendPostgres),

		// Database settings
		DBHost:     getEnv("DB_HOST", ""),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis settings
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Server settings
		ServerPort:  getEnv("PORT", "8001"),
		FrontendURL: getEnv("FRONTEND_URL", ""),

		// Retention settings
		RetentionDays:      getEnvAsInt("RETENTION_DAYS", 7),
		SweepIntervalHours: getEnvAsInt("SWEEP_INTERVAL_HOURS", 0),

		// Model API settings
		LLMHost:        getEnv("LLM_HOST", ""),
		LLMModel:       getEnv("LLM_MODEL", ""),
		LLMTemperature: getEnvAsFloat64("LLM_TEMPERATURE", 0.2),

		// Vector search service settings
		SearchURL:  getEnv("SEARCH_URL", ""),
		SearchTopK: getEnvAsInt("SEARCH_TOP_K", 4),
	}

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the required configuration values are set and logs warnings
// for optional values that aren't set.
func (c *Config) Validate() error {
	var missingEnvs []string

	switch c.StoreBackend {
	case BackendPostgres:
		// Check required database configuration
		if c.DBHost == "" {
			missingEnvs = append(missingEnvs, "DB_HOST")
		}
		if c.DBUser == "" {
			missingEnvs = append(missingEnvs, "DB_USER")
		}
		if c.DBName == "" {
			missingEnvs = append(missingEnvs, "DB_NAME")
		}
	case BackendRedis:
		if c.RedisHost == "" {
			missingEnvs = append(missingEnvs, "REDIS_HOST")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q: must be %q or %q",
			c.StoreBackend, BackendPostgres, BackendRedis)
	}

	if c.LLMHost == "" {
		missingEnvs = append(missingEnvs, "LLM_HOST")
	}
	if c.SearchURL == "" {
		missingEnvs = append(missingEnvs, "SEARCH_URL")
	}

	// Return error if any required env vars are missing
	if len(missingEnvs) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missingEnvs, ", "))
	}

	// Log warnings for optional configurations
	if c.FrontendURL == "" {
		log.Println("Warning: FRONTEND_URL is not set, CORS might not be configured correctly")
	}

	if c.LLMModel == "" {
		log.Println("Warning: LLM_MODEL is not set, the model API's default will be used")
	}

	if c.RetentionDays <= 0 {
		log.Println("Warning: RETENTION_DAYS is not positive, retention sweeps are disabled")
	}

	return nil
}

// GetDSN returns the PostgreSQL data source name (connection string)
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// GetRedisAddr returns the Redis address in the format host:port
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// getEnv retrieves the value of the environment variable named by the key.
// If the variable is not present, the defaultValue is returned.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves the value of the environment variable named by the key as an int.
// If the variable is not present or cannot be converted to an int, the defaultValue is returned.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat64 retrieves the value of the environment variable named by the key as a float64.
// If the variable is not present or cannot be converted to a float64, the defaultValue is returned.
func getEnvAsFloat64(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
