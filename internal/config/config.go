package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Ingestion
	IngestAPIKey string

	// Tracing
	TraceDir   string
	TraceDebug bool

	// Lookup data
	MerchantDictPath string
	UPIHandlesPath   string
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
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "khata"),
		DBPassword: getEnv("DB_PASSWORD", "khata"),
		DBName:     getEnv("DB_NAME", "khata"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Ingestion endpoints refuse requests when the key is unset.
		IngestAPIKey: getEnv("INGEST_API_KEY", ""),

		// Tracing
		TraceDir:   getEnv("TRACE_DIR", "traces"),
		TraceDebug: getEnvBool("TRACE_DEBUG", false),

		// Lookup data
		MerchantDictPath: getEnv("MERCHANT_DICT_PATH", "data/merchants.json"),
		UPIHandlesPath:   getEnv("UPI_HANDLES_PATH", "data/upi_handles.json"),
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

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid boolean for %s: %q, using default\n", key, value)
		return defaultValue
	}
	return parsed
}
