package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion          string
	ItemsTable         string
	MetadataTable      string
	VenuesTable        string
	CompletedIndexName string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Timestamps are stamped in venue-local time, expressed as a fixed
	// UTC offset in whole hours.
	TimezoneOffsetHours int

	// Logging
	LogLevel string

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "ap-southeast-1"),

		ItemsTable:         getEnv("ITEMS_TABLE", "InspectionItems"),
		MetadataTable:      getEnv("METADATA_TABLE", "InspectionMetadata"),
		VenuesTable:        getEnv("VENUES_TABLE", "VenueRooms"),
		CompletedIndexName: getEnv("COMPLETED_INDEX_NAME", "status-completedAt-index"),

		IsLambda:           getEnvBool("IS_LAMBDA", os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		TimezoneOffsetHours: getEnvInt("TIMEZONE_OFFSET_HOURS", 8),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.ItemsTable == "" {
		return fmt.Errorf("ITEMS_TABLE is required")
	}
	if c.MetadataTable == "" {
		return fmt.Errorf("METADATA_TABLE is required")
	}
	if c.VenuesTable == "" {
		return fmt.Errorf("VENUES_TABLE is required")
	}

	if c.TimezoneOffsetHours < -12 || c.TimezoneOffsetHours > 14 {
		return fmt.Errorf("TIMEZONE_OFFSET_HOURS %d is not a valid UTC offset", c.TimezoneOffsetHours)
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
