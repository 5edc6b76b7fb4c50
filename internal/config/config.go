package config

import (
	"os"
	"runtime"
	"strconv"
)

type Config struct {
	DatabaseURL   string
	ServerAddr    string
	OutputDir     string
	OutputPrefix  string
	Workers       int
	QueueSize     int
	LoadBatchSize int
	LogLevel      string
}

func Load() *Config {
	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		OutputDir:     getEnv("OUTPUT_DIR", "."),
		OutputPrefix:  getEnv("OUTPUT_FILE_PREFIX", "meter_readings_insert"),
		Workers:       getEnvInt("INGEST_WORKERS", runtime.NumCPU()),
		QueueSize:     getEnvInt("INGEST_QUEUE_SIZE", 50),
		LoadBatchSize: getEnvInt("LOAD_BATCH_SIZE", 500),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to defaultValue for unset, unparsable or non-positive values.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}
