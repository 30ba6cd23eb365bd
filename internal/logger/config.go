package logger

import (
	"os"
	"strconv"
)

// EnvConfig is the logger configuration read from environment variables.
// Unlike Config it covers file output and rotation, which only matter
// for deployed environments.
type EnvConfig struct {
	Level       string // LOG_LEVEL: debug, info, warn, error
	Format      string // LOG_FORMAT: json, text
	ServiceName string // SERVICE_NAME, tagged on every line
	Environment string // APP_ENV: local, dev, prod

	LogFile     string // LOG_FILE path; rotation applies to this file
	LogFileOnly bool   // LOG_FILE_ONLY suppresses stdout outside local

	MaxSize    int  // LOG_MAX_SIZE, megabytes per file
	MaxBackups int  // LOG_MAX_BACKUPS, rotated files kept
	MaxAge     int  // LOG_MAX_AGE, days to keep rotated files
	Compress   bool // LOG_COMPRESS gzips rotated files
}

// LoadFromEnv reads the logger environment with defaults suitable for
// local development.
func LoadFromEnv() *EnvConfig {
	return &EnvConfig{
		Level:       envString("LOG_LEVEL", "info"),
		Format:      envString("LOG_FORMAT", "json"),
		ServiceName: envString("SERVICE_NAME", "content-pipeline"),
		Environment: envString("APP_ENV", "local"),

		LogFile:     envString("LOG_FILE", "/var/log/content-pipeline/app.log"),
		LogFileOnly: envBool("LOG_FILE_ONLY", false),

		MaxSize:    envInt("LOG_MAX_SIZE", 100),
		MaxBackups: envInt("LOG_MAX_BACKUPS", 7),
		MaxAge:     envInt("LOG_MAX_AGE", 30),
		Compress:   envBool("LOG_COMPRESS", true),
	}
}

func envString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return i
}
