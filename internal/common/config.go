// Package common provides shared configuration and progress reporting for
// the solar wind preparation tools.
package common

import (
	"os"
	"path/filepath"
)

// Config holds common configuration for all tools.
type Config struct {
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	DataDir            string
}

// DefaultConfig returns configuration with env-var overrides and sensible
// defaults.
func DefaultConfig() *Config {
	return &Config{
		ClickHouseHost:     getEnv("CLICKHOUSE_HOST", "localhost"),
		ClickHousePort:     9000,
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "sw"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		DataDir:            getEnv("SOLARWIND_DATA_DIR", "/var/lib/solarwind"),
	}
}

// OMNIDataDir returns the raw OMNI archive directory path.
func (c *Config) OMNIDataDir() string {
	return filepath.Join(c.DataDir, "omni")
}

// ACEDataDir returns the ACE/Wind CSV directory path.
func (c *Config) ACEDataDir() string {
	return filepath.Join(c.DataDir, "ace")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
