// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/aristath/cartera/internal/modules/duplicates"
	"github.com/aristath/cartera/internal/modules/snapshots"
	"github.com/aristath/cartera/internal/utils"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	SnapshotSchedule    string
	NormalizeSchedule   string
	MaturitySchedule    string
	CleanupSchedule     string
	MaintenanceSchedule string
	NormalizeStrategy   string
	DuplicatePolicy     string

	PriceBaseURL      string
	PriceRateLimit    float64 // requests per second, 0 disables limiting
	PriceLookbackDays int
	FXBaseURL         string

	// Fee percentages applied when a trade omits them.
	CommissionPct  float64
	PurchaseFeePct float64

	// Users the scheduled jobs run for; empty means every user with a book.
	Users []string

	TechSymbols     []string
	VolatileSymbols []string

	Backup BackupConfig
}

// BackupConfig holds the S3-compatible backup settings.
type BackupConfig struct {
	Enabled         bool
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Schedule        string
	RetentionDays   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("CARTERA_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("GO_PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SnapshotSchedule:    getEnv("SNAPSHOT_SCHEDULE", "0 0 23 * * *"),
		NormalizeSchedule:   getEnv("NORMALIZE_SCHEDULE", "0 30 23 * * *"),
		MaturitySchedule:    getEnv("MATURITY_SCHEDULE", "0 0 6 * * *"),
		CleanupSchedule:     getEnv("CLEANUP_SCHEDULE", "0 0 3 * * *"),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 0 2 * * *"),
		NormalizeStrategy:   getEnv("NORMALIZE_STRATEGY", snapshots.StrategySameDay),
		DuplicatePolicy:     getEnv("DUPLICATE_POLICY", string(duplicates.PolicyExclude)),

		PriceBaseURL:      getEnv("PRICE_BASE_URL", ""),
		PriceRateLimit:    getEnvAsFloat("PRICE_RATE_LIMIT", 2),
		PriceLookbackDays: getEnvAsInt("PRICE_LOOKBACK_DAYS", 7),
		FXBaseURL:         getEnv("FX_BASE_URL", ""),

		CommissionPct:  getEnvAsFloat("COMMISSION_PCT", 1),
		PurchaseFeePct: getEnvAsFloat("PURCHASE_FEE_PCT", 0.05),

		Users:           getEnvAsList("USERS"),
		TechSymbols:     utils.ParseSymbolList(os.Getenv("TECH_SYMBOLS")),
		VolatileSymbols: utils.ParseSymbolList(os.Getenv("VOLATILE_SYMBOLS")),

		Backup: BackupConfig{
			Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
			Bucket:          getEnv("BACKUP_BUCKET", ""),
			Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
			Region:          getEnv("BACKUP_REGION", "auto"),
			AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
			Schedule:        getEnv("BACKUP_SCHEDULE", "0 0 4 * * *"),
			RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks ports, schedules, the normalization strategy and, when
// backups are enabled, the bucket and credentials.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if _, err := snapshots.ParseStrategy(c.NormalizeStrategy); err != nil {
		return fmt.Errorf("invalid NORMALIZE_STRATEGY: %w", err)
	}
	if _, err := duplicates.ParsePolicy(c.DuplicatePolicy); err != nil {
		return fmt.Errorf("invalid DUPLICATE_POLICY: %w", err)
	}
	if c.PriceRateLimit < 0 {
		return fmt.Errorf("PRICE_RATE_LIMIT must not be negative")
	}
	if c.CommissionPct < 0 || c.PurchaseFeePct < 0 {
		return fmt.Errorf("fee percentages must not be negative")
	}
	if c.PriceLookbackDays < 1 {
		return fmt.Errorf("PRICE_LOOKBACK_DAYS must be at least 1")
	}

	schedules := map[string]string{
		"SNAPSHOT_SCHEDULE":    c.SnapshotSchedule,
		"NORMALIZE_SCHEDULE":   c.NormalizeSchedule,
		"MATURITY_SCHEDULE":    c.MaturitySchedule,
		"CLEANUP_SCHEDULE":     c.CleanupSchedule,
		"MAINTENANCE_SCHEDULE": c.MaintenanceSchedule,
	}
	if c.Backup.Enabled {
		schedules["BACKUP_SCHEDULE"] = c.Backup.Schedule
	}
	for name, spec := range schedules {
		if _, err := scheduleParser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}

	if c.Backup.Enabled {
		if c.Backup.Bucket == "" {
			return fmt.Errorf("BACKUP_BUCKET is required when backups are enabled")
		}
		if c.Backup.AccessKeyID == "" || c.Backup.SecretAccessKey == "" {
			return fmt.Errorf("backup credentials are required when backups are enabled")
		}
	}

	return nil
}

// scheduleParser accepts the same six-field specs the scheduler runs.
var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	return utils.ParseList(os.Getenv(key))
}
