package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	maxSeedProducts = 10000
)

// Config holds all configuration for the service
type Config struct {
	Environment     string
	Port            string
	LogLevel        string
	DBDriver        string
	DatabaseDSN     string
	SQLitePath      string
	AllowedOrigins  []string
	SeedProducts    int
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: strings.ToLower(getEnv("APP_ENV", "development")),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DatabaseDSN: getEnv("DB_DSN", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "catalog.db"),
	}
	for _, o := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	var err error
	if cfg.SeedProducts, err = getEnvInt("SEED_PRODUCTS", 0); err != nil {
		return nil, err
	}
	if cfg.SeedProducts < 0 || cfg.SeedProducts > maxSeedProducts {
		return nil, fmt.Errorf("SEED_PRODUCTS must be between 0 and %d", maxSeedProducts)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}
	mb, err := getEnvInt("MAX_UPLOAD_MB", 10)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(mb) << 20

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = postgresDSN()
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("DB_DRIVER %q is not supported", cfg.DBDriver)
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development" || c.Environment == "dev"
}

// postgresDSN assembles a DSN from DB_* pieces, falling back to the POSTGRES_*
// names used by the official image.
func postgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", getEnv("POSTGRES_USER", "postgres")),
		getEnv("DB_PASSWORD", getEnv("POSTGRES_PASSWORD", "postgres")),
		getEnv("DB_NAME", getEnv("POSTGRES_DB", "catalog")),
		getEnv("DB_SSLMODE", "disable"),
	)
}

// OpenDB opens the configured store with driver errors translated to gorm's
// sentinel errors.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.IsDevelopment() {
		logLevel = logger.Warn
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var dial gorm.Dialector
	switch cfg.DBDriver {
	case DriverSQLite:
		dial = sqlite.Open(cfg.SQLitePath)
	default:
		dial = postgres.Open(cfg.DatabaseDSN)
	}
	db, err := gorm.Open(dial, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.DBDriver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
