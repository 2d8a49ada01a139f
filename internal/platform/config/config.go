package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	RosterSourceFile     = "file"
	RosterSourcePostgres = "postgres"
)

type Config struct {
	Environment       string
	LogLevel          string
	Store             string
	DataFile          string
	SQLitePath        string
	DatabaseURL       string
	DataEncryptionKey string
	RosterFile        string
	RosterSource      string
	PayslipDir        string
	RunMigrations     bool
	EmailEnabled      bool
	EmailFrom         string
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	SMTPUseTLS        bool
	FinanceEmail      string
	HREmail           string
}

// Load reads the process environment, after applying a .env file from the
// working directory when one exists.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	return Config{
		Environment:       getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Store:             strings.ToLower(getEnv("PAYROLL_STORE", StoreFile)),
		DataFile:          getEnv("PAYROLL_DATA_FILE", "data/payroll_submissions.json"),
		SQLitePath:        getEnv("SQLITE_PATH", "data/payroll.db"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DataEncryptionKey: getEnv("DATA_ENCRYPTION_KEY", ""),
		RosterFile:        getEnv("ROSTER_FILE", ""),
		RosterSource:      strings.ToLower(getEnv("ROSTER_SOURCE", RosterSourceFile)),
		PayslipDir:        getEnv("PAYSLIP_DIR", "storage/payslips"),
		RunMigrations:     getEnvBool("RUN_MIGRATIONS", true),
		EmailEnabled:      getEnvBool("EMAIL_ENABLED", false),
		EmailFrom:         getEnv("EMAIL_FROM", "no-reply@example.com"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:        getEnvBool("SMTP_USE_TLS", true),
		FinanceEmail:      getEnv("FINANCE_EMAIL", ""),
		HREmail:           getEnv("HR_EMAIL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreFile:
		if strings.TrimSpace(c.DataFile) == "" {
			return fmt.Errorf("PAYROLL_DATA_FILE is required for the file store")
		}
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("PAYROLL_STORE must be one of file, sqlite, postgres, memory (got %q)", c.Store)
	}

	switch c.RosterSource {
	case RosterSourceFile:
	case RosterSourcePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when ROSTER_SOURCE is postgres")
		}
	default:
		return fmt.Errorf("ROSTER_SOURCE must be file or postgres (got %q)", c.RosterSource)
	}

	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.EmailEnabled && (c.SMTPPort <= 0 || c.SMTPPort > 65535) {
		return fmt.Errorf("SMTP_PORT must be a valid port")
	}

	if c.Environment == "production" && strings.TrimSpace(c.DataEncryptionKey) == "" {
		return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
	}
	return nil
}

// UsesPostgres reports whether any configured component needs a pgx pool.
func (c Config) UsesPostgres() bool {
	return c.Store == StorePostgres || c.RosterSource == RosterSourcePostgres
}
