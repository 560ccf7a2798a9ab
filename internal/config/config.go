package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/Dan9191/fee-reminder/internal/runguard"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBConn   string
	LogLevel string

	// Audit
	Timezone      string
	AuditSchedule string // cron expression, evaluated in Timezone
	RunGuardMode  string // "enforce" or "bypass"
	AuditWorkers  int

	// Sources
	AccountSource   string // "postgres" or "registry"
	RegistryURL     string
	RunStateBackend string // "postgres" or "sqlite"
	SQLitePath      string

	// Notifications
	NotifyBackend     string // "email", "nats" or "log"
	NotifyTimeout     time.Duration
	SMTPHost          string
	SMTPPort          string
	SMTPUsername      string
	SMTPPassword      string
	SenderEmail       string
	AdminEmails       []string
	NATSURL           string
	NATSSubjectPrefix string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBConn:            getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=fees sslmode=disable"),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		Timezone:          getEnv("TIMEZONE", "Asia/Kolkata"),
		AuditSchedule:     getEnv("AUDIT_SCHEDULE", "0 8 * * *"),
		RunGuardMode:      getEnv("RUN_GUARD_MODE", "bypass"),
		AccountSource:     getEnv("ACCOUNT_SOURCE", "postgres"),
		RegistryURL:       getEnv("REGISTRY_URL", ""),
		RunStateBackend:   getEnv("RUN_STATE_BACKEND", "postgres"),
		SQLitePath:        getEnv("SQLITE_PATH", "run_state.db"),
		NotifyBackend:     getEnv("NOTIFY_BACKEND", "log"),
		SMTPHost:          getEnv("SMTP_HOST", "localhost"),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SenderEmail:       getEnv("SENDER_EMAIL", "reminders@localhost"),
		AdminEmails:       splitList(getEnv("ADMIN_EMAILS", "")),
		NATSURL:           getEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "fees.reminders"),
	}

	var err error
	if cfg.AuditWorkers, err = strconv.Atoi(getEnv("AUDIT_WORKERS", "1")); err != nil || cfg.AuditWorkers < 1 {
		return nil, fmt.Errorf("AUDIT_WORKERS must be a positive integer")
	}
	if cfg.NotifyTimeout, err = time.ParseDuration(getEnv("NOTIFY_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("NOTIFY_TIMEOUT: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	if _, err := runguard.ParseMode(c.RunGuardMode); err != nil {
		return fmt.Errorf("RUN_GUARD_MODE: %w", err)
	}

	switch c.AccountSource {
	case "postgres":
	case "registry":
		if c.RegistryURL == "" {
			return fmt.Errorf("REGISTRY_URL is required when ACCOUNT_SOURCE=registry")
		}
	default:
		return fmt.Errorf("ACCOUNT_SOURCE must be postgres or registry, got %q", c.AccountSource)
	}

	switch c.RunStateBackend {
	case "postgres":
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when RUN_STATE_BACKEND=sqlite")
		}
	default:
		return fmt.Errorf("RUN_STATE_BACKEND must be postgres or sqlite, got %q", c.RunStateBackend)
	}
	if c.UsesPostgres() && c.DBConn == "" {
		return fmt.Errorf("DB_CONN is required")
	}

	switch c.NotifyBackend {
	case "log":
	case "email":
		if len(c.AdminEmails) == 0 {
			return fmt.Errorf("ADMIN_EMAILS is required when NOTIFY_BACKEND=email")
		}
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when NOTIFY_BACKEND=email")
		}
	case "nats":
		if c.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when NOTIFY_BACKEND=nats")
		}
	default:
		return fmt.Errorf("NOTIFY_BACKEND must be email, nats or log, got %q", c.NotifyBackend)
	}
	return nil
}

// UsesPostgres reports whether any store lives in Postgres
func (c *Config) UsesPostgres() bool {
	return c.AccountSource == "postgres" || c.RunStateBackend == "postgres"
}

// Location returns the time zone that defines "today"
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
