package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
	ResendAPIKey      string
	FromAddress       string
	Lookahead         time.Duration // Forward window for due-block selection
	CatchUpGrace      time.Duration // Optional backward widening for missed sends
	DisplayTimeZone   string        // IANA zone used when formatting email times
	DispatchWorkers   int
	CallTimeout       time.Duration // Bound on each external call (resolve/send/mark)
	SendRatePerSecond float64
	CronSpecReminders string
	HTTPListenAddr    string
	LogLevel          string
	Environment       string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.DBMaxOpenConns, err = intEnv("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}
	cfg.DBMaxIdleConns, err = intEnv("DB_MAX_IDLE_CONNS", 25)
	if err != nil {
		return nil, err
	}
	cfg.DBConnMaxLifetime, err = durationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.DBConnMaxIdleTime, err = durationEnv("DB_CONN_MAX_IDLE_TIME", 1*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	if cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is not set")
	}

	cfg.FromAddress = os.Getenv("FROM_ADDRESS")
	if cfg.FromAddress == "" {
		cfg.FromAddress = "Quiet Hours Scheduler <onboarding@resend.dev>"
	}

	cfg.Lookahead, err = durationEnv("REMINDER_LOOKAHEAD", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	if cfg.Lookahead <= 0 {
		return nil, fmt.Errorf("REMINDER_LOOKAHEAD must be positive, got %s", cfg.Lookahead)
	}

	cfg.CatchUpGrace, err = durationEnv("REMINDER_CATCHUP_GRACE", 0)
	if err != nil {
		return nil, err
	}
	if cfg.CatchUpGrace < 0 {
		return nil, fmt.Errorf("REMINDER_CATCHUP_GRACE must not be negative, got %s", cfg.CatchUpGrace)
	}

	cfg.DisplayTimeZone = os.Getenv("DISPLAY_TIMEZONE")
	if cfg.DisplayTimeZone == "" {
		cfg.DisplayTimeZone = "UTC"
	}
	if _, err := time.LoadLocation(cfg.DisplayTimeZone); err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", cfg.DisplayTimeZone, err)
	}

	workersStr := os.Getenv("DISPATCH_WORKERS")
	if workersStr == "" {
		cfg.DispatchWorkers = 4
	} else {
		cfg.DispatchWorkers, err = strconv.Atoi(workersStr)
		if err != nil || cfg.DispatchWorkers < 1 {
			return nil, fmt.Errorf("invalid DISPATCH_WORKERS %q", workersStr)
		}
	}

	cfg.CallTimeout, err = durationEnv("CALL_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	if cfg.CallTimeout <= 0 {
		return nil, fmt.Errorf("CALL_TIMEOUT must be positive, got %s", cfg.CallTimeout)
	}

	rateStr := os.Getenv("SEND_RATE_PER_SECOND")
	if rateStr == "" {
		cfg.SendRatePerSecond = 10
	} else {
		cfg.SendRatePerSecond, err = strconv.ParseFloat(rateStr, 64)
		if err != nil || cfg.SendRatePerSecond <= 0 {
			return nil, fmt.Errorf("invalid SEND_RATE_PER_SECOND %q", rateStr)
		}
	}

	cfg.CronSpecReminders = os.Getenv("CRON_SPEC_REMINDER_CHECK")
	if cfg.CronSpecReminders == "" {
		cfg.CronSpecReminders = "*/5 * * * *" // Default: every 5 minutes
	}

	cfg.HTTPListenAddr = os.Getenv("HTTP_LISTEN_ADDR")
	if cfg.HTTPListenAddr == "" {
		cfg.HTTPListenAddr = ":8080"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return d, nil
}
