package config_test

import (
	"testing"
	"time"

	"quiet_hours_notifier/internal/infra/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/quiet_hours?sslmode=disable")
	t.Setenv("RESEND_API_KEY", "re_test_key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Lookahead != 10*time.Minute {
		t.Errorf("Lookahead = %s, want 10m", cfg.Lookahead)
	}
	if cfg.DBMaxOpenConns != 25 || cfg.DBMaxIdleConns != 25 {
		t.Errorf("DB pool conns = %d/%d, want 25/25", cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	}
	if cfg.DBConnMaxLifetime != 5*time.Minute || cfg.DBConnMaxIdleTime != 1*time.Minute {
		t.Errorf("DB pool lifetimes = %s/%s, want 5m/1m", cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	}
	if cfg.CatchUpGrace != 0 {
		t.Errorf("CatchUpGrace = %s, want 0", cfg.CatchUpGrace)
	}
	if cfg.DisplayTimeZone != "UTC" {
		t.Errorf("DisplayTimeZone = %q, want UTC", cfg.DisplayTimeZone)
	}
	if cfg.DispatchWorkers != 4 {
		t.Errorf("DispatchWorkers = %d, want 4", cfg.DispatchWorkers)
	}
	if cfg.CallTimeout != 10*time.Second {
		t.Errorf("CallTimeout = %s, want 10s", cfg.CallTimeout)
	}
	if cfg.CronSpecReminders != "*/5 * * * *" {
		t.Errorf("CronSpecReminders = %q, want */5 * * * *", cfg.CronSpecReminders)
	}
	if cfg.HTTPListenAddr != ":8080" {
		t.Errorf("HTTPListenAddr = %q, want :8080", cfg.HTTPListenAddr)
	}
	if cfg.FromAddress == "" {
		t.Error("FromAddress default is empty")
	}
	if cfg.LogLevel != "info" || cfg.Environment != "development" {
		t.Errorf("LogLevel/Environment = %q/%q, want info/development", cfg.LogLevel, cfg.Environment)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("REMINDER_LOOKAHEAD", "15m")
	t.Setenv("REMINDER_CATCHUP_GRACE", "5m")
	t.Setenv("DISPLAY_TIMEZONE", "America/New_York")
	t.Setenv("DISPATCH_WORKERS", "8")
	t.Setenv("SEND_RATE_PER_SECOND", "2.5")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("DB_CONN_MAX_LIFETIME", "10m")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Lookahead != 15*time.Minute {
		t.Errorf("Lookahead = %s, want 15m", cfg.Lookahead)
	}
	if cfg.CatchUpGrace != 5*time.Minute {
		t.Errorf("CatchUpGrace = %s, want 5m", cfg.CatchUpGrace)
	}
	if cfg.DisplayTimeZone != "America/New_York" {
		t.Errorf("DisplayTimeZone = %q", cfg.DisplayTimeZone)
	}
	if cfg.DispatchWorkers != 8 {
		t.Errorf("DispatchWorkers = %d, want 8", cfg.DispatchWorkers)
	}
	if cfg.SendRatePerSecond != 2.5 {
		t.Errorf("SendRatePerSecond = %v, want 2.5", cfg.SendRatePerSecond)
	}
	if cfg.DBMaxOpenConns != 50 {
		t.Errorf("DBMaxOpenConns = %d, want 50", cfg.DBMaxOpenConns)
	}
	if cfg.DBConnMaxLifetime != 10*time.Minute {
		t.Errorf("DBConnMaxLifetime = %s, want 10m", cfg.DBConnMaxLifetime)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RESEND_API_KEY", "re_test_key")
	if _, err := config.Load(); err == nil {
		t.Error("Load() accepted missing DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("RESEND_API_KEY", "")
	if _, err := config.Load(); err == nil {
		t.Error("Load() accepted missing RESEND_API_KEY")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad lookahead", "REMINDER_LOOKAHEAD", "often"},
		{"negative lookahead", "REMINDER_LOOKAHEAD", "-10m"},
		{"negative grace", "REMINDER_CATCHUP_GRACE", "-1m"},
		{"bad zone", "DISPLAY_TIMEZONE", "Mars/Olympus_Mons"},
		{"zero workers", "DISPATCH_WORKERS", "0"},
		{"bad rate", "SEND_RATE_PER_SECOND", "fast"},
		{"zero timeout", "CALL_TIMEOUT", "0s"},
		{"zero pool conns", "DB_MAX_OPEN_CONNS", "0"},
		{"bad pool lifetime", "DB_CONN_MAX_LIFETIME", "forever"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.value)
			if _, err := config.Load(); err == nil {
				t.Errorf("Load() accepted %s=%q", tc.key, tc.value)
			}
		})
	}
}
