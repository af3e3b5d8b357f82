package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiet_hours_notifier/internal/app"
	"quiet_hours_notifier/internal/infra/config"
	idb "quiet_hours_notifier/internal/infra/database"
	"quiet_hours_notifier/internal/infra/email"
	"quiet_hours_notifier/internal/infra/httpapi"
	"quiet_hours_notifier/internal/infra/logger"
	"quiet_hours_notifier/internal/infra/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLog := logger.Component("main")
	mainLog.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Lookahead: %s", cfg.LogLevel, cfg.Environment, cfg.Lookahead)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL, idb.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		mainLog.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	mainLog.Info("Database connection established successfully")

	// Initialize Repositories
	blockRepo := idb.NewPostgresBlockRepository(db)
	profileRepo := idb.NewPostgresProfileRepository(db)

	// Initialize Delivery Client and Renderer
	mailer := email.NewResendAdapter(cfg.ResendAPIKey, cfg.SendRatePerSecond)
	renderer, err := app.NewRenderer(cfg.FromAddress, cfg.DisplayTimeZone)
	if err != nil {
		mainLog.Fatalf("FATAL: Could not initialize renderer: %v", err)
	}

	// Initialize DispatchService
	dispatch := app.NewDispatchService(
		blockRepo,
		profileRepo,
		mailer,
		renderer,
		logger.Component("dispatch"),
		app.DispatchOptions{
			Lookahead:    cfg.Lookahead,
			CatchUpGrace: cfg.CatchUpGrace,
			CallTimeout:  cfg.CallTimeout,
			Workers:      cfg.DispatchWorkers,
		},
	)
	mainLog.Info("Dispatch service initialized")

	// Initialize ReminderScheduler. The whole run gets a generous multiple of
	// the per-call timeout; individual calls are bounded inside the service.
	reminderScheduler := scheduler.NewReminderScheduler(
		dispatch,
		logger.Component("scheduler"),
		cfg.CronSpecReminders,
		10*cfg.CallTimeout,
	)
	if err := reminderScheduler.Start(); err != nil {
		mainLog.Fatalf("FATAL: Could not start reminder scheduler: %v", err)
	}

	// Initialize HTTP trigger
	server := httpapi.NewServer(dispatch, logger.Component("httpapi"), cfg.HTTPListenAddr)
	go func() {
		if err := server.Start(); err != nil {
			mainLog.Fatalf("FATAL: HTTP server failed: %v", err)
		}
	}()

	mainLog.Info("Application setup complete. Scheduler and HTTP trigger are running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLog.Info("Shutting down application...")
	reminderScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		mainLog.Errorf("HTTP server shutdown: %v", err)
	}
	// db.Close() is handled by defer
	mainLog.Info("Application shut down gracefully")
}
