package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/crmstream/crm-sync/internal/api"
	"github.com/crmstream/crm-sync/internal/config"
	"github.com/crmstream/crm-sync/internal/db"
	"github.com/crmstream/crm-sync/internal/errors"
	"github.com/crmstream/crm-sync/internal/sink"
	"github.com/crmstream/crm-sync/internal/sync"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.DBConnectionString == "" || cfg.CRM.ClientID == "" || cfg.CRM.ClientSecret == "" {
		logger.Fatal("Missing required configuration (DB_CONNECTION_STRING, CRM_CLIENT_ID and CRM_CLIENT_SECRET must be set)")
	}
	if cfg.CRM.SinkURL == "" {
		logger.Fatal("Missing required configuration (SINK_URL must be set)")
	}

	// Initialize database
	store, err := db.NewPostgresStore(cfg.DBConnectionString)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations with retry logic
	if err := retry(3, 5*time.Second, func() error {
		return store.Migrate()
	}); err != nil {
		logger.Fatalf("Failed to run migrations after retries: %v", err)
	}

	// Initialize services
	goalSink := sink.NewHTTPSink(cfg.CRM.SinkURL, logger)
	syncService := sync.NewService(store, cfg, goalSink, logger)
	handler := api.NewHandler(syncService, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.SetupRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Schedule periodic sync runs
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SyncSchedule, func() {
		if err := syncService.TriggerSync(); err != nil && !errors.IsSyncInProgress(err) {
			logger.WithError(err).Error("Scheduled sync failed to start")
		}
	}); err != nil {
		logger.Fatalf("Invalid sync schedule %q: %v", cfg.SyncSchedule, err)
	}
	scheduler.Start()

	if cfg.SyncOnStart {
		if err := syncService.TriggerSync(); err != nil {
			logger.WithError(err).Error("Initial sync failed to start")
		}
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Worker exited properly")
}

// retry retries a function up to a certain number of attempts with a delay between attempts
func retry(attempts int, sleep time.Duration, fn func() error) error {
	if err := fn(); err != nil {
		if attempts--; attempts > 0 {
			time.Sleep(sleep)
			return retry(attempts, sleep, fn)
		}
		return err
	}
	return nil
}
