package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/legal-assistant-api/internal/classifier"
	"github.com/BerylCAtieno/legal-assistant-api/internal/completion"
	"github.com/BerylCAtieno/legal-assistant-api/internal/config"
	"github.com/BerylCAtieno/legal-assistant-api/internal/db"
	"github.com/BerylCAtieno/legal-assistant-api/internal/extractor"
	"github.com/BerylCAtieno/legal-assistant-api/internal/repository"
	"github.com/BerylCAtieno/legal-assistant-api/internal/router"
	"github.com/BerylCAtieno/legal-assistant-api/internal/services"
	"github.com/BerylCAtieno/legal-assistant-api/internal/storage"
	"github.com/BerylCAtieno/legal-assistant-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)
	for _, w := range cfg.Warnings() {
		logger.Warn("Configuration warning", "warning", w)
	}

	ctx := context.Background()

	// Upload staging
	var store storage.Storage
	switch cfg.UploadBackend {
	case config.BackendS3:
		store, err = storage.NewS3Storage(ctx, cfg)
	default:
		store, err = storage.NewDiskStorage(cfg.UploadDir)
	}
	if err != nil {
		logger.Fatal("Failed to initialize upload storage", "backend", cfg.UploadBackend, "error", err)
	}

	// Completion service
	var client completion.Client
	switch cfg.CompletionProvider {
	case config.ProviderGemini:
		gc, err := completion.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn("Gemini client unavailable, completions will fail", "error", err)
			client = completion.Unavailable(err)
		} else {
			client = gc
		}
	default:
		client = completion.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, logger)
	}
	logger.Info("Completion service configured", "provider", cfg.CompletionProvider, "model", cfg.Model())

	// Clause classifier
	var cls classifier.Classifier = classifier.Noop{}
	if len(cfg.ClassifierCommand) > 0 {
		cls = classifier.NewProcessClassifier(cfg.ClassifierCommand, cfg.ClassifierTimeout, logger)
		logger.Info("Clause classifier enabled", "command", cfg.ClassifierCommand[0])
	}

	// Completion audit log
	var audit repository.Repository
	if cfg.AuditDBPath != "" {
		database, err := db.Open(cfg.AuditDBPath)
		if err != nil {
			logger.Fatal("Failed to open audit database", "error", err)
		}
		defer database.Close()

		audit = repository.NewRepository(database)
		logger.Info("Completion audit enabled", "path", cfg.AuditDBPath)
	}

	svc := services.NewService(client, extractor.New(store, logger), cls, audit, cfg, logger)

	// Setup HTTP router
	handler := router.NewRouter(svc, store, cfg.MaxFileSize, logger)

	// Write timeout leaves room for a full completion call.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.CompletionTimeout + cfg.ClassifierTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
