package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nobita6986/BatchTranscriber/internal/ai"
	"github.com/nobita6986/BatchTranscriber/internal/app"
	"github.com/nobita6986/BatchTranscriber/internal/captions"
	"github.com/nobita6986/BatchTranscriber/internal/config"
	"github.com/nobita6986/BatchTranscriber/internal/constants"
	"github.com/nobita6986/BatchTranscriber/internal/domain"
	httpapp "github.com/nobita6986/BatchTranscriber/internal/http"
	"github.com/nobita6986/BatchTranscriber/internal/httpclient"
	"github.com/nobita6986/BatchTranscriber/internal/logger"
	"github.com/nobita6986/BatchTranscriber/internal/store"
	"github.com/nobita6986/BatchTranscriber/internal/worker"
	"github.com/nobita6986/BatchTranscriber/internal/youtube"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		appLogger.Error("Failed to create media directory", "error", err)
		os.Exit(1)
	}

	settingsRepo := store.NewSettingsRepo(db)

	// Shared outbound HTTP client with rate limiting and retries
	webClient := httpclient.NewClient(&http.Client{Timeout: constants.DefaultHTTPTimeout}, 500*time.Millisecond)

	resolver := youtube.NewResolver(webClient, appLogger)
	captionFetcher := captions.NewFetcher(webClient, appLogger)
	aiClient := ai.NewClient(cfg.GeminiModel, appLogger)

	// Initialize Services
	jobService := app.NewJobService(db, resolver, cfg.MediaDir, appLogger)
	libraryService := app.NewLibraryService(db, appLogger)
	credentialService := app.NewCredentialService(db, settingsRepo, cfg.DefaultAPIKey, appLogger)

	// Initialize Worker
	dispatcher := worker.NewDispatcher()
	dispatcher.Register(domain.JobSourceFile, worker.NewFileHandler(db, aiClient, credentialService))
	dispatcher.Register(domain.JobSourceYouTube, worker.NewYouTubeHandler(db, captionFetcher, aiClient, credentialService))

	limit := cfg.Concurrency
	if saved, err := settingsRepo.Get(store.SettingConcurrency); err == nil && saved != "" {
		if n, err := strconv.Atoi(saved); err == nil {
			limit = n
		}
	}

	scheduler := worker.NewScheduler(db, libraryService, credentialService, dispatcher, limit, appLogger)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	h := httpapp.NewHandler(jobService, libraryService, credentialService, scheduler, settingsRepo, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
