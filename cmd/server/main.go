package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studywai-backend/internal/app"
	"studywai-backend/internal/config"
	"studywai-backend/internal/handlers"
	"studywai-backend/internal/middleware"
	"studywai-backend/internal/router"
)

func main() {
	log.Println("🚀 Starting StudyWAI Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// The HTTP surface is useless without a model; the CLI tolerates a missing key.
	if cfg.GeminiAPIKey == "" {
		log.Fatal("✗ GEMINI_API_KEY is required to run the server")
	}

	// ──── Step 2: Open Store, Locks and AI Client ────
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("✗ Startup failed: %v", err)
	}
	defer a.Close()

	// ──── Step 3: Initialize Handlers ────
	flashcardHandler := handlers.NewFlashcardHandler(a.FlashcardService)
	toolsHandler := handlers.NewToolsHandler(a.ToolsService, a.ArticleService)
	historyHandler := handlers.NewHistoryHandler(a.History)
	studyHandler := handlers.NewStudyHandler(a.StudyService)

	toolsLimiter := middleware.NewRateLimiter(cfg.ToolsRateLimit, time.Minute)
	defer toolsLimiter.Close()

	// ──── Step 4: Start HTTP Server ────
	r := router.New(router.Handlers{
		Flashcards: flashcardHandler,
		Tools:      toolsHandler,
		History:    historyHandler,
		Study:      studyHandler,
		Metrics:    a.Metrics.Handler(),
	}, toolsLimiter, cfg.FrontendURL)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Translate with detection makes two AI calls in one request.
		WriteTimeout: cfg.AITimeout*2 + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ StudyWAI Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API:     http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  Metrics: http://localhost:%s/metrics", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
