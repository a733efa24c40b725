// Package app wires storage, locks and services from configuration. Both
// the HTTP server and the admin CLI start from here.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"studywai-backend/internal/config"
	"studywai-backend/internal/database"
	"studywai-backend/internal/metrics"
	"studywai-backend/internal/repository"
	"studywai-backend/internal/services"
)

type App struct {
	Config   *config.Config
	Store    repository.RecordStore
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Flashcards *repository.FlashcardRepo
	History    *repository.HistoryRepo
	Reviews    *repository.StudyRepo

	Generator        services.TextGenerator
	FlashcardService *services.FlashcardService
	ToolsService     *services.ToolsService
	StudyService     *services.StudyService
	ArticleService   *services.ArticleService

	redis  *redis.Client
	gemini *services.GeminiService
}

// New opens the configured store and builds every service. A missing
// Gemini key is not fatal here; callers decide whether they need AI.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.New("studywai", a.Registry)

	var opts []repository.Option
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.redis = client
		opts = append(opts, repository.WithLocker(repository.NewRedisLocker(client)))
		log.Println("✓ Redis collection locks enabled")
	}

	store, err := openStore(cfg, opts)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store
	log.Printf("✓ %s store opened", cfg.StoreDriver)

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := repository.InitCollections(initCtx, store); err != nil {
		a.Close()
		return nil, err
	}
	log.Println("✓ Collections ready")

	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiService(services.GeminiConfig{
			APIKey:         cfg.GeminiAPIKey,
			Model:          cfg.GeminiModel,
			Temperature:    cfg.GeminiTemperature,
			ConcurrentReqs: cfg.GeminiConcurrentReqs,
			Timeout:        cfg.AITimeout,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.gemini = gemini
		a.Generator = gemini
		log.Printf("✓ Gemini AI service initialized (%s)", cfg.GeminiModel)
	} else {
		log.Println("✗ GEMINI_API_KEY not set, AI features disabled")
	}

	a.Flashcards = repository.NewFlashcardRepo(store)
	a.History = repository.NewHistoryRepo(store, cfg.HistoryMaxFieldLen)
	a.Reviews = repository.NewStudyRepo(store)

	a.FlashcardService = services.NewFlashcardService(a.Flashcards, a.Generator, a.Metrics, cfg.ExamplesDelimiter)
	a.ToolsService = services.NewToolsService(a.Generator, a.History, a.Metrics)
	a.StudyService = services.NewStudyService(a.Flashcards, a.Reviews, a.Metrics)
	a.ArticleService = services.NewArticleService(nil)

	return a, nil
}

func openStore(cfg *config.Config, opts []repository.Option) (repository.RecordStore, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repository.NewSQLiteStore(db, opts...), nil
	case config.DriverPostgres:
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresStore(pool, opts...), nil
	case config.DriverCSV:
		return repository.NewCSVStore(cfg.DataDir, opts...)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func (a *App) Close() {
	if a.gemini != nil {
		a.gemini.Close()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			log.Printf("WARNING: closing store: %v", err)
		}
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
