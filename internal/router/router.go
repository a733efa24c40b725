package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studywai-backend/internal/handlers"
	"studywai-backend/internal/middleware"
)

type Handlers struct {
	Flashcards *handlers.FlashcardHandler
	Tools      *handlers.ToolsHandler
	History    *handlers.HistoryHandler
	Study      *handlers.StudyHandler
	Metrics    http.Handler
}

func New(h Handlers, toolsLimiter *middleware.RateLimiter, frontendURL string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Flashcard Routes ────
		r.Route("/flashcards", func(r chi.Router) {
			r.Get("/", h.Flashcards.List)
			r.With(chimiddleware.Timeout(2*time.Minute)).Post("/", h.Flashcards.Create)
			r.Get("/{id}", h.Flashcards.Get)
			r.Put("/{id}", h.Flashcards.Update)
			r.Delete("/{id}", h.Flashcards.Delete)
			r.Post("/{id}/reviews", h.Study.RecordReview)
		})

		// ──── Study Routes ────
		r.Get("/study/stats", h.Study.Stats)

		// ──── AI Tool Routes ────
		r.Route("/tools", func(r chi.Router) {
			if toolsLimiter != nil {
				r.Use(toolsLimiter.Middleware)
			}
			r.Post("/translate", h.Tools.Translate)
			r.Post("/grammar-check", h.Tools.GrammarCheck)
			r.Post("/summarize", h.Tools.Summarize)
			r.Post("/chat", h.Tools.Chat)
			r.Post("/extract-url", h.Tools.ExtractURL)
		})

		// ──── History Routes ────
		r.Get("/history", h.History.List)
	})

	return r
}
