package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studywai-backend/internal/models"
)

type flashcardService interface {
	List(ctx context.Context) []*models.Flashcard
	Get(ctx context.Context, id string) (*models.Flashcard, error)
	Create(ctx context.Context, req models.CreateFlashcardRequest) (*models.Flashcard, bool, error)
	Update(ctx context.Context, id string, req models.UpdateFlashcardRequest) (*models.Flashcard, error)
	Delete(ctx context.Context, id string) error
}

type FlashcardHandler struct {
	service flashcardService
}

func NewFlashcardHandler(service flashcardService) *FlashcardHandler {
	return &FlashcardHandler{service: service}
}

func (h *FlashcardHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"flashcards": h.service.List(r.Context()),
	})
}

func (h *FlashcardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFlashcardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	card, degraded, err := h.service.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"flashcard": card,
		"degraded":  degraded,
	})
}

func (h *FlashcardHandler) Get(w http.ResponseWriter, r *http.Request) {
	card, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"flashcard": card})
}

func (h *FlashcardHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateFlashcardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	card, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"flashcard": card})
}

func (h *FlashcardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Flashcard deleted"})
}
