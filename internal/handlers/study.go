package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studywai-backend/internal/models"
)

type studyService interface {
	RecordReview(ctx context.Context, flashcardID string, correct bool) (*models.StudyRecord, error)
	Stats(ctx context.Context) *models.StudyStats
}

type StudyHandler struct {
	study studyService
}

func NewStudyHandler(study studyService) *StudyHandler {
	return &StudyHandler{study: study}
}

func (h *StudyHandler) RecordReview(w http.ResponseWriter, r *http.Request) {
	var req models.ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rec, err := h.study.RecordReview(r.Context(), chi.URLParam(r, "id"), req.Correct)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"review": rec})
}

func (h *StudyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.study.Stats(r.Context()))
}
