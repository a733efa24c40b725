package handlers

import (
	"context"
	"net/http"
	"strconv"

	"studywai-backend/internal/models"
)

const maxHistoryLimit = 100

type historyReader interface {
	Recent(ctx context.Context, feature string, limit int) []*models.HistoryEntry
}

type HistoryHandler struct {
	history historyReader
}

func NewHistoryHandler(history historyReader) *HistoryHandler {
	return &HistoryHandler{history: history}
}

var knownFeatures = map[string]bool{
	models.FeatureGrammar:   true,
	models.FeatureTranslate: true,
	models.FeatureSummarize: true,
	models.FeatureChat:      true,
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	feature := r.URL.Query().Get("feature")
	if feature != "" && !knownFeatures[feature] {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"feature": "Unknown feature"}, r))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"limit": "Limit must be a positive integer"}, r))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": h.history.Recent(r.Context(), feature, limit),
	})
}
