package handlers

import (
	"context"
	"net/http"

	"studywai-backend/internal/models"
)

type toolsService interface {
	Translate(ctx context.Context, req models.TranslateRequest) (*models.TranslateResponse, error)
	CheckGrammar(ctx context.Context, req models.GrammarRequest) (*models.GrammarResponse, error)
	Summarize(ctx context.Context, req models.SummarizeRequest) (*models.SummaryResponse, error)
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

type articleExtractor interface {
	Extract(ctx context.Context, rawURL string) (*models.Article, error)
}

type ToolsHandler struct {
	tools    toolsService
	articles articleExtractor
}

func NewToolsHandler(tools toolsService, articles articleExtractor) *ToolsHandler {
	return &ToolsHandler{tools: tools, articles: articles}
}

func (h *ToolsHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req models.TranslateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.tools.Translate(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ToolsHandler) GrammarCheck(w http.ResponseWriter, r *http.Request) {
	var req models.GrammarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.tools.CheckGrammar(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ToolsHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.tools.Summarize(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ToolsHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.tools.Chat(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ToolsHandler) ExtractURL(w http.ResponseWriter, r *http.Request) {
	var req models.ExtractURLRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	article, err := h.articles.Extract(r.Context(), req.URL)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}
