package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"studywai-backend/internal/models"
	"studywai-backend/internal/services"
)

// ─── Stubs ───

type stubFlashcardService struct {
	cards    []*models.Flashcard
	card     *models.Flashcard
	degraded bool
	err      error
	gotID    string
	gotReq   models.CreateFlashcardRequest
}

func (s *stubFlashcardService) List(context.Context) []*models.Flashcard { return s.cards }

func (s *stubFlashcardService) Get(_ context.Context, id string) (*models.Flashcard, error) {
	s.gotID = id
	return s.card, s.err
}

func (s *stubFlashcardService) Create(_ context.Context, req models.CreateFlashcardRequest) (*models.Flashcard, bool, error) {
	s.gotReq = req
	return s.card, s.degraded, s.err
}

func (s *stubFlashcardService) Update(_ context.Context, id string, _ models.UpdateFlashcardRequest) (*models.Flashcard, error) {
	s.gotID = id
	return s.card, s.err
}

func (s *stubFlashcardService) Delete(_ context.Context, id string) error {
	s.gotID = id
	return s.err
}

type stubHistory struct {
	entries    []*models.HistoryEntry
	gotFeature string
	gotLimit   int
}

func (s *stubHistory) Recent(_ context.Context, feature string, limit int) []*models.HistoryEntry {
	s.gotFeature, s.gotLimit = feature, limit
	return s.entries
}

// ─── Helpers ───

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-123")
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp.Error
}

// ─── Error Mapping ───

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"word": "Word is required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", &services.NotFoundError{Message: "Flashcard not found"}, http.StatusNotFound, "NOT_FOUND"},
		{"storage", &services.StorageError{Op: "create", Err: errors.New("disk full")}, http.StatusInternalServerError, "STORAGE_ERROR"},
		{"upstream", &services.UpstreamError{Err: errors.New("quota")}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, "UPSTREAM_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", "req-123")
			rr := httptest.NewRecorder()

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			apiErr := decodeError(t, rr)
			if apiErr.Code != tc.wantCode {
				t.Errorf("Expected code %s, got %s", tc.wantCode, apiErr.Code)
			}
			if apiErr.RequestID != "req-123" {
				t.Errorf("Expected request id to be echoed, got %q", apiErr.RequestID)
			}
		})
	}
}

func TestHandleServiceError_ValidationFields(t *testing.T) {
	rr := httptest.NewRecorder()
	handleServiceError(rr, httptest.NewRequest(http.MethodPost, "/", nil),
		&services.ValidationError{Fields: map[string]string{"word": "Word is required"}})

	apiErr := decodeError(t, rr)
	if apiErr.Fields["word"] != "Word is required" {
		t.Errorf("Expected field error, got %v", apiErr.Fields)
	}
}

// ─── Flashcard Handler ───

func TestFlashcardCreate(t *testing.T) {
	stub := &stubFlashcardService{card: &models.Flashcard{ID: "1", Word: "hola"}, degraded: true}
	h := NewFlashcardHandler(stub)

	rr := httptest.NewRecorder()
	h.Create(rr, jsonRequest(http.MethodPost, "/api/v1/flashcards", map[string]string{"word": "hola", "language": "spanish"}))

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Flashcard models.Flashcard `json:"flashcard"`
		Degraded  bool             `json:"degraded"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Flashcard.ID != "1" || !resp.Degraded {
		t.Errorf("Unexpected response %+v", resp)
	}
	if stub.gotReq.Word != "hola" || stub.gotReq.Language != "spanish" {
		t.Errorf("Request not passed through: %+v", stub.gotReq)
	}
}

func TestFlashcardCreate_InvalidBody(t *testing.T) {
	h := NewFlashcardHandler(&stubFlashcardService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flashcards", strings.NewReader("{not json"))

	rr := httptest.NewRecorder()
	h.Create(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
	if code := decodeError(t, rr).Code; code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %s", code)
	}
}

func TestFlashcardGet_UsesURLParam(t *testing.T) {
	stub := &stubFlashcardService{err: &services.NotFoundError{Message: "Flashcard not found"}}
	h := NewFlashcardHandler(stub)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/flashcards/42", nil), "id", "42")
	rr := httptest.NewRecorder()
	h.Get(rr, req)

	if stub.gotID != "42" {
		t.Errorf("Expected id 42, got %q", stub.gotID)
	}
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
}

func TestFlashcardDelete(t *testing.T) {
	stub := &stubFlashcardService{}
	h := NewFlashcardHandler(stub)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/v1/flashcards/7", nil), "id", "7")
	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
	if stub.gotID != "7" {
		t.Errorf("Expected id 7, got %q", stub.gotID)
	}
}

func TestFlashcardList_EmptyIsArray(t *testing.T) {
	h := NewFlashcardHandler(&stubFlashcardService{cards: []*models.Flashcard{}})
	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/api/v1/flashcards", nil))

	if !strings.Contains(rr.Body.String(), `"flashcards":[]`) {
		t.Errorf("Expected empty array, got %s", rr.Body.String())
	}
}

// ─── History Handler ───

func TestHistoryList(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantFeature string
		wantLimit   int
	}{
		{"defaults", "", http.StatusOK, "", 0},
		{"feature and limit", "?feature=grammar&limit=5", http.StatusOK, "grammar", 5},
		{"limit is capped", "?limit=1000", http.StatusOK, "", maxHistoryLimit},
		{"zero limit", "?limit=0", http.StatusBadRequest, "", 0},
		{"negative limit", "?limit=-3", http.StatusBadRequest, "", 0},
		{"non numeric limit", "?limit=ten", http.StatusBadRequest, "", 0},
		{"unknown feature", "?feature=poetry", http.StatusBadRequest, "", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubHistory{entries: []*models.HistoryEntry{}}
			h := NewHistoryHandler(stub)

			rr := httptest.NewRecorder()
			h.List(rr, httptest.NewRequest(http.MethodGet, "/api/v1/history"+tc.query, nil))

			if rr.Code != tc.wantStatus {
				t.Fatalf("Expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantStatus == http.StatusOK && (stub.gotFeature != tc.wantFeature || stub.gotLimit != tc.wantLimit) {
				t.Errorf("Expected Recent(%q, %d), got Recent(%q, %d)", tc.wantFeature, tc.wantLimit, stub.gotFeature, stub.gotLimit)
			}
		})
	}
}
