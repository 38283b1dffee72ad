// Package api exposes book search and bundle analysis over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aluiziolira/bookbundle/models"
	"github.com/aluiziolira/bookbundle/pipeline"
)

const maxRequestBytes = 1 << 20

// Service is the analysis surface served over HTTP.
type Service interface {
	SearchBooks(ctx context.Context, keyword string) ([]models.BookSearchResult, error)
	AnalyzeBundle(ctx context.Context, books []models.BookRequest) (*models.BundleResult, error)
}

// BundleRequest is the body of POST /api/bundle/analyze.
type BundleRequest struct {
	Books []models.BookRequest `json:"books"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the JSON API.
type Handler struct {
	service Service
}

// New builds a Handler over service.
func New(service Service) *Handler {
	return &Handler{service: service}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/books/search", h.HandleSearch)
	mux.HandleFunc("POST /api/bundle/analyze", h.HandleAnalyze)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	slog.Info("search request", slog.String("keyword", keyword))

	results, err := h.service.SearchBooks(r.Context(), keyword)
	if err != nil {
		writeServiceError(w, "search failed", err)
		return
	}
	if results == nil {
		results = []models.BookSearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req BundleRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	slog.Info("bundle analysis request", slog.Int("books", len(req.Books)))

	result, err := h.service.AnalyzeBundle(r.Context(), req.Books)
	if err != nil {
		writeServiceError(w, "bundle analysis failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("write health response", slog.Any("error", err))
	}
}

func writeServiceError(w http.ResponseWriter, msg string, err error) {
	var pre pipeline.ErrPrecondition
	if errors.As(err, &pre) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: pre.Reason})
		return
	}
	slog.Error(msg, slog.Any("error", err))
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", slog.Any("error", err))
	}
}
