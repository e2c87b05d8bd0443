// Package handler exposes the term ingestion HTTP endpoint.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/ingestion"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/ingestion/publisher"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/ingestion/validator"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/logger"
)

// Handler serves POST /api/v1/terms.
type Handler struct {
	publisher     *publisher.Publisher
	maxTermLength int
	logger        *slog.Logger
}

// New creates a Handler backed by the given publisher.
func New(pub *publisher.Publisher, maxTermLength int) *Handler {
	return &Handler{
		publisher:     pub,
		maxTermLength: maxTermLength,
		logger:        slog.Default().With("component", "ingestion-handler"),
	}
}

// Ingest decodes, validates, and publishes a term batch.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req ingestion.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validator.ValidateIngestRequest(&req, h.maxTermLength); err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.publisher.Ingest(ctx, &req)
	if err != nil {
		log.Error("term ingestion failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to accept terms")
		return
	}
	h.writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("writing response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
