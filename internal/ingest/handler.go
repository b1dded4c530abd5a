package ingest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/daye10/textsearch/pkg/logger"
)

// Handler serves the document ingestion endpoint.
type Handler struct {
	publisher *Publisher
	logger    *slog.Logger
}

func NewHandler(publisher *Publisher) *Handler {
	return &Handler{
		publisher: publisher,
		logger:    slog.Default().With("component", "ingest-handler"),
	}
}

// CreateDocument handles POST /api/v1/documents.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if err := Validate(&req); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": vErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.publisher.Ingest(r.Context(), &req)
	if err != nil {
		log.Error("ingest failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}
	h.writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
