package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"urlboard/internal/models"

	"go.uber.org/zap"
)

type addRequest struct {
	URL string `json:"url"`
}

type listResponse struct {
	Records  []models.Record `json:"records"`
	Degraded bool            `json:"degraded"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListJSON returns the records in order.
func (h *Handler) ListJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.list())
}

// AddJSON accepts either a JSON body {"url": ...} or the multipart add form.
func (h *Handler) AddJSON(w http.ResponseWriter, r *http.Request) {
	var sub *models.Submission

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req addRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUpload)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		sub = &models.Submission{Candidate: req.URL}
	} else {
		s, cleanup, err := h.readSubmission(w, r)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		defer cleanup()
		sub = s
	}

	if err := h.pipeline.Run(r.Context(), sub); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub.Record)
}

// DeleteJSON removes the record at the path index.
func (h *Handler) DeleteJSON(w http.ResponseWriter, r *http.Request) {
	if err := h.removeAt(r); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.list())
}

func (h *Handler) list() listResponse {
	return listResponse{Records: h.store.Records(), Degraded: h.store.Degraded()}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	code, status := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, status, flashes[code].Text)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
