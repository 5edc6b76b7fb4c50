package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/blagoySimandov/nem12ingest/internal/logging"
	"github.com/blagoySimandov/nem12ingest/internal/models"
	"github.com/blagoySimandov/nem12ingest/internal/pipeline"
	"github.com/blagoySimandov/nem12ingest/internal/state"
	"github.com/gorilla/mux"
)

type IngestionHandler struct {
	manager *state.Manager
}

func NewIngestionHandler(manager *state.Manager) *IngestionHandler {
	return &IngestionHandler{
		manager: manager,
	}
}

func (h *IngestionHandler) StartIngestion(w http.ResponseWriter, r *http.Request) {
	var req models.IngestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req.FilePath = strings.TrimSpace(req.FilePath)
	if req.FilePath == "" {
		http.Error(w, "file_path is required", http.StatusBadRequest)
		return
	}

	run, err := h.manager.Start(r.Context(), req.FilePath)
	if errors.Is(err, pipeline.ErrInputUnavailable) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logging.EnrichRun(r.Context(), run.RunID, run.InputPath, run.OutputPath)

	writeJSON(w, http.StatusAccepted, models.IngestionResponse{
		RunID:      run.RunID,
		OutputPath: run.OutputPath,
		Message:    fmt.Sprintf("Processing file: %s", run.InputPath),
	})
}

func (h *IngestionHandler) GetIngestion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["runID"]

	run, err := h.manager.Get(r.Context(), runID)
	if errors.Is(err, state.ErrRunNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func (h *IngestionHandler) ListIngestions(w http.ResponseWriter, r *http.Request) {
	offset := 0
	limit := 0

	if offsetStr := r.URL.Query().Get("start"); offsetStr != "" {
		_, err := fmt.Sscanf(offsetStr, "%d", &offset)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		_, err := fmt.Sscanf(limitStr, "%d", &limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	runs, err := h.manager.List(r.Context(), offset, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, runs)
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
