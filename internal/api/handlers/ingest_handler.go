package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chekout-ai/onboard/internal/services"
)

type IngestHandler struct {
	runner  *services.JobRunner
	tracker *services.StatusTracker
}

func NewIngestHandler(runner *services.JobRunner, tracker *services.StatusTracker) *IngestHandler {
	return &IngestHandler{runner: runner, tracker: tracker}
}

// StartIngest accepts an onboarding request and queues the run. The response
// returns immediately with the job ID; progress is polled via the status
// endpoint.
func (h *IngestHandler) StartIngest(w http.ResponseWriter, r *http.Request) {
	var req services.OnboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	jobID, err := h.runner.Submit(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":      jobID,
		"merchant_id": req.MerchantID,
		"status":      "pending",
	})
}

// GetStatus returns the latest run status for a merchant.
func (h *IngestHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchantID")
	status := h.tracker.Get(merchantID)
	if status == nil {
		http.Error(w, "no ingestion run found for merchant", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
