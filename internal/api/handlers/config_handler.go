package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chekout-ai/onboard/internal/core/configgen"
)

type ConfigHandler struct {
	gen *configgen.Generator
}

func NewConfigHandler(gen *configgen.Generator) *ConfigHandler {
	return &ConfigHandler{gen: gen}
}

// UpdateConfig deep-merges the request body into the merchant's stored
// config. Fields not present in the body are left untouched.
func (h *ConfigHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchantID")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(fields) == 0 {
		http.Error(w, "no fields to update", http.StatusBadRequest)
		return
	}

	key, config, err := h.gen.Update(r.Context(), merchantID, fields)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"key":    key,
		"config": config,
	})
}
