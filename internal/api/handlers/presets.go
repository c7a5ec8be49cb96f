package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jisoo/quantfolio/internal/preset"
	"github.com/jisoo/quantfolio/pkg/logger"
)

// PresetHandler serves preset persistence.
type PresetHandler struct {
	repo   *preset.Repository
	logger *logger.Logger
}

// NewPresetHandler creates a preset handler.
func NewPresetHandler(repo *preset.Repository, log *logger.Logger) *PresetHandler {
	return &PresetHandler{
		repo:   repo,
		logger: log.WithComponent("preset-handler"),
	}
}

// List returns summaries of all saved presets.
// GET /api/presets
func (h *PresetHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list presets")
		respondError(w, http.StatusInternalServerError, "failed to list presets")
		return
	}

	respondJSON(w, http.StatusOK, summaries)
}

// Get returns one preset.
// GET /api/presets/{name}
func (h *PresetHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	p, err := h.repo.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, preset.ErrNotFound) {
			respondError(w, http.StatusNotFound, "preset not found")
			return
		}
		h.logger.WithError(err).WithField("preset", name).Error("Failed to get preset")
		respondError(w, http.StatusInternalServerError, "failed to get preset")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// Save upserts a preset.
// POST /api/presets
func (h *PresetHandler) Save(w http.ResponseWriter, r *http.Request) {
	var p preset.Preset
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.Save(r.Context(), &p); err != nil {
		if errors.Is(err, preset.ErrInvalidName) {
			respondError(w, http.StatusBadRequest, "preset name must not be empty")
			return
		}
		h.logger.WithError(err).WithField("preset", p.Name).Error("Failed to save preset")
		respondError(w, http.StatusInternalServerError, "failed to save preset")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"name": p.Name})
}

// Delete removes a preset.
// DELETE /api/presets/{name}
func (h *PresetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.repo.Delete(r.Context(), name); err != nil {
		if errors.Is(err, preset.ErrNotFound) {
			respondError(w, http.StatusNotFound, "preset not found")
			return
		}
		h.logger.WithError(err).WithField("preset", name).Error("Failed to delete preset")
		respondError(w, http.StatusInternalServerError, "failed to delete preset")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": name})
}
