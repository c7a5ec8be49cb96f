package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jisoo/quantfolio/internal/engine"
	"github.com/jisoo/quantfolio/internal/model"
	"github.com/jisoo/quantfolio/pkg/logger"
)

// OptimizeHandler serves frontier computation and portfolio selection.
type OptimizeHandler struct {
	engine *engine.Engine
	logger *logger.Logger
}

// NewOptimizeHandler creates an optimize handler.
func NewOptimizeHandler(eng *engine.Engine, log *logger.Logger) *OptimizeHandler {
	return &OptimizeHandler{
		engine: eng,
		logger: log.WithComponent("optimize-handler"),
	}
}

// Optimize computes the efficient frontier and the selected portfolios.
// POST /api/optimize
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var in engine.OptimizeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(in.Assets) < model.MinAssets {
		respondError(w, http.StatusBadRequest, "optimization requires at least 2 assets")
		return
	}

	result, err := h.engine.Optimize(r.Context(), in)
	if err != nil {
		if errors.Is(err, model.ErrMatrixShape) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Optimization failed")
		respondError(w, http.StatusInternalServerError, "optimization failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
