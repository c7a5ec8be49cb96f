package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jisoo/quantfolio/internal/correlations"
	"github.com/jisoo/quantfolio/pkg/logger"
)

// CorrelationsHandler serves correlation matrix imports.
type CorrelationsHandler struct {
	client *correlations.Client
	logger *logger.Logger
}

// ImportRequest is the correlation import request body.
type ImportRequest struct {
	Symbols []string `json:"symbols"`
}

// NewCorrelationsHandler creates a correlations handler.
func NewCorrelationsHandler(client *correlations.Client, log *logger.Logger) *CorrelationsHandler {
	return &CorrelationsHandler{
		client: client,
		logger: log.WithComponent("correlations-handler"),
	}
}

// Import fetches (or synthesizes) a correlation matrix for the symbols.
// A service failure is not an error here; the response carries the
// synthetic matrix and a notice instead.
// POST /api/correlations/import
func (h *CorrelationsHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.client.Import(r.Context(), req.Symbols)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}
