package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/jisoo/quantfolio/internal/engine"
	"github.com/jisoo/quantfolio/internal/frontier"
	"github.com/jisoo/quantfolio/internal/montecarlo"
	"github.com/jisoo/quantfolio/pkg/logger"
)

// SimulateHandler serves Monte Carlo forward simulations, over plain HTTP
// and over a websocket that streams progress for long runs.
type SimulateHandler struct {
	engine   *engine.Engine
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// SimulateRequest is the simulation request body. Zero-valued optional
// fields fall back to engine defaults.
type SimulateRequest struct {
	Portfolio         frontier.Point `json:"portfolio"`
	InitialInvestment float64        `json:"initial_investment"`
	Years             int            `json:"years"`
	NumSimulations    int            `json:"num_simulations"`
}

// NewSimulateHandler creates a simulate handler.
func NewSimulateHandler(eng *engine.Engine, log *logger.Logger) *SimulateHandler {
	return &SimulateHandler{
		engine: eng,
		logger: log.WithComponent("simulate-handler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The browser UI runs on a different origin in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Simulate runs a simulation synchronously and returns the full result.
// POST /api/simulate
func (h *SimulateHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.engine.Simulate(r.Context(), req.Portfolio, req.toConfig())
	if err != nil {
		if errors.Is(err, montecarlo.ErrInvalidConfig) {
			respondError(w, http.StatusBadRequest, "invalid simulation parameters")
			return
		}
		if errors.Is(err, context.Canceled) {
			// Client went away; nothing to write.
			return
		}
		h.logger.WithError(err).Error("Simulation failed")
		respondError(w, http.StatusInternalServerError, "simulation failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// wsMessage is one frame on the simulation websocket.
type wsMessage struct {
	Type   string              `json:"type"` // progress | result | error
	Done   int                 `json:"done,omitempty"`
	Total  int                 `json:"total,omitempty"`
	Result *montecarlo.Result  `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// SimulateWS runs a simulation and streams progress frames followed by the
// final result. The client sends one SimulateRequest frame; closing the
// connection aborts the run.
// GET /api/simulate/ws
func (h *SimulateHandler) SimulateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req SimulateRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(wsMessage{Type: "error", Error: "invalid request frame"})
		return
	}

	// Abort the run when the client disconnects.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	result, err := h.engine.SimulateWithProgress(ctx, req.Portfolio, req.toConfig(), func(done, total int) {
		conn.WriteJSON(wsMessage{Type: "progress", Done: done, Total: total})
	})
	if err != nil {
		if ctx.Err() == nil {
			conn.WriteJSON(wsMessage{Type: "error", Error: err.Error()})
		}
		return
	}

	conn.WriteJSON(wsMessage{Type: "result", Result: result})
}

func (r SimulateRequest) toConfig() montecarlo.Config {
	cfg := montecarlo.DefaultConfig()
	if r.NumSimulations != 0 {
		cfg.NumSimulations = r.NumSimulations
	}
	cfg.Years = r.Years
	if r.InitialInvestment != 0 {
		cfg.InitialInvestment = r.InitialInvestment
	}
	// Engine fills sampling limits and worker count.
	cfg.PathSampleLimit = 0
	cfg.DrawdownSamplePaths = 0
	cfg.Workers = 0
	return cfg
}
