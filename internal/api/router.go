package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jisoo/quantfolio/internal/api/handlers"
	"github.com/jisoo/quantfolio/pkg/logger"
)

// NewRouter creates and configures the HTTP router. presetHandler may be
// nil when preset persistence is disabled; its routes are then omitted.
func NewRouter(
	optimizeHandler *handlers.OptimizeHandler,
	simulateHandler *handlers.SimulateHandler,
	correlationsHandler *handlers.CorrelationsHandler,
	presetHandler *handlers.PresetHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Optimizer
	api.HandleFunc("/optimize", optimizeHandler.Optimize).Methods("POST")

	// Simulator
	api.HandleFunc("/simulate", simulateHandler.Simulate).Methods("POST")
	api.HandleFunc("/simulate/ws", simulateHandler.SimulateWS).Methods("GET")

	// Correlation import
	api.HandleFunc("/correlations/import", correlationsHandler.Import).Methods("POST")

	// Presets (optional)
	if presetHandler != nil {
		api.HandleFunc("/presets", presetHandler.List).Methods("GET")
		api.HandleFunc("/presets", presetHandler.Save).Methods("POST")
		api.HandleFunc("/presets/{name}", presetHandler.Get).Methods("GET")
		api.HandleFunc("/presets/{name}", presetHandler.Delete).Methods("DELETE")
	}

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status.
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "quantfolio-api",
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
