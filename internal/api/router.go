package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/breakwatch/internal/api/handlers"
	"github.com/wonny/breakwatch/internal/api/stream"
	"github.com/wonny/breakwatch/internal/metrics"
	"github.com/wonny/breakwatch/pkg/logger"
)

// Routes bundles what the router serves. Hub, Jobs and Metrics may be nil.
type Routes struct {
	Snapshots *handlers.SnapshotHandler
	Hub       *stream.Hub
	Jobs      handlers.JobStatsSource
	Metrics   *metrics.Registry
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routing is configured in this function only
func NewRouter(routes Routes, log *logger.Logger) http.Handler {
	log = log.Component("http")
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if routes.Metrics != nil {
		r.Handle("/metrics", routes.Metrics.Handler()).Methods("GET")
	}

	if routes.Hub != nil {
		r.HandleFunc("/ws/snapshots", routes.Hub.ServeWS).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Snapshot endpoints
	api.HandleFunc("/snapshot", routes.Snapshots.GetSnapshot).Methods("GET")
	api.HandleFunc("/movers/gainers", routes.Snapshots.GetGainers).Methods("GET")
	api.HandleFunc("/movers/losers", routes.Snapshots.GetLosers).Methods("GET")
	api.HandleFunc("/breakouts", routes.Snapshots.GetBreakouts).Methods("GET")
	api.HandleFunc("/plans", routes.Snapshots.GetPlans).Methods("GET")
	api.HandleFunc("/refresh", routes.Snapshots.Refresh).Methods("POST")

	// Scheduler
	api.HandleFunc("/jobs", handlers.GetJobs(routes.Jobs)).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "breakwatch",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
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
