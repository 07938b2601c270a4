package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ecoweather/eco-weather-service/internal/client"
	"github.com/ecoweather/eco-weather-service/internal/models"
	"github.com/ecoweather/eco-weather-service/internal/service"
	"github.com/ecoweather/eco-weather-service/internal/upstream"
	"github.com/ecoweather/eco-weather-service/internal/validation"
)

// ReportProvider is the orchestrator surface the handlers need.
type ReportProvider interface {
	GetReport(ctx context.Context, city string, unit service.Unit, includeRaw bool) (models.Report, error)
}

// HealthConfig holds thresholds for the per-provider health checks.
type HealthConfig struct {
	Window   time.Duration
	ErrorPct int
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	reports      ReportProvider
	health       *upstream.Health
	healthConfig HealthConfig
	logger       *zap.Logger
	cityMinLen   int
	cityMaxLen   int

	shuttingDown     atomic.Bool
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(reports ReportProvider, health *upstream.Health, healthConfig HealthConfig, logger *zap.Logger, cityMinLen, cityMaxLen int) *Handler {
	return &Handler{
		reports:      reports,
		health:       health,
		healthConfig: healthConfig,
		logger:       logger,
		cityMinLen:   cityMinLen,
		cityMaxLen:   cityMaxLen,
	}
}

// SetShuttingDown marks the service as draining; /health reports
// shutting-down with 503 afterwards. Call once from main on shutdown.
func (h *Handler) SetShuttingDown() {
	h.shuttingDown.Store(true)
}

// GetReport handles GET /report/{city}.
// Query params: units=celsius|fahrenheit (default celsius), raw=true|false.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	city, err := validation.ValidateCity(mux.Vars(r)["city"], h.cityMinLen, h.cityMaxLen)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_CITY", err.Error())
		return
	}

	unit, err := service.ParseUnit(r.URL.Query().Get("units"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_UNITS", "units must be celsius or fahrenheit")
		return
	}
	includeRaw := r.URL.Query().Get("raw") == "true"

	report, err := h.reports.GetReport(r.Context(), city, unit, includeRaw)
	if err != nil {
		if errors.Is(err, client.ErrLocationNotFound) {
			writeError(w, r, http.StatusNotFound, "LOCATION_NOT_FOUND",
				"Could not find this city. Try a different spelling or include the country (e.g. 'Delhi, India').")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
	checks     map[string]string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	resp := map[string]interface{}{
		"status":    result.status,
		"service":   "eco-weather-service",
		"version":   "dev",
		"checks":    result.checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// computeHealthStatus evaluates per-provider error rates inside the
// configured window. Geocoding and forecast trouble mark the service
// degraded with 503; air-quality trouble alone stays 200 because the
// pipeline degrades gracefully without it.
func (h *Handler) computeHealthStatus() healthResult {
	checks := make(map[string]string, len(upstream.Providers))
	for _, p := range upstream.Providers {
		checks[string(p)] = "healthy"
	}

	if h.shuttingDown.Load() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal", checks}
	}

	unhealthy := func(p upstream.Provider) bool {
		if h.health == nil || h.healthConfig.Window <= 0 || h.healthConfig.ErrorPct <= 0 {
			return false
		}
		errs, total := h.health.ErrorRate(p, h.healthConfig.Window)
		if total == 0 {
			return false
		}
		return float64(errs)*100/float64(total) >= float64(h.healthConfig.ErrorPct)
	}

	fatalDegraded := false
	for _, p := range upstream.Providers {
		if unhealthy(p) {
			checks[string(p)] = "unhealthy"
			if p != upstream.ProviderAirQuality {
				fatalDegraded = true
			}
		}
	}

	if fatalDegraded {
		return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach", checks}
	}
	if checks[string(upstream.ProviderAirQuality)] == "unhealthy" {
		return healthResult{"degraded", http.StatusOK, "air_quality_error_rate", checks}
	}
	return healthResult{"healthy", http.StatusOK, "", checks}
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard format with code,
// message, and requestId (correlation ID) if present in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// writeServiceError writes a 503 for upstream failures. Logs the underlying
// error at DEBUG with its stable category when a request logger is present.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Unable to fetch weather data")
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		logger.Debug("upstream error",
			zap.String("category", string(client.CategorizeError(err))),
			zap.Error(err))
	}
}
