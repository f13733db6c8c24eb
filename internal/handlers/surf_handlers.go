package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"surfcast/internal/config"
	"surfcast/internal/models"
	"surfcast/internal/services"
	"surfcast/pkg/logging"
	"surfcast/pkg/metrics"
)

// SurfHandler handles surf dashboard API endpoints
type SurfHandler struct {
	conditions *services.ConditionsService
	tides      *services.TideService
	reports    *services.ReportService
	spots      map[string]config.SpotLocation
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewSurfHandler creates a new surf handler
func NewSurfHandler(
	conditions *services.ConditionsService,
	tides *services.TideService,
	reports *services.ReportService,
	spotLocations []config.SpotLocation,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *SurfHandler {
	spots := make(map[string]config.SpotLocation, len(spotLocations))
	for _, loc := range spotLocations {
		spots[loc.Name] = loc
	}

	return &SurfHandler{
		conditions: conditions,
		tides:      tides,
		reports:    reports,
		spots:      spots,
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// spotFromRequest resolves the {name} path variable against the registry
// and the configured coordinates.
func (h *SurfHandler) spotFromRequest(w http.ResponseWriter, r *http.Request) (models.SpotProfile, config.SpotLocation, bool) {
	name := mux.Vars(r)["name"]

	profile, ok := models.LookupSpot(name)
	if !ok {
		h.sendError(w, r, "unknown spot: "+name, http.StatusNotFound)
		return models.SpotProfile{}, config.SpotLocation{}, false
	}

	loc, ok := h.spots[name]
	if !ok {
		h.sendError(w, r, "spot has no configured coordinates: "+name, http.StatusNotFound)
		return models.SpotProfile{}, config.SpotLocation{}, false
	}

	return profile, loc, true
}

// ListSpots handles GET /api/spots
func (h *SurfHandler) ListSpots(w http.ResponseWriter, r *http.Request) {
	profiles := models.AllSpots()

	// Only expose spots that have coordinates in this deployment.
	served := make([]models.SpotProfile, 0, len(profiles))
	for _, p := range profiles {
		if _, ok := h.spots[p.Name]; ok {
			served = append(served, p)
		}
	}

	h.metrics.RecordAPIRequest("/api/spots", "GET", "200")
	h.sendJSON(w, map[string]interface{}{"spots": served}, http.StatusOK)
}

// GetConditions handles GET /api/spots/{name}/conditions
func (h *SurfHandler) GetConditions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/spots/conditions").Observe(duration.Seconds())
	}()

	profile, loc, ok := h.spotFromRequest(w, r)
	if !ok {
		return
	}

	snapshot, err := h.conditions.Snapshot(ctx, profile, loc.Latitude, loc.Longitude)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_CONDITIONS_ERROR] Failed to compute conditions", logging.Fields{
			"spot": profile.Name,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/spots/conditions")
		h.sendError(w, r, "failed to compute conditions", http.StatusBadGateway)
		return
	}

	h.metrics.RecordAPIRequest("/api/spots/conditions", "GET", "200")
	h.sendJSON(w, snapshot, http.StatusOK)
}

// GetTides handles GET /api/spots/{name}/tides
func (h *SurfHandler) GetTides(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/spots/tides").Observe(duration.Seconds())
	}()

	if _, _, ok := h.spotFromRequest(w, r); !ok {
		return
	}

	date := h.tides.Today()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			h.sendError(w, r, "invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	day, err := h.tides.TideCurve(ctx, date)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_TIDES_ERROR] Failed to get tide curve", logging.Fields{
			"date": date.Format("2006-01-02"),
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/spots/tides")
		h.sendError(w, r, "tide data unavailable for "+date.Format("2006-01-02"), http.StatusServiceUnavailable)
		return
	}

	h.metrics.RecordAPIRequest("/api/spots/tides", "GET", "200")
	h.sendJSON(w, day, http.StatusOK)
}

// GetReport handles GET /api/spots/{name}/report
func (h *SurfHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/spots/report").Observe(duration.Seconds())
	}()

	profile, loc, ok := h.spotFromRequest(w, r)
	if !ok {
		return
	}

	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = "en"
	}

	report, err := h.reports.GetReport(ctx, profile, loc.Latitude, loc.Longitude, locale)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_REPORT_ERROR] Failed to get report", logging.Fields{
			"spot":   profile.Name,
			"locale": locale,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/spots/report")
		h.sendError(w, r, "report unavailable", http.StatusBadGateway)
		return
	}

	h.metrics.RecordAPIRequest("/api/spots/report", "GET", "200")
	h.sendJSON(w, report, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *SurfHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *SurfHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *SurfHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all surf API routes
func (h *SurfHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/spots", h.ListSpots).Methods("GET")
	router.HandleFunc("/api/spots/{name}/conditions", h.GetConditions).Methods("GET")
	router.HandleFunc("/api/spots/{name}/tides", h.GetTides).Methods("GET")
	router.HandleFunc("/api/spots/{name}/report", h.GetReport).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
