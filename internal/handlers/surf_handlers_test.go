package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"surfcast/internal/config"
	"surfcast/internal/models"
	"surfcast/pkg/logging"
	"surfcast/pkg/metrics"
)

var testMetrics = metrics.NewCollector("surfcast_handlers_test")

func testHandler(spots []config.SpotLocation) *SurfHandler {
	logger := logging.NewStructuredLogger("test", "0.0.0", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return NewSurfHandler(nil, nil, nil, spots, logger, testMetrics)
}

func TestListSpots_OnlySpotsWithCoordinates(t *testing.T) {
	h := testHandler([]config.SpotLocation{
		{Name: "uluwatu", Latitude: -8.829, Longitude: 115.085},
		{Name: "canggu", Latitude: -8.660, Longitude: 115.130},
	})

	router := mux.NewRouter()
	h.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/api/spots", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Spots []models.SpotProfile `json:"spots"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(body.Spots) != 2 {
		t.Fatalf("got %d spots, want 2 (registry entries without coordinates are hidden)", len(body.Spots))
	}
	for _, s := range body.Spots {
		if s.Name != "uluwatu" && s.Name != "canggu" {
			t.Errorf("unexpected spot %q in listing", s.Name)
		}
	}
}

func TestUnknownSpotReturns404(t *testing.T) {
	h := testHandler(nil)

	router := mux.NewRouter()
	h.RegisterRoutes(router)

	for _, path := range []string{
		"/api/spots/mavericks/conditions",
		"/api/spots/mavericks/tides",
		"/api/spots/mavericks/report",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}

		var resp ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("%s: decode error body: %v", path, err)
		}
		if resp.Code != http.StatusNotFound {
			t.Errorf("%s: body code = %d, want 404", path, resp.Code)
		}
	}
}

func TestRegisteredSpotWithoutCoordinatesReturns404(t *testing.T) {
	h := testHandler(nil)

	router := mux.NewRouter()
	h.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/api/spots/uluwatu/conditions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
