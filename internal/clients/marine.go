package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"surfcast/pkg/logging"
	"surfcast/pkg/metrics"
)

// currentMarineFields are the fields requested from the marine forecast API.
var currentMarineFields = []string{
	"wave_height",
	"wave_period",
	"wave_direction",
	"swell_wave_height",
	"swell_wave_period",
	"swell_wave_direction",
	"wind_wave_height",
	"wind_speed_10m",
	"wind_direction_10m",
	"sea_surface_temperature",
}

// CurrentMarine is a snapshot of live marine conditions at a point.
type CurrentMarine struct {
	WaveHeightM       float64 `json:"wave_height"`
	WavePeriodS       float64 `json:"wave_period"`
	WaveDirectionDeg  float64 `json:"wave_direction"`
	SwellHeightM      float64 `json:"swell_wave_height"`
	SwellPeriodS      float64 `json:"swell_wave_period"`
	SwellDirectionDeg float64 `json:"swell_wave_direction"`
	WindWaveHeightM   float64 `json:"wind_wave_height"`
	WindSpeedKmh      float64 `json:"wind_speed_10m"`
	WindDirectionDeg  float64 `json:"wind_direction_10m"`
	SeaTemperatureC   float64 `json:"sea_surface_temperature"`
}

// MarineClient fetches live marine-weather fields for a coordinate.
// Each call carries its own timeout independent of the request deadline.
type MarineClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewMarineClient creates a new marine-weather API client
func NewMarineClient(baseURL string, timeout time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *MarineClient {
	return &MarineClient{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// Current fetches the current marine conditions for the given coordinates.
func (c *MarineClient) Current(ctx context.Context, lat, lon float64) (*CurrentMarine, error) {
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current=%s&timezone=auto",
		c.baseURL, lat, lon, strings.Join(currentMarineFields, ","))

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	timer := time.Now()
	defer func() {
		c.metrics.UpstreamRequestDuration.WithLabelValues("marine").Observe(time.Since(timer).Seconds())
	}()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build marine request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamError("marine", "transport")
		return nil, classifyError("marine", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.RecordUpstreamError("marine", "status")
		return nil, &UpstreamMalformedError{
			Collaborator: "marine",
			Reason:       fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var payload struct {
		Current CurrentMarine `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.RecordUpstreamError("marine", "decode")
		return nil, &UpstreamMalformedError{Collaborator: "marine", Reason: "undecodable body", Err: err}
	}

	c.logger.Debug(ctx, "[MARINE_FETCH] Current conditions fetched", logging.Fields{
		"lat":          lat,
		"lon":          lon,
		"wave_height":  payload.Current.WaveHeightM,
		"swell_height": payload.Current.SwellHeightM,
	})

	return &payload.Current, nil
}
