package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"surfcast/internal/models"
	"surfcast/pkg/logging"
	"surfcast/pkg/metrics"
)

// TidePoint is one hourly sea-level reading from the upstream API.
type TidePoint struct {
	Unix    int64   `json:"dt"`
	HeightM float64 `json:"height"`
}

// TideExtremeEvent is one upstream high/low water event.
type TideExtremeEvent struct {
	Unix    int64              `json:"dt"`
	HeightM float64            `json:"height"`
	Type    models.ExtremeType `json:"type"`
}

// TideSeries is a multi-day run of hourly heights plus extremes.
type TideSeries struct {
	Hourly   []TidePoint        `json:"heights"`
	Extremes []TideExtremeEvent `json:"extremes"`
}

// TideClient fetches hourly sea levels and high/low extremes for a
// coordinate. The refresh scheduler is the sole caller.
type TideClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewTideClient creates a new tide API client
func NewTideClient(baseURL string, timeout time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *TideClient {
	return &TideClient{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// SeaLevelRange fetches hourly (3600 s step) sea-level heights and extreme
// events for the given number of days starting at startDate.
func (c *TideClient) SeaLevelRange(ctx context.Context, lat, lon float64, startDate time.Time, days int) (*TideSeries, error) {
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&start_date=%s&days=%d&step=3600&extremes=true",
		c.baseURL, lat, lon, startDate.Format("2006-01-02"), days)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	timer := time.Now()
	defer func() {
		c.metrics.UpstreamRequestDuration.WithLabelValues("tide").Observe(time.Since(timer).Seconds())
	}()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tide request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamError("tide", "transport")
		return nil, classifyError("tide", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.RecordUpstreamError("tide", "status")
		return nil, &UpstreamMalformedError{
			Collaborator: "tide",
			Reason:       fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var series TideSeries
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		c.metrics.RecordUpstreamError("tide", "decode")
		return nil, &UpstreamMalformedError{Collaborator: "tide", Reason: "undecodable body", Err: err}
	}

	if len(series.Hourly) == 0 {
		c.metrics.RecordUpstreamError("tide", "empty")
		return nil, &UpstreamMalformedError{Collaborator: "tide", Reason: "no hourly heights returned"}
	}

	c.logger.Debug(ctx, "[TIDE_FETCH] Sea-level range fetched", logging.Fields{
		"start_date": startDate.Format("2006-01-02"),
		"days":       days,
		"hourly":     len(series.Hourly),
		"extremes":   len(series.Extremes),
	})

	return &series, nil
}
