package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"surfcast/internal/clients"
	"surfcast/internal/models"
	"surfcast/internal/repository"
	"surfcast/pkg/logging"
	"surfcast/pkg/metrics"
)

const (
	// fetchSpanDays is the width of one bulk tide fetch.
	fetchSpanDays = 7
	// fetchIntervalDays throttles upstream calls regardless of traffic.
	fetchIntervalDays = 5
	// lookaheadDays is the minimum future buffer that must stay cached.
	lookaheadDays = 3
	// retentionDays is how far back cached tide days are kept.
	retentionDays = 7
)

// FetchDecision is the outcome of one staleness check.
type FetchDecision struct {
	ShouldFetch bool      `json:"should_fetch"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Reason      string    `json:"reason"`
}

// tideFetcher is the upstream tide collaborator surface the scheduler needs.
type tideFetcher interface {
	SeaLevelRange(ctx context.Context, lat, lon float64, startDate time.Time, days int) (*clients.TideSeries, error)
}

// TideService decides when tide data must be refetched, performs the bulk
// refresh, and serves cached tide curves. Refresh decisions are evaluated
// lazily on the request path; there is no background scheduler.
type TideService struct {
	repo     repository.TideRepository
	fetcher  tideFetcher
	clock    clockwork.Clock
	location *time.Location
	lat      float64
	lon      float64
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewTideService creates a new tide service
func NewTideService(
	repo repository.TideRepository,
	fetcher tideFetcher,
	clock clockwork.Clock,
	location *time.Location,
	lat, lon float64,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *TideService {
	return &TideService{
		repo:     repo,
		fetcher:  fetcher,
		clock:    clock,
		location: location,
		lat:      lat,
		lon:      lon,
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// localDay truncates t to midnight in the service-local timezone.
func (s *TideService) localDay(t time.Time) time.Time {
	lt := t.In(s.location)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, s.location)
}

// Today returns the current service-local calendar day.
func (s *TideService) Today() time.Time {
	return s.localDay(s.clock.Now())
}

// dayComplete reports whether a date is present and complete in cache.
func (s *TideService) dayComplete(ctx context.Context, date time.Time) (bool, error) {
	_, err := s.repo.GetDay(ctx, date)
	if err == nil {
		return true, nil
	}
	var notFound *repository.NotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, err
}

// Decide evaluates the refresh rules for the given day, in order: today
// missing, no prior fetch, fetch interval elapsed, lookahead buffer broken.
func (s *TideService) Decide(ctx context.Context, today time.Time) (FetchDecision, error) {
	today = s.localDay(today)
	span := FetchDecision{
		ShouldFetch: true,
		StartDate:   today,
		EndDate:     today.AddDate(0, 0, fetchSpanDays-1),
	}

	todayOK, err := s.dayComplete(ctx, today)
	if err != nil {
		return FetchDecision{}, fmt.Errorf("failed to check today's cache: %w", err)
	}
	if !todayOK {
		span.Reason = "no data for today"
		return span, nil
	}

	lastFetch, err := s.repo.LatestFetchLog(ctx)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			span.Reason = "no previous fetch"
			return span, nil
		}
		return FetchDecision{}, fmt.Errorf("failed to read fetch log: %w", err)
	}

	elapsed := int(today.Sub(s.localDay(lastFetch.FetchDate)).Hours() / 24)
	if elapsed >= fetchIntervalDays {
		span.Reason = fmt.Sprintf("last fetch %d days ago", elapsed)
		return span, nil
	}

	lookahead := today.AddDate(0, 0, lookaheadDays)
	lookaheadOK, err := s.dayComplete(ctx, lookahead)
	if err != nil {
		return FetchDecision{}, fmt.Errorf("failed to check lookahead cache: %w", err)
	}
	if !lookaheadOK {
		span.Reason = fmt.Sprintf("missing future date %s", lookahead.Format("2006-01-02"))
		return span, nil
	}

	return FetchDecision{ShouldFetch: false, Reason: "cache fresh"}, nil
}

// EnsureFresh runs the staleness check and, when needed, performs the bulk
// fetch: upstream call, grouping by local calendar date, and a single
// transactional range replacement whose fetch-log row marks success.
func (s *TideService) EnsureFresh(ctx context.Context) error {
	today := s.Today()

	decision, err := s.Decide(ctx, today)
	if err != nil {
		return err
	}
	if !decision.ShouldFetch {
		return nil
	}

	s.logger.Info(ctx, "[TIDE_REFRESH] Bulk tide fetch triggered", logging.Fields{
		"reason":     decision.Reason,
		"start_date": decision.StartDate.Format("2006-01-02"),
		"end_date":   decision.EndDate.Format("2006-01-02"),
	})
	s.metrics.TideFetchesTotal.WithLabelValues(decision.Reason).Inc()

	timer := time.Now()
	defer func() {
		s.metrics.TideFetchDuration.Observe(time.Since(timer).Seconds())
	}()

	series, err := s.fetcher.SeaLevelRange(ctx, s.lat, s.lon, decision.StartDate, fetchSpanDays)
	if err != nil {
		return fmt.Errorf("bulk tide fetch failed: %w", err)
	}

	days := s.groupByLocalDate(series, decision.StartDate, decision.EndDate)
	if len(days) == 0 {
		return &clients.UpstreamMalformedError{
			Collaborator: "tide",
			Reason:       "fetched range contained no usable days",
		}
	}

	entry := &models.FetchLogEntry{
		FetchDate:   today,
		StartDate:   decision.StartDate,
		EndDate:     decision.EndDate,
		DaysFetched: len(days),
	}

	if err := s.repo.ReplaceRange(ctx, days, entry); err != nil {
		return fmt.Errorf("tide range replacement failed: %w", err)
	}

	if _, err := s.repo.RetentionSweep(ctx, today.AddDate(0, 0, -retentionDays)); err != nil {
		// The fetch already succeeded; a sweep failure only delays cleanup.
		s.logger.Warn(ctx, "[TIDE_REFRESH] Retention sweep failed", logging.Fields{
			"error": err.Error(),
		})
	}

	return nil
}

// groupByLocalDate buckets upstream hourly and extreme records by their
// local calendar date, keeping only dates inside the fetched range so the
// replacement never touches other days.
func (s *TideService) groupByLocalDate(series *clients.TideSeries, start, end time.Time) []*models.CachedTideDay {
	byDate := make(map[string]*models.CachedTideDay)

	dayFor := func(t time.Time) *models.CachedTideDay {
		date := s.localDay(t)
		if date.Before(start) || date.After(end) {
			return nil
		}
		key := date.Format("2006-01-02")
		day, ok := byDate[key]
		if !ok {
			day = &models.CachedTideDay{Date: date}
			byDate[key] = day
		}
		return day
	}

	for _, p := range series.Hourly {
		local := time.Unix(p.Unix, 0).In(s.location)
		day := dayFor(local)
		if day == nil {
			continue
		}
		day.Hourly = append(day.Hourly, models.HourlyTideSample{
			Date:    day.Date,
			Hour:    local.Hour(),
			HeightM: p.HeightM,
		})
	}

	for _, e := range series.Extremes {
		local := time.Unix(e.Unix, 0).In(s.location)
		day := dayFor(local)
		if day == nil {
			continue
		}
		day.Extremes = append(day.Extremes, models.TideExtreme{
			Date:    day.Date,
			Time:    local,
			HeightM: e.HeightM,
			Type:    e.Type,
		})
	}

	var days []*models.CachedTideDay
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if day, ok := byDate[d.Format("2006-01-02")]; ok {
			days = append(days, day)
		}
	}
	return days
}

// TideCurve ensures the cache is fresh and returns the curve for a date.
func (s *TideService) TideCurve(ctx context.Context, date time.Time) (*models.CachedTideDay, error) {
	if err := s.EnsureFresh(ctx); err != nil {
		// A failed refresh is tolerable when the requested day is already
		// cached and complete.
		s.logger.Warn(ctx, "[TIDE_CURVE] Refresh failed, trying cache", logging.Fields{
			"error": err.Error(),
		})
	}

	day, err := s.repo.GetDay(ctx, s.localDay(date))
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			s.metrics.RecordCacheMiss("tide", "incomplete_day")
		}
		return nil, err
	}

	s.metrics.RecordCacheHit("tide")
	return day, nil
}

// CurrentTide returns the cached tide height for the current local hour
// plus a coarse stage derived from the day's range. Both degrade to the
// unknown case when the day is not cached.
func (s *TideService) CurrentTide(ctx context.Context) (*float64, models.TideStage) {
	now := s.clock.Now().In(s.location)

	day, err := s.repo.GetDay(ctx, s.localDay(now))
	if err != nil {
		return nil, models.TideStageUnknown
	}

	height, ok := day.HeightAt(now.Hour())
	if !ok {
		return nil, models.TideStageUnknown
	}

	return &height, stageWithinDay(height, day)
}

// stageWithinDay places a height into low/mid/high thirds of the day's
// hourly range.
func stageWithinDay(height float64, day *models.CachedTideDay) models.TideStage {
	min, max := day.Hourly[0].HeightM, day.Hourly[0].HeightM
	for _, s := range day.Hourly[1:] {
		if s.HeightM < min {
			min = s.HeightM
		}
		if s.HeightM > max {
			max = s.HeightM
		}
	}

	span := max - min
	if span <= 0 {
		return models.TideStageMid
	}

	pos := (height - min) / span
	switch {
	case pos < 1.0/3.0:
		return models.TideStageLow
	case pos > 2.0/3.0:
		return models.TideStageHigh
	default:
		return models.TideStageMid
	}
}
