package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"surfcast/internal/clients"
	"surfcast/internal/models"
	"surfcast/internal/repository"
	"surfcast/pkg/logging"
	"surfcast/pkg/metrics"
)

// Scheduled expiry checkpoints, local time. Reports go stale at the next
// checkpoint even when conditions never change enough to trip the hash.
var expiryCheckpoints = []int{4, 23}

// reportGenerator is the language-model collaborator surface.
type reportGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// conditionsProvider supplies live scored snapshots for a spot.
type conditionsProvider interface {
	Snapshot(ctx context.Context, profile models.SpotProfile, lat, lon float64) (*ConditionsSnapshot, error)
}

// ReportService serves narrative surf reports from a (spot, locale) cache
// invalidated by a quantized conditions hash or a twice-daily scheduled
// expiry. Regeneration failure degrades to the most recent cached row.
type ReportService struct {
	repo       repository.ReportRepository
	conditions conditionsProvider
	generator  reportGenerator
	locker     RegenLocker
	clock      clockwork.Clock
	location   *time.Location
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewReportService creates a new report service
func NewReportService(
	repo repository.ReportRepository,
	conditions conditionsProvider,
	generator reportGenerator,
	locker RegenLocker,
	clock clockwork.Clock,
	location *time.Location,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ReportService {
	return &ReportService{
		repo:       repo,
		conditions: conditions,
		generator:  generator,
		locker:     locker,
		clock:      clock,
		location:   location,
		logger:     logger,
		metrics:    metricsCollector,
	}
}

// NextScheduledExpiry returns the soonest checkpoint strictly after now,
// rolling to the first checkpoint of the next day when none remains today.
func NextScheduledExpiry(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	for _, hour := range expiryCheckpoints {
		candidate := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
		if candidate.After(local) {
			return candidate
		}
	}
	next := local.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), expiryCheckpoints[0], 0, 0, 0, loc)
}

// GetReport runs the cache state machine for one (spot, locale) pair and
// always returns a best-effort response when any cached row exists.
func (s *ReportService) GetReport(ctx context.Context, profile models.SpotProfile, lat, lon float64, locale string) (*models.ReportResponse, error) {
	now := s.clock.Now()

	cached, err := s.repo.Get(ctx, profile.Name, locale)
	if err != nil {
		var notFound *repository.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("report cache read failed: %w", err)
		}
		cached = nil
	}

	snap, err := s.conditions.Snapshot(ctx, profile, lat, lon)
	if err != nil {
		// No live conditions: a cached row, even expired, beats a failure.
		if cached != nil {
			s.logger.Warn(ctx, "[REPORT] Snapshot failed, serving fallback", logging.Fields{
				"spot":   profile.Name,
				"locale": locale,
				"error":  err.Error(),
			})
			s.metrics.ReportFallbacksTotal.Inc()
			return responseFrom(cached, models.ReportSourceFallback), nil
		}
		return nil, err
	}

	hash := ConditionsHash(snap)

	if cached != nil && now.Before(cached.ExpiresAt) && cached.ConditionsHash == hash {
		s.metrics.RecordCacheHit("report")
		return responseFrom(cached, models.ReportSourceCached), nil
	}

	reason := staleReason(cached, now, hash)
	s.metrics.RecordCacheMiss("report", reason)
	s.logger.Info(ctx, "[REPORT] Regenerating report", logging.Fields{
		"spot":   profile.Name,
		"locale": locale,
		"reason": reason,
	})

	fresh, err := s.regenerate(ctx, profile, locale, snap, hash, now)
	if err != nil {
		if cached != nil {
			s.logger.Warn(ctx, "[REPORT] Regeneration failed, serving fallback", logging.Fields{
				"spot":   profile.Name,
				"locale": locale,
				"error":  err.Error(),
			})
			s.metrics.ReportFallbacksTotal.Inc()
			return responseFrom(cached, models.ReportSourceFallback), nil
		}
		return nil, err
	}

	return responseFrom(fresh, models.ReportSourceFresh), nil
}

// staleReason labels why the cache state machine left the Fresh state.
func staleReason(cached *models.CachedReport, now time.Time, hash string) string {
	switch {
	case cached == nil:
		return "empty"
	case !now.Before(cached.ExpiresAt):
		return "expired"
	case cached.ConditionsHash != hash:
		return "conditions_changed"
	default:
		return "unknown"
	}
}

// regenerate calls the language model, parses its output, and persists the
// result. Unparseable output after the full fallback chain yields a
// synthesized minimal report rather than an error.
func (s *ReportService) regenerate(ctx context.Context, profile models.SpotProfile, locale string, snap *ConditionsSnapshot, hash string, now time.Time) (*models.CachedReport, error) {
	acquired, release := s.locker.TryAcquire(ctx, fmt.Sprintf("%s:%s", profile.Name, locale))
	defer release()
	if !acquired {
		// Another request is already generating; re-read its result if it
		// landed, otherwise generate anyway (duplicates are tolerated).
		// An expiry-triggered regeneration keeps the same hash, so the
		// re-read row only counts as the competitor's result while it is
		// still unexpired.
		if row, err := s.repo.Get(ctx, profile.Name, locale); err == nil &&
			row.ConditionsHash == hash && now.Before(row.ExpiresAt) {
			return row, nil
		}
	}

	timer := time.Now()
	defer func() {
		s.metrics.ReportGenerationSeconds.Observe(time.Since(timer).Seconds())
	}()

	raw, err := s.generator.Generate(ctx, systemPrompt(locale), userPrompt(profile, snap))
	if err != nil {
		s.metrics.ReportGenerationsTotal.WithLabelValues("upstream_error").Inc()
		return nil, err
	}

	payload, err := clients.ParseReport(raw)
	if err != nil {
		var parseErr *clients.ReportParseError
		if !errors.As(err, &parseErr) {
			return nil, err
		}
		s.metrics.ReportGenerationsTotal.WithLabelValues("unparseable").Inc()
		s.logger.Warn(ctx, "[REPORT] Unparseable model output, synthesizing default", logging.Fields{
			"spot":   profile.Name,
			"locale": locale,
			"reason": parseErr.Reason,
		})
		payload = defaultReport(profile, snap)
	} else {
		s.metrics.ReportGenerationsTotal.WithLabelValues("success").Inc()
	}

	report := &models.CachedReport{
		SpotName:       profile.Name,
		Locale:         locale,
		Title:          payload.Title,
		Summary:        payload.Summary,
		Verdict:        payload.Verdict,
		ConditionsHash: hash,
		UpdatedAt:      now.UTC(),
		ExpiresAt:      NextScheduledExpiry(now, s.location),
	}

	if err := s.repo.Upsert(ctx, report); err != nil {
		return nil, fmt.Errorf("report cache write failed: %w", err)
	}

	return report, nil
}

// defaultReport synthesizes a minimal report from the numeric snapshot for
// the unrecoverable-output path.
func defaultReport(profile models.SpotProfile, snap *ConditionsSnapshot) models.ReportPayload {
	verdict := models.VerdictNoGo
	switch {
	case snap.Score.Score >= 65:
		verdict = models.VerdictGo
	case snap.Score.Score >= 40:
		verdict = models.VerdictConditional
	}

	return models.ReportPayload{
		Title:   fmt.Sprintf("%s: %s", profile.Name, snap.Score.Rating),
		Summary: fmt.Sprintf("Around %.1f m faces at %.0f s. Conditions score %.0f/100.", snap.EffectiveHeightM, snap.Marine.SwellPeriodS, snap.Score.Score),
		Verdict: verdict,
	}
}

func systemPrompt(locale string) string {
	return fmt.Sprintf(
		"You are a surf forecaster writing short spot reports in locale %q. "+
			"Respond with strict JSON only: {\"title\": string, \"summary\": string, \"verdict\": \"GO\"|\"CONDITIONAL\"|\"NO-GO\"}. "+
			"No markdown, no extra text.", locale)
}

func userPrompt(profile models.SpotProfile, snap *ConditionsSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Spot: %s (%s break, %s level, faces %.0f deg)\n", profile.Name, profile.Type, profile.Skill, profile.OrientationDeg)
	fmt.Fprintf(&b, "Effective wave height: %.1f m (optimal %.1f-%.1f m)\n", snap.EffectiveHeightM, profile.OptimalHeight.Min, profile.OptimalHeight.Max)
	fmt.Fprintf(&b, "Swell: %.1f m at %.0f s from %.0f deg\n", snap.Marine.SwellHeightM, snap.Marine.SwellPeriodS, snap.Marine.SwellDirectionDeg)
	fmt.Fprintf(&b, "Wind: %.0f km/h from %.0f deg\n", snap.Marine.WindSpeedKmh, snap.Marine.WindDirectionDeg)
	if snap.TideHeightM != nil {
		fmt.Fprintf(&b, "Tide: %.2f m (%s)\n", *snap.TideHeightM, snap.TideStage)
	}
	fmt.Fprintf(&b, "Quality score: %.0f/100 (%s)\n", snap.Score.Score, snap.Score.Rating)
	fmt.Fprintf(&b, "Breakdown: height %.1f, direction %.1f, period %.1f, wind %.1f, tide %.1f, bonus %.1f\n",
		snap.Score.Breakdown.Height, snap.Score.Breakdown.Direction, snap.Score.Breakdown.Period,
		snap.Score.Breakdown.Wind, snap.Score.Breakdown.Tide, snap.Score.Breakdown.SpotBonus)
	if len(snap.Score.Warnings) > 0 {
		fmt.Fprintf(&b, "Warnings: %s\n", strings.Join(snap.Score.Warnings, "; "))
	}
	return b.String()
}

// responseFrom shapes a cached row into the endpoint response.
func responseFrom(report *models.CachedReport, source models.ReportSource) *models.ReportResponse {
	return &models.ReportResponse{
		SpotName:  report.SpotName,
		Locale:    report.Locale,
		Title:     report.Title,
		Summary:   report.Summary,
		Verdict:   report.Verdict,
		Source:    source,
		UpdatedAt: report.UpdatedAt,
		ExpiresAt: report.ExpiresAt,
	}
}
