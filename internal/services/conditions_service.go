package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"surfcast/internal/clients"
	"surfcast/internal/models"
	"surfcast/internal/scoring"
	"surfcast/pkg/logging"
	"surfcast/pkg/metrics"
)

// marineFetcher is the marine-weather collaborator surface.
type marineFetcher interface {
	Current(ctx context.Context, lat, lon float64) (*clients.CurrentMarine, error)
}

// ConditionsSnapshot is one live view of a spot: raw marine readings, the
// spot-corrected effective height, and the quality score breakdown.
type ConditionsSnapshot struct {
	SpotName         string                `json:"spot_name"`
	Marine           clients.CurrentMarine `json:"marine"`
	EffectiveHeightM float64               `json:"effective_height_m"`
	TideHeightM      *float64              `json:"tide_height_m,omitempty"`
	TideStage        models.TideStage      `json:"tide_stage,omitempty"`
	Score            models.ScoreResult    `json:"score"`
}

// ConditionsService computes live scored conditions for a spot. Marine and
// tide lookups run concurrently; a tide failure degrades to the unknown
// tide case rather than failing the snapshot.
type ConditionsService struct {
	marine  marineFetcher
	tides   *TideService
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewConditionsService creates a new conditions service
func NewConditionsService(marine marineFetcher, tides *TideService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ConditionsService {
	return &ConditionsService{
		marine:  marine,
		tides:   tides,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Snapshot fetches current marine conditions and tide context for the spot
// and runs the correction and scoring model.
func (s *ConditionsService) Snapshot(ctx context.Context, profile models.SpotProfile, lat, lon float64) (*ConditionsSnapshot, error) {
	var (
		marine     *clients.CurrentMarine
		tideHeight *float64
		tideStage  models.TideStage
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m, err := s.marine.Current(gctx, lat, lon)
		if err != nil {
			return fmt.Errorf("marine snapshot for %s: %w", profile.Name, err)
		}
		marine = m
		return nil
	})

	g.Go(func() error {
		if err := s.tides.EnsureFresh(gctx); err != nil {
			// Best effort: score with unknown tide rather than fail.
			s.logger.Warn(gctx, "[CONDITIONS] Tide refresh failed, scoring without tide", logging.Fields{
				"spot":  profile.Name,
				"error": err.Error(),
			})
		}
		tideHeight, tideStage = s.tides.CurrentTide(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	cond := models.WaveConditions{
		SwellHeightM:      marine.SwellHeightM,
		SwellPeriodS:      marine.SwellPeriodS,
		SwellDirectionDeg: marine.SwellDirectionDeg,
		WindWaveHeightM:   marine.WindWaveHeightM,
		WaveHeightM:       marine.WaveHeightM,
		WavePeriodS:       marine.WavePeriodS,
		WaveDirectionDeg:  marine.WaveDirectionDeg,
		TideHeightM:       tideHeight,
	}

	effective := scoring.EffectiveHeight(cond, profile)

	period := cond.SwellPeriodS
	if period == 0 {
		period = cond.WavePeriodS
	}
	direction := cond.SwellDirectionDeg
	if cond.SwellHeightM == 0 {
		direction = cond.WaveDirectionDeg
	}

	result := scoring.Score(scoring.Input{
		HeightM:      effective,
		PeriodS:      period,
		DirectionDeg: direction,
		Wind:         models.KnownWind(marine.WindSpeedKmh, marine.WindDirectionDeg),
		Tide:         tideStage,
	}, profile)

	s.logger.Debug(ctx, "[CONDITIONS] Snapshot computed", logging.Fields{
		"spot":             profile.Name,
		"effective_height": effective,
		"score":            result.Score,
		"rating":           result.Rating,
	})

	return &ConditionsSnapshot{
		SpotName:         profile.Name,
		Marine:           *marine,
		EffectiveHeightM: effective,
		TideHeightM:      tideHeight,
		TideStage:        tideStage,
		Score:            result,
	}, nil
}
