package scoring

import (
	"math"

	"surfcast/internal/models"
)

// defaultSizeResponse is the height-correction tuning applied to spots
// that define no per-spot constants.
var defaultSizeResponse = models.SizeResponse{
	Base:        1.00,
	DirBoost:    0.15,
	PeriodRef:   10,
	PeriodSlope: 0.015,
	TideBoost:   0.08,
	MinFactor:   0.80,
	MaxFactor:   1.40,
}

// windSeaWeight is the contribution weight of wind-wave height when
// combining it with ground swell into a face height. Sheltered reef and
// point setups filter out more wind sea than open beach breaks.
func windSeaWeight(t models.SpotType) float64 {
	switch t {
	case models.SpotTypeReef:
		return 0.35
	case models.SpotTypePoint:
		return 0.40
	case models.SpotTypeBeach:
		return 0.55
	default:
		return 0.50
	}
}

// EffectiveHeight converts raw swell and wind-wave components into one
// spot-corrected wave height in meters. The raw swell height is never
// mutated; only the derived effective height carries the correction.
func EffectiveHeight(cond models.WaveConditions, p models.SpotProfile) float64 {
	gamma := windSeaWeight(p.Type)
	combined := math.Sqrt(cond.SwellHeightM*cond.SwellHeightM +
		gamma*cond.WindWaveHeightM*gamma*cond.WindWaveHeightM)
	if combined == 0 {
		// No component breakdown available; fall back to the raw
		// reported wave height.
		combined = cond.WaveHeightM
	}

	sr := defaultSizeResponse
	if p.SizeResponse != nil {
		sr = *p.SizeResponse
	}

	dir := cond.SwellDirectionDeg
	if cond.SwellHeightM == 0 {
		dir = cond.WaveDirectionDeg
	}
	windowScore := SwellWindowScore(dir, p.SwellWindow)
	// Centered at 1 with symmetric gain/loss of up to DirBoost.
	dirFactor := 1 + sr.DirBoost*(windowScore-0.5)*2

	period := cond.SwellPeriodS
	if period == 0 {
		period = cond.WavePeriodS
	}
	// Long-period energy is amplified above the reference threshold,
	// never reduced below it.
	periodFactor := 1 + sr.PeriodSlope*math.Max(0, period-sr.PeriodRef)

	tideFactor := 1.0
	if p.TideWindow != nil && cond.TideHeightM != nil {
		penalty := sr.TidePenalty
		if penalty == 0 {
			penalty = 0.6 * sr.TideBoost
		}
		h := *cond.TideHeightM
		if h >= p.TideWindow.Min && h <= p.TideWindow.Max {
			tideFactor = 1 + sr.TideBoost
		} else {
			tideFactor = 1 - penalty
		}
	}

	factor := sr.Base * dirFactor * periodFactor * tideFactor
	if sr.MaxFactor > 0 {
		factor = clamp(factor, sr.MinFactor, sr.MaxFactor)
	}

	return combined * factor
}
