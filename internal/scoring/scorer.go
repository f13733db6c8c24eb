package scoring

import (
	"fmt"
	"math"

	"surfcast/internal/models"
)

// Empirically tuned scoring constants. Preserved as-is from field tuning;
// no documented derivation exists beyond "looked right".
const (
	tooSmallFactor     = 0.5  // below this fraction of optimal min, unsurfable
	tooBigFactor       = 1.5  // above this multiple of optimal max, too big
	heightFalloffSlope = 18.0 // score lost per span-unit of distance outside the range
	minHeightSpan      = 0.5

	energyFloor = 15.0
	energyCeil  = 70.0

	offshoreArcDeg   = 45.0
	crossShoreArcDeg = 90.0

	directionWarnThreshold = 0.3
)

// Input is one scoring call: the spot-corrected effective wave height plus
// the raw period, direction and the optional wind/tide dimensions.
type Input struct {
	HeightM      float64
	PeriodS      float64
	DirectionDeg float64
	Wind         models.OptionalWind
	Tide         models.TideStage
}

// Score produces a bounded 0-100 quality score for the given conditions at
// the given spot, together with the per-factor breakdown, a skill-dependent
// rating bucket, and advisory warnings. All sub-scores and warnings are
// always returned; consumers display the breakdown.
func Score(in Input, p models.SpotProfile) models.ScoreResult {
	warnings := []string{}

	height := heightScore(in.HeightM, p.OptimalHeight, &warnings)
	direction := directionScore(in.DirectionDeg, p.SwellWindow, &warnings)
	period := periodScore(in.HeightM, in.PeriodS, p.Type)
	wind := windScore(in.Wind, p, &warnings)
	tide := tideScore(in.Tide, p.TidalRange, &warnings)
	bonus := spotBonus(p.Type, direction, period)

	total := clamp(height+direction+period+wind+tide+bonus, 0, 100)

	return models.ScoreResult{
		Score:  total,
		Rating: rating(total, p.Skill),
		Breakdown: models.ScoreBreakdown{
			Height:    height,
			Direction: direction,
			Period:    period,
			Wind:      wind,
			Tide:      tide,
			SpotBonus: bonus,
		},
		Warnings: warnings,
	}
}

// heightScore scores effective wave height against the spot's optimal
// range (0-25). Heights inside the range score the full 25; outside it the
// score drops harshly with distance to the nearer bound.
func heightScore(h float64, r models.HeightRange, warnings *[]string) float64 {
	if h < tooSmallFactor*r.Min {
		*warnings = append(*warnings, fmt.Sprintf("too small: %.1fm is well below the %.1f-%.1fm range", h, r.Min, r.Max))
		return 0
	}
	if h > tooBigFactor*r.Max {
		*warnings = append(*warnings, fmt.Sprintf("too big: %.1fm exceeds the spot's %.1fm ceiling", h, r.Max))
		return 5
	}
	if h >= r.Min && h <= r.Max {
		return 25
	}

	span := math.Max(r.Max-r.Min, minHeightSpan)
	var d float64
	if h < r.Min {
		d = r.Min - h
	} else {
		d = h - r.Max
	}
	return clamp(25-heightFalloffSlope*(d/span), 2, 23)
}

// directionScore scores swell direction against the spot's swell window (0-25).
func directionScore(dir float64, window models.SwellWindow, warnings *[]string) float64 {
	ws := SwellWindowScore(dir, window)
	if ws < directionWarnThreshold {
		*warnings = append(*warnings, fmt.Sprintf("swell direction %.0f° is outside the spot's window", dir))
	}
	return ws * 25
}

// periodScore scores wave energy via the height²·period proxy (0-15,
// effectively capped at 12). Reefs convert long-period energy slightly
// better than beach breaks.
func periodScore(h, period float64, t models.SpotType) float64 {
	energy := h * h * period
	norm := clamp((energy-energyFloor)/(energyCeil-energyFloor), 0, 1)
	score := norm * 15

	switch t {
	case models.SpotTypeReef:
		score *= 1.05
	case models.SpotTypeBeach:
		score *= 0.85
	}

	return clamp(score, 0, 12)
}

// windScore classifies wind relative to the spot's offshore bearing and
// scores it on a per-class speed tier (0-18). The effective speed is scaled
// by wind sensitivity so that insensitive spots tolerate more wind before
// any penalty applies. An unknown wind reading is a modeled case scoring a
// neutral 12 with no warnings.
func windScore(wind models.OptionalWind, p models.SpotProfile, warnings *[]string) float64 {
	if !wind.Known {
		return 12
	}

	offshoreDir := normalizeAngle(p.OrientationDeg + 180)
	dist := angularDistance(wind.DirectionDeg, offshoreDir)

	speed := wind.SpeedKmh * (1 - 0.4*(1-p.WindSensitivity))

	switch {
	case dist <= offshoreArcDeg:
		return offshoreScore(speed, warnings)
	case dist <= crossShoreArcDeg:
		return crossShoreScore(speed, warnings)
	default:
		return onshoreScore(speed, warnings)
	}
}

func offshoreScore(speedKmh float64, warnings *[]string) float64 {
	switch {
	case speedKmh <= 8:
		return 18
	case speedKmh <= 15:
		return 16
	case speedKmh <= 22:
		return 13
	case speedKmh <= 30:
		*warnings = append(*warnings, "strong offshore gusts")
		return 8
	default:
		*warnings = append(*warnings, "strong offshore gusts")
		return 2
	}
}

func crossShoreScore(speedKmh float64, warnings *[]string) float64 {
	switch {
	case speedKmh <= 8:
		return 12
	case speedKmh <= 15:
		*warnings = append(*warnings, "cross-shore wind")
		return 9
	case speedKmh <= 25:
		*warnings = append(*warnings, "cross-shore wind")
		return 5
	default:
		*warnings = append(*warnings, "cross-shore wind")
		return 2
	}
}

func onshoreScore(speedKmh float64, warnings *[]string) float64 {
	switch {
	case speedKmh <= 5:
		return 10
	case speedKmh <= 8:
		*warnings = append(*warnings, "onshore chop")
		return 6
	default:
		*warnings = append(*warnings, "onshore chop")
		return 1
	}
}

// tideScore scores the supplied tide stage against the spot's preference
// (0-4). Spots tolerating all stages, or calls with no stage reading,
// score a neutral 2.
func tideScore(stage models.TideStage, pref models.TidalRange, warnings *[]string) float64 {
	if pref == models.TidalRangeAll || stage == models.TideStageUnknown {
		return 2
	}
	if string(stage) == string(pref) {
		return 4
	}

	score := 0.5
	if pref == models.TidalRangeMid {
		score = 1.5
	}
	if score < 2 {
		*warnings = append(*warnings, fmt.Sprintf("spot works best on %s tide, currently %s", pref, stage))
	}
	return score
}

// spotBonus awards additive bonuses for break types that excel when their
// defining factor lines up (0-3).
func spotBonus(t models.SpotType, directionScore, periodScore float64) float64 {
	bonus := 0.0
	if t == models.SpotTypePoint && directionScore >= 20 {
		bonus += 1.5
	}
	if t == models.SpotTypeReef && periodScore >= 10 {
		bonus += 1.5
	}
	return bonus
}

// rating maps a total score to a human bucket. Beginner spots use a
// 4-tier learning scale; everything else uses the 7-tier quality scale.
func rating(score float64, skill models.SkillLevel) string {
	if skill == models.SkillBeginner {
		switch {
		case score >= 70:
			return "Great for learning"
		case score >= 50:
			return "Good for learning"
		case score >= 30:
			return "Challenging for beginners"
		default:
			return "Not surfable"
		}
	}

	switch {
	case score >= 90:
		return "All-time"
	case score >= 80:
		return "Epic"
	case score >= 70:
		return "Very Good"
	case score >= 55:
		return "Good"
	case score >= 40:
		return "Fair"
	case score >= 25:
		return "Poor"
	default:
		return "Flat or very poor"
	}
}
