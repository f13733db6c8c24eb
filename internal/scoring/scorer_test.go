package scoring

import (
	"math"
	"strings"
	"testing"

	"surfcast/internal/models"
)

// eastCoastPoint is the reference profile used by the end-to-end cases.
func eastCoastPoint() models.SpotProfile {
	return models.SpotProfile{
		Name:            "test-point",
		OptimalHeight:   models.HeightRange{Min: 1.2, Max: 3.5},
		SwellWindow:     models.SwellWindow{Start: 30, End: 110},
		OrientationDeg:  70,
		TidalRange:      models.TidalRangeHigh,
		WindSensitivity: 1.0,
		Type:            models.SpotTypePoint,
		Skill:           models.SkillIntermediate,
	}
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestScore_EndToEndGoodDay(t *testing.T) {
	in := Input{
		HeightM:      2.0,
		PeriodS:      12,
		DirectionDeg: 70,
		Wind:         models.KnownWind(8, 250), // light offshore
		Tide:         models.TideStageHigh,
	}

	result := Score(in, eastCoastPoint())

	if result.Breakdown.Height != 25 {
		t.Errorf("height sub-score = %v, want 25", result.Breakdown.Height)
	}
	if result.Breakdown.Direction != 25 {
		t.Errorf("direction sub-score = %v, want 25", result.Breakdown.Direction)
	}
	// energy = 2^2 * 12 = 48 -> (48-15)/55 * 15 = 9
	if math.Abs(result.Breakdown.Period-9.0) > 1e-9 {
		t.Errorf("period sub-score = %v, want 9", result.Breakdown.Period)
	}
	if result.Breakdown.Wind != 18 {
		t.Errorf("wind sub-score = %v, want 18", result.Breakdown.Wind)
	}
	if result.Breakdown.Tide != 4 {
		t.Errorf("tide sub-score = %v, want 4", result.Breakdown.Tide)
	}
	if result.Breakdown.SpotBonus != 1.5 {
		t.Errorf("spot bonus = %v, want 1.5 (point with aligned swell)", result.Breakdown.SpotBonus)
	}
	if result.Score < 70 || result.Score > 95 {
		t.Errorf("total score = %v, want the Very Good/Epic band", result.Score)
	}
	if result.Rating != "Epic" && result.Rating != "Very Good" {
		t.Errorf("rating = %q, want Very Good or Epic", result.Rating)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings on a clean day: %v", result.Warnings)
	}
}

func TestScore_TooSmall(t *testing.T) {
	in := Input{
		HeightM:      0.2,
		PeriodS:      10,
		DirectionDeg: 70,
	}

	result := Score(in, eastCoastPoint())

	if result.Breakdown.Height != 0 {
		t.Errorf("height sub-score = %v, want 0", result.Breakdown.Height)
	}
	if !hasWarning(result.Warnings, "too small") {
		t.Errorf("expected a too-small warning, got %v", result.Warnings)
	}
}

func TestScore_HeightFull25AcrossOptimalRange(t *testing.T) {
	p := eastCoastPoint()
	for _, h := range []float64{1.2, 1.5, 2.0, 2.7, 3.2, 3.5} {
		result := Score(Input{HeightM: h, PeriodS: 10, DirectionDeg: 70}, p)
		if result.Breakdown.Height != 25 {
			t.Errorf("height %.1fm inside optimal range scored %v, want 25", h, result.Breakdown.Height)
		}
	}
}

func TestScore_HeightEdges(t *testing.T) {
	p := eastCoastPoint() // optimal [1.2, 3.5], span 2.3

	tests := []struct {
		name    string
		height  float64
		want    float64
		warning string
	}{
		{"too big above 1.5x max", 5.3, 5, "too big"},
		// 1.0m is 0.2 below min: 25 - 18*(0.2/2.3) = 23.43..., clamped to 23
		{"just under min clamps at 23", 1.0, 23, ""},
		// 0.61m is 0.59 below min: 25 - 18*(0.59/2.3) = 20.38
		{"falloff below min", 0.61, 25 - 18*(0.59/2.3), ""},
		// 4.5m is 1.0 above max: 25 - 18*(1.0/2.3) = 17.17
		{"falloff above max", 4.5, 25 - 18*(1.0/2.3), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Score(Input{HeightM: tt.height, PeriodS: 10, DirectionDeg: 70}, p)
			if math.Abs(result.Breakdown.Height-tt.want) > 1e-9 {
				t.Errorf("height %.2fm scored %v, want %v", tt.height, result.Breakdown.Height, tt.want)
			}
			if tt.warning != "" && !hasWarning(result.Warnings, tt.warning) {
				t.Errorf("expected %q warning, got %v", tt.warning, result.Warnings)
			}
		})
	}
}

func TestScore_DirectionWarning(t *testing.T) {
	in := Input{
		HeightM:      2.0,
		PeriodS:      10,
		DirectionDeg: 250, // opposite side of the window
	}

	result := Score(in, eastCoastPoint())

	if result.Breakdown.Direction != 0 {
		t.Errorf("direction sub-score = %v, want 0", result.Breakdown.Direction)
	}
	if !hasWarning(result.Warnings, "outside the spot's window") {
		t.Errorf("expected a direction warning, got %v", result.Warnings)
	}
}

func TestScore_PeriodCapAndTypeScaling(t *testing.T) {
	base := Input{HeightM: 3.0, PeriodS: 14, DirectionDeg: 70}
	// energy = 9*14 = 126, norm saturates at 1 -> raw 15.

	reef := eastCoastPoint()
	reef.Type = models.SpotTypeReef
	if got := Score(base, reef).Breakdown.Period; got != 12 {
		t.Errorf("reef period sub-score = %v, want capped 12", got)
	}

	beach := eastCoastPoint()
	beach.Type = models.SpotTypeBeach
	if got := Score(base, beach).Breakdown.Period; math.Abs(got-12) > 1e-9 {
		t.Errorf("beach period sub-score = %v, want 12 (15 * 0.85 = 12.75 capped)", got)
	}

	small := Input{HeightM: 1.0, PeriodS: 20, DirectionDeg: 70}
	// energy = 20, norm = 5/55, raw = 1.3636, beach scaled 1.159
	if got := Score(small, beach).Breakdown.Period; math.Abs(got-(5.0/55.0)*15*0.85) > 1e-9 {
		t.Errorf("beach small-energy period sub-score = %v", got)
	}
}

func TestScore_WindClasses(t *testing.T) {
	p := eastCoastPoint() // orientation 70, offshore bearing 250

	tests := []struct {
		name    string
		wind    models.OptionalWind
		want    float64
		warning string
	}{
		{"unknown wind is neutral", models.UnknownWind(), 12, ""},
		{"light offshore", models.KnownWind(8, 250), 18, ""},
		{"moderate offshore", models.KnownWind(14, 250), 16, ""},
		{"strong offshore warns", models.KnownWind(28, 250), 8, "strong offshore gusts"},
		{"howling offshore collapses", models.KnownWind(40, 250), 2, "strong offshore gusts"},
		{"cross-shore", models.KnownWind(12, 160), 9, "cross-shore"},
		{"light onshore", models.KnownWind(4, 70), 10, ""},
		{"moderate onshore warns", models.KnownWind(7, 70), 6, "onshore chop"},
		{"onshore collapses past 8", models.KnownWind(12, 70), 1, "onshore chop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Score(Input{HeightM: 2.0, PeriodS: 10, DirectionDeg: 70, Wind: tt.wind}, p)
			if result.Breakdown.Wind != tt.want {
				t.Errorf("wind sub-score = %v, want %v", result.Breakdown.Wind, tt.want)
			}
			if tt.warning != "" && !hasWarning(result.Warnings, tt.warning) {
				t.Errorf("expected %q warning, got %v", tt.warning, result.Warnings)
			}
		})
	}
}

func TestScore_WindSensitivityScaling(t *testing.T) {
	// A fully insensitive spot scales effective wind speed by 0.6, so a
	// 12 km/h onshore breeze acts like 7.2 km/h.
	p := eastCoastPoint()
	p.WindSensitivity = 0

	result := Score(Input{HeightM: 2.0, PeriodS: 10, DirectionDeg: 70, Wind: models.KnownWind(12, 70)}, p)
	if result.Breakdown.Wind != 6 {
		t.Errorf("insensitive spot wind sub-score = %v, want 6", result.Breakdown.Wind)
	}
}

func TestScore_TideStages(t *testing.T) {
	tests := []struct {
		name    string
		pref    models.TidalRange
		stage   models.TideStage
		want    float64
		warning bool
	}{
		{"matching stage", models.TidalRangeHigh, models.TideStageHigh, 4, false},
		{"all-tolerant spot", models.TidalRangeAll, models.TideStageLow, 2, false},
		{"unknown stage is neutral", models.TidalRangeHigh, models.TideStageUnknown, 2, false},
		{"mid preference mismatch is partial", models.TidalRangeMid, models.TideStageLow, 1.5, true},
		{"hard mismatch", models.TidalRangeHigh, models.TideStageLow, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := eastCoastPoint()
			p.TidalRange = tt.pref
			result := Score(Input{HeightM: 2.0, PeriodS: 10, DirectionDeg: 70, Tide: tt.stage}, p)
			if result.Breakdown.Tide != tt.want {
				t.Errorf("tide sub-score = %v, want %v", result.Breakdown.Tide, tt.want)
			}
			got := hasWarning(result.Warnings, "tide")
			if got != tt.warning {
				t.Errorf("tide warning present = %v, want %v", got, tt.warning)
			}
		})
	}
}

func TestScore_SpotBonuses(t *testing.T) {
	reef := eastCoastPoint()
	reef.Type = models.SpotTypeReef
	// energy saturated -> period 12 >= 10 triggers the reef bonus.
	result := Score(Input{HeightM: 3.0, PeriodS: 14, DirectionDeg: 70}, reef)
	if result.Breakdown.SpotBonus != 1.5 {
		t.Errorf("reef bonus = %v, want 1.5", result.Breakdown.SpotBonus)
	}

	beach := eastCoastPoint()
	beach.Type = models.SpotTypeBeach
	result = Score(Input{HeightM: 3.0, PeriodS: 14, DirectionDeg: 70}, beach)
	if result.Breakdown.SpotBonus != 0 {
		t.Errorf("beach bonus = %v, want 0", result.Breakdown.SpotBonus)
	}
}

func TestScore_BeginnerRatingScale(t *testing.T) {
	p := eastCoastPoint()
	p.Skill = models.SkillBeginner
	p.OptimalHeight = models.HeightRange{Min: 0.5, Max: 1.5}

	good := Score(Input{
		HeightM:      1.0,
		PeriodS:      10,
		DirectionDeg: 70,
		Wind:         models.KnownWind(5, 250),
		Tide:         models.TideStageHigh,
	}, p)
	if !strings.Contains(good.Rating, "learning") {
		t.Errorf("beginner rating = %q, want a learning-scale bucket", good.Rating)
	}

	flat := Score(Input{HeightM: 0.1, PeriodS: 5, DirectionDeg: 250}, p)
	if flat.Rating != "Not surfable" {
		t.Errorf("beginner flat rating = %q, want Not surfable", flat.Rating)
	}
}
