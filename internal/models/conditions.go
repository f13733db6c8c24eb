package models

// WaveConditions is one snapshot of raw marine-forecast numbers for a spot.
// Transient: built per scoring call, never persisted.
type WaveConditions struct {
	SwellHeightM      float64 `json:"swell_height_m"`
	SwellPeriodS      float64 `json:"swell_period_s"`
	SwellDirectionDeg float64 `json:"swell_direction_deg"`

	WindWaveHeightM float64 `json:"wind_wave_height_m"`

	// Dominant (combined) wave fields as reported by the marine API.
	WaveHeightM      float64 `json:"wave_height_m"`
	WavePeriodS      float64 `json:"wave_period_s"`
	WaveDirectionDeg float64 `json:"wave_direction_deg"`

	// Nil when no tide reading is available for the snapshot.
	TideHeightM *float64 `json:"tide_height_m,omitempty"`
}

// OptionalWind models a wind reading that may be absent. A missing reading
// is an explicit case, not a zero value: Known is false when no wind data
// was supplied and the speed/direction fields are meaningless.
type OptionalWind struct {
	Known        bool    `json:"known"`
	SpeedKmh     float64 `json:"speed_kmh,omitempty"`
	DirectionDeg float64 `json:"direction_deg,omitempty"`
}

// KnownWind builds a present wind reading.
func KnownWind(speedKmh, directionDeg float64) OptionalWind {
	return OptionalWind{Known: true, SpeedKmh: speedKmh, DirectionDeg: directionDeg}
}

// UnknownWind builds an absent wind reading.
func UnknownWind() OptionalWind {
	return OptionalWind{}
}

// TideStage is the coarse tide phase at scoring time. TideStageUnknown is
// the modeled "no reading" case.
type TideStage string

const (
	TideStageUnknown TideStage = ""
	TideStageLow     TideStage = "low"
	TideStageMid     TideStage = "mid"
	TideStageHigh    TideStage = "high"
)

// ScoreBreakdown is the per-factor decomposition of a quality score.
// Always returned alongside the total; consumers display it.
type ScoreBreakdown struct {
	Height    float64 `json:"height"`
	Direction float64 `json:"direction"`
	Period    float64 `json:"period"`
	Wind      float64 `json:"wind"`
	Tide      float64 `json:"tide"`
	SpotBonus float64 `json:"spot_bonus"`
}

// ScoreResult is the output of one quality scoring call.
type ScoreResult struct {
	Score     float64        `json:"score"`
	Rating    string         `json:"rating"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Warnings  []string       `json:"warnings"`
}
