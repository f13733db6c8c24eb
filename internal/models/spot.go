package models

// SpotType classifies the physical break type of a surf spot.
type SpotType string

const (
	SpotTypeBeach      SpotType = "beach"
	SpotTypeReef       SpotType = "reef"
	SpotTypePoint      SpotType = "point"
	SpotTypeRivermouth SpotType = "rivermouth"
)

// SkillLevel is the minimum rider level a spot is suited for.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillExpert       SkillLevel = "expert"
)

// TidalRange is the tide stage a spot works best on.
type TidalRange string

const (
	TidalRangeAll  TidalRange = "all"
	TidalRangeLow  TidalRange = "low"
	TidalRangeMid  TidalRange = "mid"
	TidalRangeHigh TidalRange = "high"
)

// HeightRange is an inclusive range of heights in meters.
type HeightRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SwellWindow is an angular arc of favorable from-bearing swell directions.
// The arc runs clockwise from Start to End and may wrap past 360.
type SwellWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// SizeResponse holds per-spot tuning constants for the wave height
// correction factor. The constants are empirically tuned; treat them as
// configuration, not derivable values.
type SizeResponse struct {
	Base        float64 `json:"base"`
	DirBoost    float64 `json:"dir_boost"`
	PeriodRef   float64 `json:"period_ref"`
	PeriodSlope float64 `json:"period_slope"`
	TideBoost   float64 `json:"tide_boost"`
	TidePenalty float64 `json:"tide_penalty"`
	MinFactor   float64 `json:"min_factor"`
	MaxFactor   float64 `json:"max_factor"`
}

// SpotProfile is the immutable physical metadata for a named surf spot.
// Loaded once at process start; never mutated.
type SpotProfile struct {
	Name            string       `json:"name"`
	OptimalHeight   HeightRange  `json:"optimal_height"`
	SwellWindow     SwellWindow  `json:"swell_window"`
	OrientationDeg  float64      `json:"orientation_deg"`
	TidalRange      TidalRange   `json:"tidal_range"`
	WindSensitivity float64      `json:"wind_sensitivity"`
	Type            SpotType     `json:"type"`
	Skill           SkillLevel   `json:"skill"`

	// Optional; nil when the spot has no usable tide height window.
	TideWindow *HeightRange `json:"tide_window,omitempty"`

	// Optional; nil means the default correction tuning applies.
	SizeResponse *SizeResponse `json:"size_response,omitempty"`
}
