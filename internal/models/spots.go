package models

// spotTable is the static per-spot registry. Values are hand-tuned from
// local knowledge of each break; heights are meters, angles from-bearing
// degrees.
var spotTable = map[string]SpotProfile{
	"uluwatu": {
		Name:            "uluwatu",
		OptimalHeight:   HeightRange{Min: 1.2, Max: 3.5},
		SwellWindow:     SwellWindow{Start: 190, End: 250},
		OrientationDeg:  220,
		TidalRange:      TidalRangeMid,
		WindSensitivity: 0.7,
		Type:            SpotTypeReef,
		Skill:           SkillExpert,
		TideWindow:      &HeightRange{Min: 0.9, Max: 2.1},
		SizeResponse: &SizeResponse{
			Base:        1.05,
			DirBoost:    0.20,
			PeriodRef:   10,
			PeriodSlope: 0.02,
			TideBoost:   0.10,
			TidePenalty: 0.06,
			MinFactor:   0.80,
			MaxFactor:   1.50,
		},
	},
	"padang-padang": {
		Name:            "padang-padang",
		OptimalHeight:   HeightRange{Min: 1.5, Max: 3.0},
		SwellWindow:     SwellWindow{Start: 195, End: 245},
		OrientationDeg:  225,
		TidalRange:      TidalRangeMid,
		WindSensitivity: 0.8,
		Type:            SpotTypeReef,
		Skill:           SkillExpert,
		TideWindow:      &HeightRange{Min: 1.1, Max: 2.0},
		SizeResponse: &SizeResponse{
			Base:        1.00,
			DirBoost:    0.25,
			PeriodRef:   11,
			PeriodSlope: 0.025,
			TideBoost:   0.12,
			MinFactor:   0.75,
			MaxFactor:   1.40,
		},
	},
	"canggu": {
		Name:            "canggu",
		OptimalHeight:   HeightRange{Min: 0.8, Max: 2.2},
		SwellWindow:     SwellWindow{Start: 200, End: 260},
		OrientationDeg:  235,
		TidalRange:      TidalRangeAll,
		WindSensitivity: 0.5,
		Type:            SpotTypeBeach,
		Skill:           SkillIntermediate,
	},
	"batu-bolong": {
		Name:            "batu-bolong",
		OptimalHeight:   HeightRange{Min: 0.5, Max: 1.5},
		SwellWindow:     SwellWindow{Start: 200, End: 270},
		OrientationDeg:  240,
		TidalRange:      TidalRangeAll,
		WindSensitivity: 0.3,
		Type:            SpotTypeBeach,
		Skill:           SkillBeginner,
	},
	"medewi": {
		Name:            "medewi",
		OptimalHeight:   HeightRange{Min: 0.8, Max: 2.5},
		SwellWindow:     SwellWindow{Start: 185, End: 240},
		OrientationDeg:  215,
		TidalRange:      TidalRangeMid,
		WindSensitivity: 0.4,
		Type:            SpotTypePoint,
		Skill:           SkillIntermediate,
		SizeResponse: &SizeResponse{
			Base:        0.95,
			DirBoost:    0.15,
			PeriodRef:   9,
			PeriodSlope: 0.015,
			MinFactor:   0.80,
			MaxFactor:   1.30,
		},
	},
	"keramas": {
		Name:            "keramas",
		OptimalHeight:   HeightRange{Min: 1.0, Max: 2.8},
		SwellWindow:     SwellWindow{Start: 150, End: 210},
		OrientationDeg:  180,
		TidalRange:      TidalRangeHigh,
		WindSensitivity: 0.9,
		Type:            SpotTypeReef,
		Skill:           SkillExpert,
		TideWindow:      &HeightRange{Min: 1.4, Max: 2.4},
		SizeResponse: &SizeResponse{
			Base:        1.00,
			DirBoost:    0.20,
			PeriodRef:   10,
			PeriodSlope: 0.02,
			TideBoost:   0.08,
			TidePenalty: 0.05,
			MinFactor:   0.85,
			MaxFactor:   1.45,
		},
	},
	"sanur": {
		// North-east facing reef that only takes wrapped or wind swell;
		// the window crosses 0.
		Name:            "sanur",
		OptimalHeight:   HeightRange{Min: 0.8, Max: 2.0},
		SwellWindow:     SwellWindow{Start: 330, End: 60},
		OrientationDeg:  20,
		TidalRange:      TidalRangeHigh,
		WindSensitivity: 0.6,
		Type:            SpotTypeReef,
		Skill:           SkillIntermediate,
	},
}

// LookupSpot returns the profile for a named spot.
func LookupSpot(name string) (SpotProfile, bool) {
	p, ok := spotTable[name]
	return p, ok
}

// AllSpots returns every registered spot profile.
func AllSpots() []SpotProfile {
	spots := make([]SpotProfile, 0, len(spotTable))
	for _, p := range spotTable {
		spots = append(spots, p)
	}
	return spots
}
