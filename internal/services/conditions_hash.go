package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
)

// hashAlgorithmVersion is embedded in every conditions hash. Bump it after
// a scoring-logic change to force global report invalidation without a
// schema migration.
const hashAlgorithmVersion = "v1"

// hashedConditions is the canonical quantized form that feeds the hash.
// Field rounding suppresses regeneration on noise-level fluctuation while
// still reacting to meaningful shifts.
type hashedConditions struct {
	EffectiveHeightM float64 `json:"effective_height_m"`
	TideHeightM      float64 `json:"tide_height_m"`
	TideKnown        bool    `json:"tide_known"`
	PeriodS          float64 `json:"period_s"`
	SwellHeightM     float64 `json:"swell_height_m"`
	SwellDirDeg      float64 `json:"swell_dir_deg"`
	WindDirDeg       float64 `json:"wind_dir_deg"`
	WindSpeedKmh     float64 `json:"wind_speed_kmh"`
	Score            float64 `json:"score"`
	Version          string  `json:"version"`
}

// roundTo rounds v to the nearest multiple of step.
func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}

// ConditionsHash fingerprints a snapshot with bucketed fields: 0.1 m for
// heights, 1 s period, 10 degree directions, 5 km/h wind, 5 point score.
func ConditionsHash(snap *ConditionsSnapshot) string {
	canonical := hashedConditions{
		EffectiveHeightM: roundTo(snap.EffectiveHeightM, 0.1),
		PeriodS:          math.Round(snap.Marine.SwellPeriodS),
		SwellHeightM:     roundTo(snap.Marine.SwellHeightM, 0.1),
		SwellDirDeg:      roundTo(snap.Marine.SwellDirectionDeg, 10),
		WindDirDeg:       roundTo(snap.Marine.WindDirectionDeg, 10),
		WindSpeedKmh:     roundTo(snap.Marine.WindSpeedKmh, 5),
		Score:            roundTo(snap.Score.Score, 5),
		Version:          hashAlgorithmVersion,
	}
	if snap.TideHeightM != nil {
		canonical.TideKnown = true
		canonical.TideHeightM = roundTo(*snap.TideHeightM, 0.1)
	}

	// Struct marshaling yields a fixed key order, so the JSON form is
	// canonical by construction.
	payload, _ := json.Marshal(canonical)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
