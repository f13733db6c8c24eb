package scoring

import (
	"math"

	"surfcast/internal/models"
)

// windowEdgeFalloffDeg is the angular distance beyond a swell window's
// edge at which the direction score reaches zero. Empirically tuned.
const windowEdgeFalloffDeg = 45.0

// normalizeAngle maps any angle onto [0, 360).
func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// angularDistance returns the minimum angular separation between two
// bearings, always in [0, 180].
func angularDistance(a, b float64) float64 {
	d := math.Abs(normalizeAngle(a) - normalizeAngle(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// SwellWindowScore scores a from-bearing direction against a spot's swell
// window. Directions inside the arc score exactly 1; outside, the score
// falls off linearly with angular distance to the nearer edge, reaching 0
// at windowEdgeFalloffDeg. The arc runs clockwise from Start to End and
// may wrap past 360 (e.g. [320, 40]).
func SwellWindowScore(directionDeg float64, window models.SwellWindow) float64 {
	dir := normalizeAngle(directionDeg)
	start := normalizeAngle(window.Start)
	end := normalizeAngle(window.End)

	var inside bool
	if start <= end {
		inside = dir >= start && dir <= end
	} else {
		inside = dir >= start || dir <= end
	}
	if inside {
		return 1
	}

	edgeDist := math.Min(angularDistance(dir, start), angularDistance(dir, end))
	return clamp(1-edgeDist/windowEdgeFalloffDeg, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
