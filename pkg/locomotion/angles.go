package locomotion

import "math"

// NormalizeAngle wraps an angle in degrees into (-180, 180] with a single
// ±360 correction. Inputs are expected to already be within (-540, 540),
// which holds for any sum of two normalized angles.
func NormalizeAngle(angle float64) float64 {
	if angle < -180.0 {
		angle += 360.0
	} else if angle > 180.0 {
		angle -= 360.0
	}
	return angle
}

// AngleGap returns the shortest signed angular distance from current to
// target in degrees, wrapped into [-180, 180] and rounded to 2 decimals.
// The sign drives the turn-direction decision: positive means turn left.
func AngleGap(current, target float64) float64 {
	gap := current - target
	if gap > 180.0 {
		gap -= 360.0
	} else if gap < -180.0 {
		gap += 360.0
	}
	return round2(gap)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
