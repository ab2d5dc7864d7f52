package engine

import "math"

// Clamp limits value to the range [min, max]
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// NormalizeAngle wraps an angle into [0, 2π) for display and comparison.
// The vehicle heading itself is left unbounded.
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// AngleDelta returns the shortest signed difference a-b normalized into
// (-π, π].
func AngleDelta(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// SpeedFraction returns |velocity|/maxSpeed, the factor that scales steering
// authority. Zero when maxSpeed is not positive.
func SpeedFraction(velocity, maxSpeed float64) float64 {
	if maxSpeed <= 0 {
		return 0
	}
	return math.Abs(velocity) / maxSpeed
}
