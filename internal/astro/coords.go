package astro

import (
	"fmt"
	"math"
	"time"
)

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// WrapTwoPi normalizes an angle into [0, 2π).
func WrapTwoPi(rad float64) float64 {
	rad = math.Mod(rad, TwoPi)
	if rad < 0 {
		rad += TwoPi
	}
	return rad
}

// OrbitalAngleDeg returns the angle of a position in the orbital plane,
// measured from +X toward -Z, in degrees [0, 360).
func OrbitalAngleDeg(v Vec3) float64 {
	deg := RadToDeg(math.Atan2(-v.Z, v.X))
	if deg < 0 {
		deg += 360
	}
	return deg
}

// FormatSimDuration formats simulated seconds as days, hours or minutes,
// whichever reads best.
func FormatSimDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%.1fd", d.Hours()/24)
	case d >= time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
