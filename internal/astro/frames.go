// Package astro provides the vector math and screen projections shared by the
// simulation core and both renderers.
package astro

import (
	"math"
)

// Vec3 represents a 3D vector in world space. Y is the vertical axis; orbits
// lie in the XZ plane.
type Vec3 struct {
	X, Y, Z float64
}

// Origin is the world origin, where the Sun sits.
var Origin = Vec3{}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Cross returns the cross product v × u.
func (v Vec3) Cross(u Vec3) Vec3 {
	return Vec3{
		X: v.Y*u.Z - v.Z*u.Y,
		Y: v.Z*u.X - v.X*u.Z,
		Z: v.X*u.Y - v.Y*u.X,
	}
}

// Dist returns the distance between two points.
func (v Vec3) Dist(u Vec3) float64 {
	return v.Sub(u).Norm()
}

// Lerp moves v toward u by fraction t (0 = v, 1 = u).
func (v Vec3) Lerp(u Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (u.X-v.X)*t,
		Y: v.Y + (u.Y-v.Y)*t,
		Z: v.Z + (u.Z-v.Z)*t,
	}
}

// RotateY rotates the vector about the world Y axis through the origin.
// Positive angles follow the right-handed Euler convention, so +X turns
// toward -Z.
func (v Vec3) RotateY(rad float64) Vec3 {
	c := math.Cos(rad)
	s := math.Sin(rad)
	return Vec3{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// ProjectedPoint represents a 2D projected position with metadata.
type ProjectedPoint struct {
	X float64 // Screen X coordinate (normalized, -1 to 1)
	Y float64 // Screen Y coordinate (normalized, -1 to 1)
	R float64 // Original radial distance from the origin
	H float64 // Original height above the orbital plane
}

// ScaleMode defines how radial distances are mapped to screen space.
type ScaleMode int

const (
	// ScaleLogR uses logarithmic scaling: r_display = log10(r/unit + 1)
	ScaleLogR ScaleMode = iota

	// ScaleLinear maps radius linearly against the configured extent.
	ScaleLinear
)

// String returns a short display name for the mode.
func (m ScaleMode) String() string {
	switch m {
	case ScaleLogR:
		return "Log"
	case ScaleLinear:
		return "Linear"
	default:
		return "?"
	}
}

// ProjectionConfig configures the top-down orbital-plane projection.
type ProjectionConfig struct {
	Scale  float64   // Zoom factor
	Mode   ScaleMode // Scaling mode
	Extent float64   // World radius mapped to display radius 1.0
}

// DefaultProjectionConfig returns a reasonable default configuration.
func DefaultProjectionConfig() ProjectionConfig {
	return ProjectionConfig{
		Scale:  1.0,
		Mode:   ScaleLogR,
		Extent: 550,
	}
}

// ProjectTopDown projects a world vector onto the orbital (XZ) plane as seen
// from above. Screen X follows world X, screen Y follows world -Z so that a
// positive Y rotation appears counter-clockwise.
func ProjectTopDown(v Vec3, cfg ProjectionConfig) ProjectedPoint {
	r := math.Hypot(v.X, v.Z)
	rDisplay := scaleRadius(r, cfg)
	// 0-v.Z rather than -v.Z keeps the sign of a zero Z from flipping the
	// angle between π and -π.
	angle := math.Atan2(0-v.Z, v.X)

	return ProjectedPoint{
		X: rDisplay * math.Cos(angle) * cfg.Scale,
		Y: rDisplay * math.Sin(angle) * cfg.Scale,
		R: v.Norm(),
		H: v.Y,
	}
}

// scaleRadius applies the configured scaling mode to a radial distance.
func scaleRadius(r float64, cfg ProjectionConfig) float64 {
	extent := cfg.Extent
	if extent <= 0 {
		extent = 1
	}
	switch cfg.Mode {
	case ScaleLinear:
		return r / extent
	default:
		// log10(r/unit + 1), normalized so r == extent maps to 1.0
		unit := extent / 100
		return math.Log10(r/unit+1) / math.Log10(extent/unit+1)
	}
}
