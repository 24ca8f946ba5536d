package astro

import "math"

// Near plane distance; points closer to the eye than this are not drawn.
const nearPlane = 1e-3

// Projector performs a pinhole perspective projection from a camera eye
// toward a look-at target.
type Projector struct {
	Eye    Vec3
	Target Vec3
	FOVDeg float64 // Vertical field of view
	Aspect float64 // Width / height of the viewport in display units

	forward, right, up Vec3
	tanHalf            float64
}

// ScreenPoint is a perspective-projected position.
type ScreenPoint struct {
	X       float64 // Normalized, -1 (left) to 1 (right)
	Y       float64 // Normalized, -1 (bottom) to 1 (top)
	Depth   float64 // Distance along the view direction
	Visible bool    // False when behind the eye
}

// NewProjector builds a projector, computing the camera basis once.
func NewProjector(eye, target Vec3, fovDeg, aspect float64) Projector {
	if fovDeg <= 0 || fovDeg >= 180 {
		fovDeg = 75
	}
	if aspect <= 0 {
		aspect = 1
	}
	p := Projector{
		Eye:     eye,
		Target:  target,
		FOVDeg:  fovDeg,
		Aspect:  aspect,
		tanHalf: math.Tan(DegToRad(fovDeg) / 2),
	}

	p.forward = target.Sub(eye).Normalized()
	if p.forward.Norm() == 0 {
		p.forward = Vec3{Z: -1}
	}

	worldUp := Vec3{Y: 1}
	// Looking straight up or down: pick -Z as the screen's up.
	if math.Abs(p.forward.Dot(worldUp)) > 0.999 {
		worldUp = Vec3{Z: -1}
	}
	p.right = p.forward.Cross(worldUp).Normalized()
	p.up = p.right.Cross(p.forward)
	return p
}

// Project maps a world point to normalized screen coordinates.
func (p Projector) Project(v Vec3) ScreenPoint {
	rel := v.Sub(p.Eye)
	depth := rel.Dot(p.forward)
	if depth <= nearPlane {
		return ScreenPoint{Depth: depth}
	}
	return ScreenPoint{
		X:       rel.Dot(p.right) / (depth * p.tanHalf * p.Aspect),
		Y:       rel.Dot(p.up) / (depth * p.tanHalf),
		Depth:   depth,
		Visible: true,
	}
}

// ProjectRadius returns the apparent radius, in normalized vertical units, of a
// sphere of the given radius at the given depth.
func (p Projector) ProjectRadius(radius, depth float64) float64 {
	if depth <= nearPlane {
		return 0
	}
	return radius / (depth * p.tanHalf)
}
