package kinematics

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

// FramesPerSecond is the render cadence the orbital rates are defined against.
const FramesPerSecond = 60

// Config controls the per-frame update rule.
type Config struct {
	FramesPerSecond float64

	// DriftCorrection rescales a body back onto its configured radius when
	// the relative error exceeds DriftTolerance.
	DriftCorrection bool
	DriftTolerance  float64

	// WrapRotation keeps SelfRotation in [0, 2π).
	WrapRotation bool
}

// DefaultConfig returns the baseline update rule: no drift correction.
func DefaultConfig() Config {
	return Config{
		FramesPerSecond: FramesPerSecond,
		DriftCorrection: false,
		DriftTolerance:  0.01,
		WrapRotation:    true,
	}
}

// Updater advances bodies frame by frame. It holds no per-body state.
type Updater struct {
	cfg Config
}

// NewUpdater creates an updater, filling unset fields from DefaultConfig.
func NewUpdater(cfg Config) *Updater {
	def := DefaultConfig()
	if cfg.FramesPerSecond <= 0 {
		cfg.FramesPerSecond = def.FramesPerSecond
	}
	if cfg.DriftTolerance <= 0 {
		cfg.DriftTolerance = def.DriftTolerance
	}
	return &Updater{cfg: cfg}
}

// Config returns the active configuration.
func (u *Updater) Config() Config {
	return u.cfg
}

// OrbitalIncrement returns the revolution angle per frame in radians.
func (u *Updater) OrbitalIncrement(orbitalPeriod float64) float64 {
	if orbitalPeriod == 0 {
		return 0
	}
	return astro.DegToRad(360 / orbitalPeriod / u.cfg.FramesPerSecond)
}

// SpinIncrement returns the self-rotation angle per frame in radians.
func (u *Updater) SpinIncrement(spinPeriod float64) float64 {
	if spinPeriod == 0 {
		return 0
	}
	return astro.DegToRad(360 / spinPeriod)
}

// Step returns b advanced by the given number of frames. Fractional frames
// are allowed so hosts with irregular cadence can pass elapsed/nominal.
// The body must have passed Validate.
func (u *Updater) Step(b Body, frames float64) Body {
	if !b.Stationary() {
		b.Position = b.Position.RotateY(u.OrbitalIncrement(b.OrbitalPeriod) * frames)
		if u.cfg.DriftCorrection {
			b.Position = u.correctDrift(b.Position, b.Distance)
		}
	}

	b.SelfRotation += u.SpinIncrement(b.SpinPeriod) * frames
	if u.cfg.WrapRotation {
		b.SelfRotation = astro.WrapTwoPi(b.SelfRotation)
	}
	return b
}

// StepAll advances every body in place.
func (u *Updater) StepAll(bodies []Body, frames float64) {
	for i := range bodies {
		bodies[i] = u.Step(bodies[i], frames)
	}
}

// Drift returns the relative radius error of a body.
func Drift(b Body) float64 {
	if b.Distance == 0 {
		return 0
	}
	return math.Abs(b.Radius()-b.Distance) / b.Distance
}

func (u *Updater) correctDrift(p astro.Vec3, distance float64) astro.Vec3 {
	r := p.Norm()
	if r == 0 || distance == 0 {
		return p
	}
	if math.Abs(r-distance)/distance <= u.cfg.DriftTolerance {
		return p
	}
	return p.Scale(distance / r)
}
