// Package kinematics advances orbiting bodies by whole or fractional frames:
// revolution about the world origin and spin about each body's own axis.
package kinematics

import (
	"errors"
	"fmt"

	"github.com/litescript/ls-orrery/internal/astro"
)

// ErrInvalidConfiguration is returned when a body cannot be stepped without
// producing NaN or infinite values.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ConfigError describes which body field failed validation.
type ConfigError struct {
	Body   string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: body %q: %s %s", ErrInvalidConfiguration, e.Body, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidConfiguration.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// Body is a single orbiting (or stationary) body.
type Body struct {
	ID            int     // Caller-defined identifier
	Name          string  // Display name
	Distance      float64 // Orbital radius from the origin
	Size          float64 // Body radius
	OrbitalPeriod float64 // Simulated seconds per revolution; 0 = stationary
	SpinPeriod    float64 // Frames per self-rotation

	Position     astro.Vec3
	SelfRotation float64 // Radians
}

// NewBody returns a body placed at (distance, 0, 0) with zero rotation.
func NewBody(id int, name string, distance, size, orbitalPeriod, spinPeriod float64) Body {
	return Body{
		ID:            id,
		Name:          name,
		Distance:      distance,
		Size:          size,
		OrbitalPeriod: orbitalPeriod,
		SpinPeriod:    spinPeriod,
		Position:      astro.Vec3{X: distance},
	}
}

// Stationary reports whether the body never revolves.
func (b Body) Stationary() bool {
	return b.OrbitalPeriod == 0
}

// Radius returns the current distance of the body from the origin.
func (b Body) Radius() float64 {
	return b.Position.Norm()
}

// Validate checks the configuration a body was created with.
func (b Body) Validate() error {
	switch {
	case b.Size <= 0:
		return &ConfigError{Body: b.Name, Field: "size", Reason: fmt.Sprintf("must be > 0, got %v", b.Size)}
	case b.Distance < 0:
		return &ConfigError{Body: b.Name, Field: "distance", Reason: fmt.Sprintf("must be >= 0, got %v", b.Distance)}
	case b.OrbitalPeriod < 0:
		return &ConfigError{Body: b.Name, Field: "orbital period", Reason: fmt.Sprintf("must be >= 0, got %v", b.OrbitalPeriod)}
	case b.Stationary() && b.Distance != 0:
		return &ConfigError{Body: b.Name, Field: "distance", Reason: "stationary bodies must sit at the origin"}
	case !b.Stationary() && b.Distance == 0:
		return &ConfigError{Body: b.Name, Field: "distance", Reason: "orbiting bodies need a non-zero radius"}
	case !b.Stationary() && b.SpinPeriod <= 0:
		return &ConfigError{Body: b.Name, Field: "spin period", Reason: fmt.Sprintf("must be > 0, got %v", b.SpinPeriod)}
	case b.SpinPeriod < 0:
		return &ConfigError{Body: b.Name, Field: "spin period", Reason: fmt.Sprintf("must be >= 0, got %v", b.SpinPeriod)}
	}
	return nil
}
