// Package scene assembles the bodies, the time scale and the camera into a
// single per-frame simulation that every frontend drives the same way.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// BodyID enumerates the bodies in the scene. The set is closed: anything
// outside it is rejected at load time.
type BodyID int

const (
	Sun BodyID = iota
	Mercury
	Venus
	Earth
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune

	bodyCount
)

var bodyNames = [bodyCount]string{
	Sun:     "Sun",
	Mercury: "Mercury",
	Venus:   "Venus",
	Earth:   "Earth",
	Mars:    "Mars",
	Jupiter: "Jupiter",
	Saturn:  "Saturn",
	Uranus:  "Uranus",
	Neptune: "Neptune",
}

// ErrUnknownBody is returned for names outside the enumeration.
var ErrUnknownBody = errors.New("unknown body")

// ErrDuplicateBody is returned when a catalog file names a body twice.
var ErrDuplicateBody = errors.New("duplicate body")

// String returns the display name.
func (id BodyID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("BodyID(%d)", int(id))
	}
	return bodyNames[id]
}

// Valid reports whether id is one of the enumerated bodies.
func (id BodyID) Valid() bool {
	return id >= 0 && id < bodyCount
}

// ParseBodyID looks a body up by name, ignoring case.
func ParseBodyID(name string) (BodyID, error) {
	trimmed := strings.TrimSpace(name)
	for i, n := range bodyNames {
		if strings.EqualFold(n, trimmed) {
			return BodyID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBody, name)
}

// MarshalText encodes the body by name.
func (id BodyID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBody, int(id))
	}
	return []byte(bodyNames[id]), nil
}

// UnmarshalText decodes a body name.
func (id *BodyID) UnmarshalText(text []byte) error {
	parsed, err := ParseBodyID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// AllBodies returns every body ID in orbital order.
func AllBodies() []BodyID {
	ids := make([]BodyID, bodyCount)
	for i := range ids {
		ids[i] = BodyID(i)
	}
	return ids
}

// Definition is the fixed configuration of one body.
type Definition struct {
	ID           BodyID
	Distance     float64 // Orbital radius in scene units
	Size         float64 // Body radius in scene units
	OrbitalYears float64 // Revolution period in Earth years; 0 = stationary
	SpinPeriod   float64 // Frames per self-rotation
	Color        string  // Hex colour for untextured rendering
	Texture      string  // Texture file name, resolved against the asset dir
}

// Catalog holds one definition per body, indexed by BodyID.
type Catalog [bodyCount]Definition

// DefaultCatalog returns the built-in solar system. Distances and sizes are
// compressed for display; periods are the real sidereal values.
func DefaultCatalog() Catalog {
	return Catalog{
		Sun:     {ID: Sun, Distance: 0, Size: 20, OrbitalYears: 0, SpinPeriod: 1500, Color: "#FDB813", Texture: "2k_sun.jpg"},
		Mercury: {ID: Mercury, Distance: 40, Size: 1.5, OrbitalYears: 0.2408, SpinPeriod: 1500, Color: "#B5B5B5", Texture: "2k_mercury.jpg"},
		Venus:   {ID: Venus, Distance: 70, Size: 3.5, OrbitalYears: 0.6152, SpinPeriod: 2000, Color: "#E8CDA2", Texture: "2k_venus_surface.jpg"},
		Earth:   {ID: Earth, Distance: 100, Size: 4, OrbitalYears: 1, SpinPeriod: 365.99, Color: "#2E86AB", Texture: "2k_earth_daymap.jpg"},
		Mars:    {ID: Mars, Distance: 150, Size: 2, OrbitalYears: 1.8808, SpinPeriod: 376, Color: "#C1440E", Texture: "2k_mars.jpg"},
		Jupiter: {ID: Jupiter, Distance: 260, Size: 11, OrbitalYears: 11.862, SpinPeriod: 150, Color: "#C88B3A", Texture: "2k_jupiter.jpg"},
		Saturn:  {ID: Saturn, Distance: 360, Size: 9, OrbitalYears: 29.457, SpinPeriod: 160, Color: "#E4D191", Texture: "2k_saturn.jpg"},
		Uranus:  {ID: Uranus, Distance: 450, Size: 6, OrbitalYears: 84.011, SpinPeriod: 260, Color: "#7DE8E8", Texture: "2k_uranus.jpg"},
		Neptune: {ID: Neptune, Distance: 520, Size: 6, OrbitalYears: 164.79, SpinPeriod: 245, Color: "#3F54BA", Texture: "2k_neptune.jpg"},
	}
}

// Get returns the definition for id.
func (c *Catalog) Get(id BodyID) (Definition, bool) {
	if !id.Valid() {
		return Definition{}, false
	}
	return c[id], true
}

// override is the JSON shape of a catalog file entry. Absent fields keep the
// base value.
type override struct {
	Distance     *float64 `json:"distance"`
	Size         *float64 `json:"size"`
	OrbitalYears *float64 `json:"orbital_years"`
	SpinPeriod   *float64 `json:"spin_period"`
	Color        *string  `json:"color"`
	Texture      *string  `json:"texture"`
}

type catalogFile struct {
	Bodies map[string]override `json:"bodies"`
}

// LoadCatalog applies a JSON override file on top of base:
//
//	{"bodies": {"earth": {"distance": 120, "spin_period": 300}}}
func LoadCatalog(r io.Reader, base Catalog) (Catalog, error) {
	var f catalogFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return base, fmt.Errorf("decode catalog: %w", err)
	}

	out := base
	seen := make(map[BodyID]string, len(f.Bodies))
	for name, o := range f.Bodies {
		id, err := ParseBodyID(name)
		if err != nil {
			return base, fmt.Errorf("catalog entry: %w", err)
		}
		if prev, ok := seen[id]; ok {
			return base, fmt.Errorf("catalog entries %q and %q: %w %s", prev, name, ErrDuplicateBody, id)
		}
		seen[id] = name
		d := out[id]
		if o.Distance != nil {
			d.Distance = *o.Distance
		}
		if o.Size != nil {
			d.Size = *o.Size
		}
		if o.OrbitalYears != nil {
			d.OrbitalYears = *o.OrbitalYears
		}
		if o.SpinPeriod != nil {
			d.SpinPeriod = *o.SpinPeriod
		}
		if o.Color != nil {
			d.Color = *o.Color
		}
		if o.Texture != nil {
			d.Texture = *o.Texture
		}
		out[id] = d
	}
	return out, nil
}
