package scene

import (
	"fmt"
	"image"
	_ "image/jpeg" // texture formats
	_ "image/png"
	"io/fs"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Material is how a body is drawn.
type Material struct {
	Glyph    rune   // Terminal glyph
	Color    string // Hex colour
	Texture  string // Texture path inside the asset FS, empty when untextured
	Width    int    // Texture dimensions, when textured
	Height   int
	Textured bool
}

// Untextured is the fallback for bodies with no usable texture.
var Untextured = Material{Glyph: '•', Color: "#AAAAAA"}

// glyphs is the per-body terminal glyph table.
var glyphs = [bodyCount]rune{
	Sun:     '☉',
	Mercury: '•',
	Venus:   '•',
	Earth:   '•',
	Mars:    '•',
	Jupiter: '○',
	Saturn:  '○',
	Uranus:  '○',
	Neptune: '○',
}

// Materials is the lookup table from body to material.
type Materials [bodyCount]Material

// Get returns the material for id, or Untextured for an invalid id.
func (m *Materials) Get(id BodyID) Material {
	if !id.Valid() {
		return Untextured
	}
	return m[id]
}

// MaterialReport records a texture that could not be used.
type MaterialReport struct {
	Body BodyID
	Path string
	Err  error
}

func (r MaterialReport) Error() string {
	return fmt.Sprintf("%s texture %q: %v", r.Body, r.Path, r.Err)
}

// DefaultMaterials builds untextured materials from the catalog colours.
func DefaultMaterials(cat Catalog) Materials {
	var m Materials
	for _, id := range AllBodies() {
		m[id] = baseMaterial(cat[id])
	}
	return m
}

// LoadMaterials resolves each body's texture against assets. Bodies whose
// texture is missing or undecodable fall back to an untextured material in
// the catalog colour; each failure is reported and none is fatal.
func LoadMaterials(cat Catalog, assets fs.FS) (Materials, []MaterialReport) {
	m := DefaultMaterials(cat)
	if assets == nil {
		return m, nil
	}

	var reports []MaterialReport
	for _, id := range AllBodies() {
		def := cat[id]
		if def.Texture == "" {
			continue
		}
		w, h, err := probeTexture(assets, def.Texture)
		if err != nil {
			reports = append(reports, MaterialReport{Body: id, Path: def.Texture, Err: err})
			continue
		}
		mat := m[id]
		mat.Texture = def.Texture
		mat.Width = w
		mat.Height = h
		mat.Textured = true
		m[id] = mat
	}
	return m, reports
}

func baseMaterial(def Definition) Material {
	mat := Untextured
	if def.ID.Valid() {
		mat.Glyph = glyphs[def.ID]
	}
	if def.Color != "" {
		mat.Color = def.Color
	}
	return mat
}

func probeTexture(assets fs.FS, path string) (int, int, error) {
	f, err := assets.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
