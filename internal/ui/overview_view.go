package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
)

// LabelMode controls how body labels are displayed.
type LabelMode int

const (
	LabelNone    LabelMode = iota // No labels
	LabelFocused                  // Only highlighted and selected bodies
	LabelAll                      // All bodies
)

func (l LabelMode) String() string {
	switch l {
	case LabelNone:
		return "off"
	case LabelFocused:
		return "focus"
	default:
		return "all"
	}
}

// Canvas colours shared by the views.
const (
	dimColor    = "240"
	labelColor  = "249"
	focusColor  = "229"
	cameraColor = "46"
)

// Discrete zoom levels for clean stepping
var zoomLevels = []float64{0.25, 0.5, 0.75, 1.0, 1.5, 2.0, 3.0, 5.0, 10.0}

const defaultZoomLevel = 3

// OverviewModel renders a top-down map of the orbital plane.
type OverviewModel struct {
	width     int
	height    int
	frame     scene.Frame
	highlight scene.BodyID

	// View state
	zoomLevel  int     // Index into zoomLevels
	panX       float64 // Pan offset in display units
	panY       float64
	scaleMode  astro.ScaleMode
	labelMode  LabelMode
	userPanned bool // Disables auto-centering on zoom
	showCamera bool
}

// NewOverviewModel creates a new overview model.
func NewOverviewModel() OverviewModel {
	return OverviewModel{
		zoomLevel:  defaultZoomLevel,
		scaleMode:  astro.ScaleLogR,
		labelMode:  LabelFocused,
		showCamera: true,
	}
}

// scale returns the current zoom scale.
func (m OverviewModel) scale() float64 {
	if m.zoomLevel < 0 || m.zoomLevel >= len(zoomLevels) {
		return 1.0
	}
	return zoomLevels[m.zoomLevel]
}

func (m OverviewModel) projection() astro.ProjectionConfig {
	cfg := astro.DefaultProjectionConfig()
	cfg.Scale = m.scale()
	cfg.Mode = m.scaleMode
	return cfg
}

// SetSize updates the viewport size.
func (m OverviewModel) SetSize(width, height int) OverviewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new frame.
func (m OverviewModel) UpdateData(f scene.Frame, highlight scene.BodyID) OverviewModel {
	m.frame = f
	m.highlight = highlight
	return m
}

// Update handles input messages.
func (m OverviewModel) Update(msg tea.Msg) (OverviewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		// Viewport panning
		case "up":
			m.panY -= 0.1 / m.scale()
			m.userPanned = true
		case "down":
			m.panY += 0.1 / m.scale()
			m.userPanned = true
		case "left":
			m.panX -= 0.1 / m.scale()
			m.userPanned = true
		case "right":
			m.panX += 0.1 / m.scale()
			m.userPanned = true
		case "c":
			m.panX, m.panY = 0, 0 // Center on Sun
			m.userPanned = false
		case "f":
			m.centerOnHighlight()
			m.userPanned = false

		// Zoom
		case "]":
			if m.zoomLevel < len(zoomLevels)-1 {
				m.zoomLevel++
				if !m.userPanned {
					m.centerOnHighlight()
				}
			}
		case "[":
			if m.zoomLevel > 0 {
				m.zoomLevel--
				if !m.userPanned {
					m.centerOnHighlight()
				}
			}
		case "0":
			m.zoomLevel = defaultZoomLevel
			m.panX, m.panY = 0, 0
			m.userPanned = false

		case "z":
			m.scaleMode = (m.scaleMode + 1) % 2
			if !m.userPanned {
				m.centerOnHighlight()
			}
		case "l":
			m.labelMode = (m.labelMode + 1) % 3
		case "v":
			m.showCamera = !m.showCamera
		}
	}
	return m, nil
}

// centerOnHighlight pans the view so the highlighted body sits mid-screen.
func (m *OverviewModel) centerOnHighlight() {
	b, ok := m.frame.Body(m.highlight)
	if !ok || b.Distance == 0 {
		m.panX, m.panY = 0, 0
		return
	}
	proj := astro.ProjectTopDown(b.Position, m.projection())
	m.panX = -proj.X
	m.panY = -proj.Y
}

func (m OverviewModel) canvasSize() (int, int) {
	h := m.height - 2 // HUD
	if h < 5 {
		h = 5
	}
	return m.width, h
}

// layout returns the Sun's cell and the number of columns per display unit.
func (m OverviewModel) layout() (originX, originY int, displayScale float64) {
	w, h := m.canvasSize()
	cx, cy := w/2, h/2
	displayScale = float64(min(cx, int(float64(cy)*cellAspect))) * 0.9
	originX = cx + int(m.panX*displayScale)
	originY = cy - int(m.panY*displayScale/cellAspect)
	return originX, originY, displayScale
}

func (m OverviewModel) toCell(v astro.Vec3) (int, int) {
	ox, oy, ds := m.layout()
	p := astro.ProjectTopDown(v, m.projection())
	return ox + int(math.Round(p.X*ds)), oy - int(math.Round(p.Y*ds/cellAspect))
}

// BodyAt returns the body drawn nearest a canvas cell, within one row.
func (m OverviewModel) BodyAt(col, row int) (scene.BodyID, bool) {
	best := scene.BodyID(-1)
	bestDist := math.Inf(1)
	for _, b := range m.frame.Bodies {
		x, y := m.toCell(b.Position)
		dx := float64(x-col) / cellAspect
		dy := float64(y - row)
		d := math.Hypot(dx, dy)
		if d <= 1 && d < bestDist {
			best, bestDist = b.ID, d
		}
	}
	return best, best.Valid()
}

// View renders the overview.
func (m OverviewModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for overview"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.buildCanvas().render(), m.renderHUD())
}

func (m OverviewModel) buildCanvas() *canvas {
	w, h := m.canvasSize()
	c := newCanvas(w, h)
	ox, oy, ds := m.layout()
	cfg := m.projection()

	// Orbit rings at each body's configured distance
	for _, b := range m.frame.Bodies {
		if b.Distance <= 0 {
			continue
		}
		p := astro.ProjectTopDown(astro.Vec3{X: b.Distance}, cfg)
		drawRing(c, ox, oy, p.X*ds)
	}

	if m.showCamera {
		x, y := m.toCell(m.frame.Camera.Position)
		c.set(x, y, '◊', cameraColor, false)
	}

	var sun *scene.BodyState
	for i, b := range m.frame.Bodies {
		if b.Distance == 0 {
			sun = &m.frame.Bodies[i]
			continue
		}
		x, y := m.toCell(b.Position)
		ch, color, bold := m.glyph(b)
		c.set(x, y, ch, color, bold)
	}

	// Sun last so it is always visible
	if sun != nil {
		ch, color, bold := m.glyph(*sun)
		c.set(ox, oy, ch, color, bold)
	}

	// The highlighted label goes last so it can displace the others.
	var focus *scene.BodyState
	for i, b := range m.frame.Bodies {
		if !m.showLabel(b) {
			continue
		}
		if b.ID == m.highlight {
			focus = &m.frame.Bodies[i]
			continue
		}
		x, y := m.toCell(b.Position)
		c.label(x+2, y, b.Name, labelColor, false)
	}
	if focus != nil {
		x, y := m.toCell(focus.Position)
		c.label(x+2, y, "◄ "+focus.Name, labelColor, true)
	}
	return c
}

func (m OverviewModel) showLabel(b scene.BodyState) bool {
	switch m.labelMode {
	case LabelAll:
		return true
	case LabelFocused:
		return b.Selected || b.ID == m.highlight
	default:
		return false
	}
}

func (m OverviewModel) glyph(b scene.BodyState) (rune, string, bool) {
	ch := '•'
	if g := []rune(b.Glyph); len(g) > 0 {
		ch = g[0]
	}
	focused := b.Selected || b.ID == m.highlight
	if !focused {
		return ch, b.Color, false
	}
	switch ch {
	case '○':
		ch = '◉'
	case '•':
		ch = '●'
	}
	return ch, focusColor, true
}

func drawRing(c *canvas, cx, cy int, r float64) {
	if r < 1 {
		return
	}

	steps := int(2 * math.Pi * r)
	if steps < 8 {
		steps = 8
	}
	if steps > 360 {
		steps = 360
	}

	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(r*math.Cos(theta)))
		y := cy - int(math.Round(r*math.Sin(theta)/cellAspect))
		c.setIfEmpty(x, y, '·', dimColor)
	}
}

func (m OverviewModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	if hl, ok := m.frame.Body(m.highlight); ok {
		b.WriteString(headerStyle.Render("◆ " + hl.Name))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Distance: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f", hl.Distance)))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Angle: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f°", hl.AngleDeg)))
	}
	b.WriteString("\n")

	b.WriteString(dimStyle.Render("Mode:"))
	b.WriteString(valueStyle.Render(m.scaleMode.String()))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Zoom:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2gx", m.scale())))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Labels:"))
	b.WriteString(valueStyle.Render(m.labelMode.String()))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Camera:"))
	b.WriteString(valueStyle.Render(onOff(m.showCamera)))

	return b.String()
}
