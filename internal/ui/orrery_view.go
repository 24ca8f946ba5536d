package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
)

// orbitSamples is the number of points drawn per orbit ring.
const orbitSamples = 120

// OrreryModel renders the scene through the camera in perspective.
type OrreryModel struct {
	width     int
	height    int
	frame     scene.Frame
	highlight scene.BodyID

	showOrbits bool
	labelMode  LabelMode
}

// NewOrreryModel creates a new perspective view model.
func NewOrreryModel() OrreryModel {
	return OrreryModel{
		showOrbits: true,
		labelMode:  LabelFocused,
	}
}

// SetSize updates the viewport size.
func (m OrreryModel) SetSize(width, height int) OrreryModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new frame.
func (m OrreryModel) UpdateData(f scene.Frame, highlight scene.BodyID) OrreryModel {
	m.frame = f
	m.highlight = highlight
	return m
}

// Update handles input messages.
func (m OrreryModel) Update(msg tea.Msg) (OrreryModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "r":
			m.showOrbits = !m.showOrbits
		case "l":
			m.labelMode = (m.labelMode + 1) % 3
		}
	}
	return m, nil
}

func (m OrreryModel) canvasSize() (int, int) {
	h := m.height - 2 // HUD
	if h < 5 {
		h = 5
	}
	return m.width, h
}

// projector returns the camera projection for the current canvas.
func (m OrreryModel) projector() astro.Projector {
	w, h := m.canvasSize()
	aspect := float64(w) / (float64(h) * cellAspect)
	return m.frame.Projector(aspect)
}

// toCell maps normalized screen coordinates to a canvas cell.
func toCell(x, y float64, w, h int) (int, int) {
	col := int(math.Floor((x + 1) / 2 * float64(w)))
	row := int(math.Floor((1 - y) / 2 * float64(h)))
	return col, row
}

// fromCell maps a canvas cell centre to normalized screen coordinates.
func fromCell(col, row, w, h int) (float64, float64) {
	x := (float64(col)+0.5)/float64(w)*2 - 1
	y := 1 - (float64(row)+0.5)/float64(h)*2
	return x, y
}

// BodyAt returns the body drawn at a canvas cell.
func (m OrreryModel) BodyAt(col, row int) (scene.BodyID, bool) {
	w, h := m.canvasSize()
	if col < 0 || col >= w || row < 0 || row >= h {
		return 0, false
	}
	x, y := fromCell(col, row, w, h)
	// At least a cell and a half of slack around tiny discs.
	minRadius := 1.5 * 2 / float64(h)
	return m.frame.HitTest(m.projector(), x, y, minRadius)
}

// View renders the perspective view.
func (m OrreryModel) View() string {
	if m.width < 20 || m.height < 8 {
		return "Terminal too small for orrery view"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.buildCanvas().render(), m.renderHUD())
}

type projectedBody struct {
	body  scene.BodyState
	point astro.ScreenPoint
}

func (m OrreryModel) buildCanvas() *canvas {
	w, h := m.canvasSize()
	c := newCanvas(w, h)
	proj := m.projector()

	if m.showOrbits {
		for _, b := range m.frame.Bodies {
			if b.Distance > 0 {
				m.drawOrbit(c, proj, b.Distance)
			}
		}
	}

	// Painter's order: farthest first.
	var visible []projectedBody
	for _, b := range m.frame.Bodies {
		sp := proj.Project(b.Position)
		if sp.Visible {
			visible = append(visible, projectedBody{body: b, point: sp})
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].point.Depth > visible[j].point.Depth
	})

	for _, pb := range visible {
		col, row := toCell(pb.point.X, pb.point.Y, w, h)
		r := proj.ProjectRadius(pb.body.Size, pb.point.Depth) * float64(h) / 2
		color := pb.body.Color
		if r >= 1 {
			c.disc(col, row, r, '●', color)
		}
		glyph := []rune(pb.body.Glyph)
		ch := '•'
		if len(glyph) > 0 {
			ch = glyph[0]
		}
		focused := pb.body.Selected || pb.body.ID == m.highlight
		if focused {
			color = focusColor
		}
		c.set(col, row, ch, color, focused)
	}

	// The highlighted label goes last so it can displace the others.
	focus := -1
	for i, pb := range visible {
		if !m.showLabel(pb.body) {
			continue
		}
		if pb.body.ID == m.highlight {
			focus = i
			continue
		}
		col, row := toCell(pb.point.X, pb.point.Y, w, h)
		c.label(col+2, row, pb.body.Name, labelColor, false)
	}
	if focus >= 0 {
		pb := visible[focus]
		col, row := toCell(pb.point.X, pb.point.Y, w, h)
		c.label(col+2, row, "◄ "+pb.body.Name, labelColor, true)
	}
	return c
}

func (m OrreryModel) showLabel(b scene.BodyState) bool {
	switch m.labelMode {
	case LabelAll:
		return true
	case LabelFocused:
		return b.Selected || b.ID == m.highlight
	default:
		return false
	}
}

func (m OrreryModel) drawOrbit(c *canvas, proj astro.Projector, radius float64) {
	for i := 0; i < orbitSamples; i++ {
		theta := astro.TwoPi * float64(i) / orbitSamples
		p := astro.Vec3{X: radius}.RotateY(theta)
		sp := proj.Project(p)
		if !sp.Visible {
			continue
		}
		col, row := toCell(sp.X, sp.Y, c.w, c.h)
		c.setIfEmpty(col, row, '·', dimColor)
	}
}

func (m OrreryModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	if sel, ok := m.frame.Selected(); ok {
		b.WriteString(headerStyle.Render("◆ " + sel.Name))
		b.WriteString("  ")
		b.WriteString(dimStyle.Render("(" + m.frame.Selection.Phase + ")"))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Angle: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%5.1f°", sel.AngleDeg)))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Radius: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.2f", sel.Position.Norm())))
	} else {
		b.WriteString(headerStyle.Render("☉ Sun"))
		b.WriteString("  ")
		b.WriteString(dimStyle.Render("(click a planet to follow it)"))
	}
	b.WriteString("\n")

	cam := m.frame.Camera.Position
	b.WriteString(labelStyle.Render("Camera: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("(%.1f, %.1f, %.1f)", cam.X, cam.Y, cam.Z)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Orbits:"))
	b.WriteString(valueStyle.Render(onOff(m.showOrbits)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Labels:"))
	b.WriteString(valueStyle.Render(m.labelMode.String()))

	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
