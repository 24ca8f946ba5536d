// Package glview renders the scene in a window with Ebitengine.
package glview

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/timescale"
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720

	orbitSegments = 180
	minDiscPixels = 2.0
	// Clicks within this many pixels of a small body still hit it.
	clickSlackPixels = 8.0
	sliderStep       = 10
	lineHeight       = 16
)

var (
	backgroundColor = color.RGBA{5, 5, 12, 255}
	orbitColor      = color.RGBA{60, 60, 80, 255}
	selectColor     = color.RGBA{255, 255, 200, 255}
	hudColor        = color.RGBA{220, 220, 220, 255}
	hudDimColor     = color.RGBA{140, 140, 160, 255}
)

// Input is one tick's worth of user input.
type Input struct {
	LeftClick  bool
	RightClick bool
	CursorX    int
	CursorY    int
	Keys       []ebiten.Key
}

// Game implements ebiten.Game over a scene.
type Game struct {
	scene  *scene.Scene
	state  *state.Manager
	logger *logging.Logger
	hooks  []func(scene.Frame, time.Duration)

	width, height int
	frame         scene.Frame

	paused     bool
	showOrbits bool
	showHelp   bool
	status     string
}

// New creates a windowed view of s. mgr and logger may be nil.
func New(s *scene.Scene, mgr *state.Manager, logger *logging.Logger) *Game {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Game{
		scene:      s,
		state:      mgr,
		logger:     logger,
		width:      DefaultWidth,
		height:     DefaultHeight,
		frame:      s.Snapshot(),
		showOrbits: true,
		showHelp:   true,
	}
}

// OnFrame adds an observer called after every frame.
func (g *Game) OnFrame(fn func(scene.Frame, time.Duration)) {
	g.hooks = append(g.hooks, fn)
}

// Update reads input and advances the scene by one frame. Ebitengine calls
// it once per tick.
func (g *Game) Update() error {
	if err := g.Apply(readInput()); err != nil {
		return err
	}
	if !g.paused {
		g.advance()
	}
	return nil
}

func readInput() Input {
	in := Input{
		LeftClick:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		RightClick: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight),
	}
	in.CursorX, in.CursorY = ebiten.CursorPosition()
	in.Keys = inpututil.AppendJustPressedKeys(nil)
	return in
}

// Apply handles one tick of input. It returns ebiten.Termination on quit.
func (g *Game) Apply(in Input) error {
	for _, k := range in.Keys {
		switch k {
		case ebiten.KeyQ:
			return ebiten.Termination
		case ebiten.KeySpace:
			g.paused = !g.paused
		case ebiten.KeyO:
			g.showOrbits = !g.showOrbits
		case ebiten.KeyH:
			g.showHelp = !g.showHelp
		case ebiten.KeyEqual, ebiten.KeyNumpadAdd:
			g.stepTimeScale(sliderStep)
		case ebiten.KeyMinus, ebiten.KeyNumpadSubtract:
			g.stepTimeScale(-sliderStep)
		case ebiten.KeyR:
			g.toggleRealtime()
		case ebiten.KeyEscape:
			g.deselect()
		}
	}

	if in.LeftClick {
		x, y := Normalize(in.CursorX, in.CursorY, g.width, g.height)
		slack := clickSlackPixels * 2 / float64(g.height)
		if id, ok := g.scene.BodyAt(x, y, g.aspect(), slack); ok {
			if g.scene.Select(id) {
				g.status = "Following " + id.String()
			} else if id == scene.Sun {
				g.status = "The Sun cannot be followed"
			}
		}
	}
	if in.RightClick {
		g.deselect()
	}
	return nil
}

func (g *Game) advance() {
	start := time.Now()
	f := g.scene.Frame(1)
	took := time.Since(start)

	g.frame = f
	if g.state != nil {
		g.state.Update(f, took)
	}
	for _, fn := range g.hooks {
		fn(f, took)
	}
}

func (g *Game) deselect() {
	if g.scene.Deselect() {
		g.status = "Released camera"
	}
}

func (g *Game) stepTimeScale(delta int) {
	ts := g.scene.StepTimeScale(delta)
	g.status = fmt.Sprintf("Speed %s (%s s/yr)", ts.Label(), ts)
}

func (g *Game) toggleRealtime() {
	if g.scene.TimeScale().IsRealtime() {
		g.scene.SetTimeScale(timescale.Default())
	} else {
		g.scene.SetTimeScale(timescale.Realtime())
	}
	g.status = "Speed " + g.scene.TimeScale().Label()
}

func (g *Game) aspect() float64 {
	if g.height == 0 {
		return 1
	}
	return float64(g.width) / float64(g.height)
}

// Draw renders the latest frame.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	proj := g.frame.Projector(g.aspect())

	if g.showOrbits {
		for _, b := range g.frame.Bodies {
			if b.Distance > 0 {
				g.drawOrbit(screen, proj, b.Distance)
			}
		}
	}

	for _, d := range g.discs(proj) {
		vector.DrawFilledCircle(screen, d.X, d.Y, d.R, d.Color, true)
		if d.Selected {
			vector.StrokeCircle(screen, d.X, d.Y, d.R+4, 1.5, selectColor, true)
		}
	}

	y := lineHeight
	for _, line := range HUDLines(g.frame, g.status) {
		text.Draw(screen, line, basicfont.Face7x13, 10, y, hudColor)
		y += lineHeight
	}
	if g.showHelp {
		text.Draw(screen, helpText, basicfont.Face7x13, 10, g.height-10, hudDimColor)
	}
}

const helpText = "click: follow  right-click/esc: release  +/-: speed  R: realtime  O: orbits  space: pause  H: help  Q: quit"

func (g *Game) drawOrbit(screen *ebiten.Image, proj astro.Projector, radius float64) {
	var prev astro.ScreenPoint
	for i := 0; i <= orbitSegments; i++ {
		p := astro.Vec3{X: radius}.RotateY(astro.TwoPi * float64(i) / orbitSegments)
		sp := proj.Project(p)
		if i > 0 && sp.Visible && prev.Visible {
			x0, y0 := ToScreen(prev, g.width, g.height)
			x1, y1 := ToScreen(sp, g.width, g.height)
			vector.StrokeLine(screen, x0, y0, x1, y1, 1, orbitColor, true)
		}
		prev = sp
	}
}

// Disc is a body ready to draw, in pixels.
type Disc struct {
	Body     scene.BodyID
	X, Y, R  float32
	Depth    float64
	Color    color.RGBA
	Selected bool
}

// discs projects every visible body, farthest first.
func (g *Game) discs(proj astro.Projector) []Disc {
	var out []Disc
	for _, b := range g.frame.Bodies {
		sp := proj.Project(b.Position)
		if !sp.Visible {
			continue
		}
		x, y := ToScreen(sp, g.width, g.height)
		r := proj.ProjectRadius(b.Size, sp.Depth) * float64(g.height) / 2
		if r < minDiscPixels {
			r = minDiscPixels
		}
		c, err := ParseHexColor(g.scene.Material(b.ID).Color)
		if err != nil {
			c = color.RGBA{170, 170, 170, 255}
		}
		out = append(out, Disc{
			Body:     b.ID,
			X:        x,
			Y:        y,
			R:        float32(r),
			Depth:    sp.Depth,
			Color:    c,
			Selected: b.Selected,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Depth > out[j].Depth })
	return out
}

// Layout tracks the window size so the projection keeps its aspect.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.width, g.height = outsideWidth, outsideHeight
	}
	return g.width, g.height
}

// Frame returns the latest frame drawn.
func (g *Game) Frame() scene.Frame {
	return g.frame
}

// Normalize maps a pixel to normalized screen coordinates, Y up.
func Normalize(px, py, width, height int) (float64, float64) {
	x := (float64(px)+0.5)/float64(width)*2 - 1
	y := 1 - (float64(py)+0.5)/float64(height)*2
	return x, y
}

// ToScreen maps a projected point to pixel coordinates.
func ToScreen(sp astro.ScreenPoint, width, height int) (float32, float32) {
	x := (sp.X + 1) / 2 * float64(width)
	y := (1 - sp.Y) / 2 * float64(height)
	return float32(x), float32(y)
}

// ParseHexColor parses "#RRGGBB".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("parse colour %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// HUDLines returns the overlay text for a frame.
func HUDLines(f scene.Frame, status string) []string {
	lines := []string{
		fmt.Sprintf("Speed %s (%s s/yr)   Simulated %s   Frame %d",
			f.Speed, f.TimeScale, astro.FormatSimDuration(f.SimDuration()), f.Number),
	}
	if sel, ok := f.Selected(); ok {
		lines = append(lines, fmt.Sprintf("Following %s (%s)  angle %.1f°", sel.Name, f.Selection.Phase, sel.AngleDeg))
	} else {
		lines = append(lines, "Click a planet to follow it")
	}
	if status != "" {
		lines = append(lines, status)
	}
	return lines
}
