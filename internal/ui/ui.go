// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/timescale"
	"github.com/litescript/ls-orrery/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewOrrery ViewMode = iota
	ViewOverview
	ViewBodies
)

const viewCount = 3

// Layout: title, tabs and a blank line above the content; status and help below.
const (
	headerLines = 3
	footerLines = 2
)

// FrameInterval is the display refresh period.
const FrameInterval = time.Second / 60

// sliderStep is how far one +/- press moves the time-scale slider.
const sliderStep = 10

// Msg types for Bubble Tea
type (
	// FrameTickMsg advances the simulation by one frame.
	FrameTickMsg time.Time
)

// FrameHook observes each computed frame and how long it took.
type FrameHook func(f scene.Frame, took time.Duration)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	scene *scene.Scene
	state *state.Manager
	hooks []FrameHook

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	paused    bool
	statusMsg string
	highlight scene.BodyID

	// Sub-models
	orrery   OrreryModel
	overview OverviewModel
	bodies   BodiesModel

	// Latest frame
	frame scene.Frame
}

// New creates a new root UI model. mgr may be nil.
func New(s *scene.Scene, mgr *state.Manager) Model {
	return Model{
		scene:     s,
		state:     mgr,
		viewMode:  ViewOrrery,
		highlight: scene.Earth,
		orrery:    NewOrreryModel(),
		overview:  NewOverviewModel(),
		bodies:    NewBodiesModel(),
		frame:     s.Snapshot(),
	}
}

// WithFrameHook adds an observer called after every frame.
func (m Model) WithFrameHook(fn FrameHook) Model {
	m.hooks = append(m.hooks, fn)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return frameTickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "o":
			m.viewMode = ViewOrrery
		case "2", "t":
			m.viewMode = ViewOverview
		case "3", "b":
			m.viewMode = ViewBodies
		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount

		case "j", "n":
			m.moveHighlight(1)
		case "k", "N":
			m.moveHighlight(-1)
		case "enter":
			m.selectBody(m.highlight)
		case "esc", "backspace":
			m.deselect()

		case "+", "=":
			m.stepTimeScale(sliderStep)
		case "-", "_":
			m.stepTimeScale(-sliderStep)
		case "R":
			m.toggleRealtime()

		case " ", "p":
			m.paused = !m.paused
			if m.paused {
				m.statusMsg = "Paused"
			} else {
				m.statusMsg = ""
			}

		default:
			// Pass to active view
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentHeight := m.contentHeight()
		m.orrery = m.orrery.SetSize(msg.Width, contentHeight)
		m.overview = m.overview.SetSize(msg.Width, contentHeight)
		m.bodies = m.bodies.SetSize(msg.Width, contentHeight)

	case FrameTickMsg:
		cmds = append(cmds, frameTickCmd())
		if !m.paused {
			m.advance()
		}

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	m.syncViews()
	return m, tea.Batch(cmds...)
}

// advance computes one frame and notifies the observers.
func (m *Model) advance() {
	start := time.Now()
	f := m.scene.Frame(1)
	took := time.Since(start)

	m.frame = f
	if m.state != nil {
		m.state.Update(f, took)
	}
	for _, fn := range m.hooks {
		fn(f, took)
	}
}

func (m *Model) syncViews() {
	m.orrery = m.orrery.UpdateData(m.frame, m.highlight)
	m.overview = m.overview.UpdateData(m.frame, m.highlight)
	m.bodies = m.bodies.UpdateData(m.frame, m.highlight)
	if m.state != nil && m.viewMode == ViewBodies {
		m.bodies = m.bodies.UpdateEvents(m.state.RecentEvents(20))
	}
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewOrrery:
		m.orrery, cmd = m.orrery.Update(msg)
	case ViewOverview:
		m.overview, cmd = m.overview.Update(msg)
	case ViewBodies:
		m.bodies, cmd = m.bodies.Update(msg)
	}
	return cmd
}

func (m *Model) moveHighlight(delta int) {
	n := len(scene.AllBodies())
	next := (int(m.highlight) + delta + n) % n
	m.highlight = scene.BodyID(next)
}

func (m *Model) selectBody(id scene.BodyID) {
	m.highlight = id
	if m.scene.Select(id) {
		m.statusMsg = "Following " + id.String()
		return
	}
	if sel := m.scene.Selection(); sel.Active && sel.Target == int(id) {
		m.statusMsg = "Already following " + id.String()
		return
	}
	m.statusMsg = id.String() + " cannot be followed"
}

func (m *Model) deselect() {
	if m.scene.Deselect() {
		m.statusMsg = "Released camera"
		return
	}
	if sel := m.scene.Selection(); sel.Active && sel.Transitioning {
		m.statusMsg = "Camera still moving"
	}
}

func (m *Model) stepTimeScale(delta int) {
	ts := m.scene.StepTimeScale(delta)
	m.statusMsg = fmt.Sprintf("Time scale %s s/yr (%s)", ts, ts.Label())
}

func (m *Model) toggleRealtime() {
	if m.scene.TimeScale().IsRealtime() {
		m.scene.SetTimeScale(timescale.Default())
	} else {
		m.scene.SetTimeScale(timescale.Realtime())
	}
	m.statusMsg = "Time scale " + m.scene.TimeScale().Label()
}

// handleMouse selects on left click and deselects on right click.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		id, ok := m.bodyAt(msg.X, msg.Y-headerLines)
		if !ok {
			return
		}
		m.selectBody(id)
	case tea.MouseButtonRight:
		m.deselect()
	}
}

func (m Model) bodyAt(col, row int) (scene.BodyID, bool) {
	switch m.viewMode {
	case ViewOrrery:
		return m.orrery.BodyAt(col, row)
	case ViewOverview:
		return m.overview.BodyAt(col, row)
	case ViewBodies:
		return m.bodies.BodyAt(col, row)
	}
	return 0, false
}

func (m Model) contentHeight() int {
	h := m.height - headerLines - footerLines
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewOrrery:
		content = m.orrery.View()
	case ViewOverview:
		content = m.overview.View()
	case ViewBodies:
		content = m.bodies.View()
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	header := m.renderHeader()
	footer := m.renderFooter()

	return header + "\n\n" + content + "\n" + footer
}

func (m Model) renderHeader() string {
	return m.renderTitle() + "\n" + m.renderTabs()
}

func (m Model) renderTitle() string {
	title := "  ls-orrery"
	runes := []rune(title)

	var b strings.Builder
	for col, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(col, len(runes)))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  v%s · solar system orrery", version.Version)))
	return b.String()
}

// gradientColor returns a hex color for a position in the title gradient:
// blue -> purple -> magenta.
func gradientColor(col, width int) string {
	t := float64(col) / float64(width)

	var r, g, b float64
	if t < 0.5 {
		// Blue to Purple
		s := t / 0.5
		r = 59 + s*(139-59)
		g = 130 + s*(92-130)
		b = 246
	} else {
		// Purple to Magenta
		s := (t - 0.5) / 0.5
		r = 139 + s*(217-139)
		g = 92 + s*(70-92)
		b = 246 + s*(239-246)
	}

	return fmt.Sprintf("#%02X%02X%02X", int(r), int(g), int(b))
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Orrery", "[2] Top-down", "[3] Bodies"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	ts := m.scene.TimeScale()
	status := accentStyle.Render("Speed ") + valueStyle.Render(ts.Label()) +
		dimStyle.Render(fmt.Sprintf(" (%s s/yr)", ts)) +
		accentStyle.Render("  Sim ") + valueStyle.Render(astro.FormatSimDuration(m.frame.SimDuration())) +
		accentStyle.Render("  Frame ") + valueStyle.Render(fmt.Sprintf("%d", m.frame.Number))
	if m.statusMsg != "" {
		status += "  " + dimStyle.Render(m.statusMsg)
	}

	var help string
	switch m.viewMode {
	case ViewOverview:
		help = "j/k: highlight | enter: follow | esc: release | +/-: speed | R: realtime | [/]: zoom | arrows: pan | z: scale | l: labels"
	case ViewBodies:
		help = "j/k: highlight | enter: follow | esc: release | +/-: speed | R: realtime | click row: follow"
	default:
		help = "click: follow | right-click: release | j/k: highlight | +/-: speed | R: realtime | r: orbits | l: labels | space: pause"
	}

	return "  " + status + "\n  " + dimStyle.Render(help)
}

// Frame returns the latest frame shown.
func (m Model) Frame() scene.Frame {
	return m.frame
}

func frameTickCmd() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return FrameTickMsg(t)
	})
}
