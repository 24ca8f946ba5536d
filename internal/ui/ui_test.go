package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/timescale"
)

type harness struct {
	t     *testing.T
	m     Model
	scene *scene.Scene
	clock *camera.ManualClock
	state *state.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s, clock := newTestScene(t)
	mgr := state.NewManager(state.DefaultConfig())
	s.OnEvent(mgr.Record)

	h := &harness{t: t, m: New(s, mgr), scene: s, clock: clock, state: mgr}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	m, ok := next.(Model)
	if !ok {
		h.t.Fatalf("Update returned %T", next)
	}
	h.m = m
	return cmd
}

func (h *harness) key(s string) tea.Cmd {
	switch s {
	case "enter":
		return h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "tab":
		return h.send(tea.KeyMsg{Type: tea.KeyTab})
	case " ":
		return h.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	}
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) click(button tea.MouseButton, col, row int) {
	h.send(tea.MouseMsg{X: col, Y: row + headerLines, Button: button, Action: tea.MouseActionPress})
}

func TestModelInit(t *testing.T) {
	s, _ := newTestScene(t)
	m := New(s, nil)

	if m.viewMode != ViewOrrery {
		t.Errorf("expected ViewOrrery, got %d", m.viewMode)
	}
	if m.highlight != scene.Earth {
		t.Errorf("expected Earth highlighted, got %v", m.highlight)
	}
	if m.Init() == nil {
		t.Error("Init should start the frame ticker")
	}
	if m.View() != "Initializing..." {
		t.Error("view before the first size message should be a placeholder")
	}
}

func TestModelQuit(t *testing.T) {
	h := newHarness(t)
	cmd := h.key("q")
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelViewSwitching(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		key  string
		want ViewMode
	}{
		{"2", ViewOverview},
		{"3", ViewBodies},
		{"1", ViewOrrery},
		{"tab", ViewOverview},
		{"tab", ViewBodies},
		{"tab", ViewOrrery},
		{"b", ViewBodies},
		{"t", ViewOverview},
		{"o", ViewOrrery},
	}

	for _, tt := range tests {
		h.key(tt.key)
		if h.m.viewMode != tt.want {
			t.Errorf("after %q: view %d, want %d", tt.key, h.m.viewMode, tt.want)
		}
	}
}

func TestModelWindowSize(t *testing.T) {
	h := newHarness(t)

	want := 40 - headerLines - footerLines
	if h.m.orrery.height != want || h.m.overview.height != want || h.m.bodies.height != want {
		t.Errorf("sub-model heights = %d/%d/%d, want %d",
			h.m.orrery.height, h.m.overview.height, h.m.bodies.height, want)
	}
	if h.m.orrery.width != 120 {
		t.Errorf("width = %d, want 120", h.m.orrery.width)
	}

	lines := strings.Split(h.m.View(), "\n")
	if len(lines) != 40 {
		t.Errorf("view has %d lines, want 40", len(lines))
	}
}

func TestModelHighlightWraps(t *testing.T) {
	h := newHarness(t)

	h.key("j")
	if h.m.highlight != scene.Mars {
		t.Errorf("j: got %v, want Mars", h.m.highlight)
	}

	for i := 0; i < 5; i++ {
		h.key("k")
	}
	if h.m.highlight != scene.Neptune {
		t.Errorf("k past the Sun: got %v, want Neptune", h.m.highlight)
	}
	if h.m.orrery.highlight != scene.Neptune || h.m.bodies.highlight != scene.Neptune {
		t.Error("highlight should reach the sub-models")
	}
}

func TestModelSelectAndRelease(t *testing.T) {
	h := newHarness(t)

	h.key("enter")
	sel := h.scene.Selection()
	if !sel.Active || sel.Target != int(scene.Earth) || !sel.Transitioning {
		t.Fatalf("after enter: %+v", sel)
	}
	if !strings.Contains(h.m.statusMsg, "Following Earth") {
		t.Errorf("status = %q", h.m.statusMsg)
	}

	// Releasing mid-transition is refused.
	h.key("esc")
	if !h.scene.Selection().Active {
		t.Error("deselect should wait for the lock")
	}
	if h.m.statusMsg != "Camera still moving" {
		t.Errorf("status = %q", h.m.statusMsg)
	}

	h.clock.Advance(camera.DefaultConfig().TransitionDelay)
	if h.scene.Selection().Phase() != camera.PhaseLocked {
		t.Fatalf("expected lock, got %v", h.scene.Selection().Phase())
	}

	h.key("enter")
	if h.m.statusMsg != "Already following Earth" {
		t.Errorf("status = %q", h.m.statusMsg)
	}

	h.key("esc")
	if h.scene.Selection().Active {
		t.Error("esc should release a locked selection")
	}

	events := h.state.RecentEvents(10)
	var types []string
	for _, e := range events {
		types = append(types, string(e.Type))
	}
	if got := strings.Join(types, ","); got != "SELECT,LOCK,DESELECT" {
		t.Errorf("events = %s", got)
	}
}

func TestModelSelectSun(t *testing.T) {
	h := newHarness(t)

	for h.m.highlight != scene.Sun {
		h.key("k")
	}
	h.key("enter")

	if h.scene.Selection().Active {
		t.Error("the Sun should not be selectable")
	}
	if h.m.statusMsg != "Sun cannot be followed" {
		t.Errorf("status = %q", h.m.statusMsg)
	}
}

func TestModelTimeScaleKeys(t *testing.T) {
	h := newHarness(t)

	h.key("+")
	if got := h.scene.TimeScale().SliderValue(); got != timescale.DefaultSecondsPerYear+sliderStep {
		t.Errorf("after +: slider %d", got)
	}

	h.key("-")
	h.key("-")
	if got := h.scene.TimeScale().SliderValue(); got != timescale.DefaultSecondsPerYear-sliderStep {
		t.Errorf("after --: slider %d", got)
	}

	h.key("R")
	if !h.scene.TimeScale().IsRealtime() {
		t.Error("R should switch to realtime")
	}
	if !strings.Contains(h.m.View(), "realtime") {
		t.Error("footer should show realtime")
	}

	h.key("R")
	if h.scene.TimeScale() != timescale.Default() {
		t.Errorf("R again should restore the default, got %s", h.scene.TimeScale())
	}

	n := 0
	for _, e := range h.state.RecentEvents(10) {
		if e.Type == state.EventTimeScale {
			n++
		}
	}
	if n != 5 {
		t.Errorf("expected 5 time scale events, got %d", n)
	}
}

func TestModelFrameTick(t *testing.T) {
	h := newHarness(t)

	var hooked []uint64
	h.m = h.m.WithFrameHook(func(f scene.Frame, took time.Duration) {
		hooked = append(hooked, f.Number)
	})

	if cmd := h.send(FrameTickMsg(epoch)); cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	h.send(FrameTickMsg(epoch))

	if h.m.Frame().Number != 2 {
		t.Errorf("frame = %d, want 2", h.m.Frame().Number)
	}
	if len(hooked) != 2 || hooked[1] != 2 {
		t.Errorf("hook saw %v", hooked)
	}
	if !h.state.HasData() {
		t.Error("state manager should have the frame")
	}
	if h.m.orrery.frame.Number != 2 {
		t.Error("sub-models should receive the frame")
	}

	h.key(" ")
	if !h.m.paused {
		t.Fatal("space should pause")
	}
	h.send(FrameTickMsg(epoch))
	if h.m.Frame().Number != 2 {
		t.Error("paused model should not advance")
	}

	h.key(" ")
	h.send(FrameTickMsg(epoch))
	if h.m.Frame().Number != 3 {
		t.Errorf("resumed frame = %d, want 3", h.m.Frame().Number)
	}
}

func TestModelMouseSelect(t *testing.T) {
	h := newHarness(t)

	w, ch := h.m.orrery.canvasSize()
	neptune, _ := h.m.frame.Body(scene.Neptune)
	sp := h.m.orrery.projector().Project(neptune.Position)
	col, row := toCell(sp.X, sp.Y, w, ch)

	// Releases and motion are ignored.
	h.send(tea.MouseMsg{X: col, Y: row + headerLines, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if h.scene.Selection().Active {
		t.Fatal("release should not select")
	}

	h.click(tea.MouseButtonLeft, col, row)
	sel := h.scene.Selection()
	if !sel.Active || sel.Target != int(scene.Neptune) {
		t.Fatalf("click on Neptune: %+v", sel)
	}
	if h.m.highlight != scene.Neptune {
		t.Errorf("click should move the highlight, got %v", h.m.highlight)
	}

	// Clicking empty space keeps the selection.
	h.click(tea.MouseButtonLeft, 0, 0)
	if !h.scene.Selection().Active {
		t.Error("click on empty space should not deselect")
	}

	h.clock.Advance(camera.DefaultConfig().TransitionDelay)
	h.click(tea.MouseButtonRight, 0, 0)
	if h.scene.Selection().Active {
		t.Error("right click should release the lock")
	}
}

func TestModelMouseBodiesTable(t *testing.T) {
	h := newHarness(t)
	h.key("3")

	// Title and header precede the rows; Mars is the fifth body.
	h.click(tea.MouseButtonLeft, 10, 2+int(scene.Mars))
	if sel := h.scene.Selection(); !sel.Active || sel.Target != int(scene.Mars) {
		t.Errorf("row click: %+v", sel)
	}
}

func TestModelBodiesViewShowsEvents(t *testing.T) {
	h := newHarness(t)
	h.key("enter")
	h.key("3")

	if len(h.m.bodies.events) != 1 || h.m.bodies.events[0].Type != state.EventSelect {
		t.Errorf("bodies view events = %+v", h.m.bodies.events)
	}
}

func TestModelView(t *testing.T) {
	h := newHarness(t)
	view := h.m.View()

	for _, want := range []string{"ls-orrery", "Orrery", "Top-down", "Bodies", "Speed", "1.0x", "365 s/yr", "Frame"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestGradientColor(t *testing.T) {
	if got := gradientColor(0, 10); got != "#3B82F6" {
		t.Errorf("start = %s, want #3B82F6", got)
	}
	if got := gradientColor(5, 10); got != "#8B5CF6" {
		t.Errorf("middle = %s, want #8B5CF6", got)
	}
}
