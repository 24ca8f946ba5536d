package scene

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/kinematics"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/timescale"
)

// Config holds configuration for a scene.
type Config struct {
	Kinematics  kinematics.Config
	Camera      camera.Config
	TimeScale   timescale.Scale
	CameraStart astro.Vec3
	FOVDeg      float64
}

// DefaultConfig returns the standard scene configuration.
func DefaultConfig() Config {
	cam := camera.DefaultConfig()
	return Config{
		Kinematics:  kinematics.DefaultConfig(),
		Camera:      cam,
		TimeScale:   timescale.Default(),
		CameraStart: cam.HomePosition,
		FOVDeg:      75,
	}
}

// EventKind identifies a scene event.
type EventKind string

const (
	EventSelect    EventKind = EventKind(camera.EventSelect)
	EventLock      EventKind = EventKind(camera.EventLock)
	EventDeselect  EventKind = EventKind(camera.EventDeselect)
	EventTimeScale EventKind = "TIMESCALE"
)

// Event reports a user-visible change in the scene.
type Event struct {
	Kind   EventKind
	Body   BodyID
	At     time.Time
	Detail string
}

// SimulationState is the mutable per-frame state passed through the
// updaters. Bodies are indexed by BodyID.
type SimulationState struct {
	Frame      uint64
	SimSeconds float64
	TimeScale  timescale.Scale
	Bodies     [bodyCount]kinematics.Body
}

// Scene drives the kinematics and the camera once per rendered frame.
type Scene struct {
	mu        sync.Mutex
	cfg       Config
	catalog   Catalog
	materials Materials
	updater   *kinematics.Updater
	camera    *camera.Controller
	clock     camera.Clock
	logger    *logging.Logger
	state     SimulationState
	onEvent   func(Event)
}

// New validates the catalog and builds a scene with every body at
// (distance, 0, 0).
func New(cfg Config, cat Catalog, mats Materials, clock camera.Clock, logger *logging.Logger) (*Scene, error) {
	if clock == nil {
		clock = camera.RealClock()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.TimeScale == (timescale.Scale{}) {
		cfg.TimeScale = timescale.Default()
	}

	s := &Scene{
		cfg:       cfg,
		catalog:   cat,
		materials: mats,
		updater:   kinematics.NewUpdater(cfg.Kinematics),
		clock:     clock,
		logger:    logger,
	}
	s.state.TimeScale = cfg.TimeScale

	for _, id := range AllBodies() {
		def := cat[id]
		if def.ID != id {
			return nil, fmt.Errorf("catalog slot %s holds %s", id, def.ID)
		}
		b := kinematics.NewBody(int(id), id.String(), def.Distance, def.Size,
			cfg.TimeScale.OrbitalPeriod(def.OrbitalYears), def.SpinPeriod)
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("scene setup: %w", err)
		}
		s.state.Bodies[id] = b
	}

	s.camera = camera.NewController(cfg.Camera, clock, logger.Named("camera"), cfg.CameraStart)
	s.camera.OnEvent(s.forwardCameraEvent)
	return s, nil
}

// OnEvent registers a callback for scene events. It may be invoked from the
// camera's timer goroutine.
func (s *Scene) OnEvent(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = fn
}

func (s *Scene) emit(ev Event) {
	s.mu.Lock()
	fn := s.onEvent
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (s *Scene) forwardCameraEvent(ev camera.Event) {
	s.emit(Event{Kind: EventKind(ev.Kind), Body: BodyID(ev.Target), At: ev.At, Detail: ev.Name})
}

// Frame advances the simulation by the given number of frames (normally 1)
// and returns a snapshot of the result.
func (s *Scene) Frame(frames float64) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	scale := s.state.TimeScale
	for _, id := range AllBodies() {
		b := s.state.Bodies[id]
		b.OrbitalPeriod = scale.OrbitalPeriod(s.catalog[id].OrbitalYears)
		s.state.Bodies[id] = s.updater.Step(b, frames)
	}
	s.state.Frame++
	fps := s.updater.Config().FramesPerSecond
	s.state.SimSeconds += frames / fps * scale.SimSecondsPerRealSecond()

	s.camera.Update(s.resolveLocked)
	return s.snapshotLocked()
}

func (s *Scene) resolveLocked(id int) (kinematics.Body, bool) {
	bid := BodyID(id)
	if !bid.Valid() {
		return kinematics.Body{}, false
	}
	return s.state.Bodies[bid], true
}

// Snapshot returns the current frame without advancing.
func (s *Scene) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Select starts following a body. The Sun, the current selection and
// unknown IDs are ignored. It reports whether the selection changed.
func (s *Scene) Select(id BodyID) bool {
	s.mu.Lock()
	if !id.Valid() {
		s.mu.Unlock()
		return false
	}
	b := s.state.Bodies[id]
	s.mu.Unlock()
	return s.camera.Select(b)
}

// BodyAt hit-tests the current frame at normalized screen coordinates.
func (s *Scene) BodyAt(x, y, aspect, minRadius float64) (BodyID, bool) {
	f := s.Snapshot()
	return f.HitTest(f.Projector(aspect), x, y, minRadius)
}

// Deselect releases a locked selection.
func (s *Scene) Deselect() bool {
	return s.camera.Deselect()
}

// Selection returns the camera's selection state.
func (s *Scene) Selection() camera.Selection {
	return s.camera.Selection()
}

// TimeScale returns the current slider setting.
func (s *Scene) TimeScale() timescale.Scale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TimeScale
}

// SetTimeScale moves the slider. Orbital periods pick it up on the next frame.
func (s *Scene) SetTimeScale(ts timescale.Scale) {
	s.mu.Lock()
	if s.state.TimeScale == ts {
		s.mu.Unlock()
		return
	}
	s.state.TimeScale = ts
	s.mu.Unlock()

	s.logger.Debug("time scale %s (%s)", ts, ts.Label())
	s.emit(Event{Kind: EventTimeScale, At: s.clock.Now(), Detail: ts.Label()})
}

// StepTimeScale nudges the slider by delta.
func (s *Scene) StepTimeScale(delta int) timescale.Scale {
	next := s.TimeScale().Step(delta)
	s.SetTimeScale(next)
	return next
}

// Material returns the material for a body.
func (s *Scene) Material(id BodyID) Material {
	return s.materials.Get(id)
}

// Close stops the camera's pending timer.
func (s *Scene) Close() {
	s.camera.Close()
}

// State returns a copy of the simulation state.
func (s *Scene) State() SimulationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scene) snapshotLocked() Frame {
	cam := s.camera.Camera()
	sel := s.camera.Selection()
	scale := s.state.TimeScale

	f := Frame{
		Number:     s.state.Frame,
		SimSeconds: s.state.SimSeconds,
		TimeScale:  scale.String(),
		Speed:      scale.Label(),
		Camera: CameraState{
			Position: cam.Position,
			LookAt:   cam.LookAt,
			FOVDeg:   s.cfg.FOVDeg,
		},
		Selection: SelectionState{
			Phase:      sel.Phase().String(),
			Generation: sel.Generation,
		},
		Bodies: make([]BodyState, 0, bodyCount),
	}
	if sel.Active {
		f.Selection.Body = BodyID(sel.Target).String()
	}

	for _, id := range AllBodies() {
		b := s.state.Bodies[id]
		mat := s.materials.Get(id)
		f.Bodies = append(f.Bodies, BodyState{
			ID:           id,
			Name:         b.Name,
			Position:     b.Position,
			Distance:     b.Distance,
			Size:         b.Size,
			SelfRotation: b.SelfRotation,
			AngleDeg:     astro.OrbitalAngleDeg(b.Position),
			Drift:        kinematics.Drift(b),
			Color:        mat.Color,
			Glyph:        string(mat.Glyph),
			Textured:     mat.Textured,
			Selected:     sel.Active && sel.Target == int(id),
		})
	}
	return f
}

// Frame is an immutable snapshot of one rendered frame.
type Frame struct {
	Number     uint64         `json:"frame"`
	SimSeconds float64        `json:"sim_seconds"`
	TimeScale  string         `json:"time_scale"`
	Speed      string         `json:"speed"`
	Camera     CameraState    `json:"camera"`
	Selection  SelectionState `json:"selection"`
	Bodies     []BodyState    `json:"bodies"`
}

// CameraState is the camera as of a frame.
type CameraState struct {
	Position astro.Vec3 `json:"position"`
	LookAt   astro.Vec3 `json:"look_at"`
	FOVDeg   float64    `json:"fov_deg"`
}

// SelectionState is the selection as of a frame.
type SelectionState struct {
	Body       string `json:"body,omitempty"`
	Phase      string `json:"phase"`
	Generation uint64 `json:"generation"`
}

// BodyState is one body as of a frame.
type BodyState struct {
	ID           BodyID     `json:"id"`
	Name         string     `json:"name"`
	Position     astro.Vec3 `json:"position"`
	Distance     float64    `json:"distance"`
	Size         float64    `json:"size"`
	SelfRotation float64    `json:"self_rotation"`
	AngleDeg     float64    `json:"angle_deg"`
	Drift        float64    `json:"drift"`
	Color        string     `json:"color"`
	Glyph        string     `json:"glyph"`
	Textured     bool       `json:"textured"`
	Selected     bool       `json:"selected,omitempty"`
}

// SimDuration returns simulated elapsed time.
func (f Frame) SimDuration() time.Duration {
	secs := math.Min(f.SimSeconds, float64(math.MaxInt64/int64(time.Second)))
	return time.Duration(secs * float64(time.Second))
}

// Body returns a body's state by ID.
func (f Frame) Body(id BodyID) (BodyState, bool) {
	for _, b := range f.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodyState{}, false
}

// Selected returns the selected body, if any.
func (f Frame) Selected() (BodyState, bool) {
	for _, b := range f.Bodies {
		if b.Selected {
			return b, true
		}
	}
	return BodyState{}, false
}

// Projector returns a perspective projector for the frame's camera.
func (f Frame) Projector(aspect float64) astro.Projector {
	return astro.NewProjector(f.Camera.Position, f.Camera.LookAt, f.Camera.FOVDeg, aspect)
}

// HitTest returns the front-most body whose projected disc contains the
// normalized screen point (x, y). minRadius widens small discs so distant
// planets stay clickable.
func (f Frame) HitTest(proj astro.Projector, x, y, minRadius float64) (BodyID, bool) {
	best := BodyID(-1)
	bestDepth := math.Inf(1)
	for _, b := range f.Bodies {
		sp := proj.Project(b.Position)
		if !sp.Visible {
			continue
		}
		r := math.Max(proj.ProjectRadius(b.Size, sp.Depth), minRadius)
		// X is normalized by aspect; compare in vertical units.
		dx := (sp.X - x) * proj.Aspect
		dy := sp.Y - y
		if dx*dx+dy*dy > r*r {
			continue
		}
		if sp.Depth < bestDepth {
			best = b.ID
			bestDepth = sp.Depth
		}
	}
	return best, best.Valid()
}
