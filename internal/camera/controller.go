// Package camera moves the viewing camera toward whichever body is selected:
// an exponential approach for a fixed delay after selection, then a rigid lock.
package camera

import (
	"sync"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/kinematics"
	"github.com/litescript/ls-orrery/internal/logging"
)

// Camera is the eye position and the point it looks at.
type Camera struct {
	Position astro.Vec3
	LookAt   astro.Vec3
}

// Phase is the selection state machine's current state.
type Phase int

const (
	PhaseUnselected Phase = iota
	PhaseTransitioning
	PhaseLocked
)

func (p Phase) String() string {
	switch p {
	case PhaseUnselected:
		return "unselected"
	case PhaseTransitioning:
		return "transitioning"
	case PhaseLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Selection records which body, if any, the camera follows.
type Selection struct {
	Target        int  // Body ID; meaningful only when Active
	Active        bool // A body is selected
	Transitioning bool // Camera is easing toward the target
	Generation    uint64
}

// Phase maps the selection flags onto the state machine.
func (s Selection) Phase() Phase {
	switch {
	case !s.Active:
		return PhaseUnselected
	case s.Transitioning:
		return PhaseTransitioning
	default:
		return PhaseLocked
	}
}

// Config tunes the follow behaviour.
type Config struct {
	LerpFactor      float64       // Fraction of the remaining distance covered per frame
	TransitionDelay time.Duration // Time from selection until the rigid lock
	HeightFactor    float64       // Vertical offset in body radii
	StandoffFactor  float64       // Outward scale per radius/distance ratio

	// LookAtSelected aims the camera at the selected body instead of the origin.
	LookAtSelected bool

	// RelaxToHome eases the camera back to HomePosition when nothing is selected.
	RelaxToHome  bool
	HomePosition astro.Vec3

	// LastWriteWins keeps stale lock timers alive across re-selection, so a
	// timer armed for an earlier body can end a later body's transition early.
	LastWriteWins bool
}

// DefaultConfig returns the standard follow parameters.
func DefaultConfig() Config {
	return Config{
		LerpFactor:      0.1,
		TransitionDelay: 750 * time.Millisecond,
		HeightFactor:    2,
		StandoffFactor:  5,
		HomePosition:    astro.Vec3{X: 0, Y: 250, Z: 600},
	}
}

// GoodPosition returns the camera placement that frames a body from above
// and outside its orbit.
func GoodPosition(bodyPos astro.Vec3, radius float64, cfg Config) astro.Vec3 {
	p := bodyPos.Add(astro.Vec3{Y: cfg.HeightFactor * radius})
	d := bodyPos.Norm()
	if d == 0 {
		return p
	}
	return p.Scale(1 + cfg.StandoffFactor*(radius/d))
}

// Follow computes the next camera for one frame. target is the freshly
// updated selected body and is ignored when sel is not Active.
func Follow(cam Camera, sel Selection, target *kinematics.Body, cfg Config) Camera {
	next := Camera{Position: cam.Position, LookAt: astro.Origin}

	if !sel.Active || target == nil {
		if cfg.RelaxToHome {
			next.Position = cam.Position.Lerp(cfg.HomePosition, cfg.LerpFactor)
		}
		return next
	}

	good := GoodPosition(target.Position, target.Size, cfg)
	if sel.Transitioning {
		next.Position = cam.Position.Lerp(good, cfg.LerpFactor)
	} else {
		next.Position = good
	}
	if cfg.LookAtSelected {
		next.LookAt = target.Position
	}
	return next
}

// EventKind identifies a selection change.
type EventKind string

const (
	EventSelect   EventKind = "SELECT"
	EventLock     EventKind = "LOCK"
	EventDeselect EventKind = "DESELECT"
)

// Event reports a selection transition.
type Event struct {
	Kind       EventKind
	Target     int
	Name       string
	Generation uint64
	At         time.Time
}

// Controller owns the selection state and the camera. The frame loop calls
// Update; input handlers call Select and Deselect; the lock timer fires on
// the clock's goroutine. All three may run concurrently.
type Controller struct {
	mu      sync.Mutex
	cfg     Config
	clock   Clock
	logger  *logging.Logger
	sel     Selection
	name    string // Selected body's name, for events
	cam     Camera
	pending map[uint64]Timer // Lock timers by generation
	closed  bool
	onEvent func(Event)
}

// NewController creates a controller with the camera at start.
func NewController(cfg Config, clock Clock, logger *logging.Logger, start astro.Vec3) *Controller {
	if clock == nil {
		clock = RealClock()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		cfg:    cfg,
		clock:  clock,
		logger: logger,
		cam:     Camera{Position: start, LookAt: astro.Origin},
		pending: make(map[uint64]Timer),
	}
}

// OnEvent registers a callback for selection transitions. The callback runs
// outside the controller's lock, possibly on the timer goroutine.
func (c *Controller) OnEvent(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvent = fn
}

// Select starts following b. Stationary bodies and the current selection
// are ignored. It reports whether the selection changed.
func (c *Controller) Select(b kinematics.Body) bool {
	c.mu.Lock()

	if b.Stationary() {
		c.mu.Unlock()
		return false
	}
	if c.sel.Active && c.sel.Target == b.ID {
		c.mu.Unlock()
		return false
	}

	if c.closed {
		c.mu.Unlock()
		return false
	}
	if !c.cfg.LastWriteWins {
		c.stopTimersLocked()
	}

	c.sel.Generation++
	c.sel.Target = b.ID
	c.sel.Active = true
	c.sel.Transitioning = true
	c.name = b.Name

	gen := c.sel.Generation
	c.pending[gen] = c.clock.AfterFunc(c.cfg.TransitionDelay, func() { c.lock(gen) })

	ev := c.eventLocked(EventSelect)
	fn := c.onEvent
	c.mu.Unlock()

	c.logger.Debug("select %s (generation %d)", b.Name, gen)
	if fn != nil {
		fn(ev)
	}
	return true
}

// lock ends the transition armed by generation gen.
func (c *Controller) lock(gen uint64) {
	c.mu.Lock()
	delete(c.pending, gen)

	if c.closed {
		c.mu.Unlock()
		return
	}
	if !c.cfg.LastWriteWins && gen != c.sel.Generation {
		c.mu.Unlock()
		c.logger.Debug("stale lock timer for generation %d ignored", gen)
		return
	}
	if !c.sel.Transitioning {
		c.mu.Unlock()
		return
	}
	c.sel.Transitioning = false

	// The flag flips even with nothing selected, as a stale timer would.
	if !c.sel.Active {
		c.mu.Unlock()
		return
	}
	ev := c.eventLocked(EventLock)
	fn := c.onEvent
	c.mu.Unlock()

	c.logger.Debug("locked on %s", ev.Name)
	if fn != nil {
		fn(ev)
	}
}

// Deselect clears a locked selection. While the camera is transitioning,
// or when nothing is selected, it does nothing. It reports whether the
// selection changed.
func (c *Controller) Deselect() bool {
	c.mu.Lock()

	if !c.sel.Active || c.sel.Transitioning {
		c.mu.Unlock()
		return false
	}

	ev := c.eventLocked(EventDeselect)
	c.sel.Active = false
	c.sel.Transitioning = true
	c.name = ""
	fn := c.onEvent
	c.mu.Unlock()

	c.logger.Debug("deselect %s", ev.Name)
	if fn != nil {
		fn(ev)
	}
	return true
}

// Update advances the camera by one frame. resolve returns the current
// state of a body by ID.
func (c *Controller) Update(resolve func(id int) (kinematics.Body, bool)) Camera {
	c.mu.Lock()
	defer c.mu.Unlock()

	var target *kinematics.Body
	if c.sel.Active && resolve != nil {
		if b, ok := resolve(c.sel.Target); ok {
			target = &b
		}
	}
	c.cam = Follow(c.cam, c.sel, target, c.cfg)
	return c.cam
}

// Camera returns the camera as of the last Update.
func (c *Controller) Camera() Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cam
}

// Selection returns a copy of the selection state.
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// Close cancels every pending lock timer. Later selections are refused and
// a timer already running when Close is called does nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimersLocked()
}

func (c *Controller) stopTimersLocked() {
	for gen, t := range c.pending {
		t.Stop()
		delete(c.pending, gen)
	}
}

func (c *Controller) eventLocked(kind EventKind) Event {
	return Event{
		Kind:       kind,
		Target:     c.sel.Target,
		Name:       c.name,
		Generation: c.sel.Generation,
		At:         c.clock.Now(),
	}
}
