// Package state provides thread-safe state management for the application.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-orrery/internal/scene"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventSelect    EventType = EventType(scene.EventSelect)
	EventLock      EventType = EventType(scene.EventLock)
	EventDeselect  EventType = EventType(scene.EventDeselect)
	EventTimeScale EventType = EventType(scene.EventTimeScale)
)

// Event represents a selection or time-scale change.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Body      string    `json:"body,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Frame     uint64    `json:"frame"`
}

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Frame uint64
	Value float64
}

// BodyHistory tracks radius drift for one body.
type BodyHistory struct {
	Body  scene.BodyID
	Drift []TimeSeries
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	current       *scene.Frame
	lastUpdate    time.Time
	frameDuration time.Duration

	// Per-body drift history, sampled every sampleEvery frames
	history     map[scene.BodyID]*BodyHistory
	maxHistory  int
	sampleEvery uint64

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	now func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents   int
	MaxHistory  int
	SampleEvery uint64
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents:   50,  // Last 50 events
		MaxHistory:  600, // 10 minutes at one sample per second
		SampleEvery: 60,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	sample := cfg.SampleEvery
	if sample == 0 {
		sample = 1
	}
	return &Manager{
		maxEvents:   maxEvents,
		events:      make([]Event, 0, maxEvents),
		maxHistory:  cfg.MaxHistory,
		sampleEvery: sample,
		history:     make(map[scene.BodyID]*BodyHistory),
		now:         time.Now,
	}
}

// Update stores the latest frame and how long it took to compute.
func (m *Manager) Update(f scene.Frame, frameDuration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = &f
	m.lastUpdate = m.now()
	m.frameDuration = frameDuration

	if m.maxHistory > 0 && f.Number%m.sampleEvery == 0 {
		m.recordHistory(f)
	}
}

func (m *Manager) recordHistory(f scene.Frame) {
	for _, b := range f.Bodies {
		hist, ok := m.history[b.ID]
		if !ok {
			hist = &BodyHistory{Body: b.ID, Drift: make([]TimeSeries, 0, m.maxHistory)}
			m.history[b.ID] = hist
		}
		hist.Drift = append(hist.Drift, TimeSeries{Frame: f.Number, Value: b.Drift})
		if len(hist.Drift) > m.maxHistory {
			hist.Drift = hist.Drift[1:]
		}
	}
}

// Record appends a scene event to the log. It matches the scene's event hook.
func (m *Manager) Record(ev scene.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := Event{
		Type:      EventType(ev.Kind),
		Timestamp: ev.At,
		Detail:    ev.Detail,
	}
	if ev.Kind != scene.EventTimeScale {
		e.Body = ev.Body.String()
	}
	if m.current != nil {
		e.Frame = m.current.Number
	}
	m.addEvent(e)
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Frame         *scene.Frame
	LastUpdate    time.Time
	FrameDuration time.Duration
	Events        []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Frame:         m.current,
		LastUpdate:    m.lastUpdate,
		FrameDuration: m.frameDuration,
		Events:        m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// GetBodyHistory returns the drift history for a body.
func (m *Manager) GetBodyHistory(id scene.BodyID) *BodyHistory {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist, ok := m.history[id]
	if !ok {
		return nil
	}

	// Return a copy
	out := &BodyHistory{Body: hist.Body, Drift: make([]TimeSeries, len(hist.Drift))}
	copy(out.Drift, hist.Drift)
	return out
}

// MaxDrift returns the largest drift recorded for a body.
func (m *Manager) MaxDrift(id scene.BodyID) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist, ok := m.history[id]
	if !ok {
		return 0
	}
	var max float64
	for _, p := range hist.Drift {
		if p.Value > max {
			max = p.Value
		}
	}
	return max
}

// HasData returns true once at least one frame has been stored.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
