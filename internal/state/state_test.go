package state

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-orrery/internal/scene"
)

func testFrame(n uint64, earthDrift float64) scene.Frame {
	return scene.Frame{
		Number: n,
		Bodies: []scene.BodyState{
			{ID: scene.Sun, Name: "Sun"},
			{ID: scene.Earth, Name: "Earth", Distance: 100, Drift: earthDrift},
		},
	}
}

func TestNewManager(t *testing.T) {
	m := NewManager(DefaultConfig())

	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if m.HasData() {
		t.Error("HasData should be false initially")
	}
	if got := m.RecentEvents(10); got != nil {
		t.Errorf("RecentEvents = %v, want nil", got)
	}
}

func TestManager_Update(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.Update(testFrame(1, 0), 2*time.Millisecond)

	if !m.HasData() {
		t.Error("HasData should be true after Update")
	}

	snap := m.Snapshot()
	if snap.Frame == nil || snap.Frame.Number != 1 {
		t.Fatalf("Snapshot Frame = %+v", snap.Frame)
	}
	if snap.FrameDuration != 2*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 2ms", snap.FrameDuration)
	}
	if snap.LastUpdate.IsZero() {
		t.Error("LastUpdate should be set")
	}
}

func TestManager_BodyHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxHistory = 3
	cfg.SampleEvery = 2
	m := NewManager(cfg)

	for i := uint64(1); i <= 10; i++ {
		m.Update(testFrame(i, float64(i)*1e-4), 0)
	}

	hist := m.GetBodyHistory(scene.Earth)
	if hist == nil {
		t.Fatal("no history for Earth")
	}
	// Sampled at frames 2, 4, 6, 8, 10 and trimmed to the last three.
	if len(hist.Drift) != 3 {
		t.Fatalf("history len = %d, want 3", len(hist.Drift))
	}
	if hist.Drift[0].Frame != 6 || hist.Drift[2].Frame != 10 {
		t.Errorf("history frames = %d..%d, want 6..10", hist.Drift[0].Frame, hist.Drift[2].Frame)
	}

	if got := m.MaxDrift(scene.Earth); math.Abs(got-1e-3) > 1e-12 {
		t.Errorf("MaxDrift = %v, want 0.001", got)
	}
	if m.GetBodyHistory(scene.Neptune) != nil {
		t.Error("Neptune never appeared and should have no history")
	}
	if m.MaxDrift(scene.Neptune) != 0 {
		t.Error("MaxDrift of unknown body should be 0")
	}
}

func TestManager_BodyHistory_IsCopy(t *testing.T) {
	m := NewManager(Config{MaxHistory: 5, SampleEvery: 1})
	m.Update(testFrame(1, 0.5), 0)

	hist := m.GetBodyHistory(scene.Earth)
	hist.Drift[0].Value = 99

	if m.MaxDrift(scene.Earth) != 0.5 {
		t.Error("modifying returned history changed the manager")
	}
}

func TestManager_Record(t *testing.T) {
	m := NewManager(DefaultConfig())
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	m.Update(testFrame(42, 0), 0)
	m.Record(scene.Event{Kind: scene.EventSelect, Body: scene.Mars, At: at, Detail: "Mars"})
	m.Record(scene.Event{Kind: scene.EventTimeScale, At: at.Add(time.Second), Detail: "365x"})

	events := m.RecentEvents(10)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventSelect || events[0].Body != "Mars" {
		t.Errorf("event 0 = %+v", events[0])
	}
	if events[0].Frame != 42 {
		t.Errorf("event frame = %d, want 42", events[0].Frame)
	}
	if events[1].Type != EventTimeScale || events[1].Body != "" || events[1].Detail != "365x" {
		t.Errorf("event 1 = %+v", events[1])
	}
}

func TestManager_EventRingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 5
	m := NewManager(cfg)

	base := time.Now()
	kinds := []scene.EventKind{scene.EventSelect, scene.EventLock, scene.EventDeselect}
	for i := 0; i < 12; i++ {
		m.Record(scene.Event{
			Kind: kinds[i%len(kinds)],
			Body: scene.Earth,
			At:   base.Add(time.Duration(i) * time.Second),
		})
	}

	events := m.RecentEvents(100)
	if len(events) != 5 {
		t.Errorf("events count = %d, want 5 (max)", len(events))
	}

	// Verify events are ordered chronologically
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Errorf("events not in chronological order at index %d", i)
		}
	}
	if !events[4].Timestamp.Equal(base.Add(11 * time.Second)) {
		t.Errorf("newest event at %v, want %v", events[4].Timestamp, base.Add(11*time.Second))
	}

	last := m.RecentEvents(2)
	if len(last) != 2 || !last[1].Timestamp.Equal(events[4].Timestamp) {
		t.Errorf("RecentEvents(2) = %+v", last)
	}
}

func TestManager_Snapshot_IncludesEvents(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Record(scene.Event{Kind: scene.EventLock, Body: scene.Earth, At: time.Now()})

	snap := m.Snapshot()
	if len(snap.Events) == 0 {
		t.Fatal("Snapshot should include events")
	}
	if snap.Events[0].Type != EventLock {
		t.Errorf("event type = %q, want LOCK", snap.Events[0].Type)
	}
}

func TestManager_SceneHook(t *testing.T) {
	m := NewManager(DefaultConfig())
	s, err := scene.New(scene.DefaultConfig(), scene.DefaultCatalog(),
		scene.DefaultMaterials(scene.DefaultCatalog()), nil, nil)
	if err != nil {
		t.Fatalf("scene.New: %v", err)
	}
	defer s.Close()
	s.OnEvent(m.Record)

	m.Update(s.Frame(1), 0)
	s.Select(scene.Jupiter)

	events := m.RecentEvents(1)
	if len(events) != 1 || events[0].Type != EventSelect || events[0].Body != "Jupiter" {
		t.Errorf("events = %+v", events)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())

	var wg sync.WaitGroup
	iterations := 100

	// Writer goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			m.Update(testFrame(uint64(i), float64(i)), time.Duration(i)*time.Microsecond)
			m.Record(scene.Event{Kind: scene.EventSelect, Body: scene.Earth, At: time.Now()})
		}
	}()

	// Reader goroutines
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				_ = m.Snapshot()
				_ = m.HasData()
				_ = m.RecentEvents(5)
				_ = m.GetBodyHistory(scene.Earth)
				_ = m.MaxDrift(scene.Earth)
			}
		}()
	}

	wg.Wait()
}
