package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
)

var epoch = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func runScene(t *testing.T, frames int) (*scene.Scene, *state.Manager) {
	t.Helper()
	cat := scene.DefaultCatalog()
	s, err := scene.New(scene.DefaultConfig(), cat, scene.DefaultMaterials(cat), camera.NewManualClock(epoch), nil)
	if err != nil {
		t.Fatalf("scene.New: %v", err)
	}
	t.Cleanup(s.Close)

	cfg := state.DefaultConfig()
	cfg.SampleEvery = 1
	mgr := state.NewManager(cfg)
	s.OnEvent(mgr.Record)

	for i := 0; i < frames; i++ {
		mgr.Update(s.Frame(1), time.Microsecond)
	}
	return s, mgr
}

func TestExportSnapshot(t *testing.T) {
	s, mgr := runScene(t, 10)
	s.Select(scene.Mars)

	export := ExportSnapshot(mgr, epoch)

	if export.GeneratedAt != epoch {
		t.Errorf("GeneratedAt = %v, want %v", export.GeneratedAt, epoch)
	}
	if export.Frame.Number != 10 {
		t.Errorf("Frame = %d, want 10", export.Frame.Number)
	}
	if len(export.Frame.Bodies) != len(scene.AllBodies()) {
		t.Errorf("Bodies count = %d", len(export.Frame.Bodies))
	}
	if len(export.Events) != 1 || export.Events[0].Body != "Mars" {
		t.Errorf("Events = %+v", export.Events)
	}
}

func TestExportSnapshotNilManager(t *testing.T) {
	export := ExportSnapshot(nil, epoch)
	if export.Frame.Number != 0 || export.Events != nil {
		t.Errorf("expected empty export, got %+v", export)
	}
}

func TestWriteJSON(t *testing.T) {
	_, mgr := runScene(t, 3)
	export := ExportSnapshot(mgr, epoch)

	var buf bytes.Buffer
	if err := export.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	frame, ok := decoded["frame"].(map[string]any)
	if !ok {
		t.Fatalf("missing frame object: %s", buf.String())
	}
	if frame["frame"] != float64(3) {
		t.Errorf("frame number = %v, want 3", frame["frame"])
	}
	if !strings.Contains(buf.String(), `"name": "Neptune"`) {
		t.Error("bodies should be exported by name")
	}
}

func TestGenerateSummaryRows(t *testing.T) {
	s, _ := runScene(t, 1)
	s.Select(scene.Earth)
	f := s.Frame(1)

	rows := GenerateSummaryRows(f)
	if len(rows) != len(scene.AllBodies()) {
		t.Fatalf("rows = %d", len(rows))
	}

	tests := []struct {
		row      int
		body     string
		distance float64
		camera   string
	}{
		{0, "Sun", 0, ""},
		{3, "Earth", 100, "transitioning"},
		{8, "Neptune", 520, ""},
	}

	for _, tt := range tests {
		r := rows[tt.row]
		if r.Body != tt.body || r.Distance != tt.distance || r.Camera != tt.camera {
			t.Errorf("row %d = %+v", tt.row, r)
		}
	}
}

func TestWriteSummaryTable(t *testing.T) {
	s, _ := runScene(t, 5)
	var buf bytes.Buffer
	WriteSummaryTable(&buf, s.Snapshot())

	out := buf.String()
	for _, want := range []string{"frame 5", "Jupiter", "Distance", "selection unselected", "(365 s/yr)"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummaryTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteSummaryTable(&buf, scene.Frame{})
	if !strings.Contains(buf.String(), "No bodies") {
		t.Errorf("expected empty message, got %q", buf.String())
	}
}

func TestWriteEvents(t *testing.T) {
	events := []state.Event{
		{Type: state.EventSelect, Timestamp: epoch, Body: "Venus", Frame: 1},
		{Type: state.EventLock, Timestamp: epoch, Body: "Venus", Frame: 45},
		{Type: state.EventTimeScale, Timestamp: epoch, Detail: "realtime", Frame: 90},
	}

	var buf bytes.Buffer
	WriteEvents(&buf, events, 2)
	out := buf.String()

	if strings.Contains(out, "SELECT") {
		t.Error("only the last two events should be written")
	}
	if !strings.Contains(out, "LOCK") || !strings.Contains(out, "realtime") {
		t.Errorf("missing events:\n%s", out)
	}

	buf.Reset()
	WriteEvents(&buf, nil, 5)
	if !strings.Contains(buf.String(), "No events") {
		t.Error("expected empty message")
	}
}

func TestTruncateStr(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Mars", 8, "Mars"},
		{"Neptune and moons", 8, "Neptun.."},
		{"Saturn", 3, "Sat"},
	}

	for _, tt := range tests {
		if got := truncateStr(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateStr(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
