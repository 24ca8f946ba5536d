// Package report writes headless summaries and JSON exports of scene frames.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
)

// SnapshotExport is the JSON-serializable form of a run.
type SnapshotExport struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Frame       scene.Frame   `json:"frame"`
	Events      []state.Event `json:"events,omitempty"`
	MaxDrift    []DriftExport `json:"max_drift,omitempty"`
}

// DriftExport is the largest sampled radius drift of one body.
type DriftExport struct {
	Body  scene.BodyID `json:"body"`
	Ratio float64      `json:"ratio"`
}

// ExportSnapshot gathers the current frame, the event log and drift
// extremes from a state manager.
func ExportSnapshot(mgr *state.Manager, generatedAt time.Time) *SnapshotExport {
	export := &SnapshotExport{GeneratedAt: generatedAt}
	if mgr == nil {
		return export
	}

	snap := mgr.Snapshot()
	if snap.Frame != nil {
		export.Frame = *snap.Frame
	}
	export.Events = snap.Events

	for _, id := range scene.AllBodies() {
		if d := mgr.MaxDrift(id); d != 0 {
			export.MaxDrift = append(export.MaxDrift, DriftExport{Body: id, Ratio: d})
		}
	}
	return export
}

// WriteJSON writes the snapshot as JSON to the given writer.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// SummaryRow represents one row in the summary table.
type SummaryRow struct {
	Body     string
	Distance float64
	Angle    float64
	Radius   float64
	Spin     float64
	Drift    float64
	Camera   string
}

// GenerateSummaryRows creates summary rows from a frame.
func GenerateSummaryRows(f scene.Frame) []SummaryRow {
	rows := make([]SummaryRow, 0, len(f.Bodies))
	for _, b := range f.Bodies {
		cam := ""
		if b.Selected {
			cam = f.Selection.Phase
		}
		rows = append(rows, SummaryRow{
			Body:     b.Name,
			Distance: b.Distance,
			Angle:    b.AngleDeg,
			Radius:   b.Position.Norm(),
			Spin:     astro.RadToDeg(b.SelfRotation),
			Drift:    b.Drift,
			Camera:   cam,
		})
	}
	return rows
}

// WriteSummaryTable writes a text table to the given writer.
func WriteSummaryTable(w io.Writer, f scene.Frame) {
	rows := GenerateSummaryRows(f)

	fmt.Fprintf(w, "Orrery @ frame %d, simulated %s, speed %s (%s s/yr)\n",
		f.Number, astro.FormatSimDuration(f.SimDuration()), f.Speed, f.TimeScale)
	fmt.Fprintln(w, strings.Repeat("─", 72))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No bodies")
		return
	}

	// Header
	fmt.Fprintf(w, "%-8s %8s %8s %8s %8s %10s %-13s\n",
		"Body", "Distance", "Angle", "Radius", "Spin", "Drift", "Camera")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	// Rows
	for _, r := range rows {
		fmt.Fprintf(w, "%-8s %8.1f %7.1f° %8.2f %7.1f° %10.1e %-13s\n",
			truncateStr(r.Body, 8),
			r.Distance,
			r.Angle,
			r.Radius,
			r.Spin,
			r.Drift,
			r.Camera,
		)
	}

	cam := f.Camera.Position
	fmt.Fprintf(w, "\nCamera at (%.1f, %.1f, %.1f), selection %s\n", cam.X, cam.Y, cam.Z, f.Selection.Phase)
}

// WriteEvents writes the last n events, oldest first.
func WriteEvents(w io.Writer, events []state.Event, n int) {
	fmt.Fprintln(w, "Recent events")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	if len(events) > n {
		events = events[len(events)-n:]
	}
	for _, e := range events {
		subject := e.Body
		if subject == "" {
			subject = e.Detail
		}
		fmt.Fprintf(w, "%s  frame %-8d %-9s %s\n",
			e.Timestamp.Format("15:04:05.000"), e.Frame, e.Type, subject)
	}
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
