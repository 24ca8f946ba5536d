package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
)

// Styles for the bodies table
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	followStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// BodiesModel lists every body with its live orbital state and the recent
// selection events.
type BodiesModel struct {
	width     int
	height    int
	frame     scene.Frame
	highlight scene.BodyID
	events    []state.Event
}

// NewBodiesModel creates a new bodies table model.
func NewBodiesModel() BodiesModel {
	return BodiesModel{}
}

// SetSize updates the viewport size.
func (m BodiesModel) SetSize(width, height int) BodiesModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new frame.
func (m BodiesModel) UpdateData(f scene.Frame, highlight scene.BodyID) BodiesModel {
	m.frame = f
	m.highlight = highlight
	return m
}

// UpdateEvents replaces the event list.
func (m BodiesModel) UpdateEvents(events []state.Event) BodiesModel {
	m.events = events
	return m
}

// Update handles messages.
func (m BodiesModel) Update(msg tea.Msg) (BodiesModel, tea.Cmd) {
	return m, nil
}

// BodyAt maps a click on a table row to its body.
func (m BodiesModel) BodyAt(col, row int) (scene.BodyID, bool) {
	// Title and header rows precede the body rows.
	idx := row - 2
	if idx < 0 || idx >= len(m.frame.Bodies) {
		return 0, false
	}
	return m.frame.Bodies[idx].ID, true
}

// View renders the table.
func (m BodiesModel) View() string {
	var b strings.Builder

	if len(m.frame.Bodies) == 0 {
		b.WriteString("Waiting for first frame...\n")
		return b.String()
	}

	b.WriteString(m.renderBodiesTable())
	b.WriteString("\n")
	b.WriteString(m.renderEvents())
	return b.String()
}

func (m BodiesModel) renderBodiesTable() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bodies"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-8s %8s %6s %7s %9s %9s %-12s",
		"Body", "Distance", "Size", "Angle", "Spin", "Drift", "Camera")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, body := range m.frame.Bodies {
		status := idleStyle.Render("-")
		if body.Selected {
			status = followStyle.Render(m.frame.Selection.Phase)
		}

		row := fmt.Sprintf("%-8s %8.1f %6.1f %6.1f° %8.1f° %9s ",
			truncate(body.Name, 8),
			body.Distance,
			body.Size,
			body.AngleDeg,
			astro.RadToDeg(body.SelfRotation),
			m.renderDrift(body.Drift),
		)

		if body.ID == m.highlight {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString(status)
		b.WriteString("\n")
	}

	return b.String()
}

func (m BodiesModel) renderDrift(drift float64) string {
	if drift == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1e", drift)
}

func (m BodiesModel) renderEvents() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Recent Events"))
	b.WriteString("\n")

	if len(m.events) == 0 {
		b.WriteString("  No events yet\n")
		return b.String()
	}

	// Calculate visible rows based on height
	maxRows := m.height - len(m.frame.Bodies) - 6
	if maxRows < 3 {
		maxRows = 3
	}
	events := m.events
	if len(events) > maxRows {
		events = events[len(events)-maxRows:]
	}

	// Newest first
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		subject := e.Body
		if subject == "" {
			subject = e.Detail
		}
		line := fmt.Sprintf("  %s  %-9s %-10s frame %d",
			e.Timestamp.Format("15:04:05.000"), e.Type, subject, e.Frame)
		b.WriteString(rowStyle.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
