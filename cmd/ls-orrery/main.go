// Command ls-orrery is a terminal orrery: the Sun and eight planets on their
// orbits, with a camera that follows the planet you pick.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-orrery/internal/app"
	"github.com/litescript/ls-orrery/internal/report"
	"github.com/litescript/ls-orrery/internal/ui"
	"github.com/litescript/ls-orrery/internal/version"
)

// CLI flags for headless mode
var (
	frameCount    int
	summaryMode   bool
	watchInterval time.Duration
	snapshotPath  string
	eventsMode    bool
	showVersion   bool
)

const minWatch = 100 * time.Millisecond

func main() {
	opts := app.DefaultOptions()
	opts.RegisterFlags(flag.CommandLine)
	flag.IntVar(&frameCount, "frames", 0, "Simulate this many frames without the TUI, then report")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.DurationVar(&watchInterval, "watch", 0, "Run in real time and repeat the report at interval (e.g., 5s)")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export JSON snapshot to file (use - for stdout)")
	flag.BoolVar(&eventsMode, "events", false, "Show event log")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("ls-orrery", version.Version)
		return
	}
	if watchInterval > 0 && watchInterval < minWatch {
		watchInterval = minWatch
	}

	a, err := app.New(opts, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Start()

	// Headless mode: no TUI
	headless := frameCount > 0 || summaryMode || snapshotPath != "" || eventsMode || watchInterval > 0 ||
		!term.IsTerminal(int(os.Stdout.Fd()))
	if headless {
		if err := runHeadless(ctx, a); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			a.Close()
			os.Exit(1)
		}
		return
	}

	// Log lines would tear the alternate screen.
	if opts.LogFile == "" {
		a.Logger.SetOutput(io.Discard)
	}

	model := ui.New(a.Scene, a.State).WithFrameHook(a.ObserveFrame)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		a.Close()
		os.Exit(1)
	}
}

// runHeadless steps the scene without a TUI and writes the requested reports.
func runHeadless(ctx context.Context, a *app.App) error {
	// With no report selected, print the summary.
	if !summaryMode && snapshotPath == "" && !eventsMode {
		summaryMode = true
	}

	for i := 0; i < frameCount; i++ {
		a.Step()
	}

	if watchInterval == 0 {
		return output(a)
	}

	if err := output(a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	frames := time.NewTicker(ui.FrameInterval)
	defer frames.Stop()
	reports := time.NewTicker(watchInterval)
	defer reports.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-frames.C:
			a.Step()
		case <-reports.C:
			fmt.Println() // Blank line between outputs
			if err := output(a); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

func output(a *app.App) error {
	f := a.Scene.Snapshot()

	// Export JSON if requested
	if snapshotPath != "" {
		export := report.ExportSnapshot(a.State, time.Now())
		if snapshotPath == "-" {
			if err := export.WriteJSON(os.Stdout); err != nil {
				return fmt.Errorf("write JSON to stdout: %w", err)
			}
		} else {
			out, err := os.Create(snapshotPath)
			if err != nil {
				return fmt.Errorf("create snapshot file: %w", err)
			}
			defer out.Close()
			if err := export.WriteJSON(out); err != nil {
				return fmt.Errorf("write JSON to file: %w", err)
			}
		}
	}

	if summaryMode {
		report.WriteSummaryTable(os.Stdout, f)
	}

	if eventsMode {
		fmt.Println()
		report.WriteEvents(os.Stdout, a.State.RecentEvents(50), 10)
	}
	return nil
}
