// Package app wires the scene, its observers and the optional HTTP surfaces
// shared by the terminal and windowed frontends.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/stream"
	"github.com/litescript/ls-orrery/internal/timescale"
)

const shutdownTimeout = 5 * time.Second

// Options are the settings shared by every frontend.
type Options struct {
	LogLevel string
	LogFile  string

	SecondsPerYear  string
	DriftCorrection bool
	LastWriteWins   bool
	LookAtSelected  bool
	RelaxToHome     bool

	BodiesPath  string
	TexturesDir string

	MetricsAddr string
	StreamAddr  string
	StreamRate  float64
}

// DefaultOptions returns the standard settings.
func DefaultOptions() Options {
	return Options{
		LogLevel:       "info",
		SecondsPerYear: fmt.Sprint(timescale.DefaultSecondsPerYear),
		StreamRate:     stream.DefaultConfig().SendRate,
	}
}

// RegisterFlags binds the options to a flag set.
func (o *Options) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&o.LogFile, "log-file", o.LogFile, "Append logs to this file instead of stderr")
	fs.StringVar(&o.SecondsPerYear, "seconds-per-year", o.SecondsPerYear,
		fmt.Sprintf("Real seconds per simulated year (%d-%d, or %q)",
			timescale.MinSecondsPerYear, timescale.MaxSecondsPerYear, timescale.RealtimeName))
	fs.BoolVar(&o.DriftCorrection, "drift-correction", o.DriftCorrection, "Rescale orbits that drift off their radius")
	fs.BoolVar(&o.LastWriteWins, "last-write-wins", o.LastWriteWins, "Let stale lock timers end a newer selection's transition")
	fs.BoolVar(&o.LookAtSelected, "look-at-selected", o.LookAtSelected, "Aim the camera at the selected body instead of the Sun")
	fs.BoolVar(&o.RelaxToHome, "relax-to-home", o.RelaxToHome, "Ease the camera back home after a deselect")
	fs.StringVar(&o.BodiesPath, "bodies", o.BodiesPath, "JSON file overriding body definitions")
	fs.StringVar(&o.TexturesDir, "textures", o.TexturesDir, "Directory holding body textures")
	fs.StringVar(&o.MetricsAddr, "metrics-addr", o.MetricsAddr, "Serve Prometheus metrics on this address (e.g. :9090)")
	fs.StringVar(&o.StreamAddr, "stream-addr", o.StreamAddr, "Serve the WebSocket frame stream on this address (e.g. :8080)")
	fs.Float64Var(&o.StreamRate, "stream-rate", o.StreamRate, "Frames per second sent to each stream client")
}

// App owns a scene and everything observing it.
type App struct {
	Logger  *logging.Logger
	Scene   *scene.Scene
	State   *state.Manager
	Metrics *metrics.Collector
	Hub     *stream.Hub

	opts    Options
	logFile io.Closer
	reports []scene.MaterialReport

	mu      sync.Mutex
	servers []*http.Server
	wg      sync.WaitGroup
}

// New builds the scene from opts. clock may be nil for the real clock.
func New(opts Options, clock camera.Clock) (*App, error) {
	logger := logging.New(logging.ParseLevel(opts.LogLevel))
	a := &App{Logger: logger, opts: opts}

	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logger.SetOutput(f)
		a.logFile = f
	}

	cfg, err := sceneConfig(opts)
	if err != nil {
		a.closeLog()
		return nil, err
	}

	cat, err := loadCatalog(opts.BodiesPath)
	if err != nil {
		a.closeLog()
		return nil, err
	}

	mats := scene.DefaultMaterials(cat)
	if opts.TexturesDir != "" {
		mats, a.reports = scene.LoadMaterials(cat, os.DirFS(opts.TexturesDir))
		for _, r := range a.reports {
			logger.Warn("%v; drawing untextured", r)
		}
	}

	s, err := scene.New(cfg, cat, mats, clock, logger.Named("scene"))
	if err != nil {
		a.closeLog()
		return nil, fmt.Errorf("build scene: %w", err)
	}
	a.Scene = s
	a.State = state.NewManager(state.DefaultConfig())
	a.Metrics = metrics.NewCollector()
	a.Metrics.SetSecondsPerYear(cfg.TimeScale.SecondsPerYear())

	if opts.StreamAddr != "" {
		scfg := stream.DefaultConfig()
		if opts.StreamRate > 0 {
			scfg.SendRate = opts.StreamRate
		}
		a.Hub = stream.NewHub(scfg, logger.Named("stream"))
		a.Hub.OnCommand(a.applyCommand)
	}

	s.OnEvent(a.handleEvent)
	return a, nil
}

func sceneConfig(opts Options) (scene.Config, error) {
	cfg := scene.DefaultConfig()
	if opts.SecondsPerYear != "" {
		ts, err := timescale.Parse(opts.SecondsPerYear)
		if err != nil {
			return cfg, fmt.Errorf("seconds per year: %w", err)
		}
		cfg.TimeScale = ts
	}
	cfg.Kinematics.DriftCorrection = opts.DriftCorrection
	cfg.Camera.LastWriteWins = opts.LastWriteWins
	cfg.Camera.LookAtSelected = opts.LookAtSelected
	cfg.Camera.RelaxToHome = opts.RelaxToHome
	return cfg, nil
}

func loadCatalog(path string) (scene.Catalog, error) {
	cat := scene.DefaultCatalog()
	if path == "" {
		return cat, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cat, fmt.Errorf("open bodies file: %w", err)
	}
	defer f.Close()

	cat, err = scene.LoadCatalog(f, cat)
	if err != nil {
		return cat, fmt.Errorf("load bodies file %s: %w", path, err)
	}
	return cat, nil
}

// MaterialReports returns the texture problems found at startup.
func (a *App) MaterialReports() []scene.MaterialReport {
	return a.reports
}

// handleEvent fans a scene event out to the observers.
func (a *App) handleEvent(ev scene.Event) {
	a.State.Record(ev)
	a.Metrics.RecordEvent(ev)
	if ev.Kind == scene.EventTimeScale {
		a.Metrics.SetSecondsPerYear(a.Scene.TimeScale().SecondsPerYear())
	}
	a.Logger.Info("%s %s", ev.Kind, eventSubject(ev))
}

func eventSubject(ev scene.Event) string {
	if ev.Kind == scene.EventTimeScale {
		return ev.Detail
	}
	return ev.Body.String()
}

func (a *App) applyCommand(cmd stream.Command) {
	if err := cmd.Apply(a.Scene); err != nil {
		a.Logger.Warn("stream command %q: %v", cmd.Action, err)
	}
}

// ObserveFrame records a computed frame everywhere except the state
// manager, which frontends feed themselves.
func (a *App) ObserveFrame(f scene.Frame, took time.Duration) {
	a.Metrics.ObserveFrame(f, took)
	if a.Hub != nil {
		if err := a.Hub.Publish(f); err != nil {
			a.Logger.Warn("publish frame %d: %v", f.Number, err)
		}
	}
}

// Step advances the scene by one frame and notifies every observer.
func (a *App) Step() scene.Frame {
	start := time.Now()
	f := a.Scene.Frame(1)
	took := time.Since(start)
	a.State.Update(f, took)
	a.ObserveFrame(f, took)
	return f
}

// Routes returns the HTTP handlers: /metrics always, /stream when streaming.
func (a *App) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.Metrics.Handler())
	if a.Hub != nil {
		mux.Handle("/stream", a.Hub)
	}
	return mux
}

// Start launches the configured HTTP servers in the background.
func (a *App) Start() {
	addrs := []string{a.opts.MetricsAddr}
	if a.opts.StreamAddr != a.opts.MetricsAddr {
		addrs = append(addrs, a.opts.StreamAddr)
	}

	routes := a.Routes()
	for _, addr := range addrs {
		if addr == "" {
			continue
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           routes,
			ReadHeaderTimeout: 10 * time.Second,
		}
		a.mu.Lock()
		a.servers = append(a.servers, srv)
		a.mu.Unlock()

		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.Logger.Info("Serving on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.Logger.Error("HTTP server %s: %v", srv.Addr, err)
			}
		}()
	}
}

// Shutdown stops the HTTP servers, the stream and the scene's timers.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	servers := a.servers
	a.servers = nil
	a.mu.Unlock()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
		}
	}
	if a.Hub != nil {
		a.Hub.Close()
	}
	a.wg.Wait()
	a.Scene.Close()
	a.closeLog()
	return errors.Join(errs...)
}

// Close shuts down with the default timeout.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.Shutdown(ctx)
}

func (a *App) closeLog() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}
