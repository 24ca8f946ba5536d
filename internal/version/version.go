// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Windowed renderer, WebSocket frame stream with client commands, Prometheus metrics
// 0.2.0 - Time-scale slider with realtime, texture materials, JSON body catalog, headless snapshots
// 0.1.0 - Initial release: orbital kinematics, camera follow with timed lock, terminal orrery
