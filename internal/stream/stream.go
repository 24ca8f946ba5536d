// Package stream broadcasts frame snapshots to WebSocket clients and accepts
// selection commands back from them.
package stream

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/scene"
)

// Config holds configuration for the broadcaster.
type Config struct {
	SendRate     float64 // Frames per second delivered to each client
	Burst        int
	BufferSize   int // Queued frames per client before frames are dropped
	WriteTimeout time.Duration
	AllowOrigins []string // Empty allows any origin
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		SendRate:     10,
		Burst:        1,
		BufferSize:   4,
		WriteTimeout: 5 * time.Second,
	}
}

// Command is a control message sent by a client.
type Command struct {
	Action string `json:"action"` // "select", "deselect" or "timescale"
	Body   string `json:"body,omitempty"`
	Delta  int    `json:"delta,omitempty"`
}

// ErrUnknownAction is returned by Apply for unrecognised commands.
var ErrUnknownAction = errors.New("unknown action")

// Apply executes a command against a scene.
func (c Command) Apply(s *scene.Scene) error {
	switch c.Action {
	case "select":
		id, err := scene.ParseBodyID(c.Body)
		if err != nil {
			return err
		}
		s.Select(id)
	case "deselect":
		s.Deselect()
	case "timescale":
		s.StepTimeScale(c.Delta)
	default:
		return ErrUnknownAction
	}
	return nil
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

// Hub fans frames out to connected clients.
type Hub struct {
	cfg      Config
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[*client]struct{}
	onCommand func(Command)
	dropped   uint64
	closed    bool
}

// NewHub creates a hub.
func NewHub(cfg Config, logger *logging.Logger) *Hub {
	if cfg.SendRate <= 0 {
		cfg.SendRate = DefaultConfig().SendRate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}

	h := &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range h.cfg.AllowOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// OnCommand registers the handler for client commands. It runs on the
// client's read goroutine.
func (h *Hub) OnCommand(fn func(Command)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCommand = fn
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade from %s: %v", r.RemoteAddr, err)
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, h.cfg.BufferSize),
		limiter: rate.NewLimiter(rate.Limit(h.cfg.SendRate), h.cfg.Burst),
	}
	if !h.register(c) {
		conn.Close()
		return
	}
	h.logger.Info("client %s connected", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)

	h.unregister(c)
	h.logger.Info("client %s disconnected", r.RemoteAddr)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) readPump(c *client) {
	defer c.conn.Close()
	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			// Empty and truncated payloads decode as io.ErrUnexpectedEOF; a
			// dropped connection is a *websocket.CloseError instead.
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
				h.logger.Debug("malformed command: %v", err)
				continue
			}
			return
		}
		h.mu.Lock()
		fn := h.onCommand
		h.mu.Unlock()
		if fn != nil {
			fn(cmd)
		}
	}
}

func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("write: %v", err)
			c.conn.Close()
			// Drain until unregister closes the channel.
			for range c.send {
			}
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Publish sends a frame to every client whose rate budget allows it.
// Clients that fall behind lose frames rather than stalling the caller.
func (h *Hub) Publish(f scene.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return nil
	}

	msg, err := json.Marshal(f)
	if err != nil {
		return err
	}
	for c := range h.clients {
		if !c.limiter.Allow() {
			continue
		}
		select {
		case c.send <- msg:
		default:
			h.dropped++
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many frames were discarded for slow clients.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
