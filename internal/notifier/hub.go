package notifier

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/netric-solutions/quote-bridge/pkg/model"
)

const clientBuffer = 16

// Hub broadcasts notices to connected operator UIs over websockets.
// It replaces the desktop tray notifications of the tooling this
// service supersedes: a typo warning or success message now reaches
// whoever has the dashboard open instead of a single workstation.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	server *http.Server
}

type client struct {
	conn *websocket.Conn
	send chan model.Notice
}

// NewHub creates an empty notification hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Operator dashboards are served from other origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Notify broadcasts a notice to all connected clients. Clients that
// cannot keep up are dropped rather than blocking the pipeline.
func (h *Hub) Notify(n model.Notice) {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- n:
		default:
			h.logger.Warn("notifier.client_too_slow, dropping")
			close(c.send)
			delete(h.clients, c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection and registers the client.
// GET /ws/notifications
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("notifier.upgrade_failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan model.Notice, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("notifier.client_connected",
		zap.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(c)
	go h.readLoop(c)
}

func (h *Hub) writeLoop(c *client) {
	for n := range c.send {
		if err := c.conn.WriteJSON(n); err != nil {
			h.drop(c)
			return
		}
	}
	_ = c.conn.Close()
}

// readLoop discards inbound messages; its job is detecting closes.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// Start serves the websocket feed on its own listener so the gorilla
// upgrader can hijack the connection.
func (h *Hub) Start(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/ws/notifications", h)

	h.server = &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("notifier.listen_failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the feed and disconnects all clients.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()

	if h.server != nil {
		return h.server.Shutdown(ctx)
	}
	return nil
}
