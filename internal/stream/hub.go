// Package stream pushes generation frames to websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ecogrid/internal/logging"
	"ecogrid/internal/sims/trophic"
)

// ErrQueueFull is returned when a frame cannot be queued in time.
var ErrQueueFull = errors.New("frame queue full")

const (
	queueTimeout = time.Second
	writeTimeout = 10 * time.Second
)

// Frame is the message sent to clients for one generation.
type Frame struct {
	Generation uint32             `json:"generation"`
	Totals     trophic.Population `json:"totals"`
	Units      int                `json:"units"`
	Cells      trophic.Layout     `json:"cells"`
}

// NewFrame summarizes a snapshot.
func NewFrame(s trophic.Snapshot) Frame {
	return Frame{
		Generation: s.Generation,
		Totals:     s.Cells.Totals(),
		Units:      s.Cells.UnitCount(),
		Cells:      s.Cells,
	}
}

// Hub fans frames out to every connected client.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
	log        *logging.Logger
}

// NewHub starts the broadcaster goroutine. Close stops it.
func NewHub(log *logging.Logger) *Hub {
	if log == nil {
		log = logging.Discard()
	}
	h := &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		log: log,
	}
	h.wg.Add(1)
	go h.run()
	return h
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}
	h.log.Debugf("websocket client %s connected", r.RemoteAddr)

	// Clients only listen; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case h.unregister <- conn:
	case <-h.done:
	}
	h.log.Debugf("websocket client %s disconnected", r.RemoteAddr)
}

// Observe queues a frame for the snapshot.
func (h *Hub) Observe(ctx context.Context, s trophic.Snapshot) error {
	data, err := json.Marshal(NewFrame(s))
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return h.Publish(ctx, data)
}

// Publish queues a raw message for every client.
func (h *Hub) Publish(ctx context.Context, data []byte) error {
	select {
	case <-h.done:
		return nil
	default:
	}
	select {
	case h.broadcast <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return nil
	case <-time.After(queueTimeout):
		return ErrQueueFull
	}
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.send(data)
		}
	}
}

func (h *Hub) send(data []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	var failed []*websocket.Conn
	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debugf("dropping websocket client: %v", err)
			failed = append(failed, conn)
			conn.Close()
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	}
}

// Close disconnects every client and stops the broadcaster.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	})
	return nil
}
