package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sarchlab/arena/sim"
)

// A streamHub pushes finished log entries to all connected WebSocket
// clients.
type streamHub struct {
	mu      sync.Mutex
	clients map[*streamClient]bool

	register   chan *streamClient
	unregister chan *streamClient
	broadcast  chan []byte

	upgrader websocket.Upgrader
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newStreamHub() *streamHub {
	return &streamHub{
		clients:    make(map[*streamClient]bool),
		register:   make(chan *streamClient),
		unregister: make(chan *streamClient),
		broadcast:  make(chan []byte, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

func (h *streamHub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *streamHub) serve(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &streamClient{
		conn: ws,
		send: make(chan []byte, 256),
	}
	h.register <- c

	go c.writeLoop()
	go c.readLoop(h)
}

func (c *streamClient) writeLoop() {
	defer c.conn.Close()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			return
		}
	}
}

// readLoop discards client messages. It exists to detect closed
// connections.
func (c *streamClient) readLoop(h *streamHub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
	}
}

// A streamHook forwards each log entry appended at event completion or
// cancellation to the stream hub.
type streamHook struct {
	hub *streamHub
}

// Func writes the log entry of a finished event to all stream clients.
func (h *streamHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosAfterEvent, sim.HookPosEventCancelled:
	default:
		return
	}

	entry, ok := ctx.Detail.(sim.LogEntry)
	if !ok {
		return
	}

	bytes, err := json.Marshal(entry)
	if err != nil {
		return
	}

	select {
	case h.hub.broadcast <- bytes:
	default:
	}
}
