package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// frame is the wire shape of one realtime event.
type frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// SocketClient is the websocket implementation of Transport. One instance is
// created at application start and shared by reference; the read loop runs on
// its own goroutine and dispatches handlers sequentially.
type SocketClient struct {
	socketURL string

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	handlers  map[string]map[int]Handler
	nextID    int

	writeMu sync.Mutex
}

func NewSocketClient(socketURL string) *SocketClient {
	return &SocketClient{
		socketURL: socketURL,
		handlers:  make(map[string]map[int]Handler),
	}
}

func (c *SocketClient) Connect(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	dialURL, err := url.Parse(c.socketURL)
	if err != nil {
		return fmt.Errorf("parse socket url: %w", err)
	}
	if token != "" {
		q := dialURL.Query()
		q.Set("token", token)
		dialURL.RawQuery = q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, dialURL.String(), nil)
	if err != nil {
		return err
	}

	c.conn = conn
	c.connected = true

	go c.readLoop(conn)

	slog.Info("Realtime transport connected", "url", c.socketURL)
	return nil
}

func (c *SocketClient) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			slog.Warn("Error closing realtime connection", "error", err)
		}
	}
}

func (c *SocketClient) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *SocketClient) On(event string, handler Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]Handler)
	}
	c.nextID++
	id := c.nextID
	c.handlers[event][id] = handler

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[event], id)
	}
}

func (c *SocketClient) Emit(event string, payload interface{}) error {
	c.mu.RLock()
	conn := c.conn
	connected := c.connected
	c.mu.RUnlock()

	if !connected || conn == nil {
		return fmt.Errorf("realtime transport not connected")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(frame{Event: event, Data: payload})
}

func (c *SocketClient) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
				c.connected = false
				slog.Warn("Realtime transport disconnected", "error", err)
			}
			c.mu.Unlock()
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil || f.Event == "" {
			slog.Debug("Dropping unparseable realtime frame", "error", err)
			continue
		}

		c.dispatch(f.Event, f.Data)
	}
}

func (c *SocketClient) dispatch(event string, payload interface{}) {
	c.mu.RLock()
	registered := make([]Handler, 0, len(c.handlers[event]))
	for _, h := range c.handlers[event] {
		registered = append(registered, h)
	}
	c.mu.RUnlock()

	for _, h := range registered {
		h(payload)
	}
}
