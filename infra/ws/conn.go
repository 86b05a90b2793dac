package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// pongWait bounds how long a read blocks waiting for traffic. It is
	// deliberately generous; actual liveness is decided by the registry
	// sweep, not by read deadlines.
	pongWait = 120 * time.Second
)

// wsConn adapts a gorilla websocket to the registry.Conn interface. Gorilla
// allows a single concurrent writer, so all frames go out under one lock.
type wsConn struct {
	id   string
	sock *websocket.Conn
	mu   sync.Mutex

	closeOnce sync.Once
}

func newWSConn(id string, sock *websocket.Conn) *wsConn {
	return &wsConn{id: id, sock: sock}
}

func (c *wsConn) ID() string { return c.id }

// Send writes one text frame carrying the event payload.
func (c *wsConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.sock.WriteMessage(websocket.TextMessage, payload)
}

// Ping sends a websocket control ping; the client's pong is observed by the
// server read loop.
func (c *wsConn) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Close shuts the socket down. Safe to call concurrently and repeatedly.
func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		_ = c.sock.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.mu.Unlock()
		err = c.sock.Close()
	})
	return err
}
