// Package ws exposes the websocket endpoint clients connect to for
// real-time marketplace events. The handshake is a single auth message
// carrying the authenticated user id; verification of that identity happens
// upstream and is out of scope here.
package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/procuro/rfqmatch/core/logger"
	"github.com/procuro/rfqmatch/core/registry"
)

// Config defines the websocket endpoint settings.
type Config struct {
	// Path is the HTTP path the endpoint is mounted on.
	Path string `json:"path"`
	// ReadLimit caps inbound message size in bytes.
	ReadLimit int64 `json:"read_limit"`
	// AuthTimeoutSeconds bounds how long the server waits for the auth
	// message after the upgrade.
	AuthTimeoutSeconds int `json:"auth_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = "/ws"
	}
	if c.ReadLimit == 0 {
		c.ReadLimit = 4096
	}
	if c.AuthTimeoutSeconds == 0 {
		c.AuthTimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// authMessage is the first client frame: {type:"auth", userId}.
type authMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// connectedMessage acknowledges a successful handshake.
type connectedMessage struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// Handler upgrades HTTP requests, performs the auth handshake and hands the
// connection over to the registry for its remaining lifetime.
type Handler struct {
	reg      *registry.Registry
	cfg      Config
	upgrader websocket.Upgrader
	log      logger.Logger
}

// NewHandler creates the websocket endpoint handler.
func NewHandler(reg *registry.Registry, cfg Config, log logger.Logger) *Handler {
	cfg.SetDefaults()
	return &Handler{
		reg: reg,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checks belong to the fronting proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("upgrade failed: %v", err)
		return
	}
	sock.SetReadLimit(h.cfg.ReadLimit)

	userID, err := h.handshake(sock)
	if err != nil {
		h.log.Warnf("handshake failed: %v", err)
		_ = sock.Close()
		return
	}

	conn := newWSConn(uuid.NewString(), sock)
	h.reg.Register(userID, conn)
	h.log.Infof("user %s connected (conn %s)", userID, conn.ID())

	sock.SetPongHandler(func(string) error {
		h.reg.MarkAlive(userID, conn.ID())
		return resetReadDeadline(sock)
	})

	h.readLoop(sock, userID, conn)
}

// handshake reads the auth message and acknowledges it.
func (h *Handler) handshake(sock *websocket.Conn) (string, error) {
	deadline := time.Now().Add(time.Duration(h.cfg.AuthTimeoutSeconds) * time.Second)
	if err := sock.SetReadDeadline(deadline); err != nil {
		return "", err
	}
	_, raw, err := sock.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("read auth: %w", err)
	}
	var msg authMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", fmt.Errorf("decode auth: %w", err)
	}
	if msg.Type != "auth" || msg.UserID == "" {
		return "", fmt.Errorf("expected auth message, got type %q", msg.Type)
	}
	ack, err := json.Marshal(connectedMessage{Type: "connection", Status: "connected"})
	if err != nil {
		return "", err
	}
	if err := sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return "", err
	}
	if err := sock.WriteMessage(websocket.TextMessage, ack); err != nil {
		return "", fmt.Errorf("write ack: %w", err)
	}
	return msg.UserID, resetReadDeadline(sock)
}

// readLoop drains inbound frames until the peer goes away, then deregisters.
// Clients only talk during the handshake; anything else is ignored.
func (h *Handler) readLoop(sock *websocket.Conn, userID string, conn *wsConn) {
	defer h.reg.Deregister(userID, conn)
	for {
		if _, _, err := sock.ReadMessage(); err != nil {
			h.log.Debugf("user %s conn %s read: %v", userID, conn.ID(), err)
			return
		}
		h.reg.MarkAlive(userID, conn.ID())
		if err := resetReadDeadline(sock); err != nil {
			return
		}
	}
}

func resetReadDeadline(sock *websocket.Conn) error {
	return sock.SetReadDeadline(time.Now().Add(pongWait))
}
