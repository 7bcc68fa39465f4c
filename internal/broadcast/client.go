package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrClientClosed = errors.New("client closed")

// Output is the frame written to websocket clients.
type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client owns every write to its connection. Frames are queued on send and
// written in order by writePump. While held, live events are kept back so the
// initial state written with Send always precedes them.
type Client struct {
	conn         *websocket.Conn
	isAdmin      bool
	send         chan []byte
	mu           sync.Mutex
	closed       bool
	held         bool
	backlog      [][]byte
	writeTimeout time.Duration
	pingInterval time.Duration
	logger       *slog.Logger
}

func newClient(conn *websocket.Conn, isAdmin bool, cfg *Config, logger *slog.Logger) *Client {
	return &Client{
		conn:         conn,
		isAdmin:      isAdmin,
		send:         make(chan []byte, cfg.SendBuffer),
		writeTimeout: cfg.WriteTimeout,
		pingInterval: cfg.PingInterval,
		logger:       logger,
	}
}

func (c *Client) IsAdmin() bool {
	return c.isAdmin
}

// Send queues a single frame for this client only.
func (c *Client) Send(eventType string, payload any) error {
	msg, err := json.Marshal(&Output{
		Type:    eventType,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", eventType, err)
	}

	if !c.enqueue(msg) {
		return ErrClientClosed
	}

	return nil
}

// Hold makes the client keep live events back until Ready is called.
func (c *Client) Hold() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.held = true
	}
}

// Ready queues the events kept back since Hold after everything sent so far
// and resumes live delivery.
func (c *Client) Ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	backlog := c.backlog
	c.held = false
	c.backlog = nil

	if c.closed {
		return ErrClientClosed
	}

	for _, msg := range backlog {
		if !c.queue(msg) {
			return ErrClientClosed
		}
	}

	return nil
}

// push delivers a live event, keeping it back while the client is held. A
// backlog as large as the send buffer closes the client.
func (c *Client) push(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	if c.held {
		if len(c.backlog) >= cap(c.send) {
			c.shutdown()
			return false
		}
		c.backlog = append(c.backlog, msg)
		return true
	}

	return c.queue(msg)
}

// enqueue never blocks. A client whose buffer is full is closed and false is
// returned.
func (c *Client) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	return c.queue(msg)
}

// queue must be called with mu held.
func (c *Client) queue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		c.shutdown()
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shutdown()
}

// shutdown must be called with mu held.
func (c *Client) shutdown() {
	if c.closed {
		return
	}

	c.closed = true
	c.backlog = nil
	close(c.send)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to write ping", "error", err)
				return
			}
		}
	}
}
