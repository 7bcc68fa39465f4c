package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type Audience string

const (
	AudienceAll    Audience = "all"
	AudienceAdmins Audience = "admins"
)

const (
	DefaultChannel      = "callsys:events"
	DefaultSendBuffer   = 64
	DefaultWriteTimeout = 10 * time.Second
	DefaultPingInterval = 30 * time.Second
)

type Event struct {
	Type     string   `json:"type"`
	Payload  any      `json:"payload"`
	Audience Audience `json:"audience"`
}

type envelope struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Audience Audience        `json:"audience"`
}

type iConnectionRepo interface {
	Add(*websocket.Conn, *Client) error
	Remove(*websocket.Conn) (*Client, error)
	List() []*Client
	Len() int
}

type iMetrics interface {
	EventPublished(eventType string)
	EventDelivered()
	ClientDropped()
	ConnectedClients(n int)
}

type Config struct {
	Channel      string
	SendBuffer   int
	WriteTimeout time.Duration
	PingInterval time.Duration
}

// Broadcaster publishes board events to every instance through redis pub/sub
// and delivers the events it receives to the clients connected here.
type Broadcaster struct {
	rc      *redis.Client
	conns   iConnectionRepo
	metrics iMetrics
	logger  *slog.Logger
	cfg     Config
}

func New(rc *redis.Client, conns iConnectionRepo, metrics iMetrics, logger *slog.Logger, cfg *Config) *Broadcaster {
	c := Config{
		Channel:      DefaultChannel,
		SendBuffer:   DefaultSendBuffer,
		WriteTimeout: DefaultWriteTimeout,
		PingInterval: DefaultPingInterval,
	}
	if cfg != nil {
		if cfg.Channel != "" {
			c.Channel = cfg.Channel
		}
		if cfg.SendBuffer > 0 {
			c.SendBuffer = cfg.SendBuffer
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.PingInterval > 0 {
			c.PingInterval = cfg.PingInterval
		}
	}

	return &Broadcaster{
		rc:      rc,
		conns:   conns,
		metrics: metrics,
		logger:  logger,
		cfg:     c,
	}
}

func (b *Broadcaster) Publish(ctx context.Context, event Event) error {
	if event.Audience == "" {
		event.Audience = AudienceAll
	}

	data, err := json.Marshal(&event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	if err := b.rc.Publish(ctx, b.cfg.Channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	b.metrics.EventPublished(event.Type)
	return nil
}

// Start subscribes to the event channel and returns once the subscription is
// confirmed. Delivery runs until ctx is done, then every local client is closed.
func (b *Broadcaster) Start(ctx context.Context) error {
	pubsub := b.rc.Subscribe(ctx, b.cfg.Channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", b.cfg.Channel, err)
	}

	go b.run(ctx, pubsub)

	return nil
}

func (b *Broadcaster) run(ctx context.Context, pubsub *redis.PubSub) {
	defer func() {
		pubsub.Close()
		b.closeAll()
	}()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				b.logger.WarnContext(ctx, "event channel closed")
				return
			}

			b.deliver(ctx, msg.Payload)
		}
	}
}

func (b *Broadcaster) deliver(ctx context.Context, raw string) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		b.logger.WarnContext(ctx, "failed to decode event", "error", err)
		return
	}

	msg, err := json.Marshal(&Output{
		Type:    env.Type,
		Payload: env.Payload,
	})
	if err != nil {
		b.logger.WarnContext(ctx, "failed to encode event", "type", env.Type, "error", err)
		return
	}

	b.metrics.EventDelivered()
	for _, client := range b.conns.List() {
		if env.Audience == AudienceAdmins && !client.isAdmin {
			continue
		}

		if !client.push(msg) {
			b.logger.InfoContext(ctx, "dropping slow client", "type", env.Type)
			b.metrics.ClientDropped()
			b.Unregister(client.conn)
		}
	}
}

// Register starts the write pump for conn. Every later write to conn must go
// through the returned client. The client starts held: live events are kept
// back until the caller has sent the initial state and calls Ready.
func (b *Broadcaster) Register(conn *websocket.Conn, isAdmin bool) (*Client, error) {
	client := newClient(conn, isAdmin, &b.cfg, b.logger)
	client.Hold()
	if err := b.conns.Add(conn, client); err != nil {
		return nil, fmt.Errorf("failed to add connection: %w", err)
	}

	go client.writePump()

	b.metrics.ConnectedClients(b.conns.Len())
	return client, nil
}

func (b *Broadcaster) Unregister(conn *websocket.Conn) {
	client, err := b.conns.Remove(conn)
	if err != nil {
		return
	}

	client.close()
	b.metrics.ConnectedClients(b.conns.Len())
}

func (b *Broadcaster) closeAll() {
	for _, client := range b.conns.List() {
		b.Unregister(client.conn)
	}
}
