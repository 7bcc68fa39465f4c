package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/callsys/callboard/internal/broadcast"
	boardsvc "github.com/callsys/callboard/internal/service/board"
	"github.com/callsys/callboard/pkg/ctxlogger"
)

const (
	maxMessageSize = 4096
	pongWait       = 70 * time.Second
)

// serveWS registers the connection before reading the snapshot. The client
// stays held until the initial state is queued, so live events published
// meanwhile are written after it and the newest state is the last one seen.
func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	identity, err := c.identityFromCookie(r)
	isAdmin := err == nil

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	client, err := c.broadcaster.Register(conn, isAdmin)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to register client", "error", err)
		conn.Close()
		return
	}
	defer c.broadcaster.Unregister(conn)

	ctx := context.WithValue(r.Context(), clientCtxKey, client)
	if isAdmin {
		ctx = context.WithValue(ctx, identityCtxKey, identity)
		ctx = ctxlogger.AppendCtx(ctx, slog.String("username", identity.Username))
	}

	c.logger.InfoContext(ctx, "client connected", "is_admin", isAdmin)

	c.sendInitialState(ctx, client)
	if isAdmin {
		c.sendAdminLogs(ctx, client)
	}
	if err := client.Ready(); err != nil {
		c.logger.InfoContext(ctx, "client dropped before initial state was sent", "error", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "client disconnected", "error", err)
	}
}

func (c controller) sendInitialState(ctx context.Context, client *broadcast.Client) {
	snapshot, err := c.boardService.Snapshot(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to read initial state", "error", err)
		c.metrics.SnapshotFailed()
		if err := client.Send(boardsvc.EventInitialStateError, "failed to load initial state"); err != nil {
			c.logger.DebugContext(ctx, "failed to send initial state error", "error", err)
		}
		return
	}

	for _, out := range boardsvc.SnapshotEvents(snapshot) {
		if err := client.Send(out.Type, out.Payload); err != nil {
			c.logger.DebugContext(ctx, "failed to send initial state", "type", out.Type, "error", err)
			return
		}
	}
}

func (c controller) sendAdminLogs(ctx context.Context, client *broadcast.Client) {
	logs, err := c.boardService.AdminLogs(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to read admin logs", "error", err)
		return
	}

	if err := client.Send(boardsvc.EventInitAdminLogs, logs); err != nil {
		c.logger.DebugContext(ctx, "failed to send admin logs", "error", err)
	}
}

type EmptyInput struct{}

func (c controller) handleAlive(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	return conn.SetReadDeadline(time.Now().Add(pongWait))
}

func (c controller) handleGetState(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	client := c.getClientFromCtx(ctx)
	if client == nil {
		return nil
	}

	client.Hold()
	c.sendInitialState(ctx, client)
	if client.IsAdmin() {
		c.sendAdminLogs(ctx, client)
	}

	return client.Ready()
}
