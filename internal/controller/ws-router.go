package controller

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"

	"github.com/callsys/callboard/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw())
	mux.OnError(func(ctx context.Context, _ *websocket.Conn, err error) error {
		if errors.Is(err, wsrouter.ErrUnknownMessageType) {
			c.logger.InfoContext(ctx, "unknown websocket message", "error", err)
			return nil
		}

		c.logger.WarnContext(ctx, "websocket message failed", "error", err)
		return nil
	})

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)
	wsrouter.Handle(mux, "GET_STATE", c.handleGetState)

	return mux
}
