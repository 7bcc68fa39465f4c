package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

var ErrUnknownMessageType = errors.New("unknown message type")

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[T any] func(ctx context.Context, conn *websocket.Conn, payload T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

// ErrorHandler is called when a handler returns an error. Returning a non-nil error stops ServeConn.
type ErrorHandler func(ctx context.Context, conn *websocket.Conn, err error) error

type WSRouter struct {
	routes       map[string]HandlerFunc[json.RawMessage]
	middlewares  []Middleware
	errorHandler ErrorHandler
}

func New() *WSRouter {
	return &WSRouter{
		routes: make(map[string]HandlerFunc[json.RawMessage]),
		errorHandler: func(context.Context, *websocket.Conn, error) error {
			return nil
		},
	}
}

// Use appends middlewares. They only wrap handlers registered after the call.
func (r *WSRouter) Use(mws ...Middleware) {
	r.middlewares = append(r.middlewares, mws...)
}

func (r *WSRouter) OnError(h ErrorHandler) {
	r.errorHandler = h
}

// Handle registers h for messageType. The payload is decoded into T before h is called.
func Handle[T any](r *WSRouter, messageType string, h HandlerFunc[T]) {
	var wrapped HandlerFunc[any] = func(ctx context.Context, conn *websocket.Conn, payload any) error {
		return h(ctx, conn, payload.(T))
	}
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	r.routes[messageType] = func(ctx context.Context, conn *websocket.Conn, raw json.RawMessage) error {
		var payload T
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("failed to decode %s payload: %w", messageType, err)
			}
		}

		return wrapped(ctx, conn, payload)
	}
}

func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		if err := r.dispatch(ctx, conn, &msg); err != nil {
			if err := r.errorHandler(ctx, conn, err); err != nil {
				return err
			}
		}
	}
}

func (r *WSRouter) dispatch(ctx context.Context, conn *websocket.Conn, msg *message) error {
	handler, ok := r.routes[msg.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMessageType, msg.Type)
	}

	return handler(context.WithValue(ctx, messageTypeKey, msg.Type), conn, msg.Payload)
}

type ctxKey string

const messageTypeKey ctxKey = "message_type"

func GetMessageTypeFromCtx(ctx context.Context) string {
	messageType, _ := ctx.Value(messageTypeKey).(string)
	return messageType
}
