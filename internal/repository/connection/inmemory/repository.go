package inmemory

import (
	"log/slog"
	"sync"

	"github.com/callsys/callboard/internal/repository/connection"
	"github.com/gorilla/websocket"
	"golang.org/x/exp/maps"
)

// repo tracks the websocket connections served by this process. It is never
// authoritative for board state.
type repo[T any] struct {
	conns  map[*websocket.Conn]T
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewRepo[T any](logger *slog.Logger) *repo[T] {
	return &repo[T]{
		conns:  make(map[*websocket.Conn]T),
		logger: logger,
	}
}

func (r *repo[T]) Add(conn *websocket.Conn, value T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn]; ok {
		r.logger.Debug("connection.inmemory.Add", "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.conns[conn] = value
	return nil
}

func (r *repo[T]) Remove(conn *websocket.Conn) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, ok := r.conns[conn]
	if !ok {
		return value, connection.ErrNotFound
	}

	delete(r.conns, conn)
	return value, nil
}

func (r *repo[T]) Get(conn *websocket.Conn) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.conns[conn]
	if !ok {
		return value, connection.ErrNotFound
	}

	return value, nil
}

// List returns a snapshot of every tracked value in no particular order.
func (r *repo[T]) List() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Values(r.conns)
}

func (r *repo[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
