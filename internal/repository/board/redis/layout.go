package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/callsys/callboard/internal/repository/board"
	"github.com/redis/go-redis/v9"
)

func (r repo) GetLayout(ctx context.Context) (board.Layout, error) {
	raw, err := r.rc.Get(ctx, keyAdminLayout).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, board.ErrLayoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get layout: %w", err)
	}

	return board.Layout(raw), nil
}

func (r repo) SetLayout(ctx context.Context, layout board.Layout) error {
	if err := r.rc.Set(ctx, keyAdminLayout, []byte(layout), 0).Err(); err != nil {
		return fmt.Errorf("failed to set layout: %w", err)
	}

	return nil
}
