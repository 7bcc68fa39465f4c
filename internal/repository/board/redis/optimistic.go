package redis

import (
	"context"
	"errors"

	"github.com/callsys/callboard/internal/repository/board"
	"github.com/redis/go-redis/v9"
)

// watched describes a single key updated by read-modify-write under WATCH.
type watched[T any] struct {
	key   string
	read  func(ctx context.Context, tx *redis.Tx) (T, error)
	write func(ctx context.Context, pipe redis.Pipeliner, value T) error
}

// watchRetry watches w.key, reads it, applies transform and writes the result in a
// MULTI block that only commits if the key was not modified since the WATCH. A lost
// race is retried up to attempts times, after which board.ErrConflict is returned.
// Errors from transform abort without writing and are returned unchanged.
func watchRetry[T any](
	ctx context.Context,
	rc *redis.Client,
	observer ConflictObserver,
	attempts int,
	w watched[T],
	transform func(T) (T, error),
) (T, error) {
	var result T

	txf := func(tx *redis.Tx) error {
		current, err := w.read(ctx, tx)
		if err != nil {
			return err
		}

		next, err := transform(current)
		if err != nil {
			return err
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return w.write(ctx, pipe, next)
		}); err != nil {
			return err
		}

		result = next
		return nil
	}

	for attempt := 0; attempt < attempts; attempt++ {
		err := rc.Watch(ctx, txf, w.key)
		if err == nil {
			return result, nil
		}

		if !errors.Is(err, redis.TxFailedErr) {
			var zero T
			return zero, err
		}

		observer.Retried(w.key)
	}

	observer.Exhausted(w.key)

	var zero T
	return zero, board.ErrConflict
}
