package redis

import (
	"context"
	"fmt"
)

func (r repo) Next(ctx context.Context) (int, error) {
	n, err := r.rc.Incr(ctx, keyCurrentNumber).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment number: %w", err)
	}

	r.logger.DebugContext(ctx, "returned", "number", n)
	return int(n), nil
}

// Previous decrements the number unless it is already zero. changed is false when the
// stored value was left untouched.
func (r repo) Previous(ctx context.Context) (value int, changed bool, err error) {
	res, err := r.decrIfPositiveScript.Run(ctx, r.rc, []string{keyCurrentNumber}).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("failed to decrement number: %w", err)
	}

	if len(res) != 2 {
		return 0, false, fmt.Errorf("unexpected decrement script reply: %v", res)
	}

	r.logger.DebugContext(ctx, "returned", "number", res[0], "changed", res[1] == 1)
	return int(res[0]), res[1] == 1, nil
}

func (r repo) SetExact(ctx context.Context, n int) error {
	if err := r.rc.Set(ctx, keyCurrentNumber, n, 0).Err(); err != nil {
		return fmt.Errorf("failed to set number: %w", err)
	}

	return nil
}
