package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// AddPassed adds n, trims the set to the configured limit and returns the retained
// numbers, all in one transaction.
func (r repo) AddPassed(ctx context.Context, n int) ([]int, error) {
	r.logger.DebugContext(ctx, "called", "number", n)
	pipe := r.rc.TxPipeline()

	pipe.ZAdd(ctx, keyPassedNumbers, redis.Z{Score: float64(n), Member: strconv.Itoa(n)})
	pipe.ZRemRangeByRank(ctx, keyPassedNumbers, 0, int64(-r.passedLimit-1))
	rangeCmd := pipe.ZRange(ctx, keyPassedNumbers, int64(-r.passedLimit), -1)

	if err := r.executePipe(ctx, pipe); err != nil {
		return nil, fmt.Errorf("failed to add passed number: %w", err)
	}

	return r.membersToInts(rangeCmd.Val()), nil
}

func (r repo) RemovePassed(ctx context.Context, n int) ([]int, error) {
	r.logger.DebugContext(ctx, "called", "number", n)
	pipe := r.rc.TxPipeline()

	pipe.ZRem(ctx, keyPassedNumbers, strconv.Itoa(n))
	rangeCmd := pipe.ZRange(ctx, keyPassedNumbers, int64(-r.passedLimit), -1)

	if err := r.executePipe(ctx, pipe); err != nil {
		return nil, fmt.Errorf("failed to remove passed number: %w", err)
	}

	return r.membersToInts(rangeCmd.Val()), nil
}

func (r repo) ClearPassed(ctx context.Context) error {
	if err := r.rc.Del(ctx, keyPassedNumbers).Err(); err != nil {
		return fmt.Errorf("failed to clear passed numbers: %w", err)
	}

	return nil
}

func (r repo) GetPassed(ctx context.Context) ([]int, error) {
	members, err := r.rc.ZRange(ctx, keyPassedNumbers, int64(-r.passedLimit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get passed numbers: %w", err)
	}

	return r.membersToInts(members), nil
}
