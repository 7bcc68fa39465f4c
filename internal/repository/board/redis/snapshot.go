package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/callsys/callboard/internal/repository/board"
	"github.com/redis/go-redis/v9"
)

// Snapshot reads every board key inside one MULTI/EXEC so no mutation can interleave.
func (r repo) Snapshot(ctx context.Context) (board.Snapshot, error) {
	pipe := r.rc.TxPipeline()

	numberCmd := pipe.Get(ctx, keyCurrentNumber)
	passedCmd := pipe.ZRange(ctx, keyPassedNumbers, int64(-r.passedLimit), -1)
	featuredCmd := pipe.LRange(ctx, keyFeaturedContents, 0, -1)
	updatedCmd := pipe.Get(ctx, keyLastUpdated)
	soundCmd := pipe.Get(ctx, keySoundEnabled)
	publicCmd := pipe.Get(ctx, keyIsPublic)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return board.Snapshot{}, fmt.Errorf("%w: %w", board.ErrSnapshot, err)
	}

	number, err := r.fieldToInt(numberCmd)
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("%w: current number: %w", board.ErrSnapshot, err)
	}

	lastUpdated, err := updatedCmd.Result()
	if errors.Is(err, redis.Nil) || lastUpdated == "" {
		lastUpdated = time.Now().UTC().Format(board.TimestampLayout)
	}

	return board.Snapshot{
		CurrentNumber:    number,
		PassedNumbers:    r.membersToInts(passedCmd.Val()),
		FeaturedContents: r.decodeFeatured(featuredCmd.Val()),
		LastUpdated:      lastUpdated,
		SoundEnabled:     r.fieldToBool(soundCmd),
		IsPublic:         r.fieldToBool(publicCmd),
	}, nil
}
