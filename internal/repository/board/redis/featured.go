package redis

import (
	"context"
	"fmt"

	"github.com/callsys/callboard/internal/repository/board"
	"github.com/redis/go-redis/v9"
)

func (r repo) featuredList() watched[[]board.FeaturedContent] {
	return watched[[]board.FeaturedContent]{
		key: keyFeaturedContents,
		read: func(ctx context.Context, tx *redis.Tx) ([]board.FeaturedContent, error) {
			raw, err := tx.LRange(ctx, keyFeaturedContents, 0, -1).Result()
			if err != nil {
				return nil, err
			}
			return r.decodeFeaturedStrict(raw)
		},
		write: func(ctx context.Context, pipe redis.Pipeliner, contents []board.FeaturedContent) error {
			encoded, err := r.encodeFeatured(contents)
			if err != nil {
				return err
			}

			pipe.Del(ctx, keyFeaturedContents)
			if len(encoded) > 0 {
				pipe.RPush(ctx, keyFeaturedContents, encoded...)
			}
			return nil
		},
	}
}

// MutateFeatured replaces the featured list with transform(current) under optimistic
// concurrency control and returns the stored list. A list holding malformed items
// is left untouched and board.ErrFeaturedCorrupt is returned.
func (r repo) MutateFeatured(ctx context.Context, transform board.FeaturedTransform) ([]board.FeaturedContent, error) {
	contents, err := watchRetry(ctx, r.rc, r.observer, r.featuredAttempts, r.featuredList(), transform)
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return contents, nil
}

func (r repo) ClearFeatured(ctx context.Context) error {
	if err := r.rc.Del(ctx, keyFeaturedContents).Err(); err != nil {
		return fmt.Errorf("failed to clear featured contents: %w", err)
	}

	return nil
}

func (r repo) GetFeatured(ctx context.Context) ([]board.FeaturedContent, error) {
	raw, err := r.rc.LRange(ctx, keyFeaturedContents, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get featured contents: %w", err)
	}

	return r.decodeFeatured(raw), nil
}
