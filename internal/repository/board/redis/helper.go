package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/callsys/callboard/internal/repository/board"
	"github.com/redis/go-redis/v9"
)

// executePipe runs pipe and returns the first command error other than redis.Nil.
func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
		}

		if !errors.Is(err, redis.Nil) {
			return err
		}
	}

	return nil
}

func (r repo) boolToField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// fieldToBool treats an absent field as true.
func (r repo) fieldToBool(cmd *redis.StringCmd) bool {
	v, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return true
	}
	return v == "1"
}

func (r repo) fieldToInt(cmd *redis.StringCmd) (int, error) {
	v, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

func (r repo) membersToInts(members []string) []int {
	numbers := make([]int, 0, len(members))
	for _, m := range members {
		n, err := strconv.Atoi(m)
		if err != nil {
			r.logger.Warn("skipping non-numeric passed number", "member", m)
			continue
		}
		numbers = append(numbers, n)
	}
	return numbers
}

func (r repo) decodeFeatured(raw []string) []board.FeaturedContent {
	contents := make([]board.FeaturedContent, 0, len(raw))
	for _, item := range raw {
		var fc board.FeaturedContent
		if err := json.Unmarshal([]byte(item), &fc); err != nil {
			r.logger.Warn("skipping malformed featured content", "item", item, "error", err)
			continue
		}
		contents = append(contents, fc)
	}
	return contents
}

// decodeFeaturedStrict fails on the first malformed item so a rewrite of the
// list never drops entries it could not read.
func (r repo) decodeFeaturedStrict(raw []string) ([]board.FeaturedContent, error) {
	contents := make([]board.FeaturedContent, 0, len(raw))
	for i, item := range raw {
		var fc board.FeaturedContent
		if err := json.Unmarshal([]byte(item), &fc); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", board.ErrFeaturedCorrupt, i, err)
		}
		contents = append(contents, fc)
	}
	return contents, nil
}

func (r repo) encodeFeatured(contents []board.FeaturedContent) ([]any, error) {
	encoded := make([]any, 0, len(contents))
	for _, fc := range contents {
		b, err := json.Marshal(fc)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, string(b))
	}
	return encoded, nil
}
