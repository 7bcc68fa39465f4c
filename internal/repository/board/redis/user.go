package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/callsys/callboard/internal/repository/board"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slices"
)

func (r repo) GetUser(ctx context.Context, username string) (board.User, error) {
	raw, err := r.rc.HGet(ctx, keyUsers, username).Result()
	if errors.Is(err, redis.Nil) {
		return board.User{}, board.ErrUserNotFound
	}
	if err != nil {
		return board.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	var user board.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return board.User{}, fmt.Errorf("failed to decode user %q: %w", username, err)
	}

	return user, nil
}

// CreateUser stores user only if the username is free.
func (r repo) CreateUser(ctx context.Context, user board.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}

	ok, err := r.rc.HSetNX(ctx, keyUsers, user.Username, b).Result()
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if !ok {
		return board.ErrUserExists
	}

	return nil
}

// SetUser creates or overwrites user.
func (r repo) SetUser(ctx context.Context, user board.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}

	if err := r.rc.HSet(ctx, keyUsers, user.Username, b).Err(); err != nil {
		return fmt.Errorf("failed to set user: %w", err)
	}

	return nil
}

func (r repo) DeleteUser(ctx context.Context, username string) error {
	res, err := r.rc.HDel(ctx, keyUsers, username).Result()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if res == 0 {
		return board.ErrUserNotFound
	}

	return nil
}

// ListUsers returns every user sorted by username.
func (r repo) ListUsers(ctx context.Context) ([]board.User, error) {
	raw, err := r.rc.HGetAll(ctx, keyUsers).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]board.User, 0, len(raw))
	for username, v := range raw {
		var user board.User
		if err := json.Unmarshal([]byte(v), &user); err != nil {
			r.logger.WarnContext(ctx, "skipping malformed user", "username", username, "error", err)
			continue
		}
		users = append(users, user)
	}

	slices.SortFunc(users, func(a, b board.User) int {
		return strings.Compare(a.Username, b.Username)
	})

	return users, nil
}
