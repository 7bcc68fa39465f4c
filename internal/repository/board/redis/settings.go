package redis

import (
	"context"
	"fmt"
)

func (r repo) SetSoundEnabled(ctx context.Context, enabled bool) error {
	if err := r.rc.Set(ctx, keySoundEnabled, r.boolToField(enabled), 0).Err(); err != nil {
		return fmt.Errorf("failed to set sound enabled: %w", err)
	}

	return nil
}

func (r repo) SetPublic(ctx context.Context, isPublic bool) error {
	if err := r.rc.Set(ctx, keyIsPublic, r.boolToField(isPublic), 0).Err(); err != nil {
		return fmt.Errorf("failed to set public status: %w", err)
	}

	return nil
}

func (r repo) SetLastUpdated(ctx context.Context, timestamp string) error {
	if err := r.rc.Set(ctx, keyLastUpdated, timestamp, 0).Err(); err != nil {
		return fmt.Errorf("failed to set last updated: %w", err)
	}

	return nil
}
