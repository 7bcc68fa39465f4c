package redis

import (
	"context"
	"fmt"
)

// ResetAll restores every board key to its initial value in one transaction. Users
// and the dashboard layout are kept.
func (r repo) ResetAll(ctx context.Context) error {
	pipe := r.rc.TxPipeline()

	pipe.Set(ctx, keyCurrentNumber, 0, 0)
	pipe.Del(ctx, keyPassedNumbers)
	pipe.Del(ctx, keyFeaturedContents)
	pipe.Set(ctx, keySoundEnabled, r.boolToField(true), 0)
	pipe.Set(ctx, keyIsPublic, r.boolToField(true), 0)
	pipe.Del(ctx, keyAdminLog)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to reset board: %w", err)
	}

	return nil
}
