package redis

import (
	"context"
	"fmt"
)

// AppendAdminLog pushes entry to the head of the log and trims it to the configured limit.
func (r repo) AppendAdminLog(ctx context.Context, entry string) error {
	pipe := r.rc.TxPipeline()

	pipe.LPush(ctx, keyAdminLog, entry)
	pipe.LTrim(ctx, keyAdminLog, 0, int64(r.logLimit-1))

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to append admin log: %w", err)
	}

	return nil
}

// GetAdminLogs returns the log newest first.
func (r repo) GetAdminLogs(ctx context.Context) ([]string, error) {
	logs, err := r.rc.LRange(ctx, keyAdminLog, 0, int64(r.logLimit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get admin logs: %w", err)
	}

	return logs, nil
}

func (r repo) ClearAdminLogs(ctx context.Context) error {
	if err := r.rc.Del(ctx, keyAdminLog).Err(); err != nil {
		return fmt.Errorf("failed to clear admin logs: %w", err)
	}

	return nil
}
