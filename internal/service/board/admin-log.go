package board

import (
	"context"
	"fmt"

	"github.com/callsys/callboard/internal/broadcast"
)

func (s service) AdminLogs(ctx context.Context) ([]string, error) {
	logs, err := s.repo.GetAdminLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin logs: %w", err)
	}

	return logs, nil
}

// ClearAdminLogs leaves a single entry recording who cleared the log.
func (s service) ClearAdminLogs(ctx context.Context, actor string) error {
	if err := s.repo.ClearAdminLogs(ctx); err != nil {
		return fmt.Errorf("failed to clear admin logs: %w", err)
	}

	s.publish(ctx, EventInitAdminLogs, []string{}, broadcast.AudienceAdmins)
	s.RecordAdminLog(ctx, actor, "admin logs cleared")

	return nil
}
