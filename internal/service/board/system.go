package board

import (
	"context"
	"fmt"

	"github.com/callsys/callboard/internal/broadcast"
	"github.com/callsys/callboard/internal/repository/board"
)

// ResetAll restores every board key to its default in one transaction. Users
// and the admin layout are kept.
func (s service) ResetAll(ctx context.Context, actor string) error {
	if err := s.repo.ResetAll(ctx); err != nil {
		return fmt.Errorf("failed to reset board: %w", err)
	}

	s.publish(ctx, EventInitAdminLogs, []string{}, broadcast.AudienceAdmins)
	s.RecordAdminLog(ctx, actor, "all board data reset")

	s.publish(ctx, EventUpdate, 0, broadcast.AudienceAll)
	s.publish(ctx, EventUpdatePassed, []int{}, broadcast.AudienceAll)
	s.publish(ctx, EventUpdateFeaturedContents, []board.FeaturedContent{}, broadcast.AudienceAll)
	s.publish(ctx, EventUpdateSoundSetting, true, broadcast.AudienceAll)
	s.publish(ctx, EventUpdatePublicStatus, true, broadcast.AudienceAll)
	s.touch(ctx)

	return nil
}
