package board

import (
	"context"
	"fmt"

	"github.com/callsys/callboard/internal/broadcast"
)

type SetSoundEnabledParams struct {
	Enabled bool
	Actor   string
}

func (s service) SetSoundEnabled(ctx context.Context, params *SetSoundEnabledParams) error {
	if err := s.repo.SetSoundEnabled(ctx, params.Enabled); err != nil {
		return fmt.Errorf("failed to set sound setting: %w", err)
	}

	state := "off"
	if params.Enabled {
		state = "on"
	}

	s.RecordAdminLog(ctx, params.Actor, "display sound turned "+state)
	s.publish(ctx, EventUpdateSoundSetting, params.Enabled, broadcast.AudienceAll)
	s.touch(ctx)

	return nil
}

type SetPublicParams struct {
	IsPublic bool
	Actor    string
}

func (s service) SetPublic(ctx context.Context, params *SetPublicParams) error {
	if err := s.repo.SetPublic(ctx, params.IsPublic); err != nil {
		return fmt.Errorf("failed to set public status: %w", err)
	}

	state := "closed for maintenance"
	if params.IsPublic {
		state = "open to the public"
	}

	s.RecordAdminLog(ctx, params.Actor, "display "+state)
	s.publish(ctx, EventUpdatePublicStatus, params.IsPublic, broadcast.AudienceAll)
	s.touch(ctx)

	return nil
}
