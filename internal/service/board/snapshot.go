package board

import (
	"context"
	"fmt"

	"github.com/callsys/callboard/internal/broadcast"
	"github.com/callsys/callboard/internal/repository/board"
)

// Snapshot errors wrap board.ErrSnapshot.
func (s service) Snapshot(ctx context.Context) (board.Snapshot, error) {
	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if snapshot.PassedNumbers == nil {
		snapshot.PassedNumbers = []int{}
	}
	if snapshot.FeaturedContents == nil {
		snapshot.FeaturedContents = []board.FeaturedContent{}
	}

	return snapshot, nil
}

// SnapshotEvents returns the frames that bring a freshly connected client up
// to date, in the order they should be sent.
func SnapshotEvents(snapshot board.Snapshot) []broadcast.Output {
	return []broadcast.Output{
		{Type: EventUpdate, Payload: snapshot.CurrentNumber},
		{Type: EventUpdatePassed, Payload: snapshot.PassedNumbers},
		{Type: EventUpdateFeaturedContents, Payload: snapshot.FeaturedContents},
		{Type: EventUpdateTimestamp, Payload: snapshot.LastUpdated},
		{Type: EventUpdateSoundSetting, Payload: snapshot.SoundEnabled},
		{Type: EventUpdatePublicStatus, Payload: snapshot.IsPublic},
	}
}
