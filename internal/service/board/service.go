package board

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/callsys/callboard/internal/broadcast"
	"github.com/callsys/callboard/internal/repository/board"
)

const (
	EventUpdate                 = "update"
	EventUpdatePassed           = "updatePassed"
	EventUpdateFeaturedContents = "updateFeaturedContents"
	EventUpdateTimestamp        = "updateTimestamp"
	EventUpdateSoundSetting     = "updateSoundSetting"
	EventUpdatePublicStatus     = "updatePublicStatus"
	EventNewAdminLog            = "newAdminLog"
	EventInitAdminLogs          = "initAdminLogs"
	EventInitialStateError      = "initialStateError"
)

// SystemActor signs admin log entries written without a user.
const SystemActor = "system"

type iBoardRepo interface {
	Next(ctx context.Context) (int, error)
	Previous(ctx context.Context) (int, bool, error)
	SetExact(ctx context.Context, n int) error
	AddPassed(ctx context.Context, n int) ([]int, error)
	RemovePassed(ctx context.Context, n int) ([]int, error)
	ClearPassed(ctx context.Context) error
	MutateFeatured(ctx context.Context, transform board.FeaturedTransform) ([]board.FeaturedContent, error)
	ClearFeatured(ctx context.Context) error
	SetSoundEnabled(ctx context.Context, enabled bool) error
	SetPublic(ctx context.Context, isPublic bool) error
	SetLastUpdated(ctx context.Context, timestamp string) error
	AppendAdminLog(ctx context.Context, entry string) error
	GetAdminLogs(ctx context.Context) ([]string, error)
	ClearAdminLogs(ctx context.Context) error
	Snapshot(ctx context.Context) (board.Snapshot, error)
	ResetAll(ctx context.Context) error
	GetLayout(ctx context.Context) (board.Layout, error)
	SetLayout(ctx context.Context, layout board.Layout) error
}

type iBroadcaster interface {
	Publish(ctx context.Context, event broadcast.Event) error
}

type Config struct {
	// Now defaults to time.Now.
	Now func() time.Time
}

type service struct {
	repo        iBoardRepo
	broadcaster iBroadcaster
	logger      *slog.Logger
	now         func() time.Time
	// numberMu orders number writes with their update events on this instance.
	numberMu *sync.Mutex
}

func NewService(repo iBoardRepo, broadcaster iBroadcaster, logger *slog.Logger, cfg *Config) *service {
	now := time.Now
	if cfg != nil && cfg.Now != nil {
		now = cfg.Now
	}

	return &service{
		repo:        repo,
		broadcaster: broadcaster,
		logger:      logger,
		now:         now,
		numberMu:    &sync.Mutex{},
	}
}

// publish is best-effort: the mutation is already stored and clients catch up
// through the snapshot.
func (s service) publish(ctx context.Context, eventType string, payload any, audience broadcast.Audience) {
	if err := s.broadcaster.Publish(ctx, broadcast.Event{
		Type:     eventType,
		Payload:  payload,
		Audience: audience,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "type", eventType, "error", err)
	}
}

// RecordAdminLog appends an entry to the admin log and publishes it to admin
// clients. Failures are logged and never returned.
func (s service) RecordAdminLog(ctx context.Context, actor, message string) {
	if actor == "" {
		actor = SystemActor
	}

	entry := "[" + s.now().Format(time.TimeOnly) + "] (" + actor + ") " + message
	if err := s.repo.AppendAdminLog(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to append admin log", "error", err)
		return
	}

	s.publish(ctx, EventNewAdminLog, entry, broadcast.AudienceAdmins)
}

func (s service) touch(ctx context.Context) {
	timestamp := s.now().UTC().Format(board.TimestampLayout)
	if err := s.repo.SetLastUpdated(ctx, timestamp); err != nil {
		s.logger.WarnContext(ctx, "failed to set last updated", "error", err)
		return
	}

	s.publish(ctx, EventUpdateTimestamp, timestamp, broadcast.AudienceAll)
}
