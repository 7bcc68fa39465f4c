package board

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/callsys/callboard/internal/broadcast"
)

// Next, Previous and SetExact publish their update events in the order the
// writes were applied by this instance. Writes from different instances may
// still be published out of order.
func (s service) Next(ctx context.Context, actor string) (int, error) {
	s.numberMu.Lock()
	n, err := s.repo.Next(ctx)
	if err != nil {
		s.numberMu.Unlock()
		return 0, fmt.Errorf("failed to increment number: %w", err)
	}
	s.RecordAdminLog(ctx, actor, fmt.Sprintf("number increased to %d", n))
	s.publish(ctx, EventUpdate, n, broadcast.AudienceAll)
	s.numberMu.Unlock()

	s.touch(ctx)

	return n, nil
}

// Previous never goes below zero. At zero the number is rebroadcast but no
// admin log entry is written.
func (s service) Previous(ctx context.Context, actor string) (int, error) {
	s.numberMu.Lock()
	n, changed, err := s.repo.Previous(ctx)
	if err != nil {
		s.numberMu.Unlock()
		return 0, fmt.Errorf("failed to decrement number: %w", err)
	}
	if changed {
		s.RecordAdminLog(ctx, actor, fmt.Sprintf("number decreased to %d", n))
	}
	s.publish(ctx, EventUpdate, n, broadcast.AudienceAll)
	s.numberMu.Unlock()

	s.touch(ctx)

	return n, nil
}

type SetExactParams struct {
	Number int
	Actor  string
}

func (s service) SetExact(ctx context.Context, params *SetExactParams) (int, error) {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Number, ExactNumberRule...),
	); err != nil {
		return 0, validationError(err)
	}

	s.numberMu.Lock()
	if err := s.repo.SetExact(ctx, params.Number); err != nil {
		s.numberMu.Unlock()
		return 0, fmt.Errorf("failed to set number: %w", err)
	}
	s.RecordAdminLog(ctx, params.Actor, fmt.Sprintf("number set to %d", params.Number))
	s.publish(ctx, EventUpdate, params.Number, broadcast.AudienceAll)
	s.numberMu.Unlock()

	s.touch(ctx)

	return params.Number, nil
}
