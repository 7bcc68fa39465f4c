package board

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/callsys/callboard/internal/broadcast"
)

type PassedParams struct {
	Number int
	Actor  string
}

// AddPassed is idempotent for numbers already in the list.
func (s service) AddPassed(ctx context.Context, params *PassedParams) ([]int, error) {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Number, PassedNumberRule...),
	); err != nil {
		return nil, validationError(err)
	}

	passed, err := s.repo.AddPassed(ctx, params.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to add passed number: %w", err)
	}

	s.RecordAdminLog(ctx, params.Actor, fmt.Sprintf("passed number %d added", params.Number))
	s.publish(ctx, EventUpdatePassed, passed, broadcast.AudienceAll)
	s.touch(ctx)

	return passed, nil
}

func (s service) RemovePassed(ctx context.Context, params *PassedParams) ([]int, error) {
	passed, err := s.repo.RemovePassed(ctx, params.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to remove passed number: %w", err)
	}

	s.RecordAdminLog(ctx, params.Actor, fmt.Sprintf("passed number %d removed", params.Number))
	s.publish(ctx, EventUpdatePassed, passed, broadcast.AudienceAll)
	s.touch(ctx)

	return passed, nil
}

func (s service) ClearPassed(ctx context.Context, actor string) error {
	if err := s.repo.ClearPassed(ctx); err != nil {
		return fmt.Errorf("failed to clear passed numbers: %w", err)
	}

	s.RecordAdminLog(ctx, actor, "passed numbers cleared")
	s.publish(ctx, EventUpdatePassed, []int{}, broadcast.AudienceAll)
	s.touch(ctx)

	return nil
}
