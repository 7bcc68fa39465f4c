package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/callsys/callboard/internal/repository/board"
)

var ErrLayoutNotArray = errors.New("layout must be a JSON array")

// LoadLayout returns nil when no layout was saved yet.
func (s service) LoadLayout(ctx context.Context) (board.Layout, error) {
	layout, err := s.repo.GetLayout(ctx)
	if err != nil {
		if errors.Is(err, board.ErrLayoutNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get layout: %w", err)
	}

	return layout, nil
}

type SaveLayoutParams struct {
	Layout board.Layout
	Actor  string
}

func (s service) SaveLayout(ctx context.Context, params *SaveLayoutParams) error {
	var items []json.RawMessage
	if len(params.Layout) == 0 || json.Unmarshal(params.Layout, &items) != nil || items == nil {
		return validationError(ErrLayoutNotArray)
	}

	if err := s.repo.SetLayout(ctx, params.Layout); err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}

	s.RecordAdminLog(ctx, params.Actor, "dashboard layout saved")
	return nil
}
