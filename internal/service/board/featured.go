package board

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/exp/slices"

	"github.com/callsys/callboard/internal/broadcast"
	"github.com/callsys/callboard/internal/repository/board"
)

type FeaturedParams struct {
	LinkText string
	LinkURL  string
	Actor    string
}

func (p *FeaturedParams) validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.LinkText, LinkTextRule...),
		validation.Field(&p.LinkURL, LinkURLRule...),
	)
}

func (s service) AddFeatured(ctx context.Context, params *FeaturedParams) ([]board.FeaturedContent, error) {
	if err := params.validate(); err != nil {
		return nil, validationError(err)
	}

	item := board.FeaturedContent{
		LinkText: params.LinkText,
		LinkURL:  params.LinkURL,
	}

	featured, err := s.repo.MutateFeatured(ctx, func(current []board.FeaturedContent) ([]board.FeaturedContent, error) {
		return append(current, item), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add featured content: %w", err)
	}

	s.featuredChanged(ctx, params.Actor, "featured link added: "+params.LinkText, featured)
	return featured, nil
}

// RemoveFeatured removes the first item equal to the given pair.
// RemoveFeaturedByIndex is preferred when the caller knows the position.
func (s service) RemoveFeatured(ctx context.Context, params *FeaturedParams) ([]board.FeaturedContent, error) {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.LinkText, validation.Required),
		validation.Field(&params.LinkURL, validation.Required),
	); err != nil {
		return nil, validationError(err)
	}

	item := board.FeaturedContent{
		LinkText: params.LinkText,
		LinkURL:  params.LinkURL,
	}

	featured, err := s.repo.MutateFeatured(ctx, func(current []board.FeaturedContent) ([]board.FeaturedContent, error) {
		i := slices.Index(current, item)
		if i < 0 {
			return nil, board.ErrFeaturedNotFound
		}

		return slices.Delete(current, i, i+1), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove featured content: %w", err)
	}

	s.featuredChanged(ctx, params.Actor, "featured link removed: "+params.LinkText, featured)
	return featured, nil
}

type RemoveFeaturedByIndexParams struct {
	Index int
	Actor string
}

func (s service) RemoveFeaturedByIndex(ctx context.Context, params *RemoveFeaturedByIndexParams) ([]board.FeaturedContent, error) {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Index, IndexRule...),
	); err != nil {
		return nil, validationError(err)
	}

	var removed board.FeaturedContent
	featured, err := s.repo.MutateFeatured(ctx, func(current []board.FeaturedContent) ([]board.FeaturedContent, error) {
		if params.Index >= len(current) {
			return nil, board.ErrFeaturedNotFound
		}

		removed = current[params.Index]
		return slices.Delete(current, params.Index, params.Index+1), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove featured content: %w", err)
	}

	s.featuredChanged(ctx, params.Actor, "featured link removed: "+removed.LinkText, featured)
	return featured, nil
}

func (s service) ClearFeatured(ctx context.Context, actor string) error {
	if err := s.repo.ClearFeatured(ctx); err != nil {
		return fmt.Errorf("failed to clear featured contents: %w", err)
	}

	s.featuredChanged(ctx, actor, "featured links cleared", []board.FeaturedContent{})
	return nil
}

func (s service) featuredChanged(ctx context.Context, actor, message string, featured []board.FeaturedContent) {
	if featured == nil {
		featured = []board.FeaturedContent{}
	}

	s.RecordAdminLog(ctx, actor, message)
	s.publish(ctx, EventUpdateFeaturedContents, featured, broadcast.AudienceAll)
	s.touch(ctx)
}
