// Package listings guards listing writes: only startup users host listings
// and only the owner edits one.
package listings

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"nexus/internal/domain"
)

type Service struct {
	startups domain.StartupRepository
	logger   zerolog.Logger
}

func NewService(startups domain.StartupRepository, logger zerolog.Logger) *Service {
	return &Service{startups: startups, logger: logger}
}

// Create hosts a listing owned by actor.
func (s *Service) Create(ctx context.Context, actor domain.Actor, ownerEmail string, data domain.NewStartup) (*domain.Startup, error) {
	if !actor.IsStartup() {
		return nil, fmt.Errorf("%w: only startup users can host listings", domain.ErrForbidden)
	}
	data.OwnerID = actor.ID
	data.OwnerEmail = ownerEmail
	id, err := s.startups.CreateStartup(ctx, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("startup_id", id).Str("owner_id", actor.ID).Msg("listing created")
	return s.startups.GetStartupByID(ctx, id)
}

// Update edits descriptive fields of a listing owned by actor.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id string, patch domain.StartupPatch) (*domain.Startup, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	current, err := s.startups.GetStartupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: only the owner can edit a listing", domain.ErrForbidden)
	}
	if err := s.startups.UpdateStartup(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.startups.GetStartupByID(ctx, id)
}
