// Package offers implements the investment request lifecycle: investors
// submit offers on listings and listing owners approve or reject them.
package offers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"nexus/internal/dashboard"
	"nexus/internal/domain"
)

// Recorder counts lifecycle events.
type Recorder interface {
	OfferSubmitted()
	OfferDecided(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) OfferSubmitted()      {}
func (nopRecorder) OfferDecided(string) {}

// Service enforces who may move a request and where it may move to.
type Service struct {
	startups    domain.StartupRepository
	requests    domain.RequestRepository
	investments domain.InvestmentRepository
	users       domain.UserRepository
	recorder    Recorder
	logger      zerolog.Logger
}

func NewService(startups domain.StartupRepository, requests domain.RequestRepository, investments domain.InvestmentRepository, users domain.UserRepository, recorder Recorder, logger zerolog.Logger) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		startups:    startups,
		requests:    requests,
		investments: investments,
		users:       users,
		recorder:    recorder,
		logger:      logger,
	}
}

// Submit creates a pending offer by actor on a listing.
func (s *Service) Submit(ctx context.Context, actor domain.Actor, startupID string, amount, equity decimal.Decimal) (*domain.InvestmentRequest, error) {
	if !actor.IsInvestor() {
		return nil, fmt.Errorf("%w: only investors can submit offers", domain.ErrForbidden)
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateEquity(equity); err != nil {
		return nil, err
	}
	listing, err := s.startups.GetStartupByID(ctx, startupID)
	if err != nil {
		return nil, err
	}
	name, err := s.investorName(ctx, actor)
	if err != nil {
		return nil, err
	}

	data := domain.NewRequest{
		StartupID:    listing.ID,
		InvestorID:   actor.ID,
		InvestorName: name,
		Amount:       amount,
		Equity:       equity,
	}
	id, err := s.requests.CreateRequest(ctx, data)
	if err != nil {
		return nil, err
	}
	s.recorder.OfferSubmitted()
	s.logger.Info().Str("request_id", id).Str("startup_id", listing.ID).Str("investor_id", actor.ID).Msg("offer submitted")

	s.refreshAggregates(ctx, listing.ID)
	created, err := s.requests.GetRequestByID(ctx, id)
	if err != nil {
		// The offer is stored; report it even though the read back failed.
		s.logger.Warn().Err(err).Str("request_id", id).Msg("read back submitted offer failed")
		now := time.Now().UTC()
		return &domain.InvestmentRequest{
			ID:           id,
			StartupID:    data.StartupID,
			InvestorID:   data.InvestorID,
			InvestorName: data.InvestorName,
			Amount:       data.Amount,
			Equity:       data.Equity,
			Status:       domain.RequestStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}, nil
	}
	return created, nil
}

// investorName reads the current display name from the user record so a
// rename applies to offers made under an older session.
func (s *Service) investorName(ctx context.Context, actor domain.Actor) (string, error) {
	name := actor.DisplayName
	if s.users != nil {
		u, err := s.users.GetUserByID(ctx, actor.ID)
		switch {
		case err == nil:
			name = u.DisplayName
		case !errors.Is(err, domain.ErrNotFound):
			return "", err
		}
	}
	if name = strings.TrimSpace(name); name == "" {
		name = "Anonymous Investor"
	}
	return name, nil
}

// Decide moves a pending request to outcome. Only the listing owner may
// decide and a decided request is never changed again.
func (s *Service) Decide(ctx context.Context, actor domain.Actor, requestID string, outcome domain.RequestStatus) (*domain.InvestmentRequest, error) {
	if !outcome.IsTerminal() {
		return nil, fmt.Errorf("%w: outcome must be approved or rejected", domain.ErrInvalidInput)
	}
	req, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	listing, err := s.startups.GetStartupByID(ctx, req.StartupID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: only the listing owner can decide", domain.ErrForbidden)
	}
	if !req.Status.CanTransitionTo(outcome) {
		return nil, fmt.Errorf("%w: request is already %s", domain.ErrIllegalTransition, req.Status)
	}

	if err := s.requests.UpdateRequestStatus(ctx, req.ID, outcome); err != nil {
		return nil, err
	}
	req.Status = outcome
	s.recorder.OfferDecided(string(outcome))
	s.logger.Info().Str("request_id", req.ID).Str("startup_id", listing.ID).Str("outcome", string(outcome)).Msg("offer decided")

	if outcome == domain.RequestStatusApproved {
		_, err := s.investments.CreateInvestment(ctx, domain.Investment{
			RequestID:  req.ID,
			StartupID:  req.StartupID,
			InvestorID: req.InvestorID,
			Amount:     req.Amount,
			Equity:     req.Equity,
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Str("request_id", req.ID).Msg("record investment failed")
		}
	}

	s.refreshAggregates(ctx, listing.ID)
	if fresh, err := s.requests.GetRequestByID(ctx, req.ID); err == nil {
		return fresh, nil
	}
	return req, nil
}

// refreshAggregates persists a recomputed snapshot. Failures are logged only:
// readers recompute from the requests.
func (s *Service) refreshAggregates(ctx context.Context, startupID string) {
	reqs, err := s.requests.GetRequestsByStartupIDs(ctx, []string{startupID})
	if err == nil {
		agg := dashboard.ComputeAggregates([]string{startupID}, reqs)[startupID]
		err = s.startups.UpdateStartupAggregates(ctx, startupID, agg)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn().Err(err).Str("startup_id", startupID).Msg("aggregate refresh failed")
	}
}

// Get returns a request visible to actor: its investor or the listing owner.
func (s *Service) Get(ctx context.Context, actor domain.Actor, requestID string) (*domain.InvestmentRequest, error) {
	req, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.InvestorID == actor.ID {
		return req, nil
	}
	listing, err := s.startups.GetStartupByID(ctx, req.StartupID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: request belongs to another user", domain.ErrForbidden)
	}
	return req, nil
}
