package repo

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"nexus/internal/domain"
	"nexus/internal/storage"
)

// InvestmentRepository implements domain.InvestmentRepository over the document store.
type InvestmentRepository struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewInvestmentRepository creates a new InvestmentRepository.
func NewInvestmentRepository(store storage.Store, logger zerolog.Logger) *InvestmentRepository {
	return &InvestmentRepository{store: store, logger: logger}
}

// CreateInvestment records an approved offer keyed by its request id, so a
// request yields at most one investment.
func (r *InvestmentRepository) CreateInvestment(ctx context.Context, inv domain.Investment) (string, error) {
	err := r.store.InsertWithID(ctx, storage.CollectionInvestments, inv.RequestID, map[string]any{
		"requestId":  inv.RequestID,
		"startupId":  inv.StartupID,
		"investorId": inv.InvestorID,
		"amount":     inv.Amount.String(),
		"equity":     inv.Equity.String(),
	})
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		r.logger.Debug().Str("request_id", inv.RequestID).Msg("investment already recorded")
	case err != nil:
		return "", storeErr(err)
	}
	return inv.RequestID, nil
}

var _ domain.InvestmentRepository = (*InvestmentRepository)(nil)
