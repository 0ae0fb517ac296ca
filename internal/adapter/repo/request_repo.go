package repo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"nexus/internal/domain"
	"nexus/internal/storage"
)

// RequestRepository implements domain.RequestRepository over the document store.
type RequestRepository struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(store storage.Store, logger zerolog.Logger) *RequestRepository {
	return &RequestRepository{store: store, logger: logger}
}

// CreateRequest stores a new offer. The status is always pending.
func (r *RequestRepository) CreateRequest(ctx context.Context, data domain.NewRequest) (string, error) {
	if err := data.Validate(); err != nil {
		return "", err
	}
	id, err := r.store.Insert(ctx, storage.CollectionRequests, map[string]any{
		"startupId":    data.StartupID,
		"investorId":   data.InvestorID,
		"investorName": data.InvestorName,
		"amount":       data.Amount.String(),
		"equity":       data.Equity.String(),
		"status":       string(domain.RequestStatusPending),
	})
	if err != nil {
		return "", storeErr(err)
	}
	return id, nil
}

func (r *RequestRepository) GetRequestByID(ctx context.Context, id string) (*domain.InvestmentRequest, error) {
	doc, err := r.store.Get(ctx, storage.CollectionRequests, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return decodeRequest(doc)
}

// GetRequestsByStartupIDs fetches requests of several listings in one query.
// The store cannot express an "in" query over zero ids, so an empty id set is
// rejected; callers special-case owners without listings.
func (r *RequestRepository) GetRequestsByStartupIDs(ctx context.Context, ids []string) ([]domain.InvestmentRequest, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, storage.ErrEmptyIn)
	}
	return r.find(ctx, storage.In("startupId", ids))
}

func (r *RequestRepository) GetRequestsByInvestor(ctx context.Context, investorID string) ([]domain.InvestmentRequest, error) {
	return r.find(ctx, storage.Eq("investorId", investorID))
}

// UpdateRequestStatus writes status without checking the transition; the
// lifecycle service owns that rule.
func (r *RequestRepository) UpdateRequestStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	return storeErr(r.store.Update(ctx, storage.CollectionRequests, id, map[string]any{
		"status": string(status),
	}))
}

func (r *RequestRepository) find(ctx context.Context, filters ...storage.Filter) ([]domain.InvestmentRequest, error) {
	docs, err := r.store.Find(ctx, storage.CollectionRequests, filters...)
	if err != nil {
		return nil, storeErr(err)
	}
	out := make([]domain.InvestmentRequest, 0, len(docs))
	for i := range docs {
		req, err := decodeRequest(&docs[i])
		if err != nil {
			r.logger.Warn().Err(err).Msg("skipping request record")
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func decodeRequest(doc *storage.Document) (*domain.InvestmentRequest, error) {
	f := doc.Fields
	req := domain.InvestmentRequest{
		ID:           doc.ID,
		InvestorName: stringField(f, "investorName"),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	var err error
	if req.StartupID, err = requiredString(f, "startupId"); err != nil {
		return nil, corrupt(storage.CollectionRequests, doc.ID, err)
	}
	if req.InvestorID, err = requiredString(f, "investorId"); err != nil {
		return nil, corrupt(storage.CollectionRequests, doc.ID, err)
	}
	if req.Amount, err = decimalField(f, "amount"); err != nil {
		return nil, corrupt(storage.CollectionRequests, doc.ID, err)
	}
	if req.Equity, err = decimalField(f, "equity"); err != nil {
		return nil, corrupt(storage.CollectionRequests, doc.ID, err)
	}
	if req.Status, err = domain.ParseRequestStatus(stringField(f, "status")); err != nil {
		return nil, corrupt(storage.CollectionRequests, doc.ID, err)
	}
	if !req.Amount.IsPositive() {
		return nil, corrupt(storage.CollectionRequests, doc.ID, fmt.Errorf("amount must be positive"))
	}
	return &req, nil
}

var _ domain.RequestRepository = (*RequestRepository)(nil)
