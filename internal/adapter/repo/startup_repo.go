package repo

import (
	"context"

	"github.com/rs/zerolog"

	"nexus/internal/domain"
	"nexus/internal/storage"
)

// StartupRepository implements domain.StartupRepository over the document store.
type StartupRepository struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewStartupRepository creates a new StartupRepository.
func NewStartupRepository(store storage.Store, logger zerolog.Logger) *StartupRepository {
	return &StartupRepository{store: store, logger: logger}
}

// CreateStartup validates and stores a listing with zeroed aggregates.
func (r *StartupRepository) CreateStartup(ctx context.Context, data domain.NewStartup) (string, error) {
	if err := data.Validate(); err != nil {
		return "", err
	}
	id, err := r.store.Insert(ctx, storage.CollectionStartups, startupFields(data))
	if err != nil {
		return "", storeErr(err)
	}
	return id, nil
}

// ImportStartup stores a listing carried over from the legacy collection
// under the legacy document id. A second import of the same id reports
// domain.ErrConflict.
func (r *StartupRepository) ImportStartup(ctx context.Context, legacyID string, data domain.NewStartup) error {
	if err := data.Validate(); err != nil {
		return err
	}
	fields := startupFields(data)
	fields["legacyId"] = legacyID
	return storeErr(r.store.InsertWithID(ctx, storage.CollectionStartups, legacyID, fields))
}

func startupFields(data domain.NewStartup) map[string]any {
	return map[string]any{
		"name":             data.Name,
		"founder":          data.Founder,
		"cofounder":        data.CoFounder,
		"domain":           data.Domain,
		"description":      data.Description,
		"askingInvestment": data.AskingInvestment.String(),
		"equity":           data.Equity.String(),
		"pitchVideoLink":   data.PitchVideoURL,
		"websiteLink":      data.WebsiteURL,
		"foundedYear":      data.FoundedYear,
		"teamSize":         data.TeamSize,
		"location":         data.Location,
		"ownerId":          data.OwnerID,
		"ownerEmail":       data.OwnerEmail,
		"pendingRequests":  0,
		"approvedRequests": 0,
		"totalInvestment":  "0",
	}
}

// GetStartupByID returns domain.ErrNotFound when the listing does not exist.
func (r *StartupRepository) GetStartupByID(ctx context.Context, id string) (*domain.Startup, error) {
	doc, err := r.store.Get(ctx, storage.CollectionStartups, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return decodeStartup(doc)
}

func (r *StartupRepository) GetStartupsByOwner(ctx context.Context, ownerID string) ([]domain.Startup, error) {
	return r.find(ctx, storage.Eq("ownerId", ownerID))
}

// GetStartupsByIDs returns the listings that exist among ids. An empty id
// set yields an empty result without querying.
func (r *StartupRepository) GetStartupsByIDs(ctx context.Context, ids []string) ([]domain.Startup, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, storage.In(storage.IDField, ids))
}

func (r *StartupRepository) ListStartups(ctx context.Context) ([]domain.Startup, error) {
	return r.find(ctx)
}

// UpdateStartup writes the descriptive fields present in patch.
func (r *StartupRepository) UpdateStartup(ctx context.Context, id string, patch domain.StartupPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	fields := map[string]any{}
	setString := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	setString("name", patch.Name)
	setString("founder", patch.Founder)
	setString("cofounder", patch.CoFounder)
	setString("domain", patch.Domain)
	setString("description", patch.Description)
	setString("pitchVideoLink", patch.PitchVideoURL)
	setString("websiteLink", patch.WebsiteURL)
	setString("location", patch.Location)
	if patch.FoundedYear != nil {
		fields["foundedYear"] = *patch.FoundedYear
	}
	if patch.TeamSize != nil {
		fields["teamSize"] = *patch.TeamSize
	}
	if len(fields) == 0 {
		return nil
	}
	return storeErr(r.store.Update(ctx, storage.CollectionStartups, id, fields))
}

// UpdateStartupAggregates persists a recomputed aggregate snapshot.
func (r *StartupRepository) UpdateStartupAggregates(ctx context.Context, id string, agg domain.Aggregates) error {
	return storeErr(r.store.Update(ctx, storage.CollectionStartups, id, map[string]any{
		"pendingRequests":  agg.PendingRequests,
		"approvedRequests": agg.ApprovedRequests,
		"totalInvestment":  agg.TotalInvestment.String(),
	}))
}

func (r *StartupRepository) find(ctx context.Context, filters ...storage.Filter) ([]domain.Startup, error) {
	docs, err := r.store.Find(ctx, storage.CollectionStartups, filters...)
	if err != nil {
		return nil, storeErr(err)
	}
	out := make([]domain.Startup, 0, len(docs))
	for i := range docs {
		s, err := decodeStartup(&docs[i])
		if err != nil {
			r.logger.Warn().Err(err).Msg("skipping startup record")
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func decodeStartup(doc *storage.Document) (*domain.Startup, error) {
	f := doc.Fields
	s := domain.Startup{
		ID:            doc.ID,
		Name:          stringField(f, "name"),
		Founder:       stringField(f, "founder"),
		CoFounder:     stringField(f, "cofounder"),
		Domain:        stringField(f, "domain"),
		Description:   stringField(f, "description"),
		PitchVideoURL: stringField(f, "pitchVideoLink"),
		WebsiteURL:    stringField(f, "websiteLink"),
		Location:      stringField(f, "location"),
		OwnerEmail:    stringField(f, "ownerEmail"),
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	var err error
	if s.OwnerID, err = requiredString(f, "ownerId"); err != nil {
		return nil, corrupt(storage.CollectionStartups, doc.ID, err)
	}
	if s.AskingInvestment, err = decimalField(f, "askingInvestment"); err != nil {
		return nil, corrupt(storage.CollectionStartups, doc.ID, err)
	}
	if s.Equity, err = decimalField(f, "equity"); err != nil {
		return nil, corrupt(storage.CollectionStartups, doc.ID, err)
	}
	if s.TotalInvestment, err = decimalField(f, "totalInvestment"); err != nil {
		return nil, corrupt(storage.CollectionStartups, doc.ID, err)
	}
	if s.FoundedYear, err = intField(f, "foundedYear"); err != nil {
		return nil, corrupt(storage.CollectionStartups, doc.ID, err)
	}
	if s.TeamSize, err = intField(f, "teamSize"); err != nil {
		return nil, corrupt(storage.CollectionStartups, doc.ID, err)
	}
	if s.PendingRequests, err = intField(f, "pendingRequests"); err != nil {
		return nil, corrupt(storage.CollectionStartups, doc.ID, err)
	}
	if s.ApprovedRequests, err = intField(f, "approvedRequests"); err != nil {
		return nil, corrupt(storage.CollectionStartups, doc.ID, err)
	}
	listing := domain.NewStartup{
		Name:             s.Name,
		OwnerID:          s.OwnerID,
		AskingInvestment: s.AskingInvestment,
		Equity:           s.Equity,
		TeamSize:         s.TeamSize,
	}
	if err := listing.Validate(); err != nil {
		return nil, corrupt(storage.CollectionStartups, doc.ID, err)
	}
	return &s, nil
}

var _ domain.StartupRepository = (*StartupRepository)(nil)
