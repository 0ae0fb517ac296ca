package repo

import (
	"context"
	"fmt"

	"nexus/internal/domain"
	"nexus/internal/storage"
)

// LegacyStartup is a listing document from the older startup_data collection.
// Err is set when the document cannot be mapped onto a listing.
type LegacyStartup struct {
	ID   string
	Data domain.NewStartup
	Err  error
}

// LegacyStartupReader reads the older listing documents.
type LegacyStartupReader struct {
	store storage.Store
}

func NewLegacyStartupReader(store storage.Store) *LegacyStartupReader {
	return &LegacyStartupReader{store: store}
}

// ListLegacyStartups returns every legacy listing. Documents that cannot be
// decoded are returned with Err set so callers can report them.
func (r *LegacyStartupReader) ListLegacyStartups(ctx context.Context) ([]LegacyStartup, error) {
	docs, err := r.store.Find(ctx, storage.CollectionLegacyStartups)
	if err != nil {
		return nil, storeErr(err)
	}
	out := make([]LegacyStartup, 0, len(docs))
	for _, doc := range docs {
		data, err := decodeLegacyStartup(doc.Fields)
		if err != nil {
			err = corrupt(storage.CollectionLegacyStartups, doc.ID, err)
		} else {
			err = data.Validate()
		}
		out = append(out, LegacyStartup{ID: doc.ID, Data: data, Err: err})
	}
	return out, nil
}

// MigratedLegacyIDs returns the legacy ids already present in the startups
// collection.
func (r *LegacyStartupReader) MigratedLegacyIDs(ctx context.Context) (map[string]struct{}, error) {
	docs, err := r.store.Find(ctx, storage.CollectionStartups)
	if err != nil {
		return nil, storeErr(err)
	}
	seen := make(map[string]struct{})
	for _, doc := range docs {
		if id := stringField(doc.Fields, "legacyId"); id != "" {
			seen[id] = struct{}{}
		}
	}
	return seen, nil
}

func decodeLegacyStartup(f map[string]any) (domain.NewStartup, error) {
	var (
		data domain.NewStartup
		err  error
	)
	if data.OwnerID, err = requiredString(f, "userId"); err != nil {
		return data, err
	}
	if data.Name, err = requiredString(f, "startupName"); err != nil {
		return data, err
	}
	if data.AskingInvestment, err = decimalField(f, "fundingGoal"); err != nil {
		return data, err
	}
	if data.Equity, err = decimalField(f, "equityOffered"); err != nil {
		return data, err
	}
	if data.TeamSize, err = intField(f, "teamSize"); err != nil {
		return data, err
	}
	if data.FoundedYear, err = intField(f, "foundedYear"); err != nil {
		return data, err
	}
	data.Domain = stringField(f, "industry")
	data.Founder = firstNonEmpty(stringField(f, "founder"), stringField(f, "founderName"))
	data.CoFounder = stringField(f, "cofounder")
	data.Description = stringField(f, "description")
	data.PitchVideoURL = stringField(f, "pitchVideoLink")
	data.WebsiteURL = stringField(f, "websiteLink")
	data.Location = stringField(f, "location")
	data.OwnerEmail = stringField(f, "userEmail")
	if data.Founder == "" {
		return data, fmt.Errorf("founder is required")
	}
	return data, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
