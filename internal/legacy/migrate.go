// Package legacy moves listings from the older startup_data collection into
// the startups collection. Running it twice is harmless.
package legacy

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"nexus/internal/adapter/repo"
	"nexus/internal/domain"
)

type source interface {
	ListLegacyStartups(ctx context.Context) ([]repo.LegacyStartup, error)
	MigratedLegacyIDs(ctx context.Context) (map[string]struct{}, error)
}

type importer interface {
	ImportStartup(ctx context.Context, legacyID string, data domain.NewStartup) error
}

// Report counts what a run did. Invalid maps legacy ids to the reason they
// were left behind.
type Report struct {
	Migrated []string
	Skipped  []string
	Invalid  map[string]string
}

type Migrator struct {
	src    source
	dst    importer
	logger zerolog.Logger
}

func NewMigrator(src source, dst importer, logger zerolog.Logger) *Migrator {
	return &Migrator{src: src, dst: dst, logger: logger}
}

// Run copies every valid, not yet migrated legacy listing. With dryRun set
// nothing is written and Migrated lists what would have been copied.
func (m *Migrator) Run(ctx context.Context, dryRun bool) (*Report, error) {
	docs, err := m.src.ListLegacyStartups(ctx)
	if err != nil {
		return nil, err
	}
	done, err := m.src.MigratedLegacyIDs(ctx)
	if err != nil {
		return nil, err
	}

	rep := &Report{Invalid: map[string]string{}}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if _, ok := done[doc.ID]; ok {
			rep.Skipped = append(rep.Skipped, doc.ID)
			continue
		}
		if doc.Err != nil {
			rep.Invalid[doc.ID] = doc.Err.Error()
			m.logger.Warn().Str("legacy_id", doc.ID).Err(doc.Err).Msg("legacy listing skipped")
			continue
		}
		if dryRun {
			rep.Migrated = append(rep.Migrated, doc.ID)
			continue
		}
		err := m.dst.ImportStartup(ctx, doc.ID, doc.Data)
		switch {
		case err == nil:
			rep.Migrated = append(rep.Migrated, doc.ID)
			m.logger.Info().Str("legacy_id", doc.ID).Str("name", doc.Data.Name).Msg("legacy listing migrated")
		case errors.Is(err, domain.ErrConflict):
			rep.Skipped = append(rep.Skipped, doc.ID)
		case errors.Is(err, domain.ErrInvalidInput):
			rep.Invalid[doc.ID] = err.Error()
		default:
			return rep, err
		}
	}
	return rep, nil
}
