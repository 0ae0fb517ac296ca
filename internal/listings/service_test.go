package listings

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus/internal/adapter/repo"
	"nexus/internal/domain"
	"nexus/internal/storage"
)

func TestCreateAndUpdateOwnership(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repo.NewStartupRepository(storage.NewMemory(), zerolog.Nop()), zerolog.Nop())
	owner := domain.Actor{ID: "owner-1", Role: domain.UserRoleStartup}
	data := domain.NewStartup{
		Name:             "MediTrack",
		Founder:          "Dev",
		Domain:           "Healthcare",
		AskingInvestment: decimal.NewFromInt(2_000_000),
		Equity:           decimal.NewFromInt(8),
		OwnerID:          "spoofed",
	}

	_, err := svc.Create(ctx, domain.Actor{ID: "inv", Role: domain.UserRoleInvestor}, "", data)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	s, err := svc.Create(ctx, owner, "dev@example.com", data)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", s.OwnerID, "owner comes from the actor")
	assert.Equal(t, "dev@example.com", s.OwnerEmail)

	name := "MediTrack Pro"
	_, err = svc.Update(ctx, domain.Actor{ID: "owner-2", Role: domain.UserRoleStartup}, s.ID, domain.StartupPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Update(ctx, owner, s.ID, domain.StartupPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	updated, err := svc.Update(ctx, owner, s.ID, domain.StartupPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "MediTrack Pro", updated.Name)

	_, err = svc.Update(ctx, owner, "missing", domain.StartupPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
