package repo

import (
	"context"
	"fmt"
	"strings"

	"nexus/internal/domain"
	"nexus/internal/storage"
)

// UserRepository implements domain.UserRepository over the document store.
type UserRepository struct {
	store storage.Store
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(store storage.Store) *UserRepository {
	return &UserRepository{store: store}
}

// CreateUser mirrors an identity provider account under the same id.
func (r *UserRepository) CreateUser(ctx context.Context, user domain.User) error {
	if strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if _, err := domain.ParseUserRole(string(user.Role)); err != nil {
		return err
	}
	return storeErr(r.store.InsertWithID(ctx, storage.CollectionUsers, user.ID, map[string]any{
		"email":       user.Email,
		"displayName": user.DisplayName,
		"role":        string(user.Role),
	}))
}

// GetUserByID fetches a mirrored user.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	doc, err := r.store.Get(ctx, storage.CollectionUsers, id)
	if err != nil {
		return nil, storeErr(err)
	}
	role, err := domain.ParseUserRole(stringField(doc.Fields, "role"))
	if err != nil {
		return nil, corrupt(storage.CollectionUsers, doc.ID, err)
	}
	return &domain.User{
		ID:          doc.ID,
		Email:       stringField(doc.Fields, "email"),
		DisplayName: stringField(doc.Fields, "displayName"),
		Role:        role,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

// UpdateUserProfile changes the display name. Role is never written here.
func (r *UserRepository) UpdateUserProfile(ctx context.Context, id, displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return fmt.Errorf("%w: display name is required", domain.ErrInvalidInput)
	}
	return storeErr(r.store.Update(ctx, storage.CollectionUsers, id, map[string]any{
		"displayName": displayName,
	}))
}

var _ domain.UserRepository = (*UserRepository)(nil)
