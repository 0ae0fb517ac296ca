// Package credentials keeps password hashes for the local identity provider.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"nexus/internal/domain"
	"nexus/internal/storage"
)

// Record is a stored credential keyed by normalised email.
type Record struct {
	Email        string
	UserID       string
	PasswordHash string
}

type Store struct {
	store storage.Store
	cost  int
}

// NewStore creates a credential store. A zero cost uses bcrypt.DefaultCost.
func NewStore(store storage.Store, cost int) *Store {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Store{store: store, cost: cost}
}

// NormalizeEmail lowercases and trims an email so lookups are case insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create hashes password and stores it for email. A taken email yields
// domain.ErrEmailTaken.
func (s *Store) Create(ctx context.Context, email, userID, password string) error {
	email = NormalizeEmail(email)
	if email == "" || userID == "" {
		return fmt.Errorf("%w: email and user id are required", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	err = s.store.InsertWithID(ctx, storage.CollectionCredentials, email, map[string]any{
		"userId":       userID,
		"passwordHash": string(hash),
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrAlreadyExists):
		return domain.ErrEmailTaken
	default:
		return wrap(err)
	}
}

// SetPassword replaces the hash stored for email.
func (s *Store) SetPassword(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	err = s.store.Update(ctx, storage.CollectionCredentials, NormalizeEmail(email), map[string]any{
		"passwordHash": string(hash),
	})
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return wrap(err)
	}
	return nil
}

// Lookup returns the credential of email or domain.ErrNotFound.
func (s *Store) Lookup(ctx context.Context, email string) (*Record, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, domain.ErrNotFound
	}
	doc, err := s.store.Get(ctx, storage.CollectionCredentials, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, wrap(err)
	}
	userID, _ := doc.Fields["userId"].(string)
	hash, _ := doc.Fields["passwordHash"].(string)
	if userID == "" || hash == "" {
		return nil, fmt.Errorf("%w: credentials/%s", domain.ErrCorruptRecord, email)
	}
	return &Record{Email: email, UserID: userID, PasswordHash: hash}, nil
}

// Verify checks password against the stored hash. Unknown emails and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (s *Store) Verify(ctx context.Context, email, password string) (*Record, error) {
	rec, err := s.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return rec, nil
}

func wrap(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
