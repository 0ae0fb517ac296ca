// Package identity authenticates users and manages their sessions.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nexus/internal/domain"
	"nexus/internal/infra/credentials"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Identity is an authenticated account.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
	Role        domain.UserRole
}

// Provider is the identity capability used by the HTTP layer.
type Provider interface {
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
	Register(ctx context.Context, email, password string, role domain.UserRole, displayName string) (*Identity, error)
	// ResetPassword accepts a reset request. It never reports whether the
	// email is known.
	ResetPassword(ctx context.Context, email string) error
	CurrentSession(ctx context.Context, token string) (*Session, error)
	Login(ctx context.Context, email, password string) (string, *Session, error)
	Logout(ctx context.Context, token string) error
}

// Local is a Provider backed by the credentials collection.
type Local struct {
	creds    *credentials.Store
	users    domain.UserRepository
	sessions SessionStore
	tokens   *Tokens
	ttl      time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func NewLocal(creds *credentials.Store, users domain.UserRepository, sessions SessionStore, tokens *Tokens, ttl time.Duration, logger zerolog.Logger) *Local {
	return &Local{
		creds:    creds,
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

func (l *Local) Register(ctx context.Context, email, password string, role domain.UserRole, displayName string) (*Identity, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	email = credentials.NormalizeEmail(addr.Address)
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must have at least %d characters", domain.ErrInvalidInput, MinPasswordLength)
	}
	if role, err = domain.ParseUserRole(string(role)); err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = email[:strings.IndexByte(email, '@')]
	}

	ident := &Identity{UserID: uuid.NewString(), Email: email, DisplayName: displayName, Role: role}
	err = l.creds.Create(ctx, email, ident.UserID, password)
	if errors.Is(err, domain.ErrEmailTaken) {
		ident.UserID, err = l.reclaim(ctx, email, password)
	}
	if err != nil {
		return nil, err
	}
	err = l.users.CreateUser(ctx, domain.User{
		ID:          ident.UserID,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		Role:        ident.Role,
	})
	if err != nil {
		l.logger.Error().Err(err).Str("user_id", ident.UserID).Msg("mirror user failed")
		return nil, err
	}
	l.logger.Info().Str("user_id", ident.UserID).Str("role", string(role)).Msg("user registered")
	return ident, nil
}

// reclaim takes over a credential whose user record was never written, which
// happens when a registration failed halfway. It returns the credential's
// user id, or domain.ErrEmailTaken when the account is complete.
func (l *Local) reclaim(ctx context.Context, email, password string) (string, error) {
	rec, err := l.creds.Lookup(ctx, email)
	if err != nil {
		return "", err
	}
	_, err = l.users.GetUserByID(ctx, rec.UserID)
	switch {
	case err == nil:
		return "", domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrNotFound):
		return "", err
	}
	if err := l.creds.SetPassword(ctx, email, password); err != nil {
		return "", err
	}
	l.logger.Warn().Str("user_id", rec.UserID).Msg("reclaimed credentials without user record")
	return rec.UserID, nil
}

func (l *Local) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	rec, err := l.creds.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	user, err := l.users.GetUserByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.logger.Warn().Str("user_id", rec.UserID).Msg("credentials without user record")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return &Identity{UserID: user.ID, Email: rec.Email, DisplayName: user.DisplayName, Role: user.Role}, nil
}

// Login authenticates and opens a session, returning its signed token.
func (l *Local) Login(ctx context.Context, email, password string) (string, *Session, error) {
	ident, err := l.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	now := l.now().UTC()
	sess := &Session{
		ID:          uuid.NewString(),
		UserID:      ident.UserID,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		Role:        ident.Role,
		CreatedAt:   now,
		ExpiresAt:   now.Add(l.ttl),
	}
	token, err := l.tokens.Issue(sess)
	if err != nil {
		return "", nil, err
	}
	if err := l.sessions.Save(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}
	return token, sess, nil
}

// CurrentSession resolves a token to its live session.
func (l *Local) CurrentSession(ctx context.Context, token string) (*Session, error) {
	claims, err := l.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	sess, err := l.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if sess.UserID != claims.Subject || sess.Expired(l.now()) {
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}

// Logout deletes the session behind token.
func (l *Local) Logout(ctx context.Context, token string) error {
	claims, err := l.tokens.Parse(token)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return l.sessions.Delete(ctx, claims.ID)
}

func (l *Local) ResetPassword(ctx context.Context, email string) error {
	email = credentials.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	_, err := l.creds.Lookup(ctx, email)
	switch {
	case err == nil:
		l.logger.Info().Str("email", email).Msg("password reset requested")
	case errors.Is(err, domain.ErrNotFound):
		l.logger.Info().Str("email", email).Msg("password reset requested for unknown email")
	default:
		return err
	}
	return nil
}

var _ Provider = (*Local)(nil)
