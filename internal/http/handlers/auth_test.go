package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"nexus/internal/adapter/repo"
	"nexus/internal/dashboard"
	"nexus/internal/identity"
	"nexus/internal/infra/credentials"
	"nexus/internal/listings"
	"nexus/internal/middleware"
	"nexus/internal/offers"
	"nexus/internal/storage"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	store := storage.NewMemory()
	logger := zerolog.Nop()
	users := repo.NewUserRepository(store)
	startups := repo.NewStartupRepository(store, logger)
	requests := repo.NewRequestRepository(store, logger)
	investments := repo.NewInvestmentRepository(store, logger)
	provider := identity.NewLocal(
		credentials.NewStore(store, bcrypt.MinCost),
		users,
		identity.NewMemorySessions(),
		identity.NewTokens("handler-secret"),
		time.Hour,
		logger,
	)
	return NewApp(
		provider,
		users,
		listings.NewService(startups, logger),
		offers.NewService(startups, requests, investments, users, nil, logger),
		dashboard.NewAssembler(startups, requests, logger),
		logger,
	)
}

func call(h http.HandlerFunc, method, path string, body any, sess *identity.Session, params map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	ctx := req.Context()
	if sess != nil {
		ctx = middleware.ContextWithSession(ctx, sess)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	rec := httptest.NewRecorder()
	h(rec, req.WithContext(ctx))
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error.Code
}

// login registers an account and returns its live session.
func login(t *testing.T, app *App, email, role string) *identity.Session {
	t.Helper()
	rec := call(app.Register, http.MethodPost, "/v1/auth/register", map[string]string{
		"email": email, "password": "secret123", "role": role,
	}, nil, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	token, sess, err := app.Identity.Login(context.Background(), email, "secret123")
	if err != nil || token == "" {
		t.Fatalf("login %s: %v", email, err)
	}
	return sess
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)
	cases := []struct {
		name string
		body map[string]string
		code int
	}{
		{"missing email", map[string]string{"password": "secret123", "role": "investor"}, http.StatusBadRequest},
		{"short password", map[string]string{"email": "a@b.io", "password": "123", "role": "investor"}, http.StatusBadRequest},
		{"unknown role", map[string]string{"email": "a@b.io", "password": "secret123", "role": "admin"}, http.StatusBadRequest},
		{"ok", map[string]string{"email": "a@b.io", "password": "secret123", "role": "startup"}, http.StatusCreated},
		{"duplicate", map[string]string{"email": "A@b.io", "password": "secret123", "role": "investor"}, http.StatusConflict},
	}
	for _, tc := range cases {
		rec := call(app.Register, http.MethodPost, "/v1/auth/register", tc.body, nil, nil)
		if rec.Code != tc.code {
			t.Fatalf("%s: status = %d, want %d (%s)", tc.name, rec.Code, tc.code, rec.Body.String())
		}
	}
}

func TestLoginReturnsToken(t *testing.T) {
	app := newTestApp(t)
	login(t, app, "founder@nexus.test", "startup")

	rec := call(app.Login, http.MethodPost, "/v1/auth/login", map[string]string{
		"email": "founder@nexus.test", "password": "secret123",
	}, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" || resp.User.Role != "startup" {
		t.Fatalf("unexpected login response %+v", resp)
	}

	bad := call(app.Login, http.MethodPost, "/v1/auth/login", map[string]string{
		"email": "founder@nexus.test", "password": "wrong-pass",
	}, nil, nil)
	if bad.Code != http.StatusUnauthorized || errorCode(t, bad) != "unauthorized" {
		t.Fatalf("bad login status = %d body %s", bad.Code, bad.Body.String())
	}
}

func TestPasswordResetDoesNotRevealAccounts(t *testing.T) {
	app := newTestApp(t)
	login(t, app, "known@nexus.test", "investor")
	for _, email := range []string{"known@nexus.test", "unknown@nexus.test"} {
		rec := call(app.PasswordReset, http.MethodPost, "/v1/auth/password-reset", map[string]string{"email": email}, nil, nil)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("%s: status = %d", email, rec.Code)
		}
	}
}

func TestMeAndUpdateMe(t *testing.T) {
	app := newTestApp(t)
	sess := login(t, app, "ravi@nexus.test", "investor")

	rec := call(app.Me, http.MethodGet, "/v1/me", nil, sess, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}
	var me userDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &me)
	if me.DisplayName != "ravi" {
		t.Fatalf("display name = %q, want email local part", me.DisplayName)
	}

	rec = call(app.UpdateMe, http.MethodPatch, "/v1/me", map[string]string{"display_name": "Ravi Kumar"}, sess, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body %s", rec.Code, rec.Body.String())
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &me)
	if me.DisplayName != "Ravi Kumar" {
		t.Fatalf("display name = %q after update", me.DisplayName)
	}

	if rec := call(app.Me, http.MethodGet, "/v1/me", nil, nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without session status = %d", rec.Code)
	}
}
