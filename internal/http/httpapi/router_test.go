package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"nexus/internal/adapter/repo"
	"nexus/internal/dashboard"
	"nexus/internal/http/handlers"
	"nexus/internal/identity"
	"nexus/internal/infra"
	"nexus/internal/infra/credentials"
	"nexus/internal/listings"
	"nexus/internal/offers"
	"nexus/internal/storage"
)

func newServer(t *testing.T) (*httptest.Server, *infra.Metrics) {
	t.Helper()
	store := storage.NewMemory()
	logger := zerolog.Nop()
	metrics := infra.NewMetrics()
	users := repo.NewUserRepository(store)
	startups := repo.NewStartupRepository(store, logger)
	requests := repo.NewRequestRepository(store, logger)
	provider := identity.NewLocal(
		credentials.NewStore(store, bcrypt.MinCost),
		users,
		identity.NewMemorySessions(),
		identity.NewTokens("router-secret"),
		time.Hour,
		logger,
	)
	app := handlers.NewApp(
		provider,
		users,
		listings.NewService(startups, logger),
		offers.NewService(startups, requests, repo.NewInvestmentRepository(store, logger), users, metrics, logger),
		dashboard.NewAssembler(startups, requests, logger),
		logger,
	)
	srv := httptest.NewServer(NewRouter(app, Options{
		AllowedOrigins:  []string{"*"},
		RateLimitPerMin: 1000,
		DefaultLocale:   "en",
		Observer:        metrics,
		MetricsHandler:  metrics.Handler(),
	}))
	t.Cleanup(srv.Close)
	return srv, metrics
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func signup(t *testing.T, srv *httptest.Server, email, role string) string {
	t.Helper()
	resp, _ := do(t, srv, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email": email, "password": "secret123", "role": role,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: %d", email, resp.StatusCode)
	}
	resp, body := do(t, srv, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": email, "password": "secret123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: %d", email, resp.StatusCode)
	}
	token, _ := body["token"].(string)
	return token
}

func TestPublicRoutes(t *testing.T) {
	srv, _ := newServer(t)
	for _, path := range []string{"/v1/healthz", "/v1/stats", "/v1/openapi.json", "/v1/valuation?amount=100&equity=10"} {
		resp, _ := do(t, srv, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s = %d", path, resp.StatusCode)
		}
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	srv, _ := newServer(t)
	for _, path := range []string{"/v1/me", "/v1/startups", "/v1/dashboard/startup", "/v1/notifications"} {
		resp, _ := do(t, srv, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("GET %s without token = %d", path, resp.StatusCode)
		}
	}
	resp, _ := do(t, srv, http.MethodGet, "/v1/me", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token = %d", resp.StatusCode)
	}
}

func TestRoleGating(t *testing.T) {
	srv, _ := newServer(t)
	investor := signup(t, srv, "inv@nexus.test", "investor")
	founder := signup(t, srv, "founder@nexus.test", "startup")

	resp, _ := do(t, srv, http.MethodGet, "/v1/dashboard/startup", investor, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("investor on owner dashboard = %d", resp.StatusCode)
	}
	resp, _ = do(t, srv, http.MethodGet, "/v1/dashboard/investor", founder, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("founder on portfolio = %d", resp.StatusCode)
	}
	resp, _ = do(t, srv, http.MethodPost, "/v1/startups", investor, map[string]any{
		"name": "X", "founder": "Y", "domain": "Z", "asking_investment": "10", "equity": "1",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("investor creating listing = %d", resp.StatusCode)
	}
}

func TestOfferFlowAndLogout(t *testing.T) {
	srv, _ := newServer(t)
	investor := signup(t, srv, "inv@nexus.test", "investor")
	founder := signup(t, srv, "founder@nexus.test", "startup")

	resp, listing := do(t, srv, http.MethodPost, "/v1/startups", founder, map[string]any{
		"name":              "MediTrack",
		"founder":           "Neha",
		"domain":            "Healthcare",
		"asking_investment": "2000000",
		"equity":            "8",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create listing = %d", resp.StatusCode)
	}
	startupID, _ := listing["id"].(string)

	resp, offer := do(t, srv, http.MethodPost, "/v1/startups/"+startupID+"/requests", investor, map[string]any{
		"amount": "500000", "equity": "4",
	})
	if resp.StatusCode != http.StatusCreated || offer["status"] != "pending" {
		t.Fatalf("submit = %d %v", resp.StatusCode, offer)
	}
	requestID, _ := offer["id"].(string)

	resp, notes := do(t, srv, http.MethodGet, "/v1/notifications?status=pending", founder, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("notifications = %d", resp.StatusCode)
	}
	if list, _ := notes["notifications"].([]any); len(list) != 1 {
		t.Fatalf("notifications = %v", notes)
	}

	resp, decided := do(t, srv, http.MethodPost, "/v1/requests/"+requestID+"/decision", founder, map[string]string{"status": "rejected"})
	if resp.StatusCode != http.StatusOK || decided["status"] != "rejected" {
		t.Fatalf("decide = %d %v", resp.StatusCode, decided)
	}
	resp, _ = do(t, srv, http.MethodPost, "/v1/requests/"+requestID+"/decision", founder, map[string]string{"status": "approved"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second decide = %d", resp.StatusCode)
	}

	resp, _ = do(t, srv, http.MethodPost, "/v1/auth/logout", investor, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout = %d", resp.StatusCode)
	}
	resp, _ = do(t, srv, http.MethodGet, "/v1/me", investor, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d", resp.StatusCode)
	}
}

func TestMetricsEndpointCountsOffers(t *testing.T) {
	srv, _ := newServer(t)
	do(t, srv, http.MethodGet, "/v1/healthz", "", nil)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), `route="/v1/healthz"`) {
		t.Fatalf("metrics output missing healthz route:\n%s", buf.String())
	}
}

func TestContentLanguageHeader(t *testing.T) {
	srv, _ := newServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/healthz", nil)
	req.Header.Set("Accept-Language", "hi-IN,hi;q=0.9")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Content-Language"); got != "hi" {
		t.Fatalf("Content-Language = %q, want hi", got)
	}
}
