package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"nexus/internal/domain"
)

func createListing(t *testing.T, app *App, ownerEmail string) string {
	t.Helper()
	sess := login(t, app, ownerEmail, "startup")
	rec := call(app.CreateStartup, http.MethodPost, "/v1/startups", map[string]any{
		"name":              "EcoSolutions",
		"founder":           "Asha Rao",
		"domain":            "Sustainable Energy",
		"asking_investment": "5000000",
		"equity":            "10",
	}, sess, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create listing status = %d body %s", rec.Code, rec.Body.String())
	}
	var s startupDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &s)
	return s.ID
}

func TestOfferLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	ownerEmail := "owner@nexus.test"
	startupID := createListing(t, app, ownerEmail)

	investor := login(t, app, "investor@nexus.test", "investor")
	rec := call(app.SubmitRequest, http.MethodPost, "/v1/startups/x/requests", map[string]any{
		"amount": "1000000",
		"equity": "5",
	}, investor, map[string]string{"id": startupID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d body %s", rec.Code, rec.Body.String())
	}
	var created requestDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	if created.Status != "pending" || created.Valuation == nil || created.ValuationDisplay != "20,000,000" {
		t.Fatalf("unexpected created request %+v", created)
	}

	_, ownerSess, err := app.Identity.Login(context.Background(), ownerEmail, "secret123")
	if err != nil {
		t.Fatalf("owner login: %v", err)
	}

	// investors cannot decide
	rec = call(app.DecideRequest, http.MethodPost, "/", map[string]string{"status": "approved"}, investor, map[string]string{"id": created.ID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("investor decide status = %d", rec.Code)
	}

	rec = call(app.DecideRequest, http.MethodPost, "/", map[string]string{"status": "accepted"}, ownerSess, map[string]string{"id": created.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("decide status = %d body %s", rec.Code, rec.Body.String())
	}
	var decided requestDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &decided)
	if decided.Status != "approved" {
		t.Fatalf("status = %q, want approved", decided.Status)
	}

	rec = call(app.DecideRequest, http.MethodPost, "/", map[string]string{"status": "rejected"}, ownerSess, map[string]string{"id": created.ID})
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "illegal_transition" {
		t.Fatalf("second decide status = %d body %s", rec.Code, rec.Body.String())
	}

	rec = call(app.GetStartup, http.MethodGet, "/", nil, investor, map[string]string{"id": startupID})
	var detail listingDetailDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &detail)
	if detail.ApprovedRequests != 1 || !detail.TotalInvestment.Equal(created.Amount) {
		t.Fatalf("detail aggregates = %+v", detail.startupDTO)
	}
	if detail.FundingProgress.String() != "20" {
		t.Fatalf("funding progress = %s, want 20", detail.FundingProgress)
	}

	rec = call(app.InvestorPortfolio, http.MethodGet, "/", nil, investor, nil)
	var p portfolioDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &p)
	if len(p.Approved) != 1 || p.Approved[0].StartupName != "EcoSolutions" {
		t.Fatalf("portfolio = %+v", p)
	}

	stranger := login(t, app, "stranger@nexus.test", "investor")
	rec = call(app.GetRequest, http.MethodGet, "/", nil, stranger, map[string]string{"id": created.ID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("stranger read status = %d", rec.Code)
	}
}

func TestSubmitRejectsBadTerms(t *testing.T) {
	app := newTestApp(t)
	startupID := createListing(t, app, "owner@nexus.test")
	investor := login(t, app, "investor@nexus.test", "investor")

	cases := []struct {
		name string
		body map[string]any
		code int
	}{
		{"missing amount", map[string]any{"equity": "5"}, http.StatusBadRequest},
		{"zero amount", map[string]any{"amount": "0", "equity": "5"}, http.StatusBadRequest},
		{"equity above 100", map[string]any{"amount": "100", "equity": "101"}, http.StatusBadRequest},
		{"amount exponent too large", map[string]any{"amount": "1e5000000", "equity": "5"}, http.StatusBadRequest},
		{"equity exponent too small", map[string]any{"amount": "100", "equity": "1e-5000000"}, http.StatusBadRequest},
		{"too many digits", map[string]any{"amount": "1234567890123456789012345678901", "equity": "5"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := call(app.SubmitRequest, http.MethodPost, "/", tc.body, investor, map[string]string{"id": startupID})
		if rec.Code != tc.code {
			t.Fatalf("%s: status = %d, want %d", tc.name, rec.Code, tc.code)
		}
	}

	rec := call(app.SubmitRequest, http.MethodPost, "/", map[string]any{"amount": "100", "equity": "5"}, investor, map[string]string{"id": "missing"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing listing status = %d", rec.Code)
	}
}

func TestNotificationsStatusFilter(t *testing.T) {
	app := newTestApp(t)
	owner := login(t, app, "owner@nexus.test", "startup")
	rec := call(app.Notifications, http.MethodGet, "/v1/notifications?status=bogus", nil, owner, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus status filter = %d", rec.Code)
	}
	rec = call(app.Notifications, http.MethodGet, "/v1/notifications?status=pending", nil, owner, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Notifications []requestDTO `json:"notifications"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Notifications == nil || len(body.Notifications) != 0 {
		t.Fatalf("expected empty list, got %+v", body.Notifications)
	}
}

func TestValuationCalculator(t *testing.T) {
	app := newTestApp(t)
	cases := []struct {
		query   string
		code    int
		display string
	}{
		{"amount=3000000&equity=10", http.StatusOK, "30,000,000"},
		{"amount=3000000&equity=0", http.StatusOK, "0"},
		{"amount=abc&equity=10", http.StatusBadRequest, ""},
		{"amount=1&equity=1e-5000000", http.StatusBadRequest, ""},
		{"amount=1e5000000&equity=10", http.StatusBadRequest, ""},
		{"amount=2500000.5&equity=12.5", http.StatusOK, "20,000,004"},
	}
	for _, tc := range cases {
		rec := call(app.Valuation, http.MethodGet, "/v1/valuation?"+tc.query, nil, nil, nil)
		if rec.Code != tc.code {
			t.Fatalf("%s: status = %d, want %d", tc.query, rec.Code, tc.code)
		}
		if tc.code != http.StatusOK {
			continue
		}
		var body map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body["valuation_display"] != tc.display {
			t.Fatalf("%s: display = %v, want %s", tc.query, body["valuation_display"], tc.display)
		}
	}
}

func TestFailMapsDomainErrors(t *testing.T) {
	app := newTestApp(t)
	cases := []struct {
		err  error
		code int
		name string
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("wrap: %w", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{domain.ErrIllegalTransition, http.StatusConflict, "illegal_transition"},
		{domain.ErrEmailTaken, http.StatusConflict, "conflict"},
		{domain.ErrInvalidInput, http.StatusBadRequest, "bad_request"},
		{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{fmt.Errorf("%w: startups/s1: bad equity", domain.ErrCorruptRecord), http.StatusInternalServerError, "corrupt_record"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		app.fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		if rec.Code != tc.code || errorCode(t, rec) != tc.name {
			t.Fatalf("%v: got %d %s", tc.err, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	app.fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), context.Canceled)
	if rec.Body.Len() != 0 {
		t.Fatalf("cancelled request wrote %q", rec.Body.String())
	}
}

func TestOfferCarriesRenamedInvestor(t *testing.T) {
	app := newTestApp(t)
	startupID := createListing(t, app, "owner@nexus.test")
	investor := login(t, app, "inv@nexus.test", "investor")

	rec := call(app.UpdateMe, http.MethodPatch, "/v1/me", map[string]string{"display_name": "Priya Capital"}, investor, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status = %d body %s", rec.Code, rec.Body.String())
	}

	// The session still holds the name from login.
	rec = call(app.SubmitRequest, http.MethodPost, "/", map[string]any{"amount": "100000", "equity": "1"}, investor, map[string]string{"id": startupID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d body %s", rec.Code, rec.Body.String())
	}
	var offer requestDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &offer)
	if offer.InvestorName != "Priya Capital" {
		t.Fatalf("investor_name = %q, want %q", offer.InvestorName, "Priya Capital")
	}
}
