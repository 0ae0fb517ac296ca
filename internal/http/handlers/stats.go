package handlers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"nexus/internal/domain"
	"nexus/internal/money"
)

func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	st, err := a.Dashboard.Stats(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"startups":                 st.Startups,
		"deals":                    st.Deals,
		"total_investment":         st.TotalInvestment,
		"total_investment_display": money.Format(locale(r), st.TotalInvestment),
	})
}

// Valuation is the public calculator: amount / (equity / 100).
func (a *App) Valuation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := decimal.NewFromString(strings.TrimSpace(q.Get("amount")))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "amount must be a number")
		return
	}
	equity, err := decimal.NewFromString(strings.TrimSpace(q.Get("equity")))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "equity must be a number")
		return
	}
	if err := domain.ValidateDecimal("amount", amount); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "amount is out of range")
		return
	}
	if err := domain.ValidateDecimal("equity", equity); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "equity is out of range")
		return
	}
	val, ok := domain.Valuation(amount, equity)
	var body = map[string]any{
		"valuation":         nil,
		"valuation_display": money.FormatValuation(locale(r), val, ok),
	}
	if ok {
		body["valuation"] = val
	}
	a.json(w, http.StatusOK, body)
}
