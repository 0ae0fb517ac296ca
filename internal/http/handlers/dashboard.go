package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"nexus/internal/domain"
	"nexus/internal/money"
)

type ownerListingDTO struct {
	startupDTO
	FundingProgress decimal.Decimal `json:"funding_progress"`
	Requests        []requestDTO    `json:"requests"`
}

type ownerDashboardDTO struct {
	Listings     []ownerListingDTO `json:"listings"`
	PendingTotal int               `json:"pending_total"`
}

type portfolioDTO struct {
	Pending              []requestDTO    `json:"pending"`
	Approved             []requestDTO    `json:"approved"`
	Rejected             []requestDTO    `json:"rejected"`
	TotalInvested        decimal.Decimal `json:"total_invested"`
	TotalInvestedDisplay string          `json:"total_invested_display"`
}

func (a *App) OwnerDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	view, err := a.Dashboard.OwnerDashboard(r.Context(), actor)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	loc := locale(r)
	out := ownerDashboardDTO{Listings: make([]ownerListingDTO, 0, len(view.Listings)), PendingTotal: view.PendingTotal}
	for _, l := range view.Listings {
		reqs := make([]requestDTO, 0, len(l.Requests))
		for _, req := range l.Requests {
			reqs = append(reqs, toRequestDTO(req, l.Name, loc))
		}
		out.Listings = append(out.Listings, ownerListingDTO{
			startupDTO:      toStartupDTO(l.Startup, loc),
			FundingProgress: l.FundingProgress,
			Requests:        reqs,
		})
	}
	a.json(w, http.StatusOK, out)
}

func (a *App) InvestorPortfolio(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	p, err := a.Dashboard.InvestorPortfolio(r.Context(), actor)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	loc := locale(r)
	a.json(w, http.StatusOK, portfolioDTO{
		Pending:              toOfferDTOs(p.Pending, loc),
		Approved:             toOfferDTOs(p.Approved, loc),
		Rejected:             toOfferDTOs(p.Rejected, loc),
		TotalInvested:        p.TotalInvested,
		TotalInvestedDisplay: money.Format(loc, p.TotalInvested),
	})
}

func (a *App) Notifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var status domain.RequestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := domain.ParseRequestStatus(raw)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		status = parsed
	}
	items, err := a.Dashboard.Notifications(r.Context(), actor, status)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"notifications": toOfferDTOs(items, locale(r))})
}
