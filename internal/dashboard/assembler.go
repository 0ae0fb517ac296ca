// Package dashboard assembles the role-scoped views of listings and offers.
// Listing aggregates are recomputed from the requests on every read.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"nexus/internal/domain"
)

// Listing is a listing with its requests as seen by its owner.
type Listing struct {
	domain.Startup
	Requests        []domain.InvestmentRequest
	FundingProgress decimal.Decimal
}

// OwnerView is the startup owner dashboard.
type OwnerView struct {
	Listings     []Listing
	PendingTotal int
}

// Offer is an investor's request joined with its listing name.
type Offer struct {
	domain.InvestmentRequest
	StartupName string
}

// Portfolio groups an investor's offers by status.
type Portfolio struct {
	Pending       []Offer
	Approved      []Offer
	Rejected      []Offer
	TotalInvested decimal.Decimal
}

// Detail is a listing with fresh aggregates and its implied valuation.
type Detail struct {
	domain.Startup
	AskingValuation decimal.Decimal
	HasValuation    bool
	FundingProgress decimal.Decimal
}

// Assembler builds the dashboards.
type Assembler struct {
	startups domain.StartupRepository
	requests domain.RequestRepository
	logger   zerolog.Logger
}

func NewAssembler(startups domain.StartupRepository, requests domain.RequestRepository, logger zerolog.Logger) *Assembler {
	return &Assembler{startups: startups, requests: requests, logger: logger}
}

// OwnerDashboard returns the actor's listings with recomputed aggregates.
// An owner without listings gets an empty view and requests are not queried.
func (a *Assembler) OwnerDashboard(ctx context.Context, actor domain.Actor) (*OwnerView, error) {
	if !actor.IsStartup() {
		return nil, fmt.Errorf("%w: startup role required", domain.ErrForbidden)
	}
	owned, err := a.startups.GetStartupsByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	view := &OwnerView{Listings: []Listing{}}
	if len(owned) == 0 {
		return view, nil
	}

	ids := startupIDs(owned)
	reqs, err := a.requests.GetRequestsByStartupIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	aggs := ComputeAggregates(ids, reqs)
	byStartup := make(map[string][]domain.InvestmentRequest, len(owned))
	for _, r := range reqs {
		byStartup[r.StartupID] = append(byStartup[r.StartupID], r)
	}

	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	for _, s := range owned {
		s.Aggregates = aggs[s.ID]
		listReqs := byStartup[s.ID]
		if listReqs == nil {
			listReqs = []domain.InvestmentRequest{}
		}
		sortRequestsByCreated(listReqs)
		view.Listings = append(view.Listings, Listing{
			Startup:         s,
			Requests:        listReqs,
			FundingProgress: FundingProgress(s),
		})
		view.PendingTotal += s.PendingRequests
	}
	return view, nil
}

// InvestorPortfolio groups the actor's offers into status buckets.
func (a *Assembler) InvestorPortfolio(ctx context.Context, actor domain.Actor) (*Portfolio, error) {
	if !actor.IsInvestor() {
		return nil, fmt.Errorf("%w: investor role required", domain.ErrForbidden)
	}
	reqs, err := a.requests.GetRequestsByInvestor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	sortRequestsByCreated(reqs)
	names, err := a.startupNames(ctx, reqs)
	if err != nil {
		return nil, err
	}

	p := &Portfolio{Pending: []Offer{}, Approved: []Offer{}, Rejected: []Offer{}, TotalInvested: decimal.Zero}
	for _, r := range reqs {
		offer := Offer{InvestmentRequest: r, StartupName: names[r.StartupID]}
		switch r.Status {
		case domain.RequestStatusPending:
			p.Pending = append(p.Pending, offer)
		case domain.RequestStatusApproved:
			p.Approved = append(p.Approved, offer)
			p.TotalInvested = p.TotalInvested.Add(r.Amount)
		case domain.RequestStatusRejected:
			p.Rejected = append(p.Rejected, offer)
		}
	}
	return p, nil
}

// Notifications lists requests on the actor's listings, most recently
// changed first. An empty status keeps every request.
func (a *Assembler) Notifications(ctx context.Context, actor domain.Actor, status domain.RequestStatus) ([]Offer, error) {
	if !actor.IsStartup() {
		return nil, fmt.Errorf("%w: startup role required", domain.ErrForbidden)
	}
	owned, err := a.startups.GetStartupsByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	out := []Offer{}
	if len(owned) == 0 {
		return out, nil
	}
	names := make(map[string]string, len(owned))
	for _, s := range owned {
		names[s.ID] = s.Name
	}
	reqs, err := a.requests.GetRequestsByStartupIDs(ctx, startupIDs(owned))
	if err != nil {
		return nil, err
	}
	sortRequestsByUpdated(reqs)
	for _, r := range reqs {
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, Offer{InvestmentRequest: r, StartupName: names[r.StartupID]})
	}
	return out, nil
}

// Browse returns listings whose name, domain or founder contains query,
// ignoring case. Stored aggregate snapshots are returned as is.
func (a *Assembler) Browse(ctx context.Context, query string) ([]domain.Startup, error) {
	all, err := a.startups.ListStartups(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}
	out := make([]domain.Startup, 0, len(all))
	for _, s := range all {
		if strings.Contains(strings.ToLower(s.Name), q) ||
			strings.Contains(strings.ToLower(s.Domain), q) ||
			strings.Contains(strings.ToLower(s.Founder), q) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ListingDetail returns a listing with aggregates recomputed from its requests.
func (a *Assembler) ListingDetail(ctx context.Context, id string) (*Detail, error) {
	s, err := a.startups.GetStartupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	agg, err := a.Aggregates(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Aggregates = agg
	val, ok := domain.Valuation(s.AskingInvestment, s.Equity)
	return &Detail{
		Startup:         *s,
		AskingValuation: val,
		HasValuation:    ok,
		FundingProgress: FundingProgress(*s),
	}, nil
}

// Aggregates recomputes the counters of a single listing.
func (a *Assembler) Aggregates(ctx context.Context, startupID string) (domain.Aggregates, error) {
	reqs, err := a.requests.GetRequestsByStartupIDs(ctx, []string{startupID})
	if err != nil {
		return domain.Aggregates{}, err
	}
	return ComputeAggregates([]string{startupID}, reqs)[startupID], nil
}

func (a *Assembler) startupNames(ctx context.Context, reqs []domain.InvestmentRequest) (map[string]string, error) {
	seen := map[string]struct{}{}
	var ids []string
	for _, r := range reqs {
		if _, ok := seen[r.StartupID]; ok {
			continue
		}
		seen[r.StartupID] = struct{}{}
		ids = append(ids, r.StartupID)
	}
	listings, err := a.startups.GetStartupsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(listings))
	for _, s := range listings {
		names[s.ID] = s.Name
	}
	return names, nil
}

func startupIDs(listings []domain.Startup) []string {
	ids := make([]string, len(listings))
	for i, s := range listings {
		ids[i] = s.ID
	}
	return ids
}

// MarketStats summarises the marketplace from stored listing snapshots.
type MarketStats struct {
	Startups        int
	Deals           int
	TotalInvestment decimal.Decimal
}

func (a *Assembler) Stats(ctx context.Context) (*MarketStats, error) {
	all, err := a.startups.ListStartups(ctx)
	if err != nil {
		return nil, err
	}
	st := &MarketStats{Startups: len(all), TotalInvestment: decimal.Zero}
	for _, s := range all {
		st.Deals += s.ApprovedRequests
		st.TotalInvestment = st.TotalInvestment.Add(s.TotalInvestment)
	}
	return st, nil
}
