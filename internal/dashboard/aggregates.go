package dashboard

import (
	"sort"

	"github.com/shopspring/decimal"

	"nexus/internal/domain"
)

// ComputeAggregates derives the counters of every listing in startupIDs from
// the given requests. Listings without requests get zero aggregates and
// requests for other listings are ignored.
func ComputeAggregates(startupIDs []string, requests []domain.InvestmentRequest) map[string]domain.Aggregates {
	out := make(map[string]domain.Aggregates, len(startupIDs))
	for _, id := range startupIDs {
		out[id] = domain.Aggregates{TotalInvestment: decimal.Zero}
	}
	for _, req := range requests {
		agg, ok := out[req.StartupID]
		if !ok {
			continue
		}
		switch req.Status {
		case domain.RequestStatusPending:
			agg.PendingRequests++
		case domain.RequestStatusApproved:
			agg.ApprovedRequests++
			agg.TotalInvestment = agg.TotalInvestment.Add(req.Amount)
		}
		out[req.StartupID] = agg
	}
	return out
}

// FundingProgress is the raised share of the asking investment in percent.
func FundingProgress(s domain.Startup) decimal.Decimal {
	if !s.AskingInvestment.IsPositive() {
		return decimal.Zero
	}
	return s.TotalInvestment.Mul(decimal.NewFromInt(100)).Div(s.AskingInvestment).Round(2)
}

func sortRequestsByCreated(reqs []domain.InvestmentRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
}

func sortRequestsByUpdated(reqs []domain.InvestmentRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].UpdatedAt.After(reqs[j].UpdatedAt)
	})
}
