package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"nexus/internal/dashboard"
	"nexus/internal/domain"
	"nexus/internal/money"
)

type userDTO struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

type startupDTO struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	Founder                string          `json:"founder"`
	CoFounder              string          `json:"cofounder,omitempty"`
	Domain                 string          `json:"domain"`
	Description            string          `json:"description"`
	AskingInvestment       decimal.Decimal `json:"asking_investment"`
	AskingInvestmentLabel  string          `json:"asking_investment_display"`
	Equity                 decimal.Decimal `json:"equity"`
	PitchVideoURL          string          `json:"pitch_video_link,omitempty"`
	WebsiteURL             string          `json:"website_link,omitempty"`
	FoundedYear            int             `json:"founded_year,omitempty"`
	TeamSize               int             `json:"team_size,omitempty"`
	Location               string          `json:"location,omitempty"`
	OwnerID                string          `json:"owner_id"`
	PendingRequests        int             `json:"pending_requests"`
	ApprovedRequests       int             `json:"approved_requests"`
	TotalInvestment        decimal.Decimal `json:"total_investment"`
	TotalInvestmentDisplay string          `json:"total_investment_display"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

func toStartupDTO(s domain.Startup, loc string) startupDTO {
	return startupDTO{
		ID:                     s.ID,
		Name:                   s.Name,
		Founder:                s.Founder,
		CoFounder:              s.CoFounder,
		Domain:                 s.Domain,
		Description:            s.Description,
		AskingInvestment:       s.AskingInvestment,
		AskingInvestmentLabel:  money.Format(loc, s.AskingInvestment),
		Equity:                 s.Equity,
		PitchVideoURL:          s.PitchVideoURL,
		WebsiteURL:             s.WebsiteURL,
		FoundedYear:            s.FoundedYear,
		TeamSize:               s.TeamSize,
		Location:               s.Location,
		OwnerID:                s.OwnerID,
		PendingRequests:        s.PendingRequests,
		ApprovedRequests:       s.ApprovedRequests,
		TotalInvestment:        s.TotalInvestment,
		TotalInvestmentDisplay: money.Format(loc, s.TotalInvestment),
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

type listingDetailDTO struct {
	startupDTO
	AskingValuation        *decimal.Decimal `json:"asking_valuation"`
	AskingValuationDisplay string           `json:"asking_valuation_display"`
	FundingProgress        decimal.Decimal  `json:"funding_progress"`
}

func toListingDetailDTO(d *dashboard.Detail, loc string) listingDetailDTO {
	out := listingDetailDTO{
		startupDTO:             toStartupDTO(d.Startup, loc),
		AskingValuationDisplay: money.FormatValuation(loc, d.AskingValuation, d.HasValuation),
		FundingProgress:        d.FundingProgress,
	}
	if d.HasValuation {
		v := d.AskingValuation
		out.AskingValuation = &v
	}
	return out
}

type requestDTO struct {
	ID               string           `json:"id"`
	StartupID        string           `json:"startup_id"`
	StartupName      string           `json:"startup_name,omitempty"`
	InvestorID       string           `json:"investor_id"`
	InvestorName     string           `json:"investor_name"`
	Amount           decimal.Decimal  `json:"amount"`
	AmountDisplay    string           `json:"amount_display"`
	Equity           decimal.Decimal  `json:"equity"`
	Status           string           `json:"status"`
	Valuation        *decimal.Decimal `json:"valuation"`
	ValuationDisplay string           `json:"valuation_display"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func toRequestDTO(r domain.InvestmentRequest, startupName, loc string) requestDTO {
	val, ok := r.Valuation()
	out := requestDTO{
		ID:               r.ID,
		StartupID:        r.StartupID,
		StartupName:      startupName,
		InvestorID:       r.InvestorID,
		InvestorName:     r.InvestorName,
		Amount:           r.Amount,
		AmountDisplay:    money.Format(loc, r.Amount),
		Equity:           r.Equity,
		Status:           string(r.Status),
		ValuationDisplay: money.FormatValuation(loc, val, ok),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if ok {
		out.Valuation = &val
	}
	return out
}

func toOfferDTOs(offers []dashboard.Offer, loc string) []requestDTO {
	out := make([]requestDTO, 0, len(offers))
	for _, o := range offers {
		out = append(out, toRequestDTO(o.InvestmentRequest, o.StartupName, loc))
	}
	return out
}
