package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Startup is a fundraising listing hosted by a startup-role user.
type Startup struct {
	ID               string
	Name             string
	Founder          string
	CoFounder        string
	Domain           string
	Description      string
	AskingInvestment decimal.Decimal
	Equity           decimal.Decimal
	PitchVideoURL    string
	WebsiteURL       string
	FoundedYear      int
	TeamSize         int
	Location         string
	OwnerID          string
	OwnerEmail       string
	Aggregates
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Aggregates are the derived request counters of a listing.
type Aggregates struct {
	PendingRequests  int
	ApprovedRequests int
	TotalInvestment  decimal.Decimal
}

// NewStartup carries the caller supplied fields of a listing.
type NewStartup struct {
	Name             string
	Founder          string
	CoFounder        string
	Domain           string
	Description      string
	AskingInvestment decimal.Decimal
	Equity           decimal.Decimal
	PitchVideoURL    string
	WebsiteURL       string
	FoundedYear      int
	TeamSize         int
	Location         string
	OwnerID          string
	OwnerEmail       string
}

// Validate checks the listing invariants enforced on create.
func (n NewStartup) Validate() error {
	if strings.TrimSpace(n.OwnerID) == "" {
		return fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := ValidateDecimal("asking investment", n.AskingInvestment); err != nil {
		return err
	}
	if !n.AskingInvestment.IsPositive() {
		return fmt.Errorf("%w: asking investment must be positive", ErrInvalidInput)
	}
	if err := ValidateEquity(n.Equity); err != nil {
		return err
	}
	if n.TeamSize < 0 {
		return fmt.Errorf("%w: team size must not be negative", ErrInvalidInput)
	}
	return nil
}

// StartupPatch updates descriptive listing fields. Nil fields are left untouched.
type StartupPatch struct {
	Name          *string
	Founder       *string
	CoFounder     *string
	Domain        *string
	Description   *string
	PitchVideoURL *string
	WebsiteURL    *string
	FoundedYear   *int
	TeamSize      *int
	Location      *string
}

// Empty reports whether the patch changes nothing.
func (p StartupPatch) Empty() bool {
	return p.Name == nil && p.Founder == nil && p.CoFounder == nil && p.Domain == nil &&
		p.Description == nil && p.PitchVideoURL == nil && p.WebsiteURL == nil &&
		p.FoundedYear == nil && p.TeamSize == nil && p.Location == nil
}

// Validate rejects patches that would break listing invariants.
func (p StartupPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	if p.TeamSize != nil && *p.TeamSize < 0 {
		return fmt.Errorf("%w: team size must not be negative", ErrInvalidInput)
	}
	return nil
}

// ValidateEquity requires a percentage in (0, 100].
func ValidateEquity(equity decimal.Decimal) error {
	if err := ValidateDecimal("equity", equity); err != nil {
		return err
	}
	if !equity.IsPositive() || equity.GreaterThan(hundred) {
		return fmt.Errorf("%w: equity must be in (0, 100]", ErrInvalidInput)
	}
	return nil
}
