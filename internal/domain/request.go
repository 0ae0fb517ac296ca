package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus enumerates investment request lifecycle states.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// ParseRequestStatus normalises a stored or submitted status. "accepted" is
// an older spelling of approved.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return RequestStatusPending, nil
	case "approved", "accepted":
		return RequestStatusApproved, nil
	case "rejected":
		return RequestStatusRejected, nil
	default:
		return "", fmt.Errorf("%w: unknown request status %q", ErrInvalidInput, s)
	}
}

// IsTerminal reports whether no transition leaves the status.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// CanTransitionTo reports whether next is reachable from s.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return s == RequestStatusPending && next.IsTerminal()
}

// InvestmentRequest is an investor's offer against a listing.
type InvestmentRequest struct {
	ID           string
	StartupID    string
	InvestorID   string
	InvestorName string
	Amount       decimal.Decimal
	Equity       decimal.Decimal
	Status       RequestStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Valuation returns the implied company valuation of the offer terms.
func (r InvestmentRequest) Valuation() (decimal.Decimal, bool) {
	return Valuation(r.Amount, r.Equity)
}

// NewRequest carries the caller supplied fields of an offer. Status is not
// part of it: new requests are always pending.
type NewRequest struct {
	StartupID    string
	InvestorID   string
	InvestorName string
	Amount       decimal.Decimal
	Equity       decimal.Decimal
}

// Validate checks offer terms.
func (n NewRequest) Validate() error {
	if strings.TrimSpace(n.StartupID) == "" {
		return fmt.Errorf("%w: startup id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(n.InvestorID) == "" {
		return fmt.Errorf("%w: investor id is required", ErrInvalidInput)
	}
	if err := ValidateAmount(n.Amount); err != nil {
		return err
	}
	return ValidateEquity(n.Equity)
}

// Investment records a completed (approved) offer.
type Investment struct {
	ID         string
	RequestID  string
	StartupID  string
	InvestorID string
	Amount     decimal.Decimal
	Equity     decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
