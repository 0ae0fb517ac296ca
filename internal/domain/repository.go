package domain

import "context"

// UserRepository defines access methods for mirrored users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	UpdateUserProfile(ctx context.Context, id, displayName string) error
}

// StartupRepository defines persistence for listings.
type StartupRepository interface {
	CreateStartup(ctx context.Context, data NewStartup) (string, error)
	GetStartupByID(ctx context.Context, id string) (*Startup, error)
	GetStartupsByOwner(ctx context.Context, ownerID string) ([]Startup, error)
	GetStartupsByIDs(ctx context.Context, ids []string) ([]Startup, error)
	ListStartups(ctx context.Context) ([]Startup, error)
	UpdateStartup(ctx context.Context, id string, patch StartupPatch) error
	UpdateStartupAggregates(ctx context.Context, id string, agg Aggregates) error
}

// RequestRepository defines persistence for investment requests.
type RequestRepository interface {
	CreateRequest(ctx context.Context, data NewRequest) (string, error)
	GetRequestByID(ctx context.Context, id string) (*InvestmentRequest, error)
	GetRequestsByStartupIDs(ctx context.Context, ids []string) ([]InvestmentRequest, error)
	GetRequestsByInvestor(ctx context.Context, investorID string) ([]InvestmentRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status RequestStatus) error
}

// InvestmentRepository records approved offers.
type InvestmentRepository interface {
	CreateInvestment(ctx context.Context, inv Investment) (string, error)
}
