package chart

import (
	"context"

	"pgcledger/internal/core/id"
)

// Candidate is one step of an account lookup chain: an exact code, or the
// first postable account whose code starts with Code.
type Candidate struct {
	Code   string
	Prefix bool
}

// Exact builds an exact-code candidate.
func Exact(code string) Candidate { return Candidate{Code: code} }

// Prefix builds a code-prefix candidate.
func Prefix(code string) Candidate { return Candidate{Code: code, Prefix: true} }

func (c Candidate) String() string {
	if c.Prefix {
		return c.Code + "*"
	}
	return c.Code
}

// Repository persists accounts. A nil tenantID addresses the global
// template; a non-nil one addresses only that tenant's rows (no fallback,
// the two tiers are combined by Resolver).
type Repository interface {
	GetByID(ctx context.Context, accountID id.ID) (*Account, error)

	// FindByCode returns NotFound when (code, tenant) does not exist.
	FindByCode(ctx context.Context, tenantID *id.ID, code string) (*Account, error)

	// FindPostable returns the lowest-code postable account matching c.
	FindPostable(ctx context.Context, tenantID *id.ID, c Candidate) (*Account, error)

	// List returns the accounts of one tier ordered by code.
	List(ctx context.Context, tenantID *id.ID) ([]Account, error)

	// Children returns the accounts of every tier whose parent is one of
	// parentIDs. Tenant accounts may hang under template accounts.
	Children(ctx context.Context, parentIDs []id.ID) ([]Account, error)

	Count(ctx context.Context, tenantID *id.ID) (int, error)

	Create(ctx context.Context, acc *Account) error

	// CreateBatch inserts many accounts in one round trip.
	CreateBatch(ctx context.Context, accounts []Account) error

	// Update modifies an account with optimistic locking.
	Update(ctx context.Context, acc *Account) error

	// DeleteMany removes accounts; callers order IDs children first.
	DeleteMany(ctx context.Context, ids []id.ID) error

	// HasPostings reports whether any journal line targets one of ids.
	HasPostings(ctx context.Context, ids []id.ID) (bool, error)
}
