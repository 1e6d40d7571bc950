package parties

import (
	"context"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
)

// ListFilter narrows party listings.
type ListFilter struct {
	domain.ListFilter
	Kind Kind
}

// Repository persists parties. All methods are scoped to one tenant.
type Repository interface {
	GetByID(ctx context.Context, tenantID, partyID id.ID) (*Party, error)

	List(ctx context.Context, tenantID id.ID, filter ListFilter) (domain.ListResult[*Party], error)

	// NextSequence serializes writers on (tenant, parent code) for the rest
	// of the current transaction and returns MAX(sequence_number)+1, or 1.
	// The sequence follows the parent code, so a company copy of a template
	// account continues the numbering of the template account.
	NextSequence(ctx context.Context, tenantID id.ID, parentCode string) (int, error)

	// Create returns Duplicate when the sequence number or ledger code is taken.
	Create(ctx context.Context, p *Party) error

	Update(ctx context.Context, p *Party) error

	// LinkAccount records the shadow account of a party.
	LinkAccount(ctx context.Context, tenantID, partyID, accountID id.ID) error

	Delete(ctx context.Context, tenantID, partyID id.ID) error
}
