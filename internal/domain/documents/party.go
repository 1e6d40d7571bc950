package documents

import (
	"context"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/domain/parties"
)

// PartyAccounts resolves the shadow account of a customer or supplier.
type PartyAccounts interface {
	GetByID(ctx context.Context, tenantID, partyID id.ID) (*parties.Party, error)
	AccountFor(ctx context.Context, tenantID, partyID id.ID) (*chart.Account, error)
}

// ResolvePartyAccount returns the shadow account of partyID. A missing
// account is not an error: the returned reason explains why the posting
// must be skipped.
func ResolvePartyAccount(ctx context.Context, p PartyAccounts, tenantID, partyID id.ID) (*chart.Account, string, error) {
	acc, err := p.AccountFor(ctx, tenantID, partyID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.CodePostingAccountMissing + ": party has no ledger account", nil
		}
		return nil, "", err
	}
	if !acc.AcceptsPostings {
		return nil, apperror.CodePostingAccountMissing + ": party account " + acc.Code + " does not accept postings", nil
	}
	return acc, "", nil
}

// RequireParty checks that partyID exists and has the expected kind.
func RequireParty(ctx context.Context, p PartyAccounts, tenantID, partyID id.ID, kind parties.Kind) (*parties.Party, error) {
	party, err := p.GetByID(ctx, tenantID, partyID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewValidation("unknown party").WithDetail("partyId", partyID)
		}
		return nil, err
	}
	if party.Kind != kind {
		return nil, apperror.NewValidation("party has the wrong kind").
			WithDetail("partyId", partyID).
			WithDetail("expected", kind)
	}
	return party, nil
}
