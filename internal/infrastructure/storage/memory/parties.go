package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/parties"
)

// PartyRepo implements parties.Repository.
type PartyRepo struct{ s *Store }

var _ parties.Repository = (*PartyRepo)(nil)

// Parties returns the party repository.
func (s *Store) Parties() *PartyRepo { return &PartyRepo{s: s} }

func (r *PartyRepo) GetByID(ctx context.Context, tenantID, partyID id.ID) (*parties.Party, error) {
	var (
		p  parties.Party
		ok bool
	)
	r.s.read(func(d *state) { p, ok = d.parties[partyID] })
	if !ok || p.TenantID != tenantID {
		return nil, apperror.NewNotFound("party", partyID.String())
	}
	return &p, nil
}

func (r *PartyRepo) List(ctx context.Context, tenantID id.ID, filter parties.ListFilter) (domain.ListResult[*parties.Party], error) {
	var all []*parties.Party
	search := strings.ToLower(filter.Search)
	r.s.read(func(d *state) {
		for _, p := range d.parties {
			if p.TenantID != tenantID || (filter.Kind != "" && p.Kind != filter.Kind) {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(p.LedgerCode, search) && !strings.Contains(strings.ToLower(p.TaxID), search) {
				continue
			}
			p := p
			all = append(all, &p)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].LedgerCode < all[j].LedgerCode })
	return page(all, filter.ListFilter), nil
}

func page[T any](all []T, f domain.ListFilter) domain.ListResult[T] {
	f = f.Normalize()
	res := domain.ListResult[T]{TotalCount: int64(len(all)), Limit: f.Limit, Offset: f.Offset, Items: []T{}}
	if f.Offset >= len(all) {
		return res
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	res.Items = all[f.Offset:end]
	return res
}

func (r *PartyRepo) NextSequence(ctx context.Context, tenantID id.ID, parentCode string) (int, error) {
	maxSeq := 0
	r.s.read(func(d *state) {
		for _, p := range d.parties {
			if p.TenantID != tenantID || p.SequenceNumber <= maxSeq {
				continue
			}
			if parent, ok := d.accounts[p.ParentAccountID]; ok && parent.Code == parentCode {
				maxSeq = p.SequenceNumber
			}
		}
	})
	return maxSeq + 1, nil
}

func (r *PartyRepo) Create(ctx context.Context, p *parties.Party) error {
	return r.s.write(func(d *state) error {
		for _, other := range d.parties {
			if other.TenantID != p.TenantID {
				continue
			}
			if other.ParentAccountID == p.ParentAccountID && other.SequenceNumber == p.SequenceNumber {
				return apperror.NewDuplicate("party", "sequence_number", p.LedgerCode)
			}
			if other.LedgerCode == p.LedgerCode {
				return apperror.NewDuplicate("party", "ledger_code", p.LedgerCode)
			}
		}
		d.parties[p.ID] = *p
		return nil
	})
}

func (r *PartyRepo) Update(ctx context.Context, p *parties.Party) error {
	return r.s.write(func(d *state) error {
		cur, ok := d.parties[p.ID]
		if !ok || cur.TenantID != p.TenantID {
			return apperror.NewNotFound("party", p.ID.String())
		}
		if cur.Version != p.Version {
			return apperror.NewConcurrentModification("party", p.ID.String())
		}
		p.Version++
		p.UpdatedAt = time.Now().UTC()
		d.parties[p.ID] = *p
		return nil
	})
}

func (r *PartyRepo) LinkAccount(ctx context.Context, tenantID, partyID, accountID id.ID) error {
	return r.s.write(func(d *state) error {
		p, ok := d.parties[partyID]
		if !ok || p.TenantID != tenantID {
			return apperror.NewNotFound("party", partyID.String())
		}
		p.AccountID = &accountID
		d.parties[partyID] = p
		return nil
	})
}

func (r *PartyRepo) Delete(ctx context.Context, tenantID, partyID id.ID) error {
	return r.s.write(func(d *state) error {
		p, ok := d.parties[partyID]
		if !ok || p.TenantID != tenantID {
			return apperror.NewNotFound("party", partyID.String())
		}
		delete(d.parties, partyID)
		return nil
	})
}
