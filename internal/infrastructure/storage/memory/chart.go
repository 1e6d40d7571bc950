package memory

import (
	"context"
	"sort"
	"strings"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/chart"
)

// ChartRepo implements chart.Repository.
type ChartRepo struct{ s *Store }

var _ chart.Repository = (*ChartRepo)(nil)

// Chart returns the account repository.
func (s *Store) Chart() *ChartRepo { return &ChartRepo{s: s} }

func sameScope(acc *chart.Account, tenantID *id.ID) bool {
	if tenantID == nil {
		return acc.IsGlobal()
	}
	return acc.OwnedBy(*tenantID)
}

func (r *ChartRepo) GetByID(ctx context.Context, accountID id.ID) (*chart.Account, error) {
	var (
		acc chart.Account
		ok  bool
	)
	r.s.read(func(d *state) { acc, ok = d.accounts[accountID] })
	if !ok {
		return nil, apperror.NewNotFound("account", accountID.String())
	}
	return &acc, nil
}

func (r *ChartRepo) FindByCode(ctx context.Context, tenantID *id.ID, code string) (*chart.Account, error) {
	var found *chart.Account
	r.s.read(func(d *state) {
		for _, acc := range d.accounts {
			if acc.Code == code && sameScope(&acc, tenantID) {
				a := acc
				found = &a
				return
			}
		}
	})
	if found == nil {
		return nil, apperror.NewNotFound("account", code)
	}
	return found, nil
}

func (r *ChartRepo) FindPostable(ctx context.Context, tenantID *id.ID, c chart.Candidate) (*chart.Account, error) {
	var found *chart.Account
	r.s.read(func(d *state) {
		for _, acc := range d.accounts {
			if !acc.AcceptsPostings || !sameScope(&acc, tenantID) {
				continue
			}
			match := acc.Code == c.Code
			if c.Prefix {
				match = strings.HasPrefix(acc.Code, c.Code)
			}
			if match && (found == nil || acc.Code < found.Code) {
				a := acc
				found = &a
			}
		}
	})
	if found == nil {
		return nil, apperror.NewNotFound("account", c.String())
	}
	return found, nil
}

func (r *ChartRepo) List(ctx context.Context, tenantID *id.ID) ([]chart.Account, error) {
	var out []chart.Account
	r.s.read(func(d *state) {
		for _, acc := range d.accounts {
			if sameScope(&acc, tenantID) {
				out = append(out, acc)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *ChartRepo) Children(ctx context.Context, parentIDs []id.ID) ([]chart.Account, error) {
	parents := make(map[id.ID]struct{}, len(parentIDs))
	for _, parentID := range parentIDs {
		parents[parentID] = struct{}{}
	}
	var out []chart.Account
	r.s.read(func(d *state) {
		for _, acc := range d.accounts {
			if acc.ParentID == nil {
				continue
			}
			if _, ok := parents[*acc.ParentID]; ok {
				out = append(out, acc)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *ChartRepo) Count(ctx context.Context, tenantID *id.ID) (int, error) {
	accounts, _ := r.List(ctx, tenantID)
	return len(accounts), nil
}

func (r *ChartRepo) Create(ctx context.Context, acc *chart.Account) error {
	return r.s.write(func(d *state) error { return insertAccount(d, *acc) })
}

func insertAccount(d *state, acc chart.Account) error {
	for _, other := range d.accounts {
		if other.Code == acc.Code && sameScope(&other, acc.ScopeID()) {
			return apperror.NewDuplicate("account", "code", acc.Code)
		}
	}
	d.accounts[acc.ID] = acc
	return nil
}

func (r *ChartRepo) CreateBatch(ctx context.Context, accounts []chart.Account) error {
	return r.s.write(func(d *state) error {
		for _, acc := range accounts {
			if err := insertAccount(d, acc); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ChartRepo) Update(ctx context.Context, acc *chart.Account) error {
	return r.s.write(func(d *state) error {
		cur, ok := d.accounts[acc.ID]
		if !ok {
			return apperror.NewNotFound("account", acc.ID.String())
		}
		if cur.Version != acc.Version {
			return apperror.NewConcurrentModification("account", acc.ID.String())
		}
		for _, other := range d.accounts {
			if other.ID != acc.ID && other.Code == acc.Code && sameScope(&other, acc.ScopeID()) {
				return apperror.NewDuplicate("account", "code", acc.Code)
			}
		}
		acc.Version++
		d.accounts[acc.ID] = *acc
		return nil
	})
}

// DeleteMany follows the foreign keys of the schema: an account still
// referenced as a parent, by a party's parent account or by a journal line
// is HasDependents, while a party's shadow account link is cleared.
func (r *ChartRepo) DeleteMany(ctx context.Context, ids []id.ID) error {
	return r.s.write(func(d *state) error {
		for _, accountID := range ids {
			acc, ok := d.accounts[accountID]
			if !ok {
				continue
			}
			if referenced(d, accountID) {
				return apperror.NewHasDependents("account", acc.Code)
			}
			for partyID, p := range d.parties {
				if p.AccountID != nil && *p.AccountID == accountID {
					p.AccountID = nil
					d.parties[partyID] = p
				}
			}
			delete(d.accounts, accountID)
		}
		return nil
	})
}

func referenced(d *state, accountID id.ID) bool {
	for _, other := range d.accounts {
		if other.ParentID != nil && *other.ParentID == accountID {
			return true
		}
	}
	for _, p := range d.parties {
		if p.ParentAccountID == accountID {
			return true
		}
	}
	for _, e := range d.entries {
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				return true
			}
		}
	}
	return false
}

func (r *ChartRepo) HasPostings(ctx context.Context, ids []id.ID) (bool, error) {
	set := make(map[id.ID]struct{}, len(ids))
	for _, accountID := range ids {
		set[accountID] = struct{}{}
	}
	found := false
	r.s.read(func(d *state) {
		for _, e := range d.entries {
			for _, l := range e.Lines {
				if _, ok := set[l.AccountID]; ok {
					found = true
					return
				}
			}
		}
	})
	return found, nil
}
