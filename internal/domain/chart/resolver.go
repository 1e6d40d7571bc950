package chart

import (
	"context"
	"strings"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
)

// GlobalChart is the read-only view of the shared PGC template.
type GlobalChart struct {
	repo Repository
}

// Find looks up a global account by exact code.
func (g GlobalChart) Find(ctx context.Context, code string) (*Account, error) {
	return g.repo.FindByCode(ctx, nil, code)
}

// FindPostable looks up a postable global account.
func (g GlobalChart) FindPostable(ctx context.Context, c Candidate) (*Account, error) {
	return g.repo.FindPostable(ctx, nil, c)
}

// List returns every global account ordered by code.
func (g GlobalChart) List(ctx context.Context) ([]Account, error) {
	return g.repo.List(ctx, nil)
}

// TenantChart is the view of one company's own accounts.
type TenantChart struct {
	repo     Repository
	tenantID id.ID
}

// Find looks up a tenant account by exact code.
func (t TenantChart) Find(ctx context.Context, code string) (*Account, error) {
	return t.repo.FindByCode(ctx, &t.tenantID, code)
}

// FindPostable looks up a postable tenant account.
func (t TenantChart) FindPostable(ctx context.Context, c Candidate) (*Account, error) {
	return t.repo.FindPostable(ctx, &t.tenantID, c)
}

// List returns every tenant account ordered by code.
func (t TenantChart) List(ctx context.Context) ([]Account, error) {
	return t.repo.List(ctx, &t.tenantID)
}

// Resolver combines both tiers: tenant rows first, then the template.
type Resolver struct {
	repo Repository
}

// NewResolver creates a two-tier resolver.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Global returns the template tier.
func (r *Resolver) Global() GlobalChart { return GlobalChart{repo: r.repo} }

// Tenant returns the tier owned by tenantID.
func (r *Resolver) Tenant(tenantID id.ID) TenantChart {
	return TenantChart{repo: r.repo, tenantID: tenantID}
}

// Resolve finds code for tenantID, falling back to the global template.
func (r *Resolver) Resolve(ctx context.Context, tenantID id.ID, code string) (*Account, error) {
	acc, err := r.Tenant(tenantID).Find(ctx, code)
	if err == nil {
		return acc, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}
	return r.Global().Find(ctx, code)
}

// ResolvePostable walks candidates in order; each candidate is tried
// against the tenant tier and then the template. The first hit wins.
func (r *Resolver) ResolvePostable(ctx context.Context, tenantID id.ID, candidates ...Candidate) (*Account, error) {
	for _, c := range candidates {
		acc, err := r.Tenant(tenantID).FindPostable(ctx, c)
		if err == nil {
			return acc, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}
		acc, err = r.Global().FindPostable(ctx, c)
		if err == nil {
			return acc, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.String()
	}
	return nil, apperror.NewNotFound("account", strings.Join(names, ","))
}

// ResolveParent finds the closest existing ancestor of code, walking up the
// code chain and checking the tenant tier before the template at each level.
// Returns nil when no ancestor exists.
func (r *Resolver) ResolveParent(ctx context.Context, tenantID *id.ID, ancestors []string) (*Account, error) {
	for _, code := range ancestors {
		var (
			acc *Account
			err error
		)
		if tenantID != nil {
			acc, err = r.Resolve(ctx, *tenantID, code)
		} else {
			acc, err = r.Global().Find(ctx, code)
		}
		if err == nil {
			return acc, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}
	}
	return nil, nil
}

// View returns the chart a tenant actually sees: its own accounts plus the
// template accounts whose code it has not overridden.
func (r *Resolver) View(ctx context.Context, tenantID id.ID) (*Tree, error) {
	global, err := r.Global().List(ctx)
	if err != nil {
		return nil, err
	}
	own, err := r.Tenant(tenantID).List(ctx)
	if err != nil {
		return nil, err
	}

	owned := make(map[string]id.ID, len(own))
	for _, a := range own {
		owned[a.Code] = a.ID
	}
	shadowed := make(map[id.ID]id.ID)
	merged := make([]Account, 0, len(global)+len(own))
	for _, a := range global {
		if tenantCopy, ok := owned[a.Code]; ok {
			shadowed[a.ID] = tenantCopy
			continue
		}
		merged = append(merged, a)
	}
	merged = append(merged, own...)
	for i := range merged {
		if p := merged[i].ParentID; p != nil {
			if replacement, ok := shadowed[*p]; ok {
				merged[i].ParentID = &replacement
			}
		}
	}
	return NewTree(merged), nil
}
