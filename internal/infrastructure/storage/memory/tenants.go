package memory

import (
	"context"
	"sort"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/tenant"
)

// TenantRegistry implements tenant.Registry.
type TenantRegistry struct{ s *Store }

var _ tenant.Registry = (*TenantRegistry)(nil)

// Tenants returns the company registry.
func (s *Store) Tenants() *TenantRegistry { return &TenantRegistry{s: s} }

func (r *TenantRegistry) GetByID(ctx context.Context, tenantID id.ID) (*tenant.Tenant, error) {
	var (
		t  tenant.Tenant
		ok bool
	)
	r.s.read(func(d *state) { t, ok = d.tenants[tenantID] })
	if !ok {
		return nil, apperror.NewNotFound("tenant", tenantID.String())
	}
	return &t, nil
}

func (r *TenantRegistry) ListAll(ctx context.Context) ([]*tenant.Tenant, error) {
	var out []*tenant.Tenant
	r.s.read(func(d *state) {
		for _, t := range d.tenants {
			t := t
			out = append(out, &t)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *TenantRegistry) Create(ctx context.Context, t *tenant.Tenant) error {
	return r.s.write(func(d *state) error {
		for _, other := range d.tenants {
			if other.TaxID == t.TaxID {
				return apperror.NewDuplicate("tenant", "tax_id", t.TaxID)
			}
		}
		d.tenants[t.ID] = *t
		return nil
	})
}

func (r *TenantRegistry) UpdateStatusByID(ctx context.Context, tenantID id.ID, status tenant.Status) error {
	return r.s.write(func(d *state) error {
		t, ok := d.tenants[tenantID]
		if !ok {
			return apperror.NewNotFound("tenant", tenantID.String())
		}
		t.Status = status
		d.tenants[tenantID] = t
		return nil
	})
}
