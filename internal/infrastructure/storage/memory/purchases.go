package memory

import (
	"context"
	"sort"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/documents/purchase"
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct{ s *Store }

var _ purchase.Repository = (*PurchaseRepo)(nil)

// Invoices returns the purchase repository.
func (s *Store) Purchases() *PurchaseRepo { return &PurchaseRepo{s: s} }

func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	return r.s.write(func(d *state) error {
		for _, other := range d.purchases {
			if other.TenantID == p.TenantID && other.Number == p.Number {
				return apperror.NewDuplicate("purchase", "number", p.Number)
			}
		}
		stored := *p
		stored.Items = nil
		d.purchases[p.ID] = stored
		return nil
	})
}

func (r *PurchaseRepo) GetByID(ctx context.Context, tenantID, purchaseID id.ID) (*purchase.Purchase, error) {
	var (
		p purchase.Purchase
		ok  bool
	)
	r.s.read(func(d *state) { p, ok = d.purchases[purchaseID] })
	if !ok || p.TenantID != tenantID {
		return nil, apperror.NewNotFound("purchase", purchaseID.String())
	}
	return &p, nil
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, tenantID, purchaseID id.ID) (*purchase.Purchase, error) {
	return r.GetByID(ctx, tenantID, purchaseID)
}

func (r *PurchaseRepo) Update(ctx context.Context, p *purchase.Purchase) error {
	return r.s.write(func(d *state) error {
		cur, ok := d.purchases[p.ID]
		if !ok || cur.TenantID != p.TenantID {
			return apperror.NewNotFound("purchase", p.ID.String())
		}
		if cur.Version != p.Version {
			return apperror.NewConcurrentModification("purchase", p.ID.String())
		}
		p.Version++
		p.UpdatedAt = time.Now().UTC()
		stored := *p
		stored.Items = nil
		d.purchases[p.ID] = stored
		return nil
	})
}

func (r *PurchaseRepo) Delete(ctx context.Context, tenantID, purchaseID id.ID) error {
	return r.s.write(func(d *state) error {
		p, ok := d.purchases[purchaseID]
		if !ok || p.TenantID != tenantID {
			return apperror.NewNotFound("purchase", purchaseID.String())
		}
		delete(d.purchases, purchaseID)
		delete(d.items, purchaseID)
		return nil
	})
}

func (r *PurchaseRepo) GetItems(ctx context.Context, purchaseID id.ID) ([]documents.Item, error) {
	return getItems(r.s, purchaseID), nil
}

func (r *PurchaseRepo) SaveItems(ctx context.Context, purchaseID id.ID, items []documents.Item) error {
	return saveItems(r.s, purchaseID, items)
}

func (r *PurchaseRepo) List(ctx context.Context, tenantID id.ID, filter purchase.ListFilter) (domain.ListResult[*purchase.Purchase], error) {
	var all []*purchase.Purchase
	r.s.read(func(d *state) {
		for _, p := range d.purchases {
			if p.TenantID != tenantID || !matchCommercial(&p.Commercial, filter.SupplierID, filter.State, filter.DateFrom, filter.DateTo, filter.Search) {
				continue
			}
			p := p
			all = append(all, &p)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Number > all[j].Number })
	return page(all, filter.ListFilter), nil
}

