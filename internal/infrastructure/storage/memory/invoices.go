package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/documents/invoice"
)

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct{ s *Store }

var _ invoice.Repository = (*InvoiceRepo)(nil)

// Invoices returns the invoice repository.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{s: s} }

func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	return r.s.write(func(d *state) error {
		for _, other := range d.invoices {
			if other.TenantID == inv.TenantID && other.Number == inv.Number {
				return apperror.NewDuplicate("invoice", "number", inv.Number)
			}
		}
		stored := *inv
		stored.Items = nil
		d.invoices[inv.ID] = stored
		return nil
	})
}

func (r *InvoiceRepo) GetByID(ctx context.Context, tenantID, invoiceID id.ID) (*invoice.Invoice, error) {
	var (
		inv invoice.Invoice
		ok  bool
	)
	r.s.read(func(d *state) { inv, ok = d.invoices[invoiceID] })
	if !ok || inv.TenantID != tenantID {
		return nil, apperror.NewNotFound("invoice", invoiceID.String())
	}
	return &inv, nil
}

func (r *InvoiceRepo) GetForUpdate(ctx context.Context, tenantID, invoiceID id.ID) (*invoice.Invoice, error) {
	return r.GetByID(ctx, tenantID, invoiceID)
}

func (r *InvoiceRepo) Update(ctx context.Context, inv *invoice.Invoice) error {
	return r.s.write(func(d *state) error {
		cur, ok := d.invoices[inv.ID]
		if !ok || cur.TenantID != inv.TenantID {
			return apperror.NewNotFound("invoice", inv.ID.String())
		}
		if cur.Version != inv.Version {
			return apperror.NewConcurrentModification("invoice", inv.ID.String())
		}
		inv.Version++
		inv.UpdatedAt = time.Now().UTC()
		stored := *inv
		stored.Items = nil
		d.invoices[inv.ID] = stored
		return nil
	})
}

func (r *InvoiceRepo) Delete(ctx context.Context, tenantID, invoiceID id.ID) error {
	return r.s.write(func(d *state) error {
		inv, ok := d.invoices[invoiceID]
		if !ok || inv.TenantID != tenantID {
			return apperror.NewNotFound("invoice", invoiceID.String())
		}
		delete(d.invoices, invoiceID)
		delete(d.items, invoiceID)
		return nil
	})
}

func (r *InvoiceRepo) GetItems(ctx context.Context, invoiceID id.ID) ([]documents.Item, error) {
	return getItems(r.s, invoiceID), nil
}

func (r *InvoiceRepo) SaveItems(ctx context.Context, invoiceID id.ID, items []documents.Item) error {
	return saveItems(r.s, invoiceID, items)
}

func (r *InvoiceRepo) List(ctx context.Context, tenantID id.ID, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	var all []*invoice.Invoice
	r.s.read(func(d *state) {
		for _, inv := range d.invoices {
			if inv.TenantID != tenantID || !matchCommercial(&inv.Commercial, filter.CustomerID, filter.State, filter.DateFrom, filter.DateTo, filter.Search) {
				continue
			}
			inv := inv
			all = append(all, &inv)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Number > all[j].Number })
	return page(all, filter.ListFilter), nil
}

func getItems(s *Store, docID id.ID) []documents.Item {
	var out []documents.Item
	s.read(func(d *state) { out = append([]documents.Item(nil), d.items[docID]...) })
	return out
}

func saveItems(s *Store, docID id.ID, items []documents.Item) error {
	return s.write(func(d *state) error {
		d.items[docID] = append([]documents.Item(nil), items...)
		return nil
	})
}

func matchCommercial(c *documents.Commercial, partyID *id.ID, st documents.State, from, to *time.Time, search string) bool {
	if partyID != nil && c.PartyID != *partyID {
		return false
	}
	if st != "" && c.State != st {
		return false
	}
	if from != nil && c.Date.Before(*from) {
		return false
	}
	if to != nil && c.Date.After(*to) {
		return false
	}
	if search != "" && !strings.Contains(c.Number, search) {
		return false
	}
	return true
}
