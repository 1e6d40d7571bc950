package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/documents/expense"
	"pgcledger/internal/domain/documents/invoice"
	"pgcledger/internal/domain/documents/purchase"
)

// ItemRequest is one document line. TaxRate is a percentage.
type ItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   types.Money     `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
}

func toItems(in []ItemRequest) []documents.ItemInput {
	out := make([]documents.ItemInput, len(in))
	for i, it := range in {
		out[i] = documents.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
		}
	}
	return out
}

// CommercialRequest holds what invoices and purchases share. A zero
// withholding rate takes the catalog rate for services.
type CommercialRequest struct {
	PartyID          string          `json:"partyId" binding:"required,uuid"`
	Date             Date            `json:"date"`
	DueDate          Date            `json:"dueDate"`
	Reference        string          `json:"reference"`
	Comment          string          `json:"comment"`
	Items            []ItemRequest   `json:"items" binding:"required,min=1,dive"`
	ApplyWithholding bool            `json:"applyWithholding"`
	WithholdingRate  decimal.Decimal `json:"withholdingRate"`
}

func (r *CommercialRequest) party() (id.ID, error) {
	return id.Parse(r.PartyID)
}

func (r *CommercialRequest) date() time.Time {
	if r.Date.IsZero() {
		y, m, d := time.Now().UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return r.Date.Time
}

func (r *CommercialRequest) ToInvoiceCreate() (invoice.CreateInput, error) {
	customerID, err := r.party()
	if err != nil {
		return invoice.CreateInput{}, err
	}
	return invoice.CreateInput{
		CustomerID:       customerID,
		Date:             r.date(),
		DueDate:          r.DueDate.Time,
		CustomerRef:      r.Reference,
		Comment:          r.Comment,
		Items:            toItems(r.Items),
		ApplyWithholding: r.ApplyWithholding,
		WithholdingRate:  r.WithholdingRate,
	}, nil
}

func (r *CommercialRequest) ToPurchaseCreate() (purchase.CreateInput, error) {
	supplierID, err := r.party()
	if err != nil {
		return purchase.CreateInput{}, err
	}
	return purchase.CreateInput{
		SupplierID:       supplierID,
		Date:             r.date(),
		DueDate:          r.DueDate.Time,
		SupplierRef:      r.Reference,
		Comment:          r.Comment,
		Items:            toItems(r.Items),
		ApplyWithholding: r.ApplyWithholding,
		WithholdingRate:  r.WithholdingRate,
	}, nil
}

// UpdateCommercialRequest rewrites a draft; the party cannot change.
type UpdateCommercialRequest struct {
	Date             Date            `json:"date"`
	DueDate          Date            `json:"dueDate"`
	Reference        string          `json:"reference"`
	Comment          string          `json:"comment"`
	Items            []ItemRequest   `json:"items" binding:"required,min=1,dive"`
	ApplyWithholding bool            `json:"applyWithholding"`
	WithholdingRate  decimal.Decimal `json:"withholdingRate"`
}

func (r *UpdateCommercialRequest) ToInvoiceUpdate() invoice.UpdateInput {
	return invoice.UpdateInput{
		Date:             r.Date.Time,
		DueDate:          r.DueDate.Time,
		CustomerRef:      r.Reference,
		Comment:          r.Comment,
		Items:            toItems(r.Items),
		ApplyWithholding: r.ApplyWithholding,
		WithholdingRate:  r.WithholdingRate,
	}
}

func (r *UpdateCommercialRequest) ToPurchaseUpdate() purchase.UpdateInput {
	return purchase.UpdateInput{
		Date:             r.Date.Time,
		DueDate:          r.DueDate.Time,
		SupplierRef:      r.Reference,
		Comment:          r.Comment,
		Items:            toItems(r.Items),
		ApplyWithholding: r.ApplyWithholding,
		WithholdingRate:  r.WithholdingRate,
	}
}

// DocumentListRequest filters invoices or purchases.
type DocumentListRequest struct {
	ListRequest
	PartyID string          `form:"partyId" binding:"omitempty,uuid"`
	State   documents.State `form:"state"`
	From    string          `form:"from"`
	To      string          `form:"to"`
}

func (r DocumentListRequest) bounds() (partyID *id.ID, from, to *time.Time, err error) {
	if r.PartyID != "" {
		p, err := id.Parse(r.PartyID)
		if err != nil {
			return nil, nil, nil, err
		}
		partyID = &p
	}
	if from, to, err = ParsePeriod(r.From, r.To); err != nil {
		return nil, nil, nil, err
	}
	return partyID, from, to, nil
}

func (r DocumentListRequest) InvoiceFilter() (invoice.ListFilter, error) {
	partyID, from, to, err := r.bounds()
	if err != nil {
		return invoice.ListFilter{}, err
	}
	return invoice.ListFilter{
		ListFilter: r.ListRequest.Filter(),
		CustomerID: partyID,
		State:      r.State,
		DateFrom:   from,
		DateTo:     to,
	}, nil
}

func (r DocumentListRequest) PurchaseFilter() (purchase.ListFilter, error) {
	partyID, from, to, err := r.bounds()
	if err != nil {
		return purchase.ListFilter{}, err
	}
	return purchase.ListFilter{
		ListFilter: r.ListRequest.Filter(),
		SupplierID: partyID,
		State:      r.State,
		DateFrom:   from,
		DateTo:     to,
	}, nil
}

// ParsePeriod reads optional YYYY-MM-DD bounds.
func ParsePeriod(from, to string) (*time.Time, *time.Time, error) {
	var out [2]*time.Time
	for i, s := range []string{from, to} {
		if s == "" {
			continue
		}
		d, err := ParseDate(s)
		if err != nil {
			return nil, nil, err
		}
		out[i] = d.Ptr()
	}
	return out[0], out[1], nil
}

// PaymentRequest records money received or paid against a document.
type PaymentRequest struct {
	Date            Date                    `json:"date"`
	Amount          types.Money             `json:"amount"`
	Method          documents.PaymentMethod `json:"method" binding:"required,oneof=CASH BANK"`
	Note            string                  `json:"note"`
	GeneratePosting bool                    `json:"generatePosting"`
}

func (r *PaymentRequest) ToInput() documents.PaymentInput {
	return documents.PaymentInput{
		Date:            DateRequest{Date: r.Date}.Or(time.Now().UTC()),
		Amount:          r.Amount,
		Method:          r.Method,
		Note:            r.Note,
		GeneratePosting: r.GeneratePosting,
	}
}

// CreateExpenseRequest records and posts an expense.
type CreateExpenseRequest struct {
	Kind        expense.Kind            `json:"kind" binding:"required,oneof=SUPPLIER SALARY SERVICE OTHER"`
	Date        Date                    `json:"date"`
	Description string                  `json:"description" binding:"required"`
	Amount      types.Money             `json:"amount"`
	Method      documents.PaymentMethod `json:"method" binding:"omitempty,oneof=CASH BANK"`
	SupplierID  string                  `json:"supplierId" binding:"omitempty,uuid"`
	Comment     string                  `json:"comment"`
}

func (r *CreateExpenseRequest) ToInput() (expense.CreateInput, error) {
	in := expense.CreateInput{
		Kind:        r.Kind,
		Date:        DateRequest{Date: r.Date}.Or(time.Now().UTC()),
		Description: r.Description,
		Amount:      r.Amount,
		Method:      r.Method,
		Comment:     r.Comment,
	}
	if r.SupplierID != "" {
		supplierID, err := id.Parse(r.SupplierID)
		if err != nil {
			return in, err
		}
		in.SupplierID = &supplierID
	}
	return in, nil
}

// ExpenseListRequest filters expenses.
type ExpenseListRequest struct {
	Kind expense.Kind `form:"kind"`
	From string       `form:"from"`
	To   string       `form:"to"`
}

func (r ExpenseListRequest) Filter() (expense.Filter, error) {
	from, to, err := ParsePeriod(r.From, r.To)
	if err != nil {
		return expense.Filter{}, err
	}
	return expense.Filter{Kind: r.Kind, DateFrom: from, DateTo: to}, nil
}
