// Package documents holds what invoices, purchases and expenses share:
// line items, totals with withholding, the payment record and the state
// machine of commercial documents.
package documents

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/entity"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/posting"
)

// State is the lifecycle state of an invoice or purchase.
type State string

const (
	StateDraft         State = "DRAFT"
	StateIssued        State = "ISSUED"     // invoices
	StateRegistered    State = "REGISTERED" // purchases
	StatePartiallyPaid State = "PARTIALLY_PAID"
	StatePaid          State = "PAID"
	StateVoid          State = "VOID"
)

// IsOpen reports whether the document was posted and can receive payments.
func (s State) IsOpen() bool {
	switch s {
	case StateIssued, StateRegistered, StatePartiallyPaid:
		return true
	}
	return false
}

// IsPosted reports whether the document left DRAFT and was not voided.
func (s State) IsPosted() bool {
	return s.IsOpen() || s == StatePaid
}

// CheckTransition enforces the state machine. postedState is ISSUED for
// invoices and REGISTERED for purchases. PARTIALLY_PAID is only reached
// through payments.
func CheckTransition(entityName string, from, to, postedState State) error {
	ok := false
	switch to {
	case postedState:
		ok = from == StateDraft
	case StatePaid:
		ok = from == postedState || from == StatePartiallyPaid
	case StateVoid:
		ok = from == StateDraft || from == postedState
	}
	if !ok {
		return apperror.NewInvalidTransition(entityName, string(from), string(to))
	}
	return nil
}

// Item is one line of a document.
type Item struct {
	ID          id.ID           `db:"id" json:"id"`
	LineNo      int             `db:"line_no" json:"lineNo"`
	Description string          `db:"description" json:"description"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice   types.Money     `db:"unit_price" json:"unitPrice"`
	TaxRate     decimal.Decimal `db:"tax_rate" json:"taxRate"`
	Amount      types.Money     `db:"amount" json:"amount"`
	TaxAmount   types.Money     `db:"tax_amount" json:"taxAmount"`
}

// NewItem builds a line and computes its amounts.
func NewItem(description string, quantity decimal.Decimal, unitPrice types.Money, taxRate decimal.Decimal) Item {
	it := Item{
		ID:          id.New(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TaxRate:     taxRate,
	}
	it.Compute()
	return it
}

// Compute sets Amount = quantity * unit price and TaxAmount = Amount *
// rate/100 rounded up to a whole unit.
func (it *Item) Compute() {
	it.Amount = it.Quantity.Mul(it.UnitPrice)
	it.TaxAmount = types.CeilUnit(types.Percent(it.Amount, it.TaxRate))
}

// Totals are the recomputed document totals.
type Totals struct {
	Subtotal          types.Money     `db:"subtotal" json:"subtotal"`
	TaxTotal          types.Money     `db:"tax_total" json:"taxTotal"`
	GrandTotal        types.Money     `db:"grand_total" json:"grandTotal"`
	ApplyWithholding  bool            `db:"apply_withholding" json:"applyWithholding"`
	WithholdingRate   decimal.Decimal `db:"withholding_rate" json:"withholdingRate"`
	WithholdingAmount types.Money     `db:"withholding_amount" json:"withholdingAmount"`
}

// NetPayable is the grand total less the withheld tax.
func (t Totals) NetPayable() types.Money {
	return t.GrandTotal.Sub(t.WithholdingAmount)
}

// ComputeTotals rolls the items up. Withholding is subtotal * rate/100
// rounded to cents when applied, else zero.
func ComputeTotals(items []Item, applyWithholding bool, withholdingRate decimal.Decimal) Totals {
	t := Totals{
		Subtotal:          types.Zero(),
		TaxTotal:          types.Zero(),
		ApplyWithholding:  applyWithholding,
		WithholdingRate:   withholdingRate,
		WithholdingAmount: types.Zero(),
	}
	for i := range items {
		items[i].LineNo = i + 1
		items[i].Compute()
		t.Subtotal = t.Subtotal.Add(items[i].Amount)
		t.TaxTotal = t.TaxTotal.Add(items[i].TaxAmount)
	}
	t.GrandTotal = t.Subtotal.Add(t.TaxTotal)
	if applyWithholding {
		t.WithholdingAmount = types.Round2(types.Percent(t.Subtotal, withholdingRate))
	}
	return t
}

// Commercial is the common body of invoices and purchases.
type Commercial struct {
	entity.Document
	Totals

	PartyID id.ID     `db:"party_id" json:"partyId"`
	DueDate time.Time `db:"due_date" json:"dueDate"`
	State   State     `db:"state" json:"state"`

	PaidAmount types.Money `db:"paid_amount" json:"paidAmount"`

	// WithholdingSettled is set once the withheld tax was paid to, or
	// confirmed by, the tax authority
	WithholdingSettled bool `db:"withholding_settled" json:"withholdingSettled"`

	Items []Item `db:"-" json:"items"`
}

// NewCommercial creates a draft.
func NewCommercial(tenantID, partyID id.ID, date, dueDate time.Time) Commercial {
	return Commercial{
		Document:   entity.NewDocument(tenantID, date),
		PartyID:    partyID,
		DueDate:    dueDate,
		State:      StateDraft,
		PaidAmount: types.Zero(),
	}
}

// Recompute refreshes Totals from Items.
func (c *Commercial) Recompute() {
	c.Totals = ComputeTotals(c.Items, c.ApplyWithholding, c.WithholdingRate)
}

// Outstanding is what the party still owes: net payable less payments.
func (c *Commercial) Outstanding() types.Money {
	return c.NetPayable().Sub(c.PaidAmount)
}

// ApplyPayment adds amount to the paid total and moves the state to PAID
// when nothing is outstanding, else to PARTIALLY_PAID.
func (c *Commercial) ApplyPayment(amount types.Money) {
	c.PaidAmount = c.PaidAmount.Add(amount)
	if c.Outstanding().Sign() <= 0 {
		c.State = StatePaid
	} else {
		c.State = StatePartiallyPaid
	}
}

// Validate implements entity.Validatable.
func (c *Commercial) Validate(ctx context.Context) error {
	if err := c.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(c.PartyID) {
		return apperror.NewValidation("party is required").WithDetail("field", "partyId")
	}
	if c.DueDate.IsZero() {
		return apperror.NewValidation("due date is required").WithDetail("field", "dueDate")
	}
	if c.DueDate.Before(c.Date) {
		return apperror.NewValidation("due date precedes the document date").WithDetail("field", "dueDate")
	}
	if c.ApplyWithholding && (c.WithholdingRate.IsNegative() || c.WithholdingRate.GreaterThan(decimal.NewFromInt(100))) {
		return apperror.NewValidation("withholding rate must be between 0 and 100").WithDetail("field", "withholdingRate")
	}
	if len(c.Items) == 0 {
		return apperror.NewValidation("at least one line is required").WithDetail("field", "items")
	}
	for i, it := range c.Items {
		if !it.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if it.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if it.TaxRate.IsNegative() {
			return apperror.NewValidation("tax rate must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// CanModify reports whether lines and totals may still change.
func (c *Commercial) CanModify() error {
	if c.State != StateDraft {
		return apperror.NewBusinessRule(apperror.CodeDocumentPosted, "only draft documents can be changed").
			WithDetail("state", c.State)
	}
	return nil
}

// PaymentMethod selects the treasury account of a payment.
type PaymentMethod string

const (
	MethodCash PaymentMethod = "CASH"
	MethodBank PaymentMethod = "BANK"
)

// Role returns the posting role of the treasury account.
func (m PaymentMethod) Role() posting.Role {
	if m == MethodCash {
		return posting.RoleCash
	}
	return posting.RoleBank
}

// Valid reports whether m is a known method.
func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodBank
}

// Payment is one settlement of an invoice or purchase.
type Payment struct {
	ID           id.ID              `db:"id" json:"id"`
	TenantID     id.ID              `db:"tenant_id" json:"tenantId"`
	DocumentType posting.SourceType `db:"document_type" json:"documentType"`
	DocumentID   id.ID              `db:"document_id" json:"documentId"`
	Date         time.Time          `db:"date" json:"date"`
	Amount       types.Money        `db:"amount" json:"amount"`
	Method       PaymentMethod      `db:"method" json:"method"`
	Note         string             `db:"note" json:"note,omitempty"`
	EntryID      *id.ID             `db:"entry_id" json:"entryId,omitempty"`
	CreatedAt    time.Time          `db:"created_at" json:"createdAt"`
}

// PaymentInput is a payment request.
type PaymentInput struct {
	Date   time.Time
	Amount types.Money
	Method PaymentMethod
	Note   string

	// GeneratePosting also posts the treasury movement
	GeneratePosting bool
}

// Validate checks a payment request.
func (in PaymentInput) Validate() error {
	if !in.Amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").WithDetail("field", "amount")
	}
	if !in.Method.Valid() {
		return apperror.NewValidation("unknown payment method").WithDetail("method", in.Method)
	}
	if in.Date.IsZero() {
		return apperror.NewValidation("payment date is required").WithDetail("field", "date")
	}
	return nil
}

// NewPayment builds the record for in.
func NewPayment(tenantID id.ID, docType posting.SourceType, docID id.ID, in PaymentInput) *Payment {
	return &Payment{
		ID:           id.New(),
		TenantID:     tenantID,
		DocumentType: docType,
		DocumentID:   docID,
		Date:         in.Date,
		Amount:       in.Amount,
		Method:       in.Method,
		Note:         in.Note,
		CreatedAt:    time.Now().UTC(),
	}
}

// PaymentRepository persists payments of every document type.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	List(ctx context.Context, tenantID id.ID, docType posting.SourceType, docID id.ID) ([]*Payment, error)
	LinkEntry(ctx context.Context, tenantID, paymentID, entryID id.ID) error
}
