// Package posting is the journal engine: it turns business events into
// balanced journal entries, exactly once per event.
package posting

import (
	"context"
	"fmt"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
)

// Side is the debit or credit leg of a journal line.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == Debit || s == Credit
}

// EntryKind separates ordinary entries from year opening and closing.
type EntryKind string

const (
	KindNormal  EntryKind = "NORMAL"
	KindOpening EntryKind = "OPENING"
	KindClosing EntryKind = "CLOSING"
)

// SourceType names the kind of record that originated an entry.
type SourceType string

const (
	SourceInvoice  SourceType = "INVOICE"
	SourcePurchase SourceType = "PURCHASE"
	SourceExpense  SourceType = "EXPENSE"
	SourcePayroll  SourceType = "PAYROLL"
	SourceClosing  SourceType = "CLOSING"
	SourceManual   SourceType = "MANUAL"
)

// Events that post. Payments and periods carry a suffix, see PaymentEvent
// and PeriodEvent.
const (
	EventIssue       = "ISSUE"
	EventRegister    = "REGISTER"
	EventCreate      = "CREATE"
	EventVoid        = "VOID"
	EventWithholding = "WITHHOLDING"
)

// PaymentEvent is the event of one payment record.
func PaymentEvent(paymentID id.ID) string {
	return "PAYMENT:" + paymentID.String()
}

// PeriodEvent is the event of a monthly batch.
func PeriodEvent(year, month int) string {
	return fmt.Sprintf("PERIOD:%04d-%02d", year, month)
}

// YearEvent is the event of a fiscal-year batch.
func YearEvent(year int) string {
	return fmt.Sprintf("YEAR:%04d", year)
}

// Key identifies one economic event. At most one entry exists per key.
type Key struct {
	SourceType SourceType
	SourceID   id.ID
	Event      string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.SourceType, k.SourceID, k.Event)
}

// Entry is a dated, numbered, balanced journal entry.
type Entry struct {
	ID          id.ID      `db:"id" json:"id"`
	TenantID    id.ID      `db:"tenant_id" json:"tenantId"`
	Number      string     `db:"number" json:"number"`
	Kind        EntryKind  `db:"kind" json:"kind"`
	Date        time.Time  `db:"date" json:"date"`
	Description string     `db:"description" json:"description"`
	SourceType  SourceType `db:"source_type" json:"sourceType"`
	SourceID    *id.ID     `db:"source_id" json:"sourceId,omitempty"`
	Event       string     `db:"event" json:"event,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one leg of an entry.
type Line struct {
	ID          id.ID       `db:"id" json:"id"`
	EntryID     id.ID       `db:"entry_id" json:"entryId"`
	LineNo      int         `db:"line_no" json:"lineNo"`
	AccountID   id.ID       `db:"account_id" json:"accountId"`
	AccountCode string      `db:"account_code" json:"accountCode"`
	Side        Side        `db:"side" json:"side"`
	Amount      types.Money `db:"amount" json:"amount"`
	Memo        string      `db:"memo" json:"memo,omitempty"`
}

// Key returns the idempotency key, or false for manual entries.
func (e *Entry) Key() (Key, bool) {
	if e.SourceID == nil || e.Event == "" {
		return Key{}, false
	}
	return Key{SourceType: e.SourceType, SourceID: *e.SourceID, Event: e.Event}, true
}

// Totals returns the debit and credit sums.
func (e *Entry) Totals() (debit, credit types.Money) {
	debit, credit = types.Zero(), types.Zero()
	for _, l := range e.Lines {
		if l.Side == Debit {
			debit = debit.Add(l.Amount)
		} else {
			credit = credit.Add(l.Amount)
		}
	}
	return debit, credit
}

// IsBalanced reports whether debits equal credits.
func (e *Entry) IsBalanced() bool {
	debit, credit := e.Totals()
	return debit.Equal(credit)
}

// Validate checks the entry before it is persisted.
func (e *Entry) Validate(ctx context.Context) error {
	if id.IsNil(e.TenantID) {
		return apperror.NewValidation("tenant is required").WithDetail("field", "tenantId")
	}
	if e.Date.IsZero() {
		return apperror.NewValidation("date is required").WithDetail("field", "date")
	}
	if len(e.Lines) < 2 {
		return apperror.NewValidation("a journal entry needs at least two lines").
			WithDetail("lines", len(e.Lines))
	}
	for i, l := range e.Lines {
		if !l.Side.Valid() {
			return apperror.NewValidation("unknown line side").WithDetail("lineNo", i+1)
		}
		if l.Amount.IsNegative() {
			return apperror.NewValidation("line amount must not be negative").WithDetail("lineNo", i+1)
		}
		if id.IsNil(l.AccountID) {
			return apperror.NewValidation("line account is required").WithDetail("lineNo", i+1)
		}
	}
	debit, credit := e.Totals()
	if !debit.Equal(credit) {
		return apperror.NewUnbalancedEntry(debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}
