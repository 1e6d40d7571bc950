// Package chart maintains the chart of accounts: a global PGC template
// shared by every company plus one customizable copy per tenant.
package chart

import (
	"context"
	"strings"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/entity"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/pgc"
)

// Kind classifies an account inside the tree.
type Kind string

const (
	KindLedger      Kind = "LEDGER"      // R - razão
	KindIntegration Kind = "INTEGRATION" // I - integração
	KindMovement    Kind = "MOVEMENT"    // M - movimento
	KindClosing     Kind = "CLOSING"     // A - apuramento
)

// AcceptsPostings reports whether journal lines may target accounts of this kind by default.
func (k Kind) AcceptsPostings() bool {
	return k == KindMovement || k == KindClosing
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindLedger, KindIntegration, KindMovement, KindClosing:
		return true
	}
	return false
}

// Letter returns the one-letter import code.
func (k Kind) Letter() string {
	switch k {
	case KindLedger:
		return "R"
	case KindIntegration:
		return "I"
	case KindClosing:
		return "A"
	default:
		return "M"
	}
}

var kindWords = map[string]Kind{
	"R": KindLedger, "RAZAO": KindLedger, "RAZÃO": KindLedger, "LEDGER": KindLedger,
	"I": KindIntegration, "INTEGRACAO": KindIntegration, "INTEGRAÇÃO": KindIntegration, "INTEGRATION": KindIntegration,
	"M": KindMovement, "MOVIMENTO": KindMovement, "MOVEMENT": KindMovement,
	"A": KindClosing, "APURAMENTO": KindClosing, "CLOSING": KindClosing,
}

// LookupKind recognizes a kind letter or word. The second result is false
// when s is neither.
func LookupKind(s string) (Kind, bool) {
	k, ok := kindWords[strings.ToUpper(strings.TrimSpace(s))]
	return k, ok
}

// ParseKind maps import text to a kind: known letters and words first, then
// the first letter, and MOVEMENT for anything else.
func ParseKind(s string) Kind {
	if k, ok := LookupKind(s); ok {
		return k
	}
	s = strings.TrimSpace(s)
	if s != "" {
		if k, ok := LookupKind(s[:1]); ok {
			return k
		}
	}
	return KindMovement
}

// EntityKind tags accounts that mirror a third party or a treasury.
type EntityKind string

const (
	EntityNone         EntityKind = "NONE"
	EntityCustomer     EntityKind = "CUSTOMER"
	EntitySupplier     EntityKind = "SUPPLIER"
	EntityTaxAuthority EntityKind = "TAX_AUTHORITY"
	EntityBank         EntityKind = "BANK"
	EntityCash         EntityKind = "CASH"
)

// Valid reports whether e is a known entity kind.
func (e EntityKind) Valid() bool {
	switch e {
	case EntityNone, EntityCustomer, EntitySupplier, EntityTaxAuthority, EntityBank, EntityCash:
		return true
	}
	return false
}

// Account is one node of the chart. Parent is stored by ID only; use Tree
// for hierarchical queries.
type Account struct {
	entity.BaseEntity
	entity.TenantOwned

	Code            string     `db:"code" json:"code"`
	Description     string     `db:"description" json:"description"`
	ClassCode       string     `db:"class_code" json:"classCode"`
	Kind            Kind       `db:"kind" json:"kind"`
	EntityKind      EntityKind `db:"entity_kind" json:"entityKind"`
	AcceptsPostings bool       `db:"accepts_postings" json:"acceptsPostings"`
	ParentID        *id.ID     `db:"parent_id" json:"parentId,omitempty"`
}

// NewAccount creates an account for tenantID (nil for the global template).
func NewAccount(tenantID *id.ID, code, description string, kind Kind) *Account {
	acc := &Account{
		BaseEntity:      entity.NewBaseEntity(),
		Code:            code,
		Description:     description,
		Kind:            kind,
		EntityKind:      EntityNone,
		AcceptsPostings: kind.AcceptsPostings(),
	}
	if tenantID != nil {
		acc.TenantOwned = entity.ForTenant(*tenantID)
	}
	return acc
}

// Nature returns the balance nature derived from the code.
func (a *Account) Nature() pgc.Nature {
	return pgc.NatureOf(a.Code)
}

// Validate implements entity.Validatable.
func (a *Account) Validate(ctx context.Context) error {
	if strings.TrimSpace(a.Code) == "" {
		return apperror.NewValidation("code is required").WithDetail("field", "code")
	}
	if strings.TrimSpace(a.Description) == "" {
		return apperror.NewValidation("description is required").WithDetail("field", "description")
	}
	if _, ok := pgc.LookupClass(a.ClassCode); !ok || a.ClassCode != pgc.ClassDigit(a.ClassCode) {
		return apperror.NewValidation("unknown account class").
			WithDetail("field", "classCode").
			WithDetail("value", a.ClassCode)
	}
	if !a.Kind.Valid() {
		return apperror.NewValidation("unknown account kind").WithDetail("value", a.Kind)
	}
	if !a.EntityKind.Valid() {
		return apperror.NewValidation("unknown entity kind").WithDetail("value", a.EntityKind)
	}
	if a.ParentID != nil && *a.ParentID == a.ID {
		return apperror.NewValidation("account cannot be its own parent")
	}
	return nil
}

// ScopeID returns the tenant pointer used by repository lookups.
func (a *Account) ScopeID() *id.ID {
	if a.IsGlobal() {
		return nil
	}
	return a.TenantID
}
