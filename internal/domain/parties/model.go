// Package parties provides customers and suppliers, the third parties whose
// ledger sub-accounts are numbered under a parent account of the chart.
package parties

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/entity"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/chart"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Kind distinguishes customers from suppliers.
type Kind string

const (
	KindCustomer Kind = "CUSTOMER"
	KindSupplier Kind = "SUPPLIER"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindCustomer || k == KindSupplier
}

// EntityKind maps the party kind onto the account entity kind.
func (k Kind) EntityKind() chart.EntityKind {
	if k == KindSupplier {
		return chart.EntitySupplier
	}
	return chart.EntityCustomer
}

// Contact holds optional contact details.
type Contact struct {
	Email   string `db:"email" json:"email,omitempty"`
	Phone   string `db:"phone" json:"phone,omitempty"`
	Address string `db:"address" json:"address,omitempty"`
}

// Party is a customer or supplier of one tenant.
type Party struct {
	entity.BaseEntity
	Contact

	TenantID id.ID  `db:"tenant_id" json:"tenantId"`
	Kind     Kind   `db:"kind" json:"kind"`
	Name     string `db:"name" json:"name"`
	TaxID    string `db:"tax_id" json:"taxId,omitempty"`

	ParentAccountID id.ID `db:"parent_account_id" json:"parentAccountId"`

	// SequenceNumber is assigned once at creation and never changes
	SequenceNumber int `db:"sequence_number" json:"sequenceNumber"`

	// LedgerCode is the code of the shadow account, PARENT.NNNN or the
	// override given at creation
	LedgerCode string `db:"ledger_code" json:"ledgerCode"`

	// AccountID links the shadow account once it has been synced
	AccountID *id.ID `db:"account_id" json:"accountId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// LedgerCode formats the sub-account code for sequence seq under parentCode.
func LedgerCode(parentCode string, seq int) string {
	return fmt.Sprintf("%s.%04d", parentCode, seq)
}

// Validate implements entity.Validatable.
func (p *Party) Validate(ctx context.Context) error {
	if id.IsNil(p.TenantID) {
		return apperror.NewValidation("tenant is required").WithDetail("field", "tenantId")
	}
	if !p.Kind.Valid() {
		return apperror.NewValidation("unknown party kind").WithDetail("value", p.Kind)
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if id.IsNil(p.ParentAccountID) {
		return apperror.NewValidation("parent account is required").WithDetail("field", "parentAccountId")
	}
	if p.Email != "" && !emailRE.MatchString(p.Email) {
		return apperror.NewValidation("invalid email format").WithDetail("field", "email")
	}
	return nil
}
