package entity

import (
	"context"
	"time"

	"pgcledger/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

///////////////////
// Base Entity   //
///////////////////

// BaseEntity contains common fields for all persisted ledger records.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:      id.New(),
		Version: 1,
	}
}

// Touch increments version (for optimistic locking).
func (b *BaseEntity) Touch() {
	b.Version++
}

// TenantOwned marks records that belong to one company.
// A nil TenantID is only valid for global template rows.
type TenantOwned struct {
	TenantID *id.ID `db:"tenant_id" json:"tenantId,omitempty"`
}

// IsGlobal reports whether the record is shared reference data.
func (t TenantOwned) IsGlobal() bool {
	return t.TenantID == nil || id.IsNil(*t.TenantID)
}

// OwnedBy reports whether the record belongs to tenantID.
func (t TenantOwned) OwnedBy(tenantID id.ID) bool {
	return !t.IsGlobal() && *t.TenantID == tenantID
}

// ForTenant returns a TenantOwned pointing at tenantID.
func ForTenant(tenantID id.ID) TenantOwned {
	tid := tenantID
	return TenantOwned{TenantID: &tid}
}

///////////////
// Documents //
///////////////

// BaseDocument extends BaseEntity with audit fields for documents.
type BaseDocument struct {
	BaseEntity

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseDocument creates a new BaseDocument with generated ID and timestamps.
func NewBaseDocument() BaseDocument {
	now := time.Now().UTC()
	return BaseDocument{
		BaseEntity: NewBaseEntity(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch updates the UpdatedAt timestamp and increments version.
func (b *BaseDocument) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.BaseEntity.Touch()
}
