package tenant

import (
	"context"
	"errors"

	"pgcledger/internal/core/id"
)

type ctxKey int

const (
	tenantKey ctxKey = iota
)

// ErrNoTenantInContext is returned when a request runs without a resolved company.
var ErrNoTenantInContext = errors.New("tenant not found in context")

// WithTenant stores tenant info in context.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}

// GetTenant retrieves tenant from context.
func GetTenant(ctx context.Context) *Tenant {
	t, _ := ctx.Value(tenantKey).(*Tenant)
	return t
}

// GetTenantID returns tenant ID or the nil ID.
func GetTenantID(ctx context.Context) id.ID {
	if t := GetTenant(ctx); t != nil {
		return t.ID
	}
	return id.Nil()
}

// RequireTenant retrieves tenant or returns ErrNoTenantInContext.
func RequireTenant(ctx context.Context) (*Tenant, error) {
	t := GetTenant(ctx)
	if t == nil {
		return nil, ErrNoTenantInContext
	}
	return t, nil
}
