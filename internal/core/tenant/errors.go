package tenant

import "pgcledger/internal/core/apperror"

var (
	// ErrTenantNotFound is returned when the company does not exist.
	ErrTenantNotFound = apperror.NewNotFound("tenant", "")

	// ErrTenantNotActive is returned when tenant exists but is not active.
	ErrTenantNotActive = apperror.NewForbidden("tenant is not active")
)
