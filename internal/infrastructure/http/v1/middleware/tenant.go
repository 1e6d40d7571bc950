package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/tenant"
	"pgcledger/pkg/logger"
)

const (
	// TenantHeader is the HTTP header for tenant identification.
	TenantHeader = "X-Tenant-ID"
)

// Tenant resolves the company named by X-Tenant-ID and stores it in the
// request context. Suspended companies are rejected.
func Tenant(registry tenant.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		rawTenantID := c.GetHeader(TenantHeader)
		if rawTenantID == "" {
			_ = c.Error(
				apperror.NewValidation("tenant is required").
					WithDetail("header", TenantHeader),
			)
			c.Abort()
			return
		}

		tenantID, err := id.Parse(rawTenantID)
		if err != nil {
			_ = c.Error(
				apperror.NewValidation("invalid tenant id").
					WithDetail("header", TenantHeader).
					WithDetail("value", rawTenantID),
			)
			c.Abort()
			return
		}

		t, err := registry.GetByID(ctx, tenantID)
		if err != nil {
			logger.Warn(ctx, "tenant lookup failed", "tenant_id", rawTenantID, "error", err)
			if errors.Is(err, tenant.ErrTenantNotFound) || apperror.IsNotFound(err) {
				_ = c.Error(apperror.NewNotFound("tenant", rawTenantID))
			} else {
				_ = c.Error(apperror.NewInternal(err).WithDetail("tenant_id", rawTenantID))
			}
			c.Abort()
			return
		}
		if !t.IsActive() {
			_ = c.Error(apperror.NewForbidden("tenant is not active").WithDetail("tenant_id", rawTenantID))
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(tenant.WithTenant(ctx, t))
		c.Set("tenant_uuid", t.ID)
		c.Next()
	}
}

// TenantID returns the company resolved by Tenant.
func TenantID(c *gin.Context) id.ID {
	return tenant.GetTenantID(c.Request.Context())
}
