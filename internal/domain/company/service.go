// Package company registers the tenants of the ledger and prepares their
// chart of accounts.
package company

import (
	"context"

	"pgcledger/internal/core/id"
	"pgcledger/internal/core/tenant"
	"pgcledger/internal/domain/chart"
	"pgcledger/pkg/logger"
)

// Service onboards companies.
type Service struct {
	registry tenant.Registry
	chart    *chart.Service
}

// NewService creates a new company service.
func NewService(registry tenant.Registry, chartService *chart.Service) *Service {
	return &Service{registry: registry, chart: chartService}
}

// Create registers a company. Unless its template is CUSTOM, the chart of
// accounts is copied from the global template; the number of accounts
// copied is returned.
func (s *Service) Create(ctx context.Context, in tenant.CreateTenantInput) (*tenant.Tenant, int, error) {
	if err := in.Validate(); err != nil {
		return nil, 0, err
	}
	t := in.Build()
	if err := s.registry.Create(ctx, t); err != nil {
		return nil, 0, err
	}
	logger.Info(ctx, "company registered", "tenant_id", t.ID, "name", t.Name)

	if t.ChartTemplate == tenant.TemplateCustom {
		return t, 0, nil
	}
	n, err := s.chart.InitializePlan(ctx, t.ID)
	if err != nil {
		return t, 0, err
	}
	return t, n, nil
}

// Get returns one company.
func (s *Service) Get(ctx context.Context, tenantID id.ID) (*tenant.Tenant, error) {
	return s.registry.GetByID(ctx, tenantID)
}

// List returns every company ordered by name.
func (s *Service) List(ctx context.Context) ([]*tenant.Tenant, error) {
	return s.registry.ListAll(ctx)
}

// Suspend stops a company from accepting requests.
func (s *Service) Suspend(ctx context.Context, tenantID id.ID) error {
	return s.registry.UpdateStatusByID(ctx, tenantID, tenant.StatusSuspended)
}

// Activate re-enables a suspended company.
func (s *Service) Activate(ctx context.Context, tenantID id.ID) error {
	return s.registry.UpdateStatusByID(ctx, tenantID, tenant.StatusActive)
}
