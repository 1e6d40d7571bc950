package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
)

// Registry provides access to company records.
type Registry interface {
	// GetByID retrieves tenant by UUID.
	GetByID(ctx context.Context, tenantID id.ID) (*Tenant, error)

	// ListAll returns all tenants ordered by name.
	ListAll(ctx context.Context) ([]*Tenant, error)

	// Create inserts a new tenant row.
	Create(ctx context.Context, t *Tenant) error

	// UpdateStatusByID updates tenant status.
	UpdateStatusByID(ctx context.Context, tenantID id.ID, status Status) error
}

const tenantColumns = `id, name, tax_id, address, country, exercise_year, chart_template,
		       base_currency, reference_currency, default_exchange_rate, status, created_at`

// PostgresRegistry implements Registry on the tenants table.
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

func NewPostgresRegistry(pool *pgxpool.Pool) *PostgresRegistry {
	return &PostgresRegistry{pool: pool}
}

func (r *PostgresRegistry) GetByID(ctx context.Context, tenantID id.ID) (*Tenant, error) {
	var t Tenant
	err := pgxscan.Get(ctx, r.pool, &t, `
		SELECT `+tenantColumns+`
		FROM tenants
		WHERE id = $1
	`, tenantID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant by id: %w", err)
	}
	return &t, nil
}

func (r *PostgresRegistry) ListAll(ctx context.Context) ([]*Tenant, error) {
	var tenants []*Tenant
	err := pgxscan.Select(ctx, r.pool, &tenants, `
		SELECT `+tenantColumns+`
		FROM tenants
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

func (r *PostgresRegistry) Create(ctx context.Context, t *Tenant) error {
	if t == nil {
		return fmt.Errorf("tenant is nil")
	}
	if t.Status == "" {
		t.Status = StatusActive
	}
	if id.IsNil(t.ID) {
		t.ID = id.New()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, tax_id, address, country, exercise_year, chart_template,
		                     base_currency, reference_currency, default_exchange_rate, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, t.ID, t.Name, t.TaxID, t.Address, t.Country, t.ExerciseYear, t.ChartTemplate,
		t.BaseCurrency, t.ReferenceCurrency, t.DefaultExchangeRate, t.Status, t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("tenant", "tax_id", t.TaxID).WithCause(err)
		}
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) UpdateStatusByID(ctx context.Context, tenantID id.ID, status Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tenants
		SET status = $2
		WHERE id = $1
	`, tenantID, status)
	if err != nil {
		return fmt.Errorf("update tenant status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

var _ Registry = (*PostgresRegistry)(nil)
