package payroll

import (
	"context"
	"time"

	"pgcledger/internal/core/id"
)

// Repository persists employees, their monthly records and payroll runs.
// Every method is scoped to one tenant.
type Repository interface {
	GetEmployee(ctx context.Context, tenantID, employeeID id.ID) (*Employee, error)
	ListEmployees(ctx context.Context, tenantID id.ID, activeOnly bool) ([]*Employee, error)
	CreateEmployee(ctx context.Context, e *Employee) error
	UpdateEmployee(ctx context.Context, e *Employee) error

	CreateAbsence(ctx context.Context, a *Absence) error
	CreateOvertime(ctx context.Context, o *Overtime) error

	// ListAbsences and ListOvertime return the records dated in [from, to].
	ListAbsences(ctx context.Context, tenantID, employeeID id.ID, from, to time.Time) ([]Absence, error)
	ListOvertime(ctx context.Context, tenantID, employeeID id.ID, from, to time.Time) ([]Overtime, error)

	// FindRun returns NotFound when the employee has no run for the month.
	FindRun(ctx context.Context, tenantID, employeeID id.ID, month, year int) (*Run, error)
	GetRun(ctx context.Context, tenantID, runID id.ID) (*Run, error)
	ListRuns(ctx context.Context, tenantID id.ID, month, year int) ([]*Run, error)

	// ListUnpostedForUpdate locks the pending runs of a period.
	ListUnpostedForUpdate(ctx context.Context, tenantID id.ID, month, year int) ([]*Run, error)

	// SaveRun inserts or replaces the run of (employee, month, year).
	SaveRun(ctx context.Context, r *Run) error

	MarkPosted(ctx context.Context, tenantID id.ID, runIDs []id.ID, entryID id.ID) error
}
