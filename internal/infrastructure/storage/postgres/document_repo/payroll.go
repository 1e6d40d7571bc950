package document_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/payroll"
	"pgcledger/internal/infrastructure/storage/postgres"
)

const (
	employeesTable = "employees"
	absencesTable  = "employee_absences"
	overtimeTable  = "employee_overtime"
	runsTable      = "payroll_runs"
)

// runKey identifies the single run of an employee for a month.
var runKey = []string{"tenant_id", "employee_id", "month", "year"}

// PayrollRepo implements payroll.Repository.
type PayrollRepo struct {
	employees *BaseDocumentRepo[*payroll.Employee]
	absences  *BaseDocumentRepo[*payroll.Absence]
	overtime  *BaseDocumentRepo[*payroll.Overtime]
	runs      *BaseDocumentRepo[*payroll.Run]
}

var _ payroll.Repository = (*PayrollRepo)(nil)

// NewPayrollRepo creates a new payroll repository.
func NewPayrollRepo(txManager *postgres.TxManager) *PayrollRepo {
	return &PayrollRepo{
		employees: NewBaseDocumentRepo(txManager, employeesTable, "employee",
			postgres.ExtractDBColumns[payroll.Employee](),
			func() *payroll.Employee { return &payroll.Employee{} }),
		absences: NewBaseDocumentRepo(txManager, absencesTable, "absence",
			postgres.ExtractDBColumns[payroll.Absence](),
			func() *payroll.Absence { return &payroll.Absence{} }),
		overtime: NewBaseDocumentRepo(txManager, overtimeTable, "overtime",
			postgres.ExtractDBColumns[payroll.Overtime](),
			func() *payroll.Overtime { return &payroll.Overtime{} }),
		runs: NewBaseDocumentRepo(txManager, runsTable, "payroll run",
			postgres.ExtractDBColumns[payroll.Run](),
			func() *payroll.Run { return &payroll.Run{} }),
	}
}

func (r *PayrollRepo) GetEmployee(ctx context.Context, tenantID, employeeID id.ID) (*payroll.Employee, error) {
	return r.employees.GetByID(ctx, tenantID, employeeID)
}

func (r *PayrollRepo) ListEmployees(ctx context.Context, tenantID id.ID, activeOnly bool) ([]*payroll.Employee, error) {
	q := r.employees.baseSelect(tenantID)
	if activeOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}
	var out []*payroll.Employee
	if err := selectInto(ctx, r.employees.querier(ctx), &out, q.OrderBy("name")); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return out, nil
}

func (r *PayrollRepo) CreateEmployee(ctx context.Context, e *payroll.Employee) error {
	return r.employees.Create(ctx, e)
}

func (r *PayrollRepo) UpdateEmployee(ctx context.Context, e *payroll.Employee) error {
	return r.employees.Update(ctx, e)
}

func (r *PayrollRepo) CreateAbsence(ctx context.Context, a *payroll.Absence) error {
	return r.absences.Create(ctx, a)
}

func (r *PayrollRepo) CreateOvertime(ctx context.Context, o *payroll.Overtime) error {
	return r.overtime.Create(ctx, o)
}

// periodQuery selects one employee's records dated in [from, to].
func periodQuery[T any](base *BaseDocumentRepo[T], tenantID, employeeID id.ID, from, to time.Time) squirrel.SelectBuilder {
	return base.baseSelect(tenantID).
		Where(squirrel.Eq{"employee_id": employeeID}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		OrderBy("date")
}

func (r *PayrollRepo) ListAbsences(ctx context.Context, tenantID, employeeID id.ID, from, to time.Time) ([]payroll.Absence, error) {
	var out []payroll.Absence
	q := periodQuery(r.absences, tenantID, employeeID, from, to)
	if err := selectInto(ctx, r.absences.querier(ctx), &out, q); err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}
	return out, nil
}

func (r *PayrollRepo) ListOvertime(ctx context.Context, tenantID, employeeID id.ID, from, to time.Time) ([]payroll.Overtime, error) {
	var out []payroll.Overtime
	q := periodQuery(r.overtime, tenantID, employeeID, from, to)
	if err := selectInto(ctx, r.overtime.querier(ctx), &out, q); err != nil {
		return nil, fmt.Errorf("list overtime: %w", err)
	}
	return out, nil
}

func (r *PayrollRepo) FindRun(ctx context.Context, tenantID, employeeID id.ID, month, year int) (*payroll.Run, error) {
	q := r.runs.baseSelect(tenantID).
		Where(squirrel.Eq{"employee_id": employeeID}).
		Where(squirrel.Eq{"month": month}).
		Where(squirrel.Eq{"year": year})
	return r.runs.get(ctx, q, fmt.Sprintf("%s %02d/%d", employeeID, month, year))
}

func (r *PayrollRepo) GetRun(ctx context.Context, tenantID, runID id.ID) (*payroll.Run, error) {
	return r.runs.GetByID(ctx, tenantID, runID)
}

func (r *PayrollRepo) periodRunsQuery(tenantID id.ID, month, year int) squirrel.SelectBuilder {
	return r.runs.baseSelect(tenantID).
		Where(squirrel.Eq{"month": month}).
		Where(squirrel.Eq{"year": year}).
		OrderBy("employee_name")
}

func (r *PayrollRepo) ListRuns(ctx context.Context, tenantID id.ID, month, year int) ([]*payroll.Run, error) {
	var out []*payroll.Run
	if err := selectInto(ctx, r.runs.querier(ctx), &out, r.periodRunsQuery(tenantID, month, year)); err != nil {
		return nil, fmt.Errorf("list payroll runs: %w", err)
	}
	return out, nil
}

func (r *PayrollRepo) ListUnpostedForUpdate(ctx context.Context, tenantID id.ID, month, year int) ([]*payroll.Run, error) {
	q := r.periodRunsQuery(tenantID, month, year).
		Where(squirrel.Eq{"posted": false}).
		Suffix("FOR UPDATE")

	var out []*payroll.Run
	if err := selectInto(ctx, r.runs.querier(ctx), &out, q); err != nil {
		return nil, fmt.Errorf("lock payroll runs: %w", err)
	}
	return out, nil
}

// saveRunQuery upserts on the period key; an existing row keeps its ID.
func (r *PayrollRepo) saveRunQuery(run *payroll.Run) squirrel.InsertBuilder {
	cols := r.runs.selectCols
	updates := postgres.Without(cols, append([]string{"id"}, runKey...)...)
	set := make([]string, len(updates))
	for i, c := range updates {
		set[i] = c + " = EXCLUDED." + c
	}

	return r.runs.Builder().
		Insert(runsTable).
		Columns(cols...).
		Values(postgres.Values(run, cols)...).
		Suffix("ON CONFLICT (" + strings.Join(runKey, ", ") + ") DO UPDATE SET " +
			strings.Join(set, ", ") + " RETURNING id")
}

func (r *PayrollRepo) SaveRun(ctx context.Context, run *payroll.Run) error {
	sql, args, err := r.saveRunQuery(run).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if err := r.runs.querier(ctx).QueryRow(ctx, sql, args...).Scan(&run.ID); err != nil {
		return postgres.MapError(err, "payroll run", run.EmployeeID)
	}
	return nil
}

func (r *PayrollRepo) markPostedQuery(tenantID id.ID, runIDs []id.ID, entryID id.ID) squirrel.UpdateBuilder {
	return r.runs.Builder().
		Update(runsTable).
		Set("posted", true).
		Set("entry_id", entryID).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"id": runIDs})
}

// MarkPosted fails with NotFound unless every run was updated.
func (r *PayrollRepo) MarkPosted(ctx context.Context, tenantID id.ID, runIDs []id.ID, entryID id.ID) error {
	if len(runIDs) == 0 {
		return nil
	}
	sql, args, err := r.markPostedQuery(tenantID, runIDs, entryID).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.runs.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "payroll run", entryID)
	}
	if int(result.RowsAffected()) != len(runIDs) {
		return apperror.NewNotFound("payroll run", fmt.Sprint(runIDs))
	}
	return nil
}

// selectInto scans every row of q into dst.
func selectInto(ctx context.Context, querier postgres.Querier, dst any, q squirrel.SelectBuilder) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, querier, dst, sql, args...)
}
