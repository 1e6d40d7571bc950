package memory

import (
	"context"
	"sort"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/payroll"
)

// PayrollRepo implements payroll.Repository.
type PayrollRepo struct{ s *Store }

var _ payroll.Repository = (*PayrollRepo)(nil)

// Payroll returns the payroll repository.
func (s *Store) Payroll() *PayrollRepo { return &PayrollRepo{s: s} }

func (r *PayrollRepo) GetEmployee(ctx context.Context, tenantID, employeeID id.ID) (*payroll.Employee, error) {
	var (
		e  payroll.Employee
		ok bool
	)
	r.s.read(func(d *state) { e, ok = d.employees[employeeID] })
	if !ok || e.TenantID != tenantID {
		return nil, apperror.NewNotFound("employee", employeeID.String())
	}
	return &e, nil
}

func (r *PayrollRepo) ListEmployees(ctx context.Context, tenantID id.ID, activeOnly bool) ([]*payroll.Employee, error) {
	var out []*payroll.Employee
	r.s.read(func(d *state) {
		for _, e := range d.employees {
			if e.TenantID == tenantID && (!activeOnly || e.Active) {
				e := e
				out = append(out, &e)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *PayrollRepo) CreateEmployee(ctx context.Context, e *payroll.Employee) error {
	return r.s.write(func(d *state) error {
		d.employees[e.ID] = *e
		return nil
	})
}

func (r *PayrollRepo) UpdateEmployee(ctx context.Context, e *payroll.Employee) error {
	return r.s.write(func(d *state) error {
		cur, ok := d.employees[e.ID]
		if !ok || cur.TenantID != e.TenantID {
			return apperror.NewNotFound("employee", e.ID.String())
		}
		if cur.Version != e.Version {
			return apperror.NewConcurrentModification("employee", e.ID.String())
		}
		e.Version++
		d.employees[e.ID] = *e
		return nil
	})
}

func (r *PayrollRepo) CreateAbsence(ctx context.Context, a *payroll.Absence) error {
	return r.s.write(func(d *state) error {
		d.absences = append(d.absences, *a)
		return nil
	})
}

func (r *PayrollRepo) CreateOvertime(ctx context.Context, o *payroll.Overtime) error {
	return r.s.write(func(d *state) error {
		d.overtime = append(d.overtime, *o)
		return nil
	})
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func (r *PayrollRepo) ListAbsences(ctx context.Context, tenantID, employeeID id.ID, from, to time.Time) ([]payroll.Absence, error) {
	var out []payroll.Absence
	r.s.read(func(d *state) {
		for _, a := range d.absences {
			if a.TenantID == tenantID && a.EmployeeID == employeeID && inRange(a.Date, from, to) {
				out = append(out, a)
			}
		}
	})
	return out, nil
}

func (r *PayrollRepo) ListOvertime(ctx context.Context, tenantID, employeeID id.ID, from, to time.Time) ([]payroll.Overtime, error) {
	var out []payroll.Overtime
	r.s.read(func(d *state) {
		for _, o := range d.overtime {
			if o.TenantID == tenantID && o.EmployeeID == employeeID && inRange(o.Date, from, to) {
				out = append(out, o)
			}
		}
	})
	return out, nil
}

func (r *PayrollRepo) FindRun(ctx context.Context, tenantID, employeeID id.ID, month, year int) (*payroll.Run, error) {
	var found *payroll.Run
	r.s.read(func(d *state) {
		for _, run := range d.runs {
			if run.TenantID == tenantID && run.EmployeeID == employeeID && run.Month == month && run.Year == year {
				run := run
				found = &run
				return
			}
		}
	})
	if found == nil {
		return nil, apperror.NewNotFound("payroll run", employeeID.String())
	}
	return found, nil
}

func (r *PayrollRepo) GetRun(ctx context.Context, tenantID, runID id.ID) (*payroll.Run, error) {
	var (
		run payroll.Run
		ok  bool
	)
	r.s.read(func(d *state) { run, ok = d.runs[runID] })
	if !ok || run.TenantID != tenantID {
		return nil, apperror.NewNotFound("payroll run", runID.String())
	}
	return &run, nil
}

func (r *PayrollRepo) ListRuns(ctx context.Context, tenantID id.ID, month, year int) ([]*payroll.Run, error) {
	return r.runs(tenantID, month, year, false), nil
}

func (r *PayrollRepo) ListUnpostedForUpdate(ctx context.Context, tenantID id.ID, month, year int) ([]*payroll.Run, error) {
	return r.runs(tenantID, month, year, true), nil
}

func (r *PayrollRepo) runs(tenantID id.ID, month, year int, unpostedOnly bool) []*payroll.Run {
	var out []*payroll.Run
	r.s.read(func(d *state) {
		for _, run := range d.runs {
			if run.TenantID != tenantID || run.Month != month || run.Year != year {
				continue
			}
			if unpostedOnly && run.Posted {
				continue
			}
			run := run
			out = append(out, &run)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out
}

func (r *PayrollRepo) SaveRun(ctx context.Context, run *payroll.Run) error {
	return r.s.write(func(d *state) error {
		for runID, other := range d.runs {
			if other.TenantID == run.TenantID && other.EmployeeID == run.EmployeeID &&
				other.Month == run.Month && other.Year == run.Year && runID != run.ID {
				// one run per employee and month: the existing row keeps its ID
				run.ID = runID
			}
		}
		d.runs[run.ID] = *run
		return nil
	})
}

func (r *PayrollRepo) MarkPosted(ctx context.Context, tenantID id.ID, runIDs []id.ID, entryID id.ID) error {
	return r.s.write(func(d *state) error {
		for _, runID := range runIDs {
			run, ok := d.runs[runID]
			if !ok || run.TenantID != tenantID {
				return apperror.NewNotFound("payroll run", runID.String())
			}
			run.Posted = true
			run.EntryID = &entryID
			d.runs[runID] = run
		}
		return nil
	})
}
