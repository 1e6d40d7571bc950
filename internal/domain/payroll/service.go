package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/entity"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/tx"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/domain/tax"
	"pgcledger/pkg/logger"
)

// Service runs and posts payroll.
type Service struct {
	repo      Repository
	taxes     *tax.Service
	engine    *posting.Engine
	txManager tx.Manager
	settings  Settings
}

// NewService creates a payroll service.
func NewService(repo Repository, taxes *tax.Service, engine *posting.Engine, txManager tx.Manager, settings Settings) *Service {
	return &Service{
		repo:      repo,
		taxes:     taxes,
		engine:    engine,
		txManager: txManager,
		settings:  settings,
	}
}

// CreateEmployee validates and stores a new employee.
func (s *Service) CreateEmployee(ctx context.Context, e *Employee) error {
	if id.IsNil(e.ID) {
		e.BaseEntity = entity.NewBaseEntity()
	}
	if err := e.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.CreateEmployee(ctx, e); err != nil {
		return err
	}
	logger.Info(ctx, "employee created", "id", e.ID, "name", e.Name)
	return nil
}

// UpdateEmployee validates and stores employee changes.
func (s *Service) UpdateEmployee(ctx context.Context, e *Employee) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}
	return s.repo.UpdateEmployee(ctx, e)
}

// GetEmployee returns one employee.
func (s *Service) GetEmployee(ctx context.Context, tenantID, employeeID id.ID) (*Employee, error) {
	return s.repo.GetEmployee(ctx, tenantID, employeeID)
}

// ListEmployees returns the employees of the tenant.
func (s *Service) ListEmployees(ctx context.Context, tenantID id.ID, activeOnly bool) ([]*Employee, error) {
	return s.repo.ListEmployees(ctx, tenantID, activeOnly)
}

// RecordAbsence stores missed hours for an employee.
func (s *Service) RecordAbsence(ctx context.Context, a *Absence) error {
	if !a.Hours.IsPositive() {
		return apperror.NewValidation("hours must be positive").WithDetail("field", "hours")
	}
	if _, err := s.repo.GetEmployee(ctx, a.TenantID, a.EmployeeID); err != nil {
		return err
	}
	if id.IsNil(a.ID) {
		a.ID = id.New()
	}
	return s.repo.CreateAbsence(ctx, a)
}

// RecordOvertime stores extra hours for an employee.
func (s *Service) RecordOvertime(ctx context.Context, o *Overtime) error {
	if !o.Hours.IsPositive() {
		return apperror.NewValidation("hours must be positive").WithDetail("field", "hours")
	}
	if o.Tier != Tier50 && o.Tier != Tier100 {
		return apperror.NewValidation("overtime tier must be 50 or 100").WithDetail("tier", o.Tier)
	}
	if _, err := s.repo.GetEmployee(ctx, o.TenantID, o.EmployeeID); err != nil {
		return err
	}
	if id.IsNil(o.ID) {
		o.ID = id.New()
	}
	return s.repo.CreateOvertime(ctx, o)
}

// MonthInputs sums the unjustified absence hours and the overtime hours
// recorded for the month.
func (s *Service) MonthInputs(ctx context.Context, tenantID, employeeID id.ID, month, year int) (Inputs, error) {
	from, to := periodBounds(month, year)
	in := Inputs{
		AbsenceHours:     decimal.Zero,
		Overtime50Hours:  decimal.Zero,
		Overtime100Hours: decimal.Zero,
	}

	absences, err := s.repo.ListAbsences(ctx, tenantID, employeeID, from, to)
	if err != nil {
		return in, fmt.Errorf("list absences: %w", err)
	}
	for _, a := range absences {
		if !a.Justified {
			in.AbsenceHours = in.AbsenceHours.Add(a.Hours)
		}
	}

	overtime, err := s.repo.ListOvertime(ctx, tenantID, employeeID, from, to)
	if err != nil {
		return in, fmt.Errorf("list overtime: %w", err)
	}
	for _, o := range overtime {
		if o.Tier == Tier100 {
			in.Overtime100Hours = in.Overtime100Hours.Add(o.Hours)
		} else {
			in.Overtime50Hours = in.Overtime50Hours.Add(o.Hours)
		}
	}
	return in, nil
}

// RunPayroll computes the month for every active employee. Runs already
// posted are returned unchanged; the others are recomputed from the
// month's records. Once a month is posted no new runs are added to it.
func (s *Service) RunPayroll(ctx context.Context, tenantID id.ID, month, year int) ([]*Run, error) {
	if err := validPeriod(month, year); err != nil {
		return nil, err
	}
	table, err := s.taxes.Brackets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load IRT table: %w", err)
	}
	settings, err := s.effectiveSettings(ctx)
	if err != nil {
		return nil, err
	}
	employees, err := s.repo.ListEmployees(ctx, tenantID, true)
	if err != nil {
		return nil, err
	}

	runs := make([]*Run, 0, len(employees))
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		periodRuns, err := s.repo.ListRuns(ctx, tenantID, month, year)
		if err != nil {
			return err
		}
		periodPosted := false
		for _, r := range periodRuns {
			periodPosted = periodPosted || r.Posted
		}

		for _, emp := range employees {
			existing, err := s.repo.FindRun(ctx, tenantID, emp.ID, month, year)
			if err != nil && !apperror.IsNotFound(err) {
				return err
			}
			if existing != nil && existing.Posted {
				runs = append(runs, existing)
				continue
			}
			if existing == nil && periodPosted {
				logger.Warn(ctx, "payroll period already posted, employee left out",
					"employee", emp.Name, "month", month, "year", year)
				continue
			}

			in, err := s.MonthInputs(ctx, tenantID, emp.ID, month, year)
			if err != nil {
				return err
			}
			run := s.newRun(emp, existing, month, year, in, settings, table)
			if err := s.repo.SaveRun(ctx, run); err != nil {
				return fmt.Errorf("save run for %s: %w", emp.Name, err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payroll processed", "month", month, "year", year, "employees", len(runs))
	return runs, nil
}

// Recalculate recomputes one run with explicit inputs. Posted runs are frozen.
func (s *Service) Recalculate(ctx context.Context, tenantID, runID id.ID, in Inputs) (*Run, error) {
	for field, v := range map[string]decimal.Decimal{
		"absenceHours":     in.AbsenceHours,
		"overtime50Hours":  in.Overtime50Hours,
		"overtime100Hours": in.Overtime100Hours,
	} {
		if v.IsNegative() {
			return nil, apperror.NewValidation("hours must not be negative").WithDetail("field", field)
		}
	}

	table, err := s.taxes.Brackets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load IRT table: %w", err)
	}
	settings, err := s.effectiveSettings(ctx)
	if err != nil {
		return nil, err
	}

	var run *Run
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetRun(ctx, tenantID, runID)
		if err != nil {
			return err
		}
		if existing.Posted {
			return apperror.NewBusinessRule(apperror.CodeDocumentPosted, "payroll run is already posted")
		}
		emp, err := s.repo.GetEmployee(ctx, tenantID, existing.EmployeeID)
		if err != nil {
			return err
		}
		run = s.newRun(emp, existing, existing.Month, existing.Year, in, settings, table)
		return s.repo.SaveRun(ctx, run)
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Runs returns the runs of a period.
func (s *Service) Runs(ctx context.Context, tenantID id.ID, month, year int) ([]*Run, error) {
	if err := validPeriod(month, year); err != nil {
		return nil, err
	}
	return s.repo.ListRuns(ctx, tenantID, month, year)
}

// PostPayroll posts every pending run of the period as one entry dated on
// the last day of the month: Debit payroll expense for gross plus employer
// social security; Credit the tax authority for both social security parts
// plus IRT; Credit payroll payable for net pay. The posted runs are linked
// to the entry in the same transaction.
func (s *Service) PostPayroll(ctx context.Context, tenantID id.ID, month, year int) (posting.Result, error) {
	if err := validPeriod(month, year); err != nil {
		return posting.Result{}, err
	}
	_, periodEnd := periodBounds(month, year)

	var result posting.Result
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		runs, err := s.repo.ListUnpostedForUpdate(ctx, tenantID, month, year)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "no pending payroll runs for the period").
				WithDetail("month", month).
				WithDetail("year", year)
		}

		t := Summarize(runs)
		// One payroll entry per company and month.
		key := posting.Key{
			SourceType: posting.SourcePayroll,
			SourceID:   tenantID,
			Event:      posting.PeriodEvent(year, month),
		}
		result, err = s.engine.Post(ctx, posting.Request{
			TenantID:    tenantID,
			Key:         &key,
			Kind:        posting.KindNormal,
			Date:        periodEnd,
			Description: fmt.Sprintf("Processamento Salarial - %02d/%d", month, year),
			Legs: []posting.Leg{
				posting.DebitRole(posting.RolePayrollExpense, t.Gross.Add(t.EmployerSocial)),
				posting.CreditRole(posting.RolePayrollTax, t.EmployeeSocial.Add(t.EmployerSocial).Add(t.IRT)),
				posting.CreditRole(posting.RolePayrollPayable, t.Net),
			},
		})
		if err != nil {
			return err
		}
		if result.Status == posting.StatusAlreadyPosted {
			return apperror.NewBusinessRule(apperror.CodeDocumentPosted, "payroll for the period is already posted").
				WithDetail("month", month).
				WithDetail("year", year)
		}
		if !result.HasEntry() {
			return nil
		}

		ids := make([]id.ID, len(runs))
		for i, r := range runs {
			ids[i] = r.ID
		}
		return s.repo.MarkPosted(ctx, tenantID, ids, result.Entry.ID)
	})
	if err != nil {
		return posting.Result{}, err
	}
	return result, nil
}

func (s *Service) newRun(emp *Employee, existing *Run, month, year int, in Inputs, settings Settings, table tax.Table) *Run {
	run := &Run{
		ID:           id.New(),
		TenantID:     emp.TenantID,
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Month:        month,
		Year:         year,
		ProcessedOn:  time.Now().UTC(),
		Inputs:       in,
		Breakdown:    Calculate(emp.Pay(), in, settings, table),
	}
	if existing != nil {
		run.ID = existing.ID
	}
	return run
}

// effectiveSettings takes the social security rates from the tax catalog
// when present there.
func (s *Service) effectiveSettings(ctx context.Context) (Settings, error) {
	settings := s.settings
	var err error
	settings.EmployeeRate, err = s.taxes.RateValue(ctx, tax.RateSocialEmployee, settings.EmployeeRate)
	if err != nil {
		return settings, err
	}
	settings.EmployerRate, err = s.taxes.RateValue(ctx, tax.RateSocialEmployer, settings.EmployerRate)
	if err != nil {
		return settings, err
	}
	return settings, nil
}
