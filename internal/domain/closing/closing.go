// Package closing transfers the year's class 6 and 7 balances to the
// profit and loss account (apuramento de resultados).
package closing

import (
	"context"
	"fmt"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/pgc"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/posting"
	"pgcledger/internal/domain/reports"
	"pgcledger/pkg/logger"
)

// Line is one result account and its balance for the year.
type Line struct {
	AccountID   id.ID       `json:"accountId"`
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Balance     types.Money `json:"balance"`
}

// Preview is what closing a year would post.
type Preview struct {
	Year          int         `json:"year"`
	Expenses      []Line      `json:"expenses"`
	Revenues      []Line      `json:"revenues"`
	TotalExpenses types.Money `json:"totalExpenses"`
	TotalRevenues types.Money `json:"totalRevenues"`
	NetResult     types.Money `json:"netResult"`
	Closed        bool        `json:"closed"`
}

// Service closes fiscal years.
type Service struct {
	repo   reports.Repository
	engine *posting.Engine
}

// NewService creates a new closing service.
func NewService(repo reports.Repository, engine *posting.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

// Preview lists the non-zero class 6 and 7 balances of year, leaving
// earlier closing entries out.
func (s *Service) Preview(ctx context.Context, tenantID id.ID, year int) (*Preview, error) {
	rows, err := s.repo.Totals(ctx, tenantID, reports.MovementFilter{
		Period:       reports.Year(year),
		CodePrefixes: []string{"6", "7"},
		ExcludeKinds: []posting.EntryKind{posting.KindClosing},
	})
	if err != nil {
		return nil, fmt.Errorf("account totals: %w", err)
	}

	p := &Preview{Year: year, TotalExpenses: types.Zero(), TotalRevenues: types.Zero()}
	for _, r := range rows {
		signed := pgc.SignedBalance(r.Code, r.Debit, r.Credit)
		if signed.IsZero() {
			continue
		}
		line := Line{AccountID: r.AccountID, Code: r.Code, Description: r.Description, Balance: signed}
		switch pgc.ClassDigit(r.Code) {
		case "6":
			p.Expenses = append(p.Expenses, line)
			p.TotalExpenses = p.TotalExpenses.Add(signed)
		case "7":
			p.Revenues = append(p.Revenues, line)
			p.TotalRevenues = p.TotalRevenues.Add(signed)
		}
	}
	p.NetResult = p.TotalRevenues.Sub(p.TotalExpenses)

	if _, err := s.engine.Find(ctx, tenantID, key(tenantID, year)); err == nil {
		p.Closed = true
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}
	return p, nil
}

// CloseYear posts the closing entry of year on 31 December: expense
// accounts are credited, revenue accounts debited, and the profit and loss
// account takes the net result. A year closes once.
func (s *Service) CloseYear(ctx context.Context, tenantID id.ID, year int) (posting.Result, error) {
	p, err := s.Preview(ctx, tenantID, year)
	if err != nil {
		return posting.Result{}, err
	}
	if p.Closed {
		existing, err := s.engine.Find(ctx, tenantID, key(tenantID, year))
		if err != nil {
			return posting.Result{}, err
		}
		return posting.AlreadyPosted(existing), nil
	}
	if len(p.Expenses) == 0 && len(p.Revenues) == 0 {
		return posting.Result{}, apperror.NewBusinessRule(apperror.CodeBusinessRule, "no result balances to close").
			WithDetail("year", year)
	}

	legs := make([]posting.Leg, 0, len(p.Expenses)+len(p.Revenues)+1)
	for _, l := range p.Expenses {
		legs = append(legs, zeroing(l, posting.Credit))
	}
	for _, l := range p.Revenues {
		legs = append(legs, zeroing(l, posting.Debit))
	}
	if p.NetResult.IsPositive() {
		legs = append(legs, posting.CreditRole(posting.RoleProfitLoss, p.NetResult))
	} else if p.NetResult.IsNegative() {
		legs = append(legs, posting.DebitRole(posting.RoleProfitLoss, p.NetResult.Abs()))
	}

	k := key(tenantID, year)
	result, err := s.engine.Post(ctx, posting.Request{
		TenantID:    tenantID,
		Key:         &k,
		Kind:        posting.KindClosing,
		Date:        time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		Description: fmt.Sprintf("Apuramento de resultados %d", year),
		Legs:        legs,
	})
	if err != nil {
		return posting.Result{}, err
	}
	logger.Info(ctx, "fiscal year closed",
		"year", year,
		"net_result", p.NetResult.StringFixed(2),
		"posting", result.Status)
	return result, nil
}

// zeroing posts the balance on side, or its absolute value on the other
// side when the balance runs against the account's nature.
func zeroing(l Line, side posting.Side) posting.Leg {
	if l.Balance.IsNegative() {
		side = side.Opposite()
	}
	accountID := l.AccountID
	return posting.Leg{AccountID: &accountID, Side: side, Amount: l.Balance.Abs(), Memo: l.Code}
}

func key(tenantID id.ID, year int) posting.Key {
	return posting.Key{SourceType: posting.SourceClosing, SourceID: tenantID, Event: posting.YearEvent(year)}
}
