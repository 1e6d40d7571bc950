package expense

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pgcledger/internal/core/entity"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/numerator"
	"pgcledger/internal/core/tx"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/parties"
	"pgcledger/internal/domain/posting"
	"pgcledger/pkg/logger"
)

// Service records expenses and posts them.
type Service struct {
	repo      Repository
	parties   documents.PartyAccounts
	engine    *posting.Engine
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new expense service.
func NewService(repo Repository, partyAccounts documents.PartyAccounts, engine *posting.Engine, gen numerator.Generator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		parties:   partyAccounts,
		engine:    engine,
		numerator: gen,
		txManager: txManager,
	}
}

// CreateInput carries a new expense.
type CreateInput struct {
	Kind        Kind
	Date        time.Time
	Description string
	Amount      types.Money
	Method      documents.PaymentMethod
	SupplierID  *id.ID
	Comment     string
}

// Create numbers, stores and posts an expense in one transaction.
func (s *Service) Create(ctx context.Context, tenantID id.ID, in CreateInput) (*Expense, posting.Result, error) {
	method := in.Method
	if method == "" {
		method = documents.MethodCash
	}
	e := &Expense{
		Document:    entity.NewDocument(tenantID, in.Date),
		Kind:        in.Kind,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Method:      method,
		SupplierID:  in.SupplierID,
	}
	e.Comment = in.Comment
	if err := e.Validate(ctx); err != nil {
		return nil, posting.Result{}, err
	}
	if e.SupplierID != nil {
		if _, err := documents.RequireParty(ctx, s.parties, tenantID, *e.SupplierID, parties.KindSupplier); err != nil {
			return nil, posting.Result{}, err
		}
	}

	var result posting.Result
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx,
			numerator.DefaultConfig(tenantID.String(), numerator.PrefixExpense), e.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		e.Number = number

		if err := s.repo.Create(ctx, e); err != nil {
			return fmt.Errorf("create expense: %w", err)
		}
		result, err = s.post(ctx, e)
		return err
	})
	if err != nil {
		return nil, posting.Result{}, err
	}

	logger.Info(ctx, "expense recorded",
		"number", e.Number,
		"amount", e.Amount.StringFixed(2),
		"posting", result.Status)
	return e, result, nil
}

// Post retries the posting of an expense that was skipped.
func (s *Service) Post(ctx context.Context, tenantID, expenseID id.ID) (posting.Result, error) {
	var result posting.Result
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		e, err := s.repo.GetByID(ctx, tenantID, expenseID)
		if err != nil {
			return err
		}
		result, err = s.post(ctx, e)
		return err
	})
	return result, err
}

//	D expense            amount
//	C supplier | cash    amount
func (s *Service) post(ctx context.Context, e *Expense) (posting.Result, error) {
	credit := posting.CreditRole(e.Method.Role(), e.Amount)
	if e.SupplierID != nil {
		acc, reason, err := documents.ResolvePartyAccount(ctx, s.parties, e.TenantID, *e.SupplierID)
		if err != nil {
			return posting.Result{}, err
		}
		if acc == nil {
			return posting.Skipped("%s", reason), nil
		}
		credit = posting.CreditAccount(acc.ID, e.Amount)
	}

	result, err := s.engine.Post(ctx, posting.Request{
		TenantID:    e.TenantID,
		Key:         &posting.Key{SourceType: posting.SourceExpense, SourceID: e.ID, Event: posting.EventCreate},
		Date:        e.Date,
		Description: fmt.Sprintf("Expense %s: %s", e.Number, e.Description),
		Legs: []posting.Leg{
			posting.DebitRole(posting.RoleExpense, e.Amount),
			credit,
		},
	})
	if err != nil {
		return posting.Result{}, err
	}
	if result.Status == posting.StatusPosted {
		e.EntryID = &result.Entry.ID
		if err := s.repo.LinkEntry(ctx, e.TenantID, e.ID, result.Entry.ID); err != nil {
			return posting.Result{}, fmt.Errorf("link expense entry: %w", err)
		}
	}
	return result, nil
}

// GetByID returns one expense.
func (s *Service) GetByID(ctx context.Context, tenantID, expenseID id.ID) (*Expense, error) {
	return s.repo.GetByID(ctx, tenantID, expenseID)
}

// List returns the expenses of the tenant.
func (s *Service) List(ctx context.Context, tenantID id.ID, filter Filter) ([]*Expense, error) {
	return s.repo.List(ctx, tenantID, filter)
}
