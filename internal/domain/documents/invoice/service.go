package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/numerator"
	"pgcledger/internal/core/tx"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/parties"
	"pgcledger/internal/domain/posting"
	"pgcledger/pkg/logger"
)

const entityName = "invoice"

// Service provides business operations for invoices. Every transition
// locks the invoice and posts in the same transaction.
type Service struct {
	repo      Repository
	payments  documents.PaymentRepository
	parties   documents.PartyAccounts
	rates     documents.RateSource
	engine    *posting.Engine
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new invoice service. rates may be nil.
func NewService(
	repo Repository,
	payments documents.PaymentRepository,
	partyAccounts documents.PartyAccounts,
	rates documents.RateSource,
	engine *posting.Engine,
	gen numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		payments:  payments,
		parties:   partyAccounts,
		rates:     rates,
		engine:    engine,
		numerator: gen,
		txManager: txManager,
	}
}

// CreateInput carries a new draft.
type CreateInput struct {
	CustomerID       id.ID
	Date             time.Time
	DueDate          time.Time
	CustomerRef      string
	Comment          string
	Items            []documents.ItemInput
	ApplyWithholding bool
	WithholdingRate  decimal.Decimal
}

// Create numbers and stores a draft invoice.
func (s *Service) Create(ctx context.Context, tenantID id.ID, in CreateInput) (*Invoice, error) {
	if _, err := documents.RequireParty(ctx, s.parties, tenantID, in.CustomerID, parties.KindCustomer); err != nil {
		return nil, err
	}
	rate, err := documents.WithholdingRate(ctx, s.rates, in.ApplyWithholding, in.WithholdingRate)
	if err != nil {
		return nil, err
	}

	inv := New(tenantID, in.CustomerID, in.Date, in.DueDate)
	inv.CustomerRef = strings.TrimSpace(in.CustomerRef)
	inv.Comment = in.Comment
	inv.Items = documents.BuildItems(in.Items)
	inv.ApplyWithholding = in.ApplyWithholding
	inv.WithholdingRate = rate
	inv.Recompute()
	if err := inv.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx,
			numerator.DefaultConfig(tenantID.String(), numerator.PrefixInvoice), inv.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		inv.Number = number

		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return s.repo.SaveItems(ctx, inv.ID, inv.Items)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice created",
		"id", inv.ID,
		"number", inv.Number,
		"grand_total", inv.GrandTotal.StringFixed(2))
	return inv, nil
}

// UpdateInput replaces the editable fields of a draft.
type UpdateInput struct {
	Date             time.Time
	DueDate          time.Time
	CustomerRef      string
	Comment          string
	Items            []documents.ItemInput
	ApplyWithholding bool
	WithholdingRate  decimal.Decimal
}

// Update rewrites a draft invoice and recomputes its totals.
func (s *Service) Update(ctx context.Context, tenantID, invoiceID id.ID, in UpdateInput) (*Invoice, error) {
	rate, err := documents.WithholdingRate(ctx, s.rates, in.ApplyWithholding, in.WithholdingRate)
	if err != nil {
		return nil, err
	}

	var inv *Invoice
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err = s.repo.GetForUpdate(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := inv.CanModify(); err != nil {
			return err
		}
		inv.Date = in.Date
		inv.DueDate = in.DueDate
		inv.CustomerRef = strings.TrimSpace(in.CustomerRef)
		inv.Comment = in.Comment
		inv.Items = documents.BuildItems(in.Items)
		inv.ApplyWithholding = in.ApplyWithholding
		inv.WithholdingRate = rate
		inv.Recompute()
		if err := inv.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		return s.repo.SaveItems(ctx, inv.ID, inv.Items)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Delete removes a draft invoice.
func (s *Service) Delete(ctx context.Context, tenantID, invoiceID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetForUpdate(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := inv.CanModify(); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tenantID, invoiceID)
	})
}

// GetByID retrieves an invoice with its items.
func (s *Service) GetByID(ctx context.Context, tenantID, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	inv.Items = items
	return inv, nil
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, tenantID id.ID, filter ListFilter) (domain.ListResult[*Invoice], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, tenantID, filter)
}

// Issue moves a draft to ISSUED and posts the sale. The transition holds
// even when the posting is skipped for a missing account; PostIssued
// retries it later.
func (s *Service) Issue(ctx context.Context, tenantID, invoiceID id.ID) (*Invoice, posting.Result, error) {
	var (
		inv    *Invoice
		result posting.Result
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.lock(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := documents.CheckTransition(entityName, inv.State, documents.StateIssued, documents.StateIssued); err != nil {
			return err
		}
		if err := inv.Validate(ctx); err != nil {
			return err
		}
		inv.State = documents.StateIssued
		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		result, err = s.postIssue(ctx, inv)
		return err
	})
	if err != nil {
		return nil, posting.Result{}, err
	}
	logger.Info(ctx, "invoice issued", "number", inv.Number, "posting", result.Status)
	return inv, result, nil
}

// PostIssued posts the sale of an issued invoice whose posting was
// skipped. Already posted invoices report ALREADY_POSTED.
func (s *Service) PostIssued(ctx context.Context, tenantID, invoiceID id.ID) (posting.Result, error) {
	var result posting.Result
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.lock(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if !inv.State.IsPosted() {
			return apperror.NewBusinessRule(apperror.CodeInvalidTransition, "invoice is not issued").
				WithDetail("state", inv.State)
		}
		result, err = s.postIssue(ctx, inv)
		return err
	})
	return result, err
}

func (s *Service) postIssue(ctx context.Context, inv *Invoice) (posting.Result, error) {
	acc, reason, err := documents.ResolvePartyAccount(ctx, s.parties, inv.TenantID, inv.PartyID)
	if err != nil {
		return posting.Result{}, err
	}
	if acc == nil {
		if existing, err := s.engine.Find(ctx, inv.TenantID, posting.Key{SourceType: posting.SourceInvoice, SourceID: inv.ID, Event: posting.EventIssue}); err == nil {
			return posting.AlreadyPosted(existing), nil
		}
		logger.Warn(ctx, "invoice posting skipped", "number", inv.Number, "reason", reason)
		return posting.Skipped("%s", reason), nil
	}
	return s.engine.Post(ctx, issueRequest(inv, acc.ID))
}

// RecordPayment stores a receipt against an issued invoice and, when
// requested, posts it to the treasury account of its method.
func (s *Service) RecordPayment(ctx context.Context, tenantID, invoiceID id.ID, in documents.PaymentInput) (*documents.Payment, posting.Result, error) {
	if err := in.Validate(); err != nil {
		return nil, posting.Result{}, err
	}

	var (
		payment *documents.Payment
		result  posting.Result
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.lock(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		payment, result, err = s.pay(ctx, inv, in)
		return err
	})
	if err != nil {
		return nil, posting.Result{}, err
	}
	return payment, result, nil
}

func (s *Service) pay(ctx context.Context, inv *Invoice, in documents.PaymentInput) (*documents.Payment, posting.Result, error) {
	if !inv.State.IsOpen() {
		return nil, posting.Result{}, apperror.NewInvalidTransition(entityName, string(inv.State), string(documents.StatePartiallyPaid))
	}
	outstanding := inv.Outstanding()
	if in.Amount.GreaterThan(outstanding) {
		return nil, posting.Result{}, apperror.NewValidation("payment exceeds the outstanding balance").
			WithDetail("outstanding", outstanding.StringFixed(2))
	}

	payment := documents.NewPayment(inv.TenantID, posting.SourceInvoice, inv.ID, in)
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, posting.Result{}, fmt.Errorf("create payment: %w", err)
	}

	inv.ApplyPayment(in.Amount)
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, posting.Result{}, fmt.Errorf("update invoice: %w", err)
	}

	result := posting.Skipped("posting not requested")
	if in.GeneratePosting {
		acc, reason, err := documents.ResolvePartyAccount(ctx, s.parties, inv.TenantID, inv.PartyID)
		if err != nil {
			return nil, posting.Result{}, err
		}
		if acc == nil {
			result = posting.Skipped("%s", reason)
		} else {
			result, err = s.engine.Post(ctx, paymentRequest(inv, payment, acc.ID))
			if err != nil {
				return nil, posting.Result{}, err
			}
		}
		if result.HasEntry() {
			payment.EntryID = &result.Entry.ID
			if err := s.payments.LinkEntry(ctx, inv.TenantID, payment.ID, result.Entry.ID); err != nil {
				return nil, posting.Result{}, fmt.Errorf("link payment entry: %w", err)
			}
		}
	}

	logger.Info(ctx, "invoice payment recorded",
		"number", inv.Number,
		"amount", payment.Amount.StringFixed(2),
		"state", inv.State)
	return payment, result, nil
}

// MarkPaid settles the whole outstanding balance by bank and posts it.
func (s *Service) MarkPaid(ctx context.Context, tenantID, invoiceID id.ID, date time.Time) (*Invoice, posting.Result, error) {
	var (
		inv    *Invoice
		result posting.Result
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.lock(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := documents.CheckTransition(entityName, inv.State, documents.StatePaid, documents.StateIssued); err != nil {
			return err
		}
		outstanding := inv.Outstanding()
		if !outstanding.IsPositive() {
			inv.State = documents.StatePaid
			result = posting.Skipped("nothing outstanding")
			return s.repo.Update(ctx, inv)
		}
		_, result, err = s.pay(ctx, inv, documents.PaymentInput{
			Date:            date,
			Amount:          outstanding,
			Method:          documents.MethodBank,
			Note:            "settled on marking paid",
			GeneratePosting: true,
		})
		return err
	})
	if err != nil {
		return nil, posting.Result{}, err
	}
	return inv, result, nil
}

// ConfirmWithholding records the customer's withholding certificate.
func (s *Service) ConfirmWithholding(ctx context.Context, tenantID, invoiceID id.ID, date time.Time) (posting.Result, error) {
	var result posting.Result
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.lock(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if !inv.State.IsPosted() {
			return apperror.NewBusinessRule(apperror.CodeInvalidTransition, "invoice is not issued").
				WithDetail("state", inv.State)
		}
		if !inv.WithholdingAmount.IsPositive() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "invoice has no withholding")
		}
		if inv.WithholdingSettled {
			existing, err := s.engine.Find(ctx, tenantID, posting.Key{SourceType: posting.SourceInvoice, SourceID: inv.ID, Event: posting.EventWithholding})
			if err == nil {
				result = posting.AlreadyPosted(existing)
				return nil
			}
		}
		result, err = s.engine.Post(ctx, withholdingRequest(inv, date))
		if err != nil {
			return err
		}
		if result.IsSkipped() {
			return nil
		}
		inv.WithholdingSettled = true
		return s.repo.Update(ctx, inv)
	})
	return result, err
}

// Void cancels an invoice. An issued invoice gets the counter-entry of its
// sale; invoices with payments cannot be voided.
func (s *Service) Void(ctx context.Context, tenantID, invoiceID id.ID, date time.Time) (*Invoice, posting.Result, error) {
	var (
		inv    *Invoice
		result = posting.Skipped("draft invoices have no entry")
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.lock(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := documents.CheckTransition(entityName, inv.State, documents.StateVoid, documents.StateIssued); err != nil {
			return err
		}
		if inv.PaidAmount.IsPositive() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "invoice has payments").
				WithDetail("paid", inv.PaidAmount.StringFixed(2))
		}
		if inv.State == documents.StateIssued {
			issued, err := s.engine.Find(ctx, tenantID, posting.Key{SourceType: posting.SourceInvoice, SourceID: inv.ID, Event: posting.EventIssue})
			switch {
			case err == nil:
				result, err = s.engine.Reverse(ctx, issued,
					posting.Key{SourceType: posting.SourceInvoice, SourceID: inv.ID, Event: posting.EventVoid},
					date, fmt.Sprintf("Void of invoice %s", inv.Number))
				if err != nil {
					return err
				}
			case apperror.IsNotFound(err):
				result = posting.Skipped("invoice was never posted")
			default:
				return err
			}
		}
		inv.State = documents.StateVoid
		return s.repo.Update(ctx, inv)
	})
	if err != nil {
		return nil, posting.Result{}, err
	}
	logger.Info(ctx, "invoice voided", "number", inv.Number)
	return inv, result, nil
}

// Payments lists the receipts of an invoice.
func (s *Service) Payments(ctx context.Context, tenantID, invoiceID id.ID) ([]*documents.Payment, error) {
	return s.payments.List(ctx, tenantID, posting.SourceInvoice, invoiceID)
}

// Entries lists the journal entries of an invoice.
func (s *Service) Entries(ctx context.Context, tenantID, invoiceID id.ID) ([]*posting.Entry, error) {
	return s.engine.EntriesFor(ctx, tenantID, posting.SourceInvoice, invoiceID)
}

func (s *Service) lock(ctx context.Context, tenantID, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.repo.GetForUpdate(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	inv.Items = items
	return inv, nil
}
