package purchase

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

const entityName = "purchase"

// Service provides business operations for purchases. Every transition
// locks the purchase and posts in the same transaction.
type Service struct {
	repo      Repository
	payments  documents.PaymentRepository
	parties   documents.PartyAccounts
	rates     documents.RateSource
	engine    *posting.Engine
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new purchase service. rates may be nil.
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
	SupplierID       id.ID
	Date             time.Time
	DueDate          time.Time
	SupplierRef      string
	Comment          string
	Items            []documents.ItemInput
	ApplyWithholding bool
	WithholdingRate  decimal.Decimal
}

// Create numbers and stores a draft purchase.
func (s *Service) Create(ctx context.Context, tenantID id.ID, in CreateInput) (*Purchase, error) {
	if _, err := documents.RequireParty(ctx, s.parties, tenantID, in.SupplierID, parties.KindSupplier); err != nil {
		return nil, err
	}
	rate, err := documents.WithholdingRate(ctx, s.rates, in.ApplyWithholding, in.WithholdingRate)
	if err != nil {
		return nil, err
	}

	pur := New(tenantID, in.SupplierID, in.Date, in.DueDate)
	pur.SupplierRef = strings.TrimSpace(in.SupplierRef)
	pur.Comment = in.Comment
	pur.Items = documents.BuildItems(in.Items)
	pur.ApplyWithholding = in.ApplyWithholding
	pur.WithholdingRate = rate
	pur.Recompute()
	if err := pur.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx,
			numerator.DefaultConfig(tenantID.String(), numerator.PrefixPurchase), pur.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		pur.Number = number

		if err := s.repo.Create(ctx, pur); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		return s.repo.SaveItems(ctx, pur.ID, pur.Items)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase created",
		"id", pur.ID,
		"number", pur.Number,
		"grand_total", pur.GrandTotal.StringFixed(2))
	return pur, nil
}

// UpdateInput replaces the editable fields of a draft.
type UpdateInput struct {
	Date             time.Time
	DueDate          time.Time
	SupplierRef      string
	Comment          string
	Items            []documents.ItemInput
	ApplyWithholding bool
	WithholdingRate  decimal.Decimal
}

// Update rewrites a draft purchase and recomputes its totals.
func (s *Service) Update(ctx context.Context, tenantID, purchaseID id.ID, in UpdateInput) (*Purchase, error) {
	rate, err := documents.WithholdingRate(ctx, s.rates, in.ApplyWithholding, in.WithholdingRate)
	if err != nil {
		return nil, err
	}

	var pur *Purchase
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pur, err = s.repo.GetForUpdate(ctx, tenantID, purchaseID)
		if err != nil {
			return err
		}
		if err := pur.CanModify(); err != nil {
			return err
		}
		pur.Date = in.Date
		pur.DueDate = in.DueDate
		pur.SupplierRef = strings.TrimSpace(in.SupplierRef)
		pur.Comment = in.Comment
		pur.Items = documents.BuildItems(in.Items)
		pur.ApplyWithholding = in.ApplyWithholding
		pur.WithholdingRate = rate
		pur.Recompute()
		if err := pur.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, pur); err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}
		return s.repo.SaveItems(ctx, pur.ID, pur.Items)
	})
	if err != nil {
		return nil, err
	}
	return pur, nil
}

// Delete removes a draft purchase.
func (s *Service) Delete(ctx context.Context, tenantID, purchaseID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pur, err := s.repo.GetForUpdate(ctx, tenantID, purchaseID)
		if err != nil {
			return err
		}
		if err := pur.CanModify(); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tenantID, purchaseID)
	})
}

// GetByID retrieves a purchase with its items.
func (s *Service) GetByID(ctx context.Context, tenantID, purchaseID id.ID) (*Purchase, error) {
	pur, err := s.repo.GetByID(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	pur.Items = items
	return pur, nil
}

// List retrieves purchases with filtering.
func (s *Service) List(ctx context.Context, tenantID id.ID, filter ListFilter) (domain.ListResult[*Purchase], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, tenantID, filter)
}

// Register moves a draft to REGISTERED and posts the cost. The transition
// holds even when the posting is skipped for a missing account;
// PostRegistered retries it later.
func (s *Service) Register(ctx context.Context, tenantID, purchaseID id.ID) (*Purchase, posting.Result, error) {
	var (
		pur    *Purchase
		result posting.Result
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		pur, err = s.lock(ctx, tenantID, purchaseID)
		if err != nil {
			return err
		}
		if err := documents.CheckTransition(entityName, pur.State, documents.StateRegistered, documents.StateRegistered); err != nil {
			return err
		}
		if err := pur.Validate(ctx); err != nil {
			return err
		}
		pur.State = documents.StateRegistered
		if err := s.repo.Update(ctx, pur); err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}
		result, err = s.postRegister(ctx, pur)
		return err
	})
	if err != nil {
		return nil, posting.Result{}, err
	}
	logger.Info(ctx, "purchase registered", "number", pur.Number, "posting", result.Status)
	return pur, result, nil
}

// PostRegistered posts the cost of a registered purchase whose posting was
// skipped. Already posted purchases report ALREADY_POSTED.
func (s *Service) PostRegistered(ctx context.Context, tenantID, purchaseID id.ID) (posting.Result, error) {
	var result posting.Result
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pur, err := s.lock(ctx, tenantID, purchaseID)
		if err != nil {
			return err
		}
		if !pur.State.IsPosted() {
			return apperror.NewBusinessRule(apperror.CodeInvalidTransition, "purchase is not registered").
				WithDetail("state", pur.State)
		}
		result, err = s.postRegister(ctx, pur)
		return err
	})
	return result, err
}

func (s *Service) postRegister(ctx context.Context, pur *Purchase) (posting.Result, error) {
	acc, reason, err := documents.ResolvePartyAccount(ctx, s.parties, pur.TenantID, pur.PartyID)
	if err != nil {
		return posting.Result{}, err
	}
	if acc == nil {
		if existing, err := s.engine.Find(ctx, pur.TenantID, posting.Key{SourceType: posting.SourcePurchase, SourceID: pur.ID, Event: posting.EventRegister}); err == nil {
			return posting.AlreadyPosted(existing), nil
		}
		logger.Warn(ctx, "purchase posting skipped", "number", pur.Number, "reason", reason)
		return posting.Skipped("%s", reason), nil
	}
	return s.engine.Post(ctx, registerRequest(pur, acc.ID))
}

// RecordPayment stores a payment to the supplier and, when
// requested, posts it to the treasury account of its method.
func (s *Service) RecordPayment(ctx context.Context, tenantID, purchaseID id.ID, in documents.PaymentInput) (*documents.Payment, posting.Result, error) {
	if err := in.Validate(); err != nil {
		return nil, posting.Result{}, err
	}

	var (
		payment *documents.Payment
		result  posting.Result
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pur, err := s.lock(ctx, tenantID, purchaseID)
		if err != nil {
			return err
		}
		payment, result, err = s.pay(ctx, pur, in)
		return err
	})
	if err != nil {
		return nil, posting.Result{}, err
	}
	return payment, result, nil
}

func (s *Service) pay(ctx context.Context, pur *Purchase, in documents.PaymentInput) (*documents.Payment, posting.Result, error) {
	if !pur.State.IsOpen() {
		return nil, posting.Result{}, apperror.NewInvalidTransition(entityName, string(pur.State), string(documents.StatePartiallyPaid))
	}
	outstanding := pur.Outstanding()
	if in.Amount.GreaterThan(outstanding) {
		return nil, posting.Result{}, apperror.NewValidation("payment exceeds the outstanding balance").
			WithDetail("outstanding", outstanding.StringFixed(2))
	}

	payment := documents.NewPayment(pur.TenantID, posting.SourcePurchase, pur.ID, in)
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, posting.Result{}, fmt.Errorf("create payment: %w", err)
	}

	pur.ApplyPayment(in.Amount)
	if err := s.repo.Update(ctx, pur); err != nil {
		return nil, posting.Result{}, fmt.Errorf("update purchase: %w", err)
	}

	result := posting.Skipped("posting not requested")
	if in.GeneratePosting {
		acc, reason, err := documents.ResolvePartyAccount(ctx, s.parties, pur.TenantID, pur.PartyID)
		if err != nil {
			return nil, posting.Result{}, err
		}
		if acc == nil {
			result = posting.Skipped("%s", reason)
		} else {
			result, err = s.engine.Post(ctx, paymentRequest(pur, payment, acc.ID))
			if err != nil {
				return nil, posting.Result{}, err
			}
		}
		if result.HasEntry() {
			payment.EntryID = &result.Entry.ID
			if err := s.payments.LinkEntry(ctx, pur.TenantID, payment.ID, result.Entry.ID); err != nil {
				return nil, posting.Result{}, fmt.Errorf("link payment entry: %w", err)
			}
		}
	}

	logger.Info(ctx, "purchase payment recorded",
		"number", pur.Number,
		"amount", payment.Amount.StringFixed(2),
		"state", pur.State)
	return payment, result, nil
}

// MarkPaid settles the whole outstanding balance by bank and posts it.
func (s *Service) MarkPaid(ctx context.Context, tenantID, purchaseID id.ID, date time.Time) (*Purchase, posting.Result, error) {
	var (
		pur    *Purchase
		result posting.Result
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		pur, err = s.lock(ctx, tenantID, purchaseID)
		if err != nil {
			return err
		}
		if err := documents.CheckTransition(entityName, pur.State, documents.StatePaid, documents.StateRegistered); err != nil {
			return err
		}
		outstanding := pur.Outstanding()
		if !outstanding.IsPositive() {
			pur.State = documents.StatePaid
			result = posting.Skipped("nothing outstanding")
			return s.repo.Update(ctx, pur)
		}
		_, result, err = s.pay(ctx, pur, documents.PaymentInput{
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
	return pur, result, nil
}

// SettleWithholding pays the withheld tax over to the tax authority.
func (s *Service) SettleWithholding(ctx context.Context, tenantID, purchaseID id.ID, date time.Time) (posting.Result, error) {
	var result posting.Result
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pur, err := s.lock(ctx, tenantID, purchaseID)
		if err != nil {
			return err
		}
		if !pur.State.IsPosted() {
			return apperror.NewBusinessRule(apperror.CodeInvalidTransition, "purchase is not registered").
				WithDetail("state", pur.State)
		}
		if !pur.WithholdingAmount.IsPositive() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "purchase has no withholding")
		}
		if pur.WithholdingSettled {
			existing, err := s.engine.Find(ctx, tenantID, posting.Key{SourceType: posting.SourcePurchase, SourceID: pur.ID, Event: posting.EventWithholding})
			if err == nil {
				result = posting.AlreadyPosted(existing)
				return nil
			}
		}
		result, err = s.engine.Post(ctx, withholdingRequest(pur, date))
		if err != nil {
			return err
		}
		if result.IsSkipped() {
			return nil
		}
		pur.WithholdingSettled = true
		return s.repo.Update(ctx, pur)
	})
	return result, err
}

// Void cancels a purchase. A registered purchase gets the counter-entry of
// its cost; purchases with payments cannot be voided.
func (s *Service) Void(ctx context.Context, tenantID, purchaseID id.ID, date time.Time) (*Purchase, posting.Result, error) {
	var (
		pur    *Purchase
		result = posting.Skipped("draft purchases have no entry")
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		pur, err = s.lock(ctx, tenantID, purchaseID)
		if err != nil {
			return err
		}
		if err := documents.CheckTransition(entityName, pur.State, documents.StateVoid, documents.StateRegistered); err != nil {
			return err
		}
		if pur.PaidAmount.IsPositive() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "purchase has payments").
				WithDetail("paid", pur.PaidAmount.StringFixed(2))
		}
		if pur.State == documents.StateRegistered {
			registered, err := s.engine.Find(ctx, tenantID, posting.Key{SourceType: posting.SourcePurchase, SourceID: pur.ID, Event: posting.EventRegister})
			switch {
			case err == nil:
				result, err = s.engine.Reverse(ctx, registered,
					posting.Key{SourceType: posting.SourcePurchase, SourceID: pur.ID, Event: posting.EventVoid},
					date, fmt.Sprintf("Void of purchase %s", pur.Number))
				if err != nil {
					return err
				}
			case apperror.IsNotFound(err):
				result = posting.Skipped("purchase was never posted")
			default:
				return err
			}
		}
		pur.State = documents.StateVoid
		return s.repo.Update(ctx, pur)
	})
	if err != nil {
		return nil, posting.Result{}, err
	}
	logger.Info(ctx, "purchase voided", "number", pur.Number)
	return pur, result, nil
}

// Payments lists the payments of a purchase.
func (s *Service) Payments(ctx context.Context, tenantID, purchaseID id.ID) ([]*documents.Payment, error) {
	return s.payments.List(ctx, tenantID, posting.SourcePurchase, purchaseID)
}

// Entries lists the journal entries of a purchase.
func (s *Service) Entries(ctx context.Context, tenantID, purchaseID id.ID) ([]*posting.Entry, error) {
	return s.engine.EntriesFor(ctx, tenantID, posting.SourcePurchase, purchaseID)
}

func (s *Service) lock(ctx context.Context, tenantID, purchaseID id.ID) (*Purchase, error) {
	pur, err := s.repo.GetForUpdate(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	pur.Items = items
	return pur, nil
}
