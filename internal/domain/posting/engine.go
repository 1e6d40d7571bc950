package posting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/numerator"
	"pgcledger/internal/core/tx"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain/chart"
	"pgcledger/pkg/logger"
)

var tracer = otel.Tracer("pgcledger/posting")

// Leg is one requested line. Exactly one of Role or AccountID selects the
// account; zero amounts are dropped.
type Leg struct {
	Role      Role
	AccountID *id.ID
	Side      Side
	Amount    types.Money
	Memo      string
}

// DebitRole builds a debit leg on the account resolved for role.
func DebitRole(role Role, amount types.Money) Leg {
	return Leg{Role: role, Side: Debit, Amount: amount}
}

// CreditRole builds a credit leg on the account resolved for role.
func CreditRole(role Role, amount types.Money) Leg {
	return Leg{Role: role, Side: Credit, Amount: amount}
}

// DebitAccount builds a debit leg on a known account.
func DebitAccount(accountID id.ID, amount types.Money) Leg {
	return Leg{AccountID: &accountID, Side: Debit, Amount: amount}
}

// CreditAccount builds a credit leg on a known account.
func CreditAccount(accountID id.ID, amount types.Money) Leg {
	return Leg{AccountID: &accountID, Side: Credit, Amount: amount}
}

// Request describes one entry to post.
type Request struct {
	TenantID    id.ID
	Key         *Key
	Kind        EntryKind
	Date        time.Time
	Description string
	Legs        []Leg
}

// Engine posts journal entries.
type Engine struct {
	repo      Repository
	chart     *chart.Service
	accounts  AccountMap
	numerator numerator.Generator
	txManager tx.Manager
	auditor   Auditor
}

// Option configures an Engine.
type Option func(*Engine)

// WithAccountMap replaces the default role candidates.
func WithAccountMap(m AccountMap) Option {
	return func(e *Engine) { e.accounts = m }
}

// WithAuditor records every posted entry.
func WithAuditor(a Auditor) Option {
	return func(e *Engine) { e.auditor = a }
}

// NewEngine creates a posting engine.
func NewEngine(
	repo Repository,
	chartService *chart.Service,
	gen numerator.Generator,
	txManager tx.Manager,
	opts ...Option,
) *Engine {
	e := &Engine{
		repo:      repo,
		chart:     chartService,
		accounts:  DefaultAccountMap(),
		numerator: gen,
		txManager: txManager,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ResolveRole finds the account that plays role for the tenant.
func (e *Engine) ResolveRole(ctx context.Context, tenantID id.ID, role Role) (*chart.Account, error) {
	candidates, ok := e.accounts[role]
	if !ok || len(candidates) == 0 {
		return nil, apperror.NewNotFound("posting role", string(role))
	}
	return e.chart.Resolver().ResolvePostable(ctx, tenantID, candidates...)
}

// Post writes the entry for req unless its key already has one. A posting
// account that cannot be resolved yields a Skipped result and no error; an
// unbalanced entry is rejected before anything is written.
func (e *Engine) Post(ctx context.Context, req Request) (Result, error) {
	ctx, span := tracer.Start(ctx, "posting.Post",
		trace.WithAttributes(
			attribute.String("tenant.id", req.TenantID.String()),
			attribute.String("entry.kind", string(req.Kind)),
		))
	defer span.End()

	var result Result
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if req.Key != nil {
			existing, err := e.repo.FindBySource(ctx, req.TenantID, *req.Key)
			if err == nil {
				result = AlreadyPosted(existing)
				return nil
			}
			if !apperror.IsNotFound(err) {
				return fmt.Errorf("find existing entry: %w", err)
			}
		}

		lines, skipped, err := e.resolveLegs(ctx, req)
		if err != nil {
			return err
		}
		if skipped != "" {
			result = Skipped("%s: %s", apperror.CodePostingAccountMissing, skipped)
			return nil
		}

		entry := newEntry(req, lines)
		if err := entry.Validate(ctx); err != nil {
			return err
		}

		number, err := e.numerator.GetNextNumber(ctx,
			numerator.DefaultConfig(req.TenantID.String(), numerator.PrefixGeneral), req.Date)
		if err != nil {
			return fmt.Errorf("generate entry number: %w", err)
		}
		entry.Number = number

		if err := e.repo.Create(ctx, entry); err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		if e.auditor != nil {
			if err := e.auditor.LogPosting(ctx, entry); err != nil {
				return fmt.Errorf("audit entry: %w", err)
			}
		}
		result = Posted(entry)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	span.SetAttributes(attribute.String("posting.status", string(result.Status)))
	switch result.Status {
	case StatusPosted:
		debit, _ := result.Entry.Totals()
		logger.Info(ctx, "journal entry posted",
			"number", result.Entry.Number,
			"source", result.Entry.SourceType,
			"event", result.Entry.Event,
			"amount", debit.StringFixed(2))
	case StatusSkipped:
		logger.Warn(ctx, "posting skipped", "reason", result.Reason, "description", req.Description)
	default:
		logger.Debug(ctx, "event already posted", "number", result.Entry.Number)
	}
	return result, nil
}

// resolveLegs maps legs to lines. The second result names the unresolved
// roles when posting has to be skipped.
func (e *Engine) resolveLegs(ctx context.Context, req Request) ([]Line, string, error) {
	var (
		lines   []Line
		missing []string
	)
	for _, leg := range req.Legs {
		if leg.Amount.IsZero() {
			continue
		}

		var (
			acc *chart.Account
			err error
		)
		if leg.AccountID != nil {
			acc, err = e.chart.GetByID(ctx, &req.TenantID, *leg.AccountID)
			if err != nil {
				return nil, "", err
			}
			if !acc.AcceptsPostings {
				return nil, "", apperror.NewValidation("account does not accept postings").
					WithDetail("code", acc.Code)
			}
		} else {
			acc, err = e.ResolveRole(ctx, req.TenantID, leg.Role)
			if apperror.IsNotFound(err) {
				missing = append(missing, string(leg.Role))
				continue
			}
			if err != nil {
				return nil, "", err
			}
		}

		lines = append(lines, Line{
			ID:          id.New(),
			LineNo:      len(lines) + 1,
			AccountID:   acc.ID,
			AccountCode: acc.Code,
			Side:        leg.Side,
			Amount:      leg.Amount,
			Memo:        leg.Memo,
		})
	}
	if len(missing) > 0 {
		return nil, "no postable account for " + strings.Join(missing, ", "), nil
	}
	return lines, "", nil
}

func newEntry(req Request, lines []Line) *Entry {
	kind := req.Kind
	if kind == "" {
		kind = KindNormal
	}
	entry := &Entry{
		ID:          id.New(),
		TenantID:    req.TenantID,
		Kind:        kind,
		Date:        req.Date,
		Description: req.Description,
		SourceType:  SourceManual,
		CreatedAt:   time.Now().UTC(),
		Lines:       lines,
	}
	if req.Key != nil {
		sourceID := req.Key.SourceID
		entry.SourceType = req.Key.SourceType
		entry.SourceID = &sourceID
		entry.Event = req.Key.Event
	}
	for i := range entry.Lines {
		entry.Lines[i].EntryID = entry.ID
	}
	return entry
}

// Reverse posts the counter-entry of original under key: every line on
// the opposite side. History is never edited.
func (e *Engine) Reverse(ctx context.Context, original *Entry, key Key, date time.Time, description string) (Result, error) {
	legs := make([]Leg, 0, len(original.Lines))
	for _, l := range original.Lines {
		accountID := l.AccountID
		legs = append(legs, Leg{
			AccountID: &accountID,
			Side:      l.Side.Opposite(),
			Amount:    l.Amount,
			Memo:      l.Memo,
		})
	}
	return e.Post(ctx, Request{
		TenantID:    original.TenantID,
		Key:         &key,
		Kind:        original.Kind,
		Date:        date,
		Description: description,
		Legs:        legs,
	})
}

// EntriesFor returns every entry that originated from one source record.
func (e *Engine) EntriesFor(ctx context.Context, tenantID id.ID, sourceType SourceType, sourceID id.ID) ([]*Entry, error) {
	return e.repo.List(ctx, tenantID, JournalFilter{SourceType: sourceType, SourceID: &sourceID})
}

// Find returns the entry of key, NotFound when there is none.
func (e *Engine) Find(ctx context.Context, tenantID id.ID, key Key) (*Entry, error) {
	return e.repo.FindBySource(ctx, tenantID, key)
}

// Get returns one entry.
func (e *Engine) Get(ctx context.Context, tenantID, entryID id.ID) (*Entry, error) {
	return e.repo.GetByID(ctx, tenantID, entryID)
}

// Journal lists entries in date order with their lines.
func (e *Engine) Journal(ctx context.Context, tenantID id.ID, filter JournalFilter) ([]*Entry, error) {
	return e.repo.List(ctx, tenantID, filter)
}
