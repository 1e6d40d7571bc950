package parties

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/entity"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/tx"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/chart"
	"pgcledger/pkg/logger"
)

// maxSequenceAttempts bounds retries when a concurrent writer took the
// same sequence number.
const maxSequenceAttempts = 3

// Service creates parties and keeps their shadow accounts in sync.
type Service struct {
	repo      Repository
	chart     *chart.Service
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Party]
}

// NewService creates a new party service. The shadow-account sync is
// registered as an after-create and after-update hook.
func NewService(repo Repository, chartService *chart.Service, txManager tx.Manager) *Service {
	s := &Service{
		repo:      repo,
		chart:     chartService,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Party](),
	}
	s.hooks.OnAfterCreate(s.syncShadowAccount)
	s.hooks.OnAfterUpdate(s.syncShadowAccount)
	return s
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Party] {
	return s.hooks
}

// CreateInput carries the fields of a new party.
type CreateInput struct {
	Kind            Kind
	Name            string
	TaxID           string
	Contact         Contact
	ParentAccountID id.ID

	// CodeOverride replaces the generated ledger code verbatim
	CodeOverride string
}

// Create assigns the next sequence number under the parent account and
// persists the party. The shadow account is upserted afterwards; a failure
// there is logged and does not undo the party.
func (s *Service) Create(ctx context.Context, tenantID id.ID, in CreateInput) (*Party, error) {
	parent, err := s.chart.GetByID(ctx, &tenantID, in.ParentAccountID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewValidation("parent account not found").
				WithDetail("parentAccountId", in.ParentAccountID.String())
		}
		return nil, err
	}

	var p *Party
	for attempt := 1; ; attempt++ {
		p, err = s.create(ctx, tenantID, parent, in)
		if err == nil {
			break
		}
		if !apperror.IsDuplicate(err) || in.CodeOverride != "" || attempt == maxSequenceAttempts {
			return nil, err
		}
		logger.Warn(ctx, "sequence number taken, retrying",
			"parent_code", parent.Code,
			"attempt", attempt)
	}

	if err := s.hooks.RunAfterCreate(ctx, p); err != nil {
		logger.Warn(ctx, "after-create hook failed", "party_id", p.ID, "error", err)
	}

	logger.Info(ctx, "party created",
		"id", p.ID,
		"kind", p.Kind,
		"ledger_code", p.LedgerCode)
	return p, nil
}

func (s *Service) create(ctx context.Context, tenantID id.ID, parent *chart.Account, in CreateInput) (*Party, error) {
	now := time.Now().UTC()
	p := &Party{
		BaseEntity:      entity.NewBaseEntity(),
		Contact:         in.Contact,
		TenantID:        tenantID,
		Kind:            in.Kind,
		Name:            strings.TrimSpace(in.Name),
		TaxID:           strings.TrimSpace(in.TaxID),
		ParentAccountID: parent.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		seq, err := s.repo.NextSequence(ctx, tenantID, parent.Code)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		p.SequenceNumber = seq
		p.LedgerCode = LedgerCode(parent.Code, seq)
		if in.CodeOverride != "" {
			p.LedgerCode = in.CodeOverride
		}
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// syncShadowAccount upserts the MOVEMENT account mirroring p and links it.
func (s *Service) syncShadowAccount(ctx context.Context, p *Party) error {
	parent, err := s.chart.GetByID(ctx, &p.TenantID, p.ParentAccountID)
	if err != nil {
		return fmt.Errorf("load parent account: %w", err)
	}

	acc, _, err := s.chart.Upsert(ctx, chart.UpsertInput{
		TenantID:    &p.TenantID,
		Code:        p.LedgerCode,
		Description: p.Name,
		Kind:        chart.KindMovement,
		EntityKind:  p.Kind.EntityKind(),
		ClassCode:   parent.ClassCode,
		ParentID:    &parent.ID,
		KeepCode:    true,
	})
	if err != nil {
		return fmt.Errorf("upsert shadow account %s: %w", p.LedgerCode, err)
	}

	if p.AccountID == nil || *p.AccountID != acc.ID {
		if err := s.repo.LinkAccount(ctx, p.TenantID, p.ID, acc.ID); err != nil {
			return fmt.Errorf("link shadow account: %w", err)
		}
		p.AccountID = &acc.ID
	}
	return nil
}

// UpdateInput carries editable fields. The ledger code never changes.
type UpdateInput struct {
	Name    string
	TaxID   string
	Contact Contact
}

// Update changes contact data and re-syncs the shadow account description.
func (s *Service) Update(ctx context.Context, tenantID, partyID id.ID, in UpdateInput) (*Party, error) {
	p, err := s.repo.GetByID(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		p.Name = strings.TrimSpace(in.Name)
	}
	p.TaxID = strings.TrimSpace(in.TaxID)
	p.Contact = in.Contact
	p.UpdatedAt = time.Now().UTC()

	if err := p.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if err := s.hooks.RunAfterUpdate(ctx, p); err != nil {
		logger.Warn(ctx, "after-update hook failed", "party_id", p.ID, "error", err)
	}
	return p, nil
}

// Delete removes a party and its shadow account. It is rejected with
// HasDependents when any journal line references the shadow account.
func (s *Service) Delete(ctx context.Context, tenantID, partyID id.ID) error {
	p, err := s.repo.GetByID(ctx, tenantID, partyID)
	if err != nil {
		return err
	}

	// The party row goes first: it references the shadow account.
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, tenantID, partyID); err != nil {
			return err
		}
		if p.AccountID == nil {
			return nil
		}
		if _, err := s.chart.Delete(ctx, &tenantID, *p.AccountID); err != nil {
			if apperror.IsHasDependents(err) {
				return apperror.NewHasDependents("party", p.LedgerCode)
			}
			if !apperror.IsNotFound(err) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "party deleted", "id", p.ID, "ledger_code", p.LedgerCode)
	return nil
}

// GetByID returns one party of the tenant.
func (s *Service) GetByID(ctx context.Context, tenantID, partyID id.ID) (*Party, error) {
	return s.repo.GetByID(ctx, tenantID, partyID)
}

// List returns the parties of the tenant.
func (s *Service) List(ctx context.Context, tenantID id.ID, filter ListFilter) (domain.ListResult[*Party], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, tenantID, filter)
}

// Account resolves the shadow account of a party, by link or by ledger code.
func (s *Service) Account(ctx context.Context, p *Party) (*chart.Account, error) {
	if p.AccountID != nil {
		return s.chart.GetByID(ctx, &p.TenantID, *p.AccountID)
	}
	return s.chart.Resolver().Tenant(p.TenantID).Find(ctx, p.LedgerCode)
}

// AccountFor resolves the shadow account of the party partyID.
func (s *Service) AccountFor(ctx context.Context, tenantID, partyID id.ID) (*chart.Account, error) {
	p, err := s.repo.GetByID(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	return s.Account(ctx, p)
}
