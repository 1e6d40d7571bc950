package chart

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/pgc"
	"pgcledger/internal/core/tx"
	"pgcledger/pkg/logger"
)

// Service provides chart-of-accounts operations.
type Service struct {
	repo      Repository
	resolver  *Resolver
	txManager tx.Manager
}

// NewService creates a new chart service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		resolver:  NewResolver(repo),
		txManager: txManager,
	}
}

// Resolver exposes the two-tier lookup used by posting.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// SaveAccountInput carries a create (ID nil) or update request.
type SaveAccountInput struct {
	ID              *id.ID
	TenantID        *id.ID
	Code            string
	Description     string
	ClassHint       string
	Kind            Kind
	EntityKind      EntityKind
	AcceptsPostings *bool
	ParentID        *id.ID
}

// SaveAccount normalizes and persists an account. Every save canonicalizes
// the code, infers the class from its first character and, when no parent
// is given, looks the parent code up in the tenant tier and then the template.
func (s *Service) SaveAccount(ctx context.Context, in SaveAccountInput) (*Account, error) {
	var (
		acc    *Account
		create = in.ID == nil
	)

	if create {
		kind := in.Kind
		if kind == "" {
			kind = KindMovement
		}
		acc = NewAccount(in.TenantID, in.Code, in.Description, kind)
	} else {
		existing, err := s.repo.GetByID(ctx, *in.ID)
		if err != nil {
			return nil, err
		}
		if err := checkScope(existing, in.TenantID); err != nil {
			return nil, err
		}
		acc = existing
		if in.Code != "" {
			acc.Code = in.Code
		}
		if in.Description != "" {
			acc.Description = in.Description
		}
		if in.Kind != "" && in.Kind != acc.Kind {
			acc.Kind = in.Kind
			acc.AcceptsPostings = in.Kind.AcceptsPostings()
		}
	}

	if in.EntityKind != "" {
		acc.EntityKind = in.EntityKind
	}
	if in.AcceptsPostings != nil {
		acc.AcceptsPostings = *in.AcceptsPostings
	}
	if in.ClassHint != "" {
		acc.ClassCode = in.ClassHint
	}
	if in.ParentID != nil {
		acc.ParentID = in.ParentID
	}

	acc.Code = pgc.Normalize(acc.Code)
	if err := s.normalize(ctx, acc); err != nil {
		return nil, err
	}
	if err := acc.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, acc); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		dup, err := s.repo.FindByCode(ctx, acc.ScopeID(), acc.Code)
		switch {
		case err == nil && dup.ID != acc.ID:
			return apperror.NewDuplicate("account", "code", acc.Code)
		case err != nil && !apperror.IsNotFound(err):
			return err
		}
		if create {
			return s.repo.Create(ctx, acc)
		}
		return s.repo.Update(ctx, acc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "account saved",
		"code", acc.Code,
		"global", acc.IsGlobal(),
		"created", create)
	return acc, nil
}

// normalize applies class and parent inference to an account whose code
// is already final. It is idempotent.
func (s *Service) normalize(ctx context.Context, acc *Account) error {
	acc.Description = strings.TrimSpace(acc.Description)

	if acc.ClassCode == "" {
		if class, ok := pgc.LookupClass(acc.Code); ok {
			acc.ClassCode = class.Code
		}
	}

	if acc.ParentID != nil || !strings.Contains(acc.Code, pgc.Separator) {
		return nil
	}

	parentCode := pgc.ParentCode(acc.Code)
	parent, err := s.resolver.ResolveParent(ctx, acc.ScopeID(), []string{parentCode})
	if err != nil {
		return fmt.Errorf("infer parent: %w", err)
	}
	if parent == nil {
		logger.Warn(ctx, "parent account not found, account stored at root level",
			"code", acc.Code,
			"parent_code", parentCode)
		return nil
	}
	acc.ParentID = &parent.ID
	return nil
}

// checkParent enforces: a tenant account hangs under its own tenant or the
// template; a template account hangs only under the template; no cycles.
func (s *Service) checkParent(ctx context.Context, acc *Account) error {
	if acc.ParentID == nil {
		return nil
	}
	parent, err := s.repo.GetByID(ctx, *acc.ParentID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("parent account not found").WithDetail("parentId", acc.ParentID.String())
		}
		return err
	}
	if !parent.IsGlobal() {
		if acc.IsGlobal() || *parent.TenantID != *acc.TenantID {
			return apperror.NewValidation("parent account belongs to another company").
				WithDetail("parentCode", parent.Code)
		}
	}
	if parent.ID == acc.ID || pgc.IsDescendantOf(parent.Code, acc.Code) {
		return apperror.NewValidation("parent account would create a cycle").
			WithDetail("parentCode", parent.Code)
	}
	return nil
}

func checkScope(acc *Account, tenantID *id.ID) error {
	if acc.IsGlobal() {
		if tenantID != nil {
			return apperror.NewForbidden("template accounts cannot be changed by a company").
				WithDetail("code", acc.Code)
		}
		return nil
	}
	if tenantID == nil || !acc.OwnedBy(*tenantID) {
		return apperror.NewNotFound("account", acc.ID.String())
	}
	return nil
}

// UpsertInput describes an account keyed by (code, tenant).
type UpsertInput struct {
	TenantID    *id.ID
	Code        string
	Description string
	Kind        Kind
	EntityKind  EntityKind
	ClassCode   string
	ParentID    *id.ID

	// KeepCode stores Code as given instead of canonicalizing it.
	KeepCode bool
}

// Upsert creates or updates the account keyed by (code, tenant). It returns
// true when a new row was created.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*Account, bool, error) {
	code := in.Code
	if !in.KeepCode {
		code = pgc.Normalize(code)
	}
	kind := in.Kind
	if kind == "" {
		kind = KindMovement
	}

	var (
		acc     *Account
		created bool
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindByCode(ctx, in.TenantID, code)
		switch {
		case err == nil:
			acc = existing
		case apperror.IsNotFound(err):
			acc = NewAccount(in.TenantID, code, in.Description, kind)
			created = true
		default:
			return err
		}

		acc.Description = in.Description
		acc.Kind = kind
		acc.AcceptsPostings = kind.AcceptsPostings()
		if in.EntityKind != "" {
			acc.EntityKind = in.EntityKind
		}
		if in.ClassCode != "" {
			acc.ClassCode = in.ClassCode
		}
		if in.ParentID != nil {
			acc.ParentID = in.ParentID
		}

		if err := s.normalize(ctx, acc); err != nil {
			return err
		}
		if err := acc.Validate(ctx); err != nil {
			return err
		}
		if err := s.checkParent(ctx, acc); err != nil {
			return err
		}
		if created {
			return s.repo.Create(ctx, acc)
		}
		return s.repo.Update(ctx, acc)
	})
	if err != nil {
		return nil, false, err
	}
	return acc, created, nil
}

// InitializePlan copies every template account into tenantID in code order,
// remapping parents to the tenant's own copies. It refuses to run when the
// tenant already has accounts.
func (s *Service) InitializePlan(ctx context.Context, tenantID id.ID) (int, error) {
	count, err := s.repo.Count(ctx, &tenantID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, apperror.NewPlanAlreadyInitialized(tenantID.String())
	}

	global, err := s.resolver.Global().List(ctx)
	if err != nil {
		return 0, err
	}
	if len(global) == 0 {
		return 0, apperror.NewBusinessRule(apperror.CodeBusinessRule, "global chart template is empty")
	}
	sort.Slice(global, func(i, j int) bool { return global[i].Code < global[j].Code })

	codeByGlobalID := make(map[id.ID]string, len(global))
	for _, g := range global {
		codeByGlobalID[g.ID] = g.Code
	}

	copies := make([]Account, 0, len(global))
	newIDByCode := make(map[string]id.ID, len(global))
	for _, g := range global {
		c := NewAccount(&tenantID, g.Code, g.Description, g.Kind)
		c.ClassCode = g.ClassCode
		c.EntityKind = g.EntityKind
		c.AcceptsPostings = g.AcceptsPostings
		if g.ParentID != nil {
			if parentID, ok := newIDByCode[codeByGlobalID[*g.ParentID]]; ok {
				c.ParentID = &parentID
			}
		}
		newIDByCode[c.Code] = c.ID
		copies = append(copies, *c)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateBatch(ctx, copies)
	})
	if err != nil {
		return 0, fmt.Errorf("copy template: %w", err)
	}

	logger.Info(ctx, "chart of accounts initialized", "tenant_id", tenantID, "accounts", len(copies))
	return len(copies), nil
}

// Import loads accounts from text into tenantID (nil imports into the
// template). Rows are applied parents first; each row infers its parent by
// walking up the code chain, tenant tier before template at every level.
// Rejected rows are reported, not fatal.
func (s *Service) Import(ctx context.Context, tenantID *id.ID, text string) (ImportReport, error) {
	rows, failures := ParseImport(text)
	report := ImportReport{Failures: failures}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })

	for _, row := range rows {
		report.Processed++

		parent, err := s.resolver.ResolveParent(ctx, tenantID, pgc.Ancestors(row.Code))
		if err != nil {
			return report, err
		}
		in := UpsertInput{
			TenantID:    tenantID,
			Code:        row.Code,
			Description: row.Description,
			Kind:        row.Kind,
		}
		if parent != nil {
			in.ParentID = &parent.ID
			in.EntityKind = parent.EntityKind
		}

		_, created, err := s.Upsert(ctx, in)
		if err != nil {
			if _, ok := apperror.AsAppError(err); ok {
				report.Failures = append(report.Failures, ImportFailure{Line: row.Line, Raw: row.Code, Reason: err.Error()})
				continue
			}
			return report, err
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].Line < report.Failures[j].Line })
	logger.Info(ctx, "chart import finished",
		"processed", report.Processed,
		"created", report.Created,
		"updated", report.Updated,
		"failed", len(report.Failures))
	return report, nil
}

// Delete removes an account and its whole subtree, but only when no node
// in the subtree has journal lines. Deleting a template account also
// removes the company accounts beneath it.
func (s *Service) Delete(ctx context.Context, tenantID *id.ID, accountID id.ID) (int, error) {
	acc, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if err := checkScope(acc, tenantID); err != nil {
		return 0, err
	}

	var deleted int
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		subtree, err := s.subtree(ctx, acc.ID)
		if err != nil {
			return err
		}

		has, err := s.repo.HasPostings(ctx, subtree)
		if err != nil {
			return err
		}
		if has {
			return apperror.NewHasDependents("account", acc.Code)
		}

		bottomUp := make([]id.ID, len(subtree))
		for i := range subtree {
			bottomUp[i] = subtree[len(subtree)-1-i]
		}
		deleted = len(bottomUp)
		return s.repo.DeleteMany(ctx, bottomUp)
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "account subtree deleted", "code", acc.Code, "accounts", deleted)
	return deleted, nil
}

// subtree lists accountID and every account below it, parents before
// children. It walks all tiers so company accounts under a template
// account are included.
func (s *Service) subtree(ctx context.Context, accountID id.ID) ([]id.ID, error) {
	out := []id.ID{accountID}
	seen := map[id.ID]struct{}{accountID: {}}
	frontier := []id.ID{accountID}
	for len(frontier) > 0 {
		children, err := s.repo.Children(ctx, frontier)
		if err != nil {
			return nil, err
		}
		var next []id.ID
		for _, child := range children {
			if _, ok := seen[child.ID]; ok {
				continue
			}
			seen[child.ID] = struct{}{}
			out = append(out, child.ID)
			next = append(next, child.ID)
		}
		frontier = next
	}
	return out, nil
}

// GetByID returns one account of the template or of tenantID.
func (s *Service) GetByID(ctx context.Context, tenantID *id.ID, accountID id.ID) (*Account, error) {
	acc, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acc.IsGlobal() && (tenantID == nil || !acc.OwnedBy(*tenantID)) {
		return nil, apperror.NewNotFound("account", accountID.String())
	}
	return acc, nil
}

// View returns the merged chart a tenant sees.
func (s *Service) View(ctx context.Context, tenantID id.ID) (*Tree, error) {
	return s.resolver.View(ctx, tenantID)
}

// List returns one tier ordered by code.
func (s *Service) List(ctx context.Context, tenantID *id.ID) ([]Account, error) {
	return s.repo.List(ctx, tenantID)
}

// SeedTemplate creates the missing DefaultTemplate accounts in the global tier.
func (s *Service) SeedTemplate(ctx context.Context) (int, error) {
	created := 0
	for _, t := range DefaultTemplate {
		_, err := s.repo.FindByCode(ctx, nil, t.Code)
		if err == nil {
			continue
		}
		if !apperror.IsNotFound(err) {
			return created, err
		}
		if _, err := s.SaveAccount(ctx, SaveAccountInput{
			Code:        t.Code,
			Description: t.Description,
			Kind:        t.Kind,
			EntityKind:  t.EntityKind,
		}); err != nil {
			return created, fmt.Errorf("seed %s: %w", t.Code, err)
		}
		created++
	}
	return created, nil
}
