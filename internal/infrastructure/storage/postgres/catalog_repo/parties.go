package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/parties"
	"pgcledger/internal/infrastructure/storage/postgres"
)

const partiesTable = "parties"

// PartyRepo implements parties.Repository.
type PartyRepo struct {
	*BaseCatalogRepo[*parties.Party]
}

var _ parties.Repository = (*PartyRepo)(nil)

// NewPartyRepo creates a new party repository.
func NewPartyRepo(txManager *postgres.TxManager) *PartyRepo {
	base := NewBaseCatalogRepo(
		txManager,
		partiesTable,
		postgres.ExtractDBColumns[parties.Party](),
		func() *parties.Party { return &parties.Party{} },
	)
	base.searchCols = []string{"name", "ledger_code", "tax_id"}
	base.defaultOrder = "ledger_code"
	return &PartyRepo{BaseCatalogRepo: base}
}

func (r *PartyRepo) GetByID(ctx context.Context, tenantID, partyID id.ID) (*parties.Party, error) {
	p, err := r.BaseCatalogRepo.GetByID(ctx, tenantID, partyID)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("party", partyID.String())
	}
	return p, err
}

func (r *PartyRepo) listQuery(tenantID id.ID, filter parties.ListFilter) squirrel.SelectBuilder {
	q := r.tenantSelect(tenantID)
	if filter.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": filter.Kind})
	}
	return q
}

func (r *PartyRepo) List(ctx context.Context, tenantID id.ID, filter parties.ListFilter) (domain.ListResult[*parties.Party], error) {
	return r.BaseCatalogRepo.List(ctx, r.listQuery(tenantID, filter), filter.ListFilter)
}

// lockKey is the advisory lock of one (tenant, parent code) pair.
func lockKey(tenantID id.ID, parentCode string) string {
	return "party:" + tenantID.String() + ":" + parentCode
}

// NextSequence takes a transaction-scoped advisory lock on the parent
// code, then reads MAX+1 over every parent account carrying that code.
// Concurrent creators under the same parent wait for the first one to
// commit.
func (r *PartyRepo) NextSequence(ctx context.Context, tenantID id.ID, parentCode string) (int, error) {
	querier := r.querier(ctx)
	if _, err := querier.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", lockKey(tenantID, parentCode)); err != nil {
		return 0, fmt.Errorf("lock party sequence: %w", err)
	}

	sql, args, err := r.nextSequenceQuery(tenantID, parentCode).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var next int
	if err := querier.QueryRow(ctx, sql, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("next party sequence: %w", err)
	}
	return next, nil
}

func (r *PartyRepo) nextSequenceQuery(tenantID id.ID, parentCode string) squirrel.SelectBuilder {
	return r.Builder().
		Select("COALESCE(MAX(p.sequence_number), 0) + 1").
		From(partiesTable + " p").
		Join(accountsTable + " a ON a.id = p.parent_account_id").
		Where(squirrel.Eq{"p.tenant_id": tenantID}).
		Where(squirrel.Eq{"a.code": parentCode})
}

// Create reports a taken sequence number or ledger code as Duplicate.
func (r *PartyRepo) Create(ctx context.Context, p *parties.Party) error {
	err := r.BaseCatalogRepo.Create(ctx, p)
	if apperror.IsDuplicate(err) {
		return apperror.NewDuplicate("party", "ledger_code", p.LedgerCode)
	}
	return err
}

// Update never rewrites the numbering columns.
func (r *PartyRepo) Update(ctx context.Context, p *parties.Party) error {
	p.UpdatedAt = time.Now().UTC()
	err := r.BaseCatalogRepo.Update(ctx, p,
		"tenant_id", "parent_account_id", "sequence_number", "ledger_code", "created_at")
	if apperror.IsConcurrentModification(err) {
		return apperror.NewConcurrentModification("party", p.ID.String())
	}
	return err
}

func (r *PartyRepo) LinkAccount(ctx context.Context, tenantID, partyID, accountID id.ID) error {
	sql, args, err := r.Builder().
		Update(partiesTable).
		Set("account_id", accountID).
		Where(squirrel.Eq{"id": partyID}).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "party", partyID)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("party", partyID.String())
	}
	return nil
}

func (r *PartyRepo) Delete(ctx context.Context, tenantID, partyID id.ID) error {
	err := r.BaseCatalogRepo.Delete(ctx, tenantID, partyID)
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("party", partyID.String())
	}
	return err
}
