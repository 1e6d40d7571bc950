package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/entity"
	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/chart"
	"pgcledger/internal/domain/parties"
)

func account(t *testing.T, s *Store, tenantID *id.ID, code string, parent *chart.Account) *chart.Account {
	t.Helper()
	acc := chart.NewAccount(tenantID, code, "Conta "+code, chart.KindMovement)
	acc.ClassCode = code[:1]
	if parent != nil {
		acc.ParentID = &parent.ID
	}
	require.NoError(t, s.Chart().Create(context.Background(), acc))
	return acc
}

func TestChartRepo_ChildrenAcrossTiers(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tenantID := id.New()

	root := account(t, s, nil, "62", nil)
	global := account(t, s, nil, "62.1", root)
	local := account(t, s, &tenantID, "62.9", root)
	account(t, s, &tenantID, "62.9.1", local)

	children, err := s.Chart().Children(ctx, []id.ID{root.ID})
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, global.ID, children[0].ID)
	assert.Equal(t, local.ID, children[1].ID)

	children, err = s.Chart().Children(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestChartRepo_DeleteManyFollowsReferences(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tenantID := id.New()

	parent := account(t, s, &tenantID, "31.1.1", nil)
	shadow := account(t, s, &tenantID, "31.1.1.0001", parent)
	p := &parties.Party{
		BaseEntity:      entity.NewBaseEntity(),
		TenantID:        tenantID,
		Kind:            parties.KindCustomer,
		Name:            "Sonangol EP",
		ParentAccountID: parent.ID,
		SequenceNumber:  1,
		LedgerCode:      shadow.Code,
		AccountID:       &shadow.ID,
	}
	require.NoError(t, s.Parties().Create(ctx, p))

	err := s.Chart().DeleteMany(ctx, []id.ID{parent.ID})
	assert.True(t, apperror.IsHasDependents(err), "a child account still points at the parent")

	require.NoError(t, s.Chart().DeleteMany(ctx, []id.ID{shadow.ID}))
	got, err := s.Parties().GetByID(ctx, tenantID, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AccountID, "the shadow account link is cleared")

	err = s.Chart().DeleteMany(ctx, []id.ID{parent.ID})
	assert.True(t, apperror.IsHasDependents(err), "the party still uses it as parent account")

	require.NoError(t, s.Parties().Delete(ctx, tenantID, p.ID))
	require.NoError(t, s.Chart().DeleteMany(ctx, []id.ID{parent.ID}))
}
