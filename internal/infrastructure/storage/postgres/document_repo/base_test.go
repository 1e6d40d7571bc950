package document_repo

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pgcledger/internal/core/apperror"
	"pgcledger/internal/core/id"
	"pgcledger/internal/core/types"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/documents"
	"pgcledger/internal/domain/documents/expense"
	"pgcledger/internal/domain/documents/invoice"
	"pgcledger/internal/domain/documents/purchase"
	"pgcledger/internal/domain/payroll"
)

func TestForUpdateQuery(t *testing.T) {
	repo := NewInvoiceRepo(nil)
	tenantID, invoiceID := id.New(), id.New()

	sql, args, err := repo.forUpdateQuery(tenantID, invoiceID).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM invoices WHERE tenant_id = $1 AND id = $2 FOR UPDATE")
	assert.NotContains(t, sql, "items")
	assert.Equal(t, argsOf(tenantID, invoiceID), argsOf(args...))
}

func TestInvoiceListQuery(t *testing.T) {
	repo := NewInvoiceRepo(nil)
	tenantID, customerID := id.New(), id.New()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	sql, args, err := repo.listQuery(tenantID, invoice.ListFilter{
		CustomerID: &customerID,
		State:      documents.StateIssued,
		DateFrom:   &from,
		DateTo:     &to,
	}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE tenant_id = $1 AND party_id = $2 AND state = $3 AND date >= $4 AND date <= $5")
	assert.Equal(t, argsOf(tenantID, customerID, documents.StateIssued, from, to), argsOf(args...))
}

func TestPurchaseListQuery_SearchesSupplierRef(t *testing.T) {
	repo := NewPurchaseRepo(nil)
	tenantID := id.New()

	sql, args, err := repo.listQuery(tenantID, purchase.ListFilter{
		ListFilter: domain.ListFilter{Search: "A-17"},
	}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE tenant_id = $1 AND (supplier_ref ILIKE $2 OR number ILIKE $3)")
	assert.Equal(t, argsOf(tenantID, "%A-17%", "%A-17%"), argsOf(args...))
}

func TestDocumentParseOrderBy(t *testing.T) {
	repo := NewInvoiceRepo(nil)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "date DESC, number DESC"},
		{in: "-grand_total", want: "grand_total DESC"},
		{in: "+due_date", want: "due_date ASC"},
		{in: "items", wantErr: true},
		{in: "-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateQuery(t *testing.T) {
	inv := invoice.New(id.New(), id.New(), time.Now(), time.Now())
	inv.Number = "FT/2024/00001"
	inv.Version = 2

	q, entityID, err := NewInvoiceRepo(nil).updateQuery(inv)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, entityID)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "version = version + 1, updated_at = NOW()")
	assert.Contains(t, sql, "WHERE id = $")
	assert.NotContains(t, sql, "number =")
	assert.NotContains(t, sql, "created_at =")
	assert.Equal(t, 2, args[len(args)-1])

	emp := &payroll.Employee{TenantID: id.New(), Name: "Ana", HiredOn: time.Now()}
	emp.ID = id.New()
	q, _, err = NewPayrollRepo(nil).employees.updateQuery(emp)
	require.NoError(t, err)
	sql, _, err = q.ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "updated_at")
}

func TestItemRows(t *testing.T) {
	docID := id.New()
	items := []documents.Item{
		documents.NewItem("Consultoria", decimal.NewFromInt(2), types.MustMoney("1000"), decimal.NewFromInt(14)),
	}

	cols, rows := itemRows("invoice_id", docID, items)
	require.Len(t, rows, 1)
	assert.Equal(t, "invoice_id", cols[0])
	assert.Len(t, rows[0], len(cols))
	assert.Equal(t, docID, rows[0][0])
	assert.Equal(t, "Consultoria", rows[0][indexOf(cols, "description")])
}

func TestExpenseListQuery(t *testing.T) {
	repo := NewExpenseRepo(nil)
	tenantID := id.New()

	sql, args, err := repo.listQuery(tenantID, expense.Filter{Kind: expense.KindService}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE tenant_id = $1 AND kind = $2 ORDER BY number")
	assert.Equal(t, argsOf(tenantID, expense.KindService), argsOf(args...))
}

func TestLinkEntryQuery(t *testing.T) {
	repo := NewPaymentRepo(nil)
	tenantID, paymentID, entryID := id.New(), id.New(), id.New()

	sql, args, err := repo.linkEntryQuery(tenantID, paymentID, entryID).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE payments SET entry_id = $1 WHERE id = $2 AND tenant_id = $3", sql)
	assert.Equal(t, argsOf(entryID, paymentID, tenantID), argsOf(args...))
}

func TestPayrollQueries(t *testing.T) {
	repo := NewPayrollRepo(nil)
	tenantID := id.New()

	run := &payroll.Run{ID: id.New(), TenantID: tenantID, EmployeeID: id.New(), Month: 3, Year: 2024}
	sql, args, err := repo.saveRunQuery(run).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ON CONFLICT (tenant_id, employee_id, month, year) DO UPDATE SET")
	assert.Contains(t, sql, "net = EXCLUDED.net")
	assert.NotContains(t, sql, "tenant_id = EXCLUDED")
	assert.NotContains(t, sql, " id = EXCLUDED.id")
	assert.True(t, len(sql) > 0 && sql[len(sql)-len("RETURNING id"):] == "RETURNING id")
	assert.Len(t, args, len(repo.runs.selectCols))

	a, b, entryID := id.New(), id.New(), id.New()
	sql, args, err = repo.markPostedQuery(tenantID, []id.ID{a, b}, entryID).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE payroll_runs SET posted = $1, entry_id = $2 WHERE tenant_id = $3 AND id IN ($4,$5)", sql)
	assert.Equal(t, argsOf(true, entryID, tenantID, a, b), argsOf(args...))
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

// argsOf prints query arguments; squirrel passes a single UUID through its
// driver.Valuer while list elements stay raw.
func argsOf(args ...any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = fmt.Sprint(a)
	}
	return out
}
