package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter writes many rows with the COPY protocol. Used for template
// chart copies, journal lines and document items.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a new batch inserter.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice performs bulk insert from a slice of rows. It must run
// inside a transaction so the rows commit with the rest of the change.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return 0, fmt.Errorf("CopyFromSlice requires transaction context")
	}

	return tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

// CopyStructs copies items using the values of cols read from their db tags.
func CopyStructs[T any](ctx context.Context, b *BatchInserter, table string, cols []string, items []T) (int64, error) {
	rows := make([][]any, len(items))
	for i := range items {
		rows[i] = Values(&items[i], cols)
	}
	return b.CopyFromSlice(ctx, table, cols, rows)
}
