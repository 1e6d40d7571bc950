package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "pgcledger/internal/core/context"
)

func TestAuditService_CompressesLargePayloads(t *testing.T) {
	s, err := NewAuditService(nil)
	require.NoError(t, err)
	defer s.Close()

	big, err := json.Marshal(map[string]string{"memo": strings.Repeat("IVA liquidado ", 2000)})
	require.NoError(t, err)

	entry := AuditEntry{EntityType: "journal_entry", Changes: big}
	s.prepare(context.Background(), &entry)

	assert.Equal(t, CompressionZstd, entry.CompressionAlgo)
	assert.Nil(t, entry.Changes)
	assert.Less(t, len(entry.ChangesCompressed), len(big))
	assert.False(t, entry.CreatedAt.IsZero())

	require.NoError(t, s.inflate(&entry))
	assert.JSONEq(t, string(big), string(entry.Changes))
	assert.Nil(t, entry.ChangesCompressed)
}

func TestAuditService_SmallPayloadStaysPlain(t *testing.T) {
	s, err := NewAuditService(nil)
	require.NoError(t, err)
	defer s.Close()

	ctx := appctx.WithTrace(context.Background(), &appctx.TraceContext{RequestID: "req-42"})
	entry := AuditEntry{Changes: json.RawMessage(`{"number":"LC/2024/00001"}`)}
	s.prepare(ctx, &entry)

	assert.Equal(t, CompressionNone, entry.CompressionAlgo)
	assert.Equal(t, "req-42", entry.RequestID)
	assert.Nil(t, entry.ChangesCompressed)
	require.NoError(t, s.inflate(&entry))
	assert.JSONEq(t, `{"number":"LC/2024/00001"}`, string(entry.Changes))
}
