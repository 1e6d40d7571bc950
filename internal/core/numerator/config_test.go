package numerator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Format(t *testing.T) {
	period := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	cfg := DefaultConfig("t1", PrefixInvoice)
	assert.Equal(t, "FT/2025/00001", cfg.Format(period, 1))
	assert.Equal(t, "FT/2025/12345", cfg.Format(period, 12345))
	assert.Equal(t, "t1:FT/2025", cfg.Key(period))

	cfg.IncludeYear = false
	cfg.ResetPeriod = "never"
	assert.Equal(t, "FT/00007", cfg.Format(period, 7))
	assert.Equal(t, "t1:FT", cfg.Key(period))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("CP/2024/00042"))
	assert.Equal(t, int64(-1), ParseNumber("CP/2024/"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}

func TestMockGenerator_CountsPerScope(t *testing.T) {
	ctx := context.Background()
	gen := &MockGenerator{}
	period := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	a1, err := gen.GetNextNumber(ctx, DefaultConfig("a", "LC"), period)
	require.NoError(t, err)
	a2, _ := gen.GetNextNumber(ctx, DefaultConfig("a", "LC"), period)
	b1, _ := gen.GetNextNumber(ctx, DefaultConfig("b", "LC"), period)

	assert.Equal(t, "LC/2025/00001", a1)
	assert.Equal(t, "LC/2025/00002", a2)
	assert.Equal(t, "LC/2025/00001", b1)
}
