package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsTimeOrdered(t *testing.T) {
	a, b := New(), New()
	assert.Equal(t, 7, int(a.Version()))
	assert.LessOrEqual(t, a.String()[:8], b.String()[:8])
}

func TestParse(t *testing.T) {
	v := New()

	got, err := Parse("  " + v.String() + "\n")
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = Parse("00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNil)

	_, err = Parse("31.1.1")
	assert.Error(t, err)
}

func TestParseOptional(t *testing.T) {
	got, err := ParseOptional(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	blank := " "
	got, err = ParseOptional(&blank)
	require.NoError(t, err)
	assert.Nil(t, got)

	raw := New().String()
	got, err = ParseOptional(&raw)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, raw, got.String())
}
