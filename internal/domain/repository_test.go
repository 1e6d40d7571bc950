package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHookRegistry_StopsOnFirstError(t *testing.T) {
	reg := NewHookRegistry[*int]()
	var calls []string
	boom := errors.New("boom")

	reg.OnBeforeCreate(func(ctx context.Context, v *int) error {
		calls = append(calls, "first")
		*v++
		return nil
	})
	reg.OnBeforeCreate(func(ctx context.Context, v *int) error {
		calls = append(calls, "second")
		return boom
	})
	reg.OnBeforeCreate(func(ctx context.Context, v *int) error {
		calls = append(calls, "third")
		return nil
	})

	v := 0
	err := reg.RunBeforeCreate(context.Background(), &v)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, 1, v)
	assert.NoError(t, reg.RunAfterCreate(context.Background(), &v))
}

func TestListFilter_Normalize(t *testing.T) {
	f := ListFilter{Limit: 5000, Offset: -3}.Normalize()
	assert.Equal(t, 1000, f.Limit)
	assert.Equal(t, 0, f.Offset)
	assert.Equal(t, 50, ListFilter{}.Normalize().Limit)
}
