package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_WrapAndInspect(t *testing.T) {
	cause := errors.New("fk violation")
	err := fmt.Errorf("delete account: %w", NewHasDependents("account", "31.1").WithCause(cause))

	assert.True(t, IsHasDependents(err))
	assert.False(t, IsNotFound(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(err))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "31.1", appErr.Details["id"])
}

func TestAppError_Statuses(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, NewUnbalancedEntry("10", "9").HTTPStatus)
	assert.Equal(t, http.StatusUnprocessableEntity, NewInvalidTransition("invoice", "DRAFT", "PAID").HTTPStatus)
	assert.Equal(t, http.StatusConflict, NewPlanAlreadyInitialized("t").HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
	assert.True(t, IsDuplicate(NewDuplicate("party", "tax_id", "1")))
}
