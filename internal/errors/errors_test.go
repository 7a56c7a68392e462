package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "errors"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeConflict, "quote already submitted")
	assert.Equal(t, "CONFLICT: quote already submitted", err.Error())

	wrapped := Wrap(fmt.Errorf("connection refused"), ErrCodeInternal, "gateway call failed")
	assert.Equal(t, "INTERNAL: gateway call failed: connection refused", wrapped.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(cause, ErrCodeInternal, "wrapped")
	require.True(t, stderrors.Is(err, cause))
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, CodeOf(NotFound("quote", "q-1")))
	assert.Equal(t, "quote not found: q-1", NotFound("quote", "q-1").Message)

	assert.Equal(t, ErrCodeValidation, CodeOf(InvalidInput("region", "must be A or B")))
	assert.Equal(t, ErrCodeBusinessRule, CodeOf(BusinessRule("no")))
	assert.Equal(t, ErrCodeUnauthorized, CodeOf(Unauthorized("no")))
}

func TestCodeOfUntypedError(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, CodeOf(fmt.Errorf("plain")))
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(BusinessRule("x"), ErrCodeBusinessRule))
	assert.False(t, IsCode(BusinessRule("x"), ErrCodeConflict))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NotFound("quote", "q-1"), http.StatusNotFound},
		{InvalidInput("f", "m"), http.StatusBadRequest},
		{BusinessRule("m"), http.StatusUnprocessableEntity},
		{Unauthorized("m"), http.StatusForbidden},
		{New(ErrCodeConflict, "m"), http.StatusConflict},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err))
	}
}
