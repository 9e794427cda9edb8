package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeAuthentication, http.StatusUnauthorized},
		{CodeToken, http.StatusUnauthorized},
		{CodePersistence, http.StatusConflict},
		{CodeNotFound, http.StatusNotFound},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), "code %s", tt.code)
	}
}

func TestError_Is_MatchesByCode(t *testing.T) {
	err := Validation("title must be unique")

	assert.True(t, Is(err, ErrValidation))
	assert.False(t, Is(err, ErrAuthentication))
}

func TestError_WrappingPreservesCauseAndMessage(t *testing.T) {
	cause := fmt.Errorf("index title conflict")
	err := ValidationWithDetails(cause.Error(), map[string]string{"title": "Clean Code"}).WithCause(cause)

	assert.Equal(t, CodeValidation, err.Code)
	assert.Contains(t, err.Error(), "index title conflict")
	assert.Equal(t, cause, Unwrap(err))
	assert.NotNil(t, err.Details)
}

func TestError_WithDetails(t *testing.T) {
	err := Validation("validation failed").WithDetails(map[string]string{"title": "is required"})

	var domainErr *Error
	assert.True(t, As(err, &domainErr))
	assert.Equal(t, map[string]string{"title": "is required"}, domainErr.Details)
}
