package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("nope"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
	assert.Equal(t, "Server error", meta.PublicMessage)
}

func TestStatusTable(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:         http.StatusBadRequest,
		CodeInvalidCredentials: http.StatusBadRequest,
		CodeUnauthenticated:    http.StatusUnauthorized,
		CodeInvalidToken:       http.StatusUnauthorized,
		CodeTokenExpired:       http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusBadRequest,
		CodeStaleWrite:         http.StatusConflict,
		CodeEmptyCart:          http.StatusBadRequest,
		CodeSignatureMismatch:  http.StatusBadRequest,
		CodeRateLimit:          http.StatusTooManyRequests,
		CodePaymentGateway:     http.StatusBadGateway,
	}
	for code, status := range cases {
		assert.Equal(t, status, MetadataFor(code).HTTPStatus, code)
	}
}

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := fmt.Errorf("checkout: %w", Wrap(CodePaymentGateway, cause, "Failed to create payment order"))

	typed := As(err)
	if assert.NotNil(t, typed) {
		assert.Equal(t, CodePaymentGateway, typed.Code())
		assert.Equal(t, "Failed to create payment order", typed.PublicMessage())
	}
	assert.True(t, stdErrors.Is(err, cause))
	assert.True(t, HasCode(err, CodePaymentGateway))
	assert.False(t, HasCode(err, CodeInternal))
}

func TestInternalMessageIsRedacted(t *testing.T) {
	err := Internal(stdErrors.New("pq: relation users does not exist"), "load user")
	assert.Equal(t, "Server error", err.PublicMessage())
	assert.Contains(t, err.Error(), "relation users")
}

func TestAsOnPlainError(t *testing.T) {
	assert.Nil(t, As(nil))
	assert.Nil(t, As(stdErrors.New("plain")))
}
