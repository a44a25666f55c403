package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "validation", err: NewValidationError("bad input", nil), code: "VALIDATION_FAILED", status: http.StatusBadRequest},
		{name: "not found", err: NewNotFound("event", nil), code: "NOT_FOUND", status: http.StatusNotFound},
		{name: "unauthorized", err: NewUnauthorized("nope"), code: "UNAUTHORIZED", status: http.StatusUnauthorized},
		{name: "forbidden", err: NewForbidden("nope"), code: "FORBIDDEN", status: http.StatusForbidden},
		{name: "conflict", err: NewConflict("taken", nil), code: "CONFLICT", status: http.StatusConflict},
		{name: "internal", err: NewInternalError(errors.New("db down")), code: "INTERNAL_ERROR", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var domainErr *DomainError
			assert.True(t, errors.As(tt.err, &domainErr))
			assert.Equal(t, tt.code, domainErr.Code)
			assert.Equal(t, tt.status, domainErr.HTTPStatus)
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NewNotFound("registration", nil)
	assert.EqualError(t, err, "registration not found")
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("db down")
	err := NewInternalError(inner)
	assert.ErrorIs(t, err, inner)
}

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	original := NewConflict("taken", nil)
	assert.Same(t, original, ToDomainError(original))

	miss := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", miss.Code)
	assert.Equal(t, http.StatusNotFound, miss.HTTPStatus)

	other := ToDomainError(errors.New("surprise"))
	assert.Equal(t, "INTERNAL_ERROR", other.Code)
	assert.Equal(t, http.StatusInternalServerError, other.HTTPStatus)
}
