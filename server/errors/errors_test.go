package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"mdmserver/classification"
	"mdmserver/database"
	"mdmserver/internal/domain/material"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"threshold", fmt.Errorf("%w: 1.5", material.ErrThresholdOutOfRange), http.StatusBadRequest, "validation"},
		{"max results", material.ErrInvalidMaxResults, http.StatusBadRequest, "validation"},
		{"duplicate id", fmt.Errorf("record %q: %w", "1", material.ErrDuplicateRecordID), http.StatusBadRequest, "validation"},
		{"config error", errors.Join(&classification.ConfigError{CategoryID: "a", Field: "parent_id", Reason: "unknown parent"}), http.StatusBadRequest, "validation"},
		{"not found", fmt.Errorf("%w: 42", database.ErrMaterialNotFound), http.StatusNotFound, "not_found"},
		{"internal", errors.New("disk is full"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromError(tt.err, "operation failed")
			assert.Equal(t, tt.wantCode, appErr.StatusCode())
			assert.Equal(t, tt.wantKind, appErr.Kind())
			assert.ErrorIs(t, appErr, tt.err)
		})
	}
}

func TestFromError_KeepsAppError(t *testing.T) {
	orig := NewNotFoundError("категория не найдена", nil)
	assert.Same(t, orig, FromError(fmt.Errorf("wrapped: %w", orig), "ignored"))
	assert.Nil(t, FromError(nil, "nothing"))
}

func TestInternalErrorHidesDetails(t *testing.T) {
	err := NewInternalError("failed to load corpus", errors.New("sqlite: database is locked"))
	assert.Equal(t, "Внутренняя ошибка сервера", err.UserMessage())
	assert.Contains(t, err.Error(), "database is locked")
}
