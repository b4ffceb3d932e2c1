package services

import (
	"context"

	apperrors "mdmserver/server/errors"
)

// ValidateContext проверяет, что context не nil и не отменен.
// Используется для единообразной валидации контекста во всех сервисах.
func ValidateContext(ctx context.Context) error {
	if ctx == nil {
		return apperrors.NewValidationError("context не может быть nil", nil)
	}

	select {
	case <-ctx.Done():
		return apperrors.NewInternalError("контекст отменен", ctx.Err())
	default:
		return nil
	}
}
