package errors

import (
	"errors"
	"fmt"
	"net/http"

	"mdmserver/classification"
	"mdmserver/database"
	"mdmserver/importer"
	"mdmserver/internal/domain/material"
)

// AppError представляет ошибку приложения с HTTP статусом и контекстом
type AppError struct {
	Code    int    `json:"status_code"` // HTTP статус код
	Message string `json:"message"`     // Сообщение для пользователя
	Err     error  `json:"-"`           // Внутренняя ошибка для логов, не сериализуется
	Context string `json:"-"`           // Дополнительный контекст (функция, параметры)
}

// Error реализует интерфейс error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap возвращает вложенную ошибку для errors.Is и errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode возвращает HTTP статус код ошибки
func (e *AppError) StatusCode() int {
	return e.Code
}

// UserMessage возвращает сообщение для пользователя
func (e *AppError) UserMessage() string {
	return e.Message
}

// WithContext добавляет контекст к ошибке
func (e *AppError) WithContext(context string) *AppError {
	e.Context = context
	return e
}

// Kind тип ошибки для метрик
func (e *AppError) Kind() string {
	switch e.Code {
	case http.StatusBadRequest:
		return "validation"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	return "internal"
}

// NewNotFoundError создает ошибку 404 Not Found
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: message,
		Err:     err,
	}
}

// NewValidationError создает ошибку 400 Bad Request
func NewValidationError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

// NewInternalError создает ошибку 500 Internal Server Error
// Для пользователя возвращается общее сообщение, детали только в логах
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Внутренняя ошибка сервера",
		Err:     errors.Join(errors.New(message), err),
	}
}

// NewTooLargeError создает ошибку 413 Request Entity Too Large
func NewTooLargeError(message string) *AppError {
	return &AppError{
		Code:    http.StatusRequestEntityTooLarge,
		Message: message,
	}
}

// NewTooManyRequestsError создает ошибку 429 Too Many Requests
func NewTooManyRequestsError(message string) *AppError {
	return &AppError{
		Code:    http.StatusTooManyRequests,
		Message: message,
	}
}

// FromError переводит ошибку доменного слоя в AppError.
// Ошибки вызова (порог, max_results, справочник, корпус) отдаются как 400,
// отсутствующие записи как 404, прочее как 500.
func FromError(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var cfgErr *classification.ConfigError
	switch {
	case errors.As(err, &cfgErr),
		errors.Is(err, classification.ErrEmptyCategories),
		errors.Is(err, material.ErrThresholdOutOfRange),
		errors.Is(err, material.ErrInvalidMaxResults),
		errors.Is(err, material.ErrEmptyRecordID),
		errors.Is(err, material.ErrDuplicateRecordID),
		errors.Is(err, material.ErrEmptyName),
		errors.Is(err, importer.ErrNameColumnNotFound),
		errors.Is(err, importer.ErrNoDataRows):
		return NewValidationError(fmt.Sprintf("%s: %v", message, err), err)
	case errors.Is(err, database.ErrMaterialNotFound),
		errors.Is(err, database.ErrDedupRunNotFound):
		return NewNotFoundError(err.Error(), err)
	}
	return NewInternalError(message, err)
}
