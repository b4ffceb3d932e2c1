package material

import "errors"

var (
	// ErrThresholdOutOfRange порог схожести вне отрезка [0, 1]
	ErrThresholdOutOfRange = errors.New("threshold out of range [0, 1]")

	// ErrInvalidMaxResults max_results должен быть положительным
	ErrInvalidMaxResults = errors.New("max_results must be positive")

	// ErrEmptyRecordID у записи корпуса нет идентификатора
	ErrEmptyRecordID = errors.New("record id is empty")

	// ErrDuplicateRecordID идентификатор записи встречается в наборе дважды
	ErrDuplicateRecordID = errors.New("duplicate record id")

	// ErrEmptyName у запроса нет наименования
	ErrEmptyName = errors.New("record name is empty")
)
