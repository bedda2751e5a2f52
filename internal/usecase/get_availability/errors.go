package get_availability

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("get_availability: service not found")

	// ErrLocationNotFound возвращается, когда локация услуги не найдена
	ErrLocationNotFound = errors.New("get_availability: location not found")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение maxAdvanceDays
	ErrDateTooFarInFuture = errors.New("get_availability: date is too far in the future")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_availability: internal error")
)
