package create_appointment

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrLocationNotFound возвращается, когда локация услуги не найдена
	ErrLocationNotFound = errors.New("create_appointment: location not found")

	// ErrLocationClosed возвращается, когда локация закрыта в выбранную дату
	ErrLocationClosed = errors.New("create_appointment: location is closed on this date")

	// ErrInvalidTimeSlot возвращается, когда запись не помещается в часы работы
	ErrInvalidTimeSlot = errors.New("create_appointment: invalid time slot")

	// ErrTooLateToBook возвращается, когда не выдержан минимальный срок до визита
	ErrTooLateToBook = errors.New("create_appointment: too late to book this slot")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение maxAdvanceDays
	ErrDateTooFarInFuture = errors.New("create_appointment: date is too far in the future")

	// ErrSlotNotAvailable возвращается, когда слот занят
	ErrSlotNotAvailable = errors.New("create_appointment: slot is not available")

	// ErrConcurrentBooking дополняет ErrSlotNotAvailable, когда слот занят параллельным запросом
	// (нарушение ограничения БД или сбой сериализации). Запрос можно повторить.
	ErrConcurrentBooking = errors.New("create_appointment: concurrent booking detected")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
