package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("business not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrAlreadyProcessed возвращается, когда запись уже вышла из ожидаемого статуса
	ErrAlreadyProcessed = errors.New("appointment already processed")

	// ErrApprovalDeadlineExpired возвращается при подтверждении после approvalDeadline
	ErrApprovalDeadlineExpired = errors.New("approval deadline expired")

	// ErrSlotNotAvailable возвращается, когда слот занят другой записью
	ErrSlotNotAvailable = errors.New("slot is not available")

	// ErrConcurrentBooking дополняет ErrSlotNotAvailable при гонке на уровне БД
	ErrConcurrentBooking = errors.New("concurrent booking detected")

	// ErrCannotCancel возвращается, когда запись не может быть отменена
	ErrCannotCancel = errors.New("appointment cannot be cancelled")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
