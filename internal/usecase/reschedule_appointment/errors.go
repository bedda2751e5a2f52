package reschedule_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("reschedule_appointment: appointment not found")

	// ErrServiceNotFound возвращается, когда услуга записи не найдена
	ErrServiceNotFound = errors.New("reschedule_appointment: service not found")

	// ErrAccessDenied возвращается, когда пользователь не клиент и не менеджер бизнеса
	ErrAccessDenied = errors.New("reschedule_appointment: access denied")

	// ErrCannotReschedule возвращается для записей в конечном статусе
	ErrCannotReschedule = errors.New("reschedule_appointment: appointment cannot be rescheduled")

	// ErrLocationClosed возвращается, когда локация закрыта в новую дату
	ErrLocationClosed = errors.New("reschedule_appointment: location is closed on this date")

	// ErrInvalidTimeSlot возвращается, когда запись не помещается в часы работы
	ErrInvalidTimeSlot = errors.New("reschedule_appointment: invalid time slot")

	// ErrTooLateToBook возвращается, когда не выдержан минимальный срок до визита
	ErrTooLateToBook = errors.New("reschedule_appointment: too late to book this slot")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение maxAdvanceDays
	ErrDateTooFarInFuture = errors.New("reschedule_appointment: date is too far in the future")

	// ErrSlotNotAvailable возвращается, когда новое время пересекается с другой записью
	ErrSlotNotAvailable = errors.New("reschedule_appointment: slot is not available")

	// ErrConcurrentBooking дополняет ErrSlotNotAvailable при гонке на уровне БД
	ErrConcurrentBooking = errors.New("reschedule_appointment: concurrent booking detected")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_appointment: internal error")
)
