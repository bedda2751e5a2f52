package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidStatus возвращается при разборе неизвестного статуса
var ErrInvalidStatus = errors.New("domain: invalid appointment status")

// AppointmentStatus статус записи. Набор значений закрыт, см. ParseAppointmentStatus.
type AppointmentStatus string

const (
	StatusPending        AppointmentStatus = "pending"
	StatusPaymentPending AppointmentStatus = "payment_pending"
	StatusConfirmed      AppointmentStatus = "confirmed"
	StatusCancelled      AppointmentStatus = "cancelled"
	StatusRejected       AppointmentStatus = "rejected"
	StatusExpired        AppointmentStatus = "expired"
	StatusCompleted      AppointmentStatus = "completed"
	StatusNoShow         AppointmentStatus = "no_show"
)

// AllStatuses все допустимые статусы
var AllStatuses = []AppointmentStatus{
	StatusPending,
	StatusPaymentPending,
	StatusConfirmed,
	StatusCancelled,
	StatusRejected,
	StatusExpired,
	StatusCompleted,
	StatusNoShow,
}

// OccupyingStatuses статусы, при которых запись занимает слот
var OccupyingStatuses = []AppointmentStatus{
	StatusConfirmed,
	StatusPaymentPending,
}

// ParseAppointmentStatus разбирает строку в статус
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch status := AppointmentStatus(s); status {
	case StatusPending, StatusPaymentPending, StatusConfirmed, StatusCancelled,
		StatusRejected, StatusExpired, StatusCompleted, StatusNoShow:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// IsOccupying возвращает true, если запись в этом статусе блокирует слот
func (s AppointmentStatus) IsOccupying() bool {
	switch s {
	case StatusConfirmed, StatusPaymentPending:
		return true
	default:
		return false
	}
}

// IsTerminal возвращает true для конечных статусов
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusRejected, StatusExpired, StatusCompleted, StatusNoShow:
		return true
	default:
		return false
	}
}

// CanTransitionTo проверяет допустимость перехода между статусами
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case StatusPending:
		switch next {
		case StatusPaymentPending, StatusRejected, StatusCancelled, StatusExpired:
			return true
		}
	case StatusPaymentPending:
		switch next {
		case StatusConfirmed, StatusCancelled:
			return true
		}
	case StatusConfirmed:
		switch next {
		case StatusCancelled, StatusCompleted, StatusNoShow:
			return true
		}
	case StatusCancelled, StatusRejected, StatusExpired, StatusCompleted, StatusNoShow:
		return false
	}
	return false
}

// String реализует fmt.Stringer
func (s AppointmentStatus) String() string {
	return string(s)
}
