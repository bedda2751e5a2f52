package reschedule_appointment

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AppointmentID <= 0 {
		return fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}

	if req.Reason != nil && utf8.RuneCountInString(*req.Reason) > domain.MaxReasonLength {
		return fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}

	return nil
}

// validateSchedule проверяет новую дату по расписанию локации и возвращает время окончания
func validateSchedule(
	schedule *domain.LocationSchedule,
	date time.Time,
	start types.TimeString,
	durationMinutes int,
) (types.TimeString, error) {
	end, err := schedule.FitSlot(date, start, durationMinutes)
	switch {
	case err == nil:
		return end, nil
	case errors.Is(err, domain.ErrLocationClosed):
		return types.TimeString{}, fmt.Errorf("%w: %v", ErrLocationClosed, err)
	default:
		return types.TimeString{}, fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	}
}

// validateAdvance проверяет минимальный и максимальный срок записи
func validateAdvance(startsAt, now time.Time, business *domain.Business) error {
	err := business.CheckAdvance(startsAt, now)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrBeyondAdvanceLimit):
		return fmt.Errorf("%w: %v", ErrDateTooFarInFuture, err)
	default:
		return fmt.Errorf("%w: %v", ErrTooLateToBook, err)
	}
}
