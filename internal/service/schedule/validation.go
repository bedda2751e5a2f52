package schedule

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// toDomainSchedule валидирует запрос и собирает domain расписание.
// Для открытых дней open < close, дни недели и даты блокировок уникальны.
func toDomainSchedule(locationID int64, req *models.UpdateScheduleRequest) (*domain.LocationSchedule, error) {
	schedule := &domain.LocationSchedule{
		LocationID:   locationID,
		WeeklyHours:  make([]domain.WeeklyHours, 0, len(req.WeeklyHours)),
		BlockedDates: make([]domain.BlockedDate, 0, len(req.BlockedDates)),
	}

	seenDays := make(map[int]struct{}, len(req.WeeklyHours))
	for _, h := range req.WeeklyHours {
		if h.DayOfWeek < int(time.Sunday) || h.DayOfWeek > int(time.Saturday) {
			return nil, fmt.Errorf("%w: dayOfWeek must be between 0 and 6, got %d", ErrInvalidInput, h.DayOfWeek)
		}
		if _, ok := seenDays[h.DayOfWeek]; ok {
			return nil, fmt.Errorf("%w: duplicate dayOfWeek %d", ErrInvalidInput, h.DayOfWeek)
		}
		seenDays[h.DayOfWeek] = struct{}{}

		hours := domain.WeeklyHours{
			LocationID: locationID,
			DayOfWeek:  time.Weekday(h.DayOfWeek),
			IsClosed:   h.IsClosed,
		}

		if !h.IsClosed {
			open, err := types.NewTimeStringFromString(h.OpenTime)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid openTime %q for day %d", ErrInvalidInput, h.OpenTime, h.DayOfWeek)
			}
			closeAt, err := types.NewTimeStringFromString(h.CloseTime)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid closeTime %q for day %d", ErrInvalidInput, h.CloseTime, h.DayOfWeek)
			}
			if !open.IsBefore(closeAt) {
				return nil, fmt.Errorf("%w: openTime must be before closeTime for day %d", ErrInvalidInput, h.DayOfWeek)
			}
			hours.OpenTime = open
			hours.CloseTime = closeAt
		}

		schedule.WeeklyHours = append(schedule.WeeklyHours, hours)
	}

	seenDates := make(map[string]struct{}, len(req.BlockedDates))
	for _, b := range req.BlockedDates {
		date, err := time.Parse(domain.DateFormat, b.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid blocked date %q", ErrInvalidInput, b.Date)
		}
		if _, ok := seenDates[b.Date]; ok {
			return nil, fmt.Errorf("%w: duplicate blocked date %s", ErrInvalidInput, b.Date)
		}
		seenDates[b.Date] = struct{}{}

		if b.Reason != nil && utf8.RuneCountInString(*b.Reason) > domain.MaxReasonLength {
			return nil, fmt.Errorf("%w: blocked date reason is too long", ErrInvalidInput)
		}

		schedule.BlockedDates = append(schedule.BlockedDates, domain.BlockedDate{
			LocationID:        locationID,
			Date:              date,
			Reason:            b.Reason,
			RecurringAnnually: b.RecurringAnnually,
		})
	}

	return schedule, nil
}
