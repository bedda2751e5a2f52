package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var (
	// ErrLocationClosed локация не работает в выбранную дату
	ErrLocationClosed = errors.New("domain: location closed")
	// ErrOutsideOpeningHours запись не помещается в часы работы
	ErrOutsideOpeningHours = errors.New("domain: slot outside opening hours")
)

// WeeklyHours часы работы локации в конкретный день недели
type WeeklyHours struct {
	LocationID int64
	DayOfWeek  time.Weekday
	OpenTime   types.TimeString
	CloseTime  types.TimeString
	IsClosed   bool
}

// IsOpen возвращает true, если в этот день локация работает
func (h *WeeklyHours) IsOpen() bool {
	return !h.IsClosed && !h.OpenTime.IsZero() && !h.CloseTime.IsZero()
}

// BlockedDate дата, в которую локация закрыта
type BlockedDate struct {
	LocationID        int64
	Date              time.Time
	Reason            *string
	RecurringAnnually bool
}

// Matches проверяет, попадает ли дата на блокировку.
// Ежегодная блокировка совпадает по месяцу и дню (29 февраля только в високосные годы).
func (b *BlockedDate) Matches(date time.Time) bool {
	if !b.RecurringAnnually {
		return SameDate(b.Date, date)
	}
	return b.Date.Month() == date.Month() && b.Date.Day() == date.Day()
}

// ClosedReason возвращает причину блокировки или значение по умолчанию
func (b *BlockedDate) ClosedReason() string {
	if b.Reason != nil && *b.Reason != "" {
		return *b.Reason
	}
	return ReasonBlockedDate
}

// LocationSchedule расписание локации: часы работы по дням недели и заблокированные даты
type LocationSchedule struct {
	LocationID   int64
	WeeklyHours  []WeeklyHours
	BlockedDates []BlockedDate
}

// HoursFor возвращает часы работы на день недели
func (s *LocationSchedule) HoursFor(day time.Weekday) (*WeeklyHours, bool) {
	for i := range s.WeeklyHours {
		if s.WeeklyHours[i].DayOfWeek == day {
			return &s.WeeklyHours[i], true
		}
	}
	return nil, false
}

// BlockedOn возвращает блокировку, совпадающую с датой
func (s *LocationSchedule) BlockedOn(date time.Time) (*BlockedDate, bool) {
	for i := range s.BlockedDates {
		if s.BlockedDates[i].Matches(date) {
			return &s.BlockedDates[i], true
		}
	}
	return nil, false
}

// FitSlot проверяет, что в дату локация работает и запись длиной durationMinutes
// с началом start помещается в часы работы. Возвращает время окончания записи.
func (s *LocationSchedule) FitSlot(date time.Time, start types.TimeString, durationMinutes int) (types.TimeString, error) {
	if blocked, ok := s.BlockedOn(date); ok {
		return types.TimeString{}, fmt.Errorf("%w: %s", ErrLocationClosed, blocked.ClosedReason())
	}

	hours, ok := s.HoursFor(date.Weekday())
	if !ok || !hours.IsOpen() {
		return types.TimeString{}, fmt.Errorf("%w: %s", ErrLocationClosed, ReasonClosedThisDay)
	}

	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return types.TimeString{}, fmt.Errorf("%w: appointment crosses midnight", ErrOutsideOpeningHours)
	}

	if start.IsBefore(hours.OpenTime) || end.IsAfter(hours.CloseTime) {
		return types.TimeString{}, fmt.Errorf("%w: %s-%s is outside %s-%s",
			ErrOutsideOpeningHours, start, end, hours.OpenTime, hours.CloseTime)
	}

	return end, nil
}

// DateOnly обрезает время, оставляя календарную дату (UTC)
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate сравнивает только календарные даты
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
