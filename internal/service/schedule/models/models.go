package models

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// UpdateScheduleRequest полная замена расписания локации
type UpdateScheduleRequest struct {
	UserID       int64            `json:"-"`
	WeeklyHours  []WeeklyHoursDTO `json:"weeklyHours"`
	BlockedDates []BlockedDateDTO `json:"blockedDates"`
}

// WeeklyHoursDTO часы работы в день недели (0 - воскресенье)
type WeeklyHoursDTO struct {
	DayOfWeek int    `json:"dayOfWeek"`
	OpenTime  string `json:"openTime,omitempty"`  // "09:00"
	CloseTime string `json:"closeTime,omitempty"` // "18:00"
	IsClosed  bool   `json:"isClosed"`
}

// BlockedDateDTO заблокированная дата
type BlockedDateDTO struct {
	Date              string  `json:"date"` // "2025-12-31"
	Reason            *string `json:"reason,omitempty"`
	RecurringAnnually bool    `json:"recurringAnnually"`
}

// Response модели

// ScheduleResponse расписание локации
type ScheduleResponse struct {
	LocationID   int64            `json:"locationId"`
	WeeklyHours  []WeeklyHoursDTO `json:"weeklyHours"`
	BlockedDates []BlockedDateDTO `json:"blockedDates"`
}

// FromDomainSchedule конвертирует domain модель в DTO
func FromDomainSchedule(s *domain.LocationSchedule) *ScheduleResponse {
	if s == nil {
		return nil
	}

	resp := &ScheduleResponse{
		LocationID:   s.LocationID,
		WeeklyHours:  make([]WeeklyHoursDTO, 0, len(s.WeeklyHours)),
		BlockedDates: make([]BlockedDateDTO, 0, len(s.BlockedDates)),
	}

	for _, h := range s.WeeklyHours {
		resp.WeeklyHours = append(resp.WeeklyHours, WeeklyHoursDTO{
			DayOfWeek: int(h.DayOfWeek),
			OpenTime:  h.OpenTime.String(),
			CloseTime: h.CloseTime.String(),
			IsClosed:  h.IsClosed,
		})
	}

	for _, b := range s.BlockedDates {
		resp.BlockedDates = append(resp.BlockedDates, BlockedDateDTO{
			Date:              b.Date.Format(domain.DateFormat),
			Reason:            b.Reason,
			RecurringAnnually: b.RecurringAnnually,
		})
	}

	return resp
}
