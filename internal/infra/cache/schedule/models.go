package schedule

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// cachedSchedule представление расписания в Redis
type cachedSchedule struct {
	LocationID   int64           `json:"locationId"`
	WeeklyHours  []cachedHours   `json:"weeklyHours"`
	BlockedDates []cachedBlocked `json:"blockedDates"`
}

type cachedHours struct {
	DayOfWeek int              `json:"dayOfWeek"`
	OpenTime  types.TimeString `json:"openTime"`
	CloseTime types.TimeString `json:"closeTime"`
	IsClosed  bool             `json:"isClosed"`
}

type cachedBlocked struct {
	Date              string  `json:"date"`
	Reason            *string `json:"reason,omitempty"`
	RecurringAnnually bool    `json:"recurringAnnually"`
}

func toCached(s *domain.LocationSchedule) cachedSchedule {
	c := cachedSchedule{
		LocationID:   s.LocationID,
		WeeklyHours:  make([]cachedHours, 0, len(s.WeeklyHours)),
		BlockedDates: make([]cachedBlocked, 0, len(s.BlockedDates)),
	}
	for _, h := range s.WeeklyHours {
		c.WeeklyHours = append(c.WeeklyHours, cachedHours{
			DayOfWeek: int(h.DayOfWeek),
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
			IsClosed:  h.IsClosed,
		})
	}
	for _, b := range s.BlockedDates {
		c.BlockedDates = append(c.BlockedDates, cachedBlocked{
			Date:              b.Date.Format(domain.DateFormat),
			Reason:            b.Reason,
			RecurringAnnually: b.RecurringAnnually,
		})
	}
	return c
}

func (c cachedSchedule) toDomain() (*domain.LocationSchedule, error) {
	s := &domain.LocationSchedule{
		LocationID:   c.LocationID,
		WeeklyHours:  make([]domain.WeeklyHours, 0, len(c.WeeklyHours)),
		BlockedDates: make([]domain.BlockedDate, 0, len(c.BlockedDates)),
	}
	for _, h := range c.WeeklyHours {
		s.WeeklyHours = append(s.WeeklyHours, domain.WeeklyHours{
			LocationID: c.LocationID,
			DayOfWeek:  time.Weekday(h.DayOfWeek),
			OpenTime:   h.OpenTime,
			CloseTime:  h.CloseTime,
			IsClosed:   h.IsClosed,
		})
	}
	for _, b := range c.BlockedDates {
		date, err := time.Parse(domain.DateFormat, b.Date)
		if err != nil {
			return nil, err
		}
		s.BlockedDates = append(s.BlockedDates, domain.BlockedDate{
			LocationID:        c.LocationID,
			Date:              date,
			Reason:            b.Reason,
			RecurringAnnually: b.RecurringAnnually,
		})
	}
	return s, nil
}
