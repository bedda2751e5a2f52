package domain

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // временные зоны локаций не зависят от ОС
)

var (
	// ErrTooLateToBook до начала записи меньше минимального срока
	ErrTooLateToBook = errors.New("domain: minimum advance notice not met")
	// ErrBeyondAdvanceLimit дата дальше разрешённого горизонта записи
	ErrBeyondAdvanceLimit = errors.New("domain: date beyond advance booking limit")
)

// Business настройки бизнеса, влияющие на запись
type Business struct {
	ID                   int64
	Name                 string
	OwnerID              int64
	ManagerIDs           []int64
	MinAdvanceHours      int
	MaxAdvanceDays       int // 0 = без ограничения
	BookingApprovalHours int
	CancellationHours    int
	RefundPercentage     int // 0..100
}

// IsManager возвращает true, если пользователь владелец или менеджер бизнеса
func (b *Business) IsManager(userID int64) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, id := range b.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasAdvanceLimit возвращает true, если ограничена дальность записи
func (b *Business) HasAdvanceLimit() bool {
	return b.MaxAdvanceDays > 0
}

// IsBeyondAdvanceLimit проверяет, что дата дальше MaxAdvanceDays от сегодняшнего дня.
// now должен быть в зоне локации.
func (b *Business) IsBeyondAdvanceLimit(date, now time.Time) bool {
	if !b.HasAdvanceLimit() {
		return false
	}
	maxDate := DateOnly(now).AddDate(0, 0, b.MaxAdvanceDays)
	return DateOnly(date).After(maxDate)
}

// CheckAdvance проверяет минимальный и максимальный срок записи с началом startsAt
func (b *Business) CheckAdvance(startsAt, now time.Time) error {
	if startsAt.Sub(now) < time.Duration(b.MinAdvanceHours)*time.Hour {
		return fmt.Errorf("%w: must book at least %d hours in advance", ErrTooLateToBook, b.MinAdvanceHours)
	}
	if b.IsBeyondAdvanceLimit(startsAt, now) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrBeyondAdvanceLimit, b.MaxAdvanceDays)
	}
	return nil
}

// Location точка обслуживания бизнеса
type Location struct {
	ID         int64
	BusinessID int64
	Province   string
	City       string
	Address    string
	Timezone   string // IANA, пусто = UTC
}

// TimeLocation возвращает временную зону локации (UTC при пустом или неизвестном значении)
func (l *Location) TimeLocation() *time.Location {
	if l.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Service услуга, оказываемая в локации
type Service struct {
	ID                int64
	LocationID        int64
	BusinessID        int64
	Name              string
	DurationMinutes   int
	BufferMinutes     int
	Price             float64
	RequiresApproval  bool
	RequiresDeposit   bool
	DepositAmount     *float64
	DepositPercentage *float64
}

// ServiceDetails услуга вместе с локацией и настройками бизнеса
type ServiceDetails struct {
	Service  Service
	Location Location
	Business Business
}
