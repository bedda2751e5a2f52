package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Appointment запись клиента на услугу. Физически не удаляется.
type Appointment struct {
	ID              int64
	UserID          int64
	BusinessID      int64
	LocationID      int64
	ServiceID       int64
	ProfessionalID  *int64
	AppointmentDate time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	Status          AppointmentStatus

	// Снимок цен на момент создания
	ServicePrice  float64
	PlatformFee   float64
	TotalAmount   float64
	DepositAmount float64
	TotalPaid     float64
	PaidAt        *time.Time

	HasConflict  bool
	ConflictNote *string
	Notes        *string

	ApprovalDeadline *time.Time
	ApprovedAt       *time.Time
	RejectedAt       *time.Time
	RejectionReason  *string

	CancelledAt        *time.Time
	CancellationReason *string
	CancelledBy        *int64
	RefundPercentage   *int
	RefundAmount       *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOccupying возвращает true, если запись занимает слот
func (a *Appointment) IsOccupying() bool {
	return a.Status.IsOccupying()
}

// CanBeCancelled возвращает true, если запись можно отменить
func (a *Appointment) CanBeCancelled() bool {
	return a.Status.CanTransitionTo(StatusCancelled)
}

// CanBeRescheduled возвращает true, если запись можно перенести
func (a *Appointment) CanBeRescheduled() bool {
	return !a.Status.IsTerminal()
}

// IsPaid возвращает true, если по записи прошла оплата
func (a *Appointment) IsPaid() bool {
	return a.PaidAt != nil
}

// StartsAt возвращает момент начала записи во временной зоне локации
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	return a.StartTime.OnDate(a.AppointmentDate, loc)
}

// IsApprovalExpired возвращает true, если срок подтверждения истек
func (a *Appointment) IsApprovalExpired(now time.Time) bool {
	return a.ApprovalDeadline != nil && now.After(*a.ApprovalDeadline)
}

// AppointmentReschedule запись истории переноса (только добавление)
type AppointmentReschedule struct {
	ID            int64
	AppointmentID int64
	OldDate       time.Time
	OldStartTime  types.TimeString
	OldEndTime    types.TimeString
	NewDate       time.Time
	NewStartTime  types.TimeString
	NewEndTime    types.TimeString
	Reason        *string
	InitiatedBy   int64
	CreatedAt     time.Time
}

// BusinessAppointmentsFilter фильтр для получения записей бизнеса
type BusinessAppointmentsFilter struct {
	BusinessID      int64              // Обязательный параметр
	LocationID      *int64             // Фильтр по локации (опционально)
	ServiceID       *int64             // Фильтр по услуге (опционально)
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли записи в конечных статусах
}

// OccupancyQuery параметры выборки занимающих слот записей
type OccupancyQuery struct {
	ServiceID            int64
	Date                 time.Time
	ProfessionalID       *int64
	ExcludeAppointmentID *int64
}
