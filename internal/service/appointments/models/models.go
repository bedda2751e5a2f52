package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// CancelRequest запрос на отмену записи
type CancelRequest struct {
	UserID int64   `json:"userId"`
	Reason *string `json:"reason,omitempty"`
}

// RejectRequest запрос на отклонение заявки
type RejectRequest struct {
	UserID int64  `json:"userId"`
	Reason string `json:"reason"`
}

// CloseOutRequest запрос на закрытие визита (completed / no_show)
type CloseOutRequest struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

// ConfirmPaymentRequest результат оплаты от платежного шлюза
type ConfirmPaymentRequest struct {
	AmountPaid float64    `json:"amountPaid"`
	PaidAt     *time.Time `json:"paidAt,omitempty"` // По умолчанию - текущее время
}

// GetUserAppointmentsRequest запрос на получение записей пользователя
type GetUserAppointmentsRequest struct {
	RequesterID int64   `json:"-"`
	UserID      int64   `json:"userId"`
	Status      *string `json:"status,omitempty"`
}

// GetBusinessAppointmentsRequest запрос на получение записей бизнеса
type GetBusinessAppointmentsRequest struct {
	UserID          int64      `json:"userId"`
	BusinessID      int64      `json:"businessId"`
	LocationID      *int64     `json:"locationId,omitempty"`      // Фильтр по локации (опционально)
	ServiceID       *int64     `json:"serviceId,omitempty"`       // Фильтр по услуге (опционально)
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить записи в конечных статусах
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetBusinessAppointmentsRequest) ToDomainFilter() (domain.BusinessAppointmentsFilter, error) {
	filter := domain.BusinessAppointmentsFilter{
		BusinessID:      r.BusinessID,
		LocationID:      r.LocationID,
		ServiceID:       r.ServiceID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"userId"`
	BusinessID      int64  `json:"businessId"`
	LocationID      int64  `json:"locationId"`
	ServiceID       int64  `json:"serviceId"`
	ProfessionalID  *int64 `json:"professionalId,omitempty"`
	AppointmentDate string `json:"appointmentDate"` // "2025-10-15"
	StartTime       string `json:"startTime"`       // "10:00"
	EndTime         string `json:"endTime"`         // "11:00"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	ServicePrice  float64    `json:"servicePrice"`
	PlatformFee   float64    `json:"platformFee"`
	TotalAmount   float64    `json:"totalAmount"`
	DepositAmount float64    `json:"depositAmount"`
	TotalPaid     float64    `json:"totalPaid"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`

	HasConflict  bool    `json:"hasConflict"`
	ConflictNote *string `json:"conflictNote,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	ApprovalDeadline *time.Time `json:"approvalDeadline,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	RejectedAt       *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason  *string    `json:"rejectionReason,omitempty"`

	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledBy        *int64     `json:"cancelledBy,omitempty"`
	RefundPercentage   *int       `json:"refundPercentage,omitempty"`
	RefundAmount       *float64   `json:"refundAmount,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// RefundResponse расчет возврата при отмене
type RefundResponse struct {
	HoursUntil       float64 `json:"hoursUntil"`
	RefundPercentage int     `json:"refundPercentage"`
	RefundAmount     float64 `json:"refundAmount"`
	Eligible         bool    `json:"eligible"`
}

// CancelResponse ответ на отмену записи
type CancelResponse struct {
	Appointment *AppointmentResponse `json:"appointment"`
	Refund      RefundResponse       `json:"refund"`
}

// RescheduleResponse запись истории переносов
type RescheduleResponse struct {
	ID           int64     `json:"id"`
	OldDate      string    `json:"oldDate"`
	OldStartTime string    `json:"oldStartTime"`
	OldEndTime   string    `json:"oldEndTime"`
	NewDate      string    `json:"newDate"`
	NewStartTime string    `json:"newStartTime"`
	NewEndTime   string    `json:"newEndTime"`
	Reason       *string   `json:"reason,omitempty"`
	InitiatedBy  int64     `json:"initiatedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ExpireResponse результат пакетного истечения заявок
type ExpireResponse struct {
	ExpiredIDs []int64 `json:"expiredIds"`
	Count      int     `json:"count"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	return &AppointmentResponse{
		ID:                 a.ID,
		UserID:             a.UserID,
		BusinessID:         a.BusinessID,
		LocationID:         a.LocationID,
		ServiceID:          a.ServiceID,
		ProfessionalID:     a.ProfessionalID,
		AppointmentDate:    a.AppointmentDate.Format(domain.DateFormat),
		StartTime:          a.StartTime.String(),
		EndTime:            a.EndTime.String(),
		DurationMinutes:    a.DurationMinutes,
		Status:             string(a.Status),
		ServicePrice:       a.ServicePrice,
		PlatformFee:        a.PlatformFee,
		TotalAmount:        a.TotalAmount,
		DepositAmount:      a.DepositAmount,
		TotalPaid:          a.TotalPaid,
		PaidAt:             a.PaidAt,
		HasConflict:        a.HasConflict,
		ConflictNote:       a.ConflictNote,
		Notes:              a.Notes,
		ApprovalDeadline:   a.ApprovalDeadline,
		ApprovedAt:         a.ApprovedAt,
		RejectedAt:         a.RejectedAt,
		RejectionReason:    a.RejectionReason,
		CancelledAt:        a.CancelledAt,
		CancellationReason: a.CancellationReason,
		CancelledBy:        a.CancelledBy,
		RefundPercentage:   a.RefundPercentage,
		RefundAmount:       a.RefundAmount,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		if dto := FromDomainAppointment(a); dto != nil {
			resp.Appointments = append(resp.Appointments, *dto)
		}
	}

	return resp
}

// FromDomainRefund конвертирует расчет возврата в DTO
func FromDomainRefund(r domain.RefundBreakdown) RefundResponse {
	return RefundResponse{
		HoursUntil:       domain.Round2(r.HoursUntil),
		RefundPercentage: r.RefundPercentage,
		RefundAmount:     r.RefundAmount,
		Eligible:         r.Eligible,
	}
}

// FromDomainReschedule конвертирует запись истории переносов в DTO
func FromDomainReschedule(rs *domain.AppointmentReschedule) *RescheduleResponse {
	if rs == nil {
		return nil
	}

	return &RescheduleResponse{
		ID:           rs.ID,
		OldDate:      rs.OldDate.Format(domain.DateFormat),
		OldStartTime: rs.OldStartTime.String(),
		OldEndTime:   rs.OldEndTime.String(),
		NewDate:      rs.NewDate.Format(domain.DateFormat),
		NewStartTime: rs.NewStartTime.String(),
		NewEndTime:   rs.NewEndTime.String(),
		Reason:       rs.Reason,
		InitiatedBy:  rs.InitiatedBy,
		CreatedAt:    rs.CreatedAt,
	}
}

// FromDomainRescheduleList конвертирует историю переносов в DTO
func FromDomainRescheduleList(list []*domain.AppointmentReschedule) []RescheduleResponse {
	out := make([]RescheduleResponse, 0, len(list))
	for _, rs := range list {
		if dto := FromDomainReschedule(rs); dto != nil {
			out = append(out, *dto)
		}
	}
	return out
}

// ToDomainStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainStatus(status string) (domain.AppointmentStatus, error) {
	s, err := domain.ParseAppointmentStatus(status)
	if err != nil {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// ConflictResponse пересекающаяся запись
type ConflictResponse struct {
	AppointmentID  int64  `json:"appointmentId"`
	Date           string `json:"date"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Status         string `json:"status"`
	ProfessionalID *int64 `json:"professionalId,omitempty"`
}

// FromDomainConflicts конвертирует пересечения в DTO (пустой список, не null)
func FromDomainConflicts(conflicts []domain.Conflict) []ConflictResponse {
	out := make([]ConflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, ConflictResponse{
			AppointmentID:  c.AppointmentID,
			Date:           c.Date.Format(domain.DateFormat),
			StartTime:      c.StartTime.String(),
			EndTime:        c.EndTime.String(),
			Status:         string(c.Status),
			ProfessionalID: c.ProfessionalID,
		})
	}
	return out
}
