package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/detect_conflicts"
)

// Service сервис жизненного цикла записей
type Service struct {
	appointmentRepo AppointmentRepository
	catalog         BusinessCatalog
	detector        ConflictDetector
	notifier        Notifier
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	catalog BusinessCatalog,
	detector ConflictDetector,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		catalog:         catalog,
		detector:        detector,
		notifier:        notifier,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает запись по ID.
// Видеть запись может клиент или менеджер бизнеса.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d", id, userID)

	appointment, err := s.load(ctx, "GetByID", id, false)
	if err != nil {
		return nil, err
	}

	if _, err := s.checkUserAccess(ctx, appointment, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to appointment id=%d", userID, id)
		return nil, err
	}

	return models.FromDomainAppointment(appointment), nil
}

// ListReschedules возвращает историю переносов записи
func (s *Service) ListReschedules(ctx context.Context, id int64, userID int64) ([]models.RescheduleResponse, error) {
	s.logger.Info("ListReschedules: appointment id=%d, user=%d", id, userID)

	appointment, err := s.load(ctx, "ListReschedules", id, false)
	if err != nil {
		return nil, err
	}

	if _, err := s.checkUserAccess(ctx, appointment, userID); err != nil {
		s.logger.Warn("ListReschedules: access denied for user=%d to appointment id=%d", userID, id)
		return nil, err
	}

	history, err := s.appointmentRepo.ListReschedules(ctx, id)
	if err != nil {
		s.logger.Error("ListReschedules: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: ListReschedules - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainRescheduleList(history), nil
}

// GetUserAppointments получает записи пользователя, опционально по статусу.
// Пользователь видит только свои записи.
func (s *Service) GetUserAppointments(ctx context.Context, req *models.GetUserAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetUserAppointments: fetching appointments for user=%d, status=%v", req.UserID, req.Status)

	if req.RequesterID != req.UserID {
		s.logger.Warn("GetUserAppointments: user=%d requested appointments of user=%d", req.RequesterID, req.UserID)
		return nil, ErrAccessDenied
	}

	var status *domain.AppointmentStatus
	if req.Status != nil {
		parsed, err := models.ToDomainStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserAppointments: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = &parsed
	}

	appointments, err := s.appointmentRepo.GetByUserID(ctx, req.UserID, status)
	if err != nil {
		s.logger.Error("GetUserAppointments: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserAppointments: fetched %d appointments for user=%d", len(appointments), req.UserID)
	return models.FromDomainAppointmentList(appointments), nil
}

// GetBusinessAppointments получает записи бизнеса с фильтрацией.
// Доступно только владельцу и менеджерам бизнеса.
func (s *Service) GetBusinessAppointments(ctx context.Context, req *models.GetBusinessAppointmentsRequest) (*models.AppointmentListResponse, error) {
	logMsg := fmt.Sprintf("GetBusinessAppointments: fetching appointments for business=%d, user=%d", req.BusinessID, req.UserID)
	if req.LocationID != nil {
		logMsg += fmt.Sprintf(", location=%d", *req.LocationID)
	}
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	s.logger.Info(logMsg)

	if _, err := s.checkManagerAccess(ctx, req.BusinessID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetBusinessAppointments: invalid filter for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}

	appointments, err := s.appointmentRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetBusinessAppointments: repository error for business=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: GetBusinessAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetBusinessAppointments: fetched %d appointments for business=%d", len(appointments), req.BusinessID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Approve подтверждает заявку: pending -> payment_pending.
// Перед переводом в занимающий слот статус заново проверяются пересечения.
func (s *Service) Approve(ctx context.Context, id int64, userID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("Approve: approving appointment id=%d by user=%d", id, userID)

	var approved *domain.Appointment

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		appointment, err := s.load(txCtx, "Approve", id, true)
		if err != nil {
			return err
		}

		if _, err := s.checkManagerAccess(txCtx, appointment.BusinessID, userID); err != nil {
			return err
		}

		if appointment.Status != domain.StatusPending {
			s.logger.Warn("Approve: appointment id=%d already processed, status=%s", id, appointment.Status)
			return ErrAlreadyProcessed
		}

		now := s.timeProvider.Now()
		if appointment.IsApprovalExpired(now) {
			s.logger.Warn("Approve: approval deadline expired for appointment id=%d", id)
			return ErrApprovalDeadlineExpired
		}

		conflicts, err := s.detector.Detect(txCtx, detect_conflicts.Query{
			OccupancyQuery: domain.OccupancyQuery{
				ServiceID:            appointment.ServiceID,
				Date:                 appointment.AppointmentDate,
				ProfessionalID:       appointment.ProfessionalID,
				ExcludeAppointmentID: &appointment.ID,
			},
			StartTime:       appointment.StartTime,
			DurationMinutes: appointment.DurationMinutes,
			Operation:       "approve",
		})
		if err != nil {
			if appointmentRepo.IsConflict(err) {
				return err
			}
			s.logger.Error("Approve: failed to detect conflicts: %v", err)
			return fmt.Errorf("%w: Approve - detect conflicts: %v", ErrInternal, err)
		}
		if len(conflicts) > 0 {
			s.logger.Warn("Approve: appointment id=%d overlaps: %s", id, domain.DescribeConflicts(conflicts))
			return ErrSlotNotAvailable
		}

		if err := s.appointmentRepo.Approve(txCtx, id, now); err != nil {
			return s.mapTransitionError("Approve", id, err)
		}

		appointment.Status = domain.StatusPaymentPending
		appointment.ApprovedAt = &now
		approved = appointment
		return nil
	})

	if err != nil {
		if appointmentRepo.IsSerializationFailure(err) {
			return nil, s.resolveLostApproval(ctx, id, userID, err)
		}
		if appointmentRepo.IsConflict(err) {
			s.logger.Warn("Approve: concurrent booking for appointment id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: %w", ErrSlotNotAvailable, ErrConcurrentBooking)
		}
		return nil, err
	}

	s.logger.Info("Approve: appointment id=%d approved", id)
	s.dispatch(ctx, "Approve", id, domain.EventApproved)

	return models.FromDomainAppointment(approved), nil
}

// resolveLostApproval определяет исход подтверждения, откатившегося из-за сбоя сериализации.
// Заявка перечитывается вне транзакции: если она уже не pending, её обработал другой запрос.
func (s *Service) resolveLostApproval(ctx context.Context, id, userID int64, cause error) error {
	appointment, err := s.load(ctx, "Approve", id, false)
	if err != nil {
		if appointmentRepo.IsConflict(err) {
			s.logger.Error("Approve: failed to reload appointment id=%d: %v", id, err)
			return fmt.Errorf("%w: Approve - reload after serialization failure: %v", ErrInternal, err)
		}
		return err
	}

	if _, err := s.checkManagerAccess(ctx, appointment.BusinessID, userID); err != nil {
		return err
	}

	if appointment.Status != domain.StatusPending {
		s.logger.Warn("Approve: appointment id=%d processed concurrently, status=%s", id, appointment.Status)
		return ErrAlreadyProcessed
	}

	s.logger.Warn("Approve: concurrent booking for appointment id=%d: %v", id, cause)
	return fmt.Errorf("%w: %w", ErrSlotNotAvailable, ErrConcurrentBooking)
}

// Reject отклоняет заявку с обязательной причиной
func (s *Service) Reject(ctx context.Context, id int64, req *models.RejectRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Reject: rejecting appointment id=%d by user=%d", id, req.UserID)

	reason := strings.TrimSpace(req.Reason)
	if n := utf8.RuneCountInString(reason); n < domain.MinRejectReasonLength || n > domain.MaxReasonLength {
		s.logger.Warn("Reject: invalid reason length=%d for appointment id=%d", n, id)
		return nil, fmt.Errorf("%w: reason must be between %d and %d characters",
			ErrInvalidInput, domain.MinRejectReasonLength, domain.MaxReasonLength)
	}

	appointment, err := s.load(ctx, "Reject", id, false)
	if err != nil {
		return nil, err
	}

	if _, err := s.checkManagerAccess(ctx, appointment.BusinessID, req.UserID); err != nil {
		return nil, err
	}

	if appointment.Status != domain.StatusPending {
		s.logger.Warn("Reject: appointment id=%d already processed, status=%s", id, appointment.Status)
		return nil, ErrAlreadyProcessed
	}

	now := s.timeProvider.Now()
	if err := s.appointmentRepo.Reject(ctx, id, reason, now); err != nil {
		return nil, s.mapTransitionError("Reject", id, err)
	}

	appointment.Status = domain.StatusRejected
	appointment.RejectedAt = &now
	appointment.RejectionReason = &reason

	s.logger.Info("Reject: appointment id=%d rejected", id)
	s.dispatch(ctx, "Reject", id, domain.EventRejected)

	return models.FromDomainAppointment(appointment), nil
}

// Cancel отменяет запись и считает возврат по правилам бизнеса.
// Отменить может клиент или менеджер бизнеса.
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelRequest) (*models.CancelResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d by user=%d", id, req.UserID)

	if req.Reason != nil && utf8.RuneCountInString(*req.Reason) > domain.MaxReasonLength {
		return nil, fmt.Errorf("%w: reason is too long", ErrInvalidInput)
	}

	appointment, err := s.load(ctx, "Cancel", id, false)
	if err != nil {
		return nil, err
	}

	business, err := s.checkUserAccess(ctx, appointment, req.UserID)
	if err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to appointment id=%d", req.UserID, id)
		return nil, err
	}

	if !appointment.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", id, appointment.Status)
		return nil, ErrCannotCancel
	}

	location, err := s.catalog.GetLocation(ctx, appointment.LocationID)
	if err != nil {
		s.logger.Error("Cancel: failed to get location id=%d: %v", appointment.LocationID, err)
		return nil, fmt.Errorf("%w: Cancel - failed to get location: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	refund := domain.CalculateRefund(appointment, business, appointment.StartsAt(location.TimeLocation()), now)

	params := appointmentRepo.CancelParams{
		Reason:           req.Reason,
		CancelledBy:      req.UserID,
		CancelledAt:      now,
		RefundPercentage: refund.RefundPercentage,
		RefundAmount:     refund.RefundAmount,
	}
	if err := s.appointmentRepo.Cancel(ctx, id, appointment.Status, params); err != nil {
		return nil, s.mapTransitionError("Cancel", id, err)
	}

	appointment.Status = domain.StatusCancelled
	appointment.CancelledAt = &now
	appointment.CancellationReason = req.Reason
	appointment.CancelledBy = &req.UserID
	appointment.RefundPercentage = &refund.RefundPercentage
	appointment.RefundAmount = &refund.RefundAmount

	s.logger.Info("Cancel: appointment id=%d cancelled, refund=%d%% (%.2f)",
		id, refund.RefundPercentage, refund.RefundAmount)
	s.dispatch(ctx, "Cancel", id, domain.EventCancelled)

	return &models.CancelResponse{
		Appointment: models.FromDomainAppointment(appointment),
		Refund:      models.FromDomainRefund(refund),
	}, nil
}

// ConfirmPayment фиксирует результат оплаты: payment_pending -> confirmed
func (s *Service) ConfirmPayment(ctx context.Context, id int64, req *models.ConfirmPaymentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("ConfirmPayment: appointment id=%d, amount=%.2f", id, req.AmountPaid)

	if req.AmountPaid < 0 {
		return nil, fmt.Errorf("%w: amountPaid must not be negative", ErrInvalidInput)
	}

	appointment, err := s.load(ctx, "ConfirmPayment", id, false)
	if err != nil {
		return nil, err
	}

	if !appointment.Status.CanTransitionTo(domain.StatusConfirmed) {
		s.logger.Warn("ConfirmPayment: appointment id=%d has status=%s", id, appointment.Status)
		return nil, ErrInvalidTransition
	}

	paidAt := s.timeProvider.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	amount := domain.Round2(req.AmountPaid)

	if err := s.appointmentRepo.ConfirmPayment(ctx, id, amount, paidAt); err != nil {
		return nil, s.mapTransitionError("ConfirmPayment", id, err)
	}

	appointment.Status = domain.StatusConfirmed
	appointment.TotalPaid = amount
	appointment.PaidAt = &paidAt

	s.logger.Info("ConfirmPayment: appointment id=%d confirmed", id)
	s.dispatch(ctx, "ConfirmPayment", id, domain.EventConfirmed)

	return models.FromDomainAppointment(appointment), nil
}

// CloseOut закрывает визит: confirmed -> completed | no_show.
// Доступно только менеджерам бизнеса.
func (s *Service) CloseOut(ctx context.Context, id int64, req *models.CloseOutRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("CloseOut: appointment id=%d to status=%s by user=%d", id, req.Status, req.UserID)

	target, err := models.ToDomainStatus(req.Status)
	if err != nil || (target != domain.StatusCompleted && target != domain.StatusNoShow) {
		s.logger.Warn("CloseOut: invalid status=%s for appointment id=%d", req.Status, id)
		return nil, fmt.Errorf("%w: status must be completed or no_show", ErrInvalidInput)
	}

	appointment, err := s.load(ctx, "CloseOut", id, false)
	if err != nil {
		return nil, err
	}

	if _, err := s.checkManagerAccess(ctx, appointment.BusinessID, req.UserID); err != nil {
		return nil, err
	}

	if !appointment.Status.CanTransitionTo(target) {
		s.logger.Warn("CloseOut: transition %s -> %s not allowed for appointment id=%d", appointment.Status, target, id)
		return nil, ErrInvalidTransition
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, appointment.Status, target); err != nil {
		return nil, s.mapTransitionError("CloseOut", id, err)
	}
	appointment.Status = target

	event := domain.EventCompleted
	if target == domain.StatusNoShow {
		event = domain.EventNoShow
	}

	s.logger.Info("CloseOut: appointment id=%d closed as %s", id, target)
	s.dispatch(ctx, "CloseOut", id, event)

	return models.FromDomainAppointment(appointment), nil
}

// ExpireOverdue переводит в expired все заявки с истекшим сроком подтверждения.
// Вызывается внешним планировщиком.
func (s *Service) ExpireOverdue(ctx context.Context) (*models.ExpireResponse, error) {
	now := s.timeProvider.Now()
	s.logger.Info("ExpireOverdue: expiring pending appointments, now=%s", now.Format("2006-01-02T15:04:05Z07:00"))

	ids, err := s.appointmentRepo.ExpireOverdue(ctx, now)
	if err != nil {
		s.logger.Error("ExpireOverdue: repository error: %v", err)
		return nil, fmt.Errorf("%w: ExpireOverdue - repository error: %v", ErrInternal, err)
	}

	for _, id := range ids {
		s.dispatch(ctx, "ExpireOverdue", id, domain.EventExpired)
	}

	s.logger.Info("ExpireOverdue: expired %d appointments", len(ids))
	return &models.ExpireResponse{ExpiredIDs: ids, Count: len(ids)}, nil
}

// Вспомогательные методы

func (s *Service) load(ctx context.Context, op string, id int64, forUpdate bool) (*domain.Appointment, error) {
	var (
		appointment *domain.Appointment
		err         error
	)
	if forUpdate {
		appointment, err = s.appointmentRepo.GetByIDForUpdate(ctx, id)
	} else {
		appointment, err = s.appointmentRepo.GetByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		if appointmentRepo.IsConflict(err) {
			return nil, err
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appointment, nil
}

// mapTransitionError переводит ошибки условного обновления в ошибки сервиса
func (s *Service) mapTransitionError(op string, id int64, err error) error {
	switch {
	case errors.Is(err, appointmentRepo.ErrStatusChanged):
		s.logger.Warn("%s: appointment id=%d status changed concurrently", op, id)
		return ErrAlreadyProcessed
	case appointmentRepo.IsConflict(err):
		return err
	default:
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

// checkUserAccess разрешает доступ клиенту записи или менеджеру бизнеса
func (s *Service) checkUserAccess(ctx context.Context, appointment *domain.Appointment, userID int64) (*domain.Business, error) {
	business, err := s.getBusiness(ctx, appointment.BusinessID)
	if err != nil {
		return nil, err
	}
	if appointment.UserID != userID && !business.IsManager(userID) {
		return nil, ErrAccessDenied
	}
	return business, nil
}

// checkManagerAccess проверяет, что пользователь владелец или менеджер бизнеса
func (s *Service) checkManagerAccess(ctx context.Context, businessID int64, userID int64) (*domain.Business, error) {
	business, err := s.getBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if !business.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of business=%d", userID, businessID)
		return nil, ErrAccessDenied
	}
	return business, nil
}

func (s *Service) getBusiness(ctx context.Context, businessID int64) (*domain.Business, error) {
	business, err := s.catalog.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrBusinessNotFound) {
			s.logger.Warn("getBusiness: business id=%d not found", businessID)
			return nil, ErrBusinessNotFound
		}
		s.logger.Error("getBusiness: failed to get business id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}
	return business, nil
}

// dispatch отправляет событие; ошибка доставки не отменяет операцию
func (s *Service) dispatch(ctx context.Context, op string, id int64, event domain.EventType) {
	if err := s.notifier.Dispatch(ctx, id, event); err != nil {
		s.logger.Warn("%s: failed to dispatch %s for appointment id=%d: %v", op, event, id, err)
	}
}
