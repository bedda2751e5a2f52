package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/detect_conflicts"
)

// UseCase use case переноса записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	catalog         ServiceCatalog
	schedules       ScheduleStore
	detector        ConflictDetector
	notifier        Notifier
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalog ServiceCatalog,
	schedules ScheduleStore,
	detector ConflictDetector,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		catalog:         catalog,
		schedules:       schedules,
		detector:        detector,
		notifier:        notifier,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute переносит запись на новые дату и время.
// Любое пересечение (кроме самой записи) отменяет перенос без изменений.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: appointment=%d, user=%d, date=%s, time=%s",
		req.AppointmentID, req.UserID, req.Date.Format(domain.DateFormat), req.StartTime)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	var result Response

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Блокируем запись
		appointment, err := uc.appointmentRepo.GetByIDForUpdate(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("RescheduleAppointment: appointment id=%d not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			if appointmentRepo.IsConflict(err) {
				return err
			}
			uc.logger.Error("RescheduleAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		// 2. Услуга и настройки бизнеса
		details, err := uc.catalog.GetServiceDetails(txCtx, appointment.ServiceID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				uc.logger.Warn("RescheduleAppointment: service id=%d not found", appointment.ServiceID)
				return ErrServiceNotFound
			}
			uc.logger.Error("RescheduleAppointment: failed to get service id=%d: %v", appointment.ServiceID, err)
			return fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}

		if appointment.UserID != req.UserID && !details.Business.IsManager(req.UserID) {
			uc.logger.Warn("RescheduleAppointment: access denied for user=%d to appointment id=%d",
				req.UserID, req.AppointmentID)
			return ErrAccessDenied
		}

		if !appointment.CanBeRescheduled() {
			uc.logger.Warn("RescheduleAppointment: appointment id=%d cannot be rescheduled, status=%s",
				req.AppointmentID, appointment.Status)
			return ErrCannotReschedule
		}

		// 3. Правила расписания для нового времени
		schedule, err := uc.schedules.GetLocationSchedule(txCtx, appointment.LocationID)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to get schedule for location=%d: %v", appointment.LocationID, err)
			return fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
		}

		endTime, err := validateSchedule(schedule, req.Date, req.StartTime, appointment.DurationMinutes)
		if err != nil {
			uc.logger.Warn("RescheduleAppointment: schedule validation failed: %v", err)
			return err
		}

		loc := details.Location.TimeLocation()
		now := uc.timeProvider.Now().In(loc)
		if err := validateAdvance(req.StartTime.OnDate(req.Date, loc), now, &details.Business); err != nil {
			uc.logger.Warn("RescheduleAppointment: advance validation failed: %v", err)
			return err
		}

		// 4. Пересечения без учета самой записи
		conflicts, err := uc.detector.Detect(txCtx, detect_conflicts.Query{
			OccupancyQuery: domain.OccupancyQuery{
				ServiceID:            appointment.ServiceID,
				Date:                 req.Date,
				ProfessionalID:       appointment.ProfessionalID,
				ExcludeAppointmentID: &appointment.ID,
			},
			StartTime:       req.StartTime,
			DurationMinutes: appointment.DurationMinutes,
			Operation:       "reschedule",
		})
		if err != nil {
			if appointmentRepo.IsConflict(err) {
				return err
			}
			uc.logger.Error("RescheduleAppointment: failed to detect conflicts: %v", err)
			return fmt.Errorf("%w: failed to detect conflicts: %v", ErrInternal, err)
		}
		if len(conflicts) > 0 {
			uc.logger.Warn("RescheduleAppointment: appointment id=%d new time overlaps: %s",
				req.AppointmentID, domain.DescribeConflicts(conflicts))
			return ErrSlotNotAvailable
		}

		// 5. История и обновление
		history, err := uc.appointmentRepo.InsertReschedule(txCtx, &domain.AppointmentReschedule{
			AppointmentID: appointment.ID,
			OldDate:       appointment.AppointmentDate,
			OldStartTime:  appointment.StartTime,
			OldEndTime:    appointment.EndTime,
			NewDate:       domain.DateOnly(req.Date),
			NewStartTime:  req.StartTime,
			NewEndTime:    endTime,
			Reason:        req.Reason,
			InitiatedBy:   req.UserID,
		})
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to insert history: %v", err)
			return fmt.Errorf("%w: failed to insert history: %v", ErrInternal, err)
		}

		if err := uc.appointmentRepo.Reschedule(txCtx, appointment.ID, req.Date, req.StartTime, endTime); err != nil {
			if appointmentRepo.IsConflict(err) {
				return err
			}
			uc.logger.Error("RescheduleAppointment: failed to update appointment id=%d: %v", appointment.ID, err)
			return fmt.Errorf("%w: failed to update appointment: %v", ErrInternal, err)
		}

		appointment.AppointmentDate = domain.DateOnly(req.Date)
		appointment.StartTime = req.StartTime
		appointment.EndTime = endTime
		appointment.HasConflict = false
		appointment.ConflictNote = nil

		result = Response{Appointment: appointment, Reschedule: history}
		return nil
	})

	if err != nil {
		if appointmentRepo.IsConflict(err) {
			uc.logger.Warn("RescheduleAppointment: concurrent booking for appointment id=%d: %v", req.AppointmentID, err)
			return nil, fmt.Errorf("%w: %w", ErrSlotNotAvailable, ErrConcurrentBooking)
		}
		return nil, err
	}

	uc.logger.Info("RescheduleAppointment: appointment id=%d moved to %s %s",
		req.AppointmentID, req.Date.Format(domain.DateFormat), req.StartTime)

	if err := uc.notifier.Dispatch(ctx, req.AppointmentID, domain.EventRescheduled); err != nil {
		uc.logger.Warn("RescheduleAppointment: failed to dispatch event for appointment id=%d: %v", req.AppointmentID, err)
	}

	return &result, nil
}
