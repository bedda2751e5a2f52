package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/detect_conflicts"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo   AppointmentRepository
	catalog           ServiceCatalog
	schedules         ScheduleStore
	detector          ConflictDetector
	notifier          Notifier
	txManager         TransactionManager
	timeProvider      TimeProvider
	logger            Logger
	rejectConflicting bool
}

// NewUseCase создает новый экземпляр use case.
// rejectConflicting = false: пересекающаяся заявка сохраняется с флагом hasConflict в статусе pending;
// rejectConflicting = true: пересекающаяся заявка отклоняется с ErrSlotNotAvailable.
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalog ServiceCatalog,
	schedules ScheduleStore,
	detector ConflictDetector,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
	rejectConflicting bool,
) *UseCase {
	return &UseCase{
		appointmentRepo:   appointmentRepo,
		catalog:           catalog,
		schedules:         schedules,
		detector:          detector,
		notifier:          notifier,
		txManager:         txManager,
		timeProvider:      &RealTimeProvider{},
		logger:            logger,
		rejectConflicting: rejectConflicting,
	}
}

// Execute выполняет use case создания записи.
// Проверка пересечений и вставка выполняются в одной сериализуемой транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: user=%d, service=%d, date=%s, time=%s",
		req.UserID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Услуга вместе с локацией и настройками бизнеса
	details, err := uc.catalog.GetServiceDetails(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	service := &details.Service
	business := &details.Business
	loc := details.Location.TimeLocation()
	now := uc.timeProvider.Now().In(loc)

	// 3. Расписание локации
	schedule, err := uc.schedules.GetLocationSchedule(ctx, service.LocationID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrLocationNotFound) {
			uc.logger.Warn("CreateAppointment: location id=%d not found", service.LocationID)
			return nil, ErrLocationNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get schedule for location=%d: %v", service.LocationID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	var (
		result    *domain.Appointment
		conflicts []domain.Conflict
	)

	// 4. Проверки и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		endTime, err := validateSchedule(schedule, req.Date, req.StartTime, service.DurationMinutes)
		if err != nil {
			uc.logger.Warn("CreateAppointment: schedule validation failed: %v", err)
			return err
		}

		if err := validateAdvance(req.StartTime.OnDate(req.Date, loc), now, business); err != nil {
			uc.logger.Warn("CreateAppointment: advance validation failed: %v", err)
			return err
		}

		// 4.1. Журнал загружается с блокировкой строк
		conflicts, err = uc.detector.Detect(txCtx, detect_conflicts.Query{
			OccupancyQuery: domain.OccupancyQuery{
				ServiceID:      service.ID,
				Date:           req.Date,
				ProfessionalID: req.ProfessionalID,
			},
			StartTime:       req.StartTime,
			DurationMinutes: service.DurationMinutes,
			Operation:       "create",
		})
		if err != nil {
			if appointmentRepo.IsConflict(err) {
				return err
			}
			uc.logger.Error("CreateAppointment: failed to detect conflicts: %v", err)
			return fmt.Errorf("%w: failed to detect conflicts: %v", ErrInternal, err)
		}

		if len(conflicts) > 0 && uc.rejectConflicting {
			uc.logger.Warn("CreateAppointment: slot %s %s overlaps %d appointment(s)",
				req.Date.Format(domain.DateFormat), req.StartTime, len(conflicts))
			return ErrSlotNotAvailable
		}

		// 4.2. Собираем запись
		appointment := uc.buildAppointment(req, details, endTime, now)
		if len(conflicts) > 0 {
			// Пересекающаяся заявка не занимает слот, пока бизнес ее не одобрит
			appointment.HasConflict = true
			appointment.ConflictNote = ptr.Ptr(domain.DescribeConflicts(conflicts))
			appointment.Status = domain.StatusPending
			uc.logger.Warn("CreateAppointment: slot overlaps %d appointment(s), saving as pending with conflict flag",
				len(conflicts))
		}

		created, err := uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			if appointmentRepo.IsConflict(err) {
				return err
			}
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if appointmentRepo.IsConflict(err) {
			uc.logger.Warn("CreateAppointment: concurrent booking for service=%d, date=%s, time=%s: %v",
				req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, err)
			return nil, fmt.Errorf("%w: %w", ErrSlotNotAvailable, ErrConcurrentBooking)
		}
		return nil, err
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d, status=%s", result.ID, result.Status)

	if err := uc.notifier.Dispatch(ctx, result.ID, domain.EventCreated); err != nil {
		uc.logger.Warn("CreateAppointment: failed to dispatch event for appointment id=%d: %v", result.ID, err)
	}

	return &Response{
		Appointment: result,
		Conflicts:   conflicts,
	}, nil
}

// buildAppointment собирает новую запись со снимком цен
func (uc *UseCase) buildAppointment(
	req *Request,
	details *domain.ServiceDetails,
	endTime types.TimeString,
	now time.Time,
) *domain.Appointment {
	service := &details.Service
	pricing := domain.CalculatePricing(service)

	status := domain.StatusConfirmed
	if service.RequiresApproval {
		status = domain.StatusPending
	}

	deadline := now.Add(time.Duration(details.Business.BookingApprovalHours) * time.Hour)

	return &domain.Appointment{
		UserID:           req.UserID,
		BusinessID:       service.BusinessID,
		LocationID:       service.LocationID,
		ServiceID:        service.ID,
		ProfessionalID:   req.ProfessionalID,
		AppointmentDate:  domain.DateOnly(req.Date),
		StartTime:        req.StartTime,
		EndTime:          endTime,
		DurationMinutes:  service.DurationMinutes,
		Status:           status,
		ServicePrice:     pricing.ServicePrice,
		PlatformFee:      pricing.PlatformFee,
		TotalAmount:      pricing.TotalAmount,
		DepositAmount:    pricing.DepositAmount,
		Notes:            req.Notes,
		ApprovalDeadline: &deadline,
	}
}
