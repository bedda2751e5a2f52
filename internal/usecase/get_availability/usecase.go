package get_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
)

// UseCase use case расчета слотов услуги на дату
type UseCase struct {
	catalog      ServiceCatalog
	schedules    ScheduleStore
	ledger       LedgerLoader
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalog ServiceCatalog,
	schedules ScheduleStore,
	ledger LedgerLoader,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalog:      catalog,
		schedules:    schedules,
		ledger:       ledger,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute считает слоты услуги на дату.
// Заблокированная дата и выходной возвращают IsClosed без слотов.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: service=%d, date=%s", req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу с локацией и настройками бизнеса
	details, err := uc.catalog.GetServiceDetails(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailability: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailability: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	service := details.Service
	business := details.Business
	loc := details.Location.TimeLocation()
	now := uc.timeProvider.Now().In(loc)

	// 3. Ограничение дальности записи
	if business.IsBeyondAdvanceLimit(req.Date, now) {
		uc.logger.Warn("GetAvailability: date %s is beyond %d days limit",
			req.Date.Format(domain.DateFormat), business.MaxAdvanceDays)
		return nil, fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, business.MaxAdvanceDays)
	}

	resp := &Response{
		Date:       req.Date,
		ServiceID:  service.ID,
		LocationID: service.LocationID,
		Slots:      []Slot{},
	}

	// 4. Расписание локации
	schedule, err := uc.schedules.GetLocationSchedule(ctx, service.LocationID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrLocationNotFound) {
			uc.logger.Warn("GetAvailability: location id=%d not found", service.LocationID)
			return nil, ErrLocationNotFound
		}
		uc.logger.Error("GetAvailability: failed to get schedule for location=%d: %v", service.LocationID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	// 5. Заблокированная дата имеет приоритет над часами работы
	if blocked, ok := schedule.BlockedOn(req.Date); ok {
		uc.logger.Info("GetAvailability: location=%d is blocked on %s", service.LocationID, req.Date.Format(domain.DateFormat))
		resp.IsClosed = true
		resp.ClosedReason = blocked.ClosedReason()
		return resp, nil
	}

	hours, ok := schedule.HoursFor(req.Date.Weekday())
	if !ok || !hours.IsOpen() {
		uc.logger.Info("GetAvailability: location=%d is closed on %s", service.LocationID, req.Date.Weekday())
		resp.IsClosed = true
		resp.ClosedReason = domain.ReasonClosedThisDay
		return resp, nil
	}

	// 6. Журнал записей загружается один раз на все слоты
	ledger, err := uc.ledger.Snapshot(ctx, service.ID, req.Date, req.ProfessionalID)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to load appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to load appointments: %v", ErrInternal, err)
	}

	evaluator := &slotEvaluator{
		date:            req.Date,
		loc:             loc,
		now:             now,
		minAdvance:      time.Duration(business.MinAdvanceHours) * time.Hour,
		durationMinutes: service.DurationMinutes,
		ledger:          ledger,
	}

	available := 0
	for start := range SlotTimes(hours.OpenTime, hours.CloseTime, service.DurationMinutes, service.BufferMinutes) {
		slot := evaluator.evaluate(start)
		if slot.Available {
			available++
		}
		resp.Slots = append(resp.Slots, slot)
	}

	uc.logger.Info("GetAvailability: generated %d slots (%d available) for service=%d, date=%s",
		len(resp.Slots), available, service.ID, req.Date.Format(domain.DateFormat))

	return resp, nil
}
