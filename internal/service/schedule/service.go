package schedule

import (
	"context"
	"errors"
	"fmt"

	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

// Service сервис редактирования расписаний локаций
type Service struct {
	reader      ScheduleReader
	writer      ScheduleWriter
	invalidator CacheInvalidator
	catalog     BusinessCatalog
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	reader ScheduleReader,
	writer ScheduleWriter,
	invalidator CacheInvalidator,
	catalog BusinessCatalog,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		reader:      reader,
		writer:      writer,
		invalidator: invalidator,
		catalog:     catalog,
		txManager:   txManager,
		logger:      logger,
	}
}

// Get возвращает расписание локации
func (s *Service) Get(ctx context.Context, locationID int64) (*models.ScheduleResponse, error) {
	s.logger.Info("Get: fetching schedule for location=%d", locationID)

	schedule, err := s.reader.GetLocationSchedule(ctx, locationID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrLocationNotFound) {
			s.logger.Warn("Get: location id=%d not found", locationID)
			return nil, ErrLocationNotFound
		}
		s.logger.Error("Get: failed to get schedule for location=%d: %v", locationID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(schedule), nil
}

// Update полностью заменяет расписание локации.
// Доступно только владельцу и менеджерам бизнеса. Кэш сбрасывается после коммита.
func (s *Service) Update(ctx context.Context, locationID int64, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Update: replacing schedule for location=%d by user=%d (%d days, %d blocked dates)",
		locationID, req.UserID, len(req.WeeklyHours), len(req.BlockedDates))

	schedule, err := toDomainSchedule(locationID, req)
	if err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, locationID, req.UserID); err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.writer.ReplaceLocationSchedule(txCtx, schedule)
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduleRepo.ErrLocationNotFound):
			return nil, ErrLocationNotFound
		case errors.Is(err, scheduleRepo.ErrDuplicateEntry):
			return nil, fmt.Errorf("%w: duplicate schedule entry", ErrInvalidInput)
		}
		s.logger.Error("Update: failed to replace schedule for location=%d: %v", locationID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.invalidator.Invalidate(ctx, locationID)

	s.logger.Info("Update: schedule for location=%d replaced", locationID)
	return models.FromDomainSchedule(schedule), nil
}

func (s *Service) checkManagerAccess(ctx context.Context, locationID int64, userID int64) error {
	location, err := s.catalog.GetLocation(ctx, locationID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrLocationNotFound) {
			s.logger.Warn("checkManagerAccess: location id=%d not found", locationID)
			return ErrLocationNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get location id=%d: %v", locationID, err)
		return fmt.Errorf("%w: failed to get location: %v", ErrInternal, err)
	}

	business, err := s.catalog.GetBusiness(ctx, location.BusinessID)
	if err != nil {
		s.logger.Error("checkManagerAccess: failed to get business id=%d: %v", location.BusinessID, err)
		return fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	if !business.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of business=%d", userID, business.ID)
		return ErrAccessDenied
	}

	return nil
}

