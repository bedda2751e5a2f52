package detect_conflicts

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
)

// UseCase use case проверки пересечений (только чтение)
type UseCase struct {
	detector *Detector
	catalog  ServiceCatalog
	logger   Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(detector *Detector, catalog ServiceCatalog, logger Logger) *UseCase {
	return &UseCase{
		detector: detector,
		catalog:  catalog,
		logger:   logger,
	}
}

// Execute проверяет, пересекается ли кандидат с занимающими записями
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("DetectConflicts: service=%d, date=%s, time=%s, duration=%d",
		req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.DurationMinutes)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("DetectConflicts: validation failed: %v", err)
		return nil, err
	}

	if _, err := uc.catalog.GetServiceDetails(ctx, req.ServiceID); err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("DetectConflicts: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("DetectConflicts: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	conflicts, err := uc.detector.Detect(ctx, Query{
		OccupancyQuery: domain.OccupancyQuery{
			ServiceID:            req.ServiceID,
			Date:                 req.Date,
			ProfessionalID:       req.ProfessionalID,
			ExcludeAppointmentID: req.ExcludeAppointmentID,
		},
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		uc.logger.Error("DetectConflicts: failed to load appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to load appointments: %v", ErrInternal, err)
	}

	uc.logger.Info("DetectConflicts: service=%d, found %d conflict(s)", req.ServiceID, len(conflicts))

	return &Response{
		HasConflict: len(conflicts) > 0,
		Conflicts:   conflicts,
	}, nil
}
