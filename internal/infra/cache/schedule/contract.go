package schedule

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Repository источник расписаний (PostgreSQL)
type Repository interface {
	GetLocationSchedule(ctx context.Context, locationID int64) (*domain.LocationSchedule, error)
	ReplaceLocationSchedule(ctx context.Context, s *domain.LocationSchedule) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
