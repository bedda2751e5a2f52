package schedule

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ScheduleReader источник расписаний (обычно кэш поверх репозитория)
type ScheduleReader interface {
	GetLocationSchedule(ctx context.Context, locationID int64) (*domain.LocationSchedule, error)
}

// ScheduleWriter репозиторий для полной замены расписания
type ScheduleWriter interface {
	ReplaceLocationSchedule(ctx context.Context, schedule *domain.LocationSchedule) error
}

// CacheInvalidator сбрасывает кэш расписания локации
type CacheInvalidator interface {
	Invalidate(ctx context.Context, locationID int64)
}

// BusinessCatalog интерфейс каталога бизнесов и локаций
type BusinessCatalog interface {
	GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error)
	GetLocation(ctx context.Context, locationID int64) (*domain.Location, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
