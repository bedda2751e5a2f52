package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/detect_conflicts"
)

// ServiceCatalog интерфейс каталога услуг
type ServiceCatalog interface {
	GetServiceDetails(ctx context.Context, serviceID int64) (*domain.ServiceDetails, error)
}

// ScheduleStore интерфейс хранилища расписаний локаций
type ScheduleStore interface {
	GetLocationSchedule(ctx context.Context, locationID int64) (*domain.LocationSchedule, error)
}

// LedgerLoader загружает снимок журнала записей на дату
type LedgerLoader interface {
	Snapshot(ctx context.Context, serviceID int64, date time.Time, professionalID *int64) (detect_conflicts.Ledger, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
