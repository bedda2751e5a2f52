package detect_conflicts

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository источник журнала записей
type AppointmentRepository interface {
	// ListOccupying возвращает записи в занимающих статусах на услугу и дату.
	// Внутри транзакции строки блокируются.
	ListOccupying(ctx context.Context, q domain.OccupancyQuery) ([]*domain.Appointment, error)
}

// ServiceCatalog интерфейс каталога услуг
type ServiceCatalog interface {
	GetServiceDetails(ctx context.Context, serviceID int64) (*domain.ServiceDetails, error)
}

// ConflictCounter счетчик найденных конфликтов (*metrics.Metrics)
type ConflictCounter interface {
	IncConflict(operation string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
