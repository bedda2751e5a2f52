package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/detect_conflicts"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
}

// ServiceCatalog интерфейс каталога услуг
type ServiceCatalog interface {
	GetServiceDetails(ctx context.Context, serviceID int64) (*domain.ServiceDetails, error)
}

// ScheduleStore интерфейс хранилища расписаний локаций
type ScheduleStore interface {
	GetLocationSchedule(ctx context.Context, locationID int64) (*domain.LocationSchedule, error)
}

// ConflictDetector интерфейс детектора пересечений
type ConflictDetector interface {
	Detect(ctx context.Context, q detect_conflicts.Query) ([]domain.Conflict, error)
}

// Notifier интерфейс диспетчера уведомлений
type Notifier interface {
	Dispatch(ctx context.Context, appointmentID int64, eventType domain.EventType) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
