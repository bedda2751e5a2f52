package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/detect_conflicts"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error)
	GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessAppointmentsFilter) ([]*domain.Appointment, error)
	ListReschedules(ctx context.Context, appointmentID int64) ([]*domain.AppointmentReschedule, error)

	Approve(ctx context.Context, id int64, approvedAt time.Time) error
	Reject(ctx context.Context, id int64, reason string, rejectedAt time.Time) error
	Cancel(ctx context.Context, id int64, from domain.AppointmentStatus, params appointmentRepo.CancelParams) error
	ConfirmPayment(ctx context.Context, id int64, totalPaid float64, paidAt time.Time) error
	UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error
	ExpireOverdue(ctx context.Context, now time.Time) ([]int64, error)
}

// BusinessCatalog интерфейс каталога бизнесов и локаций
type BusinessCatalog interface {
	GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error)
	GetLocation(ctx context.Context, locationID int64) (*domain.Location, error)
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
