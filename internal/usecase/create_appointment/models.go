package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	UserID         int64            // ID клиента
	ServiceID      int64            // ID услуги
	ProfessionalID *int64           // Специалист (опционально)
	Date           time.Time        // Дата записи (без времени)
	StartTime      types.TimeString // Время начала, например "10:00"
	Notes          *string          // Комментарий клиента (опционально)
}

// Response созданная запись и найденные пересечения
type Response struct {
	Appointment *domain.Appointment
	Conflicts   []domain.Conflict
}
