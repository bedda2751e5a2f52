package reschedule_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на перенос записи
type Request struct {
	AppointmentID int64
	UserID        int64 // Инициатор переноса (клиент или менеджер бизнеса)
	Date          time.Time
	StartTime     types.TimeString
	Reason        *string
}

// Response перенесенная запись и запись истории
type Response struct {
	Appointment *domain.Appointment
	Reschedule  *domain.AppointmentReschedule
}
