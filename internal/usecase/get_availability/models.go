package get_availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на получение слотов услуги на дату
type Request struct {
	ServiceID      int64     // ID услуги
	Date           time.Time // Дата (без времени)
	ProfessionalID *int64    // Специалист (опционально)
}

// Response слоты услуги на дату
type Response struct {
	Date         time.Time
	ServiceID    int64
	LocationID   int64
	IsClosed     bool
	ClosedReason string // Пусто, если IsClosed = false
	Slots        []Slot // Упорядочены по времени начала
}

// Slot модель временного слота
type Slot struct {
	Time      types.TimeString // Время начала слота
	Available bool
	Reason    string // Причина недоступности, пусто для доступного слота
}
