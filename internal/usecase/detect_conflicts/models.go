package detect_conflicts

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request запрос на проверку пересечений
type Request struct {
	ServiceID            int64
	Date                 time.Time
	StartTime            types.TimeString
	DurationMinutes      int
	ProfessionalID       *int64
	ExcludeAppointmentID *int64 // Запись, которую нужно игнорировать (перенос)
}

// Response результат проверки
type Response struct {
	HasConflict bool
	Conflicts   []domain.Conflict
}

// Query параметры проверки кандидата для Detector
type Query struct {
	domain.OccupancyQuery
	StartTime       types.TimeString
	DurationMinutes int

	// Operation метка для метрики конфликтов (create, approve, reschedule)
	Operation string
}
