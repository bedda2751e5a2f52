package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Conflict краткое описание записи, пересекающейся с кандидатом
type Conflict struct {
	AppointmentID  int64
	Date           time.Time
	StartTime      types.TimeString
	EndTime        types.TimeString
	Status         AppointmentStatus
	ProfessionalID *int64
}

// NewConflict строит описание конфликта по записи
func NewConflict(a *Appointment) Conflict {
	return Conflict{
		AppointmentID:  a.ID,
		Date:           a.AppointmentDate,
		StartTime:      a.StartTime,
		EndTime:        a.EndTime,
		Status:         a.Status,
		ProfessionalID: a.ProfessionalID,
	}
}

// DescribeConflicts формирует текстовое примечание о пересечениях
func DescribeConflicts(conflicts []Conflict) string {
	if len(conflicts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		parts = append(parts, fmt.Sprintf("#%d %s-%s (%s)", c.AppointmentID, c.StartTime, c.EndTime, c.Status))
	}
	return fmt.Sprintf("overlaps %d existing appointment(s): %s", len(conflicts), strings.Join(parts, ", "))
}
