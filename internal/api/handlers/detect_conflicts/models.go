package detect_conflicts

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	detectConflicts "github.com/m04kA/SMC-AppointmentService/internal/usecase/detect_conflicts"
)

// ConflictsResponse HTTP response model
type ConflictsResponse struct {
	HasConflict bool                      `json:"hasConflict"`
	Conflicts   []models.ConflictResponse `json:"conflicts"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *detectConflicts.Response) *ConflictsResponse {
	return &ConflictsResponse{
		HasConflict: resp.HasConflict,
		Conflicts:   models.FromDomainConflicts(resp.Conflicts),
	}
}

// ToUseCaseRequest собирает запрос use case из query параметров
func ToUseCaseRequest(serviceID int64, r *http.Request) (*detectConflicts.Request, error) {
	q := r.URL.Query()

	date, err := handlers.ParseDate(q.Get("date"))
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	startTime, err := handlers.ParseTime(q.Get("startTime"))
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}

	duration, err := strconv.Atoi(q.Get("durationMinutes"))
	if err != nil {
		return nil, fmt.Errorf("durationMinutes: %w", err)
	}

	professionalID, err := handlers.QueryInt64(r, "professionalId")
	if err != nil {
		return nil, err
	}

	excludeID, err := handlers.QueryInt64(r, "excludeAppointmentId")
	if err != nil {
		return nil, err
	}

	return &detectConflicts.Request{
		ServiceID:            serviceID,
		Date:                 date,
		StartTime:            startTime,
		DurationMinutes:      duration,
		ProfessionalID:       professionalID,
		ExcludeAppointmentID: excludeID,
	}, nil
}
