package create_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	ServiceID      int64   `json:"serviceId"`
	ProfessionalID *int64  `json:"professionalId,omitempty"`
	Date           string  `json:"date"`      // "2025-10-15"
	StartTime      string  `json:"startTime"` // "10:00"
	Notes          *string `json:"notes,omitempty"`
}

// CreateAppointmentResponse HTTP response model
type CreateAppointmentResponse struct {
	Appointment *models.AppointmentResponse `json:"appointment"`
	Conflicts   []models.ConflictResponse   `json:"conflicts"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(userID int64) (*createAppointment.Request, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date", errInvalidDate)
	}

	startTime, err := handlers.ParseTime(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: startTime", errInvalidTime)
	}

	return &createAppointment.Request{
		UserID:         userID,
		ServiceID:      r.ServiceID,
		ProfessionalID: r.ProfessionalID,
		Date:           date,
		StartTime:      startTime,
		Notes:          r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *CreateAppointmentResponse {
	return &CreateAppointmentResponse{
		Appointment: models.FromDomainAppointment(resp.Appointment),
		Conflicts:   models.FromDomainConflicts(resp.Conflicts),
	}
}
