package reschedule_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	rescheduleAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
)

// RescheduleAppointmentRequest HTTP request model
type RescheduleAppointmentRequest struct {
	Date      string  `json:"date"`      // "2025-10-16"
	StartTime string  `json:"startTime"` // "14:00"
	Reason    *string `json:"reason,omitempty"`
}

// RescheduleAppointmentResponse HTTP response model
type RescheduleAppointmentResponse struct {
	Appointment *models.AppointmentResponse `json:"appointment"`
	Reschedule  *models.RescheduleResponse  `json:"reschedule"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *RescheduleAppointmentRequest) ToUseCaseRequest(appointmentID, userID int64) (*rescheduleAppointment.Request, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	startTime, err := handlers.ParseTime(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}

	return &rescheduleAppointment.Request{
		AppointmentID: appointmentID,
		UserID:        userID,
		Date:          date,
		StartTime:     startTime,
		Reason:        r.Reason,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleAppointment.Response) *RescheduleAppointmentResponse {
	return &RescheduleAppointmentResponse{
		Appointment: models.FromDomainAppointment(resp.Appointment),
		Reschedule:  models.FromDomainReschedule(resp.Reschedule),
	}
}
