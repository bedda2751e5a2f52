package reject_appointment

import (
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// RejectAppointmentRequest HTTP request model
type RejectAppointmentRequest struct {
	Reason string `json:"reason"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *RejectAppointmentRequest) ToServiceRequest(userID int64) *models.RejectRequest {
	return &models.RejectRequest{
		UserID: userID,
		Reason: r.Reason,
	}
}
