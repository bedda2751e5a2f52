package update_appointment_status

import (
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	Status string `json:"status"` // completed | no_show
}

func (r *UpdateStatusRequest) ToServiceRequest(userID int64) *models.CloseOutRequest {
	return &models.CloseOutRequest{
		UserID: userID,
		Status: r.Status,
	}
}
