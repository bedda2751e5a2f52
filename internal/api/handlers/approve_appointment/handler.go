package approve_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgUnauthorized         = "требуется авторизация"
	msgNotFound             = "запись не найдена"
	msgForbidden            = "подтверждать заявки может только менеджер бизнеса"
	msgAlreadyProcessed     = "заявка уже обработана"
	msgDeadlineExpired      = "срок подтверждения заявки истек"
	msgSlotNotAvailable     = "время заявки уже занято другой записью"
	msgConcurrentBooking    = "время заявки только что заняли"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/approve
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := handlers.PathID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/approve - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.service.Approve(r.Context(), appointmentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound), errors.Is(err, appointments.ErrBusinessNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("POST /appointments/{id}/approve - Access denied: appointment_id=%d, user_id=%d", appointmentID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrAlreadyProcessed):
			handlers.RespondConflict(w, msgAlreadyProcessed)

		case errors.Is(err, appointments.ErrApprovalDeadlineExpired):
			handlers.RespondConflict(w, msgDeadlineExpired)

		case errors.Is(err, appointments.ErrConcurrentBooking):
			handlers.RespondConflict(w, msgConcurrentBooking)

		case errors.Is(err, appointments.ErrSlotNotAvailable):
			handlers.RespondConflict(w, msgSlotNotAvailable)

		default:
			h.logger.Error("POST /appointments/{id}/approve - Failed to approve: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/approve - Approved: appointment_id=%d, user_id=%d", appointmentID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
