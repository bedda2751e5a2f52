package confirm_payment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidAmount        = "сумма оплаты не может быть отрицательной"
	msgNotFound             = "запись не найдена"
	msgInvalidTransition    = "запись не ожидает оплаты"
	msgAlreadyProcessed     = "оплата уже подтверждена"
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

// Handle POST /internal/appointments/{appointmentId}/payment-confirmed
// Вызывается платежным сервисом, авторизация пользователя не требуется
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := handlers.PathID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("POST /internal/appointments/{id}/payment-confirmed - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req models.ConfirmPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /internal/appointments/{id}/payment-confirmed - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.ConfirmPayment(r.Context(), appointmentID, &req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidAmount)

		case errors.Is(err, appointments.ErrAppointmentNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrInvalidTransition):
			h.logger.Warn("POST /internal/appointments/{id}/payment-confirmed - Invalid transition: appointment_id=%d",
				appointmentID)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, appointments.ErrAlreadyProcessed):
			handlers.RespondConflict(w, msgAlreadyProcessed)

		default:
			h.logger.Error("POST /internal/appointments/{id}/payment-confirmed - Failed to confirm payment: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /internal/appointments/{id}/payment-confirmed - Payment confirmed: appointment_id=%d, amount=%.2f",
		appointmentID, req.AmountPaid)
	handlers.RespondJSON(w, http.StatusOK, result)
}
