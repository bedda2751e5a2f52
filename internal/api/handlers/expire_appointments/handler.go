package expire_appointments

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
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

// Handle POST /internal/appointments/expire
// Переводит просроченные заявки в expired, вызывается планировщиком
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ExpireOverdue(r.Context())
	if err != nil {
		h.logger.Error("POST /internal/appointments/expire - Failed to expire appointments: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	if result.Count > 0 {
		h.logger.Info("POST /internal/appointments/expire - Expired %d appointments", result.Count)
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}
