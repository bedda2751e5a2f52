package get_location_schedule

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
)

const (
	msgInvalidLocationID = "некорректный ID локации"
	msgLocationNotFound  = "локация не найдена"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/locations/{locationId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	locationID, err := handlers.PathID(r, "locationId")
	if err != nil {
		h.logger.Warn("GET /locations/{id}/schedule - Invalid location ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLocationID)
		return
	}

	result, err := h.service.Get(r.Context(), locationID)
	if err != nil {
		if errors.Is(err, schedule.ErrLocationNotFound) {
			h.logger.Warn("GET /locations/{id}/schedule - Location not found: location_id=%d", locationID)
			handlers.RespondNotFound(w, msgLocationNotFound)
			return
		}
		h.logger.Error("GET /locations/{id}/schedule - Failed to get schedule: location_id=%d, error=%v", locationID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
