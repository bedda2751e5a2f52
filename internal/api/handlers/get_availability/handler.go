package get_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	getAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_availability"
)

const (
	msgInvalidServiceID      = "некорректный ID услуги"
	msgInvalidProfessionalID = "некорректный ID специалиста"
	msgMissingDate           = "дата обязательна"
	msgInvalidDate           = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgServiceNotFound       = "услуга не найдена"
	msgLocationNotFound      = "локация не найдена"
	msgDateTooFar            = "дата слишком далеко в будущем"
	msgInvalidInput          = "некорректные параметры запроса"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/{serviceId}/availability
// Query params: date (required, YYYY-MM-DD), professionalId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceID, err := handlers.PathID(r, "serviceId")
	if err != nil {
		h.logger.Warn("GET /services/{id}/availability - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /services/{id}/availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := handlers.ParseDate(dateStr)
	if err != nil {
		h.logger.Warn("GET /services/{id}/availability - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	professionalID, err := handlers.QueryInt64(r, "professionalId")
	if err != nil {
		h.logger.Warn("GET /services/{id}/availability - %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		ServiceID:      serviceID,
		Date:           date,
		ProfessionalID: professionalID,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrServiceNotFound):
			h.logger.Warn("GET /services/{id}/availability - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailability.ErrLocationNotFound):
			h.logger.Warn("GET /services/{id}/availability - Location not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgLocationNotFound)

		case errors.Is(err, getAvailability.ErrDateTooFarInFuture):
			h.logger.Warn("GET /services/{id}/availability - Date too far: service_id=%d, date=%s", serviceID, dateStr)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /services/{id}/availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /services/{id}/availability - Failed to get availability: service_id=%d, error=%v", serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /services/{id}/availability - Availability retrieved: service_id=%d, date=%s, closed=%t, slots_count=%d",
		serviceID, dateStr, result.IsClosed, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
