package detect_conflicts

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	detectConflicts "github.com/m04kA/SMC-AppointmentService/internal/usecase/detect_conflicts"
)

const (
	msgInvalidServiceID = "некорректный ID услуги"
	msgInvalidQuery     = "ожидаются параметры date (YYYY-MM-DD), startTime (HH:MM) и durationMinutes"
	msgInvalidInput     = "некорректная длительность"
	msgServiceNotFound  = "услуга не найдена"
)

type Handler struct {
	useCase DetectConflictsUseCase
	logger  Logger
}

func NewHandler(useCase DetectConflictsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/{serviceId}/conflicts
// Query params: date, startTime, durationMinutes (required), professionalId, excludeAppointmentId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceID, err := handlers.PathID(r, "serviceId")
	if err != nil {
		h.logger.Warn("GET /services/{id}/conflicts - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	useCaseReq, err := ToUseCaseRequest(serviceID, r)
	if err != nil {
		h.logger.Warn("GET /services/{id}/conflicts - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, detectConflicts.ErrServiceNotFound):
			h.logger.Warn("GET /services/{id}/conflicts - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, detectConflicts.ErrInvalidInput):
			h.logger.Warn("GET /services/{id}/conflicts - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /services/{id}/conflicts - Failed to detect conflicts: service_id=%d, error=%v", serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /services/{id}/conflicts - Checked: service_id=%d, conflicts=%d", serviceID, len(result.Conflicts))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
