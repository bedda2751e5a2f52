package get_business_appointments

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// parseQuery собирает фильтр из query параметров
func parseQuery(r *http.Request, userID, businessID int64) (*models.GetBusinessAppointmentsRequest, error) {
	req := &models.GetBusinessAppointmentsRequest{
		UserID:     userID,
		BusinessID: businessID,
	}

	var err error
	if req.LocationID, err = handlers.QueryInt64(r, "locationId"); err != nil {
		return nil, err
	}
	if req.ServiceID, err = handlers.QueryInt64(r, "serviceId"); err != nil {
		return nil, err
	}

	query := r.URL.Query()

	if raw := query.Get("startDate"); raw != "" {
		date, err := handlers.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("startDate: %w", err)
		}
		req.StartDate = &date
	}
	if raw := query.Get("endDate"); raw != "" {
		date, err := handlers.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("endDate: %w", err)
		}
		req.EndDate = &date
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if raw := query.Get("includeInactive"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("includeInactive: %w", err)
		}
		req.IncludeInactive = include
	}

	return req, nil
}
