package approve_appointment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeService struct {
	err error
}

func (f fakeService) Approve(_ context.Context, id int64, _ int64) (*models.AppointmentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.AppointmentResponse{ID: id, Status: "payment_pending"}, nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
	}{
		{name: "approved", id: "1", wantStatus: http.StatusOK},
		{name: "invalid id", id: "0", wantStatus: http.StatusBadRequest},
		{name: "not found", id: "1", err: appointments.ErrAppointmentNotFound, wantStatus: http.StatusNotFound},
		{name: "not a manager", id: "1", err: appointments.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "already processed", id: "1", err: appointments.ErrAlreadyProcessed, wantStatus: http.StatusConflict},
		{name: "deadline expired", id: "1", err: appointments.ErrApprovalDeadlineExpired, wantStatus: http.StatusConflict},
		{
			name:       "slot taken concurrently",
			id:         "1",
			err:        fmt.Errorf("%w: %w", appointments.ErrSlotNotAvailable, appointments.ErrConcurrentBooking),
			wantStatus: http.StatusConflict,
		},
		{name: "internal", id: "1", err: appointments.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(fakeService{err: tt.err}, logger.NewNop())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/"+tt.id+"/approve", nil)
			req = mux.SetURLVars(req, map[string]string{"appointmentId": tt.id})
			req = req.WithContext(middleware.WithUserID(req.Context(), 101))
			rec := httptest.NewRecorder()

			h.Handle(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
