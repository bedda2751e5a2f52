package cancel_appointment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeService struct {
	got *models.CancelRequest
	err error
}

func (f *fakeService) Cancel(_ context.Context, id int64, req *models.CancelRequest) (*models.CancelResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.CancelResponse{
		Appointment: &models.AppointmentResponse{ID: id, Status: "cancelled"},
		Refund:      models.RefundResponse{HoursUntil: 48, RefundPercentage: 100, RefundAmount: 101, Eligible: true},
	}, nil
}

func patch(h *Handler, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/5/cancel", body)
	req = mux.SetURLVars(req, map[string]string{"appointmentId": "5"})
	req = req.WithContext(middleware.WithUserID(req.Context(), 10))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_WithoutBody(t *testing.T) {
	svc := &fakeService{}
	rec := patch(NewHandler(svc, logger.NewNop()), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(10), svc.got.UserID)
	assert.Nil(t, svc.got.Reason)

	var body models.CancelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 100, body.Refund.RefundPercentage)
	assert.InDelta(t, 101.0, body.Refund.RefundAmount, 0.001)
}

func TestHandle_WithReason(t *testing.T) {
	svc := &fakeService{}
	rec := patch(NewHandler(svc, logger.NewNop()), strings.NewReader(`{"cancellationReason": "заболел"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got.Reason)
	assert.Equal(t, "заболел", *svc.got.Reason)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "terminal status", err: appointments.ErrCannotCancel, wantStatus: http.StatusConflict},
		{name: "stranger", err: appointments.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "not found", err: appointments.ErrAppointmentNotFound, wantStatus: http.StatusNotFound},
		{name: "reason too long", err: appointments.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "raced", err: appointments.ErrAlreadyProcessed, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := patch(NewHandler(&fakeService{err: tt.err}, logger.NewNop()), nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
