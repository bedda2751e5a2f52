package create_appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const userID int64 = 10

type fakeUseCase struct {
	got  *createAppointment.Request
	resp *createAppointment.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createAppointment.Request) (*createAppointment.Response, error) {
	f.got = req
	return f.resp, f.err
}

func post(h *Handler, body string, authorized bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	if authorized {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

const validBody = `{"serviceId": 7, "date": "2025-10-16", "startTime": "10:00", "notes": "первый визит"}`

func TestHandle_Created(t *testing.T) {
	uc := &fakeUseCase{resp: &createAppointment.Response{
		Appointment: &domain.Appointment{
			ID:              1,
			UserID:          userID,
			ServiceID:       7,
			AppointmentDate: time.Date(2025, 10, 16, 0, 0, 0, 0, time.UTC),
			StartTime:       types.MustTimeString("10:00"),
			EndTime:         types.MustTimeString("11:00"),
			DurationMinutes: 60,
			Status:          domain.StatusPending,
		},
	}}
	h := NewHandler(uc, logger.NewNop())

	rec := post(h, validBody, true)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, userID, uc.got.UserID)
	assert.Equal(t, int64(7), uc.got.ServiceID)
	assert.Equal(t, "10:00", uc.got.StartTime.String())
	assert.Nil(t, uc.got.ProfessionalID)
	require.NotNil(t, uc.got.Notes)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, `[]`, string(body["conflicts"]))

	var appointment map[string]interface{}
	require.NoError(t, json.Unmarshal(body["appointment"], &appointment))
	assert.Equal(t, "pending", appointment["status"])
	assert.Equal(t, "2025-10-16", appointment["appointmentDate"])
}

func TestHandle_RequestErrors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		rec := post(NewHandler(&fakeUseCase{}, logger.NewNop()), validBody, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := post(NewHandler(&fakeUseCase{}, logger.NewNop()), `{"serviceId": 7, "foo": 1}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid time", func(t *testing.T) {
		rec := post(NewHandler(&fakeUseCase{}, logger.NewNop()),
			`{"serviceId": 7, "date": "2025-10-16", "startTime": "25:00"}`, true)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body handlers.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, msgInvalidTime, body.Message)
	})

	t.Run("invalid date", func(t *testing.T) {
		rec := post(NewHandler(&fakeUseCase{}, logger.NewNop()),
			`{"serviceId": 7, "date": "16/10/2025", "startTime": "10:00"}`, true)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body handlers.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, msgInvalidDate, body.Message)
	})
}

func TestHandle_UseCaseErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "slot taken",
			err:         createAppointment.ErrSlotNotAvailable,
			wantStatus:  http.StatusConflict,
			wantMessage: msgSlotNotAvailable,
		},
		{
			name:        "concurrent booking",
			err:         fmt.Errorf("%w: %w", createAppointment.ErrSlotNotAvailable, createAppointment.ErrConcurrentBooking),
			wantStatus:  http.StatusConflict,
			wantMessage: msgConcurrentBooking,
		},
		{name: "service not found", err: createAppointment.ErrServiceNotFound, wantStatus: http.StatusNotFound, wantMessage: msgServiceNotFound},
		{name: "closed", err: createAppointment.ErrLocationClosed, wantStatus: http.StatusBadRequest, wantMessage: msgLocationClosed},
		{name: "outside hours", err: createAppointment.ErrInvalidTimeSlot, wantStatus: http.StatusBadRequest, wantMessage: msgInvalidTimeSlot},
		{name: "too late", err: createAppointment.ErrTooLateToBook, wantStatus: http.StatusBadRequest, wantMessage: msgTooLateToBook},
		{name: "too far", err: createAppointment.ErrDateTooFarInFuture, wantStatus: http.StatusBadRequest, wantMessage: msgDateTooFar},
		{name: "internal", err: createAppointment.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(NewHandler(&fakeUseCase{err: tt.err}, logger.NewNop()), validBody, true)
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantMessage != "" {
				var body handlers.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantMessage, body.Message)
			}
		})
	}
}
