package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	var gotID int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantID     int64
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "not a number", header: "abc", wantStatus: http.StatusUnauthorized},
		{name: "negative", header: "-1", wantStatus: http.StatusUnauthorized},
		{name: "valid", header: "42", wantStatus: http.StatusNoContent, wantID: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID = 0
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(UserIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()

			Auth(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantID, gotID)
		})
	}
}

func TestInternalOnly(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		configured string
		header     string
		wantStatus int
	}{
		{name: "valid token", configured: "s3cret", header: "s3cret", wantStatus: http.StatusNoContent},
		{name: "missing token", configured: "s3cret", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong token", configured: "s3cret", header: "s3cres", wantStatus: http.StatusUnauthorized},
		{name: "token prefix", configured: "s3cret", header: "s3c", wantStatus: http.StatusUnauthorized},
		{name: "not configured", configured: "", header: "", wantStatus: http.StatusForbidden},
		{name: "not configured ignores header", configured: "", header: "anything", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/internal/appointments/expire", nil)
			if tt.header != "" {
				req.Header.Set(InternalTokenHeader, tt.header)
			}
			rec := httptest.NewRecorder()

			InternalOnly(tt.configured)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestInternalOnly_OnSubrouter(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/availability", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	internal := r.PathPrefix("/internal").Subrouter()
	internal.Use(InternalOnly("s3cret"))
	internal.HandleFunc("/appointments/{appointmentId}/payment-confirmed", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPost)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/internal/appointments/7/payment-confirmed", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/internal/appointments/7/payment-confirmed", nil)
	req.Header.Set(InternalTokenHeader, "s3cret")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/availability", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "req-1", seen)
		assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
	})
}

type recordedRequest struct {
	method string
	path   string
	status int
}

type fakeMetrics struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (m *fakeMetrics) RecordHTTPRequest(method, path string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method: method, path: path, status: status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := &fakeMetrics{}

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m, "test"))
	r.HandleFunc("/appointments/{appointmentId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)
	r.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	for _, path := range []string{"/appointments/1", "/appointments/2", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, m.requests, 3)
	assert.Equal(t, recordedRequest{method: http.MethodGet, path: "/appointments/{appointmentId}", status: http.StatusNotFound}, m.requests[0])
	assert.Equal(t, m.requests[0], m.requests[1])
	assert.Equal(t, recordedRequest{method: http.MethodGet, path: "/ok", status: http.StatusOK}, m.requests[2])
}

func TestBodyLimit(t *testing.T) {
	h := BodyLimit(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("abc")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too large body")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
