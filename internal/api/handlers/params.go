package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// PathID читает положительный int64 из переменной пути
func PathID(r *http.Request, name string) (int64, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, fmt.Errorf("missing path parameter %s", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid path parameter %s=%q", name, raw)
	}
	return id, nil
}

// QueryInt64 читает необязательный int64 из query параметров
func QueryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid query parameter %s=%q", name, raw)
	}
	return &v, nil
}

// ParseDate разбирает дату формата YYYY-MM-DD
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(domain.DateFormat, raw)
}

// ParseTime разбирает время формата HH:MM
func ParseTime(raw string) (types.TimeString, error) {
	return types.NewTimeStringFromString(raw)
}
