package appointment

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrStatusChanged возвращается, когда условное обновление не нашло запись в ожидаемом статусе
	ErrStatusChanged = errors.New("appointment.repository: appointment status changed concurrently")

	// ErrOverlap возвращается при нарушении ограничения на пересечение записей
	// или при ошибке сериализации транзакции
	ErrOverlap = errors.New("appointment.repository: overlapping appointment")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)

// Коды ошибок PostgreSQL
const (
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// IsConflict проверяет, что ошибка вызвана гонкой за слот:
// нарушение exclusion constraint, сбой сериализации или deadlock
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrOverlap) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgExclusionViolation, pgSerializationFailure, pgDeadlockDetected:
			return true
		}
	}
	return false
}

// IsSerializationFailure проверяет, что транзакция проиграла гонку
// (сбой сериализации или deadlock) и её результат неизвестен до перечитывания
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pgSerializationFailure || pqErr.Code == pgDeadlockDetected
}
