package notifier

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// LogDispatcher пишет события в лог. Используется, когда брокеры Kafka не настроены.
type LogDispatcher struct {
	logger Logger
}

// NewLogDispatcher создает диспетчер, пишущий события в лог
func NewLogDispatcher(logger Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Dispatch логирует событие
func (d *LogDispatcher) Dispatch(_ context.Context, appointmentID int64, eventType domain.EventType) error {
	if appointmentID <= 0 || eventType == "" {
		return fmt.Errorf("%w: appointment=%d type=%q", ErrInvalidEvent, appointmentID, eventType)
	}
	d.logger.Info("Notifier: event=%s appointment=%d", eventType, appointmentID)
	return nil
}
