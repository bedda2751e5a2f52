package notifier

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type metricsDispatcher struct {
	next    Dispatcher
	counter EventCounter
}

// WithMetrics оборачивает диспетчер счетчиком успешно отправленных событий
func WithMetrics(next Dispatcher, counter EventCounter) Dispatcher {
	if counter == nil {
		return next
	}
	return &metricsDispatcher{next: next, counter: counter}
}

func (d *metricsDispatcher) Dispatch(ctx context.Context, appointmentID int64, eventType domain.EventType) error {
	if err := d.next.Dispatch(ctx, appointmentID, eventType); err != nil {
		return err
	}
	d.counter.IncAppointmentEvent(string(eventType))
	return nil
}
