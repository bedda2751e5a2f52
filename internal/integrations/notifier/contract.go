package notifier

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Dispatcher отправляет событие жизненного цикла записи (fire-and-forget)
type Dispatcher interface {
	Dispatch(ctx context.Context, appointmentID int64, eventType domain.EventType) error
}

// EventCounter счетчик отправленных событий (*metrics.Metrics)
type EventCounter interface {
	IncAppointmentEvent(event string)
}

// messageWriter часть *kafka.Writer, используемая диспетчером
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
