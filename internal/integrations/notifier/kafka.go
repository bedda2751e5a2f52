package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// KafkaDispatcher публикует события записей в Kafka.
// Writer асинхронный: ошибки доставки только логируются в Completion.
type KafkaDispatcher struct {
	writer messageWriter
	logger Logger
	now    func() time.Time
}

// NewKafkaDispatcher создает диспетчер поверх асинхронного kafka.Writer
func NewKafkaDispatcher(brokers []string, topic, clientID string, logger Logger) *KafkaDispatcher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Transport:    &kafka.Transport{ClientID: clientID},
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Notifier: failed to deliver %d event(s): %v", len(messages), err)
			}
		},
	}
	return newKafkaDispatcher(writer, logger)
}

func newKafkaDispatcher(writer messageWriter, logger Logger) *KafkaDispatcher {
	return &KafkaDispatcher{
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
}

// Dispatch ставит событие в очередь отправки.
// Ключ сообщения - ID записи, чтобы события одной записи шли в одну партицию.
func (d *KafkaDispatcher) Dispatch(ctx context.Context, appointmentID int64, eventType domain.EventType) error {
	if appointmentID <= 0 || eventType == "" {
		return fmt.Errorf("%w: appointment=%d type=%q", ErrInvalidEvent, appointmentID, eventType)
	}

	event := Event{
		EventID:       uuid.NewString(),
		EventType:     string(eventType),
		AppointmentID: appointmentID,
		OccurredAt:    d.now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPublish, err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(appointmentID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	d.logger.Info("Notifier: queued event=%s id=%s appointment=%d", event.EventType, event.EventID, appointmentID)
	return nil
}

// Close дожидается отправки буферизованных сообщений и закрывает writer
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
