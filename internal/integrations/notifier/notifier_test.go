package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeCounter struct {
	events []string
}

func (c *fakeCounter) IncAppointmentEvent(event string) {
	c.events = append(c.events, event)
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaDispatcher_Dispatch(t *testing.T) {
	writer := &fakeWriter{}
	d := newKafkaDispatcher(writer, logger.NewNop())
	fixed := time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	require.NoError(t, d.Dispatch(context.Background(), 42, domain.EventApproved))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, string(domain.EventApproved), headerValue(msg, "event_type"))

	var event Event
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, int64(42), event.AppointmentID)
	assert.Equal(t, string(domain.EventApproved), event.EventType)
	assert.Equal(t, fixed, event.OccurredAt)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, event.EventID, headerValue(msg, "event_id"))

	require.NoError(t, d.Close())
	assert.True(t, writer.closed)
}

func TestKafkaDispatcher_UniqueEventIDs(t *testing.T) {
	writer := &fakeWriter{}
	d := newKafkaDispatcher(writer, logger.NewNop())

	require.NoError(t, d.Dispatch(context.Background(), 1, domain.EventCreated))
	require.NoError(t, d.Dispatch(context.Background(), 1, domain.EventCreated))

	require.Len(t, writer.messages, 2)
	assert.NotEqual(t, headerValue(writer.messages[0], "event_id"), headerValue(writer.messages[1], "event_id"))
}

func TestKafkaDispatcher_Errors(t *testing.T) {
	d := newKafkaDispatcher(&fakeWriter{}, logger.NewNop())
	assert.ErrorIs(t, d.Dispatch(context.Background(), 0, domain.EventCreated), ErrInvalidEvent)
	assert.ErrorIs(t, d.Dispatch(context.Background(), 1, ""), ErrInvalidEvent)

	failing := newKafkaDispatcher(&fakeWriter{err: errors.New("broker down")}, logger.NewNop())
	assert.ErrorIs(t, failing.Dispatch(context.Background(), 1, domain.EventCreated), ErrPublish)
}

func TestWithMetrics(t *testing.T) {
	counter := &fakeCounter{}
	d := WithMetrics(NewLogDispatcher(logger.NewNop()), counter)

	require.NoError(t, d.Dispatch(context.Background(), 7, domain.EventCancelled))
	assert.Error(t, d.Dispatch(context.Background(), 0, domain.EventCancelled))

	assert.Equal(t, []string{string(domain.EventCancelled)}, counter.events)
}

func TestWithMetrics_NilCounter(t *testing.T) {
	base := NewLogDispatcher(logger.NewNop())
	assert.Same(t, base, WithMetrics(base, nil))
}
