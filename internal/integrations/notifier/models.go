package notifier

import "time"

// Event сообщение о событии записи в Kafka
type Event struct {
	EventID       string    `json:"eventId"`
	EventType     string    `json:"eventType"`
	AppointmentID int64     `json:"appointmentId"`
	OccurredAt    time.Time `json:"occurredAt"`
}
