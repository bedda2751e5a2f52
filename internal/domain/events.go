package domain

// EventType тип события жизненного цикла записи для диспетчера уведомлений
type EventType string

const (
	EventCreated     EventType = "appointment.created"
	EventApproved    EventType = "appointment.approved"
	EventRejected    EventType = "appointment.rejected"
	EventCancelled   EventType = "appointment.cancelled"
	EventRescheduled EventType = "appointment.rescheduled"
	EventConfirmed   EventType = "appointment.confirmed"
	EventCompleted   EventType = "appointment.completed"
	EventNoShow      EventType = "appointment.no_show"
	EventExpired     EventType = "appointment.expired"
)
