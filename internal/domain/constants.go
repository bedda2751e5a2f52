package domain

import "math"

// Правила ценообразования и отмены
const (
	PlatformFeeRate = 0.01 // комиссия платформы, 1% от цены услуги

	// PartialRefundMinHours минимальное число часов до визита для частичного возврата.
	// Пороги полного возврата и процент частичного настраиваются бизнесом.
	PartialRefundMinHours = 4

	FullRefundPercentage = 100
)

// Ограничения валидации
const (
	MaxDurationMinutes    = 24 * 60
	MinRejectReasonLength = 10
	MaxNotesLength        = 500
	MaxReasonLength       = 500
)

// Причины недоступности слотов и закрытия дня
const (
	ReasonBlockedDate     = "blocked date"
	ReasonClosedThisDay   = "closed this day"
	ReasonMinAdvance      = "minimum advance notice not met"
	ReasonSlotUnavailable = "slot unavailable"
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Round2 округляет денежную сумму до копеек
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
