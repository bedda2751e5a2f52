package get_availability

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date         string `json:"date"`
	ServiceID    int64  `json:"serviceId"`
	LocationID   int64  `json:"locationId"`
	IsClosed     bool   `json:"isClosed"`
	ClosedReason string `json:"closedReason,omitempty"`
	Slots        []Slot `json:"slots"`
}

// Slot модель временного слота
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := make([]Slot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = Slot{
			Time:      slot.Time.String(),
			Available: slot.Available,
			Reason:    slot.Reason,
		}
	}

	return &AvailabilityResponse{
		Date:         resp.Date.Format(domain.DateFormat),
		ServiceID:    resp.ServiceID,
		LocationID:   resp.LocationID,
		IsClosed:     resp.IsClosed,
		ClosedReason: resp.ClosedReason,
		Slots:        slots,
	}
}
