package get_availability

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/detect_conflicts"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// SlotTimes перебирает начала слотов от открытия с шагом duration+buffer,
// пока слот целиком помещается до закрытия.
func SlotTimes(openTime, closeTime types.TimeString, durationMinutes, bufferMinutes int) iter.Seq[types.TimeString] {
	return func(yield func(types.TimeString) bool) {
		if durationMinutes <= 0 || bufferMinutes < 0 {
			return
		}
		step := durationMinutes + bufferMinutes

		for start := openTime.Minutes(); start+durationMinutes <= closeTime.Minutes(); start += step {
			ts, err := types.FromMinutes(start)
			if err != nil {
				return
			}
			if !yield(ts) {
				return
			}
		}
	}
}

// slotEvaluator оценивает доступность слотов одной даты
type slotEvaluator struct {
	date            time.Time
	loc             *time.Location
	now             time.Time
	minAdvance      time.Duration
	durationMinutes int
	ledger          detect_conflicts.Ledger
}

func (e *slotEvaluator) evaluate(start types.TimeString) Slot {
	slotStart := start.OnDate(e.date, e.loc)
	if slotStart.Sub(e.now) < e.minAdvance {
		return Slot{Time: start, Available: false, Reason: domain.ReasonMinAdvance}
	}

	if len(e.ledger.Conflicts(start, e.durationMinutes)) > 0 {
		return Slot{Time: start, Available: false, Reason: domain.ReasonSlotUnavailable}
	}

	return Slot{Time: start, Available: true}
}

