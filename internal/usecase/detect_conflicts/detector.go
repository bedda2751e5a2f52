package detect_conflicts

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const defaultOperation = "detect"

// FindConflicts возвращает занимающие записи журнала, пересекающиеся с [start, start+duration).
// Буфер услуги не учитывается. Касание границ пересечением не считается.
func FindConflicts(
	start types.TimeString,
	durationMinutes int,
	ledger []*domain.Appointment,
	exclude *int64,
) []domain.Conflict {
	candStart := start.Minutes()
	candEnd := candStart + durationMinutes

	conflicts := make([]domain.Conflict, 0)
	for _, a := range ledger {
		if exclude != nil && a.ID == *exclude {
			continue
		}
		if !a.IsOccupying() {
			continue
		}

		if candStart < a.EndTime.Minutes() && candEnd > a.StartTime.Minutes() {
			conflicts = append(conflicts, domain.NewConflict(a))
		}
	}

	return conflicts
}

// Ledger снимок журнала на одну дату, загруженный один раз для проверки многих кандидатов
type Ledger []*domain.Appointment

// Conflicts проверяет кандидата по снимку
func (l Ledger) Conflicts(start types.TimeString, durationMinutes int) []domain.Conflict {
	return FindConflicts(start, durationMinutes, l, nil)
}

// Detector проверяет пересечения кандидата с журналом записей
type Detector struct {
	repo    AppointmentRepository
	counter ConflictCounter
}

// NewDetector создает детектор. counter может быть nil.
func NewDetector(repo AppointmentRepository, counter ConflictCounter) *Detector {
	return &Detector{
		repo:    repo,
		counter: counter,
	}
}

// Detect загружает журнал по запросу и возвращает пересечения.
// В транзакции загруженные строки остаются заблокированными до ее завершения.
func (d *Detector) Detect(ctx context.Context, q Query) ([]domain.Conflict, error) {
	ledger, err := d.repo.ListOccupying(ctx, q.OccupancyQuery)
	if err != nil {
		return nil, err
	}

	conflicts := FindConflicts(q.StartTime, q.DurationMinutes, ledger, q.ExcludeAppointmentID)
	if len(conflicts) > 0 && d.counter != nil {
		op := q.Operation
		if op == "" {
			op = defaultOperation
		}
		d.counter.IncConflict(op)
	}

	return conflicts, nil
}

// Snapshot загружает журнал услуги на дату
func (d *Detector) Snapshot(ctx context.Context, serviceID int64, date time.Time, professionalID *int64) (Ledger, error) {
	ledger, err := d.repo.ListOccupying(ctx, domain.OccupancyQuery{
		ServiceID:      serviceID,
		Date:           date,
		ProfessionalID: professionalID,
	})
	if err != nil {
		return nil, err
	}
	return Ledger(ledger), nil
}
