package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	tableAppointments = "appointments"
	tableReschedules  = "appointment_reschedules"
)

var appointmentColumns = []string{
	"id",
	"user_id",
	"business_id",
	"location_id",
	"service_id",
	"professional_id",
	"appointment_date",
	"start_time",
	"end_time",
	"duration_minutes",
	"status",
	"service_price",
	"platform_fee",
	"total_amount",
	"deposit_amount",
	"total_paid",
	"paid_at",
	"has_conflict",
	"conflict_note",
	"notes",
	"approval_deadline",
	"approved_at",
	"rejected_at",
	"rejection_reason",
	"cancelled_at",
	"cancellation_reason",
	"cancelled_by",
	"refund_percentage",
	"refund_amount",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей (Booking Ledger)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую запись.
// Если в контексте передана активная транзакция, использует её.
// Нарушение ограничения на пересечение возвращается как ErrOverlap.
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableAppointments).
		Columns(
			"user_id",
			"business_id",
			"location_id",
			"service_id",
			"professional_id",
			"appointment_date",
			"start_time",
			"end_time",
			"duration_minutes",
			"status",
			"service_price",
			"platform_fee",
			"total_amount",
			"deposit_amount",
			"total_paid",
			"has_conflict",
			"conflict_note",
			"notes",
			"approval_deadline",
		).
		Values(
			a.UserID,
			a.BusinessID,
			a.LocationID,
			a.ServiceID,
			a.ProfessionalID,
			a.AppointmentDate.Format(domain.DateFormat),
			a.StartTime,
			a.EndTime,
			a.DurationMinutes,
			a.Status,
			a.ServicePrice,
			a.PlatformFee,
			a.TotalAmount,
			a.DepositAmount,
			a.TotalPaid,
			a.HasConflict,
			a.ConflictNote,
			a.Notes,
			a.ApprovalDeadline,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if IsConflict(err) {
			return nil, fmt.Errorf("%w: Create: %w", ErrOverlap, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return a, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает запись по ID и блокирует строку до конца транзакции.
// Вне транзакции работает как GetByID.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.getByID(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) getByID(ctx context.Context, id int64, lock bool) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From(tableAppointments).
		Where(squirrel.Eq{"id": id})

	if lock {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if IsConflict(err) {
		return nil, fmt.Errorf("%w: GetByID: %w", ErrOverlap, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return a, nil
}

// ListOccupying возвращает записи, занимающие слоты услуги на дату.
// Внутри транзакции строки блокируются (FOR UPDATE).
func (r *Repository) ListOccupying(ctx context.Context, q domain.OccupancyQuery) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From(tableAppointments).
		Where(squirrel.Eq{
			"service_id":       q.ServiceID,
			"appointment_date": q.Date.Format(domain.DateFormat),
			"status":           statusStrings(domain.OccupyingStatuses),
		}).
		OrderBy("start_time ASC")

	if q.ProfessionalID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"professional_id": *q.ProfessionalID})
	}
	if q.ExcludeAppointmentID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *q.ExcludeAppointmentID})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupying - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		if IsConflict(err) {
			return nil, fmt.Errorf("%w: ListOccupying: %w", ErrOverlap, err)
		}
		return nil, fmt.Errorf("%w: ListOccupying - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetByUserID получает записи пользователя, опционально по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From(tableAppointments).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("appointment_date DESC", "start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetByBusinessWithFilter получает записи бизнеса с фильтрацией по локации, услуге, периоду и статусу.
// Без явного статуса и IncludeInactive записи в конечных статусах исключаются.
func (r *Repository) GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessAppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From(tableAppointments).
		Where(squirrel.Eq{"business_id": filter.BusinessID})

	if filter.LocationID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.ServiceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": *filter.ServiceID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"appointment_date": filter.StartDate.Format(domain.DateFormat)})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"appointment_date": filter.EndDate.Format(domain.DateFormat)})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": statusStrings(terminalStatuses())})
	}

	// Для одной даты сортируем по времени начала, для периода - сначала новые
	if filter.StartDate != nil && filter.EndDate != nil && domain.SameDate(*filter.StartDate, *filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("appointment_date DESC", "start_time DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// Approve переводит запись pending -> payment_pending.
// Возвращает ErrStatusChanged, если запись уже не в pending.
func (r *Repository) Approve(ctx context.Context, id int64, approvedAt time.Time) error {
	return r.transition(ctx, "Approve", id, domain.StatusPending, domain.StatusPaymentPending, map[string]interface{}{
		"approved_at": approvedAt,
	})
}

// Reject переводит запись pending -> rejected с причиной
func (r *Repository) Reject(ctx context.Context, id int64, reason string, rejectedAt time.Time) error {
	return r.transition(ctx, "Reject", id, domain.StatusPending, domain.StatusRejected, map[string]interface{}{
		"rejection_reason": reason,
		"rejected_at":      rejectedAt,
	})
}

// CancelParams данные отмены записи
type CancelParams struct {
	Reason           *string
	CancelledBy      int64
	CancelledAt      time.Time
	RefundPercentage int
	RefundAmount     float64
}

// Cancel отменяет запись, находящуюся в статусе from
func (r *Repository) Cancel(ctx context.Context, id int64, from domain.AppointmentStatus, params CancelParams) error {
	return r.transition(ctx, "Cancel", id, from, domain.StatusCancelled, map[string]interface{}{
		"cancellation_reason": params.Reason,
		"cancelled_by":        params.CancelledBy,
		"cancelled_at":        params.CancelledAt,
		"refund_percentage":   params.RefundPercentage,
		"refund_amount":       params.RefundAmount,
	})
}

// ConfirmPayment переводит запись payment_pending -> confirmed и фиксирует оплату
func (r *Repository) ConfirmPayment(ctx context.Context, id int64, totalPaid float64, paidAt time.Time) error {
	return r.transition(ctx, "ConfirmPayment", id, domain.StatusPaymentPending, domain.StatusConfirmed, map[string]interface{}{
		"total_paid": totalPaid,
		"paid_at":    paidAt,
	})
}

// UpdateStatus условно меняет статус from -> to без дополнительных полей
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error {
	return r.transition(ctx, "UpdateStatus", id, from, to, nil)
}

// transition выполняет UPDATE ... WHERE id = ? AND status = ?.
// Ноль затронутых строк означает, что статус уже изменился (или записи нет).
func (r *Repository) transition(
	ctx context.Context,
	op string,
	id int64,
	from, to domain.AppointmentStatus,
	fields map[string]interface{},
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableAppointments).
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from})

	if len(fields) > 0 {
		updateBuilder = updateBuilder.SetMap(fields)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if IsConflict(err) {
			return fmt.Errorf("%w: %s: %w", ErrOverlap, op, err)
		}
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrStatusChanged
	}

	return nil
}

// Reschedule переносит запись на новые дату и время (статус не меняется).
// Вызывается только для свободного слота, поэтому пометка о пересечении снимается.
func (r *Repository) Reschedule(ctx context.Context, id int64, date time.Time, start, end types.TimeString) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableAppointments).
		Set("appointment_date", date.Format(domain.DateFormat)).
		Set("start_time", start).
		Set("end_time", end).
		Set("has_conflict", false).
		Set("conflict_note", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if IsConflict(err) {
			return fmt.Errorf("%w: Reschedule: %w", ErrOverlap, err)
		}
		return fmt.Errorf("%w: Reschedule - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Reschedule - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// ExpireOverdue переводит в expired все pending записи с истекшим сроком подтверждения.
// Возвращает ID обновленных записей.
func (r *Repository) ExpireOverdue(ctx context.Context, now time.Time) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableAppointments).
		Set("status", domain.StatusExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.Lt{"approval_deadline": now}).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ExpireOverdue - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ExpireOverdue - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ExpireOverdue - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ExpireOverdue - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}

// InsertReschedule добавляет запись в историю переносов
func (r *Repository) InsertReschedule(ctx context.Context, rs *domain.AppointmentReschedule) (*domain.AppointmentReschedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableReschedules).
		Columns(
			"appointment_id",
			"old_date",
			"old_start_time",
			"old_end_time",
			"new_date",
			"new_start_time",
			"new_end_time",
			"reason",
			"initiated_by",
		).
		Values(
			rs.AppointmentID,
			rs.OldDate.Format(domain.DateFormat),
			rs.OldStartTime,
			rs.OldEndTime,
			rs.NewDate.Format(domain.DateFormat),
			rs.NewStartTime,
			rs.NewEndTime,
			rs.Reason,
			rs.InitiatedBy,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: InsertReschedule - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&rs.ID, &rs.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: InsertReschedule - execute insert: %v", ErrExecQuery, err)
	}

	return rs, nil
}

// ListReschedules возвращает историю переносов записи в хронологическом порядке
func (r *Repository) ListReschedules(ctx context.Context, appointmentID int64) ([]*domain.AppointmentReschedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"appointment_id",
		"old_date",
		"old_start_time",
		"old_end_time",
		"new_date",
		"new_start_time",
		"new_end_time",
		"reason",
		"initiated_by",
		"created_at",
	).
		From(tableReschedules).
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListReschedules - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListReschedules - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	history := make([]*domain.AppointmentReschedule, 0)
	for rows.Next() {
		var rs domain.AppointmentReschedule
		err := rows.Scan(
			&rs.ID,
			&rs.AppointmentID,
			&rs.OldDate,
			&rs.OldStartTime,
			&rs.OldEndTime,
			&rs.NewDate,
			&rs.NewStartTime,
			&rs.NewEndTime,
			&rs.Reason,
			&rs.InitiatedBy,
			&rs.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListReschedules - scan row: %v", ErrScanRow, err)
		}
		history = append(history, &rs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListReschedules - rows error: %v", ErrScanRow, err)
	}

	return history, nil
}

// scanAppointment сканирует одну строку в запись
func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.BusinessID,
		&a.LocationID,
		&a.ServiceID,
		&a.ProfessionalID,
		&a.AppointmentDate,
		&a.StartTime,
		&a.EndTime,
		&a.DurationMinutes,
		&a.Status,
		&a.ServicePrice,
		&a.PlatformFee,
		&a.TotalAmount,
		&a.DepositAmount,
		&a.TotalPaid,
		&a.PaidAt,
		&a.HasConflict,
		&a.ConflictNote,
		&a.Notes,
		&a.ApprovalDeadline,
		&a.ApprovedAt,
		&a.RejectedAt,
		&a.RejectionReason,
		&a.CancelledAt,
		&a.CancellationReason,
		&a.CancelledBy,
		&a.RefundPercentage,
		&a.RefundAmount,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.AppointmentDate = domain.DateOnly(a.AppointmentDate)
	return &a, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func terminalStatuses() []domain.AppointmentStatus {
	terminal := make([]domain.AppointmentStatus, 0, len(domain.AllStatuses))
	for _, s := range domain.AllStatuses {
		if s.IsTerminal() {
			terminal = append(terminal, s)
		}
	}
	return terminal
}
