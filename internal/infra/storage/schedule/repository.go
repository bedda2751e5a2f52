package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const pgUniqueViolation = "23505"

// Repository хранилище расписаний локаций (часы работы и заблокированные даты)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetLocationSchedule получает расписание локации
func (r *Repository) GetLocationSchedule(ctx context.Context, locationID int64) (*domain.LocationSchedule, error) {
	if err := r.ensureLocation(ctx, locationID); err != nil {
		return nil, err
	}

	hours, err := r.getWeeklyHours(ctx, locationID)
	if err != nil {
		return nil, err
	}

	blocked, err := r.getBlockedDates(ctx, locationID)
	if err != nil {
		return nil, err
	}

	return &domain.LocationSchedule{
		LocationID:   locationID,
		WeeklyHours:  hours,
		BlockedDates: blocked,
	}, nil
}

// ReplaceLocationSchedule полностью заменяет расписание локации.
// Должен вызываться внутри транзакции, иначе замена не атомарна.
func (r *Repository) ReplaceLocationSchedule(ctx context.Context, s *domain.LocationSchedule) error {
	if err := r.ensureLocation(ctx, s.LocationID); err != nil {
		return err
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	for _, table := range []string{"weekly_hours", "blocked_dates"} {
		query, args, err := psqlbuilder.Delete(table).
			Where(squirrel.Eq{"location_id": s.LocationID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: ReplaceLocationSchedule - build delete %s: %v", ErrBuildQuery, table, err)
		}
		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: ReplaceLocationSchedule - delete %s: %v", ErrExecQuery, table, err)
		}
	}

	if len(s.WeeklyHours) > 0 {
		insert := psqlbuilder.Insert("weekly_hours").
			Columns("location_id", "day_of_week", "open_time", "close_time", "is_closed")
		for _, h := range s.WeeklyHours {
			insert = insert.Values(s.LocationID, int(h.DayOfWeek), h.OpenTime, h.CloseTime, h.IsClosed)
		}
		if err := r.execInsert(ctx, executor, "weekly_hours", insert); err != nil {
			return err
		}
	}

	if len(s.BlockedDates) > 0 {
		insert := psqlbuilder.Insert("blocked_dates").
			Columns("location_id", "blocked_date", "reason", "recurring_annually")
		for _, b := range s.BlockedDates {
			insert = insert.Values(s.LocationID, b.Date.Format(domain.DateFormat), b.Reason, b.RecurringAnnually)
		}
		if err := r.execInsert(ctx, executor, "blocked_dates", insert); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) execInsert(ctx context.Context, executor DBExecutor, table string, insert squirrel.InsertBuilder) error {
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceLocationSchedule - build insert %s: %v", ErrBuildQuery, table, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, table)
		}
		return fmt.Errorf("%w: ReplaceLocationSchedule - insert %s: %v", ErrExecQuery, table, err)
	}

	return nil
}

func (r *Repository) ensureLocation(ctx context.Context, locationID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From("locations").
		Where(squirrel.Eq{"id": locationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ensureLocation - build select query: %v", ErrBuildQuery, err)
	}

	var id int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&id)
	if err == sql.ErrNoRows {
		return ErrLocationNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: ensureLocation - scan: %v", ErrScanRow, err)
	}

	return nil
}

func (r *Repository) getWeeklyHours(ctx context.Context, locationID int64) ([]domain.WeeklyHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("location_id", "day_of_week", "open_time", "close_time", "is_closed").
		From("weekly_hours").
		Where(squirrel.Eq{"location_id": locationID}).
		OrderBy("day_of_week ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getWeeklyHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getWeeklyHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	hours := make([]domain.WeeklyHours, 0, 7)
	for rows.Next() {
		var h domain.WeeklyHours
		var day int
		if err := rows.Scan(&h.LocationID, &day, &h.OpenTime, &h.CloseTime, &h.IsClosed); err != nil {
			return nil, fmt.Errorf("%w: getWeeklyHours - scan row: %v", ErrScanRow, err)
		}
		h.DayOfWeek = time.Weekday(day)
		hours = append(hours, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getWeeklyHours - rows error: %v", ErrScanRow, err)
	}

	return hours, nil
}

func (r *Repository) getBlockedDates(ctx context.Context, locationID int64) ([]domain.BlockedDate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("location_id", "blocked_date", "reason", "recurring_annually").
		From("blocked_dates").
		Where(squirrel.Eq{"location_id": locationID}).
		OrderBy("blocked_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getBlockedDates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getBlockedDates - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blocked := make([]domain.BlockedDate, 0)
	for rows.Next() {
		var b domain.BlockedDate
		if err := rows.Scan(&b.LocationID, &b.Date, &b.Reason, &b.RecurringAnnually); err != nil {
			return nil, fmt.Errorf("%w: getBlockedDates - scan row: %v", ErrScanRow, err)
		}
		b.Date = domain.DateOnly(b.Date)
		blocked = append(blocked, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getBlockedDates - rows error: %v", ErrScanRow, err)
	}

	return blocked, nil
}
