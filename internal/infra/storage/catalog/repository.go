package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

var businessColumns = []string{
	"b.id",
	"b.name",
	"b.owner_id",
	"b.min_advance_hours",
	"b.max_advance_days",
	"b.booking_approval_hours",
	"b.cancellation_hours",
	"b.refund_percentage",
}

var locationColumns = []string{
	"l.id",
	"l.business_id",
	"l.province",
	"l.city",
	"l.address",
	"l.timezone",
}

// Repository справочник услуг, локаций и бизнесов (только чтение)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetServiceDetails получает услугу вместе с локацией и настройками бизнеса
func (r *Repository) GetServiceDetails(ctx context.Context, serviceID int64) (*domain.ServiceDetails, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	columns := []string{
		"s.id",
		"s.location_id",
		"s.name",
		"s.duration_minutes",
		"s.buffer_minutes",
		"s.price",
		"s.requires_approval",
		"s.requires_deposit",
		"s.deposit_amount",
		"s.deposit_percentage",
	}
	columns = append(columns, locationColumns...)
	columns = append(columns, businessColumns...)

	query, args, err := psqlbuilder.Select(columns...).
		From("services s").
		Join("locations l ON l.id = s.location_id").
		Join("businesses b ON b.id = l.business_id").
		Where(squirrel.Eq{"s.id": serviceID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceDetails - build select query: %v", ErrBuildQuery, err)
	}

	var d domain.ServiceDetails
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&d.Service.ID,
		&d.Service.LocationID,
		&d.Service.Name,
		&d.Service.DurationMinutes,
		&d.Service.BufferMinutes,
		&d.Service.Price,
		&d.Service.RequiresApproval,
		&d.Service.RequiresDeposit,
		&d.Service.DepositAmount,
		&d.Service.DepositPercentage,
		&d.Location.ID,
		&d.Location.BusinessID,
		&d.Location.Province,
		&d.Location.City,
		&d.Location.Address,
		&d.Location.Timezone,
		&d.Business.ID,
		&d.Business.Name,
		&d.Business.OwnerID,
		&d.Business.MinAdvanceHours,
		&d.Business.MaxAdvanceDays,
		&d.Business.BookingApprovalHours,
		&d.Business.CancellationHours,
		&d.Business.RefundPercentage,
	)

	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetServiceDetails - scan service: %v", ErrScanRow, err)
	}

	d.Service.BusinessID = d.Business.ID

	managers, err := r.getManagerIDs(ctx, d.Business.ID)
	if err != nil {
		return nil, err
	}
	d.Business.ManagerIDs = managers

	return &d, nil
}

// GetBusiness получает настройки бизнеса вместе со списком менеджеров
func (r *Repository) GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(businessColumns...).
		From("businesses b").
		Where(squirrel.Eq{"b.id": businessID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBusiness - build select query: %v", ErrBuildQuery, err)
	}

	var b domain.Business
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&b.Name,
		&b.OwnerID,
		&b.MinAdvanceHours,
		&b.MaxAdvanceDays,
		&b.BookingApprovalHours,
		&b.CancellationHours,
		&b.RefundPercentage,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusiness - scan business: %v", ErrScanRow, err)
	}

	managers, err := r.getManagerIDs(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.ManagerIDs = managers

	return &b, nil
}

// GetLocation получает локацию по ID
func (r *Repository) GetLocation(ctx context.Context, locationID int64) (*domain.Location, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(locationColumns...).
		From("locations l").
		Where(squirrel.Eq{"l.id": locationID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetLocation - build select query: %v", ErrBuildQuery, err)
	}

	var l domain.Location
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&l.ID,
		&l.BusinessID,
		&l.Province,
		&l.City,
		&l.Address,
		&l.Timezone,
	)

	if err == sql.ErrNoRows {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetLocation - scan location: %v", ErrScanRow, err)
	}

	return &l, nil
}

func (r *Repository) getManagerIDs(ctx context.Context, businessID int64) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("user_id").
		From("business_managers").
		Where(squirrel.Eq{"business_id": businessID}).
		OrderBy("user_id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getManagerIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getManagerIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: getManagerIDs - scan user_id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getManagerIDs - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}
