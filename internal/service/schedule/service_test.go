package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	scheduleCache "github.com/m04kA/SMC-AppointmentService/internal/infra/cache/schedule"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	locationID int64 = 3
	ownerID    int64 = 100
	customerID int64 = 10
)

type memScheduleRepo struct {
	mu        sync.Mutex
	schedules map[int64]*domain.LocationSchedule
	reads     int
}

func (r *memScheduleRepo) GetLocationSchedule(_ context.Context, id int64) (*domain.LocationSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	s, ok := r.schedules[id]
	if !ok {
		return nil, scheduleRepo.ErrLocationNotFound
	}
	return s, nil
}

func (r *memScheduleRepo) ReplaceLocationSchedule(_ context.Context, s *domain.LocationSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[s.LocationID]; !ok {
		return scheduleRepo.ErrLocationNotFound
	}
	r.schedules[s.LocationID] = s
	return nil
}

type fakeCatalog struct{}

func (fakeCatalog) GetBusiness(_ context.Context, id int64) (*domain.Business, error) {
	return &domain.Business{ID: id, OwnerID: ownerID}, nil
}

func (fakeCatalog) GetLocation(_ context.Context, id int64) (*domain.Location, error) {
	if id != locationID {
		return nil, catalogRepo.ErrLocationNotFound
	}
	return &domain.Location{ID: id, BusinessID: 1}, nil
}

type txCounter struct {
	calls int
}

func (t *txCounter) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

func newTestService(t *testing.T) (*Service, *memScheduleRepo) {
	t.Helper()

	repo := &memScheduleRepo{schedules: map[int64]*domain.LocationSchedule{
		locationID: {
			LocationID: locationID,
			WeeklyHours: []domain.WeeklyHours{{
				LocationID: locationID,
				DayOfWeek:  time.Monday,
				OpenTime:   types.MustTimeString("09:00"),
				CloseTime:  types.MustTimeString("18:00"),
			}},
		},
	}}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := scheduleCache.NewStore(repo, rdb, time.Minute, logger.NewNop())
	return NewService(store, repo, store, fakeCatalog{}, &txCounter{}, logger.NewNop()), repo
}

func validRequest(userID int64) *models.UpdateScheduleRequest {
	return &models.UpdateScheduleRequest{
		UserID: userID,
		WeeklyHours: []models.WeeklyHoursDTO{
			{DayOfWeek: 1, OpenTime: "10:00", CloseTime: "20:00"},
			{DayOfWeek: 0, IsClosed: true},
		},
		BlockedDates: []models.BlockedDateDTO{
			{Date: "2025-12-31", Reason: ptr.Ptr("New Year"), RecurringAnnually: true},
		},
	}
}

func TestService_UpdateInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	before, err := svc.Get(ctx, locationID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", before.WeeklyHours[0].OpenTime)

	_, err = svc.Get(ctx, locationID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.reads, "second read must come from cache")

	updated, err := svc.Update(ctx, locationID, validRequest(ownerID))
	require.NoError(t, err)
	assert.Len(t, updated.WeeklyHours, 2)
	assert.Equal(t, "2025-12-31", updated.BlockedDates[0].Date)

	after, err := svc.Get(ctx, locationID)
	require.NoError(t, err)
	assert.Equal(t, "10:00", after.WeeklyHours[0].OpenTime)
	assert.True(t, after.WeeklyHours[1].IsClosed)
	assert.Equal(t, 2, repo.reads)
}

func TestService_UpdateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.UpdateScheduleRequest)
	}{
		{name: "bad time format", mutate: func(r *models.UpdateScheduleRequest) { r.WeeklyHours[0].OpenTime = "9:00" }},
		{name: "open after close", mutate: func(r *models.UpdateScheduleRequest) { r.WeeklyHours[0].OpenTime = "21:00" }},
		{name: "open equals close", mutate: func(r *models.UpdateScheduleRequest) { r.WeeklyHours[0].OpenTime = "20:00" }},
		{name: "day out of range", mutate: func(r *models.UpdateScheduleRequest) { r.WeeklyHours[0].DayOfWeek = 7 }},
		{name: "duplicate weekday", mutate: func(r *models.UpdateScheduleRequest) {
			r.WeeklyHours = append(r.WeeklyHours, models.WeeklyHoursDTO{DayOfWeek: 1, IsClosed: true})
		}},
		{name: "bad blocked date", mutate: func(r *models.UpdateScheduleRequest) { r.BlockedDates[0].Date = "31.12.2025" }},
		{name: "duplicate blocked date", mutate: func(r *models.UpdateScheduleRequest) {
			r.BlockedDates = append(r.BlockedDates, models.BlockedDateDTO{Date: "2025-12-31"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			req := validRequest(ownerID)
			tt.mutate(req)

			_, err := svc.Update(context.Background(), locationID, req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestService_UpdateAccess(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), locationID, validRequest(customerID))
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Update(context.Background(), 42, validRequest(ownerID))
	assert.ErrorIs(t, err, ErrLocationNotFound)

	_, err = svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrLocationNotFound)
}
