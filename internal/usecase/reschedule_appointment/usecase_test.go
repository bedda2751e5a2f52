package reschedule_appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/detect_conflicts"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type memRepo struct {
	mu          sync.Mutex
	byID        map[int64]*domain.Appointment
	reschedules []*domain.AppointmentReschedule
}

func newMemRepo(appointments ...*domain.Appointment) *memRepo {
	r := &memRepo{byID: make(map[int64]*domain.Appointment)}
	for _, a := range appointments {
		r.byID[a.ID] = a
	}
	return r
}

func (r *memRepo) GetByIDForUpdate(_ context.Context, id int64) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *memRepo) Reschedule(_ context.Context, id int64, date time.Time, start, end types.TimeString) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	a.AppointmentDate = domain.DateOnly(date)
	a.StartTime = start
	a.EndTime = end
	a.HasConflict = false
	a.ConflictNote = nil
	return nil
}

func (r *memRepo) InsertReschedule(_ context.Context, rs *domain.AppointmentReschedule) (*domain.AppointmentReschedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *rs
	copied.ID = int64(len(r.reschedules) + 1)
	r.reschedules = append(r.reschedules, &copied)
	return &copied, nil
}

func (r *memRepo) ListOccupying(_ context.Context, q domain.OccupancyQuery) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Appointment, 0)
	for _, a := range r.byID {
		if a.ServiceID == q.ServiceID && domain.SameDate(a.AppointmentDate, q.Date) && a.IsOccupying() {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

type mutexTx struct {
	mu sync.Mutex
}

func (m *mutexTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeCatalog struct {
	details *domain.ServiceDetails
}

func (f *fakeCatalog) GetServiceDetails(_ context.Context, _ int64) (*domain.ServiceDetails, error) {
	return f.details, nil
}

type fakeSchedules struct {
	schedule *domain.LocationSchedule
}

func (f *fakeSchedules) GetLocationSchedule(_ context.Context, _ int64) (*domain.LocationSchedule, error) {
	return f.schedule, nil
}

type fakeNotifier struct {
	events []domain.EventType
}

func (n *fakeNotifier) Dispatch(_ context.Context, _ int64, eventType domain.EventType) error {
	n.events = append(n.events, eventType)
	return nil
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

const (
	ownerID    = 100
	managerID  = 101
	customerID = 10
)

// 2025-10-15 - среда
var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func confirmed(id int64, userID int64, start, end string) *domain.Appointment {
	return &domain.Appointment{
		ID:              id,
		UserID:          userID,
		BusinessID:      1,
		LocationID:      3,
		ServiceID:       5,
		AppointmentDate: testDate,
		StartTime:       types.MustTimeString(start),
		EndTime:         types.MustTimeString(end),
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
	}
}

type fixture struct {
	uc       *UseCase
	repo     *memRepo
	notifier *fakeNotifier
}

func newFixture(appointments ...*domain.Appointment) *fixture {
	repo := newMemRepo(appointments...)
	notifier := &fakeNotifier{}
	details := &domain.ServiceDetails{
		Service:  domain.Service{ID: 5, LocationID: 3, BusinessID: 1, DurationMinutes: 60},
		Location: domain.Location{ID: 3, BusinessID: 1},
		Business: domain.Business{ID: 1, OwnerID: ownerID, ManagerIDs: []int64{managerID}},
	}
	schedule := &domain.LocationSchedule{
		LocationID: 3,
		WeeklyHours: []domain.WeeklyHours{
			{LocationID: 3, DayOfWeek: time.Wednesday, OpenTime: types.MustTimeString("09:00"), CloseTime: types.MustTimeString("18:00")},
			{LocationID: 3, DayOfWeek: time.Thursday, IsClosed: true},
		},
	}

	uc := NewUseCase(
		repo,
		&fakeCatalog{details: details},
		&fakeSchedules{schedule: schedule},
		detect_conflicts.NewDetector(repo, nil),
		notifier,
		&mutexTx{},
		logger.NewNop(),
	)
	uc.timeProvider = fixedTime{now: testDate.AddDate(0, 0, -3)}

	return &fixture{uc: uc, repo: repo, notifier: notifier}
}

func request(userID int64, date time.Time, start string) *Request {
	return &Request{
		AppointmentID: 1,
		UserID:        userID,
		Date:          date,
		StartTime:     types.MustTimeString(start),
		Reason:        ptr.Ptr("running late"),
	}
}

func TestExecute_SameTimeDoesNotConflictWithItself(t *testing.T) {
	f := newFixture(confirmed(1, customerID, "10:00", "11:00"))

	resp, err := f.uc.Execute(context.Background(), request(customerID, testDate, "10:00"))
	require.NoError(t, err)
	assert.Equal(t, "10:00", resp.Appointment.StartTime.String())
	assert.Len(t, f.repo.reschedules, 1)
}

func TestExecute_OverlapWithOwnOldSlot(t *testing.T) {
	f := newFixture(confirmed(1, customerID, "10:00", "11:00"))

	resp, err := f.uc.Execute(context.Background(), request(customerID, testDate, "10:30"))
	require.NoError(t, err)

	assert.Equal(t, "10:30", resp.Appointment.StartTime.String())
	assert.Equal(t, "11:30", resp.Appointment.EndTime.String())
	assert.Equal(t, domain.StatusConfirmed, resp.Appointment.Status)

	require.NotNil(t, resp.Reschedule)
	assert.Equal(t, "10:00", resp.Reschedule.OldStartTime.String())
	assert.Equal(t, "11:00", resp.Reschedule.OldEndTime.String())
	assert.Equal(t, "10:30", resp.Reschedule.NewStartTime.String())
	assert.Equal(t, int64(customerID), resp.Reschedule.InitiatedBy)

	assert.Equal(t, "10:30", f.repo.byID[1].StartTime.String())
	assert.Equal(t, []domain.EventType{domain.EventRescheduled}, f.notifier.events)
}

func TestExecute_ConflictLeavesAppointmentUnchanged(t *testing.T) {
	f := newFixture(
		confirmed(1, customerID, "10:00", "11:00"),
		confirmed(2, 20, "12:00", "13:00"),
	)

	_, err := f.uc.Execute(context.Background(), request(customerID, testDate, "12:30"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.NotErrorIs(t, err, ErrConcurrentBooking)

	assert.Equal(t, "10:00", f.repo.byID[1].StartTime.String())
	assert.Empty(t, f.repo.reschedules)
	assert.Empty(t, f.notifier.events)
}

func TestExecute_ClearsConflictFlag(t *testing.T) {
	flagged := confirmed(1, customerID, "10:00", "11:00")
	flagged.Status = domain.StatusPending
	flagged.HasConflict = true
	flagged.ConflictNote = ptr.Ptr("overlaps with appointment #2")
	f := newFixture(flagged)

	resp, err := f.uc.Execute(context.Background(), request(customerID, testDate, "15:00"))
	require.NoError(t, err)

	assert.False(t, resp.Appointment.HasConflict)
	assert.Nil(t, resp.Appointment.ConflictNote)
	assert.Equal(t, domain.StatusPending, resp.Appointment.Status)

	assert.False(t, f.repo.byID[1].HasConflict)
	assert.Nil(t, f.repo.byID[1].ConflictNote)
}

func TestExecute_ToAnotherDate(t *testing.T) {
	f := newFixture(confirmed(1, customerID, "10:00", "11:00"))
	nextWeek := testDate.AddDate(0, 0, 7)

	resp, err := f.uc.Execute(context.Background(), request(customerID, nextWeek, "15:00"))
	require.NoError(t, err)
	assert.True(t, domain.SameDate(resp.Appointment.AppointmentDate, nextWeek))
	assert.True(t, domain.SameDate(resp.Reschedule.OldDate, testDate))
}

func TestExecute_Rules(t *testing.T) {
	tests := []struct {
		name    string
		appt    *domain.Appointment
		userID  int64
		date    time.Time
		start   string
		wantErr error
	}{
		{
			name:    "terminal status",
			appt:    func() *domain.Appointment { a := confirmed(1, customerID, "10:00", "11:00"); a.Status = domain.StatusCancelled; return a }(),
			userID:  customerID,
			date:    testDate,
			start:   "14:00",
			wantErr: ErrCannotReschedule,
		},
		{
			name:    "stranger",
			appt:    confirmed(1, customerID, "10:00", "11:00"),
			userID:  999,
			date:    testDate,
			start:   "14:00",
			wantErr: ErrAccessDenied,
		},
		{
			name:    "closed day",
			appt:    confirmed(1, customerID, "10:00", "11:00"),
			userID:  customerID,
			date:    testDate.AddDate(0, 0, 1),
			start:   "14:00",
			wantErr: ErrLocationClosed,
		},
		{
			name:    "outside hours",
			appt:    confirmed(1, customerID, "10:00", "11:00"),
			userID:  customerID,
			date:    testDate,
			start:   "17:30",
			wantErr: ErrInvalidTimeSlot,
		},
		{
			name:    "in the past",
			appt:    confirmed(1, customerID, "10:00", "11:00"),
			userID:  customerID,
			date:    testDate.AddDate(0, 0, -7),
			start:   "10:00",
			wantErr: ErrTooLateToBook,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.appt)

			_, err := f.uc.Execute(context.Background(), request(tt.userID, tt.date, tt.start))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.repo.reschedules)
		})
	}
}

func TestExecute_ManagerCanReschedule(t *testing.T) {
	for _, userID := range []int64{ownerID, managerID} {
		f := newFixture(confirmed(1, customerID, "10:00", "11:00"))

		_, err := f.uc.Execute(context.Background(), request(userID, testDate, "14:00"))
		assert.NoError(t, err)
	}
}

func TestExecute_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), request(customerID, testDate, "14:00"))
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
