package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/detect_conflicts"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// memLedger журнал записей в памяти с проверкой пересечений занимающих записей, как exclusion constraint в БД
type memLedger struct {
	mu           sync.Mutex
	appointments []*domain.Appointment
	nextID       int64
	staleReads   bool
}

func (l *memLedger) ListOccupying(_ context.Context, q domain.OccupancyQuery) ([]*domain.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.staleReads {
		return nil, nil
	}

	out := make([]*domain.Appointment, 0)
	for _, a := range l.appointments {
		if a.ServiceID != q.ServiceID || !domain.SameDate(a.AppointmentDate, q.Date) || !a.IsOccupying() {
			continue
		}
		if q.ExcludeAppointmentID != nil && a.ID == *q.ExcludeAppointmentID {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (l *memLedger) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if a.IsOccupying() {
		for _, e := range l.appointments {
			if e.ServiceID == a.ServiceID && domain.SameDate(e.AppointmentDate, a.AppointmentDate) && e.IsOccupying() &&
				a.StartTime.IsBefore(e.EndTime) && a.EndTime.IsAfter(e.StartTime) {
				return nil, fmt.Errorf("%w: Create: exclusion violation", appointmentRepo.ErrOverlap)
			}
		}
	}

	l.nextID++
	copied := *a
	copied.ID = l.nextID
	l.appointments = append(l.appointments, &copied)
	return &copied, nil
}

func (l *memLedger) occupying() []*domain.Appointment {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*domain.Appointment, 0)
	for _, a := range l.appointments {
		if a.IsOccupying() {
			out = append(out, a)
		}
	}
	return out
}

// mutexTx сериализует транзакции целиком
type mutexTx struct {
	mu        sync.Mutex
	commitErr error
}

func (m *mutexTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := fn(ctx); err != nil {
		return err
	}
	return m.commitErr
}

// passthroughTx не дает изоляции: гонку ловит только ограничение хранилища
type passthroughTx struct{}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeCatalog struct {
	details *domain.ServiceDetails
	err     error
}

func (f *fakeCatalog) GetServiceDetails(_ context.Context, _ int64) (*domain.ServiceDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.details
	return &copied, nil
}

type fakeSchedules struct {
	schedule *domain.LocationSchedule
}

func (f *fakeSchedules) GetLocationSchedule(_ context.Context, _ int64) (*domain.LocationSchedule, error) {
	return f.schedule, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.EventType
	err    error
}

func (n *fakeNotifier) Dispatch(_ context.Context, _ int64, eventType domain.EventType) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
	return n.err
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

// 2025-10-15 - среда
var (
	testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	testNow  = time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)
)

func testDetails() *domain.ServiceDetails {
	return &domain.ServiceDetails{
		Service: domain.Service{
			ID:              5,
			LocationID:      3,
			BusinessID:      1,
			Name:            "Haircut",
			DurationMinutes: 60,
			Price:           100,
		},
		Location: domain.Location{ID: 3, BusinessID: 1},
		Business: domain.Business{
			ID:                   1,
			OwnerID:              100,
			BookingApprovalHours: 24,
			CancellationHours:    24,
			RefundPercentage:     50,
		},
	}
}

func testSchedule() *domain.LocationSchedule {
	return &domain.LocationSchedule{
		LocationID: 3,
		WeeklyHours: []domain.WeeklyHours{{
			LocationID: 3,
			DayOfWeek:  time.Wednesday,
			OpenTime:   types.MustTimeString("09:00"),
			CloseTime:  types.MustTimeString("18:00"),
		}},
	}
}

type fixture struct {
	uc       *UseCase
	ledger   *memLedger
	notifier *fakeNotifier
	catalog  *fakeCatalog
	schedule *domain.LocationSchedule
}

func newFixture(tx TransactionManager, rejectConflicting bool) *fixture {
	ledger := &memLedger{}
	notifier := &fakeNotifier{}
	catalog := &fakeCatalog{details: testDetails()}
	schedule := testSchedule()

	uc := NewUseCase(
		ledger,
		catalog,
		&fakeSchedules{schedule: schedule},
		detect_conflicts.NewDetector(ledger, nil),
		notifier,
		tx,
		logger.NewNop(),
		rejectConflicting,
	)
	uc.timeProvider = fixedTime{now: testNow}

	return &fixture{uc: uc, ledger: ledger, notifier: notifier, catalog: catalog, schedule: schedule}
}

func request(userID int64, start string) *Request {
	return &Request{
		UserID:    userID,
		ServiceID: 5,
		Date:      testDate,
		StartTime: types.MustTimeString(start),
	}
}

func TestExecute_CreatesConfirmedWithPricing(t *testing.T) {
	f := newFixture(&mutexTx{}, false)
	f.catalog.details.Service.RequiresDeposit = true
	f.catalog.details.Service.DepositPercentage = ptr.Ptr(20.0)

	resp, err := f.uc.Execute(context.Background(), request(10, "10:00"))
	require.NoError(t, err)

	a := resp.Appointment
	assert.NotZero(t, a.ID)
	assert.Equal(t, domain.StatusConfirmed, a.Status)
	assert.Equal(t, "11:00", a.EndTime.String())
	assert.Equal(t, 60, a.DurationMinutes)
	assert.Equal(t, 100.0, a.ServicePrice)
	assert.Equal(t, 1.0, a.PlatformFee)
	assert.Equal(t, 101.0, a.TotalAmount)
	assert.Equal(t, 20.0, a.DepositAmount)
	assert.False(t, a.HasConflict)
	assert.Nil(t, a.ConflictNote)
	require.NotNil(t, a.ApprovalDeadline)
	assert.True(t, a.ApprovalDeadline.Equal(testNow.Add(24*time.Hour)))
	assert.Empty(t, resp.Conflicts)

	assert.Equal(t, []domain.EventType{domain.EventCreated}, f.notifier.events)
}

func TestExecute_RequiresApprovalStartsPending(t *testing.T) {
	f := newFixture(&mutexTx{}, false)
	f.catalog.details.Service.RequiresApproval = true

	resp, err := f.uc.Execute(context.Background(), request(10, "10:00"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, resp.Appointment.Status)
	assert.Empty(t, f.ledger.occupying())
}

// Конфликтная заявка по умолчанию сохраняется с флагом, но не занимает слот.
// Режим reject_conflicting_requests отклоняет ее как перенос.
func TestExecute_ConflictPolicy(t *testing.T) {
	t.Run("flag and allow", func(t *testing.T) {
		f := newFixture(&mutexTx{}, false)

		_, err := f.uc.Execute(context.Background(), request(10, "10:00"))
		require.NoError(t, err)

		resp, err := f.uc.Execute(context.Background(), request(11, "10:30"))
		require.NoError(t, err)

		a := resp.Appointment
		assert.True(t, a.HasConflict)
		require.NotNil(t, a.ConflictNote)
		assert.Contains(t, *a.ConflictNote, "10:00-11:00")
		assert.Equal(t, domain.StatusPending, a.Status)
		assert.Len(t, resp.Conflicts, 1)
		assert.Len(t, f.ledger.occupying(), 1)
	})

	t.Run("reject", func(t *testing.T) {
		f := newFixture(&mutexTx{}, true)

		_, err := f.uc.Execute(context.Background(), request(10, "10:00"))
		require.NoError(t, err)

		_, err = f.uc.Execute(context.Background(), request(11, "10:30"))
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		assert.NotErrorIs(t, err, ErrConcurrentBooking)
		assert.Len(t, f.ledger.appointments, 1)
	})

	t.Run("back to back is not a conflict", func(t *testing.T) {
		f := newFixture(&mutexTx{}, true)

		_, err := f.uc.Execute(context.Background(), request(10, "10:00"))
		require.NoError(t, err)

		resp, err := f.uc.Execute(context.Background(), request(11, "11:00"))
		require.NoError(t, err)
		assert.False(t, resp.Appointment.HasConflict)
		assert.Equal(t, domain.StatusConfirmed, resp.Appointment.Status)
	})
}

func TestExecute_ConcurrentCreatesKeepNonOverlap(t *testing.T) {
	for _, reject := range []bool{false, true} {
		t.Run(fmt.Sprintf("reject=%v", reject), func(t *testing.T) {
			f := newFixture(&mutexTx{}, reject)

			const workers = 10
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				succeeded int
				rejected  int
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(userID int64) {
					defer wg.Done()
					_, err := f.uc.Execute(context.Background(), request(userID, "10:00"))
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						succeeded++
					case errors.Is(err, ErrSlotNotAvailable):
						rejected++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}(int64(i + 1))
			}
			wg.Wait()

			assert.Len(t, f.ledger.occupying(), 1)
			if reject {
				assert.Equal(t, 1, succeeded)
				assert.Equal(t, workers-1, rejected)
			} else {
				assert.Equal(t, workers, succeeded)
			}
		})
	}
}

func TestExecute_StorageConflictIsConcurrentBooking(t *testing.T) {
	f := newFixture(passthroughTx{}, false)

	_, err := f.uc.Execute(context.Background(), request(10, "10:00"))
	require.NoError(t, err)

	// Устаревшее чтение: детектор не видит первую запись, вставку отклоняет хранилище
	f.ledger.staleReads = true
	_, err = f.uc.Execute(context.Background(), request(11, "10:00"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.ErrorIs(t, err, ErrConcurrentBooking)
	assert.Len(t, f.ledger.occupying(), 1)
}

func TestExecute_SerializationFailureOnCommit(t *testing.T) {
	tx := &mutexTx{commitErr: fmt.Errorf("%w: %w", errors.New("txmanager: failed to commit"), &pq.Error{Code: "40001"})}
	f := newFixture(tx, false)

	_, err := f.uc.Execute(context.Background(), request(10, "10:00"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.ErrorIs(t, err, ErrConcurrentBooking)
	assert.Empty(t, f.notifier.events)
}

func TestExecute_ScheduleRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture)
		start   string
		wantErr error
	}{
		{
			name: "blocked date",
			mutate: func(f *fixture) {
				f.schedule.BlockedDates = []domain.BlockedDate{{LocationID: 3, Date: testDate}}
			},
			start:   "10:00",
			wantErr: ErrLocationClosed,
		},
		{
			name: "closed weekday",
			mutate: func(f *fixture) {
				f.schedule.WeeklyHours[0].IsClosed = true
			},
			start:   "10:00",
			wantErr: ErrLocationClosed,
		},
		{name: "before opening", mutate: func(*fixture) {}, start: "08:30", wantErr: ErrInvalidTimeSlot},
		{name: "ends after closing", mutate: func(*fixture) {}, start: "17:30", wantErr: ErrInvalidTimeSlot},
		{
			name: "min advance notice",
			mutate: func(f *fixture) {
				f.catalog.details.Business.MinAdvanceHours = 24 * 6
			},
			start:   "10:00",
			wantErr: ErrTooLateToBook,
		},
		{
			name: "max advance days",
			mutate: func(f *fixture) {
				f.catalog.details.Business.MaxAdvanceDays = 2
			},
			start:   "10:00",
			wantErr: ErrDateTooFarInFuture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&mutexTx{}, false)
			tt.mutate(f)

			_, err := f.uc.Execute(context.Background(), request(10, tt.start))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.ledger.appointments)
		})
	}
}

func TestExecute_InputErrors(t *testing.T) {
	f := newFixture(&mutexTx{}, false)

	_, err := f.uc.Execute(context.Background(), &Request{UserID: 1, ServiceID: 5, Date: testDate})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{ServiceID: 5, Date: testDate, StartTime: types.MustTimeString("10:00")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.catalog.err = catalogRepo.ErrServiceNotFound
	_, err = f.uc.Execute(context.Background(), request(10, "10:00"))
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_NotifierFailureDoesNotFail(t *testing.T) {
	f := newFixture(&mutexTx{}, false)
	f.notifier.err = errors.New("broker down")

	resp, err := f.uc.Execute(context.Background(), request(10, "10:00"))
	require.NoError(t, err)
	assert.NotZero(t, resp.Appointment.ID)
}
