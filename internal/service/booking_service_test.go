package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/queue"
	apperrors "github.com/spec-kit/booking-service/pkg/util"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = "u" + strconv.Itoa(len(r.users)+1)
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetProvider(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || !user.Provider {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) ListProviders(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if user.Provider {
			result = append(result, *user)
		}
	}
	return result, nil
}

// fakeAppointmentRepo enforces the active (provider_id, scheduled_at)
// uniqueness the way the partial index does, returning a unique violation
// to the racing loser.
type fakeAppointmentRepo struct {
	mu    sync.Mutex
	seq   int
	appts map[string]*domain.Appointment
	users *fakeUserRepo
}

func newFakeAppointmentRepo(users *fakeUserRepo) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: make(map[string]*domain.Appointment), users: users}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appt *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.appts {
		if existing.ProviderID == appt.ProviderID && existing.CanceledAt == nil && existing.ScheduledAt.Equal(appt.ScheduledAt) {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uniq_active_provider_slot"}
		}
	}
	r.seq++
	appt.ID = "a" + strconv.Itoa(r.seq)
	appt.CreatedAt = time.Now()
	copy := *appt
	r.appts[appt.ID] = &copy
	return nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, appt *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appts[appt.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.CanceledAt = appt.CanceledAt
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copy := *appt
	// The SQL implementation joins requester and provider display data.
	if r.users != nil {
		if u, err := r.users.GetByID(context.Background(), copy.RequesterID); err == nil {
			copy.Requester = u
		}
		if u, err := r.users.GetByID(context.Background(), copy.ProviderID); err == nil {
			copy.Provider = u
		}
	}
	return &copy, nil
}

func (r *fakeAppointmentRepo) ExistsActiveAt(_ context.Context, providerID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, appt := range r.appts {
		if appt.ProviderID == providerID && appt.CanceledAt == nil && appt.ScheduledAt.Equal(at) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) ListByRequester(_ context.Context, requesterID string, limit, offset int) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Appointment
	for _, appt := range r.appts {
		if appt.RequesterID == requesterID && appt.CanceledAt == nil {
			result = append(result, *appt)
		}
	}
	return result, nil
}

func (r *fakeAppointmentRepo) ListForProviderBetween(_ context.Context, providerID string, from, to time.Time) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Appointment
	for _, appt := range r.appts {
		if appt.ProviderID == providerID && appt.CanceledAt == nil &&
			!appt.ScheduledAt.Before(from) && !appt.ScheduledAt.After(to) {
			result = append(result, *appt)
		}
	}
	return result, nil
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, code, domainErr.Code, "unexpected error: %v", err)
}

func newBookingFixture(now time.Time) (*BookingService, *fakeUserRepo, *fakeAppointmentRepo, *queue.MemoryQueue) {
	users := newFakeUserRepo(
		&domain.User{ID: "provider-1", Name: "Joana", Email: "joana@example.com", Provider: true},
		&domain.User{ID: "user-1", Name: "Ana", Email: "ana@example.com"},
		&domain.User{ID: "user-2", Name: "Bruno", Email: "bruno@example.com"},
	)
	appts := newFakeAppointmentRepo(users)
	q := queue.NewMemoryQueue(32)
	svc := NewBookingService(BookingDependencies{
		UserRepo:        users,
		AppointmentRepo: appts,
		Queue:           q,
		Now:             func() time.Time { return now },
	})
	return svc, users, appts, q
}

func TestCreateAppointment(t *testing.T) {
	now := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
	slot := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("books a free future slot and enqueues one notification", func(t *testing.T) {
		svc, _, _, q := newBookingFixture(now)

		appt, err := svc.CreateAppointment(ctx, "user-1", "provider-1", slot.Add(25*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, slot, appt.ScheduledAt, "scheduled instant must be normalized to the hour")
		assert.Nil(t, appt.CanceledAt)
		assert.Equal(t, "Joana", appt.Provider.Name)

		require.Equal(t, 1, q.Len(), "exactly one notification per successful booking")
		job, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.Equal(t, queue.JobBookingNotification, job.Kind)
	})

	t.Run("rejects missing provider or date", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(now)
		_, err := svc.CreateAppointment(ctx, "user-1", "", slot)
		requireCode(t, err, "VALIDATION_FAILED")
		_, err = svc.CreateAppointment(ctx, "user-1", "provider-1", time.Time{})
		requireCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("rejects self-booking", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(now)
		_, err := svc.CreateAppointment(ctx, "provider-1", "provider-1", slot)
		requireCode(t, err, "FORBIDDEN")
	})

	t.Run("rejects users without the provider capability", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(now)
		_, err := svc.CreateAppointment(ctx, "user-1", "user-2", slot)
		requireCode(t, err, "NOT_FOUND")
		_, err = svc.CreateAppointment(ctx, "user-1", "nope", slot)
		requireCode(t, err, "NOT_FOUND")
	})

	t.Run("rejects past and current-hour dates", func(t *testing.T) {
		svc, _, _, q := newBookingFixture(now)
		_, err := svc.CreateAppointment(ctx, "user-1", "provider-1", now.Add(-time.Hour))
		requireCode(t, err, "VALIDATION_FAILED")
		// now is 12:00; a 12:xx date normalizes to 12:00 which is not
		// strictly after now.
		_, err = svc.CreateAppointment(ctx, "user-1", "provider-1", now.Add(30*time.Minute))
		requireCode(t, err, "VALIDATION_FAILED")
		assert.Zero(t, q.Len(), "failed bookings must not notify")
	})

	t.Run("rejects a second booking for the same slot", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(now)
		_, err := svc.CreateAppointment(ctx, "user-1", "provider-1", slot)
		require.NoError(t, err)
		_, err = svc.CreateAppointment(ctx, "user-2", "provider-1", slot)
		requireCode(t, err, "CONFLICT")
	})

	t.Run("unknown requester leaves no appointment behind", func(t *testing.T) {
		svc, _, appts, q := newBookingFixture(now)
		_, err := svc.CreateAppointment(ctx, "ghost", "provider-1", slot)
		requireCode(t, err, "NOT_FOUND")
		require.Empty(t, appts.appts, "nothing may be persisted when the requester lookup fails")
		require.Zero(t, q.Len())
	})

	t.Run("reports conflict for a seeded active row", func(t *testing.T) {
		svc, _, appts, _ := newBookingFixture(now)
		other := &domain.Appointment{RequesterID: "user-2", ProviderID: "provider-1", ScheduledAt: slot}
		require.NoError(t, appts.Create(ctx, other))
		_, err := svc.CreateAppointment(ctx, "user-1", "provider-1", slot)
		requireCode(t, err, "CONFLICT")
	})
}

func TestCreateAppointment_ConcurrentSameSlot(t *testing.T) {
	now := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
	slot := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc, users, appts, _ := newBookingFixture(now)

	const attempts = 16
	for i := 0; i < attempts; i++ {
		require.NoError(t, users.Create(context.Background(), &domain.User{Name: "User"}))
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateAppointment(context.Background(), "u"+strconv.Itoa(i+4), "provider-1", slot)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			requireCode(t, err, "CONFLICT")
		}
	}
	require.Equal(t, 1, succeeded, "exactly one active appointment per (provider, slot)")

	active := 0
	for _, appt := range appts.appts {
		if appt.CanceledAt == nil && appt.ScheduledAt.Equal(slot) {
			active++
		}
	}
	require.Equal(t, 1, active)
}

func TestCancelAppointment(t *testing.T) {
	slot := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	book := func(t *testing.T, svc *BookingService, q *queue.MemoryQueue) *domain.Appointment {
		t.Helper()
		appt, err := svc.CreateAppointment(ctx, "user-1", "provider-1", slot)
		require.NoError(t, err)
		// Drain the booking notification so cancel assertions start clean.
		_, err = q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		return appt
	}

	t.Run("succeeds more than two hours ahead", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 7, 59, 59, 0, time.UTC)
		svc, _, _, q := newBookingFixture(now)
		appt := book(t, svc, q)

		canceled, err := svc.CancelAppointment(ctx, "user-1", appt.ID)
		require.NoError(t, err)
		require.NotNil(t, canceled.CanceledAt)
		assert.Equal(t, now, *canceled.CanceledAt)

		job, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.Equal(t, queue.JobCancellationMail, job.Kind)
	})

	t.Run("fails inside the two hour window", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 8, 0, 1, 0, time.UTC)
		svc, _, _, q := newBookingFixture(now.Add(-24 * time.Hour))
		appt := book(t, svc, q)

		svcLate, _, _, _ := rebuildWithClock(svc, now)
		_, err := svcLate.CancelAppointment(ctx, "user-1", appt.ID)
		requireCode(t, err, "POLICY_VIOLATION")
	})

	t.Run("fails exactly at the window boundary", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
		svc, _, _, q := newBookingFixture(now.Add(-24 * time.Hour))
		appt := book(t, svc, q)

		svcLate, _, _, _ := rebuildWithClock(svc, now)
		_, err := svcLate.CancelAppointment(ctx, "user-1", appt.ID)
		requireCode(t, err, "POLICY_VIOLATION")
	})

	t.Run("rejects non-owners", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
		svc, _, _, q := newBookingFixture(now)
		appt := book(t, svc, q)

		_, err := svc.CancelAppointment(ctx, "user-2", appt.ID)
		requireCode(t, err, "FORBIDDEN")
	})

	t.Run("rejects unknown appointments", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
		svc, _, _, _ := newBookingFixture(now)
		_, err := svc.CancelAppointment(ctx, "user-1", "missing")
		requireCode(t, err, "NOT_FOUND")
	})

	t.Run("rejects double cancellation", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
		svc, _, _, q := newBookingFixture(now)
		appt := book(t, svc, q)

		_, err := svc.CancelAppointment(ctx, "user-1", appt.ID)
		require.NoError(t, err)
		_, err = svc.CancelAppointment(ctx, "user-1", appt.ID)
		requireCode(t, err, "CONFLICT")
	})
}

func TestAvailability(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("empty day has all future slots available", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 11, 30, 0, 0, time.UTC)
		svc, _, _, _ := newBookingFixture(now)

		result, err := svc.Availability(ctx, "provider-1", day)
		require.NoError(t, err)
		require.Len(t, result, 12)
		for _, entry := range result {
			assert.Equal(t, entry.At.After(now), entry.Available, "slot %s", entry.Label)
		}
	})

	t.Run("booked slot is unavailable, rest stay open", func(t *testing.T) {
		now := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
		svc, _, _, _ := newBookingFixture(now)
		_, err := svc.CreateAppointment(ctx, "user-1", "provider-1", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		result, err := svc.Availability(ctx, "provider-1", day)
		require.NoError(t, err)
		for _, entry := range result {
			if entry.Label == "10:00" {
				assert.False(t, entry.Available)
			} else {
				assert.True(t, entry.Available, "slot %s", entry.Label)
			}
		}
	})

	t.Run("canceled bookings free the slot", func(t *testing.T) {
		now := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
		svc, _, _, _ := newBookingFixture(now)
		appt, err := svc.CreateAppointment(ctx, "user-1", "provider-1", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		_, err = svc.CancelAppointment(ctx, "user-1", appt.ID)
		require.NoError(t, err)

		result, err := svc.Availability(ctx, "provider-1", day)
		require.NoError(t, err)
		for _, entry := range result {
			assert.True(t, entry.Available, "slot %s", entry.Label)
		}
	})

	t.Run("unknown provider is not found", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(time.Now())
		_, err := svc.Availability(ctx, "missing", day)
		requireCode(t, err, "NOT_FOUND")
	})
}

func TestProviderSchedule(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)

	t.Run("lists the provider's day in order", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(now)
		_, err := svc.CreateAppointment(ctx, "user-1", "provider-1", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		_, err = svc.CreateAppointment(ctx, "user-2", "provider-1", time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		// A different day stays out of the listing.
		_, err = svc.CreateAppointment(ctx, "user-1", "provider-1", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		appts, err := svc.ProviderSchedule(ctx, "provider-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, appts, 2)
	})

	t.Run("defaults to the current day when no date is given", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(now)
		// now is 2024-02-29 12:00; one booking today, one tomorrow.
		_, err := svc.CreateAppointment(ctx, "user-1", "provider-1", time.Date(2024, 2, 29, 15, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		_, err = svc.CreateAppointment(ctx, "user-2", "provider-1", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		appts, err := svc.ProviderSchedule(ctx, "provider-1", time.Time{})
		require.NoError(t, err)
		require.Len(t, appts, 1)
		assert.Equal(t, time.Date(2024, 2, 29, 15, 0, 0, 0, time.UTC), appts[0].ScheduledAt)
	})

	t.Run("rejects non-providers", func(t *testing.T) {
		svc, _, _, _ := newBookingFixture(now)
		_, err := svc.ProviderSchedule(ctx, "user-1", now)
		requireCode(t, err, "FORBIDDEN")
	})
}

func TestEnqueueFailureDoesNotFailBooking(t *testing.T) {
	now := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
	users := newFakeUserRepo(
		&domain.User{ID: "provider-1", Name: "Joana", Email: "joana@example.com", Provider: true},
		&domain.User{ID: "user-1", Name: "Ana", Email: "ana@example.com"},
	)
	// A full queue makes every enqueue fail.
	full := queue.NewMemoryQueue(1)
	require.NoError(t, full.Enqueue(context.Background(), queue.Job{ID: "blocker"}))
	svc := NewBookingService(BookingDependencies{
		UserRepo:        users,
		AppointmentRepo: newFakeAppointmentRepo(users),
		Queue:           full,
		Now:             func() time.Time { return now },
	})

	appt, err := svc.CreateAppointment(context.Background(), "user-1", "provider-1", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err, "dispatch failures must not surface to the caller")
	require.NotNil(t, appt)
}

// rebuildWithClock recreates the service over the same stores with a
// different current instant.
func rebuildWithClock(svc *BookingService, now time.Time) (*BookingService, *fakeUserRepo, *fakeAppointmentRepo, *queue.MemoryQueue) {
	users := svc.users.(*fakeUserRepo)
	appts := svc.appointments.(*fakeAppointmentRepo)
	q := svc.queue.(*queue.MemoryQueue)
	return NewBookingService(BookingDependencies{
		UserRepo:        users,
		AppointmentRepo: appts,
		Queue:           q,
		Now:             func() time.Time { return now },
	}), users, appts, q
}
