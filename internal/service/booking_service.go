package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/queue"
	"github.com/spec-kit/booking-service/internal/repository"
	"github.com/spec-kit/booking-service/internal/scheduling"
	apperrors "github.com/spec-kit/booking-service/pkg/util"
)

// BookingService coordinates appointment booking, cancellation, availability
// and provider schedules.
type BookingService struct {
	users        repository.UserRepository
	appointments repository.AppointmentRepository
	queue        queue.Queue
	logger       *zap.Logger
	now          func() time.Time
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	UserRepo        repository.UserRepository
	AppointmentRepo repository.AppointmentRepository
	Queue           queue.Queue
	Logger          *zap.Logger
	Now             func() time.Time
}

// NewBookingService constructs the service. Now defaults to time.Now.
func NewBookingService(deps BookingDependencies) *BookingService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		users:        deps.UserRepo,
		appointments: deps.AppointmentRepo,
		queue:        deps.Queue,
		logger:       logger,
		now:          now,
	}
}

// CreateAppointment validates and books a slot with a provider, then
// enqueues a provider notification.
func (s *BookingService) CreateAppointment(ctx context.Context, requesterID, providerID string, date time.Time) (*domain.Appointment, error) {
	if providerID == "" || date.IsZero() {
		return nil, apperrors.NewValidationError("provider_id and date required", nil)
	}
	if providerID == requesterID {
		return nil, apperrors.NewForbidden("you can not create an appointment with yourself")
	}

	provider, err := s.users.GetProvider(ctx, providerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("provider", map[string]any{"provider_id": providerID})
		}
		return nil, err
	}

	scheduledAt := scheduling.StartOfHour(date)
	if !scheduledAt.After(s.now()) {
		return nil, apperrors.NewValidationError("past dates are not permitted", nil)
	}

	// Resolve the requester before persisting anything; a lookup failure
	// here must not leave a booked row behind.
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	taken, err := s.appointments.ExistsActiveAt(ctx, provider.ID, scheduledAt)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflict("appointment slot is not available", slotDetails(provider.ID, scheduledAt))
	}

	appt := &domain.Appointment{
		RequesterID: requesterID,
		ProviderID:  provider.ID,
		ScheduledAt: scheduledAt,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		// The partial unique index decides races the pre-check missed.
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("appointment slot is not available", slotDetails(provider.ID, scheduledAt))
		}
		return nil, err
	}
	appt.Provider = provider
	appt.Requester = requester

	s.enqueue(ctx, queue.JobBookingNotification, queue.BookingNotificationPayload{
		ProviderID:    provider.ID,
		RequesterName: requester.Name,
		ScheduledAt:   scheduledAt,
	})
	return appt, nil
}

// CancelAppointment marks an appointment canceled when the caller owns it
// and the minimum-notice window has not elapsed, then enqueues the
// cancellation notice.
func (s *BookingService) CancelAppointment(ctx context.Context, requesterID, appointmentID string) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("appointment", map[string]any{"appointment_id": appointmentID})
		}
		return nil, err
	}

	if appt.RequesterID != requesterID {
		return nil, apperrors.NewForbidden("you do not have permission to cancel this appointment")
	}
	if !appt.Active() {
		return nil, apperrors.NewConflict("appointment already canceled", nil)
	}

	now := s.now()
	if !appt.Cancelable(now) {
		return nil, apperrors.NewPolicyViolation("appointments can only be canceled 2 hours in advance", map[string]any{
			"scheduled_at": appt.ScheduledAt,
		})
	}

	appt.CanceledAt = &now
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}

	s.enqueue(ctx, queue.JobCancellationMail, queue.CancellationMailPayload{
		AppointmentID: appt.ID,
		ProviderName:  appt.Provider.Name,
		ProviderEmail: appt.Provider.Email,
		RequesterName: appt.Requester.Name,
		ScheduledAt:   appt.ScheduledAt,
		CanceledAt:    now,
	})
	return appt, nil
}

// Availability computes the hourly grid for a provider's day.
func (s *BookingService) Availability(ctx context.Context, providerID string, day time.Time) ([]scheduling.SlotAvailability, error) {
	if _, err := s.users.GetProvider(ctx, providerID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("provider", map[string]any{"provider_id": providerID})
		}
		return nil, err
	}

	appts, err := s.appointments.ListForProviderBetween(ctx, providerID, scheduling.StartOfDay(day), scheduling.EndOfDay(day))
	if err != nil {
		return nil, err
	}
	booked := make([]time.Time, 0, len(appts))
	for _, appt := range appts {
		booked = append(booked, appt.ScheduledAt)
	}
	return scheduling.Availability(scheduling.DaySlots(day), booked, s.now()), nil
}

// ProviderSchedule lists a provider's active appointments for one day. A
// zero day means the current day. Callers that are not providers are
// rejected.
func (s *BookingService) ProviderSchedule(ctx context.Context, providerID string, day time.Time) ([]domain.Appointment, error) {
	if day.IsZero() {
		day = s.now()
	}
	if _, err := s.users.GetProvider(ctx, providerID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewForbidden("user is not a provider")
		}
		return nil, err
	}
	return s.appointments.ListForProviderBetween(ctx, providerID, scheduling.StartOfDay(day), scheduling.EndOfDay(day))
}

// ListRequesterAppointments returns the caller's active appointments,
// ordered by date, paginated 20 per page.
func (s *BookingService) ListRequesterAppointments(ctx context.Context, requesterID string, page int) ([]domain.Appointment, error) {
	if page <= 0 {
		page = 1
	}
	const perPage = 20
	return s.appointments.ListByRequester(ctx, requesterID, perPage, (page-1)*perPage)
}

// ListProviders returns all users offering services.
func (s *BookingService) ListProviders(ctx context.Context) ([]domain.User, error) {
	return s.users.ListProviders(ctx)
}

// Now exposes the service clock, used by handlers for derived flags.
func (s *BookingService) Now() time.Time {
	return s.now()
}

// enqueue is fire-and-forget: a dispatch failure is logged and never
// surfaced to the caller, and booked state is never rolled back for it.
func (s *BookingService) enqueue(ctx context.Context, kind string, payload any) {
	if s.queue == nil {
		return
	}
	job, err := queue.NewJob(kind, payload)
	if err != nil {
		s.logger.Error("build job failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Error("enqueue failed", zap.String("kind", kind), zap.Error(err))
	}
}

func slotDetails(providerID string, at time.Time) map[string]any {
	return map[string]any{"provider_id": providerID, "scheduled_at": at}
}
