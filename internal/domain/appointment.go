package domain

import "time"

// CancellationNotice is the minimum advance notice required to cancel an
// appointment, measured against its scheduled instant.
const CancellationNotice = 2 * time.Hour

// Appointment is one booked hourly slot between a requester and a provider.
// ScheduledAt is always normalized to the top of the hour. A nil CanceledAt
// means the appointment is active; cancellation is one-way.
type Appointment struct {
	ID          string
	RequesterID string
	ProviderID  string
	ScheduledAt time.Time
	CanceledAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Display data joined on read; not stored on the appointment row.
	Requester *User
	Provider  *User
}

// Active reports whether the appointment has not been canceled.
func (a *Appointment) Active() bool {
	return a.CanceledAt == nil
}

// Past reports whether the scheduled instant is before now.
func (a *Appointment) Past(now time.Time) bool {
	return a.ScheduledAt.Before(now)
}

// Cancelable reports whether now is still before the cancellation-notice
// cutoff (scheduled instant minus CancellationNotice).
func (a *Appointment) Cancelable(now time.Time) bool {
	return now.Before(a.ScheduledAt.Add(-CancellationNotice))
}
