package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job kinds understood by the notification worker.
const (
	JobBookingNotification = "booking_notification"
	JobCancellationMail    = "cancellation_mail"
)

// Job is one unit of asynchronous work handed off by the request path.
type Job struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewJob wraps a payload into a job descriptor.
func NewJob(kind string, payload any) (Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Job{}, err
	}
	return Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		EnqueuedAt: time.Now(),
		Payload:    raw,
	}, nil
}

// BookingNotificationPayload carries the data needed to notify a provider of
// a new booking.
type BookingNotificationPayload struct {
	ProviderID    string    `json:"provider_id"`
	RequesterName string    `json:"requester_name"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}

// CancellationMailPayload carries the appointment, provider and requester
// details for the cancellation notice.
type CancellationMailPayload struct {
	AppointmentID string    `json:"appointment_id"`
	ProviderName  string    `json:"provider_name"`
	ProviderEmail string    `json:"provider_email"`
	RequesterName string    `json:"requester_name"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	CanceledAt    time.Time `json:"canceled_at"`
}
