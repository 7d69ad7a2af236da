package dto

import "time"

// CreateAppointmentRequest payload for booking a slot.
type CreateAppointmentRequest struct {
	ProviderID string    `json:"provider_id"`
	Date       time.Time `json:"date"`
}

// AppointmentResponse is the public shape of an appointment. Past and
// Cancelable are derived from the current instant at render time.
type AppointmentResponse struct {
	ID          string        `json:"id"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	CanceledAt  *time.Time    `json:"canceled_at,omitempty"`
	Past        bool          `json:"past"`
	Cancelable  bool          `json:"cancelable"`
	Provider    *UserResponse `json:"provider,omitempty"`
	Requester   *UserResponse `json:"requester,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// SlotResponse is one entry of the availability grid.
type SlotResponse struct {
	Time      string    `json:"time"`
	Value     time.Time `json:"value"`
	Available bool      `json:"available"`
}
