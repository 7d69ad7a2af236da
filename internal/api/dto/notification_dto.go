package dto

import "time"

// NotificationResponse is the public shape of a provider notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
