package domain

import "time"

// Notification is an append-only message shown to a provider, produced as a
// side effect of a booking. Retrieval is newest-first.
type Notification struct {
	ID        string
	UserID    string
	Content   string
	Read      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
