package domain

import "time"

// User is the domain model for accounts. A user flagged as Provider offers
// bookable time slots; any user may book appointments with a provider.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Provider     bool
	AvatarID     *string
	Avatar       *File
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
