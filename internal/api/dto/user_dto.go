package dto

import "time"

// UserRegisterRequest payload for new accounts.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Provider bool   `json:"provider"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdateRequest payload for profile changes.
type UserUpdateRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	OldPassword string  `json:"old_password"`
	Password    string  `json:"password"`
	AvatarID    *string `json:"avatar_id"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public shape of an account.
type UserResponse struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Provider bool          `json:"provider"`
	Avatar   *FileResponse `json:"avatar,omitempty"`
}
