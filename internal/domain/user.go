package domain

import (
	"errors"
	"time"
)

var (
	ErrNoToken        = errors.New("no authentication token")
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// User is the account record returned by the auth endpoints
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// LoginCredentials is the body of POST /auth/login
type LoginCredentials struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username    string  `json:"username" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required"`
	DisplayName *string `json:"displayName,omitempty"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   string `json:"expiresAt"`
	User        *User  `json:"user,omitempty"`
}

// Expiry parses ExpiresAt. The zero time is returned when the server sent
// nothing usable.
func (r *AuthResponse) Expiry() time.Time {
	if r == nil || r.ExpiresAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, r.ExpiresAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
