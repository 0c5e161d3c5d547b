package models

import "time"

type LoginRequest struct {
    Username string `json:"username"`
    Password string `json:"password"`
}

type AuthResponse struct {
    AccessToken string    `json:"access_token"`
    ExpiresAt   time.Time `json:"expires_at"`
    Username    string    `json:"username"`
    IsAdmin     bool      `json:"is_admin"`
}

// AuthUser is the authenticated cashier placed on the request context.
type AuthUser struct {
    Username string
    Email    string
    IsAdmin  bool
}
