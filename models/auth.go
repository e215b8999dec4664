// ABOUTME: Auth request/response models shared across the session gateway
// ABOUTME: Defines the identity projection and the JSON contracts of the proxy endpoints

package models

// Identity is the read-only user projection fetched from the identity
// backend with an access token. It is authoritative for a single request
// only and is never cached past it.
type Identity struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	IsActive      bool   `json:"is_active"`
	Role          string `json:"role"`
}

// RoleAdmin is the role required for admin-classified routes.
const RoleAdmin = "admin"

// IsAdmin reports whether the identity may enter admin routes.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// LoginRequest carries credentials for POST /api/auth/login.
type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username"`
	Password        string `json:"password"`
}

// RegisterRequest carries the signup form for POST /api/auth/register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// AuthResponse is returned by login and register. Tokens never appear
// here; they travel only as httpOnly cookies.
type AuthResponse struct {
	User    Identity `json:"user"`
	Message string   `json:"message"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error body of every gateway endpoint.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// TokenPair is the identity backend's token grant response. Both tokens
// rotate together; a pair is stored or discarded atomically.
type TokenPair struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in,omitempty"`
}
