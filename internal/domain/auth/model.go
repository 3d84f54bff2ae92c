// Package auth provides authentication domain logic: user accounts,
// password verification and JWT/refresh-token session management.
package auth

import (
	"context"
	"time"

	"stockbook/internal/core/apperror"
	appctx "stockbook/internal/core/context"
	"stockbook/internal/core/id"
)

// User represents a system account that can sign in and post movements.
type User struct {
	ID           id.ID      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	DisplayName  string     `db:"display_name" json:"displayName,omitempty"`
	Role         string     `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLogins int        `db:"failed_logins" json:"-"`
	LockedUntil  *time.Time `db:"locked_until" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
	Version      int        `db:"version" json:"version"`
}

// NewUser creates a new active user with the given role.
func NewUser(username, passwordHash, role string) *User {
	now := time.Now()
	return &User{
		ID:           id.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	return role == appctx.RoleAdmin || role == appctx.RoleOperator
}

// Validate validates user data.
func (u *User) Validate(ctx context.Context) error {
	if u.Username == "" {
		return apperror.NewValidation("username is required").WithDetail("field", "username")
	}
	if !ValidRole(u.Role) {
		return apperror.NewValidation("unknown role").WithDetail("field", "role").WithDetail("role", u.Role)
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == appctx.RoleAdmin
}

// Label returns the name shown in journals and logs, falling back to the
// username when no display name is set.
func (u *User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// IsLocked returns true if the account is still inside a lockout window.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// CanLogin checks if the user may authenticate right now.
func (u *User) CanLogin() error {
	if !u.Active {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked() {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments the failed-attempt counter and locks the
// account once maxAttempts is reached.
func (u *User) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLogins++
	if u.FailedLogins >= maxAttempts {
		lockUntil := time.Now().Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets lockout state and stamps the login time.
func (u *User) RecordSuccessfulLogin() {
	u.FailedLogins = 0
	u.LockedUntil = nil
	now := time.Now()
	u.LastLoginAt = &now
}

// RefreshToken is the stored, hashed form of an issued refresh token.
// The raw token is only ever returned to the client.
type RefreshToken struct {
	ID            id.ID      `db:"id"`
	UserID        id.ID      `db:"user_id"`
	TokenHash     string     `db:"token_hash"`
	ExpiresAt     time.Time  `db:"expires_at"`
	CreatedAt     time.Time  `db:"created_at"`
	RevokedAt     *time.Time `db:"revoked_at"`
	RevokedReason string     `db:"revoked_reason"`
	UserAgent     string     `db:"user_agent"`
	IPAddress     string     `db:"ip_address"`
}

// IsValid checks if the refresh token can still be exchanged.
func (t *RefreshToken) IsValid() bool {
	if t.RevokedAt != nil {
		return false
	}
	return time.Now().Before(t.ExpiresAt)
}

// TokenPair contains the access and refresh tokens returned on login.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// Credentials for login. UserAgent and IPAddress are filled by the HTTP
// layer, not by the client payload.
type Credentials struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

// RegisterRequest for creating a new account.
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
	Role        string `json:"role,omitempty"`
}

// UserFilter for listing users.
type UserFilter struct {
	Search string
	Active *bool
	Role   string
	Limit  int
	Offset int
}
