// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Role values used across the application.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// UserContext contains the authenticated user attached to a request.
type UserContext struct {
	UserID   string
	Username string
	Name     string // display name, used as the default movement operator
	Role     string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context, or nil.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns the user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetOperatorName returns the display name of the current user,
// falling back to the username when no display name is set.
func GetOperatorName(ctx context.Context) string {
	u := GetUser(ctx)
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// HasRole checks whether the current user has the given role.
// Admins implicitly satisfy every role check.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return u.Role == role || u.Role == RoleAdmin
}
