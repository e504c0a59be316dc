// Package session carries the signed-in user through the request context.
// Populating it is the job of the session layer in front of the handlers.
package session

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey contextKey = "session_user"

// User is the signed-in user.
type User struct {
	ID               string
	Login            string
	StripeCustomerID string
}

// WithUser adds the signed-in user to the context.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFrom retrieves the signed-in user from the context.
// Returns nil if nobody is signed in.
func UserFrom(ctx context.Context) *User {
	user, ok := ctx.Value(userContextKey).(*User)
	if !ok {
		return nil
	}
	return user
}
