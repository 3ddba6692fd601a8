package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/thouesa/thouesa-backend/pkg/enums"
)

type identityKey struct{}

type identity struct {
	userID string
	role   enums.UserRole
}

func identityFrom(ctx context.Context) identity {
	if ctx == nil {
		return identity{}
	}
	id, _ := ctx.Value(identityKey{}).(identity)
	return id
}

func withIdentity(ctx context.Context, id identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey{}, id)
}

// UserIDFromContext returns the authenticated user id, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string { return identityFrom(ctx).userID }

// RoleFromContext returns the authenticated role, or "" for anonymous requests.
func RoleFromContext(ctx context.Context) enums.UserRole { return identityFrom(ctx).role }

func WithUserID(ctx context.Context, userID string) context.Context {
	id := identityFrom(ctx)
	id.userID = userID
	return withIdentity(ctx, id)
}

func WithRole(ctx context.Context, role enums.UserRole) context.Context {
	id := identityFrom(ctx)
	id.role = role
	return withIdentity(ctx, id)
}

// WithIdentity sets both the user id and role.
func WithIdentity(ctx context.Context, userID uuid.UUID, role enums.UserRole) context.Context {
	return withIdentity(ctx, identity{userID: userID.String(), role: role})
}
