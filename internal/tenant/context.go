package tenant

import (
	"context"
	"errors"
)

// ErrMissingTenant means a tenant-scoped operation was attempted before a
// tenant was established on the context. It is an integration fault, not a
// user error, and is never guessed or defaulted around.
var ErrMissingTenant = errors.New("no tenant established on request context")

type contextKey string

const (
	tenantKey contextKey = "tenant-id"
	actorKey  contextKey = "actor"
)

// Actor is the identity resolved by the upstream auth layer. The core trusts
// it and never re-derives it.
type Actor struct {
	MemberID string
	Role     string
}

// WithTenant stores the active tenant id on the context.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

// FromContext retrieves the tenant id stored by WithTenant.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tenantKey).(string)
	return id, ok && id != ""
}

// ID returns the active tenant id or ErrMissingTenant. Scoped repositories
// call this before touching storage.
func ID(ctx context.Context) (string, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return "", ErrMissingTenant
	}
	return id, nil
}

// WithActor stores the resolved member identity on the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom retrieves the identity stored by WithActor.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok && a.MemberID != ""
}
