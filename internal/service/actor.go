package service

import (
	"context"

	"github.com/shopfloor/api/internal/model"
)

// SystemActor is used when no caller identity is attached to a request.
const SystemActor = "System"

// Actor identifies the caller for audit attribution.
type Actor struct {
	ID   string
	Name string
	Role model.Role
}

type actorKey struct{}

// WithActor attaches the caller identity to ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the caller identity on ctx, falling back to the
// system actor.
func ActorFrom(ctx context.Context) Actor {
	if ctx != nil {
		if a, ok := ctx.Value(actorKey{}).(Actor); ok && a.Name != "" {
			return a
		}
	}
	return Actor{Name: SystemActor}
}
