package auth

import "context"

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ActorContextKey is the key for storing the acting user's ID in a
	// request context.
	ActorContextKey ContextKey = "actorID"
)

// WithActorID returns a context carrying the acting user's ID.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorContextKey, actorID)
}

// ActorID extracts the acting user's ID from a request context. Returns ""
// when the request carried no valid token.
//
// The actor ID is threaded explicitly into every workflow operation by the
// handlers; services never read it ambiently.
func ActorID(ctx context.Context) string {
	actorID, ok := ctx.Value(ActorContextKey).(string)
	if !ok {
		return ""
	}
	return actorID
}
