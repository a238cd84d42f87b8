package api

import (
	"context"

	"github.com/pomnim/backend/models"
)

type keyType string

const actorKey keyType = "actor"

// ctxWithActor attaches the resolved acting identity to the request context.
func ctxWithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// actorFromCtx returns the acting identity, or nil for anonymous requests.
// Every handler passes the result down explicitly; nothing below the API
// layer reads the context for identity.
func actorFromCtx(ctx context.Context) *models.Actor {
	if actor, ok := ctx.Value(actorKey).(*models.Actor); ok {
		return actor
	}
	return nil
}
