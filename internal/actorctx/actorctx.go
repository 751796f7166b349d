package actorctx

import (
	"context"

	"github.com/leolynk/leolynk/internal/access"
)

type ctxKey struct{}

func WithActor(ctx context.Context, actor access.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

func From(ctx context.Context) (access.Actor, bool) {
	v, ok := ctx.Value(ctxKey{}).(access.Actor)

	return v, ok && v.UserID != ""
}
