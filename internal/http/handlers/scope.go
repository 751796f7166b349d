package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leolynk/leolynk/internal/access"
	"github.com/leolynk/leolynk/internal/http/middlewares"
	"github.com/leolynk/leolynk/internal/repo/postgres"
	"github.com/leolynk/leolynk/internal/utils"
)

const dbTimeout = 3 * time.Second

// requestCtx bounds repository calls while keeping the request's trace and actor.
func requestCtx(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), dbTimeout)
}

func actorFrom(ctx *gin.Context) (access.Actor, bool) {
	actor, ok := middlewares.ActorFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity")
		return access.Actor{}, false
	}
	return actor, true
}

func pathID(ctx *gin.Context, what string) (string, bool) {
	id := ctx.Param("id")
	if !utils.IsUUID(id) {
		RespondInvalidID(ctx, what+" id must be a valid UUID")
		return "", false
	}
	return id, true
}

// writeClub picks the club a new row belongs to and writes the error response
// when the actor may not create it there.
func writeClub(ctx *gin.Context, actor access.Actor, requested string) (string, bool) {
	clubID, err := actor.ResolveClubID(requested)
	switch {
	case err == nil:
		return clubID, true
	case errors.Is(err, access.ErrForbidden):
		RespondForbidden(ctx, "You cannot create records for another club")
	case errors.Is(err, access.ErrClubRequired):
		RespondBadRequest(ctx, "clubId is required", gin.H{"field": "clubId"})
	default:
		RespondInternal(ctx, "Could not resolve club")
	}
	return "", false
}

// loadAuthorized fetches a club-owned row and enforces access: 404 when it does
// not exist, 403 when it belongs to a club the actor cannot see.
func loadAuthorized[T any](
	ctx *gin.Context,
	actor access.Actor,
	what string,
	load func(context.Context, string) (T, error),
	clubOf func(T) string,
	notFound error,
) (T, bool) {
	var zero T

	id, ok := pathID(ctx, what)
	if !ok {
		return zero, false
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	row, err := load(cctx, id)
	if err != nil {
		if errors.Is(err, notFound) {
			RespondNotFound(ctx, what+" not found")
			return zero, false
		}
		logError(ctx, "handlers.load", err, "what", what, "id", id)
		RespondInternal(ctx, "Could not fetch "+what)
		return zero, false
	}

	if !actor.CanAccess(clubOf(row)) {
		RespondForbidden(ctx, "You do not have access to this "+what)
		return zero, false
	}

	return row, true
}

// LinkResolver reports the club owning a linked project, meeting or event.
type LinkResolver interface {
	LinkedClub(ctx context.Context, kind, id string) (string, error)
}

// checkLink verifies that the row a record points at lives in clubID. Rows the
// actor cannot see answer exactly like missing ones.
func checkLink(ctx *gin.Context, links LinkResolver, actor access.Actor, clubID, kind, id, field string) bool {
	if id == "" {
		return true
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	linked, err := links.LinkedClub(cctx, kind, id)
	switch {
	case errors.Is(err, postgres.ErrLinkNotFound), err == nil && !actor.CanAccess(linked):
		RespondBadRequest(ctx, "Unknown "+kind, gin.H{"field": field})
		return false
	case err != nil:
		logError(ctx, "handlers.link", err, "kind", kind, "id", id)
		RespondInternal(ctx, "Could not check "+kind)
		return false
	case linked != clubID:
		RespondBadRequest(ctx, "The "+kind+" belongs to another club", gin.H{"field": field})
		return false
	}
	return true
}

func logError(ctx *gin.Context, msg string, err error, args ...any) {
	slog.Default().ErrorContext(ctx.Request.Context(), msg, append([]any{"err", err}, args...)...)
}
