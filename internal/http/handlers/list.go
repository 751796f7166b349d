package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leolynk/leolynk/internal/access"
	"github.com/leolynk/leolynk/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// listParams are the query parameters every list endpoint shares.
type listParams struct {
	ClubID    *string
	From      *time.Time
	To        *time.Time
	Limit     int
	AfterDate time.Time
	AfterID   string
}

func parseListParams(ctx *gin.Context, actor access.Actor) (listParams, bool) {
	var p listParams

	clubID, err := actor.ScopeClubID(strings.TrimSpace(ctx.Query("clubId")))
	if err != nil {
		if errors.Is(err, access.ErrForbidden) {
			RespondForbidden(ctx, "You do not have access to this club")
			return p, false
		}
		RespondInternal(ctx, "Could not resolve club")
		return p, false
	}
	if clubID != nil && *clubID != "" && !utils.IsUUID(*clubID) {
		RespondBadRequest(ctx, "clubId must be a valid UUID", gin.H{"field": "clubId"})
		return p, false
	}
	p.ClubID = clubID

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondBadRequest(ctx, "limit must be a number", gin.H{"field": "limit"})
			return p, false
		}
		limit = n
	}
	p.Limit = utils.ClampLimit(limit, defaultPageSize, maxPageSize)

	if raw := strings.TrimSpace(ctx.Query("cursor")); raw != "" {
		c, err := utils.DecodeCursor(raw)
		if err != nil {
			RespondBadRequest(ctx, "Invalid cursor", gin.H{"field": "cursor"})
			return p, false
		}
		p.AfterDate, p.AfterID = c.At, c.ID
	}

	var ok bool
	if p.From, ok = queryTime(ctx, "from"); !ok {
		return p, false
	}
	if p.To, ok = queryTime(ctx, "to"); !ok {
		return p, false
	}
	return p, true
}

// queryTime accepts a date (2025-07-01) or an RFC3339 timestamp.
func queryTime(ctx *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	RespondBadRequest(ctx, key+" must be a date (YYYY-MM-DD) or RFC3339 timestamp", gin.H{"field": key})
	return nil, false
}

func queryString(ctx *gin.Context, key string) *string {
	v := strings.TrimSpace(ctx.Query(key))
	if v == "" {
		return nil
	}
	return &v
}

// queryOneOf reads an optional enum filter.
func queryOneOf(ctx *gin.Context, key string, allowed ...string) (*string, bool) {
	v := queryString(ctx, key)
	if v == nil {
		return nil, true
	}
	for _, a := range allowed {
		if *v == a {
			return v, true
		}
	}
	RespondBadRequest(ctx, key+" must be one of "+strings.Join(allowed, ", "), gin.H{"field": key})
	return nil, false
}

func queryUUID(ctx *gin.Context, key string) (*string, bool) {
	v := queryString(ctx, key)
	if v != nil && !utils.IsUUID(*v) {
		RespondBadRequest(ctx, key+" must be a valid UUID", gin.H{"field": key})
		return nil, false
	}
	return v, true
}

func queryBool(ctx *gin.Context, key string) (*bool, bool) {
	v := queryString(ctx, key)
	if v == nil {
		return nil, true
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		RespondBadRequest(ctx, key+" must be true or false", gin.H{"field": key})
		return nil, false
	}
	return &b, true
}

func respondPage[T any](ctx *gin.Context, items []T, next *string, hasMore bool) {
	if items == nil {
		items = []T{}
	}
	ctx.JSON(http.StatusOK, gin.H{
		"items":      items,
		"count":      len(items),
		"nextCursor": next,
		"hasMore":    hasMore,
	})
}
