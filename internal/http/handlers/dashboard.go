package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leolynk/leolynk/internal/dashboard"
)

type DashboardLoader interface {
	Load(ctx context.Context, clubID *string, w dashboard.Window) (dashboard.Input, error)
}

type DashboardHandler struct {
	loader DashboardLoader
	now    func() time.Time
}

func NewDashboardHandler(loader DashboardLoader) *DashboardHandler {
	return &DashboardHandler{loader: loader, now: time.Now}
}

// GetDashboard summarizes the caller's rows for one Leoistic year. Nothing is cached.
func (h *DashboardHandler) GetDashboard(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	now := h.now().UTC()
	year := dashboard.LeoisticYear(now)
	if raw := strings.TrimSpace(ctx.Query("year")); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1900 || y > 9999 {
			RespondBadRequest(ctx, "year must be a four digit year", gin.H{"field": "year"})
			return
		}
		year = y
	}

	params, ok := parseListParams(ctx, actor)
	if !ok {
		return
	}

	w := dashboard.YearWindow(year)

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	in, err := h.loader.Load(cctx, params.ClubID, w)
	if err != nil {
		logError(ctx, "dashboard.load", err, "year", year)
		RespondInternal(ctx, "Could not load dashboard")
		return
	}

	ctx.JSON(http.StatusOK, dashboard.Summarize(w, in, now))
}
