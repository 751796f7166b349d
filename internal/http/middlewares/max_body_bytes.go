package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const reportRoutePrefix = "/api/reports/"

// BodyLimits caps request bodies. Report renders carry images and receipts, so
// routes under /api/reports/ get the larger Reports limit.
type BodyLimits struct {
	JSON    int64
	Reports int64
}

func (l BodyLimits) forRoute(route string) int64 {
	if strings.HasPrefix(route, reportRoutePrefix) && l.Reports > l.JSON {
		return l.Reports
	}
	return l.JSON
}

func MaxBodyBytes(limits BodyLimits) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		max := limits.forRoute(ctx.FullPath())
		if max <= 0 || ctx.Request.Body == nil {
			ctx.Next()
			return
		}

		if ctx.Request.ContentLength > max {
			abortError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
			return
		}
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}
