package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const corsPreflightMaxAge = 10 * time.Minute

// CORSMiddleware lets the configured web front ends call the API with the
// refresh cookie. Preflights from any other origin are refused.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}
	maxAge := strconv.Itoa(int(corsPreflightMaxAge.Seconds()))

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		_, ok := allowed[origin]

		if origin != "" {
			ctx.Writer.Header().Add("Vary", "Origin")
		}
		if ok {
			ctx.Header("Access-Control-Allow-Origin", origin)
			ctx.Header("Access-Control-Allow-Credentials", "true")
			// report downloads read the filename from Content-Disposition
			ctx.Header("Access-Control-Expose-Headers", "Content-Disposition,ETag,X-Request-Id")
		}

		if ctx.Request.Method != http.MethodOptions {
			ctx.Next()
			return
		}

		if origin != "" && !ok {
			abortError(ctx, http.StatusForbidden, "origin_not_allowed", "Origin is not allowed")
			return
		}
		if ok {
			ctx.Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			ctx.Header("Access-Control-Allow-Headers", "Authorization,Content-Type,If-None-Match,X-Request-Id")
			ctx.Header("Access-Control-Max-Age", maxAge)
		}
		ctx.AbortWithStatus(http.StatusNoContent)
	}
}
