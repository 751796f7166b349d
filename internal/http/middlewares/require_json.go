package middlewares

import (
	"mime"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON guards the CRUD write routes.
func RequireJSON() gin.HandlerFunc {
	return RequireMediaType("application/json")
}

// RequireMediaType rejects writes whose Content-Type is not one of types.
// Parameters such as charset or the multipart boundary are ignored.
func RequireMediaType(types ...string) gin.HandlerFunc {
	allowed := strings.Join(types, " or ")

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			mt, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
			if err != nil || !slices.Contains(types, strings.ToLower(mt)) {
				abortError(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be "+allowed)
				return
			}
		}
		c.Next()
	}
}
