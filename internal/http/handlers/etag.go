package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag answers club reads with a validator derived from the exact
// body sent. A GET or HEAD whose If-None-Match names it gets 304 and no body.
// Responses are private to the caller's token.
func RespondJSONWithETag(ctx *gin.Context, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logError(ctx, "handlers.etag", err)
		RespondInternal(ctx, "Could not encode response")
		return
	}

	tag := bodyETag(body)
	h := ctx.Writer.Header()
	h.Set("ETag", tag)
	h.Set("Cache-Control", "private, no-cache")
	h.Add("Vary", "Authorization")

	if conditionalRead(ctx.Request.Method) && noneMatchHits(ctx.GetHeader("If-None-Match"), tag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

func bodyETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func conditionalRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// noneMatchHits uses weak comparison, so W/"x" matches "x".
func noneMatchHits(header, tag string) bool {
	header = strings.TrimSpace(header)
	switch header {
	case "":
		return false
	case "*":
		return true
	}

	want := opaqueTag(tag)
	for _, candidate := range strings.Split(header, ",") {
		if opaqueTag(candidate) == want {
			return true
		}
	}
	return false
}

func opaqueTag(tag string) string {
	return strings.TrimPrefix(strings.TrimSpace(tag), "W/")
}
