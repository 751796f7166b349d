package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/leolynk/leolynk/internal/access"
	"github.com/leolynk/leolynk/internal/auth"
	"github.com/leolynk/leolynk/internal/http/middlewares"
	"github.com/leolynk/leolynk/internal/repo/postgres"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

var testJWT = auth.NewManager("handlers-test-secret", 15*time.Minute, time.Hour)

var (
	clubA = uuid.NewString()
	clubB = uuid.NewString()

	memberA = access.Actor{UserID: uuid.NewString(), ClubID: clubA, Role: access.RoleMember}
	adminU  = access.Actor{UserID: uuid.NewString(), ClubID: clubA, Role: access.RoleAdmin}
)

// fakeLinks maps linked project, meeting and event ids to their club.
type fakeLinks map[string]string

func (f fakeLinks) LinkedClub(_ context.Context, _, id string) (string, error) {
	club, ok := f[id]
	if !ok {
		return "", postgres.ErrLinkNotFound
	}
	return club, nil
}

func newUUID() string {
	return uuid.NewString()
}

func tokenFor(t *testing.T, actor access.Actor) string {
	t.Helper()

	tok, err := testJWT.GenerateAccessToken(actor.UserID, actor.ClubID, actor.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

// setupRouter mounts one handler behind the real auth middleware.
func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.RequestID())

	r.Handle(method, path, middlewares.NewAuthMiddleware(testJWT).RequireAuth(), h)

	return r
}

func do(t *testing.T, r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v body=%s", err, w.Body.String())
	}
	return resp.Error.Code
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body: %v body=%s", err, w.Body.String())
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func newRequest(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
