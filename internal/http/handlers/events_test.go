package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/leolynk/leolynk/internal/domain/event"
	"github.com/leolynk/leolynk/internal/http/handlers"
)

type fakeEventsRepo struct {
	createFn func(ctx context.Context, e event.Event) (event.Event, error)
	getFn    func(ctx context.Context, id string) (event.Event, error)
	listFn   func(ctx context.Context, f event.ListEventsFilter) ([]event.Event, *string, bool, error)
	updateFn func(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeEventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	return e, nil
}

func (f *fakeEventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return event.Event{}, event.ErrNotFound
}

func (f *fakeEventsRepo) List(ctx context.Context, filter event.ListEventsFilter) ([]event.Event, *string, bool, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, nil, false, nil
}

func (f *fakeEventsRepo) Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return event.Event{}, nil
}

func (f *fakeEventsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

// Create Event tests

func TestCreateEventHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockCreate     func(ctx context.Context, e event.Event) (event.Event, error)
		expectedStatus int
	}{
		{
			name: "valid request",
			body: `{"title":"Beach cleanup","startDate":"2026-03-01T09:00:00Z","goals":["500kg"],"highlight":true,"mood":"🌊"}`,
			mockCreate: func(_ context.Context, e event.Event) (event.Event, error) {
				if e.Status != event.StatusPlanned || !e.Highlight || string(e.Goals) != `["500kg"]` {
					t.Fatalf("unexpected event %+v", e)
				}
				return e, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "ends before it starts",
			body:           `{"title":"Beach cleanup","startDate":"2026-03-01T09:00:00Z","endDate":"2026-02-28T09:00:00Z"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown status",
			body:           `{"title":"Beach cleanup","startDate":"2026-03-01T09:00:00Z","status":"postponed"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			body:           `{"title":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeEventsRepo{createFn: tt.mockCreate}
			if repo.createFn == nil {
				repo.createFn = func(context.Context, event.Event) (event.Event, error) {
					t.Fatalf("repository must not be called")
					return event.Event{}, nil
				}
			}
			h := handlers.NewEventsHandler(repo)
			r := setupRouter(http.MethodPost, "/api/events", h.CreateEvent)

			w := do(t, r, http.MethodPost, "/api/events", tt.body, tokenFor(t, memberA))
			if w.Code != tt.expectedStatus {
				t.Fatalf("status: got %d want %d body=%s", w.Code, tt.expectedStatus, w.Body.String())
			}
		})
	}
}

func TestUpdateEvent_Window(t *testing.T) {
	id := newUUID()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"end before stored start", `{"endDate":"2026-02-01T00:00:00Z"}`, http.StatusBadRequest},
		{"clear end", `{"endDate":""}`, http.StatusOK},
		{"move start and end together", `{"startDate":"2026-01-01T00:00:00Z","endDate":"2026-02-01T00:00:00Z"}`, http.StatusOK},
		{"malformed end", `{"endDate":"tomorrow"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeEventsRepo{
				getFn: func(context.Context, string) (event.Event, error) {
					return event.Event{ID: id, ClubID: clubA, Title: "Gala", StartDate: start}, nil
				},
				updateFn: func(context.Context, string, event.UpdateEventRequest) (event.Event, error) {
					return event.Event{ID: id, ClubID: clubA, Title: "Gala", StartDate: start}, nil
				},
			}
			h := handlers.NewEventsHandler(repo)
			r := setupRouter(http.MethodPut, "/api/events/:id", h.UpdateEvent)

			w := do(t, r, http.MethodPut, "/api/events/"+id, tt.body, tokenFor(t, memberA))
			if w.Code != tt.wantStatus {
				t.Fatalf("status: got %d want %d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestListEvents_Filters(t *testing.T) {
	var got event.ListEventsFilter
	repo := &fakeEventsRepo{
		listFn: func(_ context.Context, f event.ListEventsFilter) ([]event.Event, *string, bool, error) {
			got = f
			return nil, nil, false, nil
		},
	}
	h := handlers.NewEventsHandler(repo)
	r := setupRouter(http.MethodGet, "/api/events", h.ListEvents)

	w := do(t, r, http.MethodGet, "/api/events?highlight=true&q=beach&from=2025-07-01&to=2026-06-30T23:59:59Z", "", tokenFor(t, memberA))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}
	if got.Highlight == nil || !*got.Highlight || got.Query == nil || *got.Query != "beach" {
		t.Fatalf("unexpected filter %+v", got)
	}
	if got.From == nil || !got.From.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) || got.To == nil {
		t.Fatalf("date range not parsed: %+v", got)
	}

	for _, bad := range []string{"highlight=maybe", "from=01/07/2025", "status=done"} {
		w := do(t, r, http.MethodGet, "/api/events?"+bad, "", tokenFor(t, memberA))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: got %d want 400", bad, w.Code)
		}
	}
}

func TestEventHandlers_RequireToken(t *testing.T) {
	called := false
	repo := &fakeEventsRepo{
		getFn: func(context.Context, string) (event.Event, error) {
			called = true
			return event.Event{}, nil
		},
		deleteFn: func(context.Context, string) error {
			called = true
			return nil
		},
	}
	h := handlers.NewEventsHandler(repo)

	for _, tc := range []struct {
		name   string
		method string
		header string
	}{
		{"no header", http.MethodDelete, ""},
		{"wrong scheme", http.MethodDelete, "Basic abc"},
		{"garbage token", http.MethodGet, "Bearer not-a-jwt"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouter(tc.method, "/api/events/:id", h.DeleteEvent)
			if tc.method == http.MethodGet {
				r = setupRouter(tc.method, "/api/events/:id", h.GetEventByID)
			}

			req := newRequest(tc.method, "/api/events/"+newUUID(), "")
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := serve(r, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d want 401", w.Code)
			}
		})
	}

	if called {
		t.Fatalf("repository touched without a valid token")
	}
}
