package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/leolynk/leolynk/internal/access"
	"github.com/leolynk/leolynk/internal/domain/finance"
	"github.com/leolynk/leolynk/internal/http/handlers"
)

type fakeFinanceRepo struct {
	createFn func(ctx context.Context, rec finance.Record) (finance.Record, error)
	getFn    func(ctx context.Context, id string) (finance.Record, error)
	listFn   func(ctx context.Context, f finance.ListRecordsFilter) ([]finance.Record, *string, bool, error)
	updateFn func(ctx context.Context, id string, req finance.UpdateRecordRequest) (finance.Record, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeFinanceRepo) Create(ctx context.Context, rec finance.Record) (finance.Record, error) {
	if f.createFn != nil {
		return f.createFn(ctx, rec)
	}
	return rec, nil
}

func (f *fakeFinanceRepo) GetByID(ctx context.Context, id string) (finance.Record, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return finance.Record{}, finance.ErrNotFound
}

func (f *fakeFinanceRepo) List(ctx context.Context, filter finance.ListRecordsFilter) ([]finance.Record, *string, bool, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, nil, false, nil
}

func (f *fakeFinanceRepo) Update(ctx context.Context, id string, req finance.UpdateRecordRequest) (finance.Record, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return finance.Record{}, nil
}

func (f *fakeFinanceRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

// memoryFinance keeps created records so a create can be read back.
func memoryFinance() *fakeFinanceRepo {
	rows := map[string]finance.Record{}
	return &fakeFinanceRepo{
		createFn: func(_ context.Context, rec finance.Record) (finance.Record, error) {
			rows[rec.ID] = rec
			return rec, nil
		},
		getFn: func(_ context.Context, id string) (finance.Record, error) {
			rec, ok := rows[id]
			if !ok {
				return finance.Record{}, finance.ErrNotFound
			}
			return rec, nil
		},
	}
}

func TestFinanceRecord_RoundTrip(t *testing.T) {
	h := handlers.NewFinanceHandler(memoryFinance(), fakeLinks{})

	create := setupRouter(http.MethodPost, "/api/financial-records", h.CreateRecord)
	get := setupRouter(http.MethodGet, "/api/financial-records/:id", h.GetRecordByID)

	token := tokenFor(t, memberA)
	w := do(t, create, http.MethodPost, "/api/financial-records",
		`{"type":"income","amount":123.45,"category":"Dues","date":"2025-08-01T00:00:00Z"}`, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: got %d body=%s", w.Code, w.Body.String())
	}
	created := decode[finance.Record](t, w)

	w = do(t, get, http.MethodGet, "/api/financial-records/"+created.ID, "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("get: got %d body=%s", w.Code, w.Body.String())
	}
	got := decode[finance.Record](t, w)

	if got.Amount != 123.45 || got.Type != finance.TypeIncome {
		t.Fatalf("round trip lost data: %+v", got)
	}
	if got.Status != finance.StatusCompleted || got.ClubID != clubA || got.ProjectID != nil {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestCreateRecord_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown type", `{"type":"gift","amount":10,"date":"2025-08-01T00:00:00Z"}`},
		{"zero amount", `{"type":"income","amount":0,"date":"2025-08-01T00:00:00Z"}`},
		{"bad project id", `{"type":"income","amount":5,"date":"2025-08-01T00:00:00Z","projectId":"p1"}`},
		{"missing date", `{"type":"expense","amount":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeFinanceRepo{
				createFn: func(context.Context, finance.Record) (finance.Record, error) {
					t.Fatalf("repository must not be called")
					return finance.Record{}, nil
				},
			}
			h := handlers.NewFinanceHandler(repo, fakeLinks{})
			r := setupRouter(http.MethodPost, "/api/financial-records", h.CreateRecord)

			w := do(t, r, http.MethodPost, "/api/financial-records", tt.body, tokenFor(t, memberA))
			if w.Code != http.StatusBadRequest || errorCode(t, w) != "invalid_request" {
				t.Fatalf("got %d body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateRecord_ClearsProject(t *testing.T) {
	id := newUUID()
	var got finance.UpdateRecordRequest

	repo := &fakeFinanceRepo{
		getFn: func(context.Context, string) (finance.Record, error) {
			return finance.Record{ID: id, ClubID: clubA, Type: finance.TypeExpense, Amount: 10}, nil
		},
		updateFn: func(_ context.Context, _ string, req finance.UpdateRecordRequest) (finance.Record, error) {
			got = req
			return finance.Record{ID: id, ClubID: clubA, Type: finance.TypeExpense, Amount: 10}, nil
		},
	}
	h := handlers.NewFinanceHandler(repo, fakeLinks{})
	r := setupRouter(http.MethodPut, "/api/financial-records/:id", h.UpdateRecord)

	w := do(t, r, http.MethodPut, "/api/financial-records/"+id, `{"projectId":""}`, tokenFor(t, memberA))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}
	if got.ProjectID == nil || *got.ProjectID != "" {
		t.Fatalf("empty projectId should be forwarded to clear the link: %+v", got.ProjectID)
	}
	if got.Amount != nil || got.Type != nil {
		t.Fatalf("omitted fields must stay nil: %+v", got)
	}
}

func TestListRecords_RejectsUnknownType(t *testing.T) {
	h := handlers.NewFinanceHandler(&fakeFinanceRepo{}, fakeLinks{})
	r := setupRouter(http.MethodGet, "/api/financial-records", h.ListRecords)

	w := do(t, r, http.MethodGet, "/api/financial-records?type=donation", "", tokenFor(t, memberA))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", w.Code)
	}
}

func TestRecord_ProjectLinkStaysInClub(t *testing.T) {
	ownProject, foreignProject := newUUID(), newUUID()
	links := fakeLinks{ownProject: clubA, foreignProject: clubB}

	tests := []struct {
		name       string
		actor      access.Actor
		body       string
		wantStatus int
	}{
		{"own project", memberA, `{"type":"expense","amount":20,"date":"2025-08-01T00:00:00Z","projectId":"` + ownProject + `"}`, http.StatusCreated},
		{"foreign project", memberA, `{"type":"expense","amount":20,"date":"2025-08-01T00:00:00Z","projectId":"` + foreignProject + `"}`, http.StatusBadRequest},
		{"unknown project", memberA, `{"type":"expense","amount":20,"date":"2025-08-01T00:00:00Z","projectId":"` + newUUID() + `"}`, http.StatusBadRequest},
		{"admin mixing clubs", adminU, `{"clubId":"` + clubA + `","type":"expense","amount":20,"date":"2025-08-01T00:00:00Z","projectId":"` + foreignProject + `"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := false
			repo := &fakeFinanceRepo{
				createFn: func(_ context.Context, rec finance.Record) (finance.Record, error) {
					created = true
					return rec, nil
				},
			}
			h := handlers.NewFinanceHandler(repo, links)
			r := setupRouter(http.MethodPost, "/api/financial-records", h.CreateRecord)

			w := do(t, r, http.MethodPost, "/api/financial-records", tt.body, tokenFor(t, tt.actor))
			if w.Code != tt.wantStatus {
				t.Fatalf("status: got %d want %d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if created != (tt.wantStatus == http.StatusCreated) {
				t.Fatalf("repository create called=%v", created)
			}
		})
	}

	t.Run("foreign and unknown projects answer alike", func(t *testing.T) {
		h := handlers.NewFinanceHandler(&fakeFinanceRepo{}, links)
		r := setupRouter(http.MethodPost, "/api/financial-records", h.CreateRecord)
		token := tokenFor(t, memberA)

		foreign := do(t, r, http.MethodPost, "/api/financial-records", `{"type":"expense","amount":1,"date":"2025-08-01T00:00:00Z","projectId":"`+foreignProject+`"}`, token)
		unknown := do(t, r, http.MethodPost, "/api/financial-records", `{"type":"expense","amount":1,"date":"2025-08-01T00:00:00Z","projectId":"`+newUUID()+`"}`, token)

		type errorBody struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		a, b := decode[errorBody](t, foreign), decode[errorBody](t, unknown)
		if a.Error.Message != b.Error.Message {
			t.Fatalf("foreign project leaks existence: %q vs %q", a.Error.Message, b.Error.Message)
		}
	})

	t.Run("update to foreign project", func(t *testing.T) {
		id := newUUID()
		updated := false
		repo := &fakeFinanceRepo{
			getFn: func(context.Context, string) (finance.Record, error) {
				return finance.Record{ID: id, ClubID: clubA, Type: finance.TypeExpense, Amount: 10}, nil
			},
			updateFn: func(context.Context, string, finance.UpdateRecordRequest) (finance.Record, error) {
				updated = true
				return finance.Record{}, nil
			},
		}
		h := handlers.NewFinanceHandler(repo, links)
		r := setupRouter(http.MethodPut, "/api/financial-records/:id", h.UpdateRecord)

		w := do(t, r, http.MethodPut, "/api/financial-records/"+id, `{"projectId":"`+foreignProject+`"}`, tokenFor(t, memberA))
		if w.Code != http.StatusBadRequest || updated {
			t.Fatalf("status %d updated %v", w.Code, updated)
		}
	})
}
