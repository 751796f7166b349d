package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leolynk/leolynk/internal/domain/club"
	"github.com/leolynk/leolynk/internal/domain/finance"
	"github.com/leolynk/leolynk/internal/domain/project"
	"github.com/leolynk/leolynk/internal/utils"
	"github.com/pashagolub/pgxmock/v4"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return mock
}

var projectCols = []string{
	"id", "club_id", "title", "description", "category", "date", "status",
	"beneficiaries", "service_hours", "participants", "photos",
	"created_by", "created_at", "updated_at",
}

func projectRow(id, title, status string, date time.Time) []any {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	photos := `["a.jpg"]`
	return []any{
		id, "club-1", title, "desc", "Health", date, status,
		40, 12.5, 8, &photos,
		"user-1", now, now,
	}
}

func TestProjectsRepo_DeleteTwice(t *testing.T) {
	mock := newMock(t)
	repo := NewProjectsRepo(mock, nil)

	mock.ExpectExec("DELETE FROM projects").WithArgs("p-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM projects").WithArgs("p-1").WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), "p-1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := repo.Delete(context.Background(), "p-1"); !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestProjectsRepo_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProjectsRepo(mock, nil)

	mock.ExpectQuery("SELECT .* FROM projects WHERE id").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectsRepo_UpdatePassesNilForOmittedFields(t *testing.T) {
	mock := newMock(t)
	repo := NewProjectsRepo(mock, nil)

	status := "completed"
	date := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("UPDATE projects SET").
		WithArgs("p-1",
			(*string)(nil), (*string)(nil), (*string)(nil), (*time.Time)(nil), &status,
			(*int)(nil), (*float64)(nil), (*int)(nil), (*string)(nil),
		).
		WillReturnRows(pgxmock.NewRows(projectCols).AddRow(projectRow("p-1", "Blood drive", status, date)...))

	p, err := repo.Update(context.Background(), "p-1", project.UpdateProjectRequest{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Title != "Blood drive" || p.Status != "completed" || p.Beneficiaries != 40 {
		t.Fatalf("unexpected project %+v", p)
	}
	if string(p.Photos) != `["a.jpg"]` {
		t.Fatalf("photos: got %s", p.Photos)
	}
}

func TestProjectsRepo_ListKeyset(t *testing.T) {
	mock := newMock(t)
	repo := NewProjectsRepo(mock, nil)

	clubID := "club-1"
	const (
		p0 = "6f1c2a9e-0000-4c1d-9a51-000000000000"
		p1 = "6f1c2a9e-0000-4c1d-9a51-000000000001"
		p2 = "6f1c2a9e-0000-4c1d-9a51-000000000002"
	)
	d1 := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM projects WHERE club_id = \$1 AND \(date, id\) < \(\$2, \$3\) ORDER BY date DESC, id DESC LIMIT \$4`).
		WithArgs(clubID, after, p0, 2).
		WillReturnRows(pgxmock.NewRows(projectCols).
			AddRow(projectRow(p1, "One", "planned", d1)...).
			AddRow(projectRow(p2, "Two", "planned", d2)...))

	items, next, hasMore, err := repo.List(context.Background(), project.ListProjectsFilter{
		ClubID:    &clubID,
		Limit:     1,
		AfterDate: after,
		AfterID:   p0,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != p1 || !hasMore || next == nil {
		t.Fatalf("unexpected page: %d items, hasMore=%v next=%v", len(items), hasMore, next)
	}

	cur, err := utils.DecodeCursor(*next)
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}
	if cur.ID != p1 || !cur.At.Equal(d1) {
		t.Fatalf("cursor: %+v", cur)
	}
}

func TestFinanceRepo_RoundTrip(t *testing.T) {
	mock := newMock(t)
	repo := NewFinanceRepo(mock, nil)

	rec := finance.NewFromCreateRequest(finance.CreateRecordRequest{
		Type:   "income",
		Amount: 123.45,
		Date:   time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
	}, "club-1", "user-1")

	mock.ExpectExec("INSERT INTO financial_records").
		WithArgs(rec.ID, "club-1", "income", "completed", "", 123.45, "", rec.Date,
			(*string)(nil), (*string)(nil), "user-1", rec.CreatedAt, rec.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if _, err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	cols := []string{"id", "club_id", "type", "status", "category", "amount", "description", "date",
		"project_id", "receipt", "created_by", "created_at", "updated_at"}
	mock.ExpectQuery("SELECT .* FROM financial_records WHERE id").WithArgs(rec.ID).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			rec.ID, "club-1", "income", "completed", "", 123.45, "", rec.Date,
			nil, nil, "user-1", rec.CreatedAt, rec.UpdatedAt,
		))

	got, err := repo.GetByID(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount != 123.45 || got.Type != "income" || got.ProjectID != nil {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestClubsRepo_CreateDuplicateName(t *testing.T) {
	mock := newMock(t)
	repo := NewClubsRepo(mock, nil)

	c := club.NewFromCreateRequest(club.CreateClubRequest{Name: "Leo Club Colombo"})
	mock.ExpectExec("INSERT INTO clubs").
		WithArgs(c.ID, c.Name, c.District, c.CreatedAt, c.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if _, err := repo.Create(context.Background(), c); !errors.Is(err, club.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestLinksRepo_LinkedClub(t *testing.T) {
	mock := newMock(t)
	repo := NewLinksRepo(mock, nil)

	mock.ExpectQuery("SELECT club_id FROM projects WHERE id").WithArgs("p-1").
		WillReturnRows(pgxmock.NewRows([]string{"club_id"}).AddRow("club-1"))
	mock.ExpectQuery("SELECT club_id FROM events WHERE id").WithArgs("e-9").
		WillReturnError(pgx.ErrNoRows)

	club, err := repo.LinkedClub(context.Background(), "project", "p-1")
	if err != nil || club != "club-1" {
		t.Fatalf("got %q %v", club, err)
	}
	if _, err := repo.LinkedClub(context.Background(), "event", "e-9"); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
	if _, err := repo.LinkedClub(context.Background(), "club", "c-1"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
