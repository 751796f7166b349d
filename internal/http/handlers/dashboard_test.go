package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/leolynk/leolynk/internal/dashboard"
	"github.com/leolynk/leolynk/internal/http/handlers"
)

type fakeDashboardLoader struct {
	clubID *string
	window dashboard.Window
	in     dashboard.Input
	err    error
}

func (f *fakeDashboardLoader) Load(_ context.Context, clubID *string, w dashboard.Window) (dashboard.Input, error) {
	f.clubID, f.window = clubID, w
	return f.in, f.err
}

func TestGetDashboard(t *testing.T) {
	loader := &fakeDashboardLoader{in: dashboard.Input{
		Finance: []dashboard.FinanceRow{
			{Type: "income", Status: "completed", Category: "Dues", Amount: 500, Date: time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC)},
			{Type: "expense", Status: "completed", Category: "Printing", Amount: 120.5, Date: time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)},
		},
	}}
	h := handlers.NewDashboardHandler(loader)
	r := setupRouter(http.MethodGet, "/api/dashboard", h.GetDashboard)

	w := do(t, r, http.MethodGet, "/api/dashboard?year=2025", "", tokenFor(t, memberA))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}

	stats := decode[dashboard.Stats](t, w)
	if stats.Window.Label != "2025-2026" {
		t.Fatalf("window %+v", stats.Window)
	}
	if stats.Finance.TotalIncome != 500 || stats.Finance.Balance != 379.5 {
		t.Fatalf("finance %+v", stats.Finance)
	}
	if loader.clubID == nil || *loader.clubID != clubA {
		t.Fatalf("member must be scoped to own club, got %v", loader.clubID)
	}
	if !loader.window.Start.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("window start %v", loader.window.Start)
	}
}

func TestGetDashboard_DefaultYearAndErrors(t *testing.T) {
	loader := &fakeDashboardLoader{}
	h := handlers.NewDashboardHandler(loader)
	r := setupRouter(http.MethodGet, "/api/dashboard", h.GetDashboard)

	w := do(t, r, http.MethodGet, "/api/dashboard", "", tokenFor(t, adminU))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if want := dashboard.LeoisticYear(time.Now()); loader.window.Year != want {
		t.Fatalf("default year: got %d want %d", loader.window.Year, want)
	}
	if loader.clubID != nil {
		t.Fatalf("admin without clubId sees every club")
	}

	if w := do(t, r, http.MethodGet, "/api/dashboard?year=20x5", "", tokenFor(t, adminU)); w.Code != http.StatusBadRequest {
		t.Fatalf("bad year: got %d", w.Code)
	}

	loader.err = errors.New("db down")
	w = do(t, r, http.MethodGet, "/api/dashboard", "", tokenFor(t, adminU))
	if w.Code != http.StatusInternalServerError || errorCode(t, w) != "internal_error" {
		t.Fatalf("got %d body=%s", w.Code, w.Body.String())
	}
}
