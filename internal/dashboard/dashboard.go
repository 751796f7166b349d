// Package dashboard computes per-club statistics for a Leoistic year,
// which runs from July 1 to June 30 of the following calendar year.
package dashboard

import (
	"fmt"
	"math"
	"time"
)

const uncategorized = "Uncategorized"

type Window struct {
	Year  int       `json:"year"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	// End is exclusive.
	End time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// LeoisticYear returns the year a Leoistic year starts in: July 2025 and June 2026
// both belong to 2025.
func LeoisticYear(t time.Time) int {
	t = t.UTC()
	if t.Month() >= time.July {
		return t.Year()
	}
	return t.Year() - 1
}

func YearWindow(year int) Window {
	return Window{
		Year:  year,
		Label: fmt.Sprintf("%d-%d", year, year+1),
		Start: time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year+1, time.July, 1, 0, 0, 0, 0, time.UTC),
	}
}

type FinanceRow struct {
	Type     string
	Status   string
	Category string
	Amount   float64
	Date     time.Time
}

type ProjectRow struct {
	Status        string
	Category      string
	Beneficiaries int
	ServiceHours  float64
	Participants  int
	Date          time.Time
}

type EventRow struct {
	Status    string
	Highlight bool
	StartDate time.Time
}

type MeetingRow struct {
	Status  string
	StartAt time.Time
}

// Input holds the club rows that fall inside a window.
type Input struct {
	Finance  []FinanceRow
	Projects []ProjectRow
	Events   []EventRow
	Meetings []MeetingRow
}

type Money struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type MonthBucket struct {
	Month   string  `json:"month"`
	Label   string  `json:"label"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type FinanceStats struct {
	TotalIncome       float64            `json:"totalIncome"`
	TotalExpense      float64            `json:"totalExpense"`
	Balance           float64            `json:"balance"`
	ByStatus          map[string]Money   `json:"byStatus"`
	Monthly           []MonthBucket      `json:"monthly"`
	IncomeByCategory  map[string]float64 `json:"incomeByCategory"`
	ExpenseByCategory map[string]float64 `json:"expenseByCategory"`
}

type ProjectStats struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"byStatus"`
	ByCategory    map[string]int `json:"byCategory"`
	Beneficiaries int            `json:"beneficiaries"`
	ServiceHours  float64        `json:"serviceHours"`
	Participants  int            `json:"participants"`
}

type EventStats struct {
	Total       int            `json:"total"`
	Highlighted int            `json:"highlighted"`
	Upcoming    int            `json:"upcoming"`
	ByStatus    map[string]int `json:"byStatus"`
}

type MeetingStats struct {
	Total    int            `json:"total"`
	Upcoming int            `json:"upcoming"`
	ByStatus map[string]int `json:"byStatus"`
}

type Stats struct {
	Window   Window       `json:"window"`
	Finance  FinanceStats `json:"finance"`
	Projects ProjectStats `json:"projects"`
	Events   EventStats   `json:"events"`
	Meetings MeetingStats `json:"meetings"`
}

// Summarize aggregates rows for w. Rows outside the window are ignored; totals,
// balance, months and categories count completed records only.
func Summarize(w Window, in Input, now time.Time) Stats {
	return Stats{
		Window:   w,
		Finance:  summarizeFinance(w, in.Finance),
		Projects: summarizeProjects(w, in.Projects),
		Events:   summarizeEvents(w, in.Events, now),
		Meetings: summarizeMeetings(w, in.Meetings, now),
	}
}

func summarizeFinance(w Window, rows []FinanceRow) FinanceStats {
	fs := FinanceStats{
		ByStatus: map[string]Money{
			"completed": {},
			"pending":   {},
			"projected": {},
		},
		Monthly:           make([]MonthBucket, 12),
		IncomeByCategory:  map[string]float64{},
		ExpenseByCategory: map[string]float64{},
	}

	for i := range fs.Monthly {
		m := w.Start.AddDate(0, i, 0)
		fs.Monthly[i] = MonthBucket{Month: m.Format("2006-01"), Label: m.Format("Jan")}
	}

	for _, r := range rows {
		if !w.Contains(r.Date) {
			continue
		}

		m := fs.ByStatus[r.Status]
		if r.Type == "income" {
			m.Income += r.Amount
		} else {
			m.Expense += r.Amount
		}
		fs.ByStatus[r.Status] = m

		if r.Status != "completed" {
			continue
		}

		cat := r.Category
		if cat == "" {
			cat = uncategorized
		}
		idx := monthIndex(w, r.Date)

		if r.Type == "income" {
			fs.TotalIncome += r.Amount
			fs.IncomeByCategory[cat] += r.Amount
			fs.Monthly[idx].Income += r.Amount
		} else {
			fs.TotalExpense += r.Amount
			fs.ExpenseByCategory[cat] += r.Amount
			fs.Monthly[idx].Expense += r.Amount
		}
	}

	fs.TotalIncome = round2(fs.TotalIncome)
	fs.TotalExpense = round2(fs.TotalExpense)
	fs.Balance = round2(fs.TotalIncome - fs.TotalExpense)
	for k, v := range fs.ByStatus {
		fs.ByStatus[k] = Money{Income: round2(v.Income), Expense: round2(v.Expense)}
	}
	for i := range fs.Monthly {
		fs.Monthly[i].Income = round2(fs.Monthly[i].Income)
		fs.Monthly[i].Expense = round2(fs.Monthly[i].Expense)
	}
	for k, v := range fs.IncomeByCategory {
		fs.IncomeByCategory[k] = round2(v)
	}
	for k, v := range fs.ExpenseByCategory {
		fs.ExpenseByCategory[k] = round2(v)
	}
	return fs
}

// monthIndex maps a date to 0 (July) .. 11 (June).
func monthIndex(w Window, t time.Time) int {
	t = t.UTC()
	idx := (t.Year()-w.Year)*12 + int(t.Month()) - int(time.July)
	if idx < 0 {
		return 0
	}
	if idx > 11 {
		return 11
	}
	return idx
}

func summarizeProjects(w Window, rows []ProjectRow) ProjectStats {
	ps := ProjectStats{
		ByStatus:   map[string]int{"planned": 0, "ongoing": 0, "completed": 0},
		ByCategory: map[string]int{},
	}
	for _, r := range rows {
		if !w.Contains(r.Date) {
			continue
		}
		ps.Total++
		ps.ByStatus[r.Status]++
		cat := r.Category
		if cat == "" {
			cat = uncategorized
		}
		ps.ByCategory[cat]++
		ps.Beneficiaries += r.Beneficiaries
		ps.ServiceHours += r.ServiceHours
		ps.Participants += r.Participants
	}
	ps.ServiceHours = round2(ps.ServiceHours)
	return ps
}

func summarizeEvents(w Window, rows []EventRow, now time.Time) EventStats {
	es := EventStats{ByStatus: map[string]int{"planned": 0, "ongoing": 0, "completed": 0, "cancelled": 0}}
	for _, r := range rows {
		if !w.Contains(r.StartDate) {
			continue
		}
		es.Total++
		es.ByStatus[r.Status]++
		if r.Highlight {
			es.Highlighted++
		}
		if !r.StartDate.Before(now) {
			es.Upcoming++
		}
	}
	return es
}

func summarizeMeetings(w Window, rows []MeetingRow, now time.Time) MeetingStats {
	ms := MeetingStats{ByStatus: map[string]int{"scheduled": 0, "completed": 0, "cancelled": 0}}
	for _, r := range rows {
		if !w.Contains(r.StartAt) {
			continue
		}
		ms.Total++
		ms.ByStatus[r.Status]++
		if !r.StartAt.Before(now) {
			ms.Upcoming++
		}
	}
	return ms
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
