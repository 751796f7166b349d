package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/leolynk/leolynk/internal/dashboard"
	"github.com/leolynk/leolynk/internal/observability"
)

type DashboardRepo struct {
	base
}

func NewDashboardRepo(db DB, prom *observability.Prom) *DashboardRepo {
	return &DashboardRepo{base{db: db, prom: prom}}
}

// Load fetches the rows of one club (or every club when clubID is nil) that fall in w.
func (r *DashboardRepo) Load(ctx context.Context, clubID *string, w dashboard.Window) (dashboard.Input, error) {
	var in dashboard.Input

	err := r.each(ctx, "dashboard.finance", `
		SELECT type, status, category, amount::float8, date
		FROM financial_records
		WHERE ($1::uuid IS NULL OR club_id = $1::uuid) AND date >= $2 AND date < $3`,
		clubID, w, func(rows pgx.Rows) error {
			var f dashboard.FinanceRow
			if err := rows.Scan(&f.Type, &f.Status, &f.Category, &f.Amount, &f.Date); err != nil {
				return err
			}
			in.Finance = append(in.Finance, f)
			return nil
		})
	if err != nil {
		return dashboard.Input{}, err
	}

	err = r.each(ctx, "dashboard.projects", `
		SELECT status, category, beneficiaries, service_hours::float8, participants, date
		FROM projects
		WHERE ($1::uuid IS NULL OR club_id = $1::uuid) AND date >= $2 AND date < $3`,
		clubID, w, func(rows pgx.Rows) error {
			var p dashboard.ProjectRow
			if err := rows.Scan(&p.Status, &p.Category, &p.Beneficiaries, &p.ServiceHours, &p.Participants, &p.Date); err != nil {
				return err
			}
			in.Projects = append(in.Projects, p)
			return nil
		})
	if err != nil {
		return dashboard.Input{}, err
	}

	err = r.each(ctx, "dashboard.events", `
		SELECT status, highlight, start_date
		FROM events
		WHERE ($1::uuid IS NULL OR club_id = $1::uuid) AND start_date >= $2 AND start_date < $3`,
		clubID, w, func(rows pgx.Rows) error {
			var e dashboard.EventRow
			if err := rows.Scan(&e.Status, &e.Highlight, &e.StartDate); err != nil {
				return err
			}
			in.Events = append(in.Events, e)
			return nil
		})
	if err != nil {
		return dashboard.Input{}, err
	}

	err = r.each(ctx, "dashboard.meetings", `
		SELECT status, start_at
		FROM meetings
		WHERE ($1::uuid IS NULL OR club_id = $1::uuid) AND start_at >= $2 AND start_at < $3`,
		clubID, w, func(rows pgx.Rows) error {
			var m dashboard.MeetingRow
			if err := rows.Scan(&m.Status, &m.StartAt); err != nil {
				return err
			}
			in.Meetings = append(in.Meetings, m)
			return nil
		})
	if err != nil {
		return dashboard.Input{}, err
	}

	return in, nil
}

func (r *DashboardRepo) each(ctx context.Context, op, q string, clubID *string, w dashboard.Window, fn func(pgx.Rows) error) error {
	var rows pgx.Rows

	err := r.observe(op, func() error {
		var err error
		rows, err = r.db.Query(ctx, q, clubID, w.Start, w.End)
		return err
	})
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
