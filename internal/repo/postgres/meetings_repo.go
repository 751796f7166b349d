package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/leolynk/leolynk/internal/domain/meeting"
	"github.com/leolynk/leolynk/internal/observability"
)

type MeetingsRepo struct {
	base
}

func NewMeetingsRepo(db DB, prom *observability.Prom) *MeetingsRepo {
	return &MeetingsRepo{base{db: db, prom: prom}}
}

const meetingColumns = `id, club_id, title, start_at, end_at, venue, type, status,
	agenda, minutes, attendees, action_items, project_id::text,
	COALESCE(created_by::text, ''), created_at, updated_at`

func scanMeeting(row scanner) (meeting.Meeting, error) {
	var m meeting.Meeting
	var agenda, minutes, attendees, actionItems *string

	err := row.Scan(
		&m.ID, &m.ClubID, &m.Title, &m.StartAt, &m.EndAt, &m.Venue, &m.Type, &m.Status,
		&agenda, &minutes, &attendees, &actionItems, &m.ProjectID,
		&m.CreatedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return meeting.Meeting{}, err
	}
	m.Agenda = rawJSON(agenda)
	m.Minutes = rawJSON(minutes)
	m.Attendees = rawJSON(attendees)
	m.ActionItems = rawJSON(actionItems)
	return m, nil
}

func (r *MeetingsRepo) Create(ctx context.Context, m meeting.Meeting) (meeting.Meeting, error) {
	err := r.observe("meetings.create", func() error {
		_, err := r.db.Exec(ctx, `
			INSERT INTO meetings (id, club_id, title, start_at, end_at, venue, type, status,
				agenda, minutes, attendees, action_items, project_id, created_by, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NULLIF($14,'')::uuid,$15,$16)`,
			m.ID, m.ClubID, m.Title, m.StartAt, m.EndAt, m.Venue, m.Type, m.Status,
			jsonText(m.Agenda), jsonText(m.Minutes), jsonText(m.Attendees), jsonText(m.ActionItems),
			m.ProjectID, m.CreatedBy, m.CreatedAt, m.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return meeting.Meeting{}, err
	}
	return m, nil
}

func (r *MeetingsRepo) GetByID(ctx context.Context, id string) (meeting.Meeting, error) {
	var m meeting.Meeting

	err := r.observe("meetings.get", func() error {
		var err error
		m, err = scanMeeting(r.db.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return meeting.Meeting{}, meeting.ErrNotFound
		}
		return meeting.Meeting{}, err
	}
	return m, nil
}

func (r *MeetingsRepo) List(ctx context.Context, f meeting.ListMeetingsFilter) ([]meeting.Meeting, *string, bool, error) {
	var w where
	if f.ClubID != nil {
		w.add("club_id = $%d", *f.ClubID)
	}
	if f.Status != nil {
		w.add("status = $%d", *f.Status)
	}
	if f.Type != nil {
		w.add("type = $%d", *f.Type)
	}
	if f.ProjectID != nil {
		w.add("project_id = $%d", *f.ProjectID)
	}
	if f.From != nil {
		w.add("start_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("start_at <= $%d", *f.To)
	}
	w.keyset("start_at", f.AfterDate, f.AfterID)

	q := `SELECT ` + meetingColumns + ` FROM meetings` + w.sql() + ` ORDER BY start_at DESC, id DESC` + w.limit(f.Limit+1)

	var rows pgx.Rows
	err := r.observe("meetings.list", func() error {
		var err error
		rows, err = r.db.Query(ctx, q, w.args...)
		return err
	})
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	out := make([]meeting.Meeting, 0, f.Limit)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, nil, false, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, false, err
	}

	return page(out, f.Limit, func(m meeting.Meeting) (time.Time, string) { return m.StartAt, m.ID })
}

// Update applies a partial update; end_at and project_id are cleared by an empty string.
func (r *MeetingsRepo) Update(ctx context.Context, id string, req meeting.UpdateMeetingRequest) (meeting.Meeting, error) {
	var m meeting.Meeting

	err := r.observe("meetings.update", func() error {
		var err error
		m, err = scanMeeting(r.db.QueryRow(ctx, `
			UPDATE meetings SET
				title = COALESCE($2, title),
				start_at = COALESCE($3, start_at),
				end_at = CASE WHEN $4::text IS NULL THEN end_at ELSE NULLIF($4::text, '')::timestamptz END,
				venue = COALESCE($5, venue),
				type = COALESCE($6, type),
				status = COALESCE($7, status),
				agenda = COALESCE($8, agenda),
				minutes = COALESCE($9, minutes),
				attendees = COALESCE($10, attendees),
				action_items = COALESCE($11, action_items),
				project_id = CASE WHEN $12::text IS NULL THEN project_id ELSE NULLIF($12::text, '')::uuid END,
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+meetingColumns,
			id, req.Title, req.StartAt, req.EndAt, req.Venue, req.Type, req.Status,
			jsonText(req.Agenda), jsonText(req.Minutes), jsonText(req.Attendees), jsonText(req.ActionItems),
			req.ProjectID,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return meeting.Meeting{}, meeting.ErrNotFound
		}
		return meeting.Meeting{}, err
	}
	return m, nil
}

func (r *MeetingsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("meetings.delete", func() error {
		tag, err := r.db.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return meeting.ErrNotFound
	}
	return nil
}
