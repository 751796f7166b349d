package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/leolynk/leolynk/internal/domain/event"
	"github.com/leolynk/leolynk/internal/observability"
)

type EventsRepo struct {
	base
}

// constructor function

func NewEventsRepo(db DB, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{base{db: db, prom: prom}}
}

const eventColumns = `id, club_id, title, description, start_date, end_date, venue, status, type,
	goals, collaborators, documents, impact_metrics, highlight, mood,
	COALESCE(created_by::text, ''), created_at, updated_at`

func scanEvent(row scanner) (event.Event, error) {
	var e event.Event
	var goals, collaborators, documents, impact *string

	err := row.Scan(
		&e.ID, &e.ClubID, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &e.Venue, &e.Status, &e.Type,
		&goals, &collaborators, &documents, &impact, &e.Highlight, &e.Mood,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return event.Event{}, err
	}
	e.Goals = rawJSON(goals)
	e.Collaborators = rawJSON(collaborators)
	e.Documents = rawJSON(documents)
	e.ImpactMetrics = rawJSON(impact)
	return e, nil
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	err := r.observe("events.create", func() error {
		_, err := r.db.Exec(ctx, `
			INSERT INTO events (id, club_id, title, description, start_date, end_date, venue, status, type,
				goals, collaborators, documents, impact_metrics, highlight, mood, created_by, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,NULLIF($16,'')::uuid,$17,$18)`,
			e.ID, e.ClubID, e.Title, e.Description, e.StartDate, e.EndDate, e.Venue, e.Status, e.Type,
			jsonText(e.Goals), jsonText(e.Collaborators), jsonText(e.Documents), jsonText(e.ImpactMetrics),
			e.Highlight, e.Mood, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return event.Event{}, err
	}
	return e, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	var e event.Event

	err := r.observe("events.get", func() error {
		var err error
		e, err = scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}
	return e, nil
}

func (r *EventsRepo) List(ctx context.Context, f event.ListEventsFilter) ([]event.Event, *string, bool, error) {
	var w where

	// filtered conditional checks.
	if f.ClubID != nil {
		w.add("club_id = $%d", *f.ClubID)
	}
	if f.Status != nil {
		w.add("status = $%d", *f.Status)
	}
	if f.Type != nil {
		w.add("type = $%d", *f.Type)
	}
	if f.Highlight != nil {
		w.add("highlight = $%d", *f.Highlight)
	}
	if f.From != nil {
		w.add("start_date >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("start_date <= $%d", *f.To)
	}
	if f.Query != nil {
		w.add("(title ILIKE '%' || $%d || '%' OR venue ILIKE '%' || $%d || '%')", *f.Query)
	}
	w.keyset("start_date", f.AfterDate, f.AfterID)

	// stable ordering for pagination
	q := `SELECT ` + eventColumns + ` FROM events` + w.sql() + ` ORDER BY start_date DESC, id DESC` + w.limit(f.Limit+1)

	var rows pgx.Rows
	err := r.observe("events.list", func() error {
		var err error
		rows, err = r.db.Query(ctx, q, w.args...)
		return err
	})
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	out := make([]event.Event, 0, f.Limit)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, nil, false, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, false, err
	}

	return page(out, f.Limit, func(e event.Event) (time.Time, string) { return e.StartDate, e.ID })
}

func (r *EventsRepo) Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error) {
	var e event.Event

	err := r.observe("events.update", func() error {
		var err error
		e, err = scanEvent(r.db.QueryRow(ctx, `
			UPDATE events SET
				title = COALESCE($2, title),
				description = COALESCE($3, description),
				start_date = COALESCE($4, start_date),
				end_date = CASE WHEN $5::text IS NULL THEN end_date ELSE NULLIF($5::text, '')::timestamptz END,
				venue = COALESCE($6, venue),
				status = COALESCE($7, status),
				type = COALESCE($8, type),
				goals = COALESCE($9, goals),
				collaborators = COALESCE($10, collaborators),
				documents = COALESCE($11, documents),
				impact_metrics = COALESCE($12, impact_metrics),
				highlight = COALESCE($13, highlight),
				mood = COALESCE($14, mood),
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+eventColumns,
			id, req.Title, req.Description, req.StartDate, req.EndDate, req.Venue, req.Status, req.Type,
			jsonText(req.Goals), jsonText(req.Collaborators), jsonText(req.Documents), jsonText(req.ImpactMetrics),
			req.Highlight, req.Mood,
		))
		return err
	})
	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}
	return e, nil
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("events.delete", func() error {
		tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return event.ErrNotFound
	}
	return nil
}
