package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/leolynk/leolynk/internal/domain/project"
	"github.com/leolynk/leolynk/internal/observability"
)

type ProjectsRepo struct {
	base
}

func NewProjectsRepo(db DB, prom *observability.Prom) *ProjectsRepo {
	return &ProjectsRepo{base{db: db, prom: prom}}
}

const projectColumns = `id, club_id, title, description, category, date, status,
	beneficiaries, service_hours, participants, photos,
	COALESCE(created_by::text, ''), created_at, updated_at`

func scanProject(row scanner) (project.Project, error) {
	var p project.Project
	var photos *string

	err := row.Scan(
		&p.ID, &p.ClubID, &p.Title, &p.Description, &p.Category, &p.Date, &p.Status,
		&p.Beneficiaries, &p.ServiceHours, &p.Participants, &photos,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return project.Project{}, err
	}
	p.Photos = rawJSON(photos)
	return p, nil
}

func (r *ProjectsRepo) Create(ctx context.Context, p project.Project) (project.Project, error) {
	err := r.observe("projects.create", func() error {
		_, err := r.db.Exec(ctx, `
			INSERT INTO projects (id, club_id, title, description, category, date, status,
				beneficiaries, service_hours, participants, photos, created_by, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NULLIF($12,'')::uuid,$13,$14)`,
			p.ID, p.ClubID, p.Title, p.Description, p.Category, p.Date, p.Status,
			p.Beneficiaries, p.ServiceHours, p.Participants, jsonText(p.Photos), p.CreatedBy, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return project.Project{}, err
	}
	return p, nil
}

func (r *ProjectsRepo) GetByID(ctx context.Context, id string) (project.Project, error) {
	var p project.Project

	err := r.observe("projects.get", func() error {
		var err error
		p, err = scanProject(r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}
	return p, nil
}

func (r *ProjectsRepo) List(ctx context.Context, f project.ListProjectsFilter) ([]project.Project, *string, bool, error) {
	var w where
	if f.ClubID != nil {
		w.add("club_id = $%d", *f.ClubID)
	}
	if f.Status != nil {
		w.add("status = $%d", *f.Status)
	}
	if f.Category != nil {
		w.add("category = $%d", *f.Category)
	}
	if f.From != nil {
		w.add("date >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("date <= $%d", *f.To)
	}
	w.keyset("date", f.AfterDate, f.AfterID)

	q := `SELECT ` + projectColumns + ` FROM projects` + w.sql() + ` ORDER BY date DESC, id DESC` + w.limit(f.Limit+1)

	var rows pgx.Rows
	err := r.observe("projects.list", func() error {
		var err error
		rows, err = r.db.Query(ctx, q, w.args...)
		return err
	})
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	out := make([]project.Project, 0, f.Limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, nil, false, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, false, err
	}

	return page(out, f.Limit, func(p project.Project) (time.Time, string) { return p.Date, p.ID })
}

// Update applies a partial update. Nil fields keep their stored value.
func (r *ProjectsRepo) Update(ctx context.Context, id string, req project.UpdateProjectRequest) (project.Project, error) {
	var p project.Project

	err := r.observe("projects.update", func() error {
		var err error
		p, err = scanProject(r.db.QueryRow(ctx, `
			UPDATE projects SET
				title = COALESCE($2, title),
				description = COALESCE($3, description),
				category = COALESCE($4, category),
				date = COALESCE($5, date),
				status = COALESCE($6, status),
				beneficiaries = COALESCE($7, beneficiaries),
				service_hours = COALESCE($8, service_hours),
				participants = COALESCE($9, participants),
				photos = COALESCE($10, photos),
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+projectColumns,
			id, req.Title, req.Description, req.Category, req.Date, req.Status,
			req.Beneficiaries, req.ServiceHours, req.Participants, jsonText(req.Photos),
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}
	return p, nil
}

func (r *ProjectsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("projects.delete", func() error {
		tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return project.ErrNotFound
	}
	return nil
}
