package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/leolynk/leolynk/internal/domain/mindmap"
	"github.com/leolynk/leolynk/internal/observability"
)

type MindmapsRepo struct {
	base
}

func NewMindmapsRepo(db DB, prom *observability.Prom) *MindmapsRepo {
	return &MindmapsRepo{base{db: db, prom: prom}}
}

const mindmapColumns = `id, club_id, title, description, content, entity_type, entity_id::text,
	COALESCE(created_by::text, ''), created_at, updated_at`

func scanMindmap(row scanner) (mindmap.Mindmap, error) {
	var m mindmap.Mindmap

	err := row.Scan(
		&m.ID, &m.ClubID, &m.Title, &m.Description, &m.Content, &m.EntityType, &m.EntityID,
		&m.CreatedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return mindmap.Mindmap{}, err
	}
	return m, nil
}

func (r *MindmapsRepo) Create(ctx context.Context, m mindmap.Mindmap) (mindmap.Mindmap, error) {
	err := r.observe("mindmaps.create", func() error {
		_, err := r.db.Exec(ctx, `
			INSERT INTO mindmaps (id, club_id, title, description, content, entity_type, entity_id,
				created_by, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,'')::uuid,$9,$10)`,
			m.ID, m.ClubID, m.Title, m.Description, m.Content, m.EntityType, m.EntityID,
			m.CreatedBy, m.CreatedAt, m.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return mindmap.Mindmap{}, err
	}
	return m, nil
}

func (r *MindmapsRepo) GetByID(ctx context.Context, id string) (mindmap.Mindmap, error) {
	var m mindmap.Mindmap

	err := r.observe("mindmaps.get", func() error {
		var err error
		m, err = scanMindmap(r.db.QueryRow(ctx, `SELECT `+mindmapColumns+` FROM mindmaps WHERE id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mindmap.Mindmap{}, mindmap.ErrNotFound
		}
		return mindmap.Mindmap{}, err
	}
	return m, nil
}

// List orders by last update so recently edited maps come first.
func (r *MindmapsRepo) List(ctx context.Context, f mindmap.ListMindmapsFilter) ([]mindmap.Mindmap, *string, bool, error) {
	var w where
	if f.ClubID != nil {
		w.add("club_id = $%d", *f.ClubID)
	}
	if f.EntityType != nil {
		w.add("entity_type = $%d", *f.EntityType)
	}
	if f.EntityID != nil {
		w.add("entity_id = $%d", *f.EntityID)
	}
	w.keyset("updated_at", f.AfterDate, f.AfterID)

	q := `SELECT ` + mindmapColumns + ` FROM mindmaps` + w.sql() + ` ORDER BY updated_at DESC, id DESC` + w.limit(f.Limit+1)

	var rows pgx.Rows
	err := r.observe("mindmaps.list", func() error {
		var err error
		rows, err = r.db.Query(ctx, q, w.args...)
		return err
	})
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	out := make([]mindmap.Mindmap, 0, f.Limit)
	for rows.Next() {
		m, err := scanMindmap(rows)
		if err != nil {
			return nil, nil, false, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, false, err
	}

	return page(out, f.Limit, func(m mindmap.Mindmap) (time.Time, string) { return m.UpdatedAt, m.ID })
}

// Update applies a partial update; entity_type and entity_id are cleared by an empty string.
func (r *MindmapsRepo) Update(ctx context.Context, id string, req mindmap.UpdateMindmapRequest) (mindmap.Mindmap, error) {
	var m mindmap.Mindmap

	err := r.observe("mindmaps.update", func() error {
		var err error
		m, err = scanMindmap(r.db.QueryRow(ctx, `
			UPDATE mindmaps SET
				title = COALESCE($2, title),
				description = COALESCE($3, description),
				content = COALESCE($4, content),
				entity_type = CASE WHEN $5::text IS NULL THEN entity_type ELSE NULLIF($5::text, '') END,
				entity_id = CASE WHEN $6::text IS NULL THEN entity_id ELSE NULLIF($6::text, '')::uuid END,
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+mindmapColumns,
			id, req.Title, req.Description, req.Content, req.EntityType, req.EntityID,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return mindmap.Mindmap{}, mindmap.ErrNotFound
		}
		return mindmap.Mindmap{}, err
	}
	return m, nil
}

func (r *MindmapsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("mindmaps.delete", func() error {
		tag, err := r.db.Exec(ctx, `DELETE FROM mindmaps WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return mindmap.ErrNotFound
	}
	return nil
}
