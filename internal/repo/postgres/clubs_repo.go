package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/leolynk/leolynk/internal/domain/club"
	"github.com/leolynk/leolynk/internal/observability"
)

type ClubsRepo struct {
	base
}

func NewClubsRepo(db DB, prom *observability.Prom) *ClubsRepo {
	return &ClubsRepo{base{db: db, prom: prom}}
}

func (r *ClubsRepo) Create(ctx context.Context, c club.Club) (club.Club, error) {
	err := r.observe("clubs.create", func() error {
		_, err := r.db.Exec(ctx,
			`INSERT INTO clubs (id, name, district, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`,
			c.ID, c.Name, c.District, c.CreatedAt, c.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return club.Club{}, club.ErrNameTaken
		}
		return club.Club{}, err
	}
	return c, nil
}

func (r *ClubsRepo) GetByID(ctx context.Context, id string) (club.Club, error) {
	return r.getBy(ctx, "clubs.get", `id = $1`, id)
}

func (r *ClubsRepo) GetByName(ctx context.Context, name string) (club.Club, error) {
	return r.getBy(ctx, "clubs.get_by_name", `name = $1`, name)
}

func (r *ClubsRepo) getBy(ctx context.Context, op, cond string, arg any) (club.Club, error) {
	var c club.Club

	err := r.observe(op, func() error {
		return r.db.QueryRow(ctx,
			`SELECT id, name, district, created_at, updated_at FROM clubs WHERE `+cond, arg,
		).Scan(&c.ID, &c.Name, &c.District, &c.CreatedAt, &c.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return club.Club{}, club.ErrNotFound
		}
		return club.Club{}, err
	}
	return c, nil
}

func (r *ClubsRepo) List(ctx context.Context) ([]club.Club, error) {
	var rows pgx.Rows

	err := r.observe("clubs.list", func() error {
		var err error
		rows, err = r.db.Query(ctx, `SELECT id, name, district, created_at, updated_at FROM clubs ORDER BY name ASC`)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]club.Club, 0)
	for rows.Next() {
		var c club.Club
		if err := rows.Scan(&c.ID, &c.Name, &c.District, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
