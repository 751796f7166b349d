package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/leolynk/leolynk/internal/domain/user"
	"github.com/leolynk/leolynk/internal/observability"
)

type UsersRepo struct {
	base
}

func NewUsersRepo(db DB, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{base{db: db, prom: prom}}
}

const userColumns = `id, username, password_hash, role, club_id, COALESCE(profile_picture, ''), created_at, updated_at`

func scanUser(row scanner) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.ClubID, &u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		_, err := r.db.Exec(ctx, `
			INSERT INTO users (id, username, password_hash, role, club_id, profile_picture, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,$8)`,
			u.ID, u.Username, u.PasswordHash, u.Role, u.ClubID, u.ProfilePicture, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrUsernameTaken
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return r.getBy(ctx, "users.get_by_username", `username = $1`, username)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getBy(ctx, "users.get", `id = $1`, id)
}

func (r *UsersRepo) getBy(ctx context.Context, op, cond string, arg any) (user.User, error) {
	var u user.User

	err := r.observe(op, func() error {
		var err error
		u, err = scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+cond, arg))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// UpdateProfile changes the profile picture and/or password hash; nil leaves the column as is
// and an empty picture clears it.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, profilePicture, passwordHash *string) (user.User, error) {
	var u user.User

	err := r.observe("users.update_profile", func() error {
		var err error
		u, err = scanUser(r.db.QueryRow(ctx, `
			UPDATE users SET
				profile_picture = CASE WHEN $2::text IS NULL THEN profile_picture ELSE NULLIF($2::text, '') END,
				password_hash = COALESCE($3, password_hash),
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id, profilePicture, passwordHash,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
