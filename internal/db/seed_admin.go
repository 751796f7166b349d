package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/leolynk/leolynk/internal/access"
	"github.com/leolynk/leolynk/internal/config"
	"github.com/leolynk/leolynk/internal/domain/club"
	"github.com/leolynk/leolynk/internal/domain/user"
	"github.com/leolynk/leolynk/internal/security"
)

type ClubStore interface {
	GetByName(ctx context.Context, name string) (club.Club, error)
	Create(ctx context.Context, c club.Club) (club.Club, error)
}

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// EnsureAdminUser creates the admin club and admin account from config when they are
// missing. It is a no-op without ADMIN_USERNAME / ADMIN_PASSWORD.
func EnsureAdminUser(ctx context.Context, clubs ClubStore, users UserStore, cfg config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists
	_, err := users.GetByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	c, err := clubs.GetByName(ctx, cfg.AdminClubName)
	if errors.Is(err, club.ErrNotFound) {
		c, err = clubs.Create(ctx, club.NewFromCreateRequest(club.CreateClubRequest{Name: cfg.AdminClubName}))
	}
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	u := user.New(user.CreateUserRequest{
		Username: cfg.AdminUsername,
		Role:     access.RoleAdmin,
		ClubID:   c.ID,
	}, hash)

	if _, err = users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			return nil
		}
		return err
	}

	slog.Default().InfoContext(ctx, "seed.admin_created", "username", u.Username, "club_id", c.ID)
	return nil
}
