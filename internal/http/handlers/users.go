package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leolynk/leolynk/internal/domain/club"
	"github.com/leolynk/leolynk/internal/domain/user"
	"github.com/leolynk/leolynk/internal/security"
)

type UsersRepository interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, id string, profilePicture, passwordHash *string) (user.User, error)
}

type ClubReader interface {
	GetByID(ctx context.Context, id string) (club.Club, error)
}

type UsersHandler struct {
	users UsersRepository
	clubs ClubReader
}

func NewUsersHandler(users UsersRepository, clubs ClubReader) *UsersHandler {
	return &UsersHandler{users: users, clubs: clubs}
}

// CreateUser is the admin-only way accounts come into existence.
func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	if _, err := h.clubs.GetByID(cctx, req.ClubID); err != nil {
		if errors.Is(err, club.ErrNotFound) {
			RespondBadRequest(ctx, "Unknown club", gin.H{"field": "clubId"})
			return
		}
		logError(ctx, "users.create.club", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	hash, err := security.HashPassword(req.Password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		RespondBadRequest(ctx, err.Error(), gin.H{"field": "password"})
		return
	}
	if err != nil {
		logError(ctx, "users.create.hash", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, user.New(req, hash))
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			RespondConflict(ctx, "username_taken", "Username is already in use")
			return
		}
		logError(ctx, "users.create", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *UsersHandler) GetMe(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	u, err := h.users.GetByID(cctx, actor.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "user not found")
			return
		}
		logError(ctx, "users.me", err)
		RespondInternal(ctx, "Could not fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) UpdateMe(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if !BindJSON(ctx, &req) {
		return
	}

	var hash *string
	if req.Password != nil {
		hashed, err := security.HashPassword(*req.Password)
		if errors.Is(err, security.ErrPasswordTooLong) {
			RespondBadRequest(ctx, err.Error(), gin.H{"field": "password"})
			return
		}
		if err != nil {
			logError(ctx, "users.update.hash", err)
			RespondInternal(ctx, "Could not update profile")
			return
		}
		hash = &hashed
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	u, err := h.users.UpdateProfile(cctx, actor.UserID, req.ProfilePicture, hash)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "user not found")
			return
		}
		logError(ctx, "users.update", err)
		RespondInternal(ctx, "Could not update profile")
		return
	}

	ctx.JSON(http.StatusOK, u)
}
