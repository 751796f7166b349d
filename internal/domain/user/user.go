package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"` // never expose hash in JSON
	Role           string    `json:"role"`
	ClubID         string    `json:"clubId"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already in use")
)

type CreateUserRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=60"`
	Password       string `json:"password" binding:"required,min=8,max=128"`
	Role           string `json:"role" binding:"omitempty,oneof=admin member"`
	ClubID         string `json:"clubId" binding:"required,uuid"`
	ProfilePicture string `json:"profilePicture" binding:"omitempty,max=2000000"`
}

// UpdateProfileRequest is a partial update; nil fields are left unchanged.
type UpdateProfileRequest struct {
	ProfilePicture *string `json:"profilePicture" binding:"omitempty,max=2000000"`
	Password       *string `json:"password" binding:"omitempty,min=8,max=128"`
}

func New(req CreateUserRequest, passwordHash string) User {
	now := time.Now().UTC()

	role := req.Role
	if role == "" {
		role = "member"
	}

	return User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		PasswordHash:   passwordHash,
		Role:           role,
		ClubID:         req.ClubID,
		ProfilePicture: req.ProfilePicture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
