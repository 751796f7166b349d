package club

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Club struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	District  string    `json:"district,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound  = errors.New("club not found")
	ErrNameTaken = errors.New("club name already exists")
)

type CreateClubRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	District string `json:"district" binding:"omitempty,max=40"`
}

func NewFromCreateRequest(req CreateClubRequest) Club {
	now := time.Now().UTC()
	return Club{
		ID:        uuid.NewString(),
		Name:      req.Name,
		District:  req.District,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
