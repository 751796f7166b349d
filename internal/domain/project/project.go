package project

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	StatusPlanned   = "planned"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

type Project struct {
	ID            string          `json:"id"`
	ClubID        string          `json:"clubId"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category,omitempty"`
	Date          time.Time       `json:"date"`
	Status        string          `json:"status"`
	Beneficiaries int             `json:"beneficiaries"`
	ServiceHours  float64         `json:"serviceHours"`
	Participants  int             `json:"participants"`
	Photos        json.RawMessage `json:"photos,omitempty"`
	CreatedBy     string          `json:"createdBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

var ErrNotFound = errors.New("project not found")

type ListProjectsFilter struct {
	ClubID   *string
	Status   *string
	Category *string
	From     *time.Time
	To       *time.Time
	Limit    int
	// keyset position; zero values mean first page
	AfterDate time.Time
	AfterID   string
}

type CreateProjectRequest struct {
	ClubID        string          `json:"clubId" binding:"omitempty,uuid"`
	Title         string          `json:"title" binding:"required,min=2,max=200"`
	Description   string          `json:"description" binding:"omitempty,max=10000"`
	Category      string          `json:"category" binding:"omitempty,max=80"`
	Date          time.Time       `json:"date" binding:"required"`
	Status        string          `json:"status" binding:"omitempty,oneof=planned ongoing completed"`
	Beneficiaries int             `json:"beneficiaries" binding:"omitempty,min=0"`
	ServiceHours  float64         `json:"serviceHours" binding:"omitempty,min=0"`
	Participants  int             `json:"participants" binding:"omitempty,min=0"`
	Photos        json.RawMessage `json:"photos"`
}

// UpdateProjectRequest carries a partial update: nil or empty fields keep the stored value.
type UpdateProjectRequest struct {
	Title         *string         `json:"title" binding:"omitempty,min=2,max=200"`
	Description   *string         `json:"description" binding:"omitempty,max=10000"`
	Category      *string         `json:"category" binding:"omitempty,max=80"`
	Date          *time.Time      `json:"date"`
	Status        *string         `json:"status" binding:"omitempty,oneof=planned ongoing completed"`
	Beneficiaries *int            `json:"beneficiaries" binding:"omitempty,min=0"`
	ServiceHours  *float64        `json:"serviceHours" binding:"omitempty,min=0"`
	Participants  *int            `json:"participants" binding:"omitempty,min=0"`
	Photos        json.RawMessage `json:"photos"`
}

func NewFromCreateRequest(req CreateProjectRequest, clubID, createdBy string) Project {
	now := time.Now().UTC()

	status := req.Status
	if status == "" {
		status = StatusPlanned
	}

	return Project{
		ID:            uuid.NewString(),
		ClubID:        clubID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Date:          req.Date,
		Status:        status,
		Beneficiaries: req.Beneficiaries,
		ServiceHours:  req.ServiceHours,
		Participants:  req.Participants,
		Photos:        req.Photos,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
