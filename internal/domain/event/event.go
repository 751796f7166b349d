package event

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
	StatusCancelled = "cancelled"
)

type Event struct {
	ID            string          `json:"id"`
	ClubID        string          `json:"clubId"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       *time.Time      `json:"endDate,omitempty"`
	Venue         string          `json:"venue,omitempty"`
	Status        string          `json:"status"`
	Type          string          `json:"type,omitempty"`
	Goals         json.RawMessage `json:"goals,omitempty"`
	Collaborators json.RawMessage `json:"collaborators,omitempty"`
	Documents     json.RawMessage `json:"documents,omitempty"`
	ImpactMetrics json.RawMessage `json:"impactMetrics,omitempty"`
	Highlight     bool            `json:"highlight"`
	Mood          string          `json:"mood,omitempty"`
	CreatedBy     string          `json:"createdBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// with pointers if optional, it will be nil
type ListEventsFilter struct {
	ClubID    *string
	Status    *string
	Type      *string
	Highlight *bool
	From      *time.Time
	To        *time.Time
	Query     *string
	Limit     int
	AfterDate time.Time
	AfterID   string
}

var (
	ErrNotFound      = errors.New("event not found")
	ErrInvalidWindow = errors.New("event must end after it starts")
)

type CreateEventRequest struct {
	ClubID        string          `json:"clubId" binding:"omitempty,uuid"`
	Title         string          `json:"title" binding:"required,min=3,max=200"`
	Description   string          `json:"description" binding:"omitempty,max=10000"`
	StartDate     time.Time       `json:"startDate" binding:"required"`
	EndDate       *time.Time      `json:"endDate"`
	Venue         string          `json:"venue" binding:"omitempty,max=200"`
	Status        string          `json:"status" binding:"omitempty,oneof=planned ongoing completed cancelled"`
	Type          string          `json:"type" binding:"omitempty,max=60"`
	Goals         json.RawMessage `json:"goals"`
	Collaborators json.RawMessage `json:"collaborators"`
	Documents     json.RawMessage `json:"documents"`
	ImpactMetrics json.RawMessage `json:"impactMetrics"`
	Highlight     bool            `json:"highlight"`
	Mood          string          `json:"mood" binding:"omitempty,max=16"`
}

// UpdateEventRequest is a partial update; nil fields keep the stored value and
// EndDate takes "" to clear.
type UpdateEventRequest struct {
	Title         *string         `json:"title" binding:"omitempty,min=3,max=200"`
	Description   *string         `json:"description" binding:"omitempty,max=10000"`
	StartDate     *time.Time      `json:"startDate"`
	EndDate       *string         `json:"endDate" binding:"omitempty,rfc3339_or_empty"`
	Venue         *string         `json:"venue" binding:"omitempty,max=200"`
	Status        *string         `json:"status" binding:"omitempty,oneof=planned ongoing completed cancelled"`
	Type          *string         `json:"type" binding:"omitempty,max=60"`
	Goals         json.RawMessage `json:"goals"`
	Collaborators json.RawMessage `json:"collaborators"`
	Documents     json.RawMessage `json:"documents"`
	ImpactMetrics json.RawMessage `json:"impactMetrics"`
	Highlight     *bool           `json:"highlight"`
	Mood          *string         `json:"mood" binding:"omitempty,max=16"`
}

func (req CreateEventRequest) Validate() error {
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return ErrInvalidWindow
	}
	return nil
}

func NewFromCreateRequest(req CreateEventRequest, clubID, createdBy string) Event {
	now := time.Now().UTC()

	status := req.Status
	if status == "" {
		status = StatusPlanned
	}

	return Event{
		ID:            uuid.NewString(),
		ClubID:        clubID,
		Title:         req.Title,
		Description:   req.Description,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Venue:         req.Venue,
		Status:        status,
		Type:          req.Type,
		Goals:         req.Goals,
		Collaborators: req.Collaborators,
		Documents:     req.Documents,
		ImpactMetrics: req.ImpactMetrics,
		Highlight:     req.Highlight,
		Mood:          req.Mood,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
