package meeting

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Meeting struct {
	ID          string          `json:"id"`
	ClubID      string          `json:"clubId"`
	Title       string          `json:"title"`
	StartAt     time.Time       `json:"startAt"`
	EndAt       *time.Time      `json:"endAt,omitempty"`
	Venue       string          `json:"venue,omitempty"`
	Type        string          `json:"type,omitempty"`
	Status      string          `json:"status"`
	Agenda      json.RawMessage `json:"agenda,omitempty"`
	Minutes     json.RawMessage `json:"minutes,omitempty"`
	Attendees   json.RawMessage `json:"attendees,omitempty"`
	ActionItems json.RawMessage `json:"actionItems,omitempty"`
	ProjectID   *string         `json:"projectId,omitempty"`
	CreatedBy   string          `json:"createdBy,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

var (
	ErrNotFound      = errors.New("meeting not found")
	ErrInvalidWindow = errors.New("meeting must end after it starts")
)

type ListMeetingsFilter struct {
	ClubID    *string
	Status    *string
	Type      *string
	ProjectID *string
	From      *time.Time
	To        *time.Time
	Limit     int
	AfterDate time.Time
	AfterID   string
}

type CreateMeetingRequest struct {
	ClubID      string          `json:"clubId" binding:"omitempty,uuid"`
	Title       string          `json:"title" binding:"required,min=2,max=200"`
	StartAt     time.Time       `json:"startAt" binding:"required"`
	EndAt       *time.Time      `json:"endAt"`
	Venue       string          `json:"venue" binding:"omitempty,max=200"`
	Type        string          `json:"type" binding:"omitempty,max=60"`
	Status      string          `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	Agenda      json.RawMessage `json:"agenda"`
	Minutes     json.RawMessage `json:"minutes"`
	Attendees   json.RawMessage `json:"attendees"`
	ActionItems json.RawMessage `json:"actionItems"`
	ProjectID   string          `json:"projectId" binding:"omitempty,uuid"`
}

// UpdateMeetingRequest is a partial update. EndAt and ProjectID take "" to clear.
type UpdateMeetingRequest struct {
	Title       *string         `json:"title" binding:"omitempty,min=2,max=200"`
	StartAt     *time.Time      `json:"startAt"`
	EndAt       *string         `json:"endAt" binding:"omitempty,rfc3339_or_empty"`
	Venue       *string         `json:"venue" binding:"omitempty,max=200"`
	Type        *string         `json:"type" binding:"omitempty,max=60"`
	Status      *string         `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	Agenda      json.RawMessage `json:"agenda"`
	Minutes     json.RawMessage `json:"minutes"`
	Attendees   json.RawMessage `json:"attendees"`
	ActionItems json.RawMessage `json:"actionItems"`
	ProjectID   *string         `json:"projectId" binding:"omitempty,uuid_or_empty"`
}

func (req CreateMeetingRequest) Validate() error {
	if req.EndAt != nil && req.EndAt.Before(req.StartAt) {
		return ErrInvalidWindow
	}
	return nil
}

func NewFromCreateRequest(req CreateMeetingRequest, clubID, createdBy string) Meeting {
	now := time.Now().UTC()

	status := req.Status
	if status == "" {
		status = StatusScheduled
	}

	var projectID *string
	if req.ProjectID != "" {
		id := req.ProjectID
		projectID = &id
	}

	return Meeting{
		ID:          uuid.NewString(),
		ClubID:      clubID,
		Title:       req.Title,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Venue:       req.Venue,
		Type:        req.Type,
		Status:      status,
		Agenda:      req.Agenda,
		Minutes:     req.Minutes,
		Attendees:   req.Attendees,
		ActionItems: req.ActionItems,
		ProjectID:   projectID,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
