package mindmap

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Mindmap struct {
	ID          string    `json:"id"`
	ClubID      string    `json:"clubId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content"`
	EntityType  *string   `json:"entityType,omitempty"`
	EntityID    *string   `json:"entityId,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Entity types a mindmap can be attached to.
const (
	EntityProject = "project"
	EntityMeeting = "meeting"
	EntityEvent   = "event"
)

var EntityTypes = []string{EntityProject, EntityMeeting, EntityEvent}

var ErrNotFound = errors.New("mindmap not found")

type ListMindmapsFilter struct {
	ClubID     *string
	EntityType *string
	EntityID   *string
	Limit      int
	AfterDate  time.Time
	AfterID    string
}

type CreateMindmapRequest struct {
	ClubID      string `json:"clubId" binding:"omitempty,uuid"`
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Content     string `json:"content" binding:"max=200000"`
	EntityType  string `json:"entityType" binding:"omitempty,oneof=project meeting event"`
	EntityID    string `json:"entityId" binding:"omitempty,uuid"`
}

// UpdateMindmapRequest is a partial update. EntityType and EntityID take "" to unlink.
type UpdateMindmapRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Content     *string `json:"content" binding:"omitempty,max=200000"`
	EntityType  *string `json:"entityType" binding:"omitempty,entity_type_or_empty"`
	EntityID    *string `json:"entityId" binding:"omitempty,uuid_or_empty"`
}

func NewFromCreateRequest(req CreateMindmapRequest, clubID, createdBy string) Mindmap {
	now := time.Now().UTC()

	m := Mindmap{
		ID:          uuid.NewString(),
		ClubID:      clubID,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.EntityType != "" {
		et := req.EntityType
		m.EntityType = &et
	}
	if req.EntityID != "" {
		id := req.EntityID
		m.EntityID = &id
	}
	return m
}
