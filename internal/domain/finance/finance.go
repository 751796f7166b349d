package finance

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"

	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusProjected = "projected"
)

// Record is a single income or expense line. Amount is stored as NUMERIC(12,2).
type Record struct {
	ID          string    `json:"id"`
	ClubID      string    `json:"clubId"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Category    string    `json:"category,omitempty"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	ProjectID   *string   `json:"projectId,omitempty"`
	Receipt     *string   `json:"receipt,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("financial record not found")

type ListRecordsFilter struct {
	ClubID    *string
	Type      *string
	Status    *string
	Category  *string
	ProjectID *string
	From      *time.Time
	To        *time.Time
	Limit     int
	AfterDate time.Time
	AfterID   string
}

type CreateRecordRequest struct {
	ClubID      string    `json:"clubId" binding:"omitempty,uuid"`
	Type        string    `json:"type" binding:"required,oneof=income expense"`
	Status      string    `json:"status" binding:"omitempty,oneof=completed pending projected"`
	Category    string    `json:"category" binding:"omitempty,max=80"`
	Amount      float64   `json:"amount" binding:"required,gt=0,lt=10000000000"`
	Description string    `json:"description" binding:"omitempty,max=2000"`
	Date        time.Time `json:"date" binding:"required"`
	ProjectID   string    `json:"projectId" binding:"omitempty,uuid"`
	Receipt     string    `json:"receipt"`
}

// UpdateRecordRequest is a partial update. ProjectID and Receipt take "" to clear.
type UpdateRecordRequest struct {
	Type        *string    `json:"type" binding:"omitempty,oneof=income expense"`
	Status      *string    `json:"status" binding:"omitempty,oneof=completed pending projected"`
	Category    *string    `json:"category" binding:"omitempty,max=80"`
	Amount      *float64   `json:"amount" binding:"omitempty,gt=0,lt=10000000000"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	Date        *time.Time `json:"date"`
	ProjectID   *string    `json:"projectId" binding:"omitempty,uuid_or_empty"`
	Receipt     *string    `json:"receipt"`
}

func NewFromCreateRequest(req CreateRecordRequest, clubID, createdBy string) Record {
	now := time.Now().UTC()

	status := req.Status
	if status == "" {
		status = StatusCompleted
	}

	return Record{
		ID:          uuid.NewString(),
		ClubID:      clubID,
		Type:        req.Type,
		Status:      status,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
		ProjectID:   optional(req.ProjectID),
		Receipt:     optional(req.Receipt),
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
