package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leolynk/leolynk/internal/domain/meeting"
	"github.com/leolynk/leolynk/internal/domain/mindmap"
	"github.com/leolynk/leolynk/internal/repo/postgres"
)

type MeetingsRepository interface {
	Create(ctx context.Context, m meeting.Meeting) (meeting.Meeting, error)
	GetByID(ctx context.Context, id string) (meeting.Meeting, error)
	List(ctx context.Context, f meeting.ListMeetingsFilter) ([]meeting.Meeting, *string, bool, error)
	Update(ctx context.Context, id string, req meeting.UpdateMeetingRequest) (meeting.Meeting, error)
	Delete(ctx context.Context, id string) error
}

type MeetingsHandler struct {
	repo  MeetingsRepository
	links LinkResolver
}

func NewMeetingsHandler(repo MeetingsRepository, links LinkResolver) *MeetingsHandler {
	return &MeetingsHandler{repo: repo, links: links}
}

func meetingClub(m meeting.Meeting) string { return m.ClubID }

func (h *MeetingsHandler) CreateMeeting(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req meeting.CreateMeetingRequest
	if !BindJSON(ctx, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		RespondBadRequest(ctx, err.Error(), gin.H{"field": "endAt"})
		return
	}

	clubID, ok := writeClub(ctx, actor, req.ClubID)
	if !ok {
		return
	}
	if !checkLink(ctx, h.links, actor, clubID, mindmap.EntityProject, req.ProjectID, "projectId") {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	m, err := h.repo.Create(cctx, meeting.NewFromCreateRequest(req, clubID, actor.UserID))
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			RespondBadRequest(ctx, "Unknown club or project", nil)
			return
		}
		logError(ctx, "meetings.create", err)
		RespondInternal(ctx, "Could not create meeting")
		return
	}

	ctx.JSON(http.StatusCreated, m)
}

func (h *MeetingsHandler) ListMeetings(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	params, ok := parseListParams(ctx, actor)
	if !ok {
		return
	}
	status, ok := queryOneOf(ctx, "status", meeting.StatusScheduled, meeting.StatusCompleted, meeting.StatusCancelled)
	if !ok {
		return
	}
	projectID, ok := queryUUID(ctx, "projectId")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	items, next, hasMore, err := h.repo.List(cctx, meeting.ListMeetingsFilter{
		ClubID:    params.ClubID,
		Status:    status,
		Type:      queryString(ctx, "type"),
		ProjectID: projectID,
		From:      params.From,
		To:        params.To,
		Limit:     params.Limit,
		AfterDate: params.AfterDate,
		AfterID:   params.AfterID,
	})
	if err != nil {
		logError(ctx, "meetings.list", err)
		RespondInternal(ctx, "Could not list meetings")
		return
	}

	respondPage(ctx, items, next, hasMore)
}

func (h *MeetingsHandler) GetMeetingByID(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	m, ok := loadAuthorized(ctx, actor, "meeting", h.repo.GetByID, meetingClub, meeting.ErrNotFound)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, m)
}

func (h *MeetingsHandler) UpdateMeeting(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req meeting.UpdateMeetingRequest
	if !BindJSON(ctx, &req) {
		return
	}

	current, ok := loadAuthorized(ctx, actor, "meeting", h.repo.GetByID, meetingClub, meeting.ErrNotFound)
	if !ok {
		return
	}
	if !validWindow(current.StartAt, req.StartAt, current.EndAt, req.EndAt) {
		RespondBadRequest(ctx, meeting.ErrInvalidWindow.Error(), gin.H{"field": "endAt"})
		return
	}
	if req.ProjectID != nil && !checkLink(ctx, h.links, actor, current.ClubID, mindmap.EntityProject, *req.ProjectID, "projectId") {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	m, err := h.repo.Update(cctx, current.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, meeting.ErrNotFound):
			RespondNotFound(ctx, "meeting not found")
		case postgres.IsForeignKeyViolation(err):
			RespondBadRequest(ctx, "Unknown project", gin.H{"field": "projectId"})
		default:
			logError(ctx, "meetings.update", err, "id", current.ID)
			RespondInternal(ctx, "Could not update meeting")
		}
		return
	}

	ctx.JSON(http.StatusOK, m)
}

func (h *MeetingsHandler) DeleteMeeting(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	current, ok := loadAuthorized(ctx, actor, "meeting", h.repo.GetByID, meetingClub, meeting.ErrNotFound)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	if err := h.repo.Delete(cctx, current.ID); err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			RespondNotFound(ctx, "meeting not found")
			return
		}
		logError(ctx, "meetings.delete", err, "id", current.ID)
		RespondInternal(ctx, "Could not delete meeting")
		return
	}

	ctx.Status(http.StatusNoContent)
}
