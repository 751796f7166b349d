package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leolynk/leolynk/internal/domain/event"
	"github.com/leolynk/leolynk/internal/repo/postgres"
)

type EventsRepository interface {
	Create(ctx context.Context, e event.Event) (event.Event, error)
	GetByID(ctx context.Context, id string) (event.Event, error)
	List(ctx context.Context, f event.ListEventsFilter) ([]event.Event, *string, bool, error)
	Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error)
	Delete(ctx context.Context, id string) error
}

type EventsHandler struct {
	repo EventsRepository
}

func NewEventsHandler(repo EventsRepository) *EventsHandler {
	return &EventsHandler{repo: repo}
}

func eventClub(e event.Event) string { return e.ClubID }

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req event.CreateEventRequest
	if !BindJSON(ctx, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		RespondBadRequest(ctx, err.Error(), gin.H{"field": "endDate"})
		return
	}

	clubID, ok := writeClub(ctx, actor, req.ClubID)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	e, err := h.repo.Create(cctx, event.NewFromCreateRequest(req, clubID, actor.UserID))
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			RespondBadRequest(ctx, "Unknown club", gin.H{"field": "clubId"})
			return
		}
		logError(ctx, "events.create", err)
		RespondInternal(ctx, "Could not create event")
		return
	}

	ctx.JSON(http.StatusCreated, e)
}

func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	params, ok := parseListParams(ctx, actor)
	if !ok {
		return
	}
	status, ok := queryOneOf(ctx, "status", event.StatusPlanned, event.StatusOngoing, event.StatusCompleted, event.StatusCancelled)
	if !ok {
		return
	}
	highlight, ok := queryBool(ctx, "highlight")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	items, next, hasMore, err := h.repo.List(cctx, event.ListEventsFilter{
		ClubID:    params.ClubID,
		Status:    status,
		Type:      queryString(ctx, "type"),
		Highlight: highlight,
		From:      params.From,
		To:        params.To,
		Query:     queryString(ctx, "q"),
		Limit:     params.Limit,
		AfterDate: params.AfterDate,
		AfterID:   params.AfterID,
	})
	if err != nil {
		logError(ctx, "events.list", err)
		RespondInternal(ctx, "Could not list events")
		return
	}

	respondPage(ctx, items, next, hasMore)
}

func (h *EventsHandler) GetEventByID(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	e, ok := loadAuthorized(ctx, actor, "event", h.repo.GetByID, eventClub, event.ErrNotFound)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, e)
}

func (h *EventsHandler) UpdateEvent(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req event.UpdateEventRequest
	if !BindJSON(ctx, &req) {
		return
	}

	current, ok := loadAuthorized(ctx, actor, "event", h.repo.GetByID, eventClub, event.ErrNotFound)
	if !ok {
		return
	}
	if !validWindow(current.StartDate, req.StartDate, current.EndDate, req.EndDate) {
		RespondBadRequest(ctx, event.ErrInvalidWindow.Error(), gin.H{"field": "endDate"})
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	e, err := h.repo.Update(cctx, current.ID, req)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "event not found")
			return
		}
		logError(ctx, "events.update", err, "id", current.ID)
		RespondInternal(ctx, "Could not update event")
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EventsHandler) DeleteEvent(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	current, ok := loadAuthorized(ctx, actor, "event", h.repo.GetByID, eventClub, event.ErrNotFound)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	if err := h.repo.Delete(cctx, current.ID); err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "event not found")
			return
		}
		logError(ctx, "events.delete", err, "id", current.ID)
		RespondInternal(ctx, "Could not delete event")
		return
	}

	ctx.Status(http.StatusNoContent)
}
