package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leolynk/leolynk/internal/domain/finance"
	"github.com/leolynk/leolynk/internal/domain/mindmap"
	"github.com/leolynk/leolynk/internal/repo/postgres"
)

type FinanceRepository interface {
	Create(ctx context.Context, rec finance.Record) (finance.Record, error)
	GetByID(ctx context.Context, id string) (finance.Record, error)
	List(ctx context.Context, f finance.ListRecordsFilter) ([]finance.Record, *string, bool, error)
	Update(ctx context.Context, id string, req finance.UpdateRecordRequest) (finance.Record, error)
	Delete(ctx context.Context, id string) error
}

type FinanceHandler struct {
	repo  FinanceRepository
	links LinkResolver
}

func NewFinanceHandler(repo FinanceRepository, links LinkResolver) *FinanceHandler {
	return &FinanceHandler{repo: repo, links: links}
}

func recordClub(r finance.Record) string { return r.ClubID }

func (h *FinanceHandler) CreateRecord(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req finance.CreateRecordRequest
	if !BindJSON(ctx, &req) {
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

	rec, err := h.repo.Create(cctx, finance.NewFromCreateRequest(req, clubID, actor.UserID))
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			RespondBadRequest(ctx, "Unknown club or project", nil)
			return
		}
		logError(ctx, "finance.create", err)
		RespondInternal(ctx, "Could not create financial record")
		return
	}

	ctx.JSON(http.StatusCreated, rec)
}

func (h *FinanceHandler) ListRecords(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	params, ok := parseListParams(ctx, actor)
	if !ok {
		return
	}
	typ, ok := queryOneOf(ctx, "type", finance.TypeIncome, finance.TypeExpense)
	if !ok {
		return
	}
	status, ok := queryOneOf(ctx, "status", finance.StatusCompleted, finance.StatusPending, finance.StatusProjected)
	if !ok {
		return
	}
	projectID, ok := queryUUID(ctx, "projectId")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	items, next, hasMore, err := h.repo.List(cctx, finance.ListRecordsFilter{
		ClubID:    params.ClubID,
		Type:      typ,
		Status:    status,
		Category:  queryString(ctx, "category"),
		ProjectID: projectID,
		From:      params.From,
		To:        params.To,
		Limit:     params.Limit,
		AfterDate: params.AfterDate,
		AfterID:   params.AfterID,
	})
	if err != nil {
		logError(ctx, "finance.list", err)
		RespondInternal(ctx, "Could not list financial records")
		return
	}

	respondPage(ctx, items, next, hasMore)
}

func (h *FinanceHandler) GetRecordByID(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	rec, ok := loadAuthorized(ctx, actor, "financial record", h.repo.GetByID, recordClub, finance.ErrNotFound)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, rec)
}

func (h *FinanceHandler) UpdateRecord(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req finance.UpdateRecordRequest
	if !BindJSON(ctx, &req) {
		return
	}

	current, ok := loadAuthorized(ctx, actor, "financial record", h.repo.GetByID, recordClub, finance.ErrNotFound)
	if !ok {
		return
	}
	if req.ProjectID != nil && !checkLink(ctx, h.links, actor, current.ClubID, mindmap.EntityProject, *req.ProjectID, "projectId") {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	rec, err := h.repo.Update(cctx, current.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, finance.ErrNotFound):
			RespondNotFound(ctx, "financial record not found")
		case postgres.IsForeignKeyViolation(err):
			RespondBadRequest(ctx, "Unknown project", gin.H{"field": "projectId"})
		default:
			logError(ctx, "finance.update", err, "id", current.ID)
			RespondInternal(ctx, "Could not update financial record")
		}
		return
	}

	ctx.JSON(http.StatusOK, rec)
}

func (h *FinanceHandler) DeleteRecord(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	current, ok := loadAuthorized(ctx, actor, "financial record", h.repo.GetByID, recordClub, finance.ErrNotFound)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	if err := h.repo.Delete(cctx, current.ID); err != nil {
		if errors.Is(err, finance.ErrNotFound) {
			RespondNotFound(ctx, "financial record not found")
			return
		}
		logError(ctx, "finance.delete", err, "id", current.ID)
		RespondInternal(ctx, "Could not delete financial record")
		return
	}

	ctx.Status(http.StatusNoContent)
}
