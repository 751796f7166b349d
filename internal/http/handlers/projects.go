package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leolynk/leolynk/internal/domain/finance"
	"github.com/leolynk/leolynk/internal/domain/project"
	"github.com/leolynk/leolynk/internal/repo/postgres"
)

type ProjectsRepository interface {
	Create(ctx context.Context, p project.Project) (project.Project, error)
	GetByID(ctx context.Context, id string) (project.Project, error)
	List(ctx context.Context, f project.ListProjectsFilter) ([]project.Project, *string, bool, error)
	Update(ctx context.Context, id string, req project.UpdateProjectRequest) (project.Project, error)
	Delete(ctx context.Context, id string) error
}

type ProjectsHandler struct {
	repo    ProjectsRepository
	records FinanceRepository
}

func NewProjectsHandler(repo ProjectsRepository, records FinanceRepository) *ProjectsHandler {
	return &ProjectsHandler{repo: repo, records: records}
}

func projectClub(p project.Project) string { return p.ClubID }

func (h *ProjectsHandler) CreateProject(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req project.CreateProjectRequest
	if !BindJSON(ctx, &req) {
		return
	}

	clubID, ok := writeClub(ctx, actor, req.ClubID)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	p, err := h.repo.Create(cctx, project.NewFromCreateRequest(req, clubID, actor.UserID))
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			RespondBadRequest(ctx, "Unknown club", gin.H{"field": "clubId"})
			return
		}
		logError(ctx, "projects.create", err)
		RespondInternal(ctx, "Could not create project")
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *ProjectsHandler) ListProjects(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	params, ok := parseListParams(ctx, actor)
	if !ok {
		return
	}
	status, ok := queryOneOf(ctx, "status", project.StatusPlanned, project.StatusOngoing, project.StatusCompleted)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	items, next, hasMore, err := h.repo.List(cctx, project.ListProjectsFilter{
		ClubID:    params.ClubID,
		Status:    status,
		Category:  queryString(ctx, "category"),
		From:      params.From,
		To:        params.To,
		Limit:     params.Limit,
		AfterDate: params.AfterDate,
		AfterID:   params.AfterID,
	})
	if err != nil {
		logError(ctx, "projects.list", err)
		RespondInternal(ctx, "Could not list projects")
		return
	}

	respondPage(ctx, items, next, hasMore)
}

func (h *ProjectsHandler) GetProjectByID(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	p, ok := loadAuthorized(ctx, actor, "project", h.repo.GetByID, projectClub, project.ErrNotFound)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

func (h *ProjectsHandler) UpdateProject(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req project.UpdateProjectRequest
	if !BindJSON(ctx, &req) {
		return
	}

	current, ok := loadAuthorized(ctx, actor, "project", h.repo.GetByID, projectClub, project.ErrNotFound)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	p, err := h.repo.Update(cctx, current.ID, req)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "project not found")
			return
		}
		logError(ctx, "projects.update", err, "id", current.ID)
		RespondInternal(ctx, "Could not update project")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProjectsHandler) DeleteProject(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	current, ok := loadAuthorized(ctx, actor, "project", h.repo.GetByID, projectClub, project.ErrNotFound)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	if err := h.repo.Delete(cctx, current.ID); err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "project not found")
			return
		}
		logError(ctx, "projects.delete", err, "id", current.ID)
		RespondInternal(ctx, "Could not delete project")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ListProjectRecords lists the financial records linked to a project.
func (h *ProjectsHandler) ListProjectRecords(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	p, ok := loadAuthorized(ctx, actor, "project", h.repo.GetByID, projectClub, project.ErrNotFound)
	if !ok {
		return
	}

	params, ok := parseListParams(ctx, actor)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	clubID := p.ClubID
	items, next, hasMore, err := h.records.List(cctx, finance.ListRecordsFilter{
		ClubID:    &clubID,
		ProjectID: &p.ID,
		Limit:     params.Limit,
		AfterDate: params.AfterDate,
		AfterID:   params.AfterID,
	})
	if err != nil {
		logError(ctx, "projects.records", err, "id", p.ID)
		RespondInternal(ctx, "Could not list financial records")
		return
	}

	respondPage(ctx, items, next, hasMore)
}
