package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leolynk/leolynk/internal/domain/mindmap"
	"github.com/leolynk/leolynk/internal/repo/postgres"
)

type MindmapsRepository interface {
	Create(ctx context.Context, m mindmap.Mindmap) (mindmap.Mindmap, error)
	GetByID(ctx context.Context, id string) (mindmap.Mindmap, error)
	List(ctx context.Context, f mindmap.ListMindmapsFilter) ([]mindmap.Mindmap, *string, bool, error)
	Update(ctx context.Context, id string, req mindmap.UpdateMindmapRequest) (mindmap.Mindmap, error)
	Delete(ctx context.Context, id string) error
}

type MindmapsHandler struct {
	repo  MindmapsRepository
	links LinkResolver
}

func NewMindmapsHandler(repo MindmapsRepository, links LinkResolver) *MindmapsHandler {
	return &MindmapsHandler{repo: repo, links: links}
}

func mindmapClub(m mindmap.Mindmap) string { return m.ClubID }

func (h *MindmapsHandler) CreateMindmap(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req mindmap.CreateMindmapRequest
	if !BindJSON(ctx, &req) {
		return
	}
	if (req.EntityType == "") != (req.EntityID == "") {
		RespondBadRequest(ctx, "entityType and entityId must be set together", gin.H{"field": "entityId"})
		return
	}

	clubID, ok := writeClub(ctx, actor, req.ClubID)
	if !ok {
		return
	}
	if !checkLink(ctx, h.links, actor, clubID, req.EntityType, req.EntityID, "entityId") {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	m, err := h.repo.Create(cctx, mindmap.NewFromCreateRequest(req, clubID, actor.UserID))
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			RespondBadRequest(ctx, "Unknown club", gin.H{"field": "clubId"})
			return
		}
		logError(ctx, "mindmaps.create", err)
		RespondInternal(ctx, "Could not create mindmap")
		return
	}

	ctx.JSON(http.StatusCreated, m)
}

func (h *MindmapsHandler) ListMindmaps(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	params, ok := parseListParams(ctx, actor)
	if !ok {
		return
	}
	entityType, ok := queryOneOf(ctx, "entityType", mindmap.EntityTypes...)
	if !ok {
		return
	}
	entityID, ok := queryUUID(ctx, "entityId")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	items, next, hasMore, err := h.repo.List(cctx, mindmap.ListMindmapsFilter{
		ClubID:     params.ClubID,
		EntityType: entityType,
		EntityID:   entityID,
		Limit:      params.Limit,
		AfterDate:  params.AfterDate,
		AfterID:    params.AfterID,
	})
	if err != nil {
		logError(ctx, "mindmaps.list", err)
		RespondInternal(ctx, "Could not list mindmaps")
		return
	}

	respondPage(ctx, items, next, hasMore)
}

func (h *MindmapsHandler) GetMindmapByID(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	m, ok := loadAuthorized(ctx, actor, "mindmap", h.repo.GetByID, mindmapClub, mindmap.ErrNotFound)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, m)
}

// GetMindmapTree returns the stored content parsed into a title/children tree.
func (h *MindmapsHandler) GetMindmapTree(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	m, ok := loadAuthorized(ctx, actor, "mindmap", h.repo.GetByID, mindmapClub, mindmap.ErrNotFound)
	if !ok {
		return
	}

	tree, err := mindmap.ParseTree(m.Content, m.Title)
	if err != nil {
		if errors.Is(err, mindmap.ErrInvalidGraph) {
			RespondError(ctx, http.StatusUnprocessableEntity, "invalid_content", "Mindmap content could not be parsed", gin.H{"reason": err.Error()})
			return
		}
		logError(ctx, "mindmaps.tree", err, "id", m.ID)
		RespondInternal(ctx, "Could not parse mindmap")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, tree)
}

func (h *MindmapsHandler) UpdateMindmap(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	var req mindmap.UpdateMindmapRequest
	if !BindJSON(ctx, &req) {
		return
	}

	current, ok := loadAuthorized(ctx, actor, "mindmap", h.repo.GetByID, mindmapClub, mindmap.ErrNotFound)
	if !ok {
		return
	}
	if req.EntityType != nil || req.EntityID != nil {
		entityType, entityID := linkAfterUpdate(current, req)
		if (entityType == "") != (entityID == "") {
			RespondBadRequest(ctx, "entityType and entityId must be set together", gin.H{"field": "entityId"})
			return
		}
		if !checkLink(ctx, h.links, actor, current.ClubID, entityType, entityID, "entityId") {
			return
		}
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	m, err := h.repo.Update(cctx, current.ID, req)
	if err != nil {
		if errors.Is(err, mindmap.ErrNotFound) {
			RespondNotFound(ctx, "mindmap not found")
			return
		}
		logError(ctx, "mindmaps.update", err, "id", current.ID)
		RespondInternal(ctx, "Could not update mindmap")
		return
	}

	ctx.JSON(http.StatusOK, m)
}

func (h *MindmapsHandler) DeleteMindmap(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	current, ok := loadAuthorized(ctx, actor, "mindmap", h.repo.GetByID, mindmapClub, mindmap.ErrNotFound)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	if err := h.repo.Delete(cctx, current.ID); err != nil {
		if errors.Is(err, mindmap.ErrNotFound) {
			RespondNotFound(ctx, "mindmap not found")
			return
		}
		logError(ctx, "mindmaps.delete", err, "id", current.ID)
		RespondInternal(ctx, "Could not delete mindmap")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// linkAfterUpdate is the entity link a mindmap will have once req is applied.
func linkAfterUpdate(current mindmap.Mindmap, req mindmap.UpdateMindmapRequest) (string, string) {
	entityType, entityID := current.EntityType, current.EntityID
	if req.EntityType != nil {
		entityType = req.EntityType
	}
	if req.EntityID != nil {
		entityID = req.EntityID
	}

	var t, id string
	if entityType != nil {
		t = *entityType
	}
	if entityID != nil {
		id = *entityID
	}
	return t, id
}
