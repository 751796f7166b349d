package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leolynk/leolynk/internal/domain/club"
	"github.com/leolynk/leolynk/internal/utils"
)

type ClubsRepository interface {
	Create(ctx context.Context, c club.Club) (club.Club, error)
	GetByID(ctx context.Context, id string) (club.Club, error)
	List(ctx context.Context) ([]club.Club, error)
}

type ClubsHandler struct {
	repo ClubsRepository
}

func NewClubsHandler(repo ClubsRepository) *ClubsHandler {
	return &ClubsHandler{repo: repo}
}

func (h *ClubsHandler) CreateClub(ctx *gin.Context) {
	var req club.CreateClubRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	c, err := h.repo.Create(cctx, club.NewFromCreateRequest(req))
	if err != nil {
		if errors.Is(err, club.ErrNameTaken) {
			RespondConflict(ctx, "club_exists", "A club with this name already exists")
			return
		}
		logError(ctx, "clubs.create", err)
		RespondInternal(ctx, "Could not create club")
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

func (h *ClubsHandler) ListClubs(ctx *gin.Context) {
	cctx, cancel := requestCtx(ctx)
	defer cancel()

	clubs, err := h.repo.List(cctx)
	if err != nil {
		logError(ctx, "clubs.list", err)
		RespondInternal(ctx, "Could not list clubs")
		return
	}
	if clubs == nil {
		clubs = []club.Club{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": clubs,
		"count": len(clubs),
	})
}

func (h *ClubsHandler) GetClubByID(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !utils.IsUUID(id) {
		RespondInvalidID(ctx, "club id must be a valid UUID")
		return
	}
	if !actor.CanAccess(id) {
		RespondForbidden(ctx, "You do not have access to this club")
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	c, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, club.ErrNotFound) {
			RespondNotFound(ctx, "club not found")
			return
		}
		logError(ctx, "clubs.get", err, "id", id)
		RespondInternal(ctx, "Could not fetch club")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, c)
}
