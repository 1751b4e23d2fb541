package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vietanh2810/callin-contest-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/callin-contest-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/callin-contest-api/internal/domain"
	"github.com/vietanh2810/callin-contest-api/internal/service"
)

type ParticipantService interface {
	GetParticipant(ctx context.Context, id string) (domain.Participant, error)
	ListParticipants(ctx context.Context, filter domain.ParticipantFilter, page domain.Page) ([]domain.Participant, int64, error)
	UpdateParticipant(ctx context.Context, id string, changes domain.ParticipantChanges) (domain.Participant, error)
	ResetWinner(ctx context.Context, id string) (domain.Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
	Stats(ctx context.Context) (domain.ParticipantStats, error)
	VerifyIdentifier(ctx context.Context, id, identifier string) (bool, error)
}

type ParticipantHandler struct {
	svc ParticipantService
}

func NewParticipantHandler(svc ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{
		svc: svc,
	}
}

func (h *ParticipantHandler) renderServiceErr(ctx *gin.Context, op string, id string, err error) {
	switch {
	case errors.Is(err, service.ErrParticipantNotFound):
		response.RenderErr(ctx, response.ErrNotFound("participant", "id", id))
	case errors.Is(err, service.ErrUnauthorizedFieldWrite):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	default:
		response.RenderErr(ctx, storeOrInternalErr(fmt.Errorf("%s -> %w", op, err)))
	}
}

// HandleListParticipants godoc
// @Summary      List participants
// @Tags         participants
// @Produce      json
// @Param        page       query  int     false  "page number, starting at 1"
// @Param        page_size  query  int     false  "page size, at most 100"
// @Param        winners    query  bool    false  "only winners or only non-winners"
// @Param        is_family  query  bool    false  "family registrations"
// @Param        status     query  string  false  "active, inactive or blocked"
// @Param        search     query  string  false  "matches name or phone"
// @Success      200  {object}  response.ParticipantList
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Router       /participants [get]
// @Security BearerAuth
func (h *ParticipantHandler) HandleListParticipants(ctx *gin.Context) {
	var q request.ListParticipantsQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := q.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	filter, page := q.Filter()
	participants, total, err := h.svc.ListParticipants(ctx.Request.Context(), filter, page)
	if err != nil {
		h.renderServiceErr(ctx, "v1.HandleListParticipants -> h.svc.ListParticipants", "", err)
		return
	}

	items := make([]response.Participant, len(participants))
	for i, p := range participants {
		items[i] = response.NewParticipant(p)
	}

	ctx.JSON(http.StatusOK, response.ParticipantList{
		Items:    items,
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	})
}

// HandleGetParticipant godoc
// @Summary      Get a participant with the raw identifier
// @Tags         participants
// @Produce      json
// @Param        participantID  path  string  true  "participant id"
// @Success      200  {object}  response.ParticipantDetail
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /participants/{participantID} [get]
// @Security BearerAuth
func (h *ParticipantHandler) HandleGetParticipant(ctx *gin.Context) {
	id := ctx.Param("participantID")

	participant, err := h.svc.GetParticipant(ctx.Request.Context(), id)
	if err != nil {
		h.renderServiceErr(ctx, "v1.HandleGetParticipant -> h.svc.GetParticipant", id, err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewParticipantDetail(participant))
}

// HandleUpdateParticipant godoc
// @Summary      Update a participant
// @Description  is_family cannot be changed after registration.
// @Tags         participants
// @Accept       json
// @Produce      json
// @Param        participantID  path  string  true  "participant id"
// @Param        request   body      request.UpdateParticipantRequest true "request body"
// @Success      200  {object}  response.ParticipantDetail
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /participants/{participantID} [patch]
// @Security BearerAuth
func (h *ParticipantHandler) HandleUpdateParticipant(ctx *gin.Context) {
	id := ctx.Param("participantID")

	var req request.UpdateParticipantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	changes := req.Changes()
	if changes.Empty() {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("no fields to update")))
		return
	}

	participant, err := h.svc.UpdateParticipant(ctx.Request.Context(), id, changes)
	if err != nil {
		h.renderServiceErr(ctx, "v1.HandleUpdateParticipant -> h.svc.UpdateParticipant", id, err)
		return
	}

	zap.L().Info("participant updated", adminIDField(ctx), zap.String("participant_id", id))

	ctx.JSON(http.StatusOK, response.NewParticipantDetail(participant))
}

// HandleResetWinner godoc
// @Summary      Return a winner to the eligible pool
// @Tags         participants
// @Produce      json
// @Param        participantID  path  string  true  "participant id"
// @Success      200  {object}  response.Participant
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /participants/{participantID}/reset-winner [post]
// @Security BearerAuth
func (h *ParticipantHandler) HandleResetWinner(ctx *gin.Context) {
	id := ctx.Param("participantID")

	participant, err := h.svc.ResetWinner(ctx.Request.Context(), id)
	if err != nil {
		h.renderServiceErr(ctx, "v1.HandleResetWinner -> h.svc.ResetWinner", id, err)
		return
	}

	zap.L().Info("winner reset", adminIDField(ctx), zap.String("participant_id", id))

	ctx.JSON(http.StatusOK, response.NewParticipant(participant))
}

// HandleDeleteParticipant godoc
// @Summary      Delete a participant
// @Tags         participants
// @Param        participantID  path  string  true  "participant id"
// @Success      204
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /participants/{participantID} [delete]
// @Security BearerAuth
func (h *ParticipantHandler) HandleDeleteParticipant(ctx *gin.Context) {
	id := ctx.Param("participantID")

	if err := h.svc.DeleteParticipant(ctx.Request.Context(), id); err != nil {
		h.renderServiceErr(ctx, "v1.HandleDeleteParticipant -> h.svc.DeleteParticipant", id, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleVerifyIdentifier godoc
// @Summary      Check a claimed identifier against the stored hash
// @Tags         participants
// @Accept       json
// @Produce      json
// @Param        participantID  path  string  true  "participant id"
// @Param        request   body      request.VerifyIdentifierRequest true "request body"
// @Success      200  {object}  response.VerifyIdentifier
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /participants/{participantID}/verify-identifier [post]
// @Security BearerAuth
func (h *ParticipantHandler) HandleVerifyIdentifier(ctx *gin.Context) {
	id := ctx.Param("participantID")

	var req request.VerifyIdentifierRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	match, err := h.svc.VerifyIdentifier(ctx.Request.Context(), id, req.Identifier)
	if err != nil {
		h.renderServiceErr(ctx, "v1.HandleVerifyIdentifier -> h.svc.VerifyIdentifier", id, err)
		return
	}

	ctx.JSON(http.StatusOK, response.VerifyIdentifier{Match: match})
}

// HandleStats godoc
// @Summary      Dashboard statistics
// @Tags         participants
// @Produce      json
// @Success      200  {object}  domain.ParticipantStats
// @Failure      401  {object}  response.Err
// @Router       /stats [get]
// @Security BearerAuth
func (h *ParticipantHandler) HandleStats(ctx *gin.Context) {
	stats, err := h.svc.Stats(ctx.Request.Context())
	if err != nil {
		h.renderServiceErr(ctx, "v1.HandleStats -> h.svc.Stats", "", err)
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
