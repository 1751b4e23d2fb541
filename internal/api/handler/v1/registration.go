package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/callin-contest-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/callin-contest-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/callin-contest-api/internal/pkg/identity"
	"github.com/vietanh2810/callin-contest-api/internal/service"
)

type RegistrationService interface {
	Register(ctx context.Context, sub service.Submission) (service.Registration, error)
}

type RegistrationHandler struct {
	svc RegistrationService
}

func NewRegistrationHandler(svc RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		svc: svc,
	}
}

// HandleRegister godoc
// @Summary      Register a caller for the contest
// @Description  Creates the participant or counts a repeat submission. Arabic-Indic digits are accepted.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request   body      request.RegisterRequest true "request body"
// @Success      200      {object}   response.Registration
// @Success      201      {object}   response.Registration
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      429      {object}   response.Err
// @Failure      503      {object}   response.Err
// @Router       /registrations [post]
func (h *RegistrationHandler) HandleRegister(ctx *gin.Context) {
	var req request.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reg, err := h.svc.Register(ctx.Request.Context(), service.Submission{
		Identifier:    req.Identifier,
		SourceAddress: ctx.ClientIP(),
		Changes:       req.Changes(),
	})
	if err != nil {
		if errors.Is(err, service.ErrUnauthorizedFieldWrite) {
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrUnauthorizedFieldWrite))
			return
		}

		err = fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, storeOrInternalErr(err))
		return
	}

	if reg.Outcome == service.OutcomeRateLimited {
		response.RenderErr(ctx, response.ErrTooManyRequests(reg.Decision.RetryAfter))
		return
	}

	status := http.StatusOK
	if reg.Created {
		status = http.StatusCreated
	}

	ctx.JSON(status, response.Registration{
		Outcome:          string(reg.Outcome),
		Created:          reg.Created,
		ParticipantID:    reg.Participant.ID,
		MaskedIdentifier: identity.Mask(req.Identifier),
		DisplayName:      reg.Participant.DisplayName,
		HitCount:         reg.Participant.HitCount,
	})
}
